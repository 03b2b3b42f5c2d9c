// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"time"

	"github.com/marko-gacesa/netquake/netquake"
	"github.com/marko-gacesa/netquake/netquake/message/connect"
	"github.com/marko-gacesa/netquake/netquake/transport"
	"github.com/marko-gacesa/netquake/udp"
)

// Dialer performs the connection handshake and server queries.
// Every exchange is sent up to netquake.ConnectAttempts times, waiting netquake.ConnectTimeout for each reply.
type Dialer struct {
	localAddr       *net.UDPAddr
	endpointOptions []func(*udp.Endpoint)
	sessionOptions  []func(*transport.Session)
	timeout         time.Duration
	log             *slog.Logger
}

func NewDialer(options ...func(*Dialer)) *Dialer {
	d := &Dialer{
		timeout: netquake.ConnectTimeout,
		log:     slog.Default(),
	}

	for _, option := range options {
		option(d)
	}

	return d
}

func WithLogger(log *slog.Logger) func(*Dialer) {
	return func(d *Dialer) {
		d.log = log
	}
}

// WithLocalAddr sets the local address to bind. By default, an ephemeral port is used.
func WithLocalAddr(addr *net.UDPAddr) func(*Dialer) {
	return func(d *Dialer) {
		d.localAddr = addr
	}
}

// WithEndpointOptions sets the options for endpoints the dialer binds.
func WithEndpointOptions(options ...func(*udp.Endpoint)) func(*Dialer) {
	return func(d *Dialer) {
		d.endpointOptions = append(d.endpointOptions, options...)
	}
}

// WithSessionOptions sets the options for sessions created by Connect.
func WithSessionOptions(options ...func(*transport.Session)) func(*Dialer) {
	return func(d *Dialer) {
		d.sessionOptions = append(d.sessionOptions, options...)
	}
}

func (d *Dialer) listen(server net.UDPAddr) (*udp.Endpoint, error) {
	localAddr := d.localAddr
	if localAddr == nil && server.IP.To4() == nil {
		localAddr = &net.UDPAddr{IP: net.IPv6unspecified}
	}

	endpoint, err := udp.Listen(localAddr, d.endpointOptions...)
	if err != nil {
		return nil, netquake.NewIoError("listen", err)
	}

	return endpoint, nil
}

// Connect performs the connection handshake with the server.
// On success the returned session exchanges datagrams with the port the server assigned.
func (d *Dialer) Connect(ctx context.Context, server net.UDPAddr) (*transport.Session, error) {
	endpoint, err := d.listen(server)
	if err != nil {
		return nil, err
	}

	response, err := d.exchange(ctx, endpoint, server, &connect.Connect{
		Game:    netquake.GameName,
		Version: netquake.NetProtocolVersion,
	})
	if err != nil {
		_ = endpoint.Close()
		return nil, err
	}

	var port int32

	switch r := response.(type) {
	case *connect.Accept:
		if r.Port < 0 || r.Port > math.MaxUint16 {
			_ = endpoint.Close()
			return nil, &netquake.ProtocolViolationError{Msg: fmt.Sprintf("invalid port number %d", r.Port)}
		}
		port = r.Port
	case *connect.Reject:
		_ = endpoint.Close()
		return nil, &netquake.RejectedError{Reason: r.Message}
	default:
		_ = endpoint.Close()
		return nil, &netquake.ProtocolViolationError{Msg: "unexpected connect response " + response.Code().String()}
	}

	remote := server
	remote.Port = int(port)

	d.log.Info("connection accepted", "server", server.String(), "port", port)

	return transport.NewSession(endpoint, remote, d.sessionOptions...), nil
}

// QueryServer asks the server for its public information.
func (d *Dialer) QueryServer(ctx context.Context, server net.UDPAddr) (*connect.ServerInfo, error) {
	return query[*connect.ServerInfo](ctx, d, server, &connect.ServerInfoRequest{
		Game:    netquake.GameName,
		Version: netquake.NetProtocolVersion,
	})
}

// QueryPlayer asks the server about the player in the provided slot.
func (d *Dialer) QueryPlayer(ctx context.Context, server net.UDPAddr, player byte) (*connect.PlayerInfo, error) {
	return query[*connect.PlayerInfo](ctx, d, server, &connect.PlayerInfoRequest{Player: player})
}

// QueryRule asks the server for the rule (server variable) following the previous one.
// An empty previous name asks for the first rule. The rule list ends with a reply for which End returns true.
func (d *Dialer) QueryRule(ctx context.Context, server net.UDPAddr, previous string) (*connect.RuleInfo, error) {
	return query[*connect.RuleInfo](ctx, d, server, &connect.RuleInfoRequest{Previous: previous})
}

// QueryRules collects all rules of the server.
func (d *Dialer) QueryRules(ctx context.Context, server net.UDPAddr) ([]connect.RuleInfo, error) {
	var rules []connect.RuleInfo

	previous := ""
	for {
		rule, err := d.QueryRule(ctx, server, previous)
		if err != nil {
			return rules, err
		}

		if rule.End() {
			return rules, nil
		}

		rules = append(rules, *rule)
		previous = rule.Name
	}
}

func query[T connect.Response](ctx context.Context, d *Dialer, server net.UDPAddr, request connect.Request) (T, error) {
	var zero T

	endpoint, err := d.listen(server)
	if err != nil {
		return zero, err
	}
	defer func() { _ = endpoint.Close() }()

	response, err := d.exchange(ctx, endpoint, server, request)
	if err != nil {
		return zero, err
	}

	if reject, ok := response.(*connect.Reject); ok {
		return zero, &netquake.RejectedError{Reason: reject.Message}
	}

	r, ok := response.(T)
	if !ok {
		return zero, &netquake.ProtocolViolationError{
			Msg: fmt.Sprintf("unexpected response %s to request %s", response.Code(), request.Code()),
		}
	}

	return r, nil
}

// exchange sends the request until a well-formed response arrives from the server.
// Replies that fail to parse are logged and the request is sent again.
// Replies from any other address are ignored.
func (d *Dialer) exchange(ctx context.Context, endpoint *udp.Endpoint, server net.UDPAddr, request connect.Request) (connect.Response, error) {
	packet := request.Put(nil)
	buf := make([]byte, netquake.DatagramSize)

	log := d.log.With("server", server.String(), "request", request.Code().String())

	for attempt := 1; attempt <= netquake.ConnectAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log.Debug("sending request", "attempt", attempt, "of", netquake.ConnectAttempts)

		if err := endpoint.SendTo(packet, server); err != nil {
			return nil, netquake.NewIoError("send request", err)
		}

		response, err := d.await(ctx, endpoint, server, buf, time.Now().Add(d.timeout))
		if errors.Is(err, udp.ErrTimeout) {
			log.Info("no response", "attempt", attempt)
			continue
		}
		if netquake.IsMalformed(err) {
			log.Warn("invalid response", "attempt", attempt, "err", err)
			continue
		}
		if err != nil {
			return nil, err
		}

		return response, nil
	}

	return nil, netquake.ErrUnresponsive
}

func (d *Dialer) await(ctx context.Context, endpoint *udp.Endpoint, server net.UDPAddr, buf []byte, deadline time.Time) (connect.Response, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// wake up periodically to observe the context
		now := time.Now()
		if !deadline.After(now) {
			return nil, udp.ErrTimeout
		}

		wait := now.Add(100 * time.Millisecond)
		if deadline.Before(wait) {
			wait = deadline
		}

		n, addr, err := endpoint.ReceiveFrom(buf, wait)
		if errors.Is(err, udp.ErrTimeout) {
			continue
		}
		if err != nil {
			return nil, netquake.NewIoError("receive response", err)
		}

		if !udp.SameAddr(addr, server) {
			d.log.Debug("ignoring reply from unexpected address", "addr", addr.String())
			continue
		}

		return connect.ParseResponse(buf[:n])
	}
}
