// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"slices"
	"sync"
	"time"

	"github.com/marko-gacesa/netquake/netquake"
	"github.com/marko-gacesa/netquake/netquake/message/connect"
	"github.com/marko-gacesa/netquake/netquake/transport"
	"github.com/marko-gacesa/netquake/netquake/util"
	"github.com/marko-gacesa/netquake/udp"
)

var _ = interface {
	Listen(ctx context.Context) error
	Sessions() <-chan *transport.Session
	Announce(ctx context.Context, endpoint *udp.Endpoint) error
	Release(remote net.UDPAddr)
	Slot(remote net.UDPAddr) (byte, bool)
	SetPlayer(remote net.UDPAddr, name string, colors byte)
	Addr() net.UDPAddr
}((*Listener)(nil))

const (
	rejectFull         = "Server is full.\n"
	rejectIncompatible = "Incompatible version.\n"
	rejectBusy         = "Server is busy.\n"
)

// Info is the public description of the server, returned to server queries.
type Info struct {
	Hostname   string
	Level      string
	MaxPlayers byte
	Rules      []connect.RuleInfo
}

// Listener answers handshake requests and server queries on the well-known port.
// Every accepted connection gets its own endpoint and the session on it is delivered through Sessions.
type Listener struct {
	server      *udp.Server
	info        Info
	breakPeriod time.Duration

	endpointOptions []func(*udp.Endpoint)
	sessionOptions  []func(*transport.Session)

	mx    sync.Mutex
	slots []slot

	sessions chan *transport.Session

	log *slog.Logger
}

type slot struct {
	active    bool
	addr      net.UDPAddr
	port      int
	name      string
	colors    byte
	connected time.Time
}

func NewListener(endpoint *udp.Endpoint, info Info, options ...func(*Listener)) *Listener {
	l := &Listener{
		server:   udp.NewServer(endpoint),
		info:     info,
		slots:    make([]slot, info.MaxPlayers),
		sessions: make(chan *transport.Session, max(1, int(info.MaxPlayers))),
		log:      slog.Default(),
	}

	for _, option := range options {
		option(l)
	}

	l.configure(l.server)

	return l
}

func (l *Listener) configure(srv *udp.Server) {
	srv.SetBreakPeriod(l.breakPeriod)
	srv.SetHandleError(func(err error) {
		l.log.Error("listener", "err", err)
	})
}

func WithLogger(log *slog.Logger) func(*Listener) {
	return func(l *Listener) {
		l.log = log
	}
}

// WithBreakPeriod sets how often the listener checks if the context is done.
func WithBreakPeriod(d time.Duration) func(*Listener) {
	return func(l *Listener) {
		l.breakPeriod = d
	}
}

// WithEndpointOptions sets the options for session endpoints the listener binds.
func WithEndpointOptions(options ...func(*udp.Endpoint)) func(*Listener) {
	return func(l *Listener) {
		l.endpointOptions = append(l.endpointOptions, options...)
	}
}

// WithSessionOptions sets the options for sessions the listener creates.
func WithSessionOptions(options ...func(*transport.Session)) func(*Listener) {
	return func(l *Listener) {
		l.sessionOptions = append(l.sessionOptions, options...)
	}
}

func (l *Listener) Addr() net.UDPAddr {
	return l.server.Addr()
}

// Sessions delivers a session for every accepted connection.
func (l *Listener) Sessions() <-chan *transport.Session {
	return l.sessions
}

// Release frees the player slot taken by the client.
func (l *Listener) Release(remote net.UDPAddr) {
	l.mx.Lock()
	defer l.mx.Unlock()

	if i := l.find(remote); i >= 0 {
		l.slots[i] = slot{}
	}
}

// Slot returns the scoreboard slot taken by the client.
func (l *Listener) Slot(remote net.UDPAddr) (byte, bool) {
	l.mx.Lock()
	defer l.mx.Unlock()

	i := l.find(remote)
	if i < 0 {
		return 0, false
	}

	return byte(i), true
}

// SetPlayer sets the name and colors reported for the client in player queries.
func (l *Listener) SetPlayer(remote net.UDPAddr, name string, colors byte) {
	l.mx.Lock()
	defer l.mx.Unlock()

	if i := l.find(remote); i >= 0 {
		l.slots[i].name = name
		l.slots[i].colors = colors
	}
}

func (l *Listener) find(remote net.UDPAddr) int {
	for i := range l.slots {
		if l.slots[i].active && udp.SameAddr(l.slots[i].addr, remote) {
			return i
		}
	}
	return -1
}

// Listen answers requests until the context is done. The sessions channel is closed when it returns.
func (l *Listener) Listen(ctx context.Context) error {
	defer close(l.sessions)

	err := l.server.Listen(ctx, l.process)
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

// Announce answers server queries arriving on the endpoint, normally one joined to
// netquake.DiscoveryGroup, until the context is done. Handshake requests are ignored there.
func (l *Listener) Announce(ctx context.Context, endpoint *udp.Endpoint) error {
	srv := udp.NewServer(endpoint)
	l.configure(srv)

	err := srv.Listen(ctx, l.processDiscovery)
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

func (l *Listener) processDiscovery(data []byte, addr net.UDPAddr) []byte {
	defer util.Recover(l.log)

	request, err := connect.ParseRequest(data)
	if err != nil {
		return nil
	}

	req, ok := request.(*connect.ServerInfoRequest)
	if !ok || req.Game != netquake.GameName {
		return nil
	}

	l.log.Debug("discovery request", "addr", addr.String())

	return l.serverInfo().Put(nil)
}

func (l *Listener) process(data []byte, addr net.UDPAddr) (response []byte) {
	defer util.Recover(l.log)

	request, err := connect.ParseRequest(data)
	if err != nil {
		l.log.Debug("ignoring invalid request", "addr", addr.String(), "err", err)
		return nil
	}

	var r connect.Response

	switch req := request.(type) {
	case *connect.Connect:
		r = l.connect(req, addr)
	case *connect.ServerInfoRequest:
		if req.Game != netquake.GameName {
			return nil
		}
		r = l.serverInfo()
	case *connect.PlayerInfoRequest:
		r = l.playerInfo(req.Player)
	case *connect.RuleInfoRequest:
		r = l.ruleInfo(req.Previous)
	}

	if r == nil {
		return nil
	}

	return r.Put(nil)
}

func (l *Listener) connect(req *connect.Connect, addr net.UDPAddr) connect.Response {
	if req.Game != netquake.GameName {
		return nil
	}

	if req.Version != netquake.NetProtocolVersion {
		return &connect.Reject{Message: rejectIncompatible}
	}

	l.mx.Lock()
	defer l.mx.Unlock()

	// a retried request gets the same answer
	if i := l.find(addr); i >= 0 {
		return &connect.Accept{Port: int32(l.slots[i].port)}
	}

	free := slices.IndexFunc(l.slots, func(s slot) bool { return !s.active })
	if free < 0 {
		return &connect.Reject{Message: rejectFull}
	}

	local := l.server.Addr()
	endpoint, err := udp.Listen(&net.UDPAddr{IP: local.IP, Zone: local.Zone}, l.endpointOptions...)
	if err != nil {
		l.log.Error("failed to bind session endpoint", "err", err)
		return &connect.Reject{Message: rejectBusy}
	}

	port := endpoint.LocalAddr().Port
	l.slots[free] = slot{active: true, addr: addr, port: port, connected: time.Now()}

	session := transport.NewSession(endpoint, addr, l.sessionOptions...)

	select {
	case l.sessions <- session:
	default:
		l.slots[free] = slot{}
		_ = session.Close()
		return &connect.Reject{Message: rejectBusy}
	}

	l.log.Info("connection accepted", "client", addr.String(), "port", port, "slot", free)

	return &connect.Accept{Port: int32(port)}
}

func (l *Listener) active() int {
	n := 0
	for _, s := range l.slots {
		if s.active {
			n++
		}
	}
	return n
}

func (l *Listener) serverInfo() connect.Response {
	l.mx.Lock()
	players := l.active()
	l.mx.Unlock()

	addr := l.server.Addr()

	return &connect.ServerInfo{
		Address:    addr.String(),
		Hostname:   l.info.Hostname,
		Level:      l.info.Level,
		Players:    byte(players),
		MaxPlayers: l.info.MaxPlayers,
		Version:    netquake.NetProtocolVersion,
	}
}

func (l *Listener) playerInfo(index byte) connect.Response {
	l.mx.Lock()
	defer l.mx.Unlock()

	// the index counts active slots only
	var c slot
	n := 0
	for _, s := range l.slots {
		if !s.active {
			continue
		}
		if n == int(index) {
			c = s
			break
		}
		n++
	}

	if !c.active {
		return nil
	}

	return &connect.PlayerInfo{
		Index:       index,
		Name:        c.name,
		Colors:      int32(c.colors),
		ConnectTime: int32(time.Since(c.connected) / time.Second),
		Address:     c.addr.String(),
	}
}

func (l *Listener) ruleInfo(previous string) connect.Response {
	rules := l.info.Rules

	if previous == "" && len(rules) > 0 {
		return &rules[0]
	}

	for i := 0; i+1 < len(rules); i++ {
		if rules[i].Name == previous {
			return &rules[i+1]
		}
	}

	return &connect.RuleInfo{}
}
