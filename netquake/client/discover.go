// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package client

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/marko-gacesa/netquake/netquake"
	"github.com/marko-gacesa/netquake/netquake/message/connect"
	"github.com/marko-gacesa/netquake/udp"
)

// DiscoveredServer is a server that answered a discovery request.
type DiscoveredServer struct {
	Addr net.UDPAddr
	Info connect.ServerInfo
}

// Discover sends a server query to the multicast group and collects the replies arriving within wait.
// Every server is reported once, in the order the replies arrived.
func (d *Dialer) Discover(ctx context.Context, group net.UDPAddr, wait time.Duration) ([]DiscoveredServer, error) {
	endpoint, err := d.listen(group)
	if err != nil {
		return nil, err
	}
	defer func() { _ = endpoint.Close() }()

	request := &connect.ServerInfoRequest{
		Game:    netquake.GameName,
		Version: netquake.NetProtocolVersion,
	}

	if err := endpoint.SendTo(request.Put(nil), group); err != nil {
		return nil, netquake.NewIoError("send discovery request", err)
	}

	var servers []DiscoveredServer
	seen := make(map[string]struct{})

	buf := make([]byte, netquake.DatagramSize)
	deadline := time.Now().Add(wait)

	for {
		if err := ctx.Err(); err != nil {
			return servers, err
		}

		now := time.Now()
		if !deadline.After(now) {
			return servers, nil
		}

		next := now.Add(100 * time.Millisecond)
		if deadline.Before(next) {
			next = deadline
		}

		n, addr, err := endpoint.ReceiveFrom(buf, next)
		if errors.Is(err, udp.ErrTimeout) {
			continue
		}
		if err != nil {
			return servers, netquake.NewIoError("receive discovery reply", err)
		}

		response, err := connect.ParseResponse(buf[:n])
		if err != nil {
			d.log.Debug("ignoring invalid discovery reply", "addr", addr.String(), "err", err)
			continue
		}

		info, ok := response.(*connect.ServerInfo)
		if !ok {
			continue
		}

		if _, ok := seen[addr.String()]; ok {
			continue
		}
		seen[addr.String()] = struct{}{}

		d.log.Debug("server discovered", "addr", addr.String(), "hostname", info.Hostname)

		servers = append(servers, DiscoveredServer{Addr: addr, Info: *info})
	}
}
