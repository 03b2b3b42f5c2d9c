// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package server

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"

	"github.com/marko-gacesa/netquake/netquake"
	"github.com/marko-gacesa/netquake/netquake/client"
	"github.com/marko-gacesa/netquake/netquake/message/connect"
	"github.com/marko-gacesa/netquake/netquake/transport"
	"github.com/marko-gacesa/netquake/udp"
)

var loopback = &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)}

func startListener(t *testing.T, info Info, options ...func(*Listener)) *Listener {
	t.Helper()

	endpoint, err := udp.Listen(loopback)
	if err != nil {
		t.Fatalf("failed to listen: %s", err.Error())
	}

	l := NewListener(endpoint, info, append([]func(*Listener){WithBreakPeriod(20*time.Millisecond)}, options...)...)

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return l.Listen(ctx)
	})

	t.Cleanup(func() {
		cancel()
		if err := g.Wait(); err != nil {
			t.Errorf("listener failed: %s", err.Error())
		}
		for session := range l.Sessions() {
			_ = session.Close()
		}
	})

	return l
}

func newDialer() *client.Dialer {
	return client.NewDialer(client.WithLocalAddr(loopback))
}

// exchange sends a raw request from the endpoint and waits for the response.
func exchange(t *testing.T, endpoint *udp.Endpoint, server net.UDPAddr, request connect.Request) connect.Response {
	t.Helper()

	if err := endpoint.SendTo(request.Put(nil), server); err != nil {
		t.Fatalf("failed to send: %s", err.Error())
	}

	buf := make([]byte, netquake.MaxDatagram)
	n, _, err := endpoint.ReceiveFrom(buf, time.Now().Add(time.Second))
	if err != nil {
		t.Fatalf("failed to receive: %s", err.Error())
	}

	response, err := connect.ParseResponse(buf[:n])
	if err != nil {
		t.Fatalf("invalid response: %s", err.Error())
	}

	return response
}

func TestListener_Queries(t *testing.T) {
	rules := []connect.RuleInfo{
		{Name: "deathmatch", Value: "0"},
		{Name: "sv_gravity", Value: "800"},
	}

	l := startListener(t, Info{
		Hostname:   "test server",
		Level:      "e1m1",
		MaxPlayers: 4,
		Rules:      rules,
	})

	ctx := context.Background()
	addr := l.Addr()
	d := newDialer()

	info, err := d.QueryServer(ctx, addr)
	if err != nil {
		t.Fatalf("query server failed: %s", err.Error())
	}

	wantInfo := &connect.ServerInfo{
		Address:    addr.String(),
		Hostname:   "test server",
		Level:      "e1m1",
		Players:    0,
		MaxPlayers: 4,
		Version:    netquake.NetProtocolVersion,
	}
	if diff := cmp.Diff(wantInfo, info); diff != "" {
		t.Errorf("server info mismatch (-want +got):\n%s", diff)
	}

	gotRules, err := d.QueryRules(ctx, addr)
	if err != nil {
		t.Fatalf("query rules failed: %s", err.Error())
	}

	if diff := cmp.Diff(rules, gotRules); diff != "" {
		t.Errorf("rules mismatch (-want +got):\n%s", diff)
	}

	session, err := d.Connect(ctx, addr)
	if err != nil {
		t.Fatalf("connect failed: %s", err.Error())
	}
	defer session.Close()

	remote := session.LocalAddr()
	l.SetPlayer(remote, "player", 0x4D)

	player, err := d.QueryPlayer(ctx, addr, 0)
	if err != nil {
		t.Fatalf("query player failed: %s", err.Error())
	}

	if want, got := "player", player.Name; want != got {
		t.Errorf("player name mismatch: want=%q got=%q", want, got)
	}
	if want, got := int32(0x4D), player.Colors; want != got {
		t.Errorf("player colors mismatch: want=%x got=%x", want, got)
	}
	if want, got := remote.String(), player.Address; want != got {
		t.Errorf("player address mismatch: want=%s got=%s", want, got)
	}

	info, err = d.QueryServer(ctx, addr)
	if err != nil {
		t.Fatalf("query server failed: %s", err.Error())
	}
	if want, got := byte(1), info.Players; want != got {
		t.Errorf("players mismatch: want=%d got=%d", want, got)
	}
}

func TestListener_Full(t *testing.T) {
	l := startListener(t, Info{MaxPlayers: 1})

	ctx := context.Background()

	session, err := newDialer().Connect(ctx, l.Addr())
	if err != nil {
		t.Fatalf("connect failed: %s", err.Error())
	}
	defer session.Close()

	_, err = newDialer().Connect(ctx, l.Addr())

	var errRejected *netquake.RejectedError
	if !errors.As(err, &errRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if want, got := rejectFull, errRejected.Reason; want != got {
		t.Errorf("reason mismatch: want=%q got=%q", want, got)
	}

	// a released slot can be taken again
	l.Release(session.LocalAddr())
	_ = (<-l.Sessions()).Close()

	other, err := newDialer().Connect(ctx, l.Addr())
	if err != nil {
		t.Fatalf("connect after release failed: %s", err.Error())
	}
	defer other.Close()

	if slot, ok := l.Slot(other.LocalAddr()); !ok || slot != 0 {
		t.Errorf("expected the released slot 0, got %d (%t)", slot, ok)
	}

	if _, ok := l.Slot(session.LocalAddr()); ok {
		t.Error("released client should not have a slot")
	}
}

func TestListener_Connect(t *testing.T) {
	l := startListener(t, Info{MaxPlayers: 2})

	endpoint, err := udp.Listen(loopback)
	if err != nil {
		t.Fatalf("failed to listen: %s", err.Error())
	}
	defer endpoint.Close()

	request := &connect.Connect{Game: netquake.GameName, Version: netquake.NetProtocolVersion}

	first, ok := exchange(t, endpoint, l.Addr(), request).(*connect.Accept)
	if !ok {
		t.Fatal("expected accept")
	}

	if first.Port == int32(l.Addr().Port) {
		t.Error("session should get its own port")
	}

	second, ok := exchange(t, endpoint, l.Addr(), request).(*connect.Accept)
	if !ok {
		t.Fatal("expected accept of the retried request")
	}

	if want, got := first.Port, second.Port; want != got {
		t.Errorf("retried request should get the same port: want=%d got=%d", want, got)
	}

	var session *transport.Session
	select {
	case session = <-l.Sessions():
	case <-time.After(time.Second):
		t.Fatal("session not delivered")
	}
	defer session.Close()

	if remote, local := session.RemoteAddr(), endpoint.LocalAddr(); !udp.SameAddr(remote, local) {
		t.Errorf("session remote mismatch: want=%s got=%s", local.String(), remote.String())
	}

	select {
	case <-l.Sessions():
		t.Error("retried request should not create another session")
	default:
	}
}

func TestListener_Incompatible(t *testing.T) {
	l := startListener(t, Info{MaxPlayers: 2})

	endpoint, err := udp.Listen(loopback)
	if err != nil {
		t.Fatalf("failed to listen: %s", err.Error())
	}
	defer endpoint.Close()

	response := exchange(t, endpoint, l.Addr(), &connect.Connect{Game: netquake.GameName, Version: 2})

	reject, ok := response.(*connect.Reject)
	if !ok {
		t.Fatalf("expected reject, got %s", response.Code())
	}
	if want, got := rejectIncompatible, reject.Message; want != got {
		t.Errorf("reason mismatch: want=%q got=%q", want, got)
	}
}

func TestListener_Announce(t *testing.T) {
	l := startListener(t, Info{Hostname: "lan party", Level: "dm4", MaxPlayers: 8})

	ctx, cancel := context.WithCancel(context.Background())

	var g errgroup.Group
	defer func() {
		cancel()
		if err := g.Wait(); err != nil {
			t.Errorf("announce failed: %s", err.Error())
		}
	}()

	// discovery does not care if the request came through a group
	endpoint, err := udp.Listen(loopback)
	if err != nil {
		t.Fatalf("failed to listen: %s", err.Error())
	}

	g.Go(func() error {
		return l.Announce(ctx, endpoint)
	})

	servers, err := client.NewDialer(client.WithLocalAddr(loopback)).Discover(ctx, endpoint.LocalAddr(), 300*time.Millisecond)
	if err != nil {
		t.Fatalf("discover failed: %s", err.Error())
	}

	if len(servers) != 1 {
		t.Fatalf("expected one server, got %d", len(servers))
	}

	if want, got := "dm4", servers[0].Info.Level; want != got {
		t.Errorf("level mismatch: want=%q got=%q", want, got)
	}

	addr := l.Addr()
	if want, got := addr.String(), servers[0].Info.Address; want != got {
		t.Errorf("address mismatch: want=%s got=%s", want, got)
	}
}

func TestListener_DiscoveryIgnoresConnect(t *testing.T) {
	endpoint, err := udp.Listen(loopback)
	if err != nil {
		t.Fatalf("failed to listen: %s", err.Error())
	}
	defer endpoint.Close()

	l := NewListener(endpoint, Info{MaxPlayers: 1})

	connectReq := (&connect.Connect{Game: netquake.GameName, Version: netquake.NetProtocolVersion}).Put(nil)
	if response := l.processDiscovery(connectReq, *loopback); response != nil {
		t.Error("discovery should not accept connections")
	}

	infoReq := (&connect.ServerInfoRequest{Game: "HEXEN", Version: netquake.NetProtocolVersion}).Put(nil)
	if response := l.processDiscovery(infoReq, *loopback); response != nil {
		t.Error("discovery should ignore other games")
	}

	if response := l.processDiscovery([]byte{1, 2, 3}, *loopback); response != nil {
		t.Error("discovery should ignore garbage")
	}
}
