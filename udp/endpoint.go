// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package udp

import (
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

var _ = interface {
	LocalAddr() net.UDPAddr
	SendTo(data []byte, addr net.UDPAddr) error
	ReceiveFrom(buf []byte, deadline time.Time) (int, net.UDPAddr, error)
	Close() error
}((*Endpoint)(nil))

// ErrTimeout is returned by ReceiveFrom when the deadline passes before a datagram arrives.
var ErrTimeout = errors.New("udp endpoint: timed out")

// TOSLowDelay is the IPTOS_LOWDELAY value, suitable for interactive game traffic.
const TOSLowDelay = 0x10

// Endpoint is an unconnected UDP socket. It can exchange datagrams with any remote address,
// which is what the connection handshake needs: the reply to a request arrives from a port
// other than the one the request was sent to.
type Endpoint struct {
	connection *net.UDPConn
	tos        int
	iface      *net.Interface
	leave      func() error
}

// Listen binds a new endpoint. Passing nil or a zero port binds an ephemeral local port.
func Listen(localAddr *net.UDPAddr, options ...func(*Endpoint)) (*Endpoint, error) {
	e := &Endpoint{}
	for _, option := range options {
		option(e)
	}

	network := "udp4"
	if localAddr != nil && localAddr.IP != nil && localAddr.IP.To4() == nil {
		network = "udp6"
	}

	connection, err := net.ListenUDP(network, localAddr)
	if err != nil {
		return nil, fmt.Errorf("udp endpoint: failed to listen: %w", err)
	}

	if err := e.setTOS(connection, network); err != nil {
		_ = connection.Close()
		return nil, err
	}

	e.connection = connection

	return e, nil
}

func (e *Endpoint) setTOS(connection *net.UDPConn, network string) error {
	if e.tos == 0 {
		return nil
	}

	var err error
	if network == "udp4" {
		err = ipv4.NewPacketConn(connection).SetTOS(e.tos)
	} else {
		err = ipv6.NewPacketConn(connection).SetTrafficClass(e.tos)
	}
	if err != nil {
		return fmt.Errorf("udp endpoint: failed to set type of service: %w", err)
	}

	return nil
}

// WithTOS marks every outgoing datagram with the provided type of service byte
// (traffic class for IPv6).
func WithTOS(tos int) func(*Endpoint) {
	return func(e *Endpoint) {
		e.tos = tos
	}
}

func (e *Endpoint) LocalAddr() net.UDPAddr {
	return normalize(*e.connection.LocalAddr().(*net.UDPAddr))
}

func (e *Endpoint) SendTo(data []byte, addr net.UDPAddr) error {
	if _, err := e.connection.WriteToUDP(data, &addr); err != nil {
		return fmt.Errorf("udp endpoint: failed to send datagram to %s: %w", addr.String(), err)
	}

	return nil
}

// ReceiveFrom reads a single datagram into buf. A zero deadline blocks until a datagram arrives.
// If the deadline passes first ErrTimeout is returned.
func (e *Endpoint) ReceiveFrom(buf []byte, deadline time.Time) (int, net.UDPAddr, error) {
	if err := e.connection.SetReadDeadline(deadline); err != nil {
		return 0, net.UDPAddr{}, fmt.Errorf("udp endpoint: failed to set read deadline: %w", err)
	}

	n, addr, err := e.connection.ReadFromUDP(buf)
	if errTimeout, ok := err.(net.Error); ok && errTimeout.Timeout() {
		return 0, net.UDPAddr{}, ErrTimeout
	}
	if err != nil {
		return 0, net.UDPAddr{}, fmt.Errorf("udp endpoint: failed to read datagram: %w", err)
	}

	return n, normalize(*addr), nil
}

func (e *Endpoint) Close() error {
	if e.leave != nil {
		if err := e.leave(); err != nil {
			_ = e.connection.Close()
			return fmt.Errorf("udp endpoint: failed to leave group: %w", err)
		}
	}

	if err := e.connection.Close(); err != nil {
		return fmt.Errorf("udp endpoint: failed to close: %w", err)
	}

	return nil
}

// normalize converts IPv4-mapped IPv6 addresses to their 4-byte form so that
// addresses received from the socket can be compared with == on their string form.
func normalize(addr net.UDPAddr) net.UDPAddr {
	if ip4 := addr.IP.To4(); ip4 != nil {
		addr.IP = ip4
	}
	return addr
}

// SameAddr reports whether two UDP addresses denote the same host and port.
func SameAddr(a, b net.UDPAddr) bool {
	return a.Port == b.Port && a.IP.Equal(b.IP) && a.Zone == b.Zone
}
