// Copyright (c) 2024, 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package udp

import (
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// WithInterface sets the network interface ListenGroup joins the group on.
func WithInterface(iface *net.Interface) func(*Endpoint) {
	return func(e *Endpoint) {
		e.iface = iface
	}
}

// ListenGroup binds an endpoint to the port of the multicast group and joins the group.
// Without WithInterface the group is joined on the default interface. Close leaves the group.
// Replies sent from the endpoint go out as unicast to the requester.
func ListenGroup(group net.UDPAddr, options ...func(*Endpoint)) (*Endpoint, error) {
	if group.IP == nil || !group.IP.IsMulticast() {
		return nil, errors.New("udp multicast: group address is not multicast")
	}

	e := &Endpoint{}
	for _, option := range options {
		option(e)
	}

	iface := e.iface
	if iface == nil {
		var err error
		iface, err = getDefaultInterface()
		if err != nil {
			return nil, fmt.Errorf("udp multicast: failed to get network interface: %w", err)
		}
	}

	network := "udp4"
	if group.IP.To4() == nil {
		network = "udp6"
	}

	// bound to the unspecified address so that replies carry the host's unicast address
	connection, err := net.ListenUDP(network, &net.UDPAddr{Port: group.Port})
	if err != nil {
		return nil, fmt.Errorf("udp multicast: failed to listen: %w", err)
	}

	if err := e.setTOS(connection, network); err != nil {
		_ = connection.Close()
		return nil, err
	}

	var p interface {
		JoinGroup(*net.Interface, net.Addr) error
		LeaveGroup(*net.Interface, net.Addr) error
	}
	if network == "udp4" {
		p = ipv4.NewPacketConn(connection)
	} else {
		p = ipv6.NewPacketConn(connection)
	}

	groupIP := &net.UDPAddr{IP: group.IP, Zone: iface.Name}

	if err := p.JoinGroup(iface, groupIP); err != nil {
		_ = connection.Close()
		return nil, fmt.Errorf("udp multicast: failed to join group: %w", err)
	}

	e.connection = connection
	e.leave = func() error {
		return p.LeaveGroup(iface, groupIP)
	}

	return e, nil
}

// getDefaultInterface picks an interface that is up and capable of multicast, preferring
// ethernet interfaces by name.
func getDefaultInterface() (*net.Interface, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to get network interfaces: %w", err)
	}

	var ifaces []*net.Interface
	for i := range interfaces {
		iface := &interfaces[i]

		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagRunning == 0 ||
			iface.Flags&net.FlagLoopback > 0 || iface.Flags&net.FlagMulticast == 0 ||
			iface.Flags&net.FlagPointToPoint > 0 {
			continue
		}

		if addrs, err := iface.Addrs(); err != nil || len(addrs) == 0 {
			continue
		}

		ifaces = append(ifaces, iface)
	}

	if len(ifaces) == 0 {
		return nil, errors.New("no available network interfaces")
	}

	for _, prefix := range []string{"en", "eth"} {
		var selected []*net.Interface
		for _, iface := range ifaces {
			if strings.HasPrefix(iface.Name, prefix) {
				selected = append(selected, iface)
			}
		}

		if len(selected) > 0 {
			sort.Slice(selected, func(i, j int) bool {
				return selected[i].Name < selected[j].Name
			})
			return selected[0], nil
		}
	}

	return ifaces[0], nil
}
