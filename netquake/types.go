// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package netquake

import (
	"net"
	"time"
)

// Wire constants. They must match the remote peer exactly.
const (
	// GameName identifies the game in handshake and query requests.
	GameName = "QUAKE"

	// NetProtocolVersion is the version of the datagram protocol, sent with handshake requests.
	NetProtocolVersion = 3

	// ProtocolVersion is the version of the game command protocol, announced by the server
	// in the server info command.
	ProtocolVersion = 15

	// HeaderSize is the size of every datagram header.
	HeaderSize = 8

	// MaxDatagram is the maximum payload of a single datagram.
	MaxDatagram = 1024

	// DatagramSize is the maximum size of a datagram including its header.
	DatagramSize = HeaderSize + MaxDatagram

	// MaxMessage is the maximum size of a reassembled reliable message.
	MaxMessage = 8192

	// DefaultPort is the port servers listen on for handshake requests.
	DefaultPort = 26000

	// DiscoveryPort is the port of the discovery multicast group.
	DiscoveryPort = 26100
)

// DiscoveryGroup is the multicast group servers join to answer server queries from the local network.
var DiscoveryGroup = net.UDPAddr{IP: net.IPv4(239, 255, 231, 79), Port: DiscoveryPort}

// Handshake limits. These are fixed by the protocol and are not configurable.
const (
	ConnectAttempts = 3
	ConnectTimeout  = 2500 * time.Millisecond
)

// GameType is announced by the server in the server info command.
type GameType byte

const (
	GameTypeCoop       GameType = 0
	GameTypeDeathmatch GameType = 1
)

func (g GameType) String() string {
	switch g {
	case GameTypeCoop:
		return "coop"
	case GameTypeDeathmatch:
		return "deathmatch"
	default:
		return "unknown"
	}
}

// ServerInfo is the session metadata established once by the server info command.
type ServerInfo struct {
	ProtocolVersion int32
	MaxClients      byte
	GameType        GameType
	LevelName       string
}
