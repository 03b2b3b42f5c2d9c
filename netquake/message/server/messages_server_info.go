// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package server

import (
	"github.com/marko-gacesa/netquake/netquake"
	"github.com/marko-gacesa/netquake/netquake/message"
)

// ServerInfo starts the sign-on of a level. Model and sound names are the precache lists:
// the first name of each list occupies slot 1, slot 0 is reserved for "no asset".
type ServerInfo struct {
	ProtocolVersion int32
	MaxClients      byte
	GameType        netquake.GameType
	Message         string
	Models          []string
	Sounds          []string
}

var _ Command = (*ServerInfo)(nil)

func (*ServerInfo) Code() Code { return CodeServerInfo }

func (m *ServerInfo) Put(buf []byte) []byte {
	return putCommand(buf, CodeServerInfo, func(s *message.Serializer) {
		s.PutI32(m.ProtocolVersion)
		s.Put8(m.MaxClients)
		s.Put8(byte(m.GameType))
		s.PutStr(m.Message)
		s.PutStrList(m.Models)
		s.PutStrList(m.Sounds)
	})
}

func (m *ServerInfo) Get(buf []byte) ([]byte, error) {
	s, err := getCommand(buf, CodeServerInfo)
	if err != nil {
		return nil, err
	}

	s.GetI32(&m.ProtocolVersion)
	s.Get8(&m.MaxClients)
	s.Get8((*uint8)(&m.GameType))
	s.GetStr(&m.Message)
	s.GetStrList(&m.Models)
	s.GetStrList(&m.Sounds)

	return done(&s, CodeServerInfo)
}

// Info returns the session metadata carried by the command.
func (m *ServerInfo) Info() netquake.ServerInfo {
	return netquake.ServerInfo{
		ProtocolVersion: m.ProtocolVersion,
		MaxClients:      m.MaxClients,
		GameType:        m.GameType,
		LevelName:       m.Message,
	}
}

// UpdateName sets the name of a player in the scoreboard.
type UpdateName struct {
	Player byte
	Name   string
}

var _ Command = (*UpdateName)(nil)

func (*UpdateName) Code() Code { return CodeUpdateName }

func (m *UpdateName) Put(buf []byte) []byte {
	return putCommand(buf, CodeUpdateName, func(s *message.Serializer) {
		s.Put8(m.Player)
		s.PutStr(m.Name)
	})
}

func (m *UpdateName) Get(buf []byte) ([]byte, error) {
	s, err := getCommand(buf, CodeUpdateName)
	if err != nil {
		return nil, err
	}
	s.Get8(&m.Player)
	s.GetStr(&m.Name)
	return done(&s, CodeUpdateName)
}

// UpdateFrags sets the frag count of a player in the scoreboard.
type UpdateFrags struct {
	Player byte
	Frags  int16
}

var _ Command = (*UpdateFrags)(nil)

func (*UpdateFrags) Code() Code { return CodeUpdateFrags }

func (m *UpdateFrags) Put(buf []byte) []byte {
	return putCommand(buf, CodeUpdateFrags, func(s *message.Serializer) {
		s.Put8(m.Player)
		s.PutI16(m.Frags)
	})
}

func (m *UpdateFrags) Get(buf []byte) ([]byte, error) {
	s, err := getCommand(buf, CodeUpdateFrags)
	if err != nil {
		return nil, err
	}
	s.Get8(&m.Player)
	s.GetI16(&m.Frags)
	return done(&s, CodeUpdateFrags)
}

// UpdateColors sets the shirt (high nibble) and pants (low nibble) colors of a player.
type UpdateColors struct {
	Player byte
	Colors byte
}

var _ Command = (*UpdateColors)(nil)

func (*UpdateColors) Code() Code { return CodeUpdateColors }

func (m *UpdateColors) Put(buf []byte) []byte {
	return putCommand(buf, CodeUpdateColors, func(s *message.Serializer) {
		s.Put8(m.Player)
		s.Put8(m.Colors)
	})
}

func (m *UpdateColors) Get(buf []byte) ([]byte, error) {
	s, err := getCommand(buf, CodeUpdateColors)
	if err != nil {
		return nil, err
	}
	s.Get8(&m.Player)
	s.Get8(&m.Colors)
	return done(&s, CodeUpdateColors)
}
