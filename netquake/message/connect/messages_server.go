// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package connect

import "github.com/marko-gacesa/netquake/netquake/message"

// Accept tells the client on which port the server expects the session traffic.
// The port is sent as a 32-bit signed value and must be validated by the receiver.
type Accept struct {
	Port int32
}

var _ Response = (*Accept)(nil)

func (*Accept) Code() Code { return CodeAccept }
func (*Accept) response()  {}

func (m *Accept) Put(buf []byte) []byte {
	return putPacket(buf, CodeAccept, func(s *message.Serializer) {
		s.PutI32(m.Port)
	})
}

func (m *Accept) Get(buf []byte) ([]byte, error) {
	s, err := getPacket(buf, CodeAccept)
	if err != nil {
		return nil, err
	}
	s.GetI32(&m.Port)
	return done(&s, CodeAccept)
}

// Reject carries the human-readable reason the server declined the connection.
type Reject struct {
	Message string
}

var _ Response = (*Reject)(nil)

func (*Reject) Code() Code { return CodeReject }
func (*Reject) response()  {}

func (m *Reject) Put(buf []byte) []byte {
	return putPacket(buf, CodeReject, func(s *message.Serializer) {
		s.PutStr(m.Message)
	})
}

func (m *Reject) Get(buf []byte) ([]byte, error) {
	s, err := getPacket(buf, CodeReject)
	if err != nil {
		return nil, err
	}
	s.GetStr(&m.Message)
	return done(&s, CodeReject)
}

// ServerInfo describes the server. It's the reply to ServerInfoRequest.
type ServerInfo struct {
	Address    string
	Hostname   string
	Level      string
	Players    byte
	MaxPlayers byte
	Version    byte
}

var _ Response = (*ServerInfo)(nil)

func (*ServerInfo) Code() Code { return CodeServerReply }
func (*ServerInfo) response()  {}

func (m *ServerInfo) Put(buf []byte) []byte {
	return putPacket(buf, CodeServerReply, func(s *message.Serializer) {
		s.PutStr(m.Address)
		s.PutStr(m.Hostname)
		s.PutStr(m.Level)
		s.Put8(m.Players)
		s.Put8(m.MaxPlayers)
		s.Put8(m.Version)
	})
}

func (m *ServerInfo) Get(buf []byte) ([]byte, error) {
	s, err := getPacket(buf, CodeServerReply)
	if err != nil {
		return nil, err
	}
	s.GetStr(&m.Address)
	s.GetStr(&m.Hostname)
	s.GetStr(&m.Level)
	s.Get8(&m.Players)
	s.Get8(&m.MaxPlayers)
	s.Get8(&m.Version)
	return done(&s, CodeServerReply)
}

// PlayerInfo describes a connected player. It's the reply to PlayerInfoRequest.
type PlayerInfo struct {
	Index       byte
	Name        string
	Colors      int32
	Frags       int32
	ConnectTime int32 // seconds
	Address     string
}

var _ Response = (*PlayerInfo)(nil)

func (*PlayerInfo) Code() Code { return CodePlayerReply }
func (*PlayerInfo) response()  {}

func (m *PlayerInfo) Put(buf []byte) []byte {
	return putPacket(buf, CodePlayerReply, func(s *message.Serializer) {
		s.Put8(m.Index)
		s.PutStr(m.Name)
		s.PutI32(m.Colors)
		s.PutI32(m.Frags)
		s.PutI32(m.ConnectTime)
		s.PutStr(m.Address)
	})
}

func (m *PlayerInfo) Get(buf []byte) ([]byte, error) {
	s, err := getPacket(buf, CodePlayerReply)
	if err != nil {
		return nil, err
	}
	s.Get8(&m.Index)
	s.GetStr(&m.Name)
	s.GetI32(&m.Colors)
	s.GetI32(&m.Frags)
	s.GetI32(&m.ConnectTime)
	s.GetStr(&m.Address)
	return done(&s, CodePlayerReply)
}

// RuleInfo is the name and the value of a server rule. It's the reply to RuleInfoRequest.
// The server replies with an empty RuleInfo when there are no more rules.
type RuleInfo struct {
	Name  string
	Value string
}

var _ Response = (*RuleInfo)(nil)

func (*RuleInfo) Code() Code { return CodeRuleReply }
func (*RuleInfo) response()  {}

// End reports whether this is the reply marking the end of the rule list.
func (m *RuleInfo) End() bool { return m.Name == "" }

func (m *RuleInfo) Put(buf []byte) []byte {
	return putPacket(buf, CodeRuleReply, func(s *message.Serializer) {
		if m.End() {
			return
		}
		s.PutStr(m.Name)
		s.PutStr(m.Value)
	})
}

func (m *RuleInfo) Get(buf []byte) ([]byte, error) {
	s, err := getPacket(buf, CodeRuleReply)
	if err != nil {
		return nil, err
	}
	if len(s.Bytes()) == 0 {
		m.Name, m.Value = "", ""
		return nil, nil
	}
	s.GetStr(&m.Name)
	s.GetStr(&m.Value)
	return done(&s, CodeRuleReply)
}
