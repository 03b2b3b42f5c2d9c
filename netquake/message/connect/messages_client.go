// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package connect

import "github.com/marko-gacesa/netquake/netquake/message"

// Connect asks the server for a dedicated session port.
type Connect struct {
	Game    string
	Version byte
}

var _ Request = (*Connect)(nil)

func (*Connect) Code() Code { return CodeConnect }
func (*Connect) request()   {}

func (m *Connect) Put(buf []byte) []byte {
	return putPacket(buf, CodeConnect, func(s *message.Serializer) {
		s.PutStr(m.Game)
		s.Put8(m.Version)
	})
}

func (m *Connect) Get(buf []byte) ([]byte, error) {
	s, err := getPacket(buf, CodeConnect)
	if err != nil {
		return nil, err
	}
	s.GetStr(&m.Game)
	s.Get8(&m.Version)
	return done(&s, CodeConnect)
}

// ServerInfoRequest asks the server to describe itself.
type ServerInfoRequest struct {
	Game    string
	Version byte
}

var _ Request = (*ServerInfoRequest)(nil)

func (*ServerInfoRequest) Code() Code { return CodeServerInfo }
func (*ServerInfoRequest) request()   {}

func (m *ServerInfoRequest) Put(buf []byte) []byte {
	return putPacket(buf, CodeServerInfo, func(s *message.Serializer) {
		s.PutStr(m.Game)
		s.Put8(m.Version)
	})
}

func (m *ServerInfoRequest) Get(buf []byte) ([]byte, error) {
	s, err := getPacket(buf, CodeServerInfo)
	if err != nil {
		return nil, err
	}
	s.GetStr(&m.Game)
	s.Get8(&m.Version)
	return done(&s, CodeServerInfo)
}

// PlayerInfoRequest asks for the details of the player in the given slot.
type PlayerInfoRequest struct {
	Player byte
}

var _ Request = (*PlayerInfoRequest)(nil)

func (*PlayerInfoRequest) Code() Code { return CodePlayerInfo }
func (*PlayerInfoRequest) request()   {}

func (m *PlayerInfoRequest) Put(buf []byte) []byte {
	return putPacket(buf, CodePlayerInfo, func(s *message.Serializer) {
		s.Put8(m.Player)
	})
}

func (m *PlayerInfoRequest) Get(buf []byte) ([]byte, error) {
	s, err := getPacket(buf, CodePlayerInfo)
	if err != nil {
		return nil, err
	}
	s.Get8(&m.Player)
	return done(&s, CodePlayerInfo)
}

// RuleInfoRequest asks for the server rule that follows Previous.
// An empty Previous asks for the first rule.
type RuleInfoRequest struct {
	Previous string
}

var _ Request = (*RuleInfoRequest)(nil)

func (*RuleInfoRequest) Code() Code { return CodeRuleInfo }
func (*RuleInfoRequest) request()   {}

func (m *RuleInfoRequest) Put(buf []byte) []byte {
	return putPacket(buf, CodeRuleInfo, func(s *message.Serializer) {
		s.PutStr(m.Previous)
	})
}

func (m *RuleInfoRequest) Get(buf []byte) ([]byte, error) {
	s, err := getPacket(buf, CodeRuleInfo)
	if err != nil {
		return nil, err
	}
	s.GetStr(&m.Previous)
	return done(&s, CodeRuleInfo)
}
