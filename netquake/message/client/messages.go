// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package client

import (
	"fmt"

	"github.com/marko-gacesa/netquake/netquake"
	"github.com/marko-gacesa/netquake/netquake/message"
)

func putCommand(buf []byte, code Code, fn func(s *message.Serializer)) []byte {
	s := message.NewSerializer(buf)
	s.Put8(byte(code))
	if fn != nil {
		fn(&s)
	}
	return s.Bytes()
}

func getCommand(buf []byte, code Code, fn func(s *message.Deserializer)) ([]byte, error) {
	what := "client command " + code.String()

	if len(buf) == 0 {
		return nil, netquake.Malformed(what, netquake.ErrTruncated)
	}
	if got := Code(buf[0]); got != code {
		return nil, netquake.Malformed(what, fmt.Errorf("unexpected code %d", got))
	}

	s := message.NewDeserializer(buf[1:])
	if fn != nil {
		fn(&s)
	}

	if err := s.Error(); err != nil {
		return nil, netquake.Malformed(what, err)
	}

	return s.Bytes(), nil
}

type NoOp struct{}

var _ Command = (*NoOp)(nil)

func (*NoOp) Code() Code                       { return CodeNoOp }
func (m *NoOp) Put(buf []byte) []byte          { return putCommand(buf, CodeNoOp, nil) }
func (m *NoOp) Get(buf []byte) ([]byte, error) { return getCommand(buf, CodeNoOp, nil) }

// Disconnect tells the server the client is leaving.
type Disconnect struct{}

var _ Command = (*Disconnect)(nil)

func (*Disconnect) Code() Code                       { return CodeDisconnect }
func (m *Disconnect) Put(buf []byte) []byte          { return putCommand(buf, CodeDisconnect, nil) }
func (m *Disconnect) Get(buf []byte) ([]byte, error) { return getCommand(buf, CodeDisconnect, nil) }

// Move is the player input of one frame. Time echoes the server time the input was sampled at.
type Move struct {
	Time    float32
	Angles  message.Vec3
	Forward int16
	Side    int16
	Up      int16
	Buttons byte
	Impulse byte
}

var _ Command = (*Move)(nil)

func (*Move) Code() Code { return CodeMove }

func (m *Move) Put(buf []byte) []byte {
	return putCommand(buf, CodeMove, func(s *message.Serializer) {
		s.PutF32(m.Time)
		s.PutAngles(m.Angles)
		s.PutI16(m.Forward)
		s.PutI16(m.Side)
		s.PutI16(m.Up)
		s.Put8(m.Buttons)
		s.Put8(m.Impulse)
	})
}

func (m *Move) Get(buf []byte) ([]byte, error) {
	return getCommand(buf, CodeMove, func(s *message.Deserializer) {
		s.GetF32(&m.Time)
		s.GetAngles(&m.Angles)
		s.GetI16(&m.Forward)
		s.GetI16(&m.Side)
		s.GetI16(&m.Up)
		s.Get8(&m.Buttons)
		s.Get8(&m.Impulse)
	})
}

// StringCmd is a console command executed by the server on behalf of the client.
type StringCmd struct {
	Text string
}

var _ Command = (*StringCmd)(nil)

func (*StringCmd) Code() Code { return CodeStringCmd }

func (m *StringCmd) Put(buf []byte) []byte {
	return putCommand(buf, CodeStringCmd, func(s *message.Serializer) {
		s.PutStr(m.Text)
	})
}

func (m *StringCmd) Get(buf []byte) ([]byte, error) {
	return getCommand(buf, CodeStringCmd, func(s *message.Deserializer) {
		s.GetStr(&m.Text)
	})
}
