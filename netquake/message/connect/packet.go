// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package connect

import (
	"encoding/binary"
	"fmt"

	"github.com/marko-gacesa/netquake/netquake"
	"github.com/marko-gacesa/netquake/netquake/message"
)

// sizeBase is the control word followed by the code.
const sizeBase = message.SizeOfControlWord + 1

// putPacket appends a control packet: a big-endian control word holding the packet length,
// the code and the content written by fn.
func putPacket(buf []byte, code Code, fn func(s *message.Serializer)) []byte {
	start := len(buf)
	buf = append(buf, 0, 0, 0, 0)

	s := message.NewSerializer(buf)
	s.Put8(byte(code))
	fn(&s)
	buf = s.Bytes()

	binary.BigEndian.PutUint32(buf[start:], message.FlagControl|uint32(len(buf)-start)&message.FlagLengthMask)

	return buf
}

// getPacket validates the control word and the code and returns a deserializer positioned at the content.
func getPacket(buf []byte, code Code) (message.Deserializer, error) {
	if len(buf) < sizeBase {
		return message.Deserializer{}, netquake.Malformed("control packet", netquake.ErrTruncated)
	}

	word := binary.BigEndian.Uint32(buf)
	if word&^message.FlagLengthMask != message.FlagControl {
		return message.Deserializer{}, netquake.Malformed("control packet", fmt.Errorf("%w: %#x", netquake.ErrInvalidFlags, word))
	}

	if length := int(word & message.FlagLengthMask); length != len(buf) {
		return message.Deserializer{}, netquake.Malformed("control packet",
			fmt.Errorf("length mismatch: header=%d packet=%d", length, len(buf)))
	}

	if got := Code(buf[message.SizeOfControlWord]); got != code {
		return message.Deserializer{}, netquake.Malformed("control packet "+code.String(),
			fmt.Errorf("unexpected code %s", got))
	}

	return message.NewDeserializer(buf[sizeBase:]), nil
}

func done(s *message.Deserializer, code Code) ([]byte, error) {
	if err := s.Error(); err != nil {
		return nil, netquake.Malformed("control packet "+code.String(), err)
	}
	return s.Bytes(), nil
}

// ParseRequest decodes a control packet sent by a client.
func ParseRequest(buf []byte) (Request, error) {
	if len(buf) < sizeBase {
		return nil, netquake.Malformed("request", netquake.ErrTruncated)
	}

	var m Request

	switch code := Code(buf[message.SizeOfControlWord]); code {
	case CodeConnect:
		m = &Connect{}
	case CodeServerInfo:
		m = &ServerInfoRequest{}
	case CodePlayerInfo:
		m = &PlayerInfoRequest{}
	case CodeRuleInfo:
		m = &RuleInfoRequest{}
	default:
		return nil, netquake.InvalidCode("request", byte(code))
	}

	if _, err := m.Get(buf); err != nil {
		return nil, err
	}

	return m, nil
}

// ParseResponse decodes a control packet sent by a server.
func ParseResponse(buf []byte) (Response, error) {
	if len(buf) < sizeBase {
		return nil, netquake.Malformed("response", netquake.ErrTruncated)
	}

	var m Response

	switch code := Code(buf[message.SizeOfControlWord]); code {
	case CodeAccept:
		m = &Accept{}
	case CodeReject:
		m = &Reject{}
	case CodeServerReply:
		m = &ServerInfo{}
	case CodePlayerReply:
		m = &PlayerInfo{}
	case CodeRuleReply:
		m = &RuleInfo{}
	default:
		return nil, netquake.InvalidCode("response", byte(code))
	}

	if _, err := m.Get(buf); err != nil {
		return nil, err
	}

	return m, nil
}
