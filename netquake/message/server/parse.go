// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package server

import (
	"fmt"

	"github.com/marko-gacesa/netquake/netquake"
	"github.com/marko-gacesa/netquake/netquake/message"
)

func putCommand(buf []byte, code Code, fn func(s *message.Serializer)) []byte {
	s := message.NewSerializer(buf)
	s.Put8(byte(code))
	fn(&s)
	return s.Bytes()
}

func getCommand(buf []byte, code Code) (message.Deserializer, error) {
	if len(buf) == 0 {
		return message.Deserializer{}, netquake.Malformed("server command "+code.String(), netquake.ErrTruncated)
	}

	if got := Code(buf[0]); got != code {
		return message.Deserializer{}, netquake.Malformed("server command "+code.String(),
			fmt.Errorf("unexpected code %d", got))
	}

	return message.NewDeserializer(buf[1:]), nil
}

func done(s *message.Deserializer, code Code) ([]byte, error) {
	if err := s.Error(); err != nil {
		return nil, netquake.Malformed("server command "+code.String(), err)
	}
	return s.Bytes(), nil
}

func newCommand(code Code) Command {
	if code&CodeEntityUpdate != 0 {
		return &EntityUpdate{}
	}

	switch code {
	case CodeNoOp:
		return &NoOp{}
	case CodeDisconnect:
		return &Disconnect{}
	case CodeUpdateStat:
		return &UpdateStat{}
	case CodeVersion:
		return &Version{}
	case CodeSetView:
		return &SetView{}
	case CodeSound:
		return &Sound{}
	case CodeTime:
		return &Time{}
	case CodePrint:
		return &Print{}
	case CodeStuffText:
		return &StuffText{}
	case CodeSetAngle:
		return &SetAngle{}
	case CodeServerInfo:
		return &ServerInfo{}
	case CodeLightStyle:
		return &LightStyle{}
	case CodeUpdateName:
		return &UpdateName{}
	case CodeUpdateFrags:
		return &UpdateFrags{}
	case CodeClientData:
		return &ClientData{}
	case CodeStopSound:
		return &StopSound{}
	case CodeUpdateColors:
		return &UpdateColors{}
	case CodeParticle:
		return &Particle{}
	case CodeDamage:
		return &Damage{}
	case CodeSpawnStatic:
		return &SpawnStatic{}
	case CodeSpawnBaseline:
		return &SpawnBaseline{}
	case CodeTempEntity:
		return &TempEntity{}
	case CodeSetPause:
		return &SetPause{}
	case CodeSignOnNum:
		return &SignOnNum{}
	case CodeCenterPrint:
		return &CenterPrint{}
	case CodeKilledMonster:
		return &KilledMonster{}
	case CodeFoundSecret:
		return &FoundSecret{}
	case CodeSpawnStaticSound:
		return &SpawnStaticSound{}
	case CodeIntermission:
		return &Intermission{}
	case CodeFinale:
		return &Finale{}
	case CodeCdTrack:
		return &CdTrack{}
	case CodeSellScreen:
		return &SellScreen{}
	case CodeCutscene:
		return &Cutscene{}
	}

	return nil
}

// Parse decodes the command at the beginning of buf and returns the unread rest.
// An empty buffer yields a nil command and no error.
func Parse(buf []byte) (Command, []byte, error) {
	if len(buf) == 0 {
		return nil, nil, nil
	}

	m := newCommand(Code(buf[0]))
	if m == nil {
		return nil, nil, netquake.InvalidCode("server command", buf[0])
	}

	rest, err := m.Get(buf)
	if err != nil {
		return nil, nil, err
	}

	return m, rest, nil
}

// ParseAll decodes commands back to back until the buffer is exhausted.
// On failure it returns the commands decoded before the failing one together with the error:
// the stream position after a malformed command is unknown, so nothing after it can be used.
func ParseAll(buf []byte) ([]Command, error) {
	var list []Command

	for len(buf) > 0 {
		m, rest, err := Parse(buf)
		if err != nil {
			return list, err
		}

		list = append(list, m)
		buf = rest
	}

	return list, nil
}

// Append encodes all commands, one after another, to buf.
func Append(buf []byte, commands ...Command) []byte {
	for _, m := range commands {
		buf = m.Put(buf)
	}
	return buf
}
