// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package server

import (
	"fmt"

	"github.com/marko-gacesa/netquake/netquake"
	"github.com/marko-gacesa/netquake/netquake/message"
)

func putNothing(*message.Serializer) {}

func getEmpty(buf []byte, code Code) ([]byte, error) {
	s, err := getCommand(buf, code)
	if err != nil {
		return nil, err
	}
	return done(&s, code)
}

func putText(buf []byte, code Code, text string) []byte {
	return putCommand(buf, code, func(s *message.Serializer) {
		s.PutStr(text)
	})
}

func getText(buf []byte, code Code, text *string) ([]byte, error) {
	s, err := getCommand(buf, code)
	if err != nil {
		return nil, err
	}
	s.GetStr(text)
	return done(&s, code)
}

// NoOp carries no content.
type NoOp struct{}

var _ Command = (*NoOp)(nil)

func (*NoOp) Code() Code                       { return CodeNoOp }
func (m *NoOp) Put(buf []byte) []byte          { return putCommand(buf, CodeNoOp, putNothing) }
func (m *NoOp) Get(buf []byte) ([]byte, error) { return getEmpty(buf, CodeNoOp) }

// Disconnect ends the session.
type Disconnect struct{}

var _ Command = (*Disconnect)(nil)

func (*Disconnect) Code() Code                       { return CodeDisconnect }
func (m *Disconnect) Put(buf []byte) []byte          { return putCommand(buf, CodeDisconnect, putNothing) }
func (m *Disconnect) Get(buf []byte) ([]byte, error) { return getEmpty(buf, CodeDisconnect) }

// UpdateStat sets one of the client's statistics.
type UpdateStat struct {
	Stat  Stat
	Value int32
}

var _ Command = (*UpdateStat)(nil)

func (*UpdateStat) Code() Code { return CodeUpdateStat }

func (m *UpdateStat) Put(buf []byte) []byte {
	return putCommand(buf, CodeUpdateStat, func(s *message.Serializer) {
		s.Put8(byte(m.Stat))
		s.PutI32(m.Value)
	})
}

func (m *UpdateStat) Get(buf []byte) ([]byte, error) {
	s, err := getCommand(buf, CodeUpdateStat)
	if err != nil {
		return nil, err
	}
	s.Get8((*uint8)(&m.Stat))
	if s.Error() == nil && m.Stat >= statCount {
		s.Fail(fmt.Errorf("%w: stat %d", netquake.ErrInvalidCode, m.Stat))
	}
	s.GetI32(&m.Value)
	return done(&s, CodeUpdateStat)
}

// Version announces the protocol version.
type Version struct {
	Version int32
}

var _ Command = (*Version)(nil)

func (*Version) Code() Code { return CodeVersion }

func (m *Version) Put(buf []byte) []byte {
	return putCommand(buf, CodeVersion, func(s *message.Serializer) {
		s.PutI32(m.Version)
	})
}

func (m *Version) Get(buf []byte) ([]byte, error) {
	s, err := getCommand(buf, CodeVersion)
	if err != nil {
		return nil, err
	}
	s.GetI32(&m.Version)
	return done(&s, CodeVersion)
}

// SetView sets the entity the camera is attached to.
type SetView struct {
	Entity int16
}

var _ Command = (*SetView)(nil)

func (*SetView) Code() Code { return CodeSetView }

func (m *SetView) Put(buf []byte) []byte {
	return putCommand(buf, CodeSetView, func(s *message.Serializer) {
		s.PutI16(m.Entity)
	})
}

func (m *SetView) Get(buf []byte) ([]byte, error) {
	s, err := getCommand(buf, CodeSetView)
	if err != nil {
		return nil, err
	}
	s.GetI16(&m.Entity)
	return done(&s, CodeSetView)
}

// Time is the server time, in seconds, of the frame that follows.
type Time struct {
	Time float32
}

var _ Command = (*Time)(nil)

func (*Time) Code() Code { return CodeTime }

func (m *Time) Put(buf []byte) []byte {
	return putCommand(buf, CodeTime, func(s *message.Serializer) {
		s.PutF32(m.Time)
	})
}

func (m *Time) Get(buf []byte) ([]byte, error) {
	s, err := getCommand(buf, CodeTime)
	if err != nil {
		return nil, err
	}
	s.GetF32(&m.Time)
	return done(&s, CodeTime)
}

// Print is text for the console.
type Print struct {
	Text string
}

var _ Command = (*Print)(nil)

func (*Print) Code() Code                       { return CodePrint }
func (m *Print) Put(buf []byte) []byte          { return putText(buf, CodePrint, m.Text) }
func (m *Print) Get(buf []byte) ([]byte, error) { return getText(buf, CodePrint, &m.Text) }

// StuffText is text the client should execute as console commands.
type StuffText struct {
	Text string
}

var _ Command = (*StuffText)(nil)

func (*StuffText) Code() Code                       { return CodeStuffText }
func (m *StuffText) Put(buf []byte) []byte          { return putText(buf, CodeStuffText, m.Text) }
func (m *StuffText) Get(buf []byte) ([]byte, error) { return getText(buf, CodeStuffText, &m.Text) }

// SetAngle sets the view angles to an absolute value.
type SetAngle struct {
	Angles message.Vec3
}

var _ Command = (*SetAngle)(nil)

func (*SetAngle) Code() Code { return CodeSetAngle }

func (m *SetAngle) Put(buf []byte) []byte {
	return putCommand(buf, CodeSetAngle, func(s *message.Serializer) {
		s.PutAngles(m.Angles)
	})
}

func (m *SetAngle) Get(buf []byte) ([]byte, error) {
	s, err := getCommand(buf, CodeSetAngle)
	if err != nil {
		return nil, err
	}
	s.GetAngles(&m.Angles)
	return done(&s, CodeSetAngle)
}

// LightStyle sets the animation pattern of a light style.
type LightStyle struct {
	ID    byte
	Value string
}

var _ Command = (*LightStyle)(nil)

func (*LightStyle) Code() Code { return CodeLightStyle }

func (m *LightStyle) Put(buf []byte) []byte {
	return putCommand(buf, CodeLightStyle, func(s *message.Serializer) {
		s.Put8(m.ID)
		s.PutStr(m.Value)
	})
}

func (m *LightStyle) Get(buf []byte) ([]byte, error) {
	s, err := getCommand(buf, CodeLightStyle)
	if err != nil {
		return nil, err
	}
	s.Get8(&m.ID)
	s.GetStr(&m.Value)
	return done(&s, CodeLightStyle)
}

// SetPause pauses or resumes the game.
type SetPause struct {
	Paused bool
}

var _ Command = (*SetPause)(nil)

func (*SetPause) Code() Code { return CodeSetPause }

func (m *SetPause) Put(buf []byte) []byte {
	return putCommand(buf, CodeSetPause, func(s *message.Serializer) {
		var b byte
		if m.Paused {
			b = 1
		}
		s.Put8(b)
	})
}

func (m *SetPause) Get(buf []byte) ([]byte, error) {
	s, err := getCommand(buf, CodeSetPause)
	if err != nil {
		return nil, err
	}
	var b byte
	s.Get8(&b)
	m.Paused = b != 0
	return done(&s, CodeSetPause)
}

// SignOnNum advances the sign-on sequence.
type SignOnNum struct {
	Stage byte
}

var _ Command = (*SignOnNum)(nil)

func (*SignOnNum) Code() Code { return CodeSignOnNum }

func (m *SignOnNum) Put(buf []byte) []byte {
	return putCommand(buf, CodeSignOnNum, func(s *message.Serializer) {
		s.Put8(m.Stage)
	})
}

func (m *SignOnNum) Get(buf []byte) ([]byte, error) {
	s, err := getCommand(buf, CodeSignOnNum)
	if err != nil {
		return nil, err
	}
	s.Get8(&m.Stage)
	return done(&s, CodeSignOnNum)
}

// CenterPrint is text displayed in the center of the screen.
type CenterPrint struct {
	Text string
}

var _ Command = (*CenterPrint)(nil)

func (*CenterPrint) Code() Code                       { return CodeCenterPrint }
func (m *CenterPrint) Put(buf []byte) []byte          { return putText(buf, CodeCenterPrint, m.Text) }
func (m *CenterPrint) Get(buf []byte) ([]byte, error) { return getText(buf, CodeCenterPrint, &m.Text) }

type KilledMonster struct{}

var _ Command = (*KilledMonster)(nil)

func (*KilledMonster) Code() Code                       { return CodeKilledMonster }
func (m *KilledMonster) Put(buf []byte) []byte          { return putCommand(buf, CodeKilledMonster, putNothing) }
func (m *KilledMonster) Get(buf []byte) ([]byte, error) { return getEmpty(buf, CodeKilledMonster) }

type FoundSecret struct{}

var _ Command = (*FoundSecret)(nil)

func (*FoundSecret) Code() Code                       { return CodeFoundSecret }
func (m *FoundSecret) Put(buf []byte) []byte          { return putCommand(buf, CodeFoundSecret, putNothing) }
func (m *FoundSecret) Get(buf []byte) ([]byte, error) { return getEmpty(buf, CodeFoundSecret) }

// Intermission starts the end of level screen.
type Intermission struct{}

var _ Command = (*Intermission)(nil)

func (*Intermission) Code() Code                       { return CodeIntermission }
func (m *Intermission) Put(buf []byte) []byte          { return putCommand(buf, CodeIntermission, putNothing) }
func (m *Intermission) Get(buf []byte) ([]byte, error) { return getEmpty(buf, CodeIntermission) }

// Finale starts the end of episode screen with the provided text.
type Finale struct {
	Text string
}

var _ Command = (*Finale)(nil)

func (*Finale) Code() Code                       { return CodeFinale }
func (m *Finale) Put(buf []byte) []byte          { return putText(buf, CodeFinale, m.Text) }
func (m *Finale) Get(buf []byte) ([]byte, error) { return getText(buf, CodeFinale, &m.Text) }

// CdTrack selects the background music track.
type CdTrack struct {
	Track byte
	Loop  byte
}

var _ Command = (*CdTrack)(nil)

func (*CdTrack) Code() Code { return CodeCdTrack }

func (m *CdTrack) Put(buf []byte) []byte {
	return putCommand(buf, CodeCdTrack, func(s *message.Serializer) {
		s.Put8(m.Track)
		s.Put8(m.Loop)
	})
}

func (m *CdTrack) Get(buf []byte) ([]byte, error) {
	s, err := getCommand(buf, CodeCdTrack)
	if err != nil {
		return nil, err
	}
	s.Get8(&m.Track)
	s.Get8(&m.Loop)
	return done(&s, CodeCdTrack)
}

type SellScreen struct{}

var _ Command = (*SellScreen)(nil)

func (*SellScreen) Code() Code                       { return CodeSellScreen }
func (m *SellScreen) Put(buf []byte) []byte          { return putCommand(buf, CodeSellScreen, putNothing) }
func (m *SellScreen) Get(buf []byte) ([]byte, error) { return getEmpty(buf, CodeSellScreen) }

// Cutscene starts an in-game cutscene with the provided text.
type Cutscene struct {
	Text string
}

var _ Command = (*Cutscene)(nil)

func (*Cutscene) Code() Code                       { return CodeCutscene }
func (m *Cutscene) Put(buf []byte) []byte          { return putText(buf, CodeCutscene, m.Text) }
func (m *Cutscene) Get(buf []byte) ([]byte, error) { return getText(buf, CodeCutscene, &m.Text) }
