// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package server

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/marko-gacesa/netquake/netquake"
	"github.com/marko-gacesa/netquake/netquake/message"
)

var cmpOpts = []cmp.Option{
	cmpopts.EquateEmpty(),
	cmpopts.EquateApprox(0, 1e-4),
}

func allCommands() []Command {
	return []Command{
		&NoOp{},
		&Disconnect{},
		&UpdateStat{Stat: StatHealth, Value: 100},
		&UpdateStat{Stat: StatKilledMonsters, Value: -1},
		&Version{Version: netquake.ProtocolVersion},
		&SetView{Entity: 1},
		&Sound{Entity: 12, Channel: 3, Sound: 7, Origin: message.Vec3{10, -20.5, 64.125}},
		&Sound{Volume: message.Ptr[byte](128), Attenuation: message.Ptr[byte](32), Looping: true, Entity: 8000, Channel: 7, Sound: 1},
		&Time{Time: 12.25},
		&Print{Text: "ranger entered the game\n"},
		&StuffText{Text: "bf\n"},
		&SetAngle{Angles: message.Vec3{45, -90, 0}},
		&ServerInfo{
			ProtocolVersion: netquake.ProtocolVersion,
			MaxClients:      8,
			GameType:        netquake.GameTypeDeathmatch,
			Message:         "the Slipgate Complex",
			Models:          []string{"maps/e1m1.bsp", "*1", "progs/player.mdl"},
			Sounds:          []string{"weapons/r_exp3.wav"},
		},
		&ServerInfo{ProtocolVersion: netquake.ProtocolVersion, MaxClients: 1},
		&LightStyle{ID: 0, Value: "m"},
		&UpdateName{Player: 2, Name: "ranger"},
		&UpdateFrags{Player: 2, Frags: -3},
		&ClientData{Items: 0x1001, Health: 100, Ammo: 25, Shells: 25, ActiveItem: 1},
		&ClientData{
			ViewHeight:  message.Ptr[int8](22),
			IdealPitch:  message.Ptr[int8](-10),
			PunchPitch:  message.Ptr[int8](-2),
			PunchYaw:    message.Ptr[int8](1),
			PunchRoll:   message.Ptr[int8](3),
			VelocityX:   message.Ptr[float32](320),
			VelocityY:   message.Ptr[float32](-160),
			VelocityZ:   message.Ptr[float32](16),
			Items:       0x2002,
			OnGround:    true,
			InWater:     true,
			WeaponFrame: message.Ptr[byte](4),
			Armor:       message.Ptr[byte](150),
			Weapon:      message.Ptr[byte](9),
			Health:      -5,
			Ammo:        10,
			Shells:      1,
			Nails:       2,
			Rockets:     3,
			Cells:       4,
			ActiveItem:  32,
		},
		&StopSound{Entity: 300, Channel: 2},
		&UpdateColors{Player: 1, Colors: 0x4D},
		&Particle{Origin: message.Vec3{1, 2, 3}, Direction: message.Vec3{0.5, -0.25, 1}, Count: 20, Color: 73},
		&Damage{Armor: 3, Blood: 12, Source: message.Vec3{-100, 200.5, 0}},
		&SpawnStatic{State: EntityState{Model: 5, Frame: 1, Colormap: 0, Skin: 2, Origin: message.Vec3{8, 16, -24}, Angles: message.Vec3{0, 90, 0}}},
		&SpawnBaseline{Entity: 42, State: EntityState{Model: 3, Origin: message.Vec3{0.125, 0, 0}, Angles: message.Vec3{45, 0, -45}}},
		&TempEntity{Kind: TempSpike, Origin: message.Vec3{1, 2, 3}},
		&TempEntity{Kind: TempLightning2, Entity: 7, Origin: message.Vec3{1, 2, 3}, End: message.Vec3{4, 5, 6}},
		&TempEntity{Kind: TempExplosion2, Origin: message.Vec3{-1, -2, -3}, ColorStart: 32, ColorLength: 16},
		&SetPause{Paused: true},
		&SignOnNum{Stage: 2},
		&CenterPrint{Text: "The door is locked"},
		&KilledMonster{},
		&FoundSecret{},
		&SpawnStaticSound{Origin: message.Vec3{1, 2, 3}, Sound: 4, Volume: 255, Attenuation: 3},
		&Intermission{},
		&Finale{Text: "Congratulations"},
		&CdTrack{Track: 4, Loop: 4},
		&SellScreen{},
		&Cutscene{Text: "..."},
		&EntityUpdate{Entity: 1},
		&EntityUpdate{
			Entity:   400,
			NoLerp:   true,
			Model:    message.Ptr[byte](9),
			Frame:    message.Ptr[byte](3),
			Colormap: message.Ptr[byte](1),
			Skin:     message.Ptr[byte](2),
			Effects:  message.Ptr[byte](8),
			OriginX:  message.Ptr[float32](512),
			Pitch:    message.Ptr[float32](-45),
			OriginY:  message.Ptr[float32](-0.5),
			Yaw:      message.Ptr[float32](90),
			OriginZ:  message.Ptr[float32](24),
			Roll:     message.Ptr[float32](0),
		},
	}
}

func TestCommandSerialize(t *testing.T) {
	for _, cmd := range allCommands() {
		t.Run(cmd.Code().String(), func(t *testing.T) {
			buf := cmd.Put(nil)

			clone, rest, err := Parse(buf)
			if err != nil {
				t.Fatalf("failed to parse: %s", err.Error())
			}

			if len(rest) != 0 {
				t.Errorf("unread bytes: %d", len(rest))
			}

			if diff := cmp.Diff(cmd, clone, cmpOpts...); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCommandsCoverAllCodes(t *testing.T) {
	seen := map[Code]bool{}
	for _, cmd := range allCommands() {
		seen[cmd.Code()] = true
	}

	for code := range codeNames {
		if code == CodeBad {
			continue
		}
		if !seen[code] {
			t.Errorf("no test command for %s", code)
		}
	}
}

func TestOptionalPresence(t *testing.T) {
	t.Run("sound", func(t *testing.T) {
		cmd := &Sound{Attenuation: message.Ptr[byte](0), Entity: 1, Sound: 2}
		buf := cmd.Put(nil)

		if want := []byte{byte(CodeSound), SoundAttenuation, 0}; !reflect.DeepEqual(want, buf[:3]) {
			t.Errorf("prefix mismatch: want=%v got=%v", want, buf[:3])
		}

		var clone Sound
		if _, err := clone.Get(buf); err != nil {
			t.Fatalf("failed to parse: %s", err.Error())
		}

		if clone.Volume != nil {
			t.Errorf("volume should be absent, got %d", *clone.Volume)
		}
		if clone.Attenuation == nil || *clone.Attenuation != 0 {
			t.Errorf("attenuation should be present and zero")
		}
		if clone.VolumeOrDefault() != DefaultSoundVolume {
			t.Errorf("expected default volume, got %d", clone.VolumeOrDefault())
		}
	})

	t.Run("client-data", func(t *testing.T) {
		cmd := &ClientData{PunchYaw: message.Ptr[int8](0), VelocityZ: message.Ptr[float32](0), Armor: message.Ptr[byte](0)}
		buf := cmd.Put(nil)

		var clone ClientData
		if _, err := clone.Get(buf); err != nil {
			t.Fatalf("failed to parse: %s", err.Error())
		}

		if diff := cmp.Diff(cmd, &clone, cmpOpts...); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}

		if clone.ViewHeight != nil || clone.PunchPitch != nil || clone.VelocityX != nil || clone.Weapon != nil {
			t.Errorf("absent fields decoded as present: %+v", clone)
		}
	})

	t.Run("entity-update", func(t *testing.T) {
		cmd := &EntityUpdate{Entity: 5, OriginX: message.Ptr[float32](1)}
		buf := cmd.Put(nil)

		if want := []byte{UpdateSignal | UpdateOriginX, 5, 8, 0}; !reflect.DeepEqual(want, buf) {
			t.Errorf("wire mismatch: want=%v got=%v", want, buf)
		}

		cmd = &EntityUpdate{Entity: 300, Yaw: message.Ptr[float32](90)}
		buf = cmd.Put(nil)

		if want := []byte{UpdateSignal | UpdateMoreBits | UpdateYaw, UpdateLongEntity >> 8, 0x2C, 0x01, 64}; !reflect.DeepEqual(want, buf) {
			t.Errorf("wire mismatch: want=%v got=%v", want, buf)
		}

		var clone EntityUpdate
		if _, err := clone.Get(buf); err != nil {
			t.Fatalf("failed to parse: %s", err.Error())
		}

		if diff := cmp.Diff(cmd, &clone, cmpOpts...); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		err  error
	}{
		{name: "unused-code", buf: []byte{21}, err: netquake.ErrInvalidCode},
		{name: "unknown-code", buf: []byte{0x50}, err: netquake.ErrInvalidCode},
		{name: "bad-code", buf: []byte{byte(CodeBad)}, err: netquake.ErrInvalidCode},
		{name: "truncated-time", buf: []byte{byte(CodeTime), 0, 0}, err: netquake.ErrTruncated},
		{name: "unterminated-print", buf: []byte{byte(CodePrint), 'h', 'i'}, err: netquake.ErrTruncated},
		{name: "stat-out-of-range", buf: []byte{byte(CodeUpdateStat), 15, 0, 0, 0, 0}, err: netquake.ErrInvalidCode},
		{name: "sound-flags", buf: []byte{byte(CodeSound), 0x08, 0, 0, 0, 0, 0, 0, 0, 0, 0}, err: netquake.ErrInvalidFlags},
		{name: "client-data-aim-bit", buf: append([]byte{byte(CodeClientData), 0x00, 0x03}, make([]byte, 13)...), err: netquake.ErrInvalidFlags},
		{name: "temp-entity-kind", buf: []byte{byte(CodeTempEntity), 14, 0, 0, 0, 0, 0, 0}, err: netquake.ErrInvalidCode},
		{name: "entity-update-bit-15", buf: []byte{0x81, 0x80, 1}, err: netquake.ErrInvalidFlags},
		{name: "truncated-entity-update", buf: []byte{UpdateSignal | UpdateOriginX, 5, 8}, err: netquake.ErrTruncated},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cmd, _, err := Parse(test.buf)
			if err == nil {
				t.Fatalf("expected error, got command %+v", cmd)
			}

			if !netquake.IsMalformed(err) {
				t.Errorf("expected malformed error, got %T: %s", err, err.Error())
			}

			if !errors.Is(err, test.err) {
				t.Errorf("expected %q, got %q", test.err.Error(), err.Error())
			}
		})
	}
}

func TestParseAll(t *testing.T) {
	commands := []Command{
		&Time{Time: 1.5},
		&EntityUpdate{Entity: 3, Frame: message.Ptr[byte](2)},
		&Print{Text: "hello\n"},
	}

	buf := Append(nil, commands...)

	list, err := ParseAll(buf)
	if err != nil {
		t.Fatalf("failed to parse: %s", err.Error())
	}

	if diff := cmp.Diff(commands, list, cmpOpts...); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	list, err = ParseAll(append(buf, 21, byte(CodeNoOp)))
	if !errors.Is(err, netquake.ErrInvalidCode) {
		t.Errorf("expected invalid code error, got %v", err)
	}

	if diff := cmp.Diff(commands, list, cmpOpts...); diff != "" {
		t.Errorf("partial result mismatch (-want +got):\n%s", diff)
	}

	list, err = ParseAll(nil)
	if err != nil || len(list) != 0 {
		t.Errorf("empty message should decode to nothing: list=%v err=%v", list, err)
	}
}
