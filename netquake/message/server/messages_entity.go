// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package server

import (
	"fmt"
	"math"

	"github.com/marko-gacesa/netquake/netquake"
	"github.com/marko-gacesa/netquake/netquake/message"
)

// EntityState is the full state of an entity, used for static entities and entity baselines.
type EntityState struct {
	Model    byte
	Frame    byte
	Colormap byte
	Skin     byte
	Origin   message.Vec3
	Angles   message.Vec3
}

func (e *EntityState) put(s *message.Serializer) {
	s.Put8(e.Model)
	s.Put8(e.Frame)
	s.Put8(e.Colormap)
	s.Put8(e.Skin)
	for i := range 3 {
		s.PutCoord(e.Origin[i])
		s.PutAngle(e.Angles[i])
	}
}

func (e *EntityState) get(s *message.Deserializer) {
	s.Get8(&e.Model)
	s.Get8(&e.Frame)
	s.Get8(&e.Colormap)
	s.Get8(&e.Skin)
	for i := range 3 {
		s.GetCoord(&e.Origin[i])
		s.GetAngle(&e.Angles[i])
	}
}

// SpawnStatic creates an entity that never changes for the rest of the level.
type SpawnStatic struct {
	State EntityState
}

var _ Command = (*SpawnStatic)(nil)

func (*SpawnStatic) Code() Code { return CodeSpawnStatic }

func (m *SpawnStatic) Put(buf []byte) []byte {
	return putCommand(buf, CodeSpawnStatic, m.State.put)
}

func (m *SpawnStatic) Get(buf []byte) ([]byte, error) {
	s, err := getCommand(buf, CodeSpawnStatic)
	if err != nil {
		return nil, err
	}
	m.State.get(&s)
	return done(&s, CodeSpawnStatic)
}

// SpawnBaseline sets the state entity updates of the entity are relative to.
type SpawnBaseline struct {
	Entity int16
	State  EntityState
}

var _ Command = (*SpawnBaseline)(nil)

func (*SpawnBaseline) Code() Code { return CodeSpawnBaseline }

func (m *SpawnBaseline) Put(buf []byte) []byte {
	return putCommand(buf, CodeSpawnBaseline, func(s *message.Serializer) {
		s.PutI16(m.Entity)
		m.State.put(s)
	})
}

func (m *SpawnBaseline) Get(buf []byte) ([]byte, error) {
	s, err := getCommand(buf, CodeSpawnBaseline)
	if err != nil {
		return nil, err
	}
	s.GetI16(&m.Entity)
	m.State.get(&s)
	return done(&s, CodeSpawnBaseline)
}

// EntityUpdate is the per-frame change of an entity relative to its baseline.
// On the wire the command code is the low byte of the update flags, with UpdateSignal always set.
type EntityUpdate struct {
	Entity   uint16
	NoLerp   bool
	Model    *byte
	Frame    *byte
	Colormap *byte
	Skin     *byte
	Effects  *byte
	OriginX  *float32
	Pitch    *float32
	OriginY  *float32
	Yaw      *float32
	OriginZ  *float32
	Roll     *float32
}

var _ Command = (*EntityUpdate)(nil)

func (*EntityUpdate) Code() Code { return CodeEntityUpdate }

func (m *EntityUpdate) flags() uint32 {
	flags := uint32(UpdateSignal) |
		message.FlagIf(m.Model, UpdateModel) |
		message.FlagIf(m.Frame, UpdateFrame) |
		message.FlagIf(m.Colormap, UpdateColormap) |
		message.FlagIf(m.Skin, UpdateSkin) |
		message.FlagIf(m.Effects, UpdateEffects) |
		message.FlagIf(m.OriginX, UpdateOriginX) |
		message.FlagIf(m.Pitch, UpdatePitch) |
		message.FlagIf(m.OriginY, UpdateOriginY) |
		message.FlagIf(m.Yaw, UpdateYaw) |
		message.FlagIf(m.OriginZ, UpdateOriginZ) |
		message.FlagIf(m.Roll, UpdateRoll)

	if m.NoLerp {
		flags |= UpdateNoLerp
	}
	if m.Entity > math.MaxUint8 {
		flags |= UpdateLongEntity
	}
	if flags > math.MaxUint8 {
		flags |= UpdateMoreBits
	}

	return flags
}

func (m *EntityUpdate) Put(buf []byte) []byte {
	flags := m.flags()

	s := message.NewSerializer(buf)
	s.Put8(byte(flags))
	if flags&UpdateMoreBits != 0 {
		s.Put8(byte(flags >> 8))
	}

	if flags&UpdateLongEntity != 0 {
		s.Put16(m.Entity)
	} else {
		s.Put8(byte(m.Entity))
	}

	message.PutOptional(&s, m.Model, (*message.Serializer).Put8)
	message.PutOptional(&s, m.Frame, (*message.Serializer).Put8)
	message.PutOptional(&s, m.Colormap, (*message.Serializer).Put8)
	message.PutOptional(&s, m.Skin, (*message.Serializer).Put8)
	message.PutOptional(&s, m.Effects, (*message.Serializer).Put8)
	message.PutOptional(&s, m.OriginX, (*message.Serializer).PutCoord)
	message.PutOptional(&s, m.Pitch, (*message.Serializer).PutAngle)
	message.PutOptional(&s, m.OriginY, (*message.Serializer).PutCoord)
	message.PutOptional(&s, m.Yaw, (*message.Serializer).PutAngle)
	message.PutOptional(&s, m.OriginZ, (*message.Serializer).PutCoord)
	message.PutOptional(&s, m.Roll, (*message.Serializer).PutAngle)

	return s.Bytes()
}

func (m *EntityUpdate) Get(buf []byte) ([]byte, error) {
	const what = "server command entity_update"

	if len(buf) == 0 {
		return nil, netquake.Malformed(what, netquake.ErrTruncated)
	}
	if Code(buf[0])&CodeEntityUpdate == 0 {
		return nil, netquake.Malformed(what, fmt.Errorf("unexpected code %d", buf[0]))
	}

	s := message.NewDeserializer(buf[1:])

	flags := uint32(buf[0])
	if flags&UpdateMoreBits != 0 {
		var b byte
		s.Get8(&b)
		flags |= uint32(b) << 8
	}
	message.CheckFlags(&s, flags, updateFlagsValid)

	if flags&UpdateLongEntity != 0 {
		s.Get16(&m.Entity)
	} else {
		var b byte
		s.Get8(&b)
		m.Entity = uint16(b)
	}

	m.NoLerp = flags&UpdateNoLerp != 0

	m.Model = message.GetOptional(&s, flags, UpdateModel, (*message.Deserializer).Get8)
	m.Frame = message.GetOptional(&s, flags, UpdateFrame, (*message.Deserializer).Get8)
	m.Colormap = message.GetOptional(&s, flags, UpdateColormap, (*message.Deserializer).Get8)
	m.Skin = message.GetOptional(&s, flags, UpdateSkin, (*message.Deserializer).Get8)
	m.Effects = message.GetOptional(&s, flags, UpdateEffects, (*message.Deserializer).Get8)
	m.OriginX = message.GetOptional(&s, flags, UpdateOriginX, (*message.Deserializer).GetCoord)
	m.Pitch = message.GetOptional(&s, flags, UpdatePitch, (*message.Deserializer).GetAngle)
	m.OriginY = message.GetOptional(&s, flags, UpdateOriginY, (*message.Deserializer).GetCoord)
	m.Yaw = message.GetOptional(&s, flags, UpdateYaw, (*message.Deserializer).GetAngle)
	m.OriginZ = message.GetOptional(&s, flags, UpdateOriginZ, (*message.Deserializer).GetCoord)
	m.Roll = message.GetOptional(&s, flags, UpdateRoll, (*message.Deserializer).GetAngle)

	if err := s.Error(); err != nil {
		return nil, netquake.Malformed(what, err)
	}

	return s.Bytes(), nil
}

// TempEntity is a short-lived effect. The kind selects which of the fields are on the wire:
// beams carry the entity and both end points, the colored explosion carries the origin and
// the color range, all other kinds carry only the origin.
type TempEntity struct {
	Kind        TempEntityKind
	Entity      int16
	Origin      message.Vec3
	End         message.Vec3
	ColorStart  byte
	ColorLength byte
}

var _ Command = (*TempEntity)(nil)

func (*TempEntity) Code() Code { return CodeTempEntity }

func (k TempEntityKind) isBeam() bool {
	switch k {
	case TempLightning1, TempLightning2, TempLightning3, TempBeam:
		return true
	}
	return false
}

func (k TempEntityKind) valid() bool {
	return k <= TempBeam
}

func (m *TempEntity) Put(buf []byte) []byte {
	return putCommand(buf, CodeTempEntity, func(s *message.Serializer) {
		s.Put8(byte(m.Kind))
		switch {
		case m.Kind.isBeam():
			s.PutI16(m.Entity)
			s.PutCoords(m.Origin)
			s.PutCoords(m.End)
		case m.Kind == TempExplosion2:
			s.PutCoords(m.Origin)
			s.Put8(m.ColorStart)
			s.Put8(m.ColorLength)
		default:
			s.PutCoords(m.Origin)
		}
	})
}

func (m *TempEntity) Get(buf []byte) ([]byte, error) {
	s, err := getCommand(buf, CodeTempEntity)
	if err != nil {
		return nil, err
	}

	s.Get8((*uint8)(&m.Kind))
	if s.Error() == nil && !m.Kind.valid() {
		s.Fail(fmt.Errorf("%w: temp entity kind %d", netquake.ErrInvalidCode, m.Kind))
	}

	switch {
	case m.Kind.isBeam():
		s.GetI16(&m.Entity)
		s.GetCoords(&m.Origin)
		s.GetCoords(&m.End)
	case m.Kind == TempExplosion2:
		s.GetCoords(&m.Origin)
		s.Get8(&m.ColorStart)
		s.Get8(&m.ColorLength)
	default:
		s.GetCoords(&m.Origin)
	}

	return done(&s, CodeTempEntity)
}

// ParticleDirectionScale is the number of wire units per world unit of a particle direction.
const ParticleDirectionScale = 16

// ParticleCountExplosion is the wire count that stands for an explosion of 1024 particles.
const ParticleCountExplosion = 255

// Particle spawns a particle effect.
type Particle struct {
	Origin    message.Vec3
	Direction message.Vec3
	Count     byte
	Color     byte
}

var _ Command = (*Particle)(nil)

func (*Particle) Code() Code { return CodeParticle }

func (m *Particle) Put(buf []byte) []byte {
	return putCommand(buf, CodeParticle, func(s *message.Serializer) {
		s.PutCoords(m.Origin)
		for _, d := range m.Direction {
			q := math.Round(float64(d) * ParticleDirectionScale)
			s.PutI8(int8(max(math.MinInt8, min(math.MaxInt8, q))))
		}
		s.Put8(m.Count)
		s.Put8(m.Color)
	})
}

func (m *Particle) Get(buf []byte) ([]byte, error) {
	s, err := getCommand(buf, CodeParticle)
	if err != nil {
		return nil, err
	}

	s.GetCoords(&m.Origin)
	for i := range m.Direction {
		var q int8
		s.GetI8(&q)
		m.Direction[i] = float32(q) / ParticleDirectionScale
	}
	s.Get8(&m.Count)
	s.Get8(&m.Color)

	return done(&s, CodeParticle)
}

// ParticleCount returns the number of particles to spawn.
func (m *Particle) ParticleCount() int {
	if m.Count == ParticleCountExplosion {
		return 1024
	}
	return int(m.Count)
}

// Damage reports damage taken by the player and the point it came from.
type Damage struct {
	Armor  byte
	Blood  byte
	Source message.Vec3
}

var _ Command = (*Damage)(nil)

func (*Damage) Code() Code { return CodeDamage }

func (m *Damage) Put(buf []byte) []byte {
	return putCommand(buf, CodeDamage, func(s *message.Serializer) {
		s.Put8(m.Armor)
		s.Put8(m.Blood)
		s.PutCoords(m.Source)
	})
}

func (m *Damage) Get(buf []byte) ([]byte, error) {
	s, err := getCommand(buf, CodeDamage)
	if err != nil {
		return nil, err
	}

	s.Get8(&m.Armor)
	s.Get8(&m.Blood)
	s.GetCoords(&m.Source)

	return done(&s, CodeDamage)
}
