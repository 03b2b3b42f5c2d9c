// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package server

import "github.com/marko-gacesa/netquake/netquake/message"

const (
	// DefaultSoundVolume is assumed when a Sound command carries no volume.
	DefaultSoundVolume = 255

	// DefaultSoundAttenuation is assumed when a Sound command carries no attenuation. It is 1.0 in 1/64 units.
	DefaultSoundAttenuation = 64
)

// Entity and channel share one 16-bit word on the wire: entity<<3 | channel.
func packEntityChannel(entity uint16, channel byte) uint16 {
	return entity<<3 | uint16(channel&0x07)
}

func unpackEntityChannel(v uint16) (entity uint16, channel byte) {
	return v >> 3, byte(v & 0x07)
}

// Sound starts a sound on an entity channel.
type Sound struct {
	Volume      *byte
	Attenuation *byte
	Looping     bool
	Entity      uint16
	Channel     byte
	Sound       byte
	Origin      message.Vec3
}

var _ Command = (*Sound)(nil)

func (*Sound) Code() Code { return CodeSound }

func (m *Sound) Put(buf []byte) []byte {
	return putCommand(buf, CodeSound, func(s *message.Serializer) {
		flags := message.FlagIf(m.Volume, SoundVolume) | message.FlagIf(m.Attenuation, SoundAttenuation)
		if m.Looping {
			flags |= SoundLooping
		}

		s.Put8(byte(flags))
		message.PutOptional(s, m.Volume, (*message.Serializer).Put8)
		message.PutOptional(s, m.Attenuation, (*message.Serializer).Put8)
		s.Put16(packEntityChannel(m.Entity, m.Channel))
		s.Put8(m.Sound)
		s.PutCoords(m.Origin)
	})
}

func (m *Sound) Get(buf []byte) ([]byte, error) {
	s, err := getCommand(buf, CodeSound)
	if err != nil {
		return nil, err
	}

	var b byte
	s.Get8(&b)
	flags := uint32(b)
	message.CheckFlags(&s, flags, soundFlagsValid)

	m.Volume = message.GetOptional(&s, flags, SoundVolume, (*message.Deserializer).Get8)
	m.Attenuation = message.GetOptional(&s, flags, SoundAttenuation, (*message.Deserializer).Get8)
	m.Looping = flags&SoundLooping != 0

	var entityChannel uint16
	s.Get16(&entityChannel)
	m.Entity, m.Channel = unpackEntityChannel(entityChannel)

	s.Get8(&m.Sound)
	s.GetCoords(&m.Origin)

	return done(&s, CodeSound)
}

// VolumeOrDefault returns the volume of the sound, or the default if it's not present.
func (m *Sound) VolumeOrDefault() byte {
	if m.Volume == nil {
		return DefaultSoundVolume
	}
	return *m.Volume
}

// AttenuationOrDefault returns the attenuation of the sound, or the default if it's not present.
func (m *Sound) AttenuationOrDefault() byte {
	if m.Attenuation == nil {
		return DefaultSoundAttenuation
	}
	return *m.Attenuation
}

// StopSound stops the sound playing on an entity channel.
type StopSound struct {
	Entity  uint16
	Channel byte
}

var _ Command = (*StopSound)(nil)

func (*StopSound) Code() Code { return CodeStopSound }

func (m *StopSound) Put(buf []byte) []byte {
	return putCommand(buf, CodeStopSound, func(s *message.Serializer) {
		s.Put16(packEntityChannel(m.Entity, m.Channel))
	})
}

func (m *StopSound) Get(buf []byte) ([]byte, error) {
	s, err := getCommand(buf, CodeStopSound)
	if err != nil {
		return nil, err
	}

	var entityChannel uint16
	s.Get16(&entityChannel)
	m.Entity, m.Channel = unpackEntityChannel(entityChannel)

	return done(&s, CodeStopSound)
}

// SpawnStaticSound starts an ambient sound that loops for the rest of the level.
type SpawnStaticSound struct {
	Origin      message.Vec3
	Sound       byte
	Volume      byte
	Attenuation byte
}

var _ Command = (*SpawnStaticSound)(nil)

func (*SpawnStaticSound) Code() Code { return CodeSpawnStaticSound }

func (m *SpawnStaticSound) Put(buf []byte) []byte {
	return putCommand(buf, CodeSpawnStaticSound, func(s *message.Serializer) {
		s.PutCoords(m.Origin)
		s.Put8(m.Sound)
		s.Put8(m.Volume)
		s.Put8(m.Attenuation)
	})
}

func (m *SpawnStaticSound) Get(buf []byte) ([]byte, error) {
	s, err := getCommand(buf, CodeSpawnStaticSound)
	if err != nil {
		return nil, err
	}

	s.GetCoords(&m.Origin)
	s.Get8(&m.Sound)
	s.Get8(&m.Volume)
	s.Get8(&m.Attenuation)

	return done(&s, CodeSpawnStaticSound)
}
