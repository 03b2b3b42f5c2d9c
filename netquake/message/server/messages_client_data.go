// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package server

import (
	"math"

	"github.com/marko-gacesa/netquake/netquake/message"
)

// VelocityScale is the number of world units per second in one wire unit of a client velocity.
const VelocityScale = 16

func putVelocity(s *message.Serializer, v float32) {
	q := math.Round(float64(v) / VelocityScale)
	s.PutI8(int8(max(math.MinInt8, min(math.MaxInt8, q))))
}

func getVelocity(s *message.Deserializer, v *float32) {
	var q int8
	s.GetI8(&q)
	*v = float32(q) * VelocityScale
}

// ClientData is the per-frame state of the player the client controls.
// Absent fields keep their previous value on the client, except view height and ideal pitch
// which fall back to the defaults.
type ClientData struct {
	ViewHeight  *int8
	IdealPitch  *int8
	PunchPitch  *int8
	PunchYaw    *int8
	PunchRoll   *int8
	VelocityX   *float32
	VelocityY   *float32
	VelocityZ   *float32
	Items       int32
	OnGround    bool
	InWater     bool
	WeaponFrame *byte
	Armor       *byte
	Weapon      *byte
	Health      int16
	Ammo        byte
	Shells      byte
	Nails       byte
	Rockets     byte
	Cells       byte
	ActiveItem  byte
}

var _ Command = (*ClientData)(nil)

func (*ClientData) Code() Code { return CodeClientData }

func (m *ClientData) flags() uint32 {
	flags := message.FlagIf(m.ViewHeight, ClientViewHeight) |
		message.FlagIf(m.IdealPitch, ClientIdealPitch) |
		message.FlagIf(m.PunchPitch, ClientPunchPitch) |
		message.FlagIf(m.PunchYaw, ClientPunchYaw) |
		message.FlagIf(m.PunchRoll, ClientPunchRoll) |
		message.FlagIf(m.VelocityX, ClientVelocityX) |
		message.FlagIf(m.VelocityY, ClientVelocityY) |
		message.FlagIf(m.VelocityZ, ClientVelocityZ) |
		message.FlagIf(m.WeaponFrame, ClientWeaponFrame) |
		message.FlagIf(m.Armor, ClientArmor) |
		message.FlagIf(m.Weapon, ClientWeapon) |
		ClientItems

	if m.OnGround {
		flags |= ClientOnGround
	}
	if m.InWater {
		flags |= ClientInWater
	}

	return flags
}

func (m *ClientData) Put(buf []byte) []byte {
	return putCommand(buf, CodeClientData, func(s *message.Serializer) {
		s.Put16(uint16(m.flags()))

		message.PutOptional(s, m.ViewHeight, (*message.Serializer).PutI8)
		message.PutOptional(s, m.IdealPitch, (*message.Serializer).PutI8)

		// punch angle and velocity components are interleaved per axis
		message.PutOptional(s, m.PunchPitch, (*message.Serializer).PutI8)
		message.PutOptional(s, m.VelocityX, putVelocity)
		message.PutOptional(s, m.PunchYaw, (*message.Serializer).PutI8)
		message.PutOptional(s, m.VelocityY, putVelocity)
		message.PutOptional(s, m.PunchRoll, (*message.Serializer).PutI8)
		message.PutOptional(s, m.VelocityZ, putVelocity)

		s.PutI32(m.Items)

		message.PutOptional(s, m.WeaponFrame, (*message.Serializer).Put8)
		message.PutOptional(s, m.Armor, (*message.Serializer).Put8)
		message.PutOptional(s, m.Weapon, (*message.Serializer).Put8)

		s.PutI16(m.Health)
		s.Put8(m.Ammo)
		s.Put8(m.Shells)
		s.Put8(m.Nails)
		s.Put8(m.Rockets)
		s.Put8(m.Cells)
		s.Put8(m.ActiveItem)
	})
}

func (m *ClientData) Get(buf []byte) ([]byte, error) {
	s, err := getCommand(buf, CodeClientData)
	if err != nil {
		return nil, err
	}

	var w uint16
	s.Get16(&w)
	flags := uint32(w)
	message.CheckFlags(&s, flags, clientFlagsValid)

	m.ViewHeight = message.GetOptional(&s, flags, ClientViewHeight, (*message.Deserializer).GetI8)
	m.IdealPitch = message.GetOptional(&s, flags, ClientIdealPitch, (*message.Deserializer).GetI8)

	m.PunchPitch = message.GetOptional(&s, flags, ClientPunchPitch, (*message.Deserializer).GetI8)
	m.VelocityX = message.GetOptional(&s, flags, ClientVelocityX, getVelocity)
	m.PunchYaw = message.GetOptional(&s, flags, ClientPunchYaw, (*message.Deserializer).GetI8)
	m.VelocityY = message.GetOptional(&s, flags, ClientVelocityY, getVelocity)
	m.PunchRoll = message.GetOptional(&s, flags, ClientPunchRoll, (*message.Deserializer).GetI8)
	m.VelocityZ = message.GetOptional(&s, flags, ClientVelocityZ, getVelocity)

	// Servers always send the items, with or without the flag.
	s.GetI32(&m.Items)

	m.OnGround = flags&ClientOnGround != 0
	m.InWater = flags&ClientInWater != 0

	m.WeaponFrame = message.GetOptional(&s, flags, ClientWeaponFrame, (*message.Deserializer).Get8)
	m.Armor = message.GetOptional(&s, flags, ClientArmor, (*message.Deserializer).Get8)
	m.Weapon = message.GetOptional(&s, flags, ClientWeapon, (*message.Deserializer).Get8)

	s.GetI16(&m.Health)
	s.Get8(&m.Ammo)
	s.Get8(&m.Shells)
	s.Get8(&m.Nails)
	s.Get8(&m.Rockets)
	s.Get8(&m.Cells)
	s.Get8(&m.ActiveItem)

	return done(&s, CodeClientData)
}
