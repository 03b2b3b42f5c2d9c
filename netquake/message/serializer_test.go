// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package message

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/marko-gacesa/netquake/netquake"
)

func TestSerializer(t *testing.T) {
	s := NewSerializer(nil)
	s.Put8(0xAB)
	s.PutI8(-2)
	s.Put16(0x1234)
	s.PutI16(-300)
	s.Put32(0xDEADBEEF)
	s.PutI32(-70000)
	s.PutF32(1.5)
	s.PutStr("hello")
	s.PutStrList([]string{"maps/e1m1.bsp", "progs/player.mdl"})
	s.PutStrList(nil)

	if s.Len() != len(s.Bytes()) {
		t.Errorf("length mismatch: len=%d bytes=%d", s.Len(), len(s.Bytes()))
	}

	var (
		u8   uint8
		i8   int8
		u16  uint16
		i16  int16
		u32  uint32
		i32  int32
		f32  float32
		str  string
		list []string
		none []string
	)

	d := NewDeserializer(s.Bytes())
	d.Get8(&u8)
	d.GetI8(&i8)
	d.Get16(&u16)
	d.GetI16(&i16)
	d.Get32(&u32)
	d.GetI32(&i32)
	d.GetF32(&f32)
	d.GetStr(&str)
	d.GetStrList(&list)
	d.GetStrList(&none)

	if err := d.Error(); err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}

	if len(d.Bytes()) != 0 {
		t.Errorf("unread bytes: %d", len(d.Bytes()))
	}

	if u8 != 0xAB || i8 != -2 || u16 != 0x1234 || i16 != -300 || u32 != 0xDEADBEEF || i32 != -70000 || f32 != 1.5 {
		t.Errorf("numeric mismatch: %x %d %x %d %x %d %f", u8, i8, u16, i16, u32, i32, f32)
	}

	if str != "hello" {
		t.Errorf("string mismatch: %q", str)
	}

	if want := []string{"maps/e1m1.bsp", "progs/player.mdl"}; !reflect.DeepEqual(want, list) {
		t.Errorf("list mismatch: want=%q got=%q", want, list)
	}

	if len(none) != 0 {
		t.Errorf("expected empty list, got %q", none)
	}
}

func TestDeserializer_Truncated(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		fn   func(d *Deserializer)
	}{
		{
			name: "int32",
			buf:  []byte{1, 2, 3},
			fn:   func(d *Deserializer) { var v int32; d.GetI32(&v) },
		},
		{
			name: "string-without-terminator",
			buf:  []byte("text"),
			fn:   func(d *Deserializer) { var v string; d.GetStr(&v) },
		},
		{
			name: "list-without-sentinel",
			buf:  []byte("a\x00b\x00"),
			fn:   func(d *Deserializer) { var v []string; d.GetStrList(&v) },
		},
		{
			name: "coords",
			buf:  []byte{0, 1, 0, 2},
			fn:   func(d *Deserializer) { var v Vec3; d.GetCoords(&v) },
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d := NewDeserializer(test.buf)
			test.fn(&d)

			if !errors.Is(d.Error(), netquake.ErrTruncated) {
				t.Errorf("expected truncated error, got: %v", d.Error())
			}

			var after uint8 = 7
			d.Get8(&after)
			if after != 7 {
				t.Errorf("read after failure modified the value")
			}
		})
	}
}

func TestCoord(t *testing.T) {
	for _, v := range []float32{0, 0.125, -0.125, 1, -1, 100.5, -2048.375, 4095.875, -4095.875} {
		if got := DecodeCoord(EncodeCoord(v)); got != v {
			t.Errorf("coord round trip: want=%f got=%f", v, got)
		}
	}

	if got := EncodeCoord(1.06); got != 8 {
		t.Errorf("coord rounding: want=8 got=%d", got)
	}

	if got := EncodeCoord(5000); got != math.MaxInt16 {
		t.Errorf("coord saturation: want=%d got=%d", math.MaxInt16, got)
	}

	if got := EncodeCoord(-5000); got != math.MinInt16 {
		t.Errorf("coord saturation: want=%d got=%d", math.MinInt16, got)
	}
}

// angleDistance returns the absolute difference of two angles, taking wrap-around into account.
func angleDistance(a, b float32) float64 {
	d := math.Mod(math.Abs(float64(a-b)), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

func TestAngle(t *testing.T) {
	for v := float32(-720); v <= 720; v += 0.7 {
		got := DecodeAngle(EncodeAngle(v))
		if d := angleDistance(got, v); d > AngleStep {
			t.Errorf("angle round trip: value=%f got=%f distance=%f", v, got, d)
		}
	}

	tests := []struct {
		deg float32
		exp int8
	}{
		{deg: 0, exp: 0},
		{deg: 90, exp: 64},
		{deg: -90, exp: -64},
		{deg: 180, exp: -128},
		{deg: 360, exp: 0},
		{deg: 45, exp: 32},
	}

	for _, test := range tests {
		if got := EncodeAngle(test.deg); got != test.exp {
			t.Errorf("angle encode %f: want=%d got=%d", test.deg, test.exp, got)
		}
	}
}

func TestOptional(t *testing.T) {
	const (
		bitA = 1 << 0
		bitB = 1 << 1
		bitC = 1 << 2
	)

	type fields struct {
		A *uint8
		B *int16
		C *float32
	}

	tests := []fields{
		{},
		{A: Ptr[uint8](5)},
		{B: Ptr[int16](-7)},
		{A: Ptr[uint8](0), C: Ptr[float32](12.5)},
		{A: Ptr[uint8](1), B: Ptr[int16](2), C: Ptr[float32](-3)},
	}

	for _, f := range tests {
		flags := FlagIf(f.A, bitA) | FlagIf(f.B, bitB) | FlagIf(f.C, bitC)

		s := NewSerializer(nil)
		s.Put8(uint8(flags))
		PutOptional(&s, f.A, (*Serializer).Put8)
		PutOptional(&s, f.B, (*Serializer).PutI16)
		PutOptional(&s, f.C, (*Serializer).PutCoord)

		d := NewDeserializer(s.Bytes())
		var flagsGot uint8
		d.Get8(&flagsGot)
		CheckFlags(&d, uint32(flagsGot), bitA|bitB|bitC)

		var got fields
		got.A = GetOptional(&d, uint32(flagsGot), bitA, (*Deserializer).Get8)
		got.B = GetOptional(&d, uint32(flagsGot), bitB, (*Deserializer).GetI16)
		got.C = GetOptional(&d, uint32(flagsGot), bitC, (*Deserializer).GetCoord)

		if err := d.Error(); err != nil {
			t.Fatalf("unexpected error: %s", err.Error())
		}

		if !reflect.DeepEqual(f, got) {
			t.Errorf("optional fields mismatch: flags=%b", flags)
		}
	}
}

func TestCheckFlags(t *testing.T) {
	d := NewDeserializer(nil)
	CheckFlags(&d, 0b1011, 0b0011)

	if !errors.Is(d.Error(), netquake.ErrInvalidFlags) {
		t.Errorf("expected invalid flags error, got: %v", d.Error())
	}
}
