// Copyright (c) 2023, 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package message

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/marko-gacesa/netquake/netquake"
)

// Serializer appends little-endian encoded values to a byte slice.
type Serializer struct {
	buf     []byte
	origLen int
}

func NewSerializer(buf []byte) Serializer {
	return Serializer{buf: buf, origLen: len(buf)}
}

// Len returns the number of bytes appended so far.
func (s *Serializer) Len() int {
	return len(s.buf) - s.origLen
}

func (s *Serializer) Bytes() []byte {
	return s.buf
}

func (s *Serializer) Put8(v uint8) {
	s.buf = append(s.buf, v)
}

func (s *Serializer) PutI8(v int8) {
	s.buf = append(s.buf, uint8(v))
}

func (s *Serializer) Put16(v uint16) {
	s.buf = binary.LittleEndian.AppendUint16(s.buf, v)
}

func (s *Serializer) PutI16(v int16) {
	s.buf = binary.LittleEndian.AppendUint16(s.buf, uint16(v))
}

func (s *Serializer) Put32(v uint32) {
	s.buf = binary.LittleEndian.AppendUint32(s.buf, v)
}

func (s *Serializer) PutI32(v int32) {
	s.buf = binary.LittleEndian.AppendUint32(s.buf, uint32(v))
}

func (s *Serializer) PutF32(v float32) {
	s.buf = binary.LittleEndian.AppendUint32(s.buf, math.Float32bits(v))
}

// PutStr writes a NUL-terminated string. The string must not contain NUL bytes.
func (s *Serializer) PutStr(v string) {
	s.buf = append(s.buf, v...)
	s.buf = append(s.buf, 0)
}

// PutStrList writes every string NUL-terminated, followed by an empty string.
func (s *Serializer) PutStrList(v []string) {
	for _, str := range v {
		s.PutStr(str)
	}
	s.Put8(0)
}

func (s *Serializer) PutCoord(v float32) {
	s.PutI16(EncodeCoord(v))
}

func (s *Serializer) PutAngle(v float32) {
	s.PutI8(EncodeAngle(v))
}

func (s *Serializer) PutCoords(v Vec3) {
	for i := range v {
		s.PutCoord(v[i])
	}
}

func (s *Serializer) PutAngles(v Vec3) {
	for i := range v {
		s.PutAngle(v[i])
	}
}

func (s *Serializer) Put(v Putter) {
	s.buf = v.Put(s.buf)
}

// Deserializer reads little-endian encoded values from a byte slice.
// The first failure is remembered. All subsequent reads are no-ops and return zero values.
type Deserializer struct {
	buf     []byte
	origLen int
	err     error
}

func NewDeserializer(buf []byte) Deserializer {
	return Deserializer{buf: buf, origLen: len(buf)}
}

// Len returns the number of bytes consumed so far.
func (s *Deserializer) Len() int {
	return s.origLen - len(s.buf)
}

// Bytes returns the unread part of the input.
func (s *Deserializer) Bytes() []byte {
	return s.buf
}

func (s *Deserializer) Error() error {
	return s.err
}

// Fail records err unless an error has already been recorded.
func (s *Deserializer) Fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

func (s *Deserializer) take(n int) []byte {
	if s.err != nil {
		return nil
	}
	if len(s.buf) < n {
		s.err = netquake.ErrTruncated
		s.buf = s.buf[len(s.buf):]
		return nil
	}
	b := s.buf[:n]
	s.buf = s.buf[n:]
	return b
}

func (s *Deserializer) Get8(v *uint8) {
	if b := s.take(1); b != nil {
		*v = b[0]
	}
}

func (s *Deserializer) GetI8(v *int8) {
	if b := s.take(1); b != nil {
		*v = int8(b[0])
	}
}

func (s *Deserializer) Get16(v *uint16) {
	if b := s.take(2); b != nil {
		*v = binary.LittleEndian.Uint16(b)
	}
}

func (s *Deserializer) GetI16(v *int16) {
	if b := s.take(2); b != nil {
		*v = int16(binary.LittleEndian.Uint16(b))
	}
}

func (s *Deserializer) Get32(v *uint32) {
	if b := s.take(4); b != nil {
		*v = binary.LittleEndian.Uint32(b)
	}
}

func (s *Deserializer) GetI32(v *int32) {
	if b := s.take(4); b != nil {
		*v = int32(binary.LittleEndian.Uint32(b))
	}
}

func (s *Deserializer) GetF32(v *float32) {
	if b := s.take(4); b != nil {
		*v = math.Float32frombits(binary.LittleEndian.Uint32(b))
	}
}

// GetStr reads a NUL-terminated string. Input ending before the terminator is an error.
func (s *Deserializer) GetStr(v *string) {
	if s.err != nil {
		return
	}
	idx := bytes.IndexByte(s.buf, 0)
	if idx < 0 {
		s.Fail(netquake.ErrTruncated)
		s.buf = s.buf[len(s.buf):]
		return
	}
	*v = string(s.buf[:idx])
	s.buf = s.buf[idx+1:]
}

// GetStrList reads NUL-terminated strings until an empty one.
func (s *Deserializer) GetStrList(v *[]string) {
	var list []string
	for {
		var str string
		s.GetStr(&str)
		if s.err != nil || str == "" {
			break
		}
		list = append(list, str)
	}
	*v = list
}

func (s *Deserializer) GetCoord(v *float32) {
	var q int16
	s.GetI16(&q)
	*v = DecodeCoord(q)
}

func (s *Deserializer) GetAngle(v *float32) {
	var q int8
	s.GetI8(&q)
	*v = DecodeAngle(q)
}

func (s *Deserializer) GetCoords(v *Vec3) {
	for i := range v {
		s.GetCoord(&v[i])
	}
}

func (s *Deserializer) GetAngles(v *Vec3) {
	for i := range v {
		s.GetAngle(&v[i])
	}
}
