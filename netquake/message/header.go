// Copyright (c) 2023, 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package message

import (
	"encoding/binary"
	"fmt"

	"github.com/marko-gacesa/netquake/netquake"
)

// Header control word flags. The low 16 bits of the control word hold the datagram length,
// header included.
const (
	FlagLengthMask uint32 = 0x0000FFFF
	FlagData       uint32 = 0x00010000
	FlagAck        uint32 = 0x00020000
	FlagNak        uint32 = 0x00040000
	FlagEOM        uint32 = 0x00080000
	FlagUnreliable uint32 = 0x00100000
	FlagControl    uint32 = 0x80000000

	flagMask = FlagData | FlagAck | FlagNak | FlagEOM | FlagUnreliable | FlagControl
)

// SizeOfControlWord is the size of the word that starts every datagram.
const SizeOfControlWord = 4

// Header precedes the payload of every data datagram. Unlike the payload it is big-endian.
type Header struct {
	Flags    uint32
	Length   int
	Sequence uint32
}

// Put appends the header. Length must include the header itself.
func (h *Header) Put(buf []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, h.Flags|uint32(h.Length)&FlagLengthMask)
	buf = binary.BigEndian.AppendUint32(buf, h.Sequence)
	return buf
}

// Get decodes the header of a datagram and validates its length against the datagram size.
func (h *Header) Get(buf []byte) ([]byte, error) {
	if len(buf) < netquake.HeaderSize {
		return nil, netquake.Malformed("datagram header", netquake.ErrTruncated)
	}

	word := binary.BigEndian.Uint32(buf[:SizeOfControlWord])
	h.Flags = word &^ FlagLengthMask
	h.Length = int(word & FlagLengthMask)
	h.Sequence = binary.BigEndian.Uint32(buf[SizeOfControlWord:netquake.HeaderSize])

	if h.Flags&^flagMask != 0 {
		return nil, netquake.Malformed("datagram header", fmt.Errorf("%w: %#x", netquake.ErrInvalidFlags, h.Flags))
	}

	if h.Length != len(buf) {
		return nil, netquake.Malformed("datagram header",
			fmt.Errorf("length mismatch: header=%d datagram=%d", h.Length, len(buf)))
	}

	return buf[netquake.HeaderSize:], nil
}

// IsControl reports whether the datagram is a connection control packet.
func IsControl(buf []byte) bool {
	return len(buf) >= SizeOfControlWord && binary.BigEndian.Uint32(buf)&FlagControl != 0
}
