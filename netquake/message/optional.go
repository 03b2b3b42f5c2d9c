// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package message

import (
	"fmt"

	"github.com/marko-gacesa/netquake/netquake"
)

// Optional fields are represented by pointers: nil means the field is not present on the wire.
// A flag word precedes them and has exactly one bit set for every present field.
// The writer derives the flag word from the fields with FlagIf and then writes
// the fields in bit order with PutOptional. The reader reads the flag word first
// and decodes each field with GetOptional, relying on nothing but the flags.

// FlagIf returns bit if the optional value is present, zero otherwise.
func FlagIf[T any](v *T, bit uint32) uint32 {
	if v == nil {
		return 0
	}
	return bit
}

// PutOptional writes the value with put only if it is present.
func PutOptional[T any](s *Serializer, v *T, put func(*Serializer, T)) {
	if v == nil {
		return
	}
	put(s, *v)
}

// GetOptional reads a value with get only if bit is set in flags. Otherwise, it returns nil.
func GetOptional[T any](s *Deserializer, flags, bit uint32, get func(*Deserializer, *T)) *T {
	if flags&bit == 0 {
		return nil
	}
	v := new(T)
	get(s, v)
	return v
}

// CheckFlags fails the deserializer if flags contain any bit outside of valid.
func CheckFlags(s *Deserializer, flags, valid uint32) {
	if invalid := flags &^ valid; invalid != 0 {
		s.Fail(fmt.Errorf("invalid flag bits %#x: %w", invalid, netquake.ErrInvalidFlags))
	}
}

// Ptr returns a pointer to a copy of v. Handy for setting optional fields.
func Ptr[T any](v T) *T {
	return &v
}
