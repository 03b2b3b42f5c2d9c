// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package client

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/marko-gacesa/netquake/netquake"
	"github.com/marko-gacesa/netquake/netquake/message"
)

func TestCommandSerialize(t *testing.T) {
	tests := []Command{
		&NoOp{},
		&Disconnect{},
		&Move{Time: 3.5, Angles: message.Vec3{-45, 90, 0}, Forward: 200, Side: -350, Up: 0, Buttons: ButtonAttack | ButtonJump, Impulse: 10},
		&StringCmd{Text: "name ranger"},
		&StringCmd{},
	}

	for _, cmd := range tests {
		t.Run(cmd.Code().String(), func(t *testing.T) {
			buf := cmd.Put(nil)

			clone, rest, err := Parse(buf)
			if err != nil {
				t.Fatalf("failed to parse: %s", err.Error())
			}

			if len(rest) != 0 {
				t.Errorf("unread bytes: %d", len(rest))
			}

			if diff := cmp.Diff(cmd, clone, cmpopts.EquateApprox(0, 1e-4)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMoveWire(t *testing.T) {
	buf := (&Move{Time: 1, Angles: message.Vec3{0, 90, 0}, Forward: 1}).Put(nil)

	want := []byte{
		byte(CodeMove),
		0x00, 0x00, 0x80, 0x3F, // 1.0
		0, 64, 0, // angles
		1, 0, // forward
		0, 0, // side
		0, 0, // up
		0, // buttons
		0, // impulse
	}

	if !reflect.DeepEqual(want, buf) {
		t.Errorf("wire mismatch:\nwant=%v\n got=%v", want, buf)
	}
}

func TestParseAll(t *testing.T) {
	commands := []Command{
		&Move{Forward: 100},
		&StringCmd{Text: "say hi"},
		&Disconnect{},
	}

	list, err := ParseAll(Append(nil, commands...))
	if err != nil {
		t.Fatalf("failed to parse: %s", err.Error())
	}

	if diff := cmp.Diff(commands, list); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	_, err = ParseAll([]byte{byte(CodeNoOp), 9})
	if !errors.Is(err, netquake.ErrInvalidCode) {
		t.Errorf("expected invalid code error, got %v", err)
	}

	_, err = ParseAll([]byte{byte(CodeStringCmd), 'x'})
	if !errors.Is(err, netquake.ErrTruncated) {
		t.Errorf("expected truncated error, got %v", err)
	}
}
