// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package netquake

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestIsRecoverable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		exp  bool
	}{
		{name: "unresponsive", err: fmt.Errorf("connect: %w", ErrUnresponsive), exp: true},
		{name: "rejected", err: &RejectedError{Reason: "Server is full"}, exp: true},
		{name: "io", err: NewIoError("send", io.ErrClosedPipe), exp: false},
		{name: "malformed", err: InvalidCode("command", 0xFF), exp: false},
		{name: "mismatch", err: &ProtocolMismatchError{Got: 666, Want: ProtocolVersion}, exp: false},
		{name: "violation", err: &ProtocolViolationError{Msg: "bad port"}, exp: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsRecoverable(test.err); got != test.exp {
				t.Errorf("mismatch: want=%t got=%t", test.exp, got)
			}
		})
	}
}

func TestMalformed(t *testing.T) {
	err := fmt.Errorf("decode: %w", InvalidCode("server command", 0x15))

	if !IsMalformed(err) {
		t.Errorf("expected malformed error")
	}

	if !errors.Is(err, ErrInvalidCode) {
		t.Errorf("expected invalid code error")
	}

	if want := "decode: malformed server command: invalid code: 0x15"; err.Error() != want {
		t.Errorf("message mismatch: want=%q got=%q", want, err.Error())
	}
}

func TestNewIoError(t *testing.T) {
	err := NewIoError("receive", io.ErrUnexpectedEOF)
	if again := NewIoError("outer", err); again != err {
		t.Errorf("io error wrapped twice: %s", again.Error())
	}

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("io error does not unwrap")
	}
}
