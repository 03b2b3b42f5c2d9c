// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package netquake

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCode is wrapped by MalformedError when a discriminant is not recognized.
	ErrInvalidCode = errors.New("invalid code")

	// ErrTruncated is wrapped by MalformedError when input ends in the middle of a field.
	ErrTruncated = errors.New("unexpected end of data")

	// ErrInvalidFlags is wrapped by MalformedError when a flag word has unknown bits set.
	ErrInvalidFlags = errors.New("invalid flags")

	// ErrUnresponsive is returned when no valid reply arrived within the retry budget.
	ErrUnresponsive = errors.New("no response")

	// ErrPeerTimeout is returned when nothing arrived from the peer for too long. It is fatal to the session.
	ErrPeerTimeout = errors.New("peer timed out")

	// ErrServerDisconnected is returned when the server ends the session.
	ErrServerDisconnected = errors.New("server disconnected")
)

// IoError is a transport level failure. It is always fatal to the current operation.
type IoError struct {
	Op  string
	Err error
}

func (e *IoError) Error() string { return "i/o error: " + e.Op + ": " + e.Err.Error() }
func (e *IoError) Unwrap() error { return e.Err }

// NewIoError wraps err unless it is already an IoError.
func NewIoError(op string, err error) error {
	var errIo *IoError
	if errors.As(err, &errIo) {
		return err
	}
	return &IoError{Op: op, Err: err}
}

// MalformedError is content that violates the wire format.
type MalformedError struct {
	What string
	Err  error
}

func (e *MalformedError) Error() string {
	if e.Err == nil {
		return "malformed " + e.What
	}
	return "malformed " + e.What + ": " + e.Err.Error()
}

func (e *MalformedError) Unwrap() error { return e.Err }

// Malformed returns a MalformedError describing what failed to decode.
func Malformed(what string, err error) error {
	return &MalformedError{What: what, Err: err}
}

// InvalidCode returns a MalformedError wrapping ErrInvalidCode.
func InvalidCode(what string, code byte) error {
	return &MalformedError{What: what, Err: fmt.Errorf("%w: 0x%02X", ErrInvalidCode, code)}
}

// ProtocolMismatchError is returned when the peer announces an unexpected protocol version.
type ProtocolMismatchError struct {
	Got  int32
	Want int32
}

func (e *ProtocolMismatchError) Error() string {
	return fmt.Sprintf("incompatible protocol version: got %d, should be %d", e.Got, e.Want)
}

// RejectedError is returned when the server explicitly declines the connection.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string { return "connection rejected: " + e.Reason }

// ProtocolViolationError is a well-formed reply that makes no sense in its context.
type ProtocolViolationError struct {
	Msg string
}

func (e *ProtocolViolationError) Error() string { return "protocol violation: " + e.Msg }

// IsRecoverable reports whether the failed operation may be retried later.
func IsRecoverable(err error) bool {
	var errRejected *RejectedError
	return errors.Is(err, ErrUnresponsive) || errors.As(err, &errRejected)
}

// IsMalformed reports whether err is, or wraps, a MalformedError.
func IsMalformed(err error) bool {
	var errMalformed *MalformedError
	return errors.As(err, &errMalformed)
}
