// Copyright (c) 2023, 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package sequence

// Sequence is a 32-bit datagram sequence number as it appears on the wire.
// Both the reliable and the unreliable channel start counting at zero.
type Sequence uint32

// Arrival classifies an incoming sequence number against the expected one.
type Arrival byte

const (
	// Next is the expected sequence number.
	Next Arrival = iota

	// Duplicate is a sequence number that has already been seen (lower than expected).
	Duplicate

	// Gap is a sequence number ahead of the expected one: some datagrams are missing.
	Gap
)

func (a Arrival) String() string {
	switch a {
	case Next:
		return "next"
	case Duplicate:
		return "duplicate"
	case Gap:
		return "gap"
	default:
		return "unknown"
	}
}

// Classify compares an arrived sequence number with the expected one.
func Classify(expected, got Sequence) Arrival {
	switch {
	case got == expected:
		return Next
	case got < expected:
		return Duplicate
	default:
		return Gap
	}
}

// Counter hands out consecutive sequence numbers.
type Counter struct {
	next Sequence
}

// Next returns the current sequence number and advances the counter.
func (c *Counter) Next() Sequence {
	seq := c.next
	c.next++
	return seq
}

// Peek returns the sequence number the next call to Next will return.
func (c *Counter) Peek() Sequence {
	return c.next
}
