// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package transport

import (
	"log/slog"
	"time"
)

// Stats holds the counters of a session.
type Stats struct {
	DatagramsSent      int
	DatagramsReceived  int
	AcksSent           int
	Retransmissions    int
	Duplicates         int
	Gaps               int
	Malformed          int
	ReliableSent       int
	ReliableReceived   int
	UnreliableSent     int
	UnreliableReceived int
	UnreliableDropped  int
	Latency            time.Duration
}

func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("sent", s.DatagramsSent),
		slog.Int("received", s.DatagramsReceived),
		slog.Int("retransmissions", s.Retransmissions),
		slog.Int("duplicates", s.Duplicates),
		slog.Int("gaps", s.Gaps),
		slog.Int("malformed", s.Malformed),
		slog.Int("unreliableDropped", s.UnreliableDropped),
		slog.Duration("latency", s.Latency),
	)
}
