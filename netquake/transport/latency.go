// Copyright (c) 2023-2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package transport

import "time"

// latencySamples is the number of round trips the latency is averaged over.
const latencySamples = 10

// latency measures the round trip of reliable fragments, from the send to the ack.
// A resent fragment is not sampled because the ack can't tell which copy it answers.
type latency struct {
	samples [latencySamples]time.Duration
	count   int
	sentAt  time.Time
	resent  bool
}

func (l *latency) sent(now time.Time) {
	l.sentAt = now
	l.resent = false
}

func (l *latency) resend() {
	l.resent = true
}

func (l *latency) acked(now time.Time) (time.Duration, bool) {
	if l.resent || l.sentAt.IsZero() {
		return 0, false
	}

	rtt := now.Sub(l.sentAt)
	if rtt < 0 {
		return 0, false
	}

	l.samples[l.count%latencySamples] = rtt
	l.count++
	l.sentAt = time.Time{}

	return rtt, true
}

// average returns the mean of the recent samples, zero if there are none.
func (l *latency) average() time.Duration {
	n := min(l.count, latencySamples)
	if n == 0 {
		return 0
	}

	var sum time.Duration
	for i := range n {
		sum += l.samples[i]
	}

	return sum / time.Duration(n)
}
