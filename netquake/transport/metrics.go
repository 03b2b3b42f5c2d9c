// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package transport

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "netquake"
	metricsSubsystem = "transport"
)

// Metrics mirrors session statistics to Prometheus. One Metrics can be shared by many sessions.
type Metrics struct {
	datagramsSent     *prometheus.CounterVec
	datagramsReceived *prometheus.CounterVec
	messagesSent      *prometheus.CounterVec
	messagesReceived  *prometheus.CounterVec
	retransmissions   prometheus.Counter
	duplicates        prometheus.Counter
	gaps              prometheus.Counter
	dropped           prometheus.Counter
	malformed         prometheus.Counter
	peerTimeouts      prometheus.Counter
	roundTrips        prometheus.Histogram
}

// NewMetrics creates the transport metrics and registers them with the registerer.
// A nil registerer creates metrics that are not registered anywhere.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	newCounter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      name,
			Help:      help,
		})
	}

	newCounterVec := func(name, help, label string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      name,
			Help:      help,
		}, []string{label})
	}

	return &Metrics{
		datagramsSent:     newCounterVec("datagrams_sent_total", "Total number of datagrams sent", "kind"),
		datagramsReceived: newCounterVec("datagrams_received_total", "Total number of datagrams received from the session peer", "kind"),
		messagesSent:      newCounterVec("messages_sent_total", "Total number of messages submitted for sending", "channel"),
		messagesReceived:  newCounterVec("messages_received_total", "Total number of complete messages received", "channel"),
		retransmissions:   newCounter("retransmissions_total", "Total number of resent reliable fragments"),
		duplicates:        newCounter("duplicates_total", "Total number of duplicate datagrams received"),
		gaps:              newCounter("gaps_total", "Total number of datagrams received ahead of the expected sequence"),
		dropped:           newCounter("unreliable_dropped_total", "Total number of unreliable datagrams lost or arrived late"),
		malformed:         newCounter("malformed_total", "Total number of datagrams with an invalid header"),
		peerTimeouts:      newCounter("peer_timeouts_total", "Total number of sessions ended by a silent peer"),
		roundTrips: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "round_trip_seconds",
			Help:      "Time from sending a reliable fragment to its acknowledgment",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
	}
}

const (
	kindData       = "data"
	kindAck        = "ack"
	kindUnreliable = "unreliable"

	channelReliable   = "reliable"
	channelUnreliable = "unreliable"
)

func (m *Metrics) datagramSent(kind string) {
	if m == nil {
		return
	}
	m.datagramsSent.WithLabelValues(kind).Inc()
}

func (m *Metrics) datagramReceived(kind string) {
	if m == nil {
		return
	}
	m.datagramsReceived.WithLabelValues(kind).Inc()
}

func (m *Metrics) messageSent(channel string) {
	if m == nil {
		return
	}
	m.messagesSent.WithLabelValues(channel).Inc()
}

func (m *Metrics) messageReceived(channel string) {
	if m == nil {
		return
	}
	m.messagesReceived.WithLabelValues(channel).Inc()
}

func (m *Metrics) retransmission() {
	if m == nil {
		return
	}
	m.retransmissions.Inc()
}

func (m *Metrics) duplicate() {
	if m == nil {
		return
	}
	m.duplicates.Inc()
}

func (m *Metrics) gap() {
	if m == nil {
		return
	}
	m.gaps.Inc()
}

func (m *Metrics) droppedUnreliable(n int) {
	if m == nil {
		return
	}
	m.dropped.Add(float64(n))
}

func (m *Metrics) malformedDatagram() {
	if m == nil {
		return
	}
	m.malformed.Inc()
}

func (m *Metrics) peerTimeout() {
	if m == nil {
		return
	}
	m.peerTimeouts.Inc()
}

func (m *Metrics) roundTrip(d time.Duration) {
	if m == nil {
		return
	}
	m.roundTrips.Observe(d.Seconds())
}
