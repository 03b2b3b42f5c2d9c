// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/marko-gacesa/netquake/netquake"
	"github.com/marko-gacesa/netquake/netquake/message"
	"github.com/marko-gacesa/netquake/sequence"
	"github.com/marko-gacesa/netquake/udp"
)

var _ = interface {
	LocalAddr() net.UDPAddr
	RemoteAddr() net.UDPAddr
	CanSendMessage() bool
	SendMessage(data []byte) error
	SendUnreliableMessage(data []byte) error
	ReceiveMessage(ctx context.Context, mode ReceiveMode) (Message, error)
	Stats() Stats
	Latency() time.Duration
	Close() error
}((*Session)(nil))

// Endpoint is the raw datagram primitive a session runs on. It's implemented by *udp.Endpoint.
// ReceiveFrom must return udp.ErrTimeout when the deadline passes.
type Endpoint interface {
	LocalAddr() net.UDPAddr
	SendTo(data []byte, addr net.UDPAddr) error
	ReceiveFrom(buf []byte, deadline time.Time) (int, net.UDPAddr, error)
	Close() error
}

// ReceiveMode selects whether ReceiveMessage waits for a message.
type ReceiveMode byte

const (
	// Blocking waits until a complete message arrives or the context is done.
	Blocking ReceiveMode = iota

	// NonBlocking processes the datagrams that have already arrived and returns
	// an empty message if none of them completes a message.
	NonBlocking
)

// Kind tells which channel a received message came on.
type Kind byte

const (
	KindNone Kind = iota
	KindReliable
	KindUnreliable
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindReliable:
		return "reliable"
	case KindUnreliable:
		return "unreliable"
	default:
		return "unknown"
	}
}

// Message is a complete message received from the peer. Kind is KindNone when no message was available.
type Message struct {
	Kind Kind
	Data []byte
}

const (
	// RetransmitTimeout is how long an unacknowledged reliable fragment waits before it's sent again.
	RetransmitTimeout = time.Second

	// PeerTimeout is how long the peer may stay silent before the session is considered dead.
	PeerTimeout = 300 * time.Second

	pollPeriod        = 100 * time.Millisecond
	pollPeriodNoBlock = time.Millisecond
)

// Session is the reliable transport with a single peer. Reliable messages are sent stop-and-wait:
// each fragment of the message in flight must be acknowledged before the next one is sent,
// and only one message is in flight at a time. Messages submitted in the meantime are queued.
//
// A Session is not safe for concurrent use. The owner calls its methods from a single goroutine.
type Session struct {
	endpoint Endpoint
	remote   net.UDPAddr

	sendSequence           sequence.Counter
	ackSequence            sequence.Sequence
	unreliableSendSequence sequence.Counter

	recvSequence           sequence.Sequence
	unreliableRecvSequence sequence.Sequence

	inFlight  bool
	outbound  []byte // unsent part of the message in flight, starting with the fragment awaiting ack
	fragment  int    // payload size of the fragment awaiting ack
	packet    []byte // the last data datagram, resent verbatim
	lastSend  time.Time
	queue     [][]byte
	inbound   []byte
	recvBuf   [netquake.DatagramSize + 1]byte
	ackPacket []byte

	retransmitTimeout time.Duration
	peerTimeout       time.Duration
	lastReceive       time.Time

	rtt     latency
	stats   Stats
	metrics *Metrics
	log     *slog.Logger
}

// NewSession creates a session exchanging datagrams with remote through endpoint.
// The session takes ownership of the endpoint and closes it in Close.
func NewSession(endpoint Endpoint, remote net.UDPAddr, options ...func(*Session)) *Session {
	s := &Session{
		endpoint:          endpoint,
		remote:            remote,
		outbound:          make([]byte, 0, netquake.MaxMessage),
		packet:            make([]byte, 0, netquake.DatagramSize),
		inbound:           make([]byte, 0, netquake.MaxMessage),
		ackPacket:         make([]byte, 0, netquake.HeaderSize),
		retransmitTimeout: RetransmitTimeout,
		peerTimeout:       PeerTimeout,
		lastReceive:       time.Now(),
		log:               slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	s.log = s.log.With("remote", remote.String())

	return s
}

func WithLogger(log *slog.Logger) func(*Session) {
	return func(s *Session) {
		s.log = log
	}
}

// WithRetransmitTimeout sets how long an unacknowledged fragment waits before it's sent again.
func WithRetransmitTimeout(d time.Duration) func(*Session) {
	return func(s *Session) {
		if d > 0 {
			s.retransmitTimeout = d
		}
	}
}

// WithPeerTimeout sets how long the peer may stay silent. Zero disables the check.
func WithPeerTimeout(d time.Duration) func(*Session) {
	return func(s *Session) {
		s.peerTimeout = max(d, 0)
	}
}

// WithMetrics mirrors the session statistics to the provided metrics.
func WithMetrics(metrics *Metrics) func(*Session) {
	return func(s *Session) {
		s.metrics = metrics
	}
}

func (s *Session) LocalAddr() net.UDPAddr {
	return s.endpoint.LocalAddr()
}

func (s *Session) RemoteAddr() net.UDPAddr {
	return s.remote
}

// CanSendMessage reports whether a reliable message would be sent immediately instead of being queued.
func (s *Session) CanSendMessage() bool {
	return !s.inFlight
}

// SendMessage sends data as a reliable message. If a message is already in flight, data is queued
// and sent after all messages queued before it have been acknowledged.
func (s *Session) SendMessage(data []byte) error {
	if len(data) == 0 {
		return errors.New("transport: empty reliable message")
	}
	if len(data) > netquake.MaxMessage {
		return fmt.Errorf("transport: reliable message too large: %d > %d", len(data), netquake.MaxMessage)
	}

	s.stats.ReliableSent++
	s.metrics.messageSent(channelReliable)

	if s.inFlight {
		s.queue = append(s.queue, append([]byte(nil), data...))
		return nil
	}

	return s.startMessage(data)
}

func (s *Session) startMessage(data []byte) error {
	s.outbound = append(s.outbound[:0], data...)
	s.inFlight = true
	return s.sendFragment()
}

func (s *Session) sendFragment() error {
	s.fragment = min(len(s.outbound), netquake.MaxDatagram)

	flags := message.FlagData
	if s.fragment == len(s.outbound) {
		flags |= message.FlagEOM
	}

	h := message.Header{
		Flags:    flags,
		Length:   netquake.HeaderSize + s.fragment,
		Sequence: uint32(s.sendSequence.Next()),
	}

	s.packet = h.Put(s.packet[:0])
	s.packet = append(s.packet, s.outbound[:s.fragment]...)

	if err := s.sendPacket(kindData); err != nil {
		return err
	}

	s.rtt.sent(s.lastSend)

	return nil
}

func (s *Session) sendPacket(kind string) error {
	s.lastSend = time.Now()

	if err := s.endpoint.SendTo(s.packet, s.remote); err != nil {
		return netquake.NewIoError("send", err)
	}

	s.stats.DatagramsSent++
	s.metrics.datagramSent(kind)

	return nil
}

func (s *Session) resend() error {
	s.stats.Retransmissions++
	s.metrics.retransmission()
	s.rtt.resend()
	return s.sendPacket(kindData)
}

// SendUnreliableMessage sends data in a single datagram without acknowledgment.
func (s *Session) SendUnreliableMessage(data []byte) error {
	if len(data) > netquake.MaxDatagram {
		return fmt.Errorf("transport: unreliable message too large: %d > %d", len(data), netquake.MaxDatagram)
	}

	h := message.Header{
		Flags:    message.FlagUnreliable,
		Length:   netquake.HeaderSize + len(data),
		Sequence: uint32(s.unreliableSendSequence.Next()),
	}

	packet := make([]byte, 0, h.Length)
	packet = h.Put(packet)
	packet = append(packet, data...)

	if err := s.endpoint.SendTo(packet, s.remote); err != nil {
		return netquake.NewIoError("send unreliable", err)
	}

	s.stats.DatagramsSent++
	s.stats.UnreliableSent++
	s.metrics.datagramSent(kindUnreliable)
	s.metrics.messageSent(channelUnreliable)

	return nil
}

// ReceiveMessage processes incoming datagrams until one completes a message.
// Acknowledgments and retransmissions are handled along the way.
// In NonBlocking mode it returns a message of KindNone when no message is available;
// that is not an error. When nothing arrives from the peer for the peer timeout it fails
// with netquake.ErrPeerTimeout, the session is dead after that.
func (s *Session) ReceiveMessage(ctx context.Context, mode ReceiveMode) (Message, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Message{}, err
		}

		now := time.Now()

		if err := s.checkPeer(now); err != nil {
			return Message{}, err
		}

		if err := s.checkRetransmit(now); err != nil {
			return Message{}, err
		}

		period := pollPeriod
		if mode == NonBlocking {
			period = pollPeriodNoBlock
		}

		n, addr, err := s.endpoint.ReceiveFrom(s.recvBuf[:], time.Now().Add(period))
		if errors.Is(err, udp.ErrTimeout) {
			if mode == NonBlocking {
				return Message{}, nil
			}
			continue
		}
		if err != nil {
			return Message{}, netquake.NewIoError("receive", err)
		}

		if !udp.SameAddr(addr, s.remote) {
			s.log.Debug("ignoring datagram from unexpected address", "addr", addr.String())
			continue
		}

		s.lastReceive = time.Now()

		msg, err := s.processDatagram(s.recvBuf[:n])
		if err != nil {
			return Message{}, err
		}

		if msg.Kind != KindNone {
			return msg, nil
		}
	}
}

func (s *Session) checkPeer(now time.Time) error {
	silence := now.Sub(s.lastReceive)
	if s.peerTimeout == 0 || silence < s.peerTimeout {
		return nil
	}

	s.metrics.peerTimeout()
	s.log.Warn("peer timed out", "silence", silence)

	return fmt.Errorf("transport: %w: silent for %s", netquake.ErrPeerTimeout, silence.Round(time.Millisecond))
}

func (s *Session) checkRetransmit(now time.Time) error {
	if !s.inFlight || now.Sub(s.lastSend) < s.retransmitTimeout {
		return nil
	}

	s.log.Debug("retransmitting unacknowledged fragment", "timeout", s.retransmitTimeout)

	return s.resend()
}

func (s *Session) processDatagram(data []byte) (Message, error) {
	if message.IsControl(data) {
		s.log.Debug("ignoring control packet on session")
		return Message{}, nil
	}

	var h message.Header
	payload, err := h.Get(data)
	if err != nil {
		s.stats.Malformed++
		s.metrics.malformedDatagram()
		s.log.Warn("dropping malformed datagram", "err", err)
		return Message{}, nil
	}

	s.stats.DatagramsReceived++

	seq := sequence.Sequence(h.Sequence)

	switch {
	case h.Flags&message.FlagAck != 0:
		s.metrics.datagramReceived(kindAck)
		return Message{}, s.handleAck(seq)
	case h.Flags&message.FlagData != 0:
		s.metrics.datagramReceived(kindData)
		return s.handleData(seq, payload, h.Flags&message.FlagEOM != 0)
	case h.Flags&message.FlagUnreliable != 0:
		s.metrics.datagramReceived(kindUnreliable)
		return s.handleUnreliable(seq, payload), nil
	}

	s.log.Debug("ignoring datagram", "flags", h.Flags)

	return Message{}, nil
}

func (s *Session) handleAck(seq sequence.Sequence) error {
	if !s.inFlight {
		s.log.Debug("ignoring ack with nothing in flight", "seq", seq)
		return nil
	}

	if seq != s.sendSequence.Peek()-1 || seq != s.ackSequence {
		s.log.Debug("stale ack, resending fragment", "seq", seq, "expected", s.ackSequence)
		return s.resend()
	}

	s.ackSequence++

	if rtt, ok := s.rtt.acked(time.Now()); ok {
		s.metrics.roundTrip(rtt)
	}

	s.outbound = s.outbound[:copy(s.outbound, s.outbound[s.fragment:])]
	if len(s.outbound) > 0 {
		return s.sendFragment()
	}

	s.inFlight = false
	s.fragment = 0

	if len(s.queue) == 0 {
		return nil
	}

	next := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]

	return s.startMessage(next)
}

func (s *Session) handleData(seq sequence.Sequence, payload []byte, eom bool) (Message, error) {
	if err := s.sendAck(seq); err != nil {
		return Message{}, err
	}

	switch sequence.Classify(s.recvSequence, seq) {
	case sequence.Duplicate:
		s.stats.Duplicates++
		s.metrics.duplicate()
		return Message{}, nil
	case sequence.Gap:
		// The peer resends the missing fragment when it doesn't receive its ack.
		s.stats.Gaps++
		s.metrics.gap()
		s.log.Debug("reliable sequence gap", "seq", seq, "expected", s.recvSequence)
		return Message{}, nil
	}

	s.recvSequence++

	if len(s.inbound)+len(payload) > netquake.MaxMessage {
		s.inbound = s.inbound[:0]
		return Message{}, netquake.Malformed("reliable message",
			fmt.Errorf("exceeds %d bytes", netquake.MaxMessage))
	}

	s.inbound = append(s.inbound, payload...)

	if !eom {
		return Message{}, nil
	}

	msg := Message{
		Kind: KindReliable,
		Data: append([]byte(nil), s.inbound...),
	}

	s.inbound = s.inbound[:0]

	s.stats.ReliableReceived++
	s.metrics.messageReceived(channelReliable)

	return msg, nil
}

func (s *Session) sendAck(seq sequence.Sequence) error {
	h := message.Header{
		Flags:    message.FlagAck,
		Length:   netquake.HeaderSize,
		Sequence: uint32(seq),
	}

	s.ackPacket = h.Put(s.ackPacket[:0])

	if err := s.endpoint.SendTo(s.ackPacket, s.remote); err != nil {
		return netquake.NewIoError("send ack", err)
	}

	s.stats.DatagramsSent++
	s.stats.AcksSent++
	s.metrics.datagramSent(kindAck)

	return nil
}

func (s *Session) handleUnreliable(seq sequence.Sequence, payload []byte) Message {
	switch sequence.Classify(s.unreliableRecvSequence, seq) {
	case sequence.Duplicate:
		s.stats.UnreliableDropped++
		s.metrics.droppedUnreliable(1)
		return Message{}
	case sequence.Gap:
		lost := int(seq - s.unreliableRecvSequence)
		s.stats.UnreliableDropped += lost
		s.metrics.droppedUnreliable(lost)
	}

	s.unreliableRecvSequence = seq + 1

	s.stats.UnreliableReceived++
	s.metrics.messageReceived(channelUnreliable)

	return Message{
		Kind: KindUnreliable,
		Data: append([]byte(nil), payload...),
	}
}

// Stats returns the counters of the session.
func (s *Session) Stats() Stats {
	stats := s.stats
	stats.Latency = s.rtt.average()
	return stats
}

// Latency is the average round trip of recent reliable fragments.
func (s *Session) Latency() time.Duration {
	return s.rtt.average()
}

// Close closes the endpoint. Nothing is sent to the peer.
func (s *Session) Close() error {
	if err := s.endpoint.Close(); err != nil {
		return netquake.NewIoError("close", err)
	}
	return nil
}
