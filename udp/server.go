// Copyright (c) 2023, 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package udp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"
)

var _ = interface {
	Listen(ctx context.Context, processFn func(data []byte, addr net.UDPAddr) []byte) error
	Addr() net.UDPAddr
}((*Server)(nil))

const durBreakDefault = 5 * time.Second

// Server answers datagrams arriving on a single endpoint. Every response returned by the
// process function is sent back to the datagram's source address.
type Server struct {
	endpoint    *Endpoint
	durBreak    time.Duration
	handleError func(error)
}

func NewServer(endpoint *Endpoint) *Server {
	return &Server{
		endpoint: endpoint,
		durBreak: durBreakDefault,
		handleError: func(err error) {
			slog.Error("udp server", "error", err.Error())
		},
	}
}

func (s *Server) SetHandleError(handleError func(error)) {
	if handleError == nil {
		return
	}

	s.handleError = handleError
}

// SetBreakPeriod sets how often the listen loop wakes up to check the context.
func (s *Server) SetBreakPeriod(durBreak time.Duration) {
	if durBreak <= 0 {
		s.durBreak = durBreakDefault
		return
	}

	s.durBreak = durBreak
}

func (s *Server) Addr() net.UDPAddr {
	return s.endpoint.LocalAddr()
}

// Listen runs until the context is done. The endpoint is closed when Listen returns.
func (s *Server) Listen(ctx context.Context, processFn func(data []byte, addr net.UDPAddr) []byte) (err error) {
	defer func() {
		errClose := s.endpoint.Close()
		if errClose != nil && err == nil {
			err = fmt.Errorf("udp server: failed to close listener: %w", errClose)
		}
	}()

	const bufferSize = 4 << 10
	buffer := [bufferSize]byte{}

	for {
		n, clientAddr, err := s.endpoint.ReceiveFrom(buffer[:], time.Now().Add(s.durBreak))
		if errors.Is(err, ErrTimeout) {
			if err := ctx.Err(); err != nil {
				return err
			}

			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.handleError(fmt.Errorf("udp server: failed to listen: %w", err))
			continue
		}

		response := processFn(buffer[:n], clientAddr)
		if response == nil {
			continue
		}

		if err := s.endpoint.SendTo(response, clientAddr); err != nil {
			s.handleError(fmt.Errorf("udp server: failed to respond to %s: %w", clientAddr.String(), err))
			continue
		}
	}
}
