// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/marko-gacesa/netquake/netquake"
	clientmessage "github.com/marko-gacesa/netquake/netquake/message/client"
	servermessage "github.com/marko-gacesa/netquake/netquake/message/server"
	"github.com/marko-gacesa/netquake/netquake/transport"
	"github.com/marko-gacesa/netquake/netquake/util"
)

// Level is what the host announces to a connecting client.
// The first model must be the level geometry.
type Level struct {
	Message    string
	GameType   netquake.GameType
	MaxClients byte
	Models     []string
	Sounds     []string
}

// Host walks one client through the sign-on and then keeps the session alive.
// It answers every move with the server time.
type Host struct {
	session *transport.Session
	level   Level
	slot    byte

	stage  byte
	name   string
	colors byte
	start  time.Time

	onPlayer func(name string, colors byte)

	log *slog.Logger
}

func NewHost(session *transport.Session, level Level, options ...func(*Host)) *Host {
	h := &Host{
		session:  session,
		level:    level,
		onPlayer: func(string, byte) {},
		log:      slog.Default(),
	}

	for _, option := range options {
		option(h)
	}

	remote := session.RemoteAddr()
	h.log = h.log.With("client", remote.String())

	return h
}

func WithHostLogger(log *slog.Logger) func(*Host) {
	return func(h *Host) {
		h.log = log
	}
}

// WithSlot sets the scoreboard slot of the player.
func WithSlot(slot byte) func(*Host) {
	return func(h *Host) {
		h.slot = slot
	}
}

// WithPlayerUpdate sets the function called when the client sets its name or colors.
func WithPlayerUpdate(fn func(name string, colors byte)) func(*Host) {
	return func(h *Host) {
		h.onPlayer = fn
	}
}

// Run serves the client until it disconnects or the context is done.
// The session is closed when Run returns. A client silent for longer than the session's
// peer timeout ends Run with netquake.ErrPeerTimeout.
func (h *Host) Run(ctx context.Context) (err error) {
	defer func() {
		errClose := h.session.Close()
		if errClose != nil && err == nil {
			err = fmt.Errorf("host: failed to close session: %w", errClose)
		}
	}()
	defer util.RecoverError(h.log, &err)

	h.start = time.Now()

	err = h.send(
		&servermessage.Print{Text: fmt.Sprintf("\x02\nVERSION %d SERVER\n", netquake.ProtocolVersion)},
		&servermessage.ServerInfo{
			ProtocolVersion: netquake.ProtocolVersion,
			MaxClients:      h.level.MaxClients,
			GameType:        h.level.GameType,
			Message:         h.level.Message,
			Models:          h.level.Models,
			Sounds:          h.level.Sounds,
		},
		&servermessage.SignOnNum{Stage: 1},
	)
	if err != nil {
		return err
	}

	h.stage = 1

	for {
		msg, err := h.session.ReceiveMessage(ctx, transport.Blocking)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return err
		}

		commands, errParse := clientmessage.ParseAll(msg.Data)
		for _, cmd := range commands {
			done, err := h.handle(cmd)
			if err != nil {
				return err
			}
			if done {
				h.log.Info("client disconnected")
				return nil
			}
		}

		if errParse != nil {
			return fmt.Errorf("host: %s message: %w", msg.Kind, errParse)
		}
	}
}

func (h *Host) handle(cmd clientmessage.Command) (bool, error) {
	switch c := cmd.(type) {
	case *clientmessage.NoOp:
		return false, nil
	case *clientmessage.Disconnect:
		return true, nil
	case *clientmessage.Move:
		if h.stage < 4 {
			return false, nil
		}
		return false, h.session.SendUnreliableMessage(h.now().Put(nil))
	case *clientmessage.StringCmd:
		return false, h.command(c.Text)
	}

	return false, fmt.Errorf("host: unexpected command %s", cmd.Code())
}

func (h *Host) command(text string) error {
	args := strings.Fields(text)
	if len(args) == 0 {
		return nil
	}

	switch args[0] {
	case "prespawn":
		return h.advance(1, &servermessage.LightStyle{ID: 0, Value: "m"})
	case "name":
		if len(args) > 1 {
			h.name = strings.Trim(strings.Join(args[1:], " "), `"`)
			h.onPlayer(h.name, h.colors)
		}
		return nil
	case "color":
		h.colors = parseColors(args[1:])
		h.onPlayer(h.name, h.colors)
		return nil
	case "spawn":
		return h.advance(2,
			h.now(),
			&servermessage.UpdateName{Player: h.slot, Name: h.name},
			&servermessage.UpdateColors{Player: h.slot, Colors: h.colors},
			&servermessage.SetView{Entity: int16(h.slot) + 1},
		)
	case "begin":
		if h.stage != 3 {
			return &netquake.ProtocolViolationError{Msg: "begin out of order"}
		}
		h.stage = 4
		h.log.Info("client signed on", "name", h.name)
		return nil
	}

	h.log.Debug("ignoring command", "text", text)

	return nil
}

// advance sends the commands followed by the next sign-on stage, if the client is in the expected stage.
func (h *Host) advance(expected byte, commands ...servermessage.Command) error {
	if h.stage != expected {
		return &netquake.ProtocolViolationError{Msg: fmt.Sprintf("sign-on reply for stage %d in stage %d", expected, h.stage)}
	}

	h.stage++

	return h.send(append(commands, &servermessage.SignOnNum{Stage: h.stage})...)
}

func (h *Host) send(commands ...servermessage.Command) error {
	return h.session.SendMessage(servermessage.Append(nil, commands...))
}

func (h *Host) now() *servermessage.Time {
	return &servermessage.Time{Time: float32(time.Since(h.start).Seconds())}
}

// parseColors reads the top and bottom color. A single value sets both.
func parseColors(args []string) byte {
	values := make([]byte, 0, 2)
	for _, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			break
		}
		values = append(values, byte(min(max(v, 0), 13)))
	}

	switch len(values) {
	case 0:
		return 0
	case 1:
		return values[0]<<4 | values[0]
	default:
		return values[0]<<4 | values[1]
	}
}
