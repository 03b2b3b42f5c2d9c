// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/marko-gacesa/netquake/netquake"
	"github.com/marko-gacesa/netquake/netquake/message"
	clientmessage "github.com/marko-gacesa/netquake/netquake/message/client"
	servermessage "github.com/marko-gacesa/netquake/netquake/message/server"
	"github.com/marko-gacesa/netquake/netquake/transport"
)

var _ = interface {
	ParseServerMessage(ctx context.Context, mode transport.ReceiveMode) error
	Run(ctx context.Context) error
	SendCommands(commands ...clientmessage.Command) error
	SendMove(move *clientmessage.Move) error
	Disconnect() error
}((*Driver)(nil))

const (
	// MaxLightStyles is the number of light styles a level can use.
	MaxLightStyles = 64

	// DefaultViewHeight is the eye height used when client data carries none.
	DefaultViewHeight = 22

	disconnectCopies = 3
)

// Player is a scoreboard entry.
type Player struct {
	Name   string
	Frags  int16
	Colors byte
}

// PlayerState is the state of the controlled player, updated by client data commands.
type PlayerState struct {
	ViewHeight int8
	IdealPitch int8
	PunchAngle message.Vec3
	Velocity   message.Vec3
	OnGround   bool
	InWater    bool
}

// Driver reads messages from the session, decodes the commands and applies them.
// It keeps the state the server announces for the session: server info, precache lists,
// stats, scoreboard and sign-on progress. Commands it keeps no state for are passed to the command handler.
//
// A Driver is not safe for concurrent use.
type Driver struct {
	session Session
	assets  AssetLoader
	console Console
	handler CommandHandler

	playerName   string
	playerColors byte

	serverInfo  *netquake.ServerInfo
	models      []Model
	sounds      []Sound
	stats       [servermessage.MaxStats]int32
	items       int32
	player      PlayerState
	time        float32
	viewEntity  int16
	viewAngles  message.Vec3
	lightStyles [MaxLightStyles]string
	scoreboard  []Player
	signOn      byte
	paused      bool
	cdTrack     byte
	cdLoop      byte

	log *slog.Logger
}

func NewDriver(session Session, assets AssetLoader, console Console, options ...func(*Driver)) *Driver {
	d := &Driver{
		session:    session,
		assets:     assets,
		console:    console,
		playerName: "player",
		player:     PlayerState{ViewHeight: DefaultViewHeight},
		log:        slog.Default(),
	}

	for _, option := range options {
		option(d)
	}

	return d
}

func WithDriverLogger(log *slog.Logger) func(*Driver) {
	return func(d *Driver) {
		d.log = log
	}
}

// WithCommandHandler sets the handler for commands the driver keeps no state for.
func WithCommandHandler(handler CommandHandler) func(*Driver) {
	return func(d *Driver) {
		d.handler = handler
	}
}

// WithPlayer sets the name and colors the driver announces during sign-on.
func WithPlayer(name string, colors byte) func(*Driver) {
	return func(d *Driver) {
		d.playerName = name
		d.playerColors = colors
	}
}

// ParseServerMessage receives one message from the session and applies all commands in it.
// In NonBlocking mode it returns immediately if no message is available.
// A malformed command ends the session: commands decoded before it are applied and the error is returned.
func (d *Driver) ParseServerMessage(ctx context.Context, mode transport.ReceiveMode) error {
	msg, err := d.session.ReceiveMessage(ctx, mode)
	if err != nil {
		return err
	}

	if msg.Kind == transport.KindNone {
		return nil
	}

	commands, errParse := servermessage.ParseAll(msg.Data)

	for _, cmd := range commands {
		if err := d.dispatch(cmd); err != nil {
			return err
		}
	}

	if errParse != nil {
		return fmt.Errorf("client: %s message: %w", msg.Kind, errParse)
	}

	return nil
}

// Run processes server messages until the context is done or the session ends.
// A disconnect by the server ends Run with ErrServerDisconnected.
func (d *Driver) Run(ctx context.Context) error {
	for {
		if err := d.ParseServerMessage(ctx, transport.Blocking); err != nil {
			return err
		}
	}
}

// SendCommands sends the commands as one reliable message.
func (d *Driver) SendCommands(commands ...clientmessage.Command) error {
	if len(commands) == 0 {
		return nil
	}

	return d.session.SendMessage(clientmessage.Append(nil, commands...))
}

// SendMove sends the player input. Moves are frequent and stale quickly so they go unreliable.
func (d *Driver) SendMove(move *clientmessage.Move) error {
	return d.session.SendUnreliableMessage(move.Put(nil))
}

// Disconnect notifies the server and closes the session. The notification is sent unreliably,
// in a few copies, because the session is closed without waiting for acknowledgment.
func (d *Driver) Disconnect() error {
	packet := (&clientmessage.Disconnect{}).Put(nil)

	var errSend error
	for range disconnectCopies {
		if err := d.session.SendUnreliableMessage(packet); err != nil {
			errSend = err
		}
	}

	if errSend != nil {
		d.log.Warn("failed to notify server about disconnect", "err", errSend)
	}

	return d.session.Close()
}

func (d *Driver) ServerInfo() (netquake.ServerInfo, bool) {
	if d.serverInfo == nil {
		return netquake.ServerInfo{}, false
	}
	return *d.serverInfo, true
}

// Models returns the model precache. Slot 0 is always nil.
func (d *Driver) Models() []Model { return d.models }

// Sounds returns the sound precache. Slot 0 is always nil.
func (d *Driver) Sounds() []Sound { return d.sounds }

func (d *Driver) Stat(stat servermessage.Stat) int32 { return d.stats[stat] }

func (d *Driver) Items() int32 { return d.items }

func (d *Driver) Player() PlayerState { return d.player }

func (d *Driver) Time() float32 { return d.time }

func (d *Driver) ViewEntity() int16 { return d.viewEntity }

func (d *Driver) ViewAngles() message.Vec3 { return d.viewAngles }

func (d *Driver) LightStyle(id byte) string { return d.lightStyles[id%MaxLightStyles] }

func (d *Driver) Scoreboard() []Player { return d.scoreboard }

// SignOn returns the last sign-on stage announced by the server.
func (d *Driver) SignOn() byte { return d.signOn }

func (d *Driver) Paused() bool { return d.paused }

func (d *Driver) CdTrack() (track, loop byte) { return d.cdTrack, d.cdLoop }

func (d *Driver) loadPrecache(cmd *servermessage.ServerInfo) error {
	models := []Model{nil}

	for _, name := range cmd.Models {
		switch {
		case isGeometry(name):
			geometry, err := d.assets.LoadGeometry(name)
			if err != nil {
				return fmt.Errorf("client: failed to load level %q: %w", name, err)
			}
			models = append(models, geometry...)
		case isInlineModel(name):
			// loaded with the level geometry
		default:
			model, err := d.assets.LoadModel(name)
			if errors.Is(err, ErrAssetNotFound) {
				d.log.Warn("model not found", "name", name)
				model = nil
			} else if err != nil {
				return fmt.Errorf("client: failed to load model %q: %w", name, err)
			}
			models = append(models, model)
		}
	}

	sounds := []Sound{nil}

	for _, name := range cmd.Sounds {
		sound, err := d.assets.LoadSound(name)
		if errors.Is(err, ErrAssetNotFound) {
			d.log.Warn("sound not found", "name", name)
			sound = nil
		} else if err != nil {
			return fmt.Errorf("client: failed to load sound %q: %w", name, err)
		}
		sounds = append(sounds, sound)
	}

	d.models = models
	d.sounds = sounds

	return nil
}
