// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package client

import (
	"context"
	"errors"
	"strings"

	servermessage "github.com/marko-gacesa/netquake/netquake/message/server"
	"github.com/marko-gacesa/netquake/netquake/transport"
)

//go:generate mockgen -destination=mock_assets_test.go -package=client . AssetLoader

// ErrAssetNotFound is returned by an AssetLoader when the named asset doesn't exist.
var ErrAssetNotFound = errors.New("asset not found")

// Model is a loaded model. The driver only stores it in the model precache.
type Model any

// Sound is a loaded sound. The driver only stores it in the sound precache.
type Sound any

// AssetLoader loads the assets named in the precache lists of the server info command.
type AssetLoader interface {
	// LoadGeometry loads a level. It returns the world model followed by its inline models,
	// the ones referred to as "*1", "*2" and so on.
	LoadGeometry(name string) ([]Model, error)
	LoadModel(name string) (Model, error)
	LoadSound(name string) (Sound, error)
}

const (
	geometryExtension = ".bsp"
	inlineModelMarker = "*"
)

func isGeometry(name string) bool    { return strings.HasSuffix(name, geometryExtension) }
func isInlineModel(name string) bool { return strings.HasPrefix(name, inlineModelMarker) }

// Console receives text for the player: server prints and the level sign-on message.
type Console interface {
	Print(text string)
}

// ConsoleFunc adapts a function to the Console interface.
type ConsoleFunc func(text string)

func (f ConsoleFunc) Print(text string) { f(text) }

// ChannelConsole sends every printed text to a channel. The send blocks until the text is received.
type ChannelConsole chan<- string

func (c ChannelConsole) Print(text string) { c <- text }

// CommandHandler receives the commands the driver keeps no state for, such as sounds, effects and entities.
// An error returned from HandleCommand ends the processing of the message and is returned to the caller.
type CommandHandler interface {
	HandleCommand(cmd servermessage.Command) error
}

// CommandHandlerFunc adapts a function to the CommandHandler interface.
type CommandHandlerFunc func(cmd servermessage.Command) error

func (f CommandHandlerFunc) HandleCommand(cmd servermessage.Command) error { return f(cmd) }

// Session is the transport the driver runs on. It's implemented by *transport.Session.
type Session interface {
	ReceiveMessage(ctx context.Context, mode transport.ReceiveMode) (transport.Message, error)
	SendMessage(data []byte) error
	SendUnreliableMessage(data []byte) error
	Close() error
}
