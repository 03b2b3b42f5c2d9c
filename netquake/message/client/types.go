// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package client

import "github.com/marko-gacesa/netquake/netquake/message"

// Code is the wire discriminant of a client command.
type Code byte

const (
	CodeBad        Code = 0
	CodeNoOp       Code = 1
	CodeDisconnect Code = 2
	CodeMove       Code = 3
	CodeStringCmd  Code = 4
)

func (c Code) String() string {
	switch c {
	case CodeBad:
		return "bad"
	case CodeNoOp:
		return "nop"
	case CodeDisconnect:
		return "disconnect"
	case CodeMove:
		return "move"
	case CodeStringCmd:
		return "stringcmd"
	default:
		return "unknown"
	}
}

// Command is a client to server command. Put appends the wire code followed by the content.
// Get expects the buffer to start with the wire code and returns the unread rest of the buffer.
type Command interface {
	message.Getter
	message.Putter
	Code() Code
}

// Move buttons.
const (
	ButtonAttack = 1 << 0
	ButtonJump   = 1 << 1
)
