// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package client

import "github.com/marko-gacesa/netquake/netquake"

func newCommand(code Code) Command {
	switch code {
	case CodeNoOp:
		return &NoOp{}
	case CodeDisconnect:
		return &Disconnect{}
	case CodeMove:
		return &Move{}
	case CodeStringCmd:
		return &StringCmd{}
	}
	return nil
}

// Parse decodes the command at the beginning of buf and returns the unread rest.
// An empty buffer yields a nil command and no error.
func Parse(buf []byte) (Command, []byte, error) {
	if len(buf) == 0 {
		return nil, nil, nil
	}

	m := newCommand(Code(buf[0]))
	if m == nil {
		return nil, nil, netquake.InvalidCode("client command", buf[0])
	}

	rest, err := m.Get(buf)
	if err != nil {
		return nil, nil, err
	}

	return m, rest, nil
}

// ParseAll decodes commands back to back until the buffer is exhausted.
// On failure, it returns the commands decoded so far together with the error.
func ParseAll(buf []byte) ([]Command, error) {
	var list []Command

	for len(buf) > 0 {
		m, rest, err := Parse(buf)
		if err != nil {
			return list, err
		}

		list = append(list, m)
		buf = rest
	}

	return list, nil
}

// Append encodes all commands, one after another, to buf.
func Append(buf []byte, commands ...Command) []byte {
	for _, m := range commands {
		buf = m.Put(buf)
	}
	return buf
}
