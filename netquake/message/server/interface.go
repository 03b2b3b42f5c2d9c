// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package server

import "github.com/marko-gacesa/netquake/netquake/message"

// Command is a server to client command. Put appends the wire code followed by the content.
// Get expects the buffer to start with the wire code and returns the unread rest of the buffer.
type Command interface {
	message.Getter
	message.Putter
	Code() Code
}
