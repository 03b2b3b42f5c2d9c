// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package connect

import "github.com/marko-gacesa/netquake/netquake/message"

type Message interface {
	message.Getter
	message.Putter
	Code() Code
}

// Request is sent by a client to the server's well-known port.
type Request interface {
	Message
	request()
}

// Response is sent by the server back to the source address of a request.
type Response interface {
	Message
	response()
}
