// Copyright (c) 2023, 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package message

// Putter appends its wire representation to the buffer.
type Putter interface {
	Put([]byte) []byte
}

// Getter decodes itself from the beginning of the buffer and returns the unread rest.
type Getter interface {
	Get([]byte) ([]byte, error)
}
