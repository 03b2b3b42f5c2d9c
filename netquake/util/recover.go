// Copyright (c) 2023, 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package util

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Recover logs a panic with its stack. It must be deferred directly.
func Recover(log *slog.Logger) {
	if r := recover(); r != nil {
		log.Error("panic recovered", "panic", fmt.Sprintf("[%T] %v", r, r), "stack", string(debug.Stack()))
	}
}

// RecoverError logs a panic like Recover and also stores it as an error in errp.
// It must be deferred directly.
func RecoverError(log *slog.Logger, errp *error) {
	if r := recover(); r != nil {
		log.Error("panic recovered", "panic", fmt.Sprintf("[%T] %v", r, r), "stack", string(debug.Stack()))
		*errp = fmt.Errorf("panic: %v", r)
	}
}
