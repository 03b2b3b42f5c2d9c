// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package util

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	func() {
		defer Recover(log)
		panic("boom")
	}()

	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("panic not logged: %s", buf.String())
	}
}

func TestRecoverError(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	err := func() (err error) {
		defer RecoverError(log, &err)
		panic("boom")
	}()

	if err == nil || err.Error() != "panic: boom" {
		t.Errorf("unexpected error: %v", err)
	}

	err = func() (err error) {
		defer RecoverError(log, &err)
		return nil
	}()

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
