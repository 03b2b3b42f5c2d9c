// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "netquake.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %s", err.Error())
	}

	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
server: quake.example.com:26000
player:
  name: ranger
  top: 4
  bottom: 13
log:
  level: debug
metrics:
  listen: ":9100"
serve:
  maxPlayers: 8
  rules:
  - name: deathmatch
    value: "1"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load: %s", err.Error())
	}

	want := Default()
	want.Server = "quake.example.com:26000"
	want.Player = Player{Name: "ranger", Top: 4, Bottom: 13}
	want.Log.Level = "debug"
	want.Metrics.Listen = ":9100"
	want.Serve.MaxPlayers = 8
	want.Serve.Rules = []Rule{{Name: "deathmatch", Value: "1"}}

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	if want, got := byte(0x4D), cfg.Player.Colors(); want != got {
		t.Errorf("colors mismatch: want=%x got=%x", want, got)
	}

	level, err := cfg.Log.SlogLevel()
	if err != nil {
		t.Fatalf("invalid level: %s", err.Error())
	}
	if level != slog.LevelDebug {
		t.Errorf("level mismatch: want=%s got=%s", slog.LevelDebug, level)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		expErr  string
	}{
		{name: "unknown key", content: "sever: localhost\n", expErr: "sever"},
		{name: "log level", content: "log:\n  level: loud\n", expErr: "invalid log level"},
		{name: "log format", content: "log:\n  format: xml\n", expErr: "invalid log format"},
		{name: "colors", content: "player:\n  top: 14\n", expErr: "colors"},
		{name: "port", content: "serve:\n  port: 70000\n", expErr: "invalid port"},
		{name: "max players", content: "serve:\n  maxPlayers: 0\n", expErr: "max players"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Load(writeFile(t, test.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), test.expErr) {
				t.Errorf("error %q does not mention %q", err.Error(), test.expErr)
			}
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestMarshal(t *testing.T) {
	cfg := Default()
	cfg.Serve.Rules = []Rule{{Name: "teamplay", Value: "0"}}

	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("failed to marshal: %s", err.Error())
	}

	path := writeFile(t, string(data))

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load marshaled config: %s", err.Error())
	}

	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}
