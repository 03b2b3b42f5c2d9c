// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"

	"github.com/marko-gacesa/netquake/netquake"
)

// Config is the configuration file of the netquake command.
// Command line flags override the values read from the file.
type Config struct {
	Server  string  `yaml:"server"`
	Player  Player  `yaml:"player"`
	Log     Log     `yaml:"log"`
	Metrics Metrics `yaml:"metrics"`
	Network Network `yaml:"network"`
	Assets  Assets  `yaml:"assets"`
	Serve   Serve   `yaml:"serve"`
}

type Player struct {
	Name   string `yaml:"name"`
	Top    byte   `yaml:"top"`
	Bottom byte   `yaml:"bottom"`
}

// Colors returns the colors packed the way the protocol carries them.
func (p Player) Colors() byte {
	return p.Top<<4 | p.Bottom&0x0F
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SlogLevel parses the level name.
func (l Log) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("config: invalid log level %q", l.Level)
	}
	return level, nil
}

type Metrics struct {
	// Listen is the address of the HTTP server exposing /metrics. Empty disables it.
	Listen string `yaml:"listen"`
}

type Network struct {
	// Local is the local address to bind, host:port. Empty binds an ephemeral port.
	Local string `yaml:"local"`
	TOS   int    `yaml:"tos"`
}

type Assets struct {
	// Dir is the directory with the game files. Empty only records asset names.
	Dir string `yaml:"dir"`
}

type Serve struct {
	Port       int    `yaml:"port"`
	Hostname   string `yaml:"hostname"`
	Level      string `yaml:"level"`
	Message    string `yaml:"message"`
	MaxPlayers byte   `yaml:"maxPlayers"`
	Deathmatch bool   `yaml:"deathmatch"`
	Discovery  bool   `yaml:"discovery"`
	Rules      []Rule `yaml:"rules"`
}

type Rule struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

func Default() Config {
	return Config{
		Server: net.JoinHostPort("localhost", strconv.Itoa(netquake.DefaultPort)),
		Player: Player{Name: "player"},
		Log:    Log{Level: "info", Format: "text"},
		Network: Network{
			TOS: 0x10,
		},
		Serve: Serve{
			Port:       netquake.DefaultPort,
			Hostname:   "netquake",
			Level:      "start",
			Message:    "Introduction",
			MaxPlayers: 4,
			Discovery:  true,
		},
	}
}

// Load reads the file at path over the defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: failed to read: %w", err)
	}

	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Marshal returns the configuration in the file format.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c Config) Validate() error {
	var errs []error

	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: invalid log format %q", c.Log.Format))
	}

	if c.Player.Top > 13 || c.Player.Bottom > 13 {
		errs = append(errs, errors.New("config: player colors must be in range 0-13"))
	}

	if c.Network.TOS < 0 || c.Network.TOS > 0xFF {
		errs = append(errs, fmt.Errorf("config: invalid type of service %d", c.Network.TOS))
	}

	if c.Serve.Port < 0 || c.Serve.Port > 0xFFFF {
		errs = append(errs, fmt.Errorf("config: invalid port %d", c.Serve.Port))
	}

	if c.Serve.MaxPlayers == 0 {
		errs = append(errs, errors.New("config: max players must be positive"))
	}

	return errors.Join(errs...)
}
