// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/marko-gacesa/netquake/netquake"
	"github.com/marko-gacesa/netquake/netquake/message/connect"
	"github.com/marko-gacesa/netquake/netquake/server"
	"github.com/marko-gacesa/netquake/netquake/transport"
	"github.com/marko-gacesa/netquake/udp"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		port                           int
		hostname, level, metricsListen string
		maxPlayers                     uint8
		discovery                      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a test server that accepts connections and walks clients through the sign-on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			override(cmd, "port", &a.cfg.Serve.Port, port)
			override(cmd, "hostname", &a.cfg.Serve.Hostname, hostname)
			override(cmd, "level", &a.cfg.Serve.Level, level)
			override(cmd, "max-players", &a.cfg.Serve.MaxPlayers, maxPlayers)
			override(cmd, "discovery", &a.cfg.Serve.Discovery, discovery)
			override(cmd, "metrics-listen", &a.cfg.Metrics.Listen, metricsListen)

			if err := a.cfg.Validate(); err != nil {
				return err
			}

			return runServe(cmd.Context(), a)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&port, "port", "p", 0, "port for handshake requests")
	flags.StringVar(&hostname, "hostname", "", "server name reported to queries")
	flags.StringVar(&level, "level", "", "level name, maps/<level>.bsp is announced")
	flags.Uint8Var(&maxPlayers, "max-players", 0, "maximum number of connected clients")
	flags.BoolVar(&discovery, "discovery", false, "answer queries from the local network")
	flags.StringVar(&metricsListen, "metrics-listen", "", "address of the metrics HTTP server")

	return cmd
}

func runServe(ctx context.Context, a *app) error {
	cfg := a.cfg.Serve

	endpoint, err := udp.Listen(&net.UDPAddr{Port: cfg.Port}, udp.WithTOS(a.cfg.Network.TOS))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", cfg.Port, err)
	}

	registry, metrics := newRegistry()

	rules := make([]connect.RuleInfo, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		rules = append(rules, connect.RuleInfo{Name: r.Name, Value: r.Value})
	}

	l := server.NewListener(endpoint,
		server.Info{
			Hostname:   cfg.Hostname,
			Level:      cfg.Level,
			MaxPlayers: cfg.MaxPlayers,
			Rules:      rules,
		},
		server.WithLogger(a.log),
		server.WithEndpointOptions(udp.WithTOS(a.cfg.Network.TOS)),
		server.WithSessionOptions(transport.WithLogger(a.log), transport.WithMetrics(metrics)))

	gameType := netquake.GameTypeCoop
	if cfg.Deathmatch {
		gameType = netquake.GameTypeDeathmatch
	}

	level := server.Level{
		Message:    cfg.Message,
		GameType:   gameType,
		MaxClients: cfg.MaxPlayers,
		Models:     []string{"maps/" + cfg.Level + ".bsp"},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return l.Listen(ctx)
	})

	if cfg.Discovery {
		group, err := udp.ListenGroup(netquake.DiscoveryGroup)
		if err != nil {
			a.log.Warn("local network discovery disabled", "err", err)
		} else {
			g.Go(func() error {
				return l.Announce(ctx, group)
			})
		}
	}

	if a.cfg.Metrics.Listen != "" {
		g.Go(func() error {
			return serveMetrics(ctx, a.cfg.Metrics.Listen, registry, a.log)
		})
	}

	g.Go(func() error {
		var hosts sync.WaitGroup
		defer hosts.Wait()

		// the channel is closed when the listener stops
		for session := range l.Sessions() {
			hosts.Add(1)
			go func() {
				defer hosts.Done()
				host(ctx, a, l, session, level)
			}()
		}

		return nil
	})

	addr := l.Addr()
	a.log.Info("serving", "addr", addr.String(), "level", cfg.Level, "maxPlayers", cfg.MaxPlayers)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

func host(ctx context.Context, a *app, l *server.Listener, session *transport.Session, level server.Level) {
	remote := session.RemoteAddr()
	defer l.Release(remote)

	log := a.log.With("client", remote.String())
	slot, _ := l.Slot(remote)

	h := server.NewHost(session, level,
		server.WithHostLogger(a.log),
		server.WithSlot(slot),
		server.WithPlayerUpdate(func(name string, colors byte) {
			l.SetPlayer(remote, name, colors)
		}))

	if err := h.Run(ctx); err != nil {
		log.Warn("client dropped", "err", err)
	}

	log.Info("session ended", "stats", session.Stats())
}
