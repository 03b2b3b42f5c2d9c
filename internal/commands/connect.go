// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/marko-gacesa/netquake/internal/assets"
	"github.com/marko-gacesa/netquake/netquake"
	"github.com/marko-gacesa/netquake/netquake/client"
	clientmessage "github.com/marko-gacesa/netquake/netquake/message/client"
	"github.com/marko-gacesa/netquake/netquake/transport"
	"github.com/marko-gacesa/netquake/udp"
)

// moveInterval is how often the player input is sent once the client has spawned.
const moveInterval = 50 * time.Millisecond

func newConnectCommand(a *app) *cobra.Command {
	var (
		server, name, assetDir, metricsListen string
		top, bottom                           uint8
	)

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect to a server and print its console output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			override(cmd, "server", &a.cfg.Server, server)
			override(cmd, "name", &a.cfg.Player.Name, name)
			override(cmd, "top", &a.cfg.Player.Top, top)
			override(cmd, "bottom", &a.cfg.Player.Bottom, bottom)
			override(cmd, "assets", &a.cfg.Assets.Dir, assetDir)
			override(cmd, "metrics-listen", &a.cfg.Metrics.Listen, metricsListen)

			if err := a.cfg.Validate(); err != nil {
				return err
			}

			return runConnect(cmd.Context(), a, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&server, "server", "s", "", "server address, host[:port]")
	flags.StringVarP(&name, "name", "n", "", "player name")
	flags.Uint8Var(&top, "top", 0, "shirt color (0-13)")
	flags.Uint8Var(&bottom, "bottom", 0, "pants color (0-13)")
	flags.StringVar(&assetDir, "assets", "", "directory with the game files")
	flags.StringVar(&metricsListen, "metrics-listen", "", "address of the metrics HTTP server")

	return cmd
}

func runConnect(ctx context.Context, a *app, out io.Writer) error {
	server, err := resolve(a.cfg.Server)
	if err != nil {
		return err
	}

	registry, metrics := newRegistry()

	dialer, err := newDialer(a,
		client.WithSessionOptions(
			transport.WithLogger(a.log.With("server", server.String())),
			transport.WithMetrics(metrics),
		))
	if err != nil {
		return err
	}

	session, err := dialer.Connect(ctx, server)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", server.String(), err)
	}

	console := client.ConsoleFunc(func(text string) {
		_, _ = io.WriteString(out, text)
	})

	drv := client.NewDriver(session, assets.NewLoader(a.cfg.Assets.Dir, a.log), console,
		client.WithDriverLogger(a.log),
		client.WithPlayer(a.cfg.Player.Name, a.cfg.Player.Colors()))

	g, ctx := errgroup.WithContext(ctx)

	if a.cfg.Metrics.Listen != "" {
		g.Go(func() error {
			return serveMetrics(ctx, a.cfg.Metrics.Listen, registry, a.log)
		})
	}

	g.Go(func() error {
		defer func() {
			if err := drv.Disconnect(); err != nil {
				a.log.Warn("failed to disconnect", "err", err)
			}
			a.log.Info("session ended", "stats", session.Stats())
		}()

		err := play(ctx, drv)
		if errors.Is(err, netquake.ErrServerDisconnected) {
			a.log.Info("server disconnected")
			return context.Canceled
		}
		if err != nil {
			return err
		}

		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// play runs the session until the context is done.
// Server messages and player input share the goroutine, the session is not safe for concurrent use.
func play(ctx context.Context, drv *client.Driver) error {
	nextMove := time.Now()

	for {
		ctxWait, cancel := context.WithTimeout(ctx, moveInterval)
		err := drv.ParseServerMessage(ctxWait, transport.Blocking)
		cancel()

		if ctx.Err() != nil {
			return nil
		}
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		if drv.SignOn() < client.SignOnBegin || time.Now().Before(nextMove) {
			continue
		}

		nextMove = time.Now().Add(moveInterval)

		move := &clientmessage.Move{
			Time:   drv.Time(),
			Angles: drv.ViewAngles(),
		}
		if err := drv.SendMove(move); err != nil {
			return err
		}
	}
}

func newDialer(a *app, options ...func(*client.Dialer)) (*client.Dialer, error) {
	options = append(options,
		client.WithLogger(a.log),
		client.WithEndpointOptions(udp.WithTOS(a.cfg.Network.TOS)))

	if a.cfg.Network.Local != "" {
		local, err := net.ResolveUDPAddr("udp", a.cfg.Network.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid local address: %w", err)
		}
		options = append(options, client.WithLocalAddr(local))
	}

	return client.NewDialer(options...), nil
}

// resolve accepts host or host:port, the port defaults to netquake.DefaultPort.
func resolve(address string) (net.UDPAddr, error) {
	if _, _, err := net.SplitHostPort(address); err != nil {
		address = net.JoinHostPort(address, fmt.Sprint(netquake.DefaultPort))
	}

	addr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return net.UDPAddr{}, fmt.Errorf("invalid server address %q: %w", address, err)
	}

	if ip4 := addr.IP.To4(); ip4 != nil {
		addr.IP = ip4
	}

	return *addr, nil
}
