// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/marko-gacesa/netquake/netquake"
	"github.com/marko-gacesa/netquake/netquake/client"
)

func newQueryCommand(a *app) *cobra.Command {
	var (
		server        string
		players, rule bool
		lan           bool
		wait          time.Duration
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print the public information of a server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			override(cmd, "server", &a.cfg.Server, server)

			dialer, err := newDialer(a)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if lan {
				return discover(cmd.Context(), dialer, wait, out)
			}

			return query(cmd.Context(), dialer, a.cfg.Server, players, rule, out)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&server, "server", "s", "", "server address, host[:port]")
	flags.BoolVarP(&players, "players", "p", false, "also list the players")
	flags.BoolVarP(&rule, "rules", "r", false, "also list the server rules")
	flags.BoolVar(&lan, "lan", false, "find servers on the local network instead")
	flags.DurationVar(&wait, "wait", 2*time.Second, "how long to wait for replies with --lan")

	return cmd
}

func query(ctx context.Context, dialer *client.Dialer, address string, players, rules bool, out io.Writer) error {
	server, err := resolve(address)
	if err != nil {
		return err
	}

	info, err := dialer.QueryServer(ctx, server)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", server.String(), err)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "address\t%s\n", info.Address)
	fmt.Fprintf(w, "hostname\t%s\n", info.Hostname)
	fmt.Fprintf(w, "level\t%s\n", info.Level)
	fmt.Fprintf(w, "players\t%d/%d\n", info.Players, info.MaxPlayers)
	fmt.Fprintf(w, "version\t%d\n", info.Version)

	if players {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "#\tname\tcolors\tfrags\ttime\taddress")
		for i := range info.Players {
			p, err := dialer.QueryPlayer(ctx, server, i)
			if err != nil {
				return fmt.Errorf("failed to query player %d: %w", i, err)
			}
			fmt.Fprintf(w, "%d\t%s\t%d %d\t%d\t%s\t%s\n", p.Index, p.Name, p.Colors>>4, p.Colors&0x0F,
				p.Frags, time.Duration(p.ConnectTime)*time.Second, p.Address)
		}
	}

	if rules {
		list, err := dialer.QueryRules(ctx, server)
		if err != nil {
			return fmt.Errorf("failed to query rules: %w", err)
		}

		fmt.Fprintln(w)
		for _, r := range list {
			fmt.Fprintf(w, "%s\t%s\n", r.Name, r.Value)
		}
	}

	return w.Flush()
}

func discover(ctx context.Context, dialer *client.Dialer, wait time.Duration, out io.Writer) error {
	servers, err := dialer.Discover(ctx, netquake.DiscoveryGroup, wait)
	if err != nil {
		return fmt.Errorf("failed to discover servers: %w", err)
	}

	if len(servers) == 0 {
		_, err := fmt.Fprintln(out, "no servers found")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "address\thostname\tlevel\tplayers")
	for _, s := range servers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\n", s.Addr.String(), s.Info.Hostname, s.Info.Level,
			s.Info.Players, s.Info.MaxPlayers)
	}

	return w.Flush()
}
