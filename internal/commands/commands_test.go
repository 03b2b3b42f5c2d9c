// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package commands

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marko-gacesa/netquake/netquake/message/connect"
	"github.com/marko-gacesa/netquake/netquake/server"
	"github.com/marko-gacesa/netquake/udp"
)

var loopback = &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)}

// execute runs the root command and returns its output.
func execute(ctx context.Context, args ...string) (string, error) {
	var out bytes.Buffer

	root := NewRootCommand("1.2.3")
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append(args, "--log-level", "error"))

	err := root.ExecuteContext(ctx)

	return out.String(), err
}

// startServer runs a listener with hosts for every accepted session.
func startServer(t *testing.T) *server.Listener {
	t.Helper()

	endpoint, err := udp.Listen(loopback)
	if err != nil {
		t.Fatalf("failed to listen: %s", err.Error())
	}

	l := server.NewListener(endpoint,
		server.Info{
			Hostname:   "test server",
			Level:      "e1m1",
			MaxPlayers: 4,
			Rules:      []connect.RuleInfo{{Name: "deathmatch", Value: "0"}},
		},
		server.WithBreakPeriod(20*time.Millisecond))

	level := server.Level{
		Message:    "the Slipgate Complex",
		MaxClients: 4,
		Models:     []string{"maps/e1m1.bsp"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return l.Listen(ctx)
	})

	g.Go(func() error {
		for session := range l.Sessions() {
			g.Go(func() error {
				defer l.Release(session.RemoteAddr())
				return server.NewHost(session, level).Run(ctx)
			})
		}
		return nil
	})

	t.Cleanup(func() {
		cancel()
		if err := g.Wait(); err != nil {
			t.Errorf("server failed: %s", err.Error())
		}
	})

	return l
}

func TestVersion(t *testing.T) {
	out, err := execute(context.Background(), "version")
	if err != nil {
		t.Fatalf("version failed: %s", err.Error())
	}

	if want, got := "netquake 1.2.3\n", out; want != got {
		t.Errorf("output mismatch: want=%q got=%q", want, got)
	}
}

func TestQuery(t *testing.T) {
	l := startServer(t)
	addr := l.Addr()

	out, err := execute(context.Background(), "query", "--server", addr.String(), "--rules", "--players")
	if err != nil {
		t.Fatalf("query failed: %s", err.Error())
	}

	for _, want := range []string{"test server", "e1m1", "0/4", "deathmatch"} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestConnect(t *testing.T) {
	l := startServer(t)
	addr := l.Addr()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	out, err := execute(ctx, "connect", "--server", addr.String(), "--name", "ranger")
	if err != nil {
		t.Fatalf("connect failed: %s", err.Error())
	}

	for _, want := range []string{"VERSION 15 SERVER", "the Slipgate Complex"} {
		if !strings.Contains(out, want) {
			t.Errorf("console output does not contain %q:\n%s", want, out)
		}
	}
}

func TestConnect_InvalidColors(t *testing.T) {
	_, err := execute(context.Background(), "connect", "--top", "20")
	if err == nil || !strings.Contains(err.Error(), "colors") {
		t.Errorf("expected colors error, got %v", err)
	}
}

func TestConfigMissing(t *testing.T) {
	_, err := execute(context.Background(), "version", "--config", "/nonexistent/netquake.yml")
	if err == nil {
		t.Error("expected error for a missing configuration file")
	}
}

func TestMetricsRouter(t *testing.T) {
	registry, _ := newRegistry()

	srv := httptest.NewServer(newMetricsRouter(registry))
	defer srv.Close()

	for path, want := range map[string]string{"/healthz": "", "/metrics": "go_goroutines"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("%s: request failed: %s", path, err.Error())
		}

		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: status mismatch: want=200 got=%d", path, resp.StatusCode)
		}

		if !strings.Contains(string(body), want) {
			t.Errorf("%s: body does not contain %q", path, want)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		address string
		exp     string
	}{
		{address: "127.0.0.1", exp: "127.0.0.1:26000"},
		{address: "127.0.0.1:27500", exp: "127.0.0.1:27500"},
	}

	for _, test := range tests {
		addr, err := resolve(test.address)
		if err != nil {
			t.Errorf("%s: failed to resolve: %s", test.address, err.Error())
			continue
		}

		if want, got := test.exp, addr.String(); want != got {
			t.Errorf("address mismatch: want=%s got=%s", want, got)
		}
	}

	if _, err := resolve("127.0.0.1:port"); err == nil {
		t.Error("expected error for an invalid port")
	}
}
