// sessiontest opens a resilient session against a websocket peer and
// bridges it to the terminal: stdin lines are sent, delivered messages
// are printed. Useful against cmd/echoserver for watching keepalive
// and reconnect behavior.
//
// Usage: go run ./cmd/sessiontest --url ws://localhost:8765
// or:    go run ./cmd/sessiontest --config configs/session.yaml
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rickgao/wslink/internal/config"
	"github.com/rickgao/wslink/internal/version"
	"github.com/rickgao/wslink/session"
	"github.com/rickgao/wslink/transport"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	url := flag.String("url", "", "websocket URL (overrides config)")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}

	sessCfg := session.Config{}
	if *configPath != "" {
		cfg, err := config.LoadAndValidate(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load config:", err)
			os.Exit(1)
		}
		sessCfg = cfg.SessionConfig()
		if !*verbose {
			level = cfg.SlogLevel()
		}
	}
	if *url != "" {
		sessCfg.URL = *url
	}
	if sessCfg.URL == "" {
		fmt.Fprintln(os.Stderr, "either --url or --config is required")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	logger.Info("sessiontest starting", "version", version.String(), "url", sessCfg.URL)

	sup, err := session.New(sessCfg, logger)
	if err != nil {
		logger.Error("invalid session config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	sess := sup.OpenSession(ctx, session.Handlers{
		OnConnected: func() {
			logger.Info("connected")
		},
		OnMessage: func(p transport.Payload) {
			fmt.Printf("< %s\n", p.String())
		},
		OnClosed: func(cause session.StopCause) {
			logger.Info("session closed", "cause", cause)
			cancel()
		},
	})

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			if err := sess.SendText(line); err != nil {
				logger.Warn("send failed", "error", err)
				return
			}
		}
		// stdin closed; ask the peer for a clean close.
		sess.Close(transport.CloseNormal, "stdin closed")
	}()

	<-sup.Done()

	if err := sup.Err(); err != nil {
		logger.Error("session failed", "error", err)
		os.Exit(1)
	}
}
