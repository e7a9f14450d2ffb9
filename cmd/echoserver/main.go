// echoserver is a websocket peer for exercising wslink sessions.
// It greets every received name and sends a keepalive probe on a fixed
// cadence, so a connected session has to answer probes to stay alive.
//
// Usage: go run ./cmd/echoserver --addr localhost:8765
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/wslink/internal/version"
)

func main() {
	addr := flag.String("addr", "localhost:8765", "listen address")
	probe := flag.String("probe", "P", "keepalive probe payload")
	probeInterval := flag.Duration("probe-interval", 10*time.Second, "probe cadence")
	echoOnly := flag.Bool("echo-only", false, "echo payloads verbatim instead of greeting")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	logger.Info("echoserver starting", "version", version.String(), "addr", *addr)

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		defer conn.Close()

		log := logger.With("remote", r.RemoteAddr)
		log.Info("peer connected")

		if err := serve(r.Context(), conn, *probe, *probeInterval, *echoOnly, log); err != nil {
			log.Info("peer disconnected", "reason", err)
		}
	})

	if err := http.ListenAndServe(*addr, nil); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// serve runs the probe and greeting loops for one connection until
// either fails.
func serve(ctx context.Context, conn *websocket.Conn, probe string, interval time.Duration, echoOnly bool, log *slog.Logger) error {
	// Both loops write; websocket connections allow one writer at a time.
	var writeMu sync.Mutex
	write := func(msgType int, data []byte) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		return conn.WriteMessage(msgType, data)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := write(websocket.TextMessage, []byte(probe)); err != nil {
					return err
				}
				log.Debug("probe sent")
			}
		}
	})

	g.Go(func() error {
		for {
			msgType, msg, err := conn.ReadMessage()
			if err != nil {
				return err
			}
			log.Debug("received", "payload", string(msg))

			reply := msg
			if !echoOnly {
				reply = []byte(fmt.Sprintf("Hello %s!", msg))
			}
			if err := write(msgType, reply); err != nil {
				return err
			}
			log.Debug("sent", "payload", string(reply))
		}
	})

	return g.Wait()
}
