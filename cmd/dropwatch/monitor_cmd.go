package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/rclarkson/dropwatch/internal/config"
	"github.com/rclarkson/dropwatch/internal/feed"
	"github.com/rclarkson/dropwatch/internal/graph"
	"github.com/rclarkson/dropwatch/internal/history"
	"github.com/rclarkson/dropwatch/internal/logging"
	"github.com/rclarkson/dropwatch/internal/ui"
)

// handleMonitor starts the live TUI for one session.
func handleMonitor(args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load config: %v\n", err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("monitor", flag.ExitOnError)
	server := fs.String("server", cfg.ServerURL, "Manager base URL")
	sessionID := fs.String("session", "", "Session id to monitor (required)")
	rootOID := fs.String("node", "", "Drop id scoping the view to its subtree")
	mode := fs.String("mode", cfg.Mode, "Initial view mode: graph or list")
	orientation := fs.String("orientation", cfg.Orientation, "Graph layout direction: LR or TB")
	interval := fs.Duration("interval", cfg.Interval(), "Poll interval")
	follow := fs.String("follow", "poll", "Snapshot transport: poll or ws (ws falls back to poll)")
	record := fs.Bool("record", cfg.History.Enabled, "Record status transitions to the history db")

	fs.Usage = func() {
		fmt.Println("Usage: dropwatch monitor --session <id> [options]")
		fmt.Println()
		fmt.Println("Watch one dataflow session live.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  dropwatch monitor --session lofar-2026-08")
		fmt.Println("  dropwatch monitor --session lofar-2026-08 --mode list --interval 5s")
		fmt.Println("  dropwatch monitor --session lofar-2026-08 --node drop_0042 --follow ws")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *sessionID == "" {
		fmt.Fprintln(os.Stderr, "Error: --session is required; nothing to monitor without one")
		fs.Usage()
		os.Exit(1)
	}
	if *interval <= 0 {
		fmt.Fprintln(os.Stderr, "Error: --interval must be positive")
		os.Exit(1)
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: dropwatch monitor needs a terminal")
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Log.Path, cfg.Log.MaxSize)
	client := feed.NewClient(*server)
	logger.Printf("monitor: starting for session %s on %s (client %s)", *sessionID, *server, client.ClientID())

	var recorder *history.Recorder
	if *record {
		recorder, err = history.Open(cfg.History.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open history db: %v\n", err)
			os.Exit(1)
		}
		defer recorder.Close()
	}

	makeSource := sourceFactory(client, *server, *sessionID, *rootOID, *interval, *follow, recorder, logger)

	monitor, err := ui.NewMonitor(ui.Options{
		SessionID:   *sessionID,
		RootOID:     *rootOID,
		Mode:        ui.ParseMode(*mode),
		Orientation: graph.ParseOrientation(*orientation),
		MakeSource:  makeSource,
		Logger:      logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if _, err := tea.NewProgram(monitor, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// sourceFactory wires the chosen transport, the optional recorder, and the
// UI callback into one snapshot source per renderer start.
func sourceFactory(client *feed.Client, server, sessionID, rootOID string, interval time.Duration, follow string, recorder *history.Recorder, logger *log.Logger) ui.SourceFactory {
	return func(onSnapshot feed.SnapshotFunc) (feed.Source, error) {
		deliver := onSnapshot
		if recorder != nil {
			deliver = func(snap feed.Snapshot) {
				if err := recorder.Record(sessionID, snap); err != nil {
					logger.Printf("history: record session %s: %v", sessionID, err)
				}
				onSnapshot(snap)
			}
		}

		if follow == "ws" {
			stream, err := feed.NewStream(server, sessionID, rootOID, deliver, logger)
			if err == nil {
				startErr := stream.Start(context.Background())
				if startErr == nil {
					return startedSource{stream}, nil
				}
				logger.Printf("monitor: event socket unavailable, falling back to polling: %v", startErr)
			}
		}

		return feed.New(client, sessionID, rootOID, interval, deliver, logger)
	}
}

// startedSource wraps a Source that Start was already called on, so the
// monitor's own Start turns into a no-op instead of a double start.
type startedSource struct {
	src feed.Source
}

func (s startedSource) Start(context.Context) error { return nil }
func (s startedSource) Stop()                       { s.src.Stop() }
