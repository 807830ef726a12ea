package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rclarkson/dropwatch/internal/config"
	"github.com/rclarkson/dropwatch/internal/history"
)

// handleHistory prints recorded status transitions of one session.
func handleHistory(args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load config: %v\n", err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("history", flag.ExitOnError)
	sessionID := fs.String("session", "", "Session id (required)")
	limit := fs.Int("limit", 50, "Maximum transitions to show (0 = all)")
	dbPath := fs.String("db", cfg.History.Path, "History database path")

	fs.Usage = func() {
		fmt.Println("Usage: dropwatch history --session <id> [options]")
		fmt.Println()
		fmt.Println("Show status transitions recorded with 'dropwatch monitor --record'.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *sessionID == "" {
		fmt.Fprintln(os.Stderr, "Error: --session is required")
		fs.Usage()
		os.Exit(1)
	}

	recorder, err := history.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer recorder.Close()

	transitions, err := recorder.Transitions(*sessionID, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(transitions) == 0 {
		fmt.Println("No recorded transitions for session", *sessionID)
		return
	}

	fmt.Printf("%-24s %-28s %s\n", "AT", "OID", "STATUS")
	for _, t := range transitions {
		fmt.Printf("%-24s %-28s %s\n", t.At.Format("2006-01-02 15:04:05.000"), t.OID, t.Status)
	}
}
