package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rclarkson/dropwatch/internal/config"
	"github.com/rclarkson/dropwatch/internal/feed"
)

// handleSessions lists the sessions the manager currently knows about.
func handleSessions(args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load config: %v\n", err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	server := fs.String("server", cfg.ServerURL, "Manager base URL")
	timeout := fs.Duration("timeout", 10*time.Second, "Request timeout")

	fs.Usage = func() {
		fmt.Println("Usage: dropwatch sessions [options]")
		fmt.Println()
		fmt.Println("List sessions known to the manager.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	sessions, err := feed.NewClient(*server).Sessions(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions.")
		return
	}

	fmt.Printf("%-32s %-12s %s\n", "SESSION", "STATUS", "DROPS")
	for _, s := range sessions {
		fmt.Printf("%-32s %-12s %d\n", s.SessionID, s.Status, s.Size)
	}
}
