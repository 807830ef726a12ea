package main

import (
	"fmt"
	"os"
)

var version = "0.1.0"

func usage() {
	fmt.Println("Usage: dropwatch <command> [options]")
	fmt.Println()
	fmt.Println("Live monitor for dataflow manager sessions.")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  monitor   Watch one session live (default)")
	fmt.Println("  sessions  List sessions known to the manager")
	fmt.Println("  history   Show recorded status transitions of a session")
	fmt.Println("  version   Print the version")
	fmt.Println()
	fmt.Println("Run 'dropwatch <command> -h' for command options.")
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	switch args[0] {
	case "monitor":
		handleMonitor(args[1:])
	case "sessions":
		handleSessions(args[1:])
	case "history":
		handleHistory(args[1:])
	case "version", "--version", "-v":
		fmt.Println("dropwatch " + version)
	case "help", "--help", "-h":
		usage()
	default:
		// Bare flags mean "monitor" with options.
		if len(args[0]) > 0 && args[0][0] == '-' {
			handleMonitor(args)
			return
		}
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		usage()
		os.Exit(1)
	}
}
