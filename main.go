package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/bookhaven/storefront/internal/cli"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "books":
		cmd = cli.NewBooksCommand()
	case "users":
		cmd = cli.NewUsersCommand()
	case "orders":
		cmd = cli.NewOrdersCommand()
	case "cart":
		cmd = cli.NewCartCommand()
	case "bookmarks":
		cmd = cli.NewBookmarksCommand()
	case "stats":
		cmd = cli.NewStatsCommand()
	case "watch":
		cmd = cli.NewWatchCommand()

	case "version":
		fmt.Printf("storefront %s (%s)\n", Version, Commit)
		return

	case "-h", "--help", "help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [action] [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  books       List, search and edit the catalog\n")
	fmt.Fprintf(os.Stderr, "  users       Manage users and sign in or out\n")
	fmt.Fprintf(os.Stderr, "  orders      List orders and change their status\n")
	fmt.Fprintf(os.Stderr, "  cart        Edit the shopping cart and check out\n")
	fmt.Fprintf(os.Stderr, "  bookmarks   Edit saved-for-later books\n")
	fmt.Fprintf(os.Stderr, "  stats       Show dashboard statistics\n")
	fmt.Fprintf(os.Stderr, "  watch       Run background workers until interrupted\n")
	fmt.Fprintf(os.Stderr, "  version     Print version information\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
