package cli

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bookhaven/storefront/internal/config"
	"github.com/bookhaven/storefront/internal/entrypoint"
	"github.com/bookhaven/storefront/internal/events"
)

// WatchCommand runs the background workers: task queue, cross-process change
// watcher and audit cleanup. Changes are printed as they arrive.
type WatchCommand struct {
	storeFlags

	Schedule string
}

// NewWatchCommand creates a new WatchCommand
func NewWatchCommand() *WatchCommand {
	return &WatchCommand{}
}

// ParseFlags parses command line flags
func (cmd *WatchCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	cmd.register(fs)
	fs.StringVar(&cmd.Schedule, "schedule", "", "Polling schedule for changes made by other processes (or set WATCH_SCHEDULE)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s watch [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Run background workers until interrupted.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the watch command
func (cmd *WatchCommand) Run() error {
	cfg := cmd.config()
	if cmd.Schedule != "" {
		cfg.Watch.Schedule = cmd.Schedule
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return cmd.run(ctx, cfg)
}

func (cmd *WatchCommand) run(ctx context.Context, cfg *config.Config) error {
	app, err := entrypoint.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open storefront: %w", err)
	}
	defer app.Close()

	unsubscribe := app.Bus.SubscribeAll(func(ev events.Event) {
		cmd.printf("%s: %d record(s)\n", ev.Topic, ev.Count)
	})
	defer unsubscribe()

	log.Printf("Watching %s (schedule %s)", cfg.Database.Path, cfg.Watch.Schedule)
	return app.Watch(ctx)
}
