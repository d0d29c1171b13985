package cli

import (
	"flag"
	"fmt"
	"os"
)

// StatsCommand prints the admin dashboard summary.
type StatsCommand struct {
	storeFlags
}

// NewStatsCommand creates a new StatsCommand
func NewStatsCommand() *StatsCommand {
	return &StatsCommand{}
}

// ParseFlags parses command line flags
func (cmd *StatsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	cmd.register(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s stats [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Show catalog, user and order statistics.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the stats command
func (cmd *StatsCommand) Run() error {
	app, err := cmd.open()
	if err != nil {
		return err
	}
	defer app.Close()

	stats := app.Statistics.Current()
	cmd.printf("=== Storefront Statistics ===\n")
	cmd.printf("Books:          %d\n", stats.TotalBooks)
	cmd.printf("Users:          %d\n", stats.TotalUsers)
	cmd.printf("Orders:         %d (%d pending)\n", stats.TotalOrders, stats.PendingOrders)
	cmd.printf("Revenue:        %s\n", stats.TotalRevenue.StringFixed(2))
	cmd.printf("Low stock:      %d\n", stats.LowStockBooks)

	if len(stats.RecentOrders) > 0 {
		cmd.printf("\nRecent orders:\n")
		w := cmd.table()
		for _, o := range stats.RecentOrders {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", o.ID, o.UserName, o.Total.StringFixed(2), o.Status)
		}
		w.Flush()
	}
	return nil
}
