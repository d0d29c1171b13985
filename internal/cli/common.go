package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/bookhaven/storefront/internal/config"
	"github.com/bookhaven/storefront/internal/entrypoint"
	"github.com/bookhaven/storefront/internal/forms"
)

// storeFlags are accepted by every storefront command.
type storeFlags struct {
	DatabasePath string
	Backend      string

	out io.Writer
}

func (f *storeFlags) register(fs *flag.FlagSet) {
	cfg := config.NewConfig()
	fs.StringVar(&f.DatabasePath, "db", cfg.Database.Path, "Path to the storefront database (or set DATABASE_PATH)")
	fs.StringVar(&f.Backend, "backend", cfg.Store.Backend, "Storage backend: sqlite or memory")
}

// SetOutput redirects command output, os.Stdout by default.
func (f *storeFlags) SetOutput(w io.Writer) {
	f.out = w
}

func (f *storeFlags) writer() io.Writer {
	if f.out == nil {
		return os.Stdout
	}
	return f.out
}

func (f *storeFlags) printf(format string, args ...any) {
	fmt.Fprintf(f.writer(), format, args...)
}

func (f *storeFlags) table() *tabwriter.Writer {
	return tabwriter.NewWriter(f.writer(), 0, 4, 2, ' ', 0)
}

func (f *storeFlags) config() *config.Config {
	cfg := config.NewConfig()
	cfg.Database.Path = f.DatabasePath
	cfg.Store.Backend = f.Backend
	return cfg
}

func (f *storeFlags) open() (*entrypoint.App, error) {
	app, err := entrypoint.Open(f.config())
	if err != nil {
		return nil, fmt.Errorf("failed to open storefront: %w", err)
	}
	return app, nil
}

// formFlags exposes form fields as string flags. Only flags given on the
// command line end up in the resulting forms.Values.
type formFlags struct {
	fs  *flag.FlagSet
	raw map[string]*string
}

func newFormFlags(fs *flag.FlagSet, fields map[string]string) *formFlags {
	f := &formFlags{fs: fs, raw: make(map[string]*string, len(fields))}
	for name, usage := range fields {
		f.raw[name] = fs.String(name, "", usage)
	}
	return f
}

func (f *formFlags) values() forms.Values {
	v := forms.Values{}
	f.fs.Visit(func(fl *flag.Flag) {
		if raw, ok := f.raw[fl.Name]; ok {
			v[fl.Name] = *raw
		}
	})
	return v
}

// splitAction separates the leading action word from the remaining args.
func splitAction(args []string, fallback string) (string, []string) {
	if len(args) == 0 || len(args[0]) == 0 || args[0][0] == '-' {
		return fallback, args
	}
	return args[0], args[1:]
}

func requireArgs(action string, args []string, names ...string) error {
	if len(args) < len(names) {
		return fmt.Errorf("%s requires %d argument(s): %v", action, len(names), names)
	}
	return nil
}
