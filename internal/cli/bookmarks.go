package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/bookhaven/storefront/internal/store"
)

// BookmarksCommand edits the saved-for-later list.
type BookmarksCommand struct {
	storeFlags

	Action string
	Args   []string
}

// NewBookmarksCommand creates a new BookmarksCommand
func NewBookmarksCommand() *BookmarksCommand {
	return &BookmarksCommand{}
}

// ParseFlags parses command line flags
func (cmd *BookmarksCommand) ParseFlags(args []string) error {
	cmd.Action, args = splitAction(args, "show")

	fs := flag.NewFlagSet("bookmarks", flag.ContinueOnError)
	cmd.register(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s bookmarks <action> [options] [args]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Actions:\n")
		fmt.Fprintf(os.Stderr, "  show                 List bookmarks (default)\n")
		fmt.Fprintf(os.Stderr, "  add <book-id>        Bookmark a catalog book\n")
		fmt.Fprintf(os.Stderr, "  remove <key>         Remove a bookmark\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.Args = fs.Args()
	return nil
}

// Run executes the bookmarks command
func (cmd *BookmarksCommand) Run() error {
	app, err := cmd.open()
	if err != nil {
		return err
	}
	defer app.Close()
	bookmarks := app.Bookmarks

	switch cmd.Action {
	case "show":
		items := bookmarks.Items()
		if len(items) == 0 {
			cmd.printf("No bookmarks\n")
			return nil
		}
		w := cmd.table()
		fmt.Fprintln(w, "KEY\tTITLE\tAUTHOR")
		for _, b := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\n", b.ID, b.Title, b.Author)
		}
		w.Flush()

	case "add":
		if err := requireArgs(cmd.Action, cmd.Args, "book-id"); err != nil {
			return err
		}
		book, found, err := app.Store.Books.Get(cmd.Args[0])
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("book %s: %w", cmd.Args[0], store.ErrNotFound)
		}
		added, err := bookmarks.Add(book)
		if err != nil {
			return err
		}
		if added {
			cmd.printf("Bookmarked %q\n", book.Title)
		} else {
			cmd.printf("%q is already bookmarked\n", book.Title)
		}

	case "remove":
		if err := requireArgs(cmd.Action, cmd.Args, "key"); err != nil {
			return err
		}
		removed, err := bookmarks.Remove(cmd.Args[0])
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("bookmark %s: %w", cmd.Args[0], store.ErrNotFound)
		}
		cmd.printf("Removed bookmark %s\n", cmd.Args[0])

	default:
		return fmt.Errorf("unknown bookmarks action %q", cmd.Action)
	}
	return nil
}
