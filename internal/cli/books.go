package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/forms"
	"github.com/bookhaven/storefront/internal/store"
)

var bookFields = map[string]string{
	"title":       "Book title",
	"author":      "Book author",
	"price":       "Unit price, e.g. 12.99 or $12.99",
	"stock":       "Copies in stock",
	"category":    "Catalog category",
	"image":       "Cover image URL",
	"description": "Book description",
}

// BooksCommand manages the catalog.
type BooksCommand struct {
	storeFlags

	Action string
	Args   []string
	Form   forms.Values
}

// NewBooksCommand creates a new BooksCommand
func NewBooksCommand() *BooksCommand {
	return &BooksCommand{}
}

// ParseFlags parses command line flags
func (cmd *BooksCommand) ParseFlags(args []string) error {
	cmd.Action, args = splitAction(args, "list")

	fs := flag.NewFlagSet("books", flag.ContinueOnError)
	cmd.register(fs)
	form := newFormFlags(fs, bookFields)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s books <action> [options] [args]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Actions:\n")
		fmt.Fprintf(os.Stderr, "  list                 List the catalog (default)\n")
		fmt.Fprintf(os.Stderr, "  search <query>       Search titles, authors and descriptions\n")
		fmt.Fprintf(os.Stderr, "  category <name>      List books in a category\n")
		fmt.Fprintf(os.Stderr, "  categories           List known categories\n")
		fmt.Fprintf(os.Stderr, "  low-stock            List books below the restock threshold\n")
		fmt.Fprintf(os.Stderr, "  add                  Add a book (-title, -author, -price required)\n")
		fmt.Fprintf(os.Stderr, "  update <id>          Change the given fields of a book\n")
		fmt.Fprintf(os.Stderr, "  delete <id>          Remove a book\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.Args = fs.Args()
	cmd.Form = form.values()
	return nil
}

// Run executes the books command
func (cmd *BooksCommand) Run() error {
	app, err := cmd.open()
	if err != nil {
		return err
	}
	defer app.Close()
	books := app.Store.Books

	switch cmd.Action {
	case "list":
		list, err := books.All()
		if err != nil {
			return err
		}
		cmd.printBooks(list)

	case "search":
		if err := requireArgs(cmd.Action, cmd.Args, "query"); err != nil {
			return err
		}
		list, err := books.Search(cmd.Args[0])
		if err != nil {
			return err
		}
		cmd.printBooks(list)

	case "category":
		if err := requireArgs(cmd.Action, cmd.Args, "name"); err != nil {
			return err
		}
		list, err := books.ByCategory(cmd.Args[0])
		if err != nil {
			return err
		}
		cmd.printBooks(list)

	case "categories":
		categories, err := books.Categories()
		if err != nil {
			return err
		}
		for _, c := range categories {
			cmd.printf("%s\n", c)
		}

	case "low-stock":
		list, err := books.LowStock()
		if err != nil {
			return err
		}
		cmd.printBooks(list)

	case "add":
		in, err := forms.ParseBookForm(cmd.Form)
		if err != nil {
			return err
		}
		book, err := books.Add(in)
		if err != nil {
			return err
		}
		cmd.printf("Added book %s: %q\n", book.ID, book.Title)

	case "update":
		if err := requireArgs(cmd.Action, cmd.Args, "id"); err != nil {
			return err
		}
		patch, err := forms.ParseBookPatch(cmd.Form)
		if err != nil {
			return err
		}
		book, found, err := books.Update(cmd.Args[0], patch)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("book %s: %w", cmd.Args[0], store.ErrNotFound)
		}
		cmd.printf("Updated book %s: %q, %s, %d in stock\n", book.ID, book.Title, book.Price.StringFixed(2), book.Stock)

	case "delete":
		if err := requireArgs(cmd.Action, cmd.Args, "id"); err != nil {
			return err
		}
		removed, err := books.Delete(cmd.Args[0])
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("book %s: %w", cmd.Args[0], store.ErrNotFound)
		}
		cmd.printf("Deleted book %s\n", cmd.Args[0])

	default:
		return fmt.Errorf("unknown books action %q", cmd.Action)
	}
	return nil
}

func (cmd *BooksCommand) printBooks(books []entities.Book) {
	if len(books) == 0 {
		cmd.printf("No books found\n")
		return
	}
	w := cmd.table()
	fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tCATEGORY\tPRICE\tSTOCK")
	for _, b := range books {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n", b.ID, b.Title, b.Author, b.Category, b.Price.StringFixed(2), b.Stock)
	}
	w.Flush()
}
