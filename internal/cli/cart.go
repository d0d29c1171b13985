package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/bookhaven/storefront/internal/bindings"
	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/forms"
	"github.com/bookhaven/storefront/internal/store"
)

// CartCommand edits the persisted shopping cart and checks it out.
type CartCommand struct {
	storeFlags

	Action  string
	Args    []string
	Address string
}

// NewCartCommand creates a new CartCommand
func NewCartCommand() *CartCommand {
	return &CartCommand{}
}

// ParseFlags parses command line flags
func (cmd *CartCommand) ParseFlags(args []string) error {
	cmd.Action, args = splitAction(args, "show")

	fs := flag.NewFlagSet("cart", flag.ContinueOnError)
	cmd.register(fs)
	fs.StringVar(&cmd.Address, "address", "", "Shipping address used by checkout")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s cart <action> [options] [args]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Actions:\n")
		fmt.Fprintf(os.Stderr, "  show                 Show cart contents and totals (default)\n")
		fmt.Fprintf(os.Stderr, "  add <book-id>        Put one copy of a catalog book into the cart\n")
		fmt.Fprintf(os.Stderr, "  remove <key>         Remove an entry\n")
		fmt.Fprintf(os.Stderr, "  qty <key> <n>        Set the quantity of an entry\n")
		fmt.Fprintf(os.Stderr, "  clear                Empty the cart\n")
		fmt.Fprintf(os.Stderr, "  checkout             Place an order for the cart contents\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.Args = fs.Args()
	return nil
}

// Run executes the cart command
func (cmd *CartCommand) Run() error {
	app, err := cmd.open()
	if err != nil {
		return err
	}
	defer app.Close()
	cart := app.Cart

	switch cmd.Action {
	case "show":
		summary := cart.Summary()
		if summary.Items == 0 {
			cmd.printf("Cart is empty\n")
			return nil
		}
		w := cmd.table()
		fmt.Fprintln(w, "KEY\tTITLE\tQTY\tPRICE\tLINE")
		for _, item := range cart.Items() {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", bindings.ItemKey(item.Book), item.Title, item.Quantity, item.Price.StringFixed(2), item.LineTotal().StringFixed(2))
		}
		w.Flush()
		cmd.printf("Subtotal: %s\nShipping: %s\nTotal:    %s\n",
			summary.Subtotal.StringFixed(2), summary.Shipping.StringFixed(2), summary.Total.StringFixed(2))

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
		if err := cart.Add(book); err != nil {
			return err
		}
		cmd.printf("Added %q, %d item(s) in cart\n", book.Title, cart.Count())

	case "remove":
		if err := requireArgs(cmd.Action, cmd.Args, "key"); err != nil {
			return err
		}
		removed, err := cart.Remove(cmd.Args[0])
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("cart entry %s: %w", cmd.Args[0], store.ErrNotFound)
		}
		cmd.printf("Removed %s\n", cmd.Args[0])

	case "qty":
		if err := requireArgs(cmd.Action, cmd.Args, "key", "n"); err != nil {
			return err
		}
		n, err := forms.ParseQuantity(cmd.Args[1])
		if err != nil {
			return err
		}
		if err := cart.SetQuantity(cmd.Args[0], n); err != nil {
			return err
		}
		cmd.printf("Set %s to %d\n", cmd.Args[0], n)

	case "clear":
		if err := cart.Clear(); err != nil {
			return err
		}
		cmd.printf("Cart cleared\n")

	case "checkout":
		var buyer *entities.User
		user, found, err := app.Store.CurrentUser()
		if err != nil {
			return err
		}
		if found {
			buyer = &user
		}
		order, err := cart.Checkout(buyer, cmd.Address)
		if err != nil {
			return err
		}
		cmd.printf("Placed order %s for %s, total %s\n", order.ID, order.UserName, order.Total.StringFixed(2))

	default:
		return fmt.Errorf("unknown cart action %q", cmd.Action)
	}
	return nil
}
