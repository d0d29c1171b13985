package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/forms"
	"github.com/bookhaven/storefront/internal/store"
)

// OrdersCommand lists orders and moves them through their lifecycle.
type OrdersCommand struct {
	storeFlags

	Action string
	Args   []string
	UserID string
}

// NewOrdersCommand creates a new OrdersCommand
func NewOrdersCommand() *OrdersCommand {
	return &OrdersCommand{}
}

// ParseFlags parses command line flags
func (cmd *OrdersCommand) ParseFlags(args []string) error {
	cmd.Action, args = splitAction(args, "list")

	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	cmd.register(fs)
	fs.StringVar(&cmd.UserID, "user", "", "Only list orders placed by this user id")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s orders <action> [options] [args]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Actions:\n")
		fmt.Fprintf(os.Stderr, "  list                 List orders (default)\n")
		fmt.Fprintf(os.Stderr, "  show <id>            Show an order with its line items\n")
		fmt.Fprintf(os.Stderr, "  status <id> <status> Change an order status\n")
		fmt.Fprintf(os.Stderr, "  delete <id>          Remove an order\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.Args = fs.Args()
	return nil
}

// Run executes the orders command
func (cmd *OrdersCommand) Run() error {
	app, err := cmd.open()
	if err != nil {
		return err
	}
	defer app.Close()
	orders := app.Store.Orders

	switch cmd.Action {
	case "list":
		var list []entities.Order
		if cmd.UserID != "" {
			list, err = orders.ByUser(cmd.UserID)
		} else {
			list, err = orders.All()
		}
		if err != nil {
			return err
		}
		cmd.printOrders(list)

	case "show":
		if err := requireArgs(cmd.Action, cmd.Args, "id"); err != nil {
			return err
		}
		order, found, err := orders.Get(cmd.Args[0])
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("order %s: %w", cmd.Args[0], store.ErrNotFound)
		}
		cmd.printf("Order %s (%s) placed %s by %s <%s>\n", order.ID, order.Status, order.Date, order.UserName, order.UserEmail)
		if order.ShippingAddress != "" {
			cmd.printf("Ship to: %s\n", order.ShippingAddress)
		}
		w := cmd.table()
		fmt.Fprintln(w, "BOOK\tTITLE\tQTY\tPRICE\tSUBTOTAL")
		for _, item := range order.Items {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", item.BookID, item.Title, item.Quantity, item.Price.StringFixed(2), item.Subtotal().StringFixed(2))
		}
		w.Flush()
		cmd.printf("Total: %s\n", order.Total.StringFixed(2))

	case "status":
		if err := requireArgs(cmd.Action, cmd.Args, "id", "status"); err != nil {
			return err
		}
		status, err := forms.ParseStatus(cmd.Args[1])
		if err != nil {
			return err
		}
		order, found, err := orders.UpdateStatus(cmd.Args[0], status)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("order %s: %w", cmd.Args[0], store.ErrNotFound)
		}
		cmd.printf("Order %s is now %s\n", order.ID, order.Status)

	case "delete":
		if err := requireArgs(cmd.Action, cmd.Args, "id"); err != nil {
			return err
		}
		removed, err := orders.Delete(cmd.Args[0])
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("order %s: %w", cmd.Args[0], store.ErrNotFound)
		}
		cmd.printf("Deleted order %s\n", cmd.Args[0])

	default:
		return fmt.Errorf("unknown orders action %q", cmd.Action)
	}
	return nil
}

func (cmd *OrdersCommand) printOrders(orders []entities.Order) {
	if len(orders) == 0 {
		cmd.printf("No orders found\n")
		return
	}
	w := cmd.table()
	fmt.Fprintln(w, "ID\tDATE\tCUSTOMER\tITEMS\tTOTAL\tSTATUS")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", o.ID, o.Date, o.UserName, len(o.Items), o.Total.StringFixed(2), o.Status)
	}
	w.Flush()
}
