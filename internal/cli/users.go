package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/entrypoint"
	"github.com/bookhaven/storefront/internal/forms"
	"github.com/bookhaven/storefront/internal/store"
)

var userFields = map[string]string{
	"name":    "Full name",
	"email":   "Email address",
	"phone":   "Phone number",
	"address": "Postal address",
	"role":    "Role: user or admin",
}

// UsersCommand manages accounts and the signed-in user.
type UsersCommand struct {
	storeFlags

	Action string
	Args   []string
	Form   forms.Values
}

// NewUsersCommand creates a new UsersCommand
func NewUsersCommand() *UsersCommand {
	return &UsersCommand{}
}

// ParseFlags parses command line flags
func (cmd *UsersCommand) ParseFlags(args []string) error {
	cmd.Action, args = splitAction(args, "list")

	fs := flag.NewFlagSet("users", flag.ContinueOnError)
	cmd.register(fs)
	form := newFormFlags(fs, userFields)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s users <action> [options] [args]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Actions:\n")
		fmt.Fprintf(os.Stderr, "  list                 List users (default)\n")
		fmt.Fprintf(os.Stderr, "  add                  Add a user (-name, -email required)\n")
		fmt.Fprintf(os.Stderr, "  update <id>          Change the given fields of a user\n")
		fmt.Fprintf(os.Stderr, "  delete <id>          Remove a user\n")
		fmt.Fprintf(os.Stderr, "  login <email>        Sign in as the user with this email\n")
		fmt.Fprintf(os.Stderr, "  logout               Sign out\n")
		fmt.Fprintf(os.Stderr, "  whoami               Show the signed-in user\n\n")
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

// Run executes the users command
func (cmd *UsersCommand) Run() error {
	app, err := cmd.open()
	if err != nil {
		return err
	}
	defer app.Close()
	users := app.Store.Users

	switch cmd.Action {
	case "list":
		list, err := users.All()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			cmd.printf("No users found\n")
			return nil
		}
		w := cmd.table()
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tJOINED")
		for _, u := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, u.JoinedDate)
		}
		w.Flush()

	case "add":
		in, err := forms.ParseUserForm(cmd.Form)
		if err != nil {
			return err
		}
		user, err := users.Add(in)
		if err != nil {
			return err
		}
		cmd.printf("Added user %s <%s>\n", user.ID, user.Email)

	case "update":
		if err := requireArgs(cmd.Action, cmd.Args, "id"); err != nil {
			return err
		}
		patch, err := forms.ParseUserPatch(cmd.Form)
		if err != nil {
			return err
		}
		user, found, err := users.Update(cmd.Args[0], patch)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("user %s: %w", cmd.Args[0], store.ErrNotFound)
		}
		cmd.printf("Updated user %s <%s>\n", user.ID, user.Email)

	case "delete":
		if err := requireArgs(cmd.Action, cmd.Args, "id"); err != nil {
			return err
		}
		removed, err := users.Delete(cmd.Args[0])
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("user %s: %w", cmd.Args[0], store.ErrNotFound)
		}
		cmd.printf("Deleted user %s\n", cmd.Args[0])

	case "login":
		if err := requireArgs(cmd.Action, cmd.Args, "email"); err != nil {
			return err
		}
		user, found, err := users.ByEmail(cmd.Args[0])
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("user %s: %w", cmd.Args[0], store.ErrNotFound)
		}
		if err := app.Store.SetCurrentUser(&user); err != nil {
			return err
		}
		logSession(app, user, "login")
		cmd.printf("Signed in as %s <%s>\n", user.Name, user.Email)

	case "logout":
		user, found, err := app.Store.CurrentUser()
		if err != nil {
			return err
		}
		if err := app.Store.SetCurrentUser(nil); err != nil {
			return err
		}
		if found {
			logSession(app, user, "logout")
			cmd.printf("Signed out %s\n", user.Email)
		} else {
			cmd.printf("Nobody is signed in\n")
		}

	case "whoami":
		user, found, err := app.Store.CurrentUser()
		if err != nil {
			return err
		}
		if !found {
			cmd.printf("Guest\n")
			return nil
		}
		cmd.printf("%s <%s> (%s)\n", user.Name, user.Email, user.Role)

	default:
		return fmt.Errorf("unknown users action %q", cmd.Action)
	}
	return nil
}

func logSession(app *entrypoint.App, user entities.User, action string) {
	if app.Audit != nil {
		app.Audit.LogSession(user, action)
	}
}
