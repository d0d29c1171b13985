package store

import (
	"net/mail"
	"strings"

	"github.com/bookhaven/storefront/internal/entities"
)

const dateLayout = "2006-01-02"

// UserInput holds the fields of a new user. An empty Role means RoleUser.
type UserInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Role    entities.Role
}

// UserPatch is a partial update. Nil fields keep their current value.
type UserPatch struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
	Role    *entities.Role
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return NewValidationError("email", "must not be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return NewValidationError("email", "is not a valid address")
	}
	return nil
}

func (in UserInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewValidationError("name", "must not be empty")
	}
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	if in.Role != "" && !in.Role.Valid() {
		return NewValidationError("role", "must be user or admin")
	}
	return nil
}

func (p UserPatch) apply(u entities.User) (entities.User, error) {
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return u, NewValidationError("name", "must not be empty")
		}
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		if err := validateEmail(*p.Email); err != nil {
			return u, err
		}
		u.Email = strings.TrimSpace(*p.Email)
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.Role != nil {
		if !p.Role.Valid() {
			return u, NewValidationError("role", "must be user or admin")
		}
		u.Role = *p.Role
	}
	return u, nil
}

// Users is the account repository.
type Users struct {
	c collection[entities.User]
}

func (r *Users) All() ([]entities.User, error) {
	return r.c.all()
}

func (r *Users) Get(id string) (entities.User, bool, error) {
	return r.c.get(id)
}

// Add validates in and appends a new user stamped with today's join date.
func (r *Users) Add(in UserInput) (entities.User, error) {
	if err := in.validate(); err != nil {
		return entities.User{}, err
	}
	role := in.Role
	if role == "" {
		role = entities.RoleUser
	}
	now := r.c.svc.timestamp()
	user := entities.User{
		ID:         r.c.svc.newID(),
		Name:       strings.TrimSpace(in.Name),
		Email:      strings.TrimSpace(in.Email),
		Phone:      in.Phone,
		Address:    in.Address,
		Role:       role,
		JoinedDate: now.Format(dateLayout),
		CreatedAt:  now,
	}
	if err := r.c.add(user); err != nil {
		return entities.User{}, err
	}
	return user, nil
}

func (r *Users) Update(id string, patch UserPatch) (entities.User, bool, error) {
	return r.c.update(id, patch.apply)
}

// Delete removes the user with id. Removing the last admin is allowed.
func (r *Users) Delete(id string) (bool, error) {
	return r.c.delete(id)
}

// ByEmail finds a user by email, ignoring case.
func (r *Users) ByEmail(email string) (entities.User, bool, error) {
	users, err := r.c.all()
	if err != nil {
		return entities.User{}, false, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, true, nil
		}
	}
	return entities.User{}, false, nil
}
