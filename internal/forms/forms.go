// Package forms coerces raw form values into repository inputs.
//
// UI collaborators hand over strings for every field ("$12.99", "5"). The
// functions here trim, convert and validate them so only typed values reach
// the store. Failures are *store.ValidationError.
package forms

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/store"
)

// Values holds raw form fields by name.
type Values map[string]string

func (v Values) lookup(field string) (string, bool) {
	raw, ok := v[field]
	return strings.TrimSpace(raw), ok
}

// ParsePrice accepts an optional leading "$" and thousands separators.
func ParsePrice(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, store.NewValidationError("price", "is required")
	}
	price, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, store.NewValidationError("price", "is not a number: "+raw)
	}
	if price.IsNegative() {
		return decimal.Zero, store.NewValidationError("price", "must not be negative")
	}
	return price, nil
}

// ParseCount parses a non-negative whole number for field.
func ParseCount(field, raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, store.NewValidationError(field, "is required")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, store.NewValidationError(field, "is not a whole number: "+raw)
	}
	if n < 0 {
		return 0, store.NewValidationError(field, "must not be negative")
	}
	return n, nil
}

// ParseQuantity parses a quantity of at least 1.
func ParseQuantity(raw string) (int, error) {
	n, err := ParseCount("quantity", raw)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, store.NewValidationError("quantity", "must be at least 1")
	}
	return n, nil
}

// ParseStatus parses an order status name, ignoring case.
func ParseStatus(raw string) (entities.OrderStatus, error) {
	status := entities.OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", store.NewValidationError("status", "unknown status "+strconv.Quote(raw))
	}
	return status, nil
}

// ParseRole parses a role name, ignoring case. Empty means RoleUser.
func ParseRole(raw string) (entities.Role, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return entities.RoleUser, nil
	}
	role := entities.Role(s)
	if !role.Valid() {
		return "", store.NewValidationError("role", "must be user or admin")
	}
	return role, nil
}

// ParseBookForm builds a BookInput from a complete book form. Stock defaults
// to 0 when left blank.
func ParseBookForm(v Values) (store.BookInput, error) {
	in := store.BookInput{}
	in.Title, _ = v.lookup("title")
	in.Author, _ = v.lookup("author")
	in.Image, _ = v.lookup("image")
	in.Description, _ = v.lookup("description")
	in.Category, _ = v.lookup("category")

	if in.Title == "" {
		return in, store.NewValidationError("title", "is required")
	}
	if in.Author == "" {
		return in, store.NewValidationError("author", "is required")
	}

	raw, _ := v.lookup("price")
	price, err := ParsePrice(raw)
	if err != nil {
		return in, err
	}
	in.Price = price

	if raw, ok := v.lookup("stock"); ok && raw != "" {
		stock, err := ParseCount("stock", raw)
		if err != nil {
			return in, err
		}
		in.Stock = stock
	}
	return in, nil
}

// ParseBookPatch builds a BookPatch from the fields present in v. Absent
// fields stay nil.
func ParseBookPatch(v Values) (store.BookPatch, error) {
	var patch store.BookPatch
	text := map[string]**string{
		"title":       &patch.Title,
		"author":      &patch.Author,
		"image":       &patch.Image,
		"description": &patch.Description,
		"category":    &patch.Category,
	}
	for field, dst := range text {
		if raw, ok := v.lookup(field); ok {
			value := raw
			*dst = &value
		}
	}
	if raw, ok := v.lookup("price"); ok {
		price, err := ParsePrice(raw)
		if err != nil {
			return patch, err
		}
		patch.Price = &price
	}
	if raw, ok := v.lookup("stock"); ok {
		stock, err := ParseCount("stock", raw)
		if err != nil {
			return patch, err
		}
		patch.Stock = &stock
	}
	return patch, nil
}

// ParseUserForm builds a UserInput from a user form.
func ParseUserForm(v Values) (store.UserInput, error) {
	in := store.UserInput{}
	in.Name, _ = v.lookup("name")
	in.Email, _ = v.lookup("email")
	in.Phone, _ = v.lookup("phone")
	in.Address, _ = v.lookup("address")

	if in.Name == "" {
		return in, store.NewValidationError("name", "is required")
	}
	if in.Email == "" {
		return in, store.NewValidationError("email", "is required")
	}
	raw, _ := v.lookup("role")
	role, err := ParseRole(raw)
	if err != nil {
		return in, err
	}
	in.Role = role
	return in, nil
}

// ParseUserPatch builds a UserPatch from the fields present in v.
func ParseUserPatch(v Values) (store.UserPatch, error) {
	var patch store.UserPatch
	text := map[string]**string{
		"name":    &patch.Name,
		"email":   &patch.Email,
		"phone":   &patch.Phone,
		"address": &patch.Address,
	}
	for field, dst := range text {
		if raw, ok := v.lookup(field); ok {
			value := raw
			*dst = &value
		}
	}
	if raw, ok := v.lookup("role"); ok {
		if raw == "" {
			return patch, store.NewValidationError("role", "must be user or admin")
		}
		role, err := ParseRole(raw)
		if err != nil {
			return patch, err
		}
		patch.Role = &role
	}
	return patch, nil
}
