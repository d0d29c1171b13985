package store

import (
	"strings"

	"github.com/bookhaven/storefront/internal/entities"
)

// Buyer identifies who places an order.
type Buyer struct {
	ID    string
	Name  string
	Email string
}

// GuestBuyer is used when checkout happens without a current user.
var GuestBuyer = Buyer{ID: "guest", Name: "Guest User", Email: "guest@example.com"}

// BuyerFromUser copies the identity fields of u.
func BuyerFromUser(u entities.User) Buyer {
	return Buyer{ID: u.ID, Name: u.Name, Email: u.Email}
}

// OrderInput describes an order. Total is always derived from Items.
type OrderInput struct {
	Buyer           Buyer
	Items           []entities.OrderItem
	ShippingAddress string
}

func (in OrderInput) validate() error {
	if len(in.Items) == 0 {
		return NewValidationError("items", "order has no items")
	}
	for _, item := range in.Items {
		if strings.TrimSpace(item.BookID) == "" {
			return NewValidationError("items", "item without book id")
		}
		if item.Quantity < 1 {
			return NewValidationError("quantity", "must be at least 1 for "+item.Title)
		}
		if item.Price.IsNegative() {
			return NewValidationError("price", "must not be negative for "+item.Title)
		}
	}
	return nil
}

// OrderPatch is a partial update. Nil fields keep their current value;
// replacing Items recomputes the total.
type OrderPatch struct {
	Status          *entities.OrderStatus
	ShippingAddress *string
	Items           []entities.OrderItem
}

// Orders is the order repository.
type Orders struct {
	c collection[entities.Order]
}

func (r *Orders) newOrder(in OrderInput) entities.Order {
	now := r.c.svc.timestamp()
	items := make([]entities.OrderItem, len(in.Items))
	copy(items, in.Items)
	return entities.Order{
		ID:              r.c.svc.newID(),
		UserID:          in.Buyer.ID,
		UserName:        in.Buyer.Name,
		UserEmail:       in.Buyer.Email,
		Items:           items,
		Total:           entities.SumItems(items),
		Status:          entities.OrderStatusPending,
		ShippingAddress: in.ShippingAddress,
		Date:            now.Format(dateLayout),
		CreatedAt:       now,
	}
}

func (r *Orders) All() ([]entities.Order, error) {
	return r.c.all()
}

func (r *Orders) Get(id string) (entities.Order, bool, error) {
	return r.c.get(id)
}

// Add records a pending order without touching the catalog. Checkout goes
// through Service.CreateOrder instead.
func (r *Orders) Add(in OrderInput) (entities.Order, error) {
	if err := in.validate(); err != nil {
		return entities.Order{}, err
	}
	order := r.newOrder(in)
	if err := r.c.add(order); err != nil {
		return entities.Order{}, err
	}
	return order, nil
}

func (r *Orders) Update(id string, patch OrderPatch) (entities.Order, bool, error) {
	policy := r.c.svc.policy
	return r.c.update(id, func(o entities.Order) (entities.Order, error) {
		if patch.Status != nil {
			if err := policy.Check(o.Status, *patch.Status); err != nil {
				return o, err
			}
			o.Status = *patch.Status
		}
		if patch.ShippingAddress != nil {
			o.ShippingAddress = *patch.ShippingAddress
		}
		if patch.Items != nil {
			if err := (OrderInput{Items: patch.Items}).validate(); err != nil {
				return o, err
			}
			o.Items = append([]entities.OrderItem(nil), patch.Items...)
			o.Total = entities.SumItems(o.Items)
		}
		return o, nil
	})
}

// UpdateStatus sets the status of an order subject to the status policy.
func (r *Orders) UpdateStatus(id string, status entities.OrderStatus) (entities.Order, bool, error) {
	return r.Update(id, OrderPatch{Status: &status})
}

func (r *Orders) Delete(id string) (bool, error) {
	return r.c.delete(id)
}

// ByUser returns the orders placed by userID in insertion order.
func (r *Orders) ByUser(userID string) ([]entities.Order, error) {
	return r.c.filter(func(o entities.Order) bool {
		return o.UserID == userID
	})
}
