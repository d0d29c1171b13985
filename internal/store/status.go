package store

import (
	"fmt"
	"strings"

	"github.com/bookhaven/storefront/internal/entities"
)

// StatusPolicy decides which order status changes are allowed.
type StatusPolicy string

const (
	// StatusPolicyPermissive allows any known status from any status.
	StatusPolicyPermissive StatusPolicy = "permissive"
	// StatusPolicyStrict follows pending→processing→shipped→delivered, with
	// cancellation from pending or processing only.
	StatusPolicyStrict StatusPolicy = "strict"
)

var strictTransitions = map[entities.OrderStatus][]entities.OrderStatus{
	entities.OrderStatusPending:    {entities.OrderStatusProcessing, entities.OrderStatusCancelled},
	entities.OrderStatusProcessing: {entities.OrderStatusShipped, entities.OrderStatusCancelled},
	entities.OrderStatusShipped:    {entities.OrderStatusDelivered},
}

// ParseStatusPolicy converts a configuration value. Empty means permissive.
func ParseStatusPolicy(value string) (StatusPolicy, error) {
	switch StatusPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", StatusPolicyPermissive:
		return StatusPolicyPermissive, nil
	case StatusPolicyStrict:
		return StatusPolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown order status policy %q", value)
	}
}

// Check returns nil when the policy allows moving from one status to another.
// Unknown target statuses are always rejected.
func (p StatusPolicy) Check(from, to entities.OrderStatus) error {
	if !to.Valid() {
		return NewValidationError("status", fmt.Sprintf("unknown status %q", to))
	}
	if p != StatusPolicyStrict || from == to {
		return nil
	}
	for _, next := range strictTransitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
}
