package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/bookhaven/storefront/internal/audit"
	"github.com/bookhaven/storefront/internal/bindings"
	"github.com/bookhaven/storefront/internal/database/kv"
	"github.com/bookhaven/storefront/internal/kvstore"
	"github.com/bookhaven/storefront/internal/scheduler"
	"github.com/bookhaven/storefront/internal/store"
	"github.com/bookhaven/storefront/internal/tasks"
)

// =============================================================================
// Storage Backends
// =============================================================================

// Store implementations
var _ kvstore.Store = (*kv.Repository)(nil)
var _ kvstore.Store = (*kvstore.Memory)(nil)

// ChangeSource implementations
var _ scheduler.ChangeSource = (*kv.Repository)(nil)

// =============================================================================
// Order Workflow
// =============================================================================

// OrderPlacer implementations
var _ bindings.OrderPlacer = (*store.Service)(nil)
var _ bindings.OrderPlacer = (*audit.Recorder)(nil)
var _ audit.OrderPlacer = (*store.Service)(nil)

// Catalog implementations
var _ bindings.Catalog = (*store.Books)(nil)

// StatisticsSource implementations
var _ bindings.StatisticsSource = (*store.Service)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

// AuditEventCleaner implementations
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

// LowStockNotifier implementations
var _ tasks.LowStockNotifier = (*audit.Service)(nil)

// Enqueuer implementations
var _ tasks.AlertEnqueuer = (*tasks.Client)(nil)
var _ scheduler.CleanupEnqueuer = (*tasks.Client)(nil)
