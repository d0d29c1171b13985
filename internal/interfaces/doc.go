// Package interfaces documents the core abstractions used throughout the application.
//
// This package consolidates interface documentation to help contributors find
// extension points and see how to implement new functionality.
//
// # Interface Categories
//
// ## Storage Interfaces
//
//   - kvstore.Store: raw key-value access behind every repository (internal/kvstore/kvstore.go)
//   - scheduler.ChangeSource: rows written by other processes (internal/scheduler/change_watcher.go)
//
// ## Workflow Interfaces
//
//   - bindings.OrderPlacer / audit.OrderPlacer: the order workflow (internal/store/checkout.go)
//   - bindings.Catalog: live stock lookups for the cart (internal/bindings/bindings.go)
//   - bindings.StatisticsSource: dashboard summary (internal/bindings/mirror.go)
//
// ## Background Task Interfaces
//
//   - tasks.AlertEnqueuer, scheduler.CleanupEnqueuer: queue producers (internal/tasks/client.go)
//   - tasks.LowStockNotifier, tasks.AuditEventCleaner: queue consumers (internal/audit/service.go)
//
// # Adding a New Storage Backend
//
// To keep the storefront somewhere else (e.g., a JSON file):
//
//  1. Implement kvstore.Store:
//
//     type FileStore struct { path string }
//
//     func (s *FileStore) Get(key string) ([]byte, bool, error)
//     func (s *FileStore) Set(key string, value []byte) error
//     func (s *FileStore) Remove(key string) error
//
//     var _ kvstore.Store = (*FileStore)(nil)
//
//  2. Select it in entrypoint.Open based on STORE_BACKEND.
//
// # Adding a New Background Task
//
//  1. Define the task type with a Config() method in internal/tasks/
//
//  2. Register its queue in entrypoint.Open
//
//  3. Expose an Enqueue method on tasks.Client and a narrow interface for callers
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
