// Package database provides the SQLite persistence behind the storefront.
//
// # Architecture
//
//	database/
//	├── database.go   # Connection setup and migrations
//	├── kv/           # Key-value store backend (one row per collection key)
//	└── audit/        # Activity log storage
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./bookhaven.db")
//
//	store := kv.NewRepository(db.DB, writerID)
//	activity := audit.NewRepository(db.DB)
//
// The kv repository implements kvstore.Store, so the data service never sees
// gorm directly. Every collection is stored as one JSON blob under its key,
// replaced as a whole on each write.
//
// # Interface Implementations
//
//   - kv.Repository: implements kvstore.Store and scheduler.ChangeSource
//   - audit.Repository: backs audit.Service, which implements tasks.AuditEventCleaner
package database
