package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the storefront database
	DefaultDatabasePath = "./bookhaven.db"
)

// Storage backends accepted by STORE_BACKEND.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)
