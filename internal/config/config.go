package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Store
		Checkout
		Watch
		Audit
		Global
		Database
		Tasks
	}

	Store struct {
		Backend           string // "sqlite" (default) or "memory"
		SeedCatalog       bool
		SeedAdmin         bool
		LowStockThreshold int
		RecentOrdersLimit int
	}
	Checkout struct {
		ShippingFee       decimal.Decimal
		OrderStatusPolicy string // "permissive" or "strict"
	}
	Watch struct {
		Schedule string // Cron format or descriptor, e.g. "@every 5s"
	}
	Audit struct {
		Enabled         bool
		RetentionDays   int    // Days to keep audit events (default: 30)
		CleanupSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
)

// ShutdownTimeout returns the configured graceful shutdown window.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Global.ShutdownTimeoutInSeconds) * time.Second
}

// Validate reports settings that would make the storefront misbehave.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	if c.Store.Backend == BackendSQLite && c.Database.Path == "" {
		return fmt.Errorf("DATABASE_PATH is required for the sqlite backend")
	}
	if c.Checkout.ShippingFee.IsNegative() {
		return fmt.Errorf("SHIPPING_FEE must not be negative")
	}
	if c.Store.LowStockThreshold < 0 {
		return fmt.Errorf("LOW_STOCK_THRESHOLD must not be negative")
	}
	return nil
}

// shippingFee parses SHIPPING_FEE, falling back to the default for values
// that are not decimal numbers.
func shippingFee(v *viper.Viper) decimal.Decimal {
	fee, err := decimal.NewFromString(v.GetString("SHIPPING_FEE"))
	if err != nil {
		return decimal.RequireFromString(DefaultShippingFee)
	}
	return fee
}

// DefaultShippingFee is the flat shipping charge added to non-empty carts.
const DefaultShippingFee = "5.99"

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("store_backend", BackendSQLite)
	v.SetDefault("seed_catalog", true)
	v.SetDefault("seed_admin", true)
	v.SetDefault("low_stock_threshold", 10)
	v.SetDefault("recent_orders_limit", 5)
	v.SetDefault("shipping_fee", DefaultShippingFee)
	v.SetDefault("order_status_policy", "permissive")
	v.SetDefault("watch_schedule", "@every 5s")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("audit_enabled", true)
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_schedule", "0 3 * * *") // Daily at 03:00

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		Store: Store{
			Backend:           v.GetString("STORE_BACKEND"),
			SeedCatalog:       v.GetBool("SEED_CATALOG"),
			SeedAdmin:         v.GetBool("SEED_ADMIN"),
			LowStockThreshold: v.GetInt("LOW_STOCK_THRESHOLD"),
			RecentOrdersLimit: v.GetInt("RECENT_ORDERS_LIMIT"),
		},
		Checkout: Checkout{
			ShippingFee:       shippingFee(v),
			OrderStatusPolicy: v.GetString("ORDER_STATUS_POLICY"),
		},
		Watch: Watch{
			Schedule: v.GetString("WATCH_SCHEDULE"),
		},
		Audit: Audit{
			Enabled:         v.GetBool("AUDIT_ENABLED"),
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
	}
}
