package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/bookhaven/storefront/internal/audit"
	"github.com/bookhaven/storefront/internal/bindings"
	"github.com/bookhaven/storefront/internal/config"
	"github.com/bookhaven/storefront/internal/database"
	auditrepo "github.com/bookhaven/storefront/internal/database/audit"
	"github.com/bookhaven/storefront/internal/database/kv"
	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/events"
	"github.com/bookhaven/storefront/internal/kvstore"
	"github.com/bookhaven/storefront/internal/scheduler"
	"github.com/bookhaven/storefront/internal/store"
	"github.com/bookhaven/storefront/internal/tasks"
)

// App holds every component of a running storefront.
type App struct {
	cfg *config.Config

	db     *database.Database
	kvRepo *kv.Repository

	KV    kvstore.Store
	Bus   *events.Bus
	Store *store.Service

	// Audit is nil when AUDIT_ENABLED is false or the memory backend is used.
	Audit    *audit.Service
	recorder *audit.Recorder

	Cart       *bindings.Cart
	Bookmarks  *bindings.Bookmarks
	Books      *bindings.Mirror[entities.Book]
	Users      *bindings.Mirror[entities.User]
	Orders     *bindings.Mirror[entities.Order]
	Statistics *bindings.StatisticsMirror

	// Tasks is nil when TASKS_ENABLED is false or the memory backend is used.
	Tasks   *tasks.Client
	monitor *tasks.LowStockMonitor

	watcher *scheduler.ChangeWatcher
	cleanup *scheduler.AuditCleanupScheduler
}

// Open builds the storefront described by cfg. Call Close when done.
func Open(cfg *config.Config) (app *App, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, err := store.ParseStatusPolicy(cfg.Checkout.OrderStatusPolicy)
	if err != nil {
		return nil, err
	}

	app = &App{cfg: cfg, Bus: events.NewBus()}
	defer func() {
		if err != nil {
			app.Close()
			app = nil
		}
	}()

	persistent := cfg.Store.Backend == config.BackendSQLite
	if persistent {
		app.db, err = database.NewDatabase(cfg.Database.Path)
		if err != nil {
			return app, fmt.Errorf("failed to initialize database: %w", err)
		}
		app.kvRepo = kv.NewRepository(app.db.DB, uuid.NewString())
		app.KV = app.kvRepo
	} else {
		log.Printf("Using in-memory store, nothing will be persisted")
		app.KV = kvstore.NewMemory()
	}

	app.Store = store.NewService(app.KV, app.Bus,
		store.WithStatusPolicy(policy),
		store.WithLowStockThreshold(cfg.Store.LowStockThreshold),
		store.WithRecentOrdersLimit(cfg.Store.RecentOrdersLimit),
	)
	if err = app.Store.Initialize(store.InitOptions{
		SeedCatalog: cfg.Store.SeedCatalog,
		SeedAdmin:   cfg.Store.SeedAdmin,
	}); err != nil {
		return app, fmt.Errorf("failed to initialize store: %w", err)
	}

	var orders bindings.OrderPlacer = app.Store
	if persistent && cfg.Audit.Enabled {
		app.Audit = audit.NewService(auditrepo.NewRepository(app.db.DB))
		app.recorder = audit.NewRecorder(app.Audit, app.Bus, app.Store)
		orders = app.recorder
	}

	if app.Cart, err = bindings.NewCart(app.KV, app.Store.Books, orders, cfg.Checkout.ShippingFee); err != nil {
		return app, err
	}
	if app.Bookmarks, err = bindings.NewBookmarks(app.KV); err != nil {
		return app, err
	}
	if app.Books, err = bindings.NewMirror(app.Store.Books.All, app.Bus.Books); err != nil {
		return app, err
	}
	if app.Users, err = bindings.NewMirror(app.Store.Users.All, app.Bus.Users); err != nil {
		return app, err
	}
	if app.Orders, err = bindings.NewMirror(app.Store.Orders.All, app.Bus.Orders); err != nil {
		return app, err
	}
	if app.Statistics, err = bindings.NewStatisticsMirror(app.Store, app.Bus); err != nil {
		return app, err
	}

	if persistent && cfg.Tasks.Enabled {
		if err = app.openTasks(); err != nil {
			return app, err
		}
	}
	if persistent {
		app.watcher = scheduler.NewChangeWatcher(app.kvRepo, app.Bus, cfg.Watch.Schedule)
	}

	return app, nil
}

func (a *App) openTasks() error {
	client, err := tasks.NewClient(a.cfg.Database.Path, tasks.Config{
		Workers:         a.cfg.Tasks.Workers,
		ReleaseAfter:    a.cfg.Tasks.ReleaseAfter,
		CleanupInterval: a.cfg.Tasks.CleanupInterval,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize task queue: %w", err)
	}
	a.Tasks = client

	var notifier tasks.LowStockNotifier
	if a.Audit != nil {
		notifier = a.Audit
	}
	client.Register(tasks.NewLowStockAlertQueue(notifier))
	if a.Audit != nil {
		client.Register(tasks.NewCleanupAuditEventsQueue(a.Audit))
		a.cleanup = scheduler.NewAuditCleanupScheduler(client, a.cfg.Audit.CleanupSchedule, a.cfg.Audit.RetentionDays)
	}

	current, err := a.Store.Books.All()
	if err != nil {
		return err
	}
	a.monitor = tasks.NewLowStockMonitor(client, a.cfg.Store.LowStockThreshold, current, a.Bus)
	return nil
}

// Watch runs the background workers until ctx ends: task queue workers, the
// cross-process change watcher and the audit cleanup schedule.
func (a *App) Watch(ctx context.Context) error {
	if a.Tasks != nil {
		go a.Tasks.Start(ctx)
	}
	if a.watcher != nil {
		if err := a.watcher.Start(ctx); err != nil {
			return err
		}
	}
	if a.cleanup != nil {
		if err := a.cleanup.Start(ctx); err != nil {
			return err
		}
	}

	<-ctx.Done()
	log.Printf("Stopping background workers, waiting %v", a.cfg.ShutdownTimeout())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
	defer cancel()
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.cleanup != nil {
		a.cleanup.Stop()
	}
	if a.Tasks != nil {
		a.Tasks.Stop(shutdownCtx)
	}
	return nil
}

// Close releases everything Open acquired, in reverse order.
func (a *App) Close() error {
	var errs []error

	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.cleanup != nil {
		a.cleanup.Stop()
	}
	if a.monitor != nil {
		a.monitor.Close()
	}
	if a.Tasks != nil {
		if err := a.Tasks.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close task client: %w", err))
		}
	}
	if a.Statistics != nil {
		a.Statistics.Close()
	}
	if a.Orders != nil {
		a.Orders.Close()
	}
	if a.Users != nil {
		a.Users.Close()
	}
	if a.Books != nil {
		a.Books.Close()
	}
	if a.recorder != nil {
		a.recorder.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
