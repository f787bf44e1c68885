package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/auth"
	"github.com/frahmantamala/budget-ledger/internal/budget"
	budgetPostgres "github.com/frahmantamala/budget-ledger/internal/budget/postgres"
	"github.com/frahmantamala/budget-ledger/internal/category"
	categoryPostgres "github.com/frahmantamala/budget-ledger/internal/category/postgres"
	"github.com/frahmantamala/budget-ledger/internal/core/calendar"
	"github.com/frahmantamala/budget-ledger/internal/core/events"
	"github.com/frahmantamala/budget-ledger/internal/expense"
	expensePostgres "github.com/frahmantamala/budget-ledger/internal/expense/postgres"
	"github.com/frahmantamala/budget-ledger/internal/notify"
	"github.com/frahmantamala/budget-ledger/internal/scheduler"
	"github.com/frahmantamala/budget-ledger/internal/user"
	userPostgres "github.com/frahmantamala/budget-ledger/internal/user/postgres"
	"github.com/frahmantamala/budget-ledger/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Dependencies is the wired application shared by every command.
type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Logger *slog.Logger
	Clock  calendar.Clock
	Bus    *events.EventBus

	Notifier    *notify.AMQPPublisher
	Revocations *auth.Revocations

	Ledger     *budget.Ledger
	Categories *category.Service
	Users      *user.Service
	Expenses   *expense.Service
	Auth       *auth.Service
	Sweeper    *scheduler.Sweeper

	closeOnce sync.Once
}

func initializeDependencies() (*Dependencies, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.L()

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db, cfg.Environment)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	loc, err := cfg.Ledger.Location()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	maximum, err := cfg.Ledger.MaximumBudget()
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	deps := &Dependencies{
		Config: cfg,
		DB:     db,
		Gorm:   gdb,
		Logger: lg,
		Clock:  calendar.SystemClock{Location: loc},
		Bus:    events.NewEventBus(lg),
	}

	if cfg.Messaging.Enabled() {
		pub, err := notify.Dial(cfg.Messaging.AMQPURL, cfg.Messaging.Exchange, cfg.Messaging.RoutingKey, lg)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to connect to broker: %w", err)
		}
		pub.Subscribe(deps.Bus)
		deps.Notifier = pub
	}

	cache, err := category.NewCache(cfg.Cache.NumCounters, cfg.Cache.MaxCost, cfg.Cache.TTL)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to create category cache: %w", err)
	}
	deps.Categories = category.NewService(categoryPostgres.NewCategoryRepository(gdb), cache, lg)

	deps.Ledger = budget.NewLedger(budgetPostgres.NewBudgetRepository(gdb), deps.Bus, lg)
	deps.Users = user.NewService(userPostgres.NewUserRepository(gdb), user.AccountDefaults{
		MaximumBudget: maximum,
		Currency:      cfg.Ledger.DefaultCurrency,
	}, lg)
	deps.Expenses = expense.NewService(expensePostgres.NewExpenseRepository(gdb), deps.Categories, deps.Ledger, lg)

	revocations, err := auth.NewRevocations(cfg.Cache.NumCounters, cfg.Cache.MaxCost)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to create revocation list: %w", err)
	}
	deps.Revocations = revocations
	sec := cfg.Security
	deps.Auth = auth.NewService(deps.Users,
		auth.NewJWTTokenGenerator(sec.AccessTokenSecret, sec.RefreshTokenSecret, sec.AccessTokenDuration, sec.RefreshTokenDuration),
		revocations, sec.BCryptCost, lg)

	deps.Sweeper = scheduler.NewSweeper(userPostgres.NewIDPager(db), deps.Ledger, scheduler.Config{
		MaxWorkers:  cfg.Scheduler.MaxWorkers,
		UserTimeout: cfg.Scheduler.UserTimeout,
		PageSize:    cfg.Scheduler.PageSize,
	}, lg)

	return deps, nil
}

const drainTimeout = 5 * time.Second

// Close drains pending event deliveries and releases every connection.
// Safe to call more than once.
func (d *Dependencies) Close() {
	d.closeOnce.Do(d.close)
}

func (d *Dependencies) close() {
	if d.Bus != nil {
		ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		if err := d.Bus.Wait(ctx); err != nil {
			d.Logger.Warn("pending events not delivered before shutdown", "error", err)
		}
		cancel()
	}
	if d.Revocations != nil {
		d.Revocations.Close()
	}
	if d.Notifier != nil {
		if err := d.Notifier.Close(); err != nil {
			d.Logger.Error("broker close error", "error", err)
		}
	}
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			d.Logger.Error("database close error", "error", err)
		}
	}
}

// initDB opens the pgx-backed process connection pool.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Open(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers gorm over the existing pool so both share connections.
func initGorm(db *sqlx.DB, env string) (*gorm.DB, error) {
	level := gormLogger.Warn
	if env == "development" {
		level = gormLogger.Info
	}
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(level),
	})
}
