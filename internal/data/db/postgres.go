// Package db owns the store's connection lifecycle: an explicit object
// initialized at process start and closed at shutdown (spec §9's
// re-architecture of the source's ambient process-wide pool), not a
// package-level singleton.
package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	berrors "github.com/bridgeos/bridgeos/internal/pkg/errors"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

// PoolConfig bounds the underlying *sql.DB pool (spec §4.1, §5: default
// min=5, max=20; acquisition blocks up to AcquireTimeout then yields
// PoolExhausted rather than waiting indefinitely).
type PoolConfig struct {
	MinConns        int
	MaxConns        int
	AcquireTimeout  time.Duration
	ConnMaxLifetime time.Duration
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MinConns:        5,
		MaxConns:        20,
		AcquireTimeout:  5 * time.Second,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// Service is the store's lifecycle handle: own it, pass it down, Close it.
type Service struct {
	db   *gorm.DB
	log  *logger.Logger
	pool chan struct{} // bounded semaphore gating concurrent units of work
	cfg  PoolConfig
}

// Open connects to Postgres, enables the required extensions, and
// configures the bounded connection pool. It does not migrate — call
// AutoMigrateAll/EnsurePartialIndexes explicitly so tests can open a
// Service against a pre-migrated schema.
func Open(dsn string, cfg PoolConfig, log *logger.Logger) (*Service, error) {
	if cfg.MaxConns <= 0 {
		cfg = DefaultPoolConfig()
	}
	serviceLog := log.With("service", "db.Service")

	gormLog := gormLogger.New(
		log0(),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConns)
	sqlDB.SetMaxIdleConns(cfg.MinConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`).Error; err != nil {
		return nil, fmt.Errorf("enable pgcrypto extension: %w", err)
	}

	return &Service{
		db:   gdb,
		log:  serviceLog,
		pool: make(chan struct{}, cfg.MaxConns),
		cfg:  cfg,
	}, nil
}

func log0() *log.Logger { return log.New(os.Stdout, "\r\n", log.LstdFlags) }

// DB returns the raw *gorm.DB, bypassing the bounded semaphore. app wires
// this handle into every repo and service, so their reads and writes wait
// only on database/sql's own pool (bounded by their context) and never
// return PoolExhausted; only WithTx applies the acquisition deadline.
func (s *Service) DB() *gorm.DB { return s.db }

// acquire reserves a pool slot, returning PoolExhausted if ctx's deadline
// (or cfg.AcquireTimeout, whichever is tighter) elapses first.
func (s *Service) acquire(ctx context.Context) (func(), error) {
	timeout := s.cfg.AcquireTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	acquireCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case s.pool <- struct{}{}:
		return func() { <-s.pool }, nil
	case <-acquireCtx.Done():
		return nil, berrors.New(berrors.CodePoolExhausted, "db.acquire", "connection pool exhausted")
	}
}

// WithTx is the unit-of-work abstraction of spec §4.1: runs fn in a
// READ COMMITTED transaction, auto-commits on nil return, auto-rolls-back
// otherwise, and always releases the pool slot it acquired.
func (s *Service) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	return s.db.WithContext(ctx).Transaction(fn)
}

// Close drains the pool and releases the underlying connection.
func (s *Service) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
