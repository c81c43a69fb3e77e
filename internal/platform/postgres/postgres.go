package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Apurer/go-sheet-storefront/internal/platform/migrations"
)

// PoolConfig bounds the connection pool. Zero values keep database/sql defaults.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Connect opens a PostgreSQL connection via GORM and verifies connectivity.
func Connect(ctx context.Context, dsn string, pool PoolConfig) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres DSN is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Open connects, applies the storefront schema and returns the DB with a
// cleanup function. Callers decide whether a failure is fatal.
func Open(ctx context.Context, dsn string, pool PoolConfig, logger *slog.Logger) (*gorm.DB, func(), error) {
	db, err := Connect(ctx, dsn, pool)
	if err != nil {
		return nil, func() {}, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, func() {}, fmt.Errorf("unwrap postgres connection: %w", err)
	}
	cleanup := func() { _ = sqlDB.Close() }
	if err := migrations.Run(db); err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("migrate postgres: %w", err)
	}
	if logger != nil {
		logger.Info("postgres connection established")
	}
	return db, cleanup, nil
}
