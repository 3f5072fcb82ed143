package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func configurePool(sqlDB *sql.DB) {
	const (
		maxOpenConns    = 20
		maxIdleConns    = 10
		connMaxLifetime = 30 * time.Minute
		connMaxIdleTime = 5 * time.Minute
	)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
}

func gormConfig(prepare bool) *gorm.Config {
	return &gorm.Config{
		PrepareStmt:    prepare,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

// Connect opens the database for the given driver name ("postgres" or "sqlite").
func Connect(ctx context.Context, driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case "postgres", "":
		return Open(ctx, dsn)
	case "sqlite":
		return OpenSQLite(ctx, dsn)
	default:
		return nil, fmt.Errorf("неизвестный драйвер БД: %q", driver)
	}
}

func Open(ctx context.Context, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig(true))
	if err != nil {
		return nil, fmt.Errorf("подключение к БД: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("получение sql.DB: %w", err)
	}
	configurePool(sqlDB)

	if err := ping(ctx, sqlDB); err != nil {
		return nil, err
	}

	return db, nil
}

// OpenSQLite is used for local runs and tests. SQLite allows a single writer,
// so the pool is pinned to one connection; this also keeps ":memory:" databases
// from splitting across connections.
func OpenSQLite(ctx context.Context, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(false))
	if err != nil {
		return nil, fmt.Errorf("подключение к БД: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("получение sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := ping(ctx, sqlDB); err != nil {
		return nil, err
	}

	return db, nil
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("получение sql.DB: %w", err)
	}
	return ping(ctx, sqlDB)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("получение sql.DB: %w", err)
	}
	return sqlDB.Close()
}

func ping(ctx context.Context, sqlDB *sql.DB) error {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping БД: %w", err)
	}
	return nil
}
