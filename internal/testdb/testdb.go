// Package testdb opens migrated databases for package tests.
package testdb

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/pkg/db"
)

const PostgresEnv = "SHOP_TEST_DATABASE_URL"

// SQLite returns a fresh in-memory database with every model migrated.
func SQLite(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := db.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(models.All()...))

	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

// Postgres connects to SHOP_TEST_DATABASE_URL or skips the test.
func Postgres(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := os.Getenv(PostgresEnv)
	if dsn == "" {
		t.Skip(PostgresEnv + " is required for tests")
	}

	gdb, err := db.Open(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(models.All()...))

	Truncate(t, gdb)
	t.Cleanup(func() {
		Truncate(t, gdb)
		_ = db.Close(gdb)
	})
	return gdb
}

func Truncate(t testing.TB, gdb *gorm.DB) {
	t.Helper()

	tables := []string{"order_items", "orders", "cart_items", "products", "categories", "revoked_tokens", "users"}
	quoted := make([]string, len(tables))
	for i, tbl := range tables {
		quoted[i] = pq.QuoteIdentifier(tbl)
	}
	require.NoError(t, gdb.Exec("TRUNCATE TABLE "+strings.Join(quoted, ", ")+" RESTART IDENTITY CASCADE").Error)
}
