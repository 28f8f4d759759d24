// Package testutil holds helpers shared by package tests and integration tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/itemledger/itemledger/internal/model"
	"github.com/itemledger/itemledger/migrations"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 731_001

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops and recreates every PostgreSQL table, restarting identity sequences.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	down, err := migrations.Down("postgres")
	if err != nil {
		return err
	}
	for _, script := range down {
		if _, err := pool.Exec(ctx, script); err != nil {
			return fmt.Errorf("apply down migration: %w", err)
		}
	}

	up, err := migrations.Up("postgres")
	if err != nil {
		return err
	}
	for _, script := range up {
		if _, err := pool.Exec(ctx, script); err != nil {
			return fmt.Errorf("apply up migration: %w", err)
		}
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(filename), "..", "..")), nil
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ============================================================================
// Test Data Factories
// ============================================================================

var seq atomic.Int64

// UniqueEmail generates an email address that no other call returns.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, seq.Add(1))
}

// NewTestUser returns valid create input with a unique email.
func NewTestUser(t testing.TB) model.NewUser {
	t.Helper()
	return model.NewUser{Email: UniqueEmail("user"), FullName: "Test User"}
}

// NewTestItem returns valid create input for ownerID.
func NewTestItem(t testing.TB, ownerID int64, price float64) model.NewItem {
	t.Helper()
	return model.NewItem{Title: fmt.Sprintf("Item %.2f", price), Price: price, OwnerID: ownerID}
}
