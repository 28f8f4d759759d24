// Package repository provides the storage layer for users and items.
//
// Three drivers implement Store: an in-process memory store, PostgreSQL (pgx)
// and SQLite (go-sqlite3). All of them keep records in insertion order, never
// reuse ids and enforce email uniqueness among existing users.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/itemledger/itemledger/internal/model"
)

// Supported drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Common errors for repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrItemNotFound = errors.New("item not found")
	ErrEmailExists  = errors.New("email already exists")
)

// UserStore is the user collection.
type UserStore interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	CreateUser(ctx context.Context, in model.NewUser) (*model.User, error)
	UpdateUser(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// ItemStore is the item collection.
type ItemStore interface {
	ListItems(ctx context.Context) ([]model.Item, error)
	ListItemsByOwner(ctx context.Context, ownerID int64) ([]model.Item, error)
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	CreateItem(ctx context.Context, in model.NewItem) (*model.Item, error)
	UpdateItem(ctx context.Context, id int64, patch model.ItemPatch) (*model.Item, error)
	DeleteItem(ctx context.Context, id int64) error
}

// Store combines both collections with a consistent cross-collection read.
type Store interface {
	UserStore
	ItemStore

	// Snapshot copies users and items as of a single instant.
	Snapshot(ctx context.Context) (*model.Snapshot, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open constructs the store for driver. SQL drivers apply migrations when migrate is set.
func Open(ctx context.Context, driver, dsn string, migrate bool) (Store, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverPostgres:
		store, err := NewPostgresStore(ctx, dsn)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := store.Migrate(ctx); err != nil {
				store.Close()
				return nil, err
			}
		}
		return store, nil
	case DriverSQLite:
		store, err := NewSQLiteStore(ctx, dsn)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := store.Migrate(ctx); err != nil {
				store.Close()
				return nil, err
			}
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
}

func newSnapshot(users []model.User, items []model.Item, takenAt time.Time) *model.Snapshot {
	if users == nil {
		users = []model.User{}
	}
	if items == nil {
		items = []model.Item{}
	}
	return &model.Snapshot{
		ID:      ulid.Make().String(),
		TakenAt: takenAt,
		Users:   users,
		Items:   items,
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}
