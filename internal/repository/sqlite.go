package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/itemledger/itemledger/internal/model"
	"github.com/itemledger/itemledger/migrations"
)

// sqlQuerier is satisfied by both *sql.DB and *sql.Tx.
type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// SQLiteStore implements Store on an embedded SQLite database.
// A single connection serializes access, which also makes ":memory:" usable.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens the database at path (or ":memory:").
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return &SQLiteStore{db: db, now: utcNow}, nil
}

func sqliteDSN(path string) string {
	if path == ":memory:" || strings.Contains(path, "?") {
		return path
	}
	return "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL"
}

// Migrate applies the embedded schema.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	scripts, err := migrations.Up(DriverSQLite)
	if err != nil {
		return err
	}
	for _, script := range scripts {
		if _, err := s.db.ExecContext(ctx, script); err != nil {
			return fmt.Errorf("failed to apply migration: %w", err)
		}
	}
	return nil
}

// Ping checks the database handle.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func sqliteScanUser(row rowScanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func sqliteScanItem(row rowScanner) (*model.Item, error) {
	var it model.Item
	if err := row.Scan(&it.ID, &it.Title, &it.Description, &it.Price, &it.OwnerID, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

func sqliteListUsers(ctx context.Context, q sqlQuerier) ([]model.User, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := sqliteScanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

func sqliteListItems(ctx context.Context, q sqlQuerier, where string, args ...any) ([]model.Item, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+itemColumns+` FROM items `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		it, err := sqliteScanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

func sqliteEmailTaken(ctx context.Context, q sqlQuerier, email string, exceptID int64) (bool, error) {
	var taken bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = ? AND id <> ?)`,
		email, exceptID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return taken, nil
}

// ListUsers returns all users ordered by id.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]model.User, error) {
	return sqliteListUsers(ctx, s.db)
}

// GetUser retrieves a user by id.
func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	u, err := sqliteScanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// CreateUser inserts a user inside a transaction that first checks the email.
func (s *SQLiteStore) CreateUser(ctx context.Context, in model.NewUser) (*model.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	taken, err := sqliteEmailTaken(ctx, tx, in.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailExists
	}

	u := model.User{Email: in.Email, FullName: in.FullName, CreatedAt: s.now()}
	result, err := tx.ExecContext(ctx,
		`INSERT INTO users (email, full_name, created_at) VALUES (?, ?, ?)`,
		u.Email, u.FullName, u.CreatedAt,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if u.ID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to read user id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit user: %w", err)
	}
	return &u, nil
}

// UpdateUser applies the patch inside a transaction.
func (s *SQLiteStore) UpdateUser(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	u, err := sqliteScanUser(tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if patch.EmailChanges(u) {
		taken, err := sqliteEmailTaken(ctx, tx, *patch.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailExists
		}
	}

	patch.Apply(u, s.now())
	_, err = tx.ExecContext(ctx,
		`UPDATE users SET email = ?, full_name = ?, updated_at = ? WHERE id = ?`,
		u.Email, u.FullName, u.UpdatedAt, u.ID,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit user update: %w", err)
	}
	return u, nil
}

// DeleteUser removes a user; its items are left untouched.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, `DELETE FROM users WHERE id = ?`, id, ErrUserNotFound)
}

// ListItems returns all items ordered by id.
func (s *SQLiteStore) ListItems(ctx context.Context) ([]model.Item, error) {
	return sqliteListItems(ctx, s.db, "")
}

// ListItemsByOwner returns the owner's items ordered by id.
func (s *SQLiteStore) ListItemsByOwner(ctx context.Context, ownerID int64) ([]model.Item, error) {
	return sqliteListItems(ctx, s.db, "WHERE owner_id = ?", ownerID)
}

// GetItem retrieves an item by id.
func (s *SQLiteStore) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	it, err := sqliteScanItem(s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return it, nil
}

// CreateItem inserts an item.
func (s *SQLiteStore) CreateItem(ctx context.Context, in model.NewItem) (*model.Item, error) {
	it := model.Item{
		Title:     in.Title,
		Price:     in.Price,
		OwnerID:   in.OwnerID,
		CreatedAt: s.now(),
	}
	if in.Description != nil {
		desc := *in.Description
		it.Description = &desc
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO items (title, description, price, owner_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		it.Title, it.Description, it.Price, it.OwnerID, it.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	if it.ID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to read item id: %w", err)
	}
	return &it, nil
}

// UpdateItem applies the patch inside a transaction.
func (s *SQLiteStore) UpdateItem(ctx context.Context, id int64, patch model.ItemPatch) (*model.Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	it, err := sqliteScanItem(tx.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to load item: %w", err)
	}

	patch.Apply(it, s.now())
	_, err = tx.ExecContext(ctx,
		`UPDATE items SET title = ?, description = ?, price = ?, updated_at = ? WHERE id = ?`,
		it.Title, it.Description, it.Price, it.UpdatedAt, it.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit item update: %w", err)
	}
	return it, nil
}

// DeleteItem removes an item.
func (s *SQLiteStore) DeleteItem(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, `DELETE FROM items WHERE id = ?`, id, ErrItemNotFound)
}

func (s *SQLiteStore) deleteByID(ctx context.Context, query string, id int64, notFound error) error {
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// Snapshot reads both tables inside one transaction.
func (s *SQLiteStore) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer tx.Rollback()

	users, err := sqliteListUsers(ctx, tx)
	if err != nil {
		return nil, err
	}
	items, err := sqliteListItems(ctx, tx, "")
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return newSnapshot(users, items, s.now()), nil
}
