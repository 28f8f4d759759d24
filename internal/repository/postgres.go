package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itemledger/itemledger/internal/model"
	"github.com/itemledger/itemledger/migrations"
)

const (
	userColumns = `id, email, full_name, created_at, updated_at`
	itemColumns = `id, title, description, price, owner_id, created_at, updated_at`

	pgUniqueViolation = "23505"
)

// pgQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store on PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStore creates a connection pool and verifies connectivity.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool, now: utcNow}, nil
}

// Migrate applies the embedded schema. Statements are idempotent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	scripts, err := migrations.Up(DriverPostgres)
	if err != nil {
		return err
	}
	for _, script := range scripts {
		if _, err := s.pool.Exec(ctx, script); err != nil {
			return fmt.Errorf("failed to apply migration: %w", err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Pool returns the underlying connection pool.
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func scanItem(row pgx.Row) (*model.Item, error) {
	var it model.Item
	if err := row.Scan(&it.ID, &it.Title, &it.Description, &it.Price, &it.OwnerID, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

func pgListUsers(ctx context.Context, q pgQuerier) ([]model.User, error) {
	rows, err := q.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
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

func pgListItems(ctx context.Context, q pgQuerier, where string, args ...any) ([]model.Item, error) {
	rows, err := q.Query(ctx, `SELECT `+itemColumns+` FROM items `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
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

func pgEmailTaken(ctx context.Context, q pgQuerier, email string, exceptID int64) (bool, error) {
	var taken bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`,
		email, exceptID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return taken, nil
}

// ListUsers returns all users ordered by id.
func (s *PostgresStore) ListUsers(ctx context.Context) ([]model.User, error) {
	return pgListUsers(ctx, s.pool)
}

// GetUser retrieves a user by id.
func (s *PostgresStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// CreateUser inserts a user. The email is checked before the insert so a
// rejected email does not consume an identity value; the unique index backs it up.
func (s *PostgresStore) CreateUser(ctx context.Context, in model.NewUser) (*model.User, error) {
	taken, err := pgEmailTaken(ctx, s.pool, in.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailExists
	}

	u, err := scanUser(s.pool.QueryRow(ctx, `
		INSERT INTO users (email, full_name, created_at)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns,
		in.Email, in.FullName, s.now(),
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// UpdateUser locks the row, applies the patch and writes it back.
func (s *PostgresStore) UpdateUser(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	u, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if patch.EmailChanges(u) {
		taken, err := pgEmailTaken(ctx, tx, *patch.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailExists
		}
	}

	patch.Apply(u, s.now())
	_, err = tx.Exec(ctx,
		`UPDATE users SET email = $2, full_name = $3, updated_at = $4 WHERE id = $1`,
		u.ID, u.Email, u.FullName, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit user update: %w", err)
	}
	return u, nil
}

// DeleteUser removes a user; its items are left untouched.
func (s *PostgresStore) DeleteUser(ctx context.Context, id int64) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListItems returns all items ordered by id.
func (s *PostgresStore) ListItems(ctx context.Context) ([]model.Item, error) {
	return pgListItems(ctx, s.pool, "")
}

// ListItemsByOwner returns the owner's items ordered by id.
func (s *PostgresStore) ListItemsByOwner(ctx context.Context, ownerID int64) ([]model.Item, error) {
	return pgListItems(ctx, s.pool, "WHERE owner_id = $1", ownerID)
}

// GetItem retrieves an item by id.
func (s *PostgresStore) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	it, err := scanItem(s.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return it, nil
}

// CreateItem inserts an item.
func (s *PostgresStore) CreateItem(ctx context.Context, in model.NewItem) (*model.Item, error) {
	it, err := scanItem(s.pool.QueryRow(ctx, `
		INSERT INTO items (title, description, price, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+itemColumns,
		in.Title, in.Description, in.Price, in.OwnerID, s.now(),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return it, nil
}

// UpdateItem locks the row, applies the patch and writes it back.
func (s *PostgresStore) UpdateItem(ctx context.Context, id int64, patch model.ItemPatch) (*model.Item, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	it, err := scanItem(tx.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to load item: %w", err)
	}

	patch.Apply(it, s.now())
	_, err = tx.Exec(ctx,
		`UPDATE items SET title = $2, description = $3, price = $4, updated_at = $5 WHERE id = $1`,
		it.ID, it.Title, it.Description, it.Price, it.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit item update: %w", err)
	}
	return it, nil
}

// DeleteItem removes an item.
func (s *PostgresStore) DeleteItem(ctx context.Context, id int64) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

// Snapshot reads both tables in one repeatable-read, read-only transaction.
func (s *PostgresStore) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer tx.Rollback(ctx)

	users, err := pgListUsers(ctx, tx)
	if err != nil {
		return nil, err
	}
	items, err := pgListItems(ctx, tx, "")
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return newSnapshot(users, items, s.now()), nil
}
