package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"fintrack/internal/core"
)

var _ Store = (*SQLiteRepository)(nil)

// SQLiteRepository implements Store on SQLite. One instance is created at
// process start and closed at shutdown; it is safe for concurrent use.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// isUniqueViolation detects UNIQUE constraint failures from the pure Go
// sqlite driver, which exposes them only through the error text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// --- users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, username, passwordHash string) (*core.User, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (username, password_hash) VALUES (?, ?)",
		username, passwordHash,
	)
	if isUniqueViolation(err) {
		return nil, core.ErrDuplicateUsername
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user insert id: %w", err)
	}
	return r.GetUserByID(ctx, id)
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id int64) (*core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM users WHERE id = ?", id))
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (*core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM users WHERE username = ?", username))
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (*core.User, error) {
	u := &core.User{}
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// --- categories ---

func (r *SQLiteRepository) CreateCategory(ctx context.Context, name string, kind core.Kind) (*core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (name, kind) VALUES (?, ?)",
		name, string(kind),
	)
	if isUniqueViolation(err) {
		return nil, core.ErrDuplicateCategory
	}
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("category insert id: %w", err)
	}
	return &core.Category{ID: id, Name: name, Kind: kind}, nil
}

func (r *SQLiteRepository) GetCategoryByID(ctx context.Context, id int64) (*core.Category, error) {
	return r.scanCategory(r.db.QueryRowContext(ctx,
		"SELECT id, name, kind FROM categories WHERE id = ?", id))
}

// FindCategoryByName returns nil, nil when no category has that name; the
// caller decides whether a miss is an error.
func (r *SQLiteRepository) FindCategoryByName(ctx context.Context, name string) (*core.Category, error) {
	return r.scanCategory(r.db.QueryRowContext(ctx,
		"SELECT id, name, kind FROM categories WHERE name = ?", name))
}

func (r *SQLiteRepository) scanCategory(row *sql.Row) (*core.Category, error) {
	c := &core.Category{}
	var kind string
	err := row.Scan(&c.ID, &c.Name, &kind)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan category: %w", err)
	}
	c.Kind = core.Kind(kind)
	return c, nil
}

// --- transactions ---

const transactionColumns = "id, owner_id, category_id, kind, amount_cents, date, description, version"

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t *core.Transaction) error {
	// Dates are normalized to UTC so range comparisons against stored
	// values stay consistent.
	t.Date = t.Date.UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (owner_id, category_id, kind, amount_cents, date, description)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.OwnerID, t.CategoryID, string(t.Kind), t.Amount.Cents, t.Date, t.Description,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("transaction insert id: %w", err)
	}
	t.ID = id
	t.Version = 1
	return nil
}

// GetTransaction is owner-scoped: an id that exists under another owner
// reports core.ErrNotFound exactly like a missing id.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, ownerID, id int64) (*core.Transaction, error) {
	return r.scanTransaction(r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ? AND owner_id = ?",
		id, ownerID))
}

// GetTransactionByID fetches without owner scoping. Sync worker use only.
func (r *SQLiteRepository) GetTransactionByID(ctx context.Context, id int64) (*core.Transaction, error) {
	return r.scanTransaction(r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id))
}

// UpdateTransaction writes the whitelisted fields in one statement, scoped
// to the owner. Either every field lands or none does. The write bumps the
// version and re-queues the row for ledger sync.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t *core.Transaction) error {
	t.Date = t.Date.UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET kind = ?, category_id = ?, amount_cents = ?, date = ?, description = ?,
		     version = version + 1, synced = 0, sync_error = 0
		 WHERE id = ? AND owner_id = ?`,
		string(t.Kind), t.CategoryID, t.Amount.Cents, t.Date, t.Description,
		t.ID, t.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	t.Version++
	return nil
}

// ListTransactions returns one page of the owner's transactions plus the
// owner's total count. Order is date descending, newest id first — stable
// across calls absent intervening writes.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, ownerID int64, offset, limit int) ([]core.Transaction, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE owner_id = ?", ownerID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+` FROM transactions
		 WHERE owner_id = ? ORDER BY date DESC, id DESC LIMIT ? OFFSET ?`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	items, err := r.collectTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// QueryTransactions returns the full set matching the filter, for
// aggregation. A MatchNone filter short-circuits to an empty set.
func (r *SQLiteRepository) QueryTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	if f.MatchNone {
		return nil, nil
	}

	query := "SELECT " + transactionColumns + " FROM transactions WHERE owner_id = ?"
	args := []any{f.OwnerID}

	if f.From != nil {
		query += " AND date >= ?"
		args = append(args, f.From.UTC())
	}
	if f.To != nil {
		query += " AND date <= ?"
		args = append(args, f.To.UTC())
	}
	if f.CategoryID != nil {
		query += " AND category_id = ?"
		args = append(args, *f.CategoryID)
	}
	query += " ORDER BY date DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	return r.collectTransactions(rows)
}

func (r *SQLiteRepository) scanTransaction(row *sql.Row) (*core.Transaction, error) {
	t := &core.Transaction{}
	var kind string
	var date time.Time
	err := row.Scan(&t.ID, &t.OwnerID, &t.CategoryID, &kind, &t.Amount.Cents, &date, &t.Description, &t.Version)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	t.Kind = core.Kind(kind)
	t.Date = date.UTC()
	return t, nil
}

func (r *SQLiteRepository) collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var items []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var kind string
		var date time.Time
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.CategoryID, &kind, &t.Amount.Cents, &date, &t.Description, &t.Version); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Kind = core.Kind(kind)
		t.Date = date.UTC()
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return items, nil
}

// --- ledger-sync bookkeeping ---

func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]PendingTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, version FROM transactions WHERE synced = 0 AND sync_error = 0 ORDER BY id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("pending sync transactions: %w", err)
	}
	defer rows.Close()

	var pending []PendingTransaction
	for rows.Next() {
		var p PendingTransaction
		if err := rows.Scan(&p.ID, &p.Version); err != nil {
			return nil, fmt.Errorf("scan pending transaction: %w", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending transactions: %w", err)
	}
	return pending, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET synced = 1, sync_error = 0 WHERE id = ?", id,
	); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET sync_error = 1 WHERE id = ?", id,
	); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	return nil
}
