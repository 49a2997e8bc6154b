// Package storage provides the persistence layer behind the identity,
// category and transaction stores.
package storage

import (
	"context"

	"fintrack/internal/core"
)

// PendingTransaction is the minimal record the sync worker needs to pick
// up a write that has not reached the external ledger yet.
type PendingTransaction struct {
	ID      int64
	Version int64
}

// UserStore holds credentials. Lookups return nil, nil on a miss; the
// caller decides whether that is an error.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*core.User, error)
	GetUserByID(ctx context.Context, id int64) (*core.User, error)
	GetUserByUsername(ctx context.Context, username string) (*core.User, error)
}

// CategoryStore holds named income/expense categories.
type CategoryStore interface {
	CreateCategory(ctx context.Context, name string, kind core.Kind) (*core.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*core.Category, error)
	FindCategoryByName(ctx context.Context, name string) (*core.Category, error)
}

// TransactionStore owns transaction records. Every read and update is
// owner-scoped: a miss and a foreign owner's record are indistinguishable
// (both are core.ErrNotFound).
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t *core.Transaction) error
	GetTransaction(ctx context.Context, ownerID, id int64) (*core.Transaction, error)
	UpdateTransaction(ctx context.Context, t *core.Transaction) error
	ListTransactions(ctx context.Context, ownerID int64, offset, limit int) ([]core.Transaction, int, error)
	QueryTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error)

	// Ledger-sync bookkeeping, used by the worker only.
	GetTransactionByID(ctx context.Context, id int64) (*core.Transaction, error)
	PendingSync(ctx context.Context, limit int) ([]PendingTransaction, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// Store is the full persistence surface, injected into services so the
// backend can be swapped without touching them.
type Store interface {
	UserStore
	CategoryStore
	TransactionStore
	Close() error
}
