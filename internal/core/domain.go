package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

const maxDescriptionLen = 200

type (
	// Kind classifies categories and transactions as income or expense.
	Kind string

	// User is a registered account. PasswordHash never leaves the process:
	// it is excluded from JSON and must not appear in logs.
	User struct {
		ID           int64     `json:"id"`
		Username     string    `json:"username"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"createdAt"`
	}

	// Category names a bucket of transactions. Names are globally unique
	// and the kind is fixed at creation.
	Category struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Kind Kind   `json:"kind"`
	}

	// Transaction is a single income or expense entry owned by a user.
	// OwnerID is set once at creation and never mutated. Version counts
	// writes and tags ledger-sync messages; it carries no concurrency
	// guarantee (concurrent updates are last-write-wins).
	Transaction struct {
		ID          int64     `json:"id"`
		OwnerID     int64     `json:"ownerId"`
		Kind        Kind      `json:"kind"`
		CategoryID  int64     `json:"categoryId"`
		Amount      Money     `json:"amount"`
		Date        time.Time `json:"date"`
		Description string    `json:"description,omitempty"`
		Version     int64     `json:"-"`
	}

	// TransactionFilter selects a subset of one owner's transactions.
	// From/To are inclusive bounds. MatchNone forces an empty result set;
	// it is set when a category filter names a category that does not
	// exist, which must match zero records rather than fall through to
	// the owner's full history.
	TransactionFilter struct {
		OwnerID    int64
		From       *time.Time
		To         *time.Time
		CategoryID *int64
		MatchNone  bool
	}
)

var (
	ErrNotFound           = errors.New("transaction not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrDuplicateCategory  = errors.New("category name already exists")
	ErrInvalidKind        = errors.New("kind must be income or expense")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrInvalidFieldSet    = errors.New("update contains a disallowed field")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmptyUsername      = errors.New("username cannot be empty")
)

// Valid reports whether k is one of the two supported kinds.
func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

// dateLayouts accepted for caller-supplied dates, tried in order.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// ParseDate parses a caller-supplied calendar timestamp. A bare date
// (YYYY-MM-DD) parses to midnight UTC, so date-only range bounds are
// inclusive of that whole day's midnight entries.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if t.CategoryID <= 0 {
		return ErrUnknownCategory
	}
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if len(t.Description) > maxDescriptionLen {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// UpdatableTransactionField reports whether a partial-update key is in the
// whitelist. Anything else (ownerId and id included) must be rejected
// before any mutation is applied.
func UpdatableTransactionField(name string) bool {
	switch name {
	case "kind", "categoryId", "amount", "date", "description":
		return true
	}
	return false
}
