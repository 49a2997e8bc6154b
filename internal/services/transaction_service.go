// Package services holds the application logic between the HTTP handlers
// and the stores: validation, ownership scoping, partial updates,
// pagination and summary aggregation.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// EventPublisher announces transaction writes for asynchronous ledger
// sync. A nil publisher disables the announcements; writes still land.
type EventPublisher interface {
	PublishTransactionSync(ctx context.Context, id, version int64) error
}

// TransactionService implements the transaction operations. All reads and
// writes are scoped to the calling owner.
type TransactionService struct {
	store     storage.Store
	publisher EventPublisher
	logger    *log.Logger
}

func NewTransactionService(store storage.Store, publisher EventPublisher, logger *log.Logger) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentService),
	}
}

// CreateTransactionInput carries the caller-supplied fields for a new
// transaction. A zero Date means "now".
type CreateTransactionInput struct {
	Kind        core.Kind
	CategoryID  int64
	Amount      core.Money
	Date        time.Time
	Description string
}

func (s *TransactionService) Create(ctx context.Context, ownerID int64, in CreateTransactionInput) (*core.Transaction, error) {
	if in.Date.IsZero() {
		in.Date = time.Now().UTC()
	}

	txn := &core.Transaction{
		OwnerID:     ownerID,
		Kind:        in.Kind,
		CategoryID:  in.CategoryID,
		Amount:      in.Amount,
		Date:        in.Date,
		Description: strings.TrimSpace(in.Description),
	}
	if err := txn.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, txn.CategoryID); err != nil {
		return nil, err
	}

	if err := s.store.CreateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	s.publishSync(ctx, txn)
	return txn, nil
}

func (s *TransactionService) Get(ctx context.Context, ownerID, id int64) (*core.Transaction, error) {
	return s.store.GetTransaction(ctx, ownerID, id)
}

// Update applies a partial update. The field set is checked against the
// whitelist before anything is read or written: a request naming any
// other field (ownerId and id included) fails without side effects.
func (s *TransactionService) Update(ctx context.Context, ownerID, id int64, fields map[string]json.RawMessage) (*core.Transaction, error) {
	for name := range fields {
		if !core.UpdatableTransactionField(name) {
			return nil, fmt.Errorf("%w: %s", core.ErrInvalidFieldSet, name)
		}
	}

	txn, err := s.store.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	// An empty field set is a no-op: the record comes back unchanged,
	// with no version bump and no sync re-queue.
	if len(fields) == 0 {
		return txn, nil
	}

	if raw, ok := fields["kind"]; ok {
		var kind core.Kind
		if err := json.Unmarshal(raw, &kind); err != nil {
			return nil, core.ErrInvalidKind
		}
		txn.Kind = kind
	}
	if raw, ok := fields["categoryId"]; ok {
		var categoryID int64
		if err := json.Unmarshal(raw, &categoryID); err != nil {
			return nil, core.ErrUnknownCategory
		}
		if err := s.checkCategory(ctx, categoryID); err != nil {
			return nil, err
		}
		txn.CategoryID = categoryID
	}
	if raw, ok := fields["amount"]; ok {
		var amount core.Money
		if err := json.Unmarshal(raw, &amount); err != nil {
			return nil, core.ErrInvalidAmount
		}
		txn.Amount = amount
	}
	if raw, ok := fields["date"]; ok {
		var dateStr string
		if err := json.Unmarshal(raw, &dateStr); err != nil {
			return nil, core.ErrInvalidDate
		}
		date, err := core.ParseDate(dateStr)
		if err != nil {
			return nil, err
		}
		txn.Date = date
	}
	if raw, ok := fields["description"]; ok {
		var description string
		if err := json.Unmarshal(raw, &description); err != nil {
			return nil, fmt.Errorf("%w: description", core.ErrInvalidFieldSet)
		}
		txn.Description = strings.TrimSpace(description)
	}

	if err := txn.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateTransaction(ctx, txn); err != nil {
		return nil, err
	}

	s.publishSync(ctx, txn)
	return txn, nil
}

// TransactionPage is one page of an owner's history plus the paging
// metadata clients use to walk it.
type TransactionPage struct {
	Transactions []core.Transaction `json:"transactions"`
	Total        int                `json:"total"`
	CurrentPage  int                `json:"currentPage"`
	TotalPages   int                `json:"totalPages"`
}

// List returns one page, newest first. Page and limit below 1 fall back
// to 1 and 10. A page past the end is an empty page, not an error.
func (s *TransactionService) List(ctx context.Context, ownerID int64, page, limit int) (*TransactionPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	items, total, err := s.store.ListTransactions(ctx, ownerID, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if items == nil {
		items = []core.Transaction{}
	}

	return &TransactionPage{
		Transactions: items,
		Total:        total,
		CurrentPage:  page,
		TotalPages:   (total + limit - 1) / limit,
	}, nil
}

func (s *TransactionService) checkCategory(ctx context.Context, id int64) error {
	cat, err := s.store.GetCategoryByID(ctx, id)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if cat == nil {
		return core.ErrUnknownCategory
	}
	return nil
}

// publishSync is best effort: a broker outage must not fail the write.
// The startup scan picks up anything missed here.
func (s *TransactionService) publishSync(ctx context.Context, txn *core.Transaction) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, txn.ID, txn.Version); err != nil {
		s.logger.Warn("failed to publish sync message",
			log.FieldTxnID, txn.ID,
			log.ErrAttr(err))
	}
}
