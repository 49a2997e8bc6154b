package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *SQLiteRepository, username string) *core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), username, "hash")
	if err != nil {
		t.Fatalf("CreateUser(%q): %v", username, err)
	}
	return u
}

func seedCategory(t *testing.T, repo *SQLiteRepository, name string, kind core.Kind) *core.Category {
	t.Helper()
	c, err := repo.CreateCategory(context.Background(), name, kind)
	if err != nil {
		t.Fatalf("CreateCategory(%q): %v", name, err)
	}
	return c
}

func seedTransaction(t *testing.T, repo *SQLiteRepository, ownerID, categoryID int64, kind core.Kind, cents int64, date time.Time) *core.Transaction {
	t.Helper()
	txn := &core.Transaction{
		OwnerID:    ownerID,
		CategoryID: categoryID,
		Kind:       kind,
		Amount:     core.Money{Cents: cents},
		Date:       date,
	}
	if err := repo.CreateTransaction(context.Background(), txn); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	return txn
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	repo := newTestRepo(t)
	seedUser(t, repo, "alice")

	_, err := repo.CreateUser(context.Background(), "alice", "other-hash")
	if !errors.Is(err, core.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestGetUserByUsernameMissReturnsNil(t *testing.T) {
	repo := newTestRepo(t)

	u, err := repo.GetUserByUsername(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if u != nil {
		t.Fatalf("expected nil user on miss, got %+v", u)
	}
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	repo := newTestRepo(t)
	seedCategory(t, repo, "groceries", core.Expense)

	_, err := repo.CreateCategory(context.Background(), "groceries", core.Expense)
	if !errors.Is(err, core.ErrDuplicateCategory) {
		t.Fatalf("expected ErrDuplicateCategory, got %v", err)
	}
}

func TestFindCategoryByNameMissReturnsNil(t *testing.T) {
	repo := newTestRepo(t)

	c, err := repo.FindCategoryByName(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("FindCategoryByName: %v", err)
	}
	if c != nil {
		t.Fatalf("expected nil category on miss, got %+v", c)
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedUser(t, repo, "alice")
	cat := seedCategory(t, repo, "salary", core.Income)

	date := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	created := seedTransaction(t, repo, owner.ID, cat.ID, core.Income, 123456, date)
	if created.ID == 0 {
		t.Fatal("expected assigned transaction id")
	}
	if created.Version != 1 {
		t.Fatalf("expected version 1 after create, got %d", created.Version)
	}

	got, err := repo.GetTransaction(context.Background(), owner.ID, created.ID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.Amount.Cents != 123456 {
		t.Errorf("amount cents = %d, want 123456", got.Amount.Cents)
	}
	if got.Kind != core.Income {
		t.Errorf("kind = %q, want income", got.Kind)
	}
	if !got.Date.Equal(date) {
		t.Errorf("date = %v, want %v", got.Date, date)
	}
}

func TestGetTransactionCrossOwnerIsNotFound(t *testing.T) {
	repo := newTestRepo(t)
	alice := seedUser(t, repo, "alice")
	bob := seedUser(t, repo, "bob")
	cat := seedCategory(t, repo, "rent", core.Expense)

	txn := seedTransaction(t, repo, alice.ID, cat.ID, core.Expense, 90000, time.Now().UTC())

	_, err := repo.GetTransaction(context.Background(), bob.ID, txn.ID)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}
}

func TestUpdateTransaction(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedUser(t, repo, "alice")
	cat := seedCategory(t, repo, "food", core.Expense)
	other := seedCategory(t, repo, "travel", core.Expense)

	txn := seedTransaction(t, repo, owner.ID, cat.ID, core.Expense, 1500, time.Now().UTC())

	txn.CategoryID = other.ID
	txn.Amount = core.Money{Cents: 2500}
	txn.Description = "train ticket"
	if err := repo.UpdateTransaction(context.Background(), txn); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if txn.Version != 2 {
		t.Errorf("version after update = %d, want 2", txn.Version)
	}

	got, err := repo.GetTransaction(context.Background(), owner.ID, txn.ID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.CategoryID != other.ID || got.Amount.Cents != 2500 || got.Description != "train ticket" {
		t.Errorf("updated transaction = %+v", got)
	}
}

func TestUpdateTransactionForeignOwnerIsNotFound(t *testing.T) {
	repo := newTestRepo(t)
	alice := seedUser(t, repo, "alice")
	bob := seedUser(t, repo, "bob")
	cat := seedCategory(t, repo, "misc", core.Expense)

	txn := seedTransaction(t, repo, alice.ID, cat.ID, core.Expense, 100, time.Now().UTC())

	txn.OwnerID = bob.ID
	err := repo.UpdateTransaction(context.Background(), txn)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating foreign owner's record, got %v", err)
	}
}

func TestListTransactionsPagination(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedUser(t, repo, "alice")
	cat := seedCategory(t, repo, "misc", core.Expense)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedTransaction(t, repo, owner.ID, cat.ID, core.Expense, int64(100*(i+1)), base.AddDate(0, 0, i))
	}

	page, total, err := repo.ListTransactions(context.Background(), owner.ID, 0, 2)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(page) != 2 {
		t.Fatalf("page size = %d, want 2", len(page))
	}
	// Newest date first.
	if !page[0].Date.After(page[1].Date) {
		t.Errorf("expected descending date order, got %v then %v", page[0].Date, page[1].Date)
	}

	// Offset beyond the last record yields an empty page with the same total.
	empty, total, err := repo.ListTransactions(context.Background(), owner.ID, 10, 2)
	if err != nil {
		t.Fatalf("ListTransactions beyond end: %v", err)
	}
	if total != 5 || len(empty) != 0 {
		t.Errorf("beyond-end page: total=%d len=%d, want 5 and 0", total, len(empty))
	}
}

func TestListTransactionsScopedToOwner(t *testing.T) {
	repo := newTestRepo(t)
	alice := seedUser(t, repo, "alice")
	bob := seedUser(t, repo, "bob")
	cat := seedCategory(t, repo, "misc", core.Expense)

	seedTransaction(t, repo, alice.ID, cat.ID, core.Expense, 100, time.Now().UTC())
	seedTransaction(t, repo, bob.ID, cat.ID, core.Expense, 200, time.Now().UTC())

	items, total, err := repo.ListTransactions(context.Background(), alice.ID, 0, 10)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("total=%d len=%d, want 1 and 1", total, len(items))
	}
	if items[0].OwnerID != alice.ID {
		t.Errorf("got transaction owned by %d", items[0].OwnerID)
	}
}

func TestQueryTransactionsFilters(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedUser(t, repo, "alice")
	salary := seedCategory(t, repo, "salary", core.Income)
	food := seedCategory(t, repo, "food", core.Expense)

	jan := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	seedTransaction(t, repo, owner.ID, salary.ID, core.Income, 500000, jan)
	seedTransaction(t, repo, owner.ID, food.ID, core.Expense, 4500, feb)
	seedTransaction(t, repo, owner.ID, food.ID, core.Expense, 3200, mar)

	ctx := context.Background()

	t.Run("date range inclusive", func(t *testing.T) {
		from, to := feb, mar
		got, err := repo.QueryTransactions(ctx, core.TransactionFilter{OwnerID: owner.ID, From: &from, To: &to})
		if err != nil {
			t.Fatalf("QueryTransactions: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
	})

	t.Run("category filter", func(t *testing.T) {
		got, err := repo.QueryTransactions(ctx, core.TransactionFilter{OwnerID: owner.ID, CategoryID: &food.ID})
		if err != nil {
			t.Fatalf("QueryTransactions: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		for _, txn := range got {
			if txn.CategoryID != food.ID {
				t.Errorf("unexpected category %d", txn.CategoryID)
			}
		}
	})

	t.Run("match none", func(t *testing.T) {
		got, err := repo.QueryTransactions(ctx, core.TransactionFilter{OwnerID: owner.ID, MatchNone: true})
		if err != nil {
			t.Fatalf("QueryTransactions: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("len = %d, want 0", len(got))
		}
	})

	t.Run("no filter returns all", func(t *testing.T) {
		got, err := repo.QueryTransactions(ctx, core.TransactionFilter{OwnerID: owner.ID})
		if err != nil {
			t.Fatalf("QueryTransactions: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("len = %d, want 3", len(got))
		}
	})
}

func TestPendingSyncLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedUser(t, repo, "alice")
	cat := seedCategory(t, repo, "misc", core.Expense)

	first := seedTransaction(t, repo, owner.ID, cat.ID, core.Expense, 100, time.Now().UTC())
	second := seedTransaction(t, repo, owner.ID, cat.ID, core.Expense, 200, time.Now().UTC())

	ctx := context.Background()

	pending, err := repo.PendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("PendingSync: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}

	if err := repo.MarkSynced(ctx, first.ID); err != nil {
		t.Fatalf("MarkSynced: %v", err)
	}
	if err := repo.MarkSyncError(ctx, second.ID); err != nil {
		t.Fatalf("MarkSyncError: %v", err)
	}

	pending, err = repo.PendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("PendingSync after marks: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending after marks = %d, want 0", len(pending))
	}

	// An update re-queues a synced row and clears the error flag.
	first.Description = "edited"
	if err := repo.UpdateTransaction(ctx, first); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	second.Description = "edited"
	if err := repo.UpdateTransaction(ctx, second); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}

	pending, err = repo.PendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("PendingSync after updates: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending after updates = %d, want 2", len(pending))
	}
	for _, p := range pending {
		if p.Version != 2 {
			t.Errorf("pending version = %d, want 2", p.Version)
		}
	}
}
