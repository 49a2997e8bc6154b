package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

func newSummaryFixture(t *testing.T) (*serviceFixture, *SummaryService) {
	t.Helper()
	fx := newServiceFixture(t)
	logger := log.New(log.DefaultConfig(log.ComponentService))
	return fx, NewSummaryService(fx.store, logger)
}

func seedSummaryData(t *testing.T, fx *serviceFixture) {
	t.Helper()
	ctx := context.Background()
	entries := []struct {
		kind  core.Kind
		cat   int64
		cents int64
		date  time.Time
	}{
		{core.Income, fx.salary.ID, 10000, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)},
		{core.Income, fx.salary.ID, 5000, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)},
		{core.Expense, fx.food.ID, 3000, time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC)},
	}
	for _, e := range entries {
		if _, err := fx.txns.Create(ctx, fx.owner.ID, CreateTransactionInput{
			Kind: e.kind, CategoryID: e.cat, Amount: core.Money{Cents: e.cents}, Date: e.date,
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
}

func TestSummarizeAll(t *testing.T) {
	fx, svc := newSummaryFixture(t)
	seedSummaryData(t, fx)

	got, err := svc.Summarize(context.Background(), fx.owner.ID, SummaryQuery{})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got.TotalIncome.Cents != 15000 {
		t.Errorf("totalIncome = %d, want 15000", got.TotalIncome.Cents)
	}
	if got.TotalExpense.Cents != 3000 {
		t.Errorf("totalExpense = %d, want 3000", got.TotalExpense.Cents)
	}
	if got.Balance.Cents != 12000 {
		t.Errorf("balance = %d, want 12000", got.Balance.Cents)
	}
}

func TestSummarizeDateRange(t *testing.T) {
	fx, svc := newSummaryFixture(t)
	seedSummaryData(t, fx)

	got, err := svc.Summarize(context.Background(), fx.owner.ID, SummaryQuery{
		From: "2025-02-01",
		To:   "2025-02-28",
	})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got.TotalIncome.Cents != 5000 || got.TotalExpense.Cents != 3000 || got.Balance.Cents != 2000 {
		t.Errorf("summary = %+v", got)
	}
}

func TestSummarizeCategoryFilter(t *testing.T) {
	fx, svc := newSummaryFixture(t)
	seedSummaryData(t, fx)

	got, err := svc.Summarize(context.Background(), fx.owner.ID, SummaryQuery{CategoryName: "food"})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got.TotalIncome.Cents != 0 || got.TotalExpense.Cents != 3000 || got.Balance.Cents != -3000 {
		t.Errorf("summary = %+v", got)
	}
}

func TestSummarizeUnknownCategoryMatchesNothing(t *testing.T) {
	fx, svc := newSummaryFixture(t)
	seedSummaryData(t, fx)

	got, err := svc.Summarize(context.Background(), fx.owner.ID, SummaryQuery{CategoryName: "no-such-category"})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got.TotalIncome.Cents != 0 || got.TotalExpense.Cents != 0 || got.Balance.Cents != 0 {
		t.Errorf("summary over unknown category = %+v, want all zeros", got)
	}
}

func TestSummarizeBadDate(t *testing.T) {
	_, svc := newSummaryFixture(t)

	_, err := svc.Summarize(context.Background(), 1, SummaryQuery{From: "13/01/2025"})
	if !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("got %v, want ErrInvalidDate", err)
	}
}

func TestSummarizeEmptyHistory(t *testing.T) {
	fx, svc := newSummaryFixture(t)

	got, err := svc.Summarize(context.Background(), fx.owner.ID, SummaryQuery{})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got.TotalIncome.Cents != 0 || got.TotalExpense.Cents != 0 || got.Balance.Cents != 0 {
		t.Errorf("empty summary = %+v", got)
	}
}
