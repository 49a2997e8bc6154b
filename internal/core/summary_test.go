package core

import "testing"

func TestSummarize(t *testing.T) {
	txns := []Transaction{
		{Kind: Income, Amount: Money{Cents: 10000}},
		{Kind: Income, Amount: Money{Cents: 5000}},
		{Kind: Expense, Amount: Money{Cents: 3000}},
	}
	s := Summarize(txns)
	if s.TotalIncome.Cents != 15000 {
		t.Fatalf("total income: expected 15000, got %d", s.TotalIncome.Cents)
	}
	if s.TotalExpense.Cents != 3000 {
		t.Fatalf("total expense: expected 3000, got %d", s.TotalExpense.Cents)
	}
	if s.Balance.Cents != 12000 {
		t.Fatalf("balance: expected 12000, got %d", s.Balance.Cents)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalIncome.Cents != 0 || s.TotalExpense.Cents != 0 || s.Balance.Cents != 0 {
		t.Fatalf("empty set must sum to zero, got %+v", s)
	}
}

func TestSummarizeNegativeBalance(t *testing.T) {
	s := Summarize([]Transaction{
		{Kind: Income, Amount: Money{Cents: 100}},
		{Kind: Expense, Amount: Money{Cents: 250}},
	})
	if s.Balance.Cents != -150 {
		t.Fatalf("balance: expected -150, got %d", s.Balance.Cents)
	}
}
