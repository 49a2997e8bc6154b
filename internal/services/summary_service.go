package services

import (
	"context"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// SummaryService aggregates an owner's transactions into income, expense
// and balance totals over an optional date range and category.
type SummaryService struct {
	store  storage.Store
	logger *log.Logger
}

func NewSummaryService(store storage.Store, logger *log.Logger) *SummaryService {
	return &SummaryService{
		store:  store,
		logger: logger.WithComponent(log.ComponentService),
	}
}

// SummaryQuery carries the raw filter parameters as the client sent them.
// Empty strings mean "not filtered".
type SummaryQuery struct {
	From         string
	To           string
	CategoryName string
}

// BuildFilter parses and resolves the query into a store filter. A
// category name that matches nothing yields a MatchNone filter: the
// summary over it is all zeros, not an error.
func (s *SummaryService) BuildFilter(ctx context.Context, ownerID int64, q SummaryQuery) (core.TransactionFilter, error) {
	filter := core.TransactionFilter{OwnerID: ownerID}

	if q.From != "" {
		from, err := core.ParseDate(q.From)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := core.ParseDate(q.To)
		if err != nil {
			return filter, err
		}
		filter.To = &to
	}
	if q.CategoryName != "" {
		cat, err := s.store.FindCategoryByName(ctx, q.CategoryName)
		if err != nil {
			return filter, fmt.Errorf("resolve category: %w", err)
		}
		if cat == nil {
			filter.MatchNone = true
		} else {
			filter.CategoryID = &cat.ID
		}
	}

	return filter, nil
}

// Summarize computes the totals for the owner's transactions matching the
// query.
func (s *SummaryService) Summarize(ctx context.Context, ownerID int64, q SummaryQuery) (*core.Summary, error) {
	filter, err := s.BuildFilter(ctx, ownerID, q)
	if err != nil {
		return nil, err
	}

	txns, err := s.store.QueryTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}

	summary := core.Summarize(txns)
	return &summary, nil
}
