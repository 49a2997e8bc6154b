package http

import (
	"encoding/json"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

type createTransactionRequest struct {
	Kind       core.Kind `json:"kind"`
	CategoryID int64     `json:"categoryId"`
	// Pointer so an absent amount is distinguishable from an explicit
	// zero; zero is a valid amount, absence is not.
	Amount      *core.Money `json:"amount"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())

	var req createTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Amount == nil {
		s.writeError(w, r, core.ErrInvalidAmount)
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := core.ParseDate(req.Date)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		date = parsed
	}

	txn, err := s.txns.Create(r.Context(), ownerID, services.CreateTransactionInput{
		Kind:        req.Kind,
		CategoryID:  req.CategoryID,
		Amount:      *req.Amount,
		Date:        date,
		Description: req.Description,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.invalidateSummaries(ownerID)
	s.logger.InfoContext(r.Context(), "transaction created",
		log.FieldOwnerID, ownerID,
		log.FieldTxnID, txn.ID,
		log.FieldAmountCents, txn.Amount.Cents)

	writeJSON(w, http.StatusCreated, txn)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	txn, err := s.txns.Get(r.Context(), ownerFromContext(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, txn)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())

	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var fields map[string]json.RawMessage
	if err := decodeJSON(w, r, &fields); err != nil {
		s.writeError(w, r, err)
		return
	}

	txn, err := s.txns.Update(r.Context(), ownerID, id, fields)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.invalidateSummaries(ownerID)
	s.logger.InfoContext(r.Context(), "transaction updated",
		log.FieldOwnerID, ownerID,
		log.FieldTxnID, txn.ID)

	writeJSON(w, http.StatusOK, txn)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)

	result, err := s.txns.List(r.Context(), ownerFromContext(r.Context()), page, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
