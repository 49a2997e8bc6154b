package http

import (
	"net/http"
	"strings"

	"fintrack/internal/core"
)

type createCategoryRequest struct {
	Name string    `json:"name"`
	Kind core.Kind `json:"kind"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		s.writeError(w, r, badRequestf("category name cannot be empty"))
		return
	}
	if !req.Kind.Valid() {
		s.writeError(w, r, core.ErrInvalidKind)
		return
	}

	category, err := s.store.CreateCategory(r.Context(), req.Name, req.Kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, category)
}
