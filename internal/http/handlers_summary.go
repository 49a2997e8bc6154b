package http

import (
	"net/http"

	"fintrack/internal/services"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())

	query := services.SummaryQuery{
		From:         r.URL.Query().Get("from"),
		To:           r.URL.Query().Get("to"),
		CategoryName: r.URL.Query().Get("category"),
	}

	key := summaryCacheKey(ownerID, query)
	if cached, ok := s.summaryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	summary, err := s.summary.Summarize(r.Context(), ownerID, query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.summaryCache.Set(key, summary)
	writeJSON(w, http.StatusOK, summary)
}
