package http

import (
	"net/http"
)

// handleIndex renders lifetime totals, the most recent transactions and the
// current month's income and expense.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	dash, err := s.reports.Dashboard(r.Context(), user.ID)
	if err != nil {
		s.internalError(w, r, "Dashboard failed", err)
		return
	}
	s.render(w, r, http.StatusOK, "index.html", "Dashboard", dash)
}
