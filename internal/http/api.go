package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// writeAPIError maps domain errors to status codes. Unknown errors are logged
// and hidden behind a generic 500.
func (s *Server) writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		JSONError(http.StatusUnprocessableEntity, ve.Message, ve.Field).Write(w)
	case core.IsConflict(err):
		JSONError(http.StatusConflict, core.UserMessage(err), "").Write(w)
	case core.IsAuth(err):
		JSONError(http.StatusUnauthorized, core.UserMessage(err), "").Write(w)
	case core.IsNotFound(err):
		JSONError(http.StatusNotFound, "not found", "").Write(w)
	default:
		s.events.Internal(r.Context(), "API request failed", err, r.URL.Path)
		JSONError(http.StatusInternalServerError, "internal error", "").Write(w)
	}
}

func (s *Server) parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		JSONError(http.StatusBadRequest, "malformed request body", "").Write(w)
		return nil, false
	}
	return p, true
}

type tokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// handleAPIToken exchanges credentials for a bearer token.
func (s *Server) handleAPIToken(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	username := p.Get("username")
	user, err := s.credentials.Authenticate(r.Context(), username, p.Password("password"))
	if err != nil {
		if core.IsAuth(err) {
			atomic.AddInt64(&s.appMetrics.failedLogins, 1)
			s.events.Auth(r.Context(), applog.OpLogin, username, false, s.securityDetector.ExtractClientIP(r))
		}
		s.writeAPIError(w, r, err)
		return
	}

	token, expires, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	NewResponse().
		Header("Cache-Control", "no-store").
		JSON(tokenResponse{Token: token, TokenType: "Bearer", ExpiresAt: expires}).
		Write(w)
}

func (s *Server) handleAPICategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.categories.ListAll(r.Context())
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	NewResponse().JSON(map[string]any{"categories": cats}).Write(w)
}

// handleAPIListTransactions returns one month when year or month is given,
// the newest limit rows when limit is given, and everything otherwise.
func (s *Server) handleAPIListTransactions(w http.ResponseWriter, r *http.Request) {
	owner := userFrom(r).ID
	q := r.URL.Query()

	var (
		txs []core.Transaction
		err error
	)
	switch {
	case q.Has("year") || q.Has("month"):
		rng, rerr := ParseMonthParams(q, s.now()).Range()
		if rerr != nil {
			s.writeAPIError(w, r, rerr)
			return
		}
		txs, err = s.ledger.ListByMonth(r.Context(), owner, rng.Year, rng.Month)
	case q.Has("limit"):
		limit, lerr := strconv.Atoi(strings.TrimSpace(q.Get("limit")))
		if lerr != nil || limit < 1 || limit > 1000 {
			JSONError(http.StatusUnprocessableEntity, "limit must be between 1 and 1000", "limit").Write(w)
			return
		}
		txs, err = s.ledger.ListRecent(r.Context(), owner, limit)
	default:
		txs, err = s.ledger.ListAll(r.Context(), owner)
	}
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	NewResponse().JSON(map[string]any{"transactions": txs}).Write(w)
}

func (s *Server) handleAPICreateTransaction(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	owner := userFrom(r).ID

	in, err := core.ParseTransaction(p.Transaction())
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	id, err := s.ledger.Add(r.Context(), owner, in)
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.totalTransactions, 1)
	s.events.TransactionWritten(r.Context(), applog.OpCreate,
		owner, id, in.Kind.String(), core.FormatAmount(in.Amount), in.CategoryID)

	tx, err := s.ledger.Get(r.Context(), owner, id)
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/v1/transactions/"+strconv.FormatInt(id, 10)).
		JSON(tx).
		Write(w)
}

func (s *Server) handleAPIGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		JSONError(http.StatusNotFound, "not found", "").Write(w)
		return
	}
	tx, err := s.ledger.Get(r.Context(), userFrom(r).ID, id)
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	NewResponse().JSON(tx).Write(w)
}

// handleAPIUpdateTransaction replaces every mutable field.
func (s *Server) handleAPIUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		JSONError(http.StatusNotFound, "not found", "").Write(w)
		return
	}
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	owner := userFrom(r).ID

	in, err := core.ParseTransaction(p.Transaction())
	if err == nil {
		err = s.ledger.Edit(r.Context(), owner, id, in)
	}
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	s.events.TransactionWritten(r.Context(), applog.OpUpdate,
		owner, id, in.Kind.String(), core.FormatAmount(in.Amount), in.CategoryID)

	tx, err := s.ledger.Get(r.Context(), owner, id)
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	NewResponse().JSON(tx).Write(w)
}

func (s *Server) handleAPIDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		JSONError(http.StatusNotFound, "not found", "").Write(w)
		return
	}
	if err := s.ledger.Delete(r.Context(), userFrom(r).ID, id); err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	s.events.TransactionDeleted(r.Context(), userFrom(r).ID, id)
	NewResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleAPIMonthlyReport(w http.ResponseWriter, r *http.Request) {
	rng, err := ParseMonthParams(r.URL.Query(), s.now()).Range()
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	report, err := s.reports.MonthlyReport(r.Context(), userFrom(r).ID, rng.Year, rng.Month)
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	NewResponse().JSON(report).Write(w)
}

func (s *Server) handleAPILifetimeReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.LifetimeReport(r.Context(), userFrom(r).ID)
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	NewResponse().JSON(report).Write(w)
}
