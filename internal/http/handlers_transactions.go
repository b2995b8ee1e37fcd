package http

import (
	"net/http"
	"strconv"
	"sync/atomic"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// formView feeds expense_form.html for both add and edit.
type formView struct {
	Mode        string
	Action      string
	Categories  []core.Category
	Transaction core.Transaction
	Kinds       []core.Kind
}

func (s *Server) transactionForm(w http.ResponseWriter, r *http.Request, view formView, title string) {
	cats, err := s.categories.ListAll(r.Context())
	if err != nil {
		s.internalError(w, r, "Category list failed", err)
		return
	}
	view.Categories = cats
	view.Kinds = []core.Kind{core.Expense, core.Income}
	s.render(w, r, http.StatusOK, "expense_form.html", title, view)
}

func (s *Server) handleAddPage(w http.ResponseWriter, r *http.Request) {
	s.transactionForm(w, r, formView{
		Mode:        "add",
		Action:      "/expenses/add",
		Transaction: core.Transaction{Kind: core.Expense, Date: core.DateOf(s.now())},
	}, "Add transaction")
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.redirectWithFlash(w, "/expenses/add", FlashDanger, "Invalid request.")
		return
	}
	user := userFrom(r)

	in, err := core.ParseTransaction(FormTransaction(r.PostForm))
	if err == nil {
		var id int64
		id, err = s.ledger.Add(r.Context(), user.ID, in)
		if err == nil {
			atomic.AddInt64(&s.appMetrics.totalTransactions, 1)
			s.events.TransactionWritten(r.Context(), applog.OpCreate,
				user.ID, id, in.Kind.String(), core.FormatAmount(in.Amount), in.CategoryID)
			s.redirectWithFlash(w, "/", FlashSuccess, "Transaction added.")
			return
		}
	}
	if core.IsValidation(err) {
		s.redirectWithFlash(w, "/expenses/add", FlashDanger, capitalize(core.UserMessage(err))+".")
		return
	}
	s.internalError(w, r, "Failed to save transaction", err)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		s.notFound(w, r)
		return
	}
	tx, err := s.ledger.Get(r.Context(), userFrom(r).ID, id)
	if err != nil {
		s.ledgerError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "expense_detail.html", "Transaction", tx)
}

func (s *Server) handleEditPage(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		s.notFound(w, r)
		return
	}
	tx, err := s.ledger.Get(r.Context(), userFrom(r).ID, id)
	if err != nil {
		s.ledgerError(w, r, err)
		return
	}
	s.transactionForm(w, r, formView{
		Mode:        "edit",
		Action:      "/expenses/" + strconv.FormatInt(id, 10) + "/edit",
		Transaction: tx,
	}, "Edit transaction")
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		s.notFound(w, r)
		return
	}
	editURL := "/expenses/" + strconv.FormatInt(id, 10) + "/edit"
	if err := r.ParseForm(); err != nil {
		s.redirectWithFlash(w, editURL, FlashDanger, "Invalid request.")
		return
	}
	user := userFrom(r)

	in, err := core.ParseTransaction(FormTransaction(r.PostForm))
	if err == nil {
		err = s.ledger.Edit(r.Context(), user.ID, id, in)
	}
	switch {
	case err == nil:
		s.events.TransactionWritten(r.Context(), applog.OpUpdate,
			user.ID, id, in.Kind.String(), core.FormatAmount(in.Amount), in.CategoryID)
		s.redirectWithFlash(w, "/expenses/"+strconv.FormatInt(id, 10), FlashSuccess, "Transaction updated.")
	case core.IsValidation(err):
		s.redirectWithFlash(w, editURL, FlashDanger, capitalize(core.UserMessage(err))+".")
	default:
		s.ledgerError(w, r, err)
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		s.notFound(w, r)
		return
	}
	if err := s.ledger.Delete(r.Context(), userFrom(r).ID, id); err != nil {
		s.ledgerError(w, r, err)
		return
	}
	s.events.TransactionDeleted(r.Context(), userFrom(r).ID, id)
	s.redirectWithFlash(w, "/", FlashWarning, "Transaction deleted.")
}

// ledgerError maps missing or foreign rows to 404 and everything else to 500.
func (s *Server) ledgerError(w http.ResponseWriter, r *http.Request, err error) {
	if core.IsNotFound(err) {
		s.notFound(w, r)
		return
	}
	s.internalError(w, r, "Ledger operation failed", err)
}
