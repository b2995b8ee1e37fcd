package http

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/trace"
	appweb "fintrack/web"

	"github.com/shopspring/decimal"
)

// pages lists every template rendered inside the base layout.
var pages = []string{
	"login.html",
	"register.html",
	"password.html",
	"index.html",
	"expense_form.html",
	"expense_detail.html",
	"expenses_month.html",
	"expenses_report.html",
	"error.html",
}

// pageData is what every page receives.
type pageData struct {
	Title string
	User  *core.User
	Flash *Flash
	Data  any
}

var templateFuncs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return core.FormatAmount(d) },
	"monthName": func(m int) string {
		if m < 1 || m > 12 {
			return ""
		}
		return time.Month(m).String()
	},
	"isIncome": func(k core.Kind) bool { return k == core.Income },
	"negative": func(d decimal.Decimal) bool { return d.IsNegative() },
}

// loadTemplates parses each page together with the base layout.
func loadTemplates() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.New("base.html").Funcs(templateFuncs).
			ParseFS(appweb.TemplatesFS, "templates/base.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		out[page] = t
	}
	return out, nil
}

// render executes a page into a buffer first so a template failure never
// produces a half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	t, ok := s.templates[page]
	if !ok {
		s.logger.ErrorContext(r.Context(), "Template not loaded",
			applog.FieldComponent, applog.ComponentTemplate,
			"template", page)
		ErrorResponse(http.StatusInternalServerError, "templates not loaded").Write(w)
		return
	}

	pd := pageData{Title: title, Data: data, Flash: s.popFlash(w, r)}
	if u, ok := userFromContext(r); ok {
		pd.User = &u
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base.html", pd); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpRender,
			"template", page)
		ErrorResponse(http.StatusInternalServerError, "internal error").Write(w)
		return
	}
	NewResponse().Status(status).BodyHTML(buf.String()).Write(w)
}

// renderError shows the error page with a status code.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.render(w, r, status, "error.html", http.StatusText(status), struct {
		Status    int
		Message   string
		RequestID string
	}{Status: status, Message: message, RequestID: trace.GetRequestID(r.Context())})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusNotFound, "The page or transaction does not exist.")
}

// internalError logs err and shows a generic 500 page.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.events.Internal(r.Context(), msg, err, r.URL.Path)
	s.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again.")
}
