package http

import (
	"bytes"
	"fmt"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/sheets/xlsx"
)

// monthView adds navigation to the monthly report.
type monthView struct {
	core.MonthlyReport
	Prev core.MonthRange
	Next core.MonthRange
}

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	params := ParseMonthParams(r.URL.Query(), s.now())
	rng, err := params.Range()
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, capitalize(core.UserMessage(err))+".")
		return
	}

	report, err := s.reports.MonthlyReport(r.Context(), userFrom(r).ID, rng.Year, rng.Month)
	if err != nil {
		s.internalError(w, r, "Monthly report failed", err)
		return
	}
	s.render(w, r, http.StatusOK, "expenses_month.html", rng.Label(), monthView{
		MonthlyReport: report,
		Prev:          shiftMonth(rng, -1),
		Next:          shiftMonth(rng, 1),
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.LifetimeReport(r.Context(), userFrom(r).ID)
	if err != nil {
		s.internalError(w, r, "Lifetime report failed", err)
		return
	}
	s.render(w, r, http.StatusOK, "expenses_report.html", "Report", report)
}

func shiftMonth(rng core.MonthRange, delta int) core.MonthRange {
	d := rng.Start().AddDate(0, delta, 0)
	return core.MonthRange{Year: d.Year(), Month: int(d.Month())}
}

// handleExport downloads the full ledger as a workbook, or as CSV when
// format=csv.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	txs, err := s.ledger.ListAll(r.Context(), user.ID)
	if err != nil {
		s.internalError(w, r, "Export failed", err)
		return
	}

	var (
		buf         bytes.Buffer
		contentType string
		ext         string
	)
	switch r.URL.Query().Get("format") {
	case "csv":
		err = xlsx.WriteCSV(&buf, txs)
		contentType, ext = xlsx.ContentTypeCSV, "csv"
	case "", "xlsx":
		err = xlsx.WriteWorkbook(&buf, "Ledger", txs)
		contentType, ext = xlsx.ContentTypeXLSX, "xlsx"
	default:
		s.renderError(w, r, http.StatusBadRequest, "Unknown export format.")
		return
	}
	if err != nil {
		s.internalError(w, r, "Export failed", err)
		return
	}

	filename := fmt.Sprintf("fintrack_%s.%s", s.now().Format("20060102"), ext)
	NewResponse().
		Header("Content-Type", contentType).
		Header("Content-Disposition", `attachment; filename="`+filename+`"`).
		Body(buf.Bytes()).
		Write(w)
}
