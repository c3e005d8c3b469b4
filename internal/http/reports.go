package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"sindbad/internal/core"
	"sindbad/internal/log"
	"sindbad/internal/report"
)

// AgencyName heads rendered visa cards.
const AgencyName = "Sindbad Travel"

// queryDate parses the optional ?date= parameter. It writes a 422 and returns
// false when the value is malformed.
func queryDate(w http.ResponseWriter, r *http.Request) (core.Date, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	if raw == "" {
		return core.Date{}, true
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), map[string]string{"date": "YYYY-MM-DD"})
		return core.Date{}, false
	}
	return d, true
}

func (s *Server) reportSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.reports.Summary(r.Context(), s.owner(r))
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.reports.Dashboard(r.Context(), s.owner(r))
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) reportDaily(w http.ResponseWriter, r *http.Request) {
	date, ok := queryDate(w, r)
	if !ok {
		return
	}
	rep, err := s.reports.Daily(r.Context(), s.owner(r), date)
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) reportDailyExport(w http.ResponseWriter, r *http.Request) {
	date, ok := queryDate(w, r)
	if !ok {
		return
	}
	rep, err := s.reports.Daily(r.Context(), s.owner(r), date)
	if err != nil {
		s.respondError(w, r, log.OpExport, err)
		return
	}
	body, err := report.ExportJSON(rep)
	if err != nil {
		s.respondError(w, r, log.OpExport, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="daily-report-%s.json"`, rep.Date))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

type importResponse struct {
	Date       core.Date      `json:"date"`
	Stored     report.Figures `json:"stored"`
	Recomputed report.Figures `json:"recomputed"`
	Match      bool           `json:"match"`
}

// reportImport parses an exported report and checks its figures against its lines.
func (s *Server) reportImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Sprintf("read body: %v", err), nil)
		return
	}
	if len(bytes.TrimSpace(data)) == 0 {
		writeErr(w, http.StatusBadRequest, MsgInvalidJSON+": empty body", nil)
		return
	}
	rep, err := report.ImportJSON(data)
	if err != nil {
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), nil)
		return
	}
	verr := rep.Verify()
	if verr != nil && !errors.Is(verr, report.ErrFiguresDiffer) {
		s.respondError(w, r, log.OpImport, verr)
		return
	}
	writeJSON(w, http.StatusOK, importResponse{
		Date:       rep.Date,
		Stored:     rep.Figures(),
		Recomputed: rep.Recompute(),
		Match:      verr == nil,
	})
}

func (s *Server) reportCategories(w http.ResponseWriter, r *http.Request) {
	date, ok := queryDate(w, r)
	if !ok {
		return
	}
	var filter *core.Date
	if !date.IsEmpty() {
		filter = &date
	}
	totals, err := s.reports.CategoryTotals(r.Context(), s.owner(r), filter)
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, list(totals))
}

type visaCardData struct {
	Agency   string
	Visa     core.Visa
	Customer core.Customer
}

func (s *Server) visaCard(w http.ResponseWriter, r *http.Request) {
	v, c, err := s.records.GetVisaWithCustomer(r.Context(), s.owner(r), idVar(r))
	if err != nil {
		s.respondError(w, r, log.OpRender, err)
		return
	}
	if s.templates == nil {
		s.respondError(w, r, log.OpRender, errors.New("visa card template not loaded"))
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "visa_card", visaCardData{Agency: AgencyName, Visa: v, Customer: c}); err != nil {
		s.respondError(w, r, log.OpRender, fmt.Errorf("render visa card: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

type shareResponse struct {
	Link string `json:"link"`
	Text string `json:"text"`
}

// visaShare builds a WhatsApp link for the visa, sent to ?phone= or to the
// customer's own number.
func (s *Server) visaShare(w http.ResponseWriter, r *http.Request) {
	v, c, err := s.records.GetVisaWithCustomer(r.Context(), s.owner(r), idVar(r))
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if phone == "" {
		phone = c.Phone
	}
	text := report.VisaShareText(v, c)
	link, err := report.WhatsAppLink(phone, text)
	if err != nil {
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), map[string]string{"phone": "must contain digits"})
		return
	}
	writeJSON(w, http.StatusOK, shareResponse{Link: link, Text: text})
}
