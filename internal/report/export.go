package report

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownFormat = errors.New("not a daily report document")
	ErrFiguresDiffer = errors.New("report figures do not match its lines")
)

// ExportJSON renders the report as an indented JSON document.
func ExportJSON(r DailyReport) ([]byte, error) {
	if r.Kind == "" {
		r.Kind = ReportKind
	}
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return b, nil
}

// ImportJSON parses a document produced by ExportJSON.
func ImportJSON(data []byte) (DailyReport, error) {
	var r DailyReport
	if err := json.Unmarshal(data, &r); err != nil {
		return DailyReport{}, fmt.Errorf("decode report: %w", err)
	}
	if r.Kind != ReportKind {
		return DailyReport{}, ErrUnknownFormat
	}
	if r.Date.IsEmpty() {
		return DailyReport{}, fmt.Errorf("decode report: missing date: %w", ErrUnknownFormat)
	}
	return r, nil
}

// Verify checks that the stored figures agree with the ones recomputed from the lines.
func (r DailyReport) Verify() error {
	got, want := r.Figures(), r.Recompute()
	if got != want {
		return fmt.Errorf("%w: stored income %s expenses %s, recomputed income %s expenses %s",
			ErrFiguresDiffer, got.DailyIncome, got.DailyExpenses, want.DailyIncome, want.DailyExpenses)
	}
	return nil
}
