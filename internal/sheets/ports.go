// Package sheets defines where daily report rows are exported to.
package sheets

import (
	"context"

	"sindbad/internal/report"
)

// Ports for outbound adapters.
type (
	// ReportWriter stores one row per owner and day. Writing the same day again
	// replaces the previous row.
	ReportWriter interface {
		UpsertDailyRow(ctx context.Context, owner string, r report.DailyReport) (rowRef string, err error)
	}
)

// Header is the first row of the report tab.
var Header = []string{
	"Date", "Owner", "Income", "Expenses", "Profit",
	"Remaining", "Receivables", "Payables", "Bookings", "Updated",
}

// Row renders r as the cell values under Header. Amounts are plain decimal
// strings so the sheet can sum them.
func Row(owner string, r report.DailyReport, updated string) []any {
	return []any{
		r.Date.String(),
		owner,
		r.DailyIncome.String(),
		r.DailyExpenses.String(),
		r.DailyProfit.String(),
		r.Totals.RemainingPayments.String(),
		r.Debts.Receivables.String(),
		r.Debts.Payables.String(),
		len(r.Bookings),
		updated,
	}
}
