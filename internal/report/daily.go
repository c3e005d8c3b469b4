package report

import (
	"sindbad/internal/core"
)

// BookingLine is one booking as it appears in a daily report.
type BookingLine struct {
	BookingID string     `json:"bookingId"`
	Customer  string     `json:"customer"`
	Program   string     `json:"program"`
	Amount    core.Money `json:"amount"`
	Deposit   core.Money `json:"deposit"`
	Remaining core.Money `json:"remaining"`
	Paid      bool       `json:"paid"`
}

// Income mirrors core.Booking.Income for a report line.
func (l BookingLine) Income() core.Money {
	income := l.Deposit
	if l.Paid {
		income = income.Add(l.Amount.Sub(l.Deposit))
	}
	return income
}

// ExpenseLine is one expense as it appears in a daily report.
type ExpenseLine struct {
	Category    core.ExpenseCategory `json:"category"`
	Description string               `json:"description"`
	Amount      core.Money           `json:"amount"`
}

// DebtSummary holds the open balances by debt type.
type DebtSummary struct {
	Receivables core.Money `json:"receivables"`
	Payables    core.Money `json:"payables"`
}

// Totals are the all-time figures at the moment the report was produced.
type Totals struct {
	Income            core.Money `json:"totalIncome"`
	Expenses          core.Money `json:"totalExpenses"`
	NetProfit         core.Money `json:"netProfit"`
	RemainingPayments core.Money `json:"remainingPayments"`
}

// DailyReport is the self-describing report for one calendar day.
type DailyReport struct {
	Kind          string        `json:"kind"`
	Date          core.Date     `json:"date"`
	DailyIncome   core.Money    `json:"dailyIncome"`
	DailyExpenses core.Money    `json:"dailyExpenses"`
	DailyProfit   core.Money    `json:"dailyProfit"`
	Bookings      []BookingLine `json:"bookings"`
	Expenses      []ExpenseLine `json:"expenses"`
	Debts         DebtSummary   `json:"debts"`
	Totals        Totals        `json:"totals"`
}

// ReportKind tags exported documents so imports can reject foreign JSON.
const ReportKind = "sindbad.daily-report/v1"

// DailyReport builds the report for date. Bookings whose customer is missing
// from the snapshot are listed with an empty customer name.
func (s Snapshot) DailyReport(date core.Date) DailyReport {
	names := make(map[string]string, len(s.Customers))
	for _, c := range s.Customers {
		names[c.ID] = c.FullName
	}

	r := DailyReport{
		Kind:          ReportKind,
		Date:          date,
		DailyIncome:   s.DailyIncome(date),
		DailyExpenses: s.DailyExpenseTotal(date),
		DailyProfit:   s.DailyProfit(date),
		Bookings:      []BookingLine{},
		Expenses:      []ExpenseLine{},
		Debts: DebtSummary{
			Receivables: s.TotalReceivables(),
			Payables:    s.TotalPayables(),
		},
		Totals: Totals{
			Income:            s.TotalIncome(),
			Expenses:          s.TotalExpenses(),
			NetProfit:         s.NetProfit(),
			RemainingPayments: s.RemainingPayments(),
		},
	}
	for _, b := range s.Bookings {
		if !s.BookingDay(b).Equal(date) {
			continue
		}
		r.Bookings = append(r.Bookings, BookingLine{
			BookingID: b.ID,
			Customer:  names[b.CustomerID],
			Program:   b.ProgramName,
			Amount:    b.TotalAmount,
			Deposit:   b.VisaDeposit,
			Remaining: b.RemainingAmount,
			Paid:      b.IsPaid,
		})
	}
	for _, e := range s.Expenses {
		if !e.Date.Equal(date) {
			continue
		}
		r.Expenses = append(r.Expenses, ExpenseLine{
			Category:    e.Category,
			Description: e.Description,
			Amount:      e.Amount,
		})
	}
	return r
}

// Figures are the day's computed amounts.
type Figures struct {
	DailyIncome   core.Money `json:"dailyIncome"`
	DailyExpenses core.Money `json:"dailyExpenses"`
	DailyProfit   core.Money `json:"dailyProfit"`
}

func (r DailyReport) Figures() Figures {
	return Figures{DailyIncome: r.DailyIncome, DailyExpenses: r.DailyExpenses, DailyProfit: r.DailyProfit}
}

// Recompute derives the day's figures from the report lines alone.
func (r DailyReport) Recompute() Figures {
	var f Figures
	for _, b := range r.Bookings {
		f.DailyIncome = f.DailyIncome.Add(b.Income())
	}
	for _, e := range r.Expenses {
		f.DailyExpenses = f.DailyExpenses.Add(e.Amount)
	}
	f.DailyProfit = f.DailyIncome.Sub(f.DailyExpenses)
	return f
}
