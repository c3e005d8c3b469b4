// Package report computes the agency's financial summaries from a snapshot of
// its records. Nothing is cached; every figure is recomputed on each call.
package report

import (
	"sort"
	"time"

	"sindbad/internal/core"
)

// Snapshot is the full record set of one owner at a point in time.
type Snapshot struct {
	Customers []core.Customer
	Bookings  []core.Booking
	Visas     []core.Visa
	Expenses  []core.Expense
	Debts     []core.Debt

	// Location decides which calendar day a booking's creation time falls on.
	// Nil means UTC.
	Location *time.Location
}

func (s Snapshot) loc() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// BookingDay is the calendar day a booking was created on.
func (s Snapshot) BookingDay(b core.Booking) core.Date {
	return core.DateOf(b.CreatedAt, s.loc())
}

// DailyIncome sums the realized income of the bookings created on date.
func (s Snapshot) DailyIncome(date core.Date) core.Money {
	var total core.Money
	for _, b := range s.Bookings {
		if s.BookingDay(b).Equal(date) {
			total = total.Add(b.Income())
		}
	}
	return total
}

func (s Snapshot) DailyExpenseTotal(date core.Date) core.Money {
	var total core.Money
	for _, e := range s.Expenses {
		if e.Date.Equal(date) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

func (s Snapshot) DailyProfit(date core.Date) core.Money {
	return s.DailyIncome(date).Sub(s.DailyExpenseTotal(date))
}

func (s Snapshot) TotalIncome() core.Money {
	var total core.Money
	for _, b := range s.Bookings {
		total = total.Add(b.Income())
	}
	return total
}

func (s Snapshot) TotalExpenses() core.Money {
	var total core.Money
	for _, e := range s.Expenses {
		total = total.Add(e.Amount)
	}
	return total
}

func (s Snapshot) NetProfit() core.Money {
	return s.TotalIncome().Sub(s.TotalExpenses())
}

// RemainingPayments is the balance still owed on unpaid bookings.
func (s Snapshot) RemainingPayments() core.Money {
	var total core.Money
	for _, b := range s.Bookings {
		if !b.IsPaid {
			total = total.Add(b.RemainingAmount)
		}
	}
	return total
}

func (s Snapshot) TotalReceivables() core.Money { return s.openDebts(core.Receivable) }
func (s Snapshot) TotalPayables() core.Money    { return s.openDebts(core.Payable) }

func (s Snapshot) openDebts(t core.DebtType) core.Money {
	var total core.Money
	for _, d := range s.Debts {
		if d.Type == t && !d.IsPaid {
			total = total.Add(d.Amount)
		}
	}
	return total
}

// CategoryTotal is the spend of one expense category.
type CategoryTotal struct {
	Category core.ExpenseCategory `json:"category"`
	Total    core.Money           `json:"total"`
	Count    int                  `json:"count"`
}

// ExpensesByCategory returns one entry per category in display order. A nil
// date means all expenses.
func (s Snapshot) ExpensesByCategory(date *core.Date) []CategoryTotal {
	idx := make(map[core.ExpenseCategory]int)
	out := make([]CategoryTotal, 0, len(core.ExpenseCategories()))
	for i, c := range core.ExpenseCategories() {
		idx[c] = i
		out = append(out, CategoryTotal{Category: c})
	}
	for _, e := range s.Expenses {
		if date != nil && !e.Date.Equal(*date) {
			continue
		}
		i, ok := idx[e.Category]
		if !ok {
			continue
		}
		out[i].Total = out[i].Total.Add(e.Amount)
		out[i].Count++
	}
	return out
}

// Dashboard is the overview shown on the landing page.
type Dashboard struct {
	TotalCustomers    int            `json:"totalCustomers"`
	TotalBookings     int            `json:"totalBookings"`
	PaidBookings      int            `json:"paidBookings"`
	UnpaidBookings    int            `json:"unpaidBookings"`
	TotalIncome       core.Money     `json:"totalIncome"`
	TotalExpenses     core.Money     `json:"totalExpenses"`
	NetProfit         core.Money     `json:"netProfit"`
	RemainingPayments core.Money     `json:"remainingPayments"`
	TotalReceivables  core.Money     `json:"totalReceivables"`
	TotalPayables     core.Money     `json:"totalPayables"`
	RecentBookings    []core.Booking `json:"recentBookings"`
}

const recentBookings = 5

func (s Snapshot) Dashboard() Dashboard {
	d := Dashboard{
		TotalCustomers:    len(s.Customers),
		TotalBookings:     len(s.Bookings),
		TotalIncome:       s.TotalIncome(),
		TotalExpenses:     s.TotalExpenses(),
		NetProfit:         s.NetProfit(),
		RemainingPayments: s.RemainingPayments(),
		TotalReceivables:  s.TotalReceivables(),
		TotalPayables:     s.TotalPayables(),
	}
	for _, b := range s.Bookings {
		if b.IsPaid {
			d.PaidBookings++
		} else {
			d.UnpaidBookings++
		}
	}

	recent := make([]core.Booking, len(s.Bookings))
	copy(recent, s.Bookings)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentBookings {
		recent = recent[:recentBookings]
	}
	d.RecentBookings = recent
	return d
}

// Summary holds the all-time figures.
type Summary struct {
	TotalIncome        core.Money      `json:"totalIncome"`
	TotalExpenses      core.Money      `json:"totalExpenses"`
	NetProfit          core.Money      `json:"netProfit"`
	RemainingPayments  core.Money      `json:"remainingPayments"`
	TotalReceivables   core.Money      `json:"totalReceivables"`
	TotalPayables      core.Money      `json:"totalPayables"`
	ExpensesByCategory []CategoryTotal `json:"expensesByCategory"`
}

func (s Snapshot) Summary() Summary {
	return Summary{
		TotalIncome:        s.TotalIncome(),
		TotalExpenses:      s.TotalExpenses(),
		NetProfit:          s.NetProfit(),
		RemainingPayments:  s.RemainingPayments(),
		TotalReceivables:   s.TotalReceivables(),
		TotalPayables:      s.TotalPayables(),
		ExpensesByCategory: s.ExpensesByCategory(nil),
	}
}
