package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sindbad/internal/core"
	"sindbad/internal/storage/memory"
)

func TestReportServiceDaily(t *testing.T) {
	repo := memory.New()
	clock := func() time.Time { return fixedNow }
	records := NewRecordService(repo, nil, WithClock(clock))
	reports := NewReportService(repo, time.UTC, clock)

	c := createCustomer(t, records)
	_, err := records.CreateBooking(t.Context(), owner, core.BookingInput{
		CustomerID:  c.ID,
		ProgramName: "Umrah",
		TotalAmount: core.FromPounds(10000),
		VisaDeposit: core.FromPounds(2000),
	})
	require.NoError(t, err)
	_, err = records.CreateExpense(t.Context(), owner, core.ExpenseInput{
		Category:    core.ExpenseOffice,
		Amount:      core.FromPounds(500),
		Description: "Rent",
	})
	require.NoError(t, err)

	r, err := reports.Daily(t.Context(), owner, core.Date{})
	require.NoError(t, err)
	assert.Equal(t, core.NewDate(2025, 3, 14), r.Date)
	assert.Equal(t, core.FromPounds(2000), r.DailyIncome)
	assert.Equal(t, core.FromPounds(500), r.DailyExpenses)
	assert.Equal(t, core.FromPounds(1500), r.DailyProfit)
	require.Len(t, r.Bookings, 1)
	assert.Equal(t, "Ahmed Hassan", r.Bookings[0].Customer)
	require.NoError(t, r.Verify())

	other, err := reports.Daily(t.Context(), "owner-b", core.NewDate(2025, 3, 14))
	require.NoError(t, err)
	assert.Empty(t, other.Bookings)
	assert.True(t, other.DailyIncome.IsZero())
}

func TestReportServiceDashboard(t *testing.T) {
	repo := memory.New()
	records := NewRecordService(repo, nil, WithClock(func() time.Time { return fixedNow }))
	reports := NewReportService(repo, nil, nil)

	c := createCustomer(t, records)
	for i := range 7 {
		_, err := records.CreateBooking(t.Context(), owner, core.BookingInput{
			CustomerID:  c.ID,
			ProgramName: "Umrah",
			TotalAmount: core.FromPounds(int64(100 * (i + 1))),
			IsPaid:      i%2 == 0,
		})
		require.NoError(t, err)
	}

	d, err := reports.Dashboard(t.Context(), owner)
	require.NoError(t, err)
	assert.Equal(t, 1, d.TotalCustomers)
	assert.Equal(t, 7, d.TotalBookings)
	assert.Equal(t, 4, d.PaidBookings)
	assert.Equal(t, 3, d.UnpaidBookings)
	assert.Len(t, d.RecentBookings, 5)
}

func TestUndatedRecordsFollowReportTimezone(t *testing.T) {
	cairo, err := time.LoadLocation("Africa/Cairo")
	require.NoError(t, err)
	lateEvening := time.Date(2025, 3, 14, 23, 30, 0, 0, time.UTC)
	clock := func() time.Time { return lateEvening }

	repo := memory.New()
	records := NewRecordService(repo, nil, WithClock(clock), WithLocation(cairo))
	reports := NewReportService(repo, cairo, clock)

	c := createCustomer(t, records)
	_, err = records.CreateBooking(t.Context(), owner, core.BookingInput{
		CustomerID:  c.ID,
		ProgramName: "Umrah",
		TotalAmount: core.FromPounds(1000),
		VisaDeposit: core.FromPounds(1000),
	})
	require.NoError(t, err)
	e, err := records.CreateExpense(t.Context(), owner, core.ExpenseInput{
		Category:    core.ExpenseOffice,
		Amount:      core.FromPounds(500),
		Description: "Rent",
	})
	require.NoError(t, err)
	d, err := records.CreateDebt(t.Context(), owner, core.DebtInput{
		PersonName: "Mahmoud",
		Amount:     core.FromPounds(100),
		Type:       core.Receivable,
	})
	require.NoError(t, err)

	today := reports.Today()
	assert.Equal(t, "2025-03-15", today.String())
	assert.Equal(t, "2025-03-15", e.Date.String())
	assert.Equal(t, "2025-03-15", d.Date.String())

	r, err := reports.Daily(t.Context(), owner, core.Date{})
	require.NoError(t, err)
	assert.Equal(t, core.FromPounds(1000), r.DailyIncome)
	assert.Equal(t, core.FromPounds(500), r.DailyExpenses)
	assert.Equal(t, core.FromPounds(500), r.DailyProfit)
}
