// Package storagetest holds the behaviour every storage.Repository must share.
// Backends call Run from their own tests.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sindbad/internal/core"
	"sindbad/internal/storage"
)

const (
	owner = "owner-a"
	other = "owner-b"
)

var base = time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)

// Run exercises repo. newRepo must return an empty repository.
func Run(t *testing.T, newRepo func(t *testing.T) storage.Repository) {
	tests := []struct {
		name string
		fn   func(t *testing.T, repo storage.Repository)
	}{
		{"customer crud", testCustomerCRUD},
		{"owner scoping", testOwnerScoping},
		{"booking derived fields", testBookingDerived},
		{"booking toggle", testBookingToggle},
		{"booking unknown customer", testBookingUnknownCustomer},
		{"failed update writes nothing", testFailedUpdate},
		{"cascade delete", testCascadeDelete},
		{"visa crud", testVisaCRUD},
		{"expense ordering", testExpenseOrdering},
		{"debt toggle", testDebtToggle},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := newRepo(t)
			t.Cleanup(func() { repo.Close() })
			tc.fn(t, repo)
		})
	}
}

func customer(t *testing.T, repo storage.Repository, ownerID, name string, at time.Time) core.Customer {
	t.Helper()
	c, err := core.NewCustomer(ownerID, core.CustomerInput{FullName: name, Phone: "01012345678", NationalID: "29801011234567"}, at)
	require.NoError(t, err)
	require.NoError(t, repo.CreateCustomer(context.Background(), c))
	return c
}

func booking(t *testing.T, repo storage.Repository, c core.Customer, total, deposit int64, at time.Time) core.Booking {
	t.Helper()
	b, err := core.NewBooking(c.OwnerID, core.BookingInput{
		CustomerID:    c.ID,
		ProgramName:   "Umrah",
		TotalAmount:   core.FromPounds(total),
		VisaDeposit:   core.FromPounds(deposit),
		FromLocation:  "Cairo",
		ToLocation:    "Makkah",
		DepartureDate: core.NewDate(2025, 4, 1),
	}, at)
	require.NoError(t, err)
	require.NoError(t, repo.CreateBooking(context.Background(), b))
	return b
}

func visa(t *testing.T, repo storage.Repository, c core.Customer, at time.Time) core.Visa {
	t.Helper()
	v, err := core.NewVisa(c.OwnerID, core.VisaInput{
		CustomerID:    c.ID,
		VisaNumber:    "V-100",
		IssueDate:     core.NewDate(2025, 3, 1),
		ExpiryDate:    core.NewDate(2025, 6, 1),
		DepartureDate: core.NewDate(2025, 4, 1),
		FromLocation:  "Giza",
		ToLocation:    "Madinah",
	}, at)
	require.NoError(t, err)
	require.NoError(t, repo.CreateVisa(context.Background(), v))
	return v
}

func testCustomerCRUD(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	first := customer(t, repo, owner, "Ahmed Ali", base)
	second := customer(t, repo, owner, "Mona Said", base.Add(time.Minute))

	got, err := repo.GetCustomer(ctx, owner, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.FullName, got.FullName)
	assert.True(t, first.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, core.CustomerVisaPending, got.VisaStatus)

	list, err := repo.ListCustomers(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	updated, err := repo.UpdateCustomer(ctx, owner, first.ID, func(c *core.Customer) error {
		name := "Ahmed M. Ali"
		return c.Update(core.CustomerPatch{FullName: &name}, base.Add(time.Hour))
	})
	require.NoError(t, err)
	assert.Equal(t, "Ahmed M. Ali", updated.FullName)

	got, err = repo.GetCustomer(ctx, owner, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ahmed M. Ali", got.FullName)
	assert.True(t, got.UpdatedAt.Equal(base.Add(time.Hour)))

	_, err = repo.GetCustomer(ctx, owner, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func testOwnerScoping(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	c := customer(t, repo, owner, "Ahmed Ali", base)

	_, err := repo.GetCustomer(ctx, other, c.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	list, err := repo.ListCustomers(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = repo.DeleteCustomer(ctx, other, c.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	// a booking may not reference another owner's customer
	b, err := core.NewBooking(other, core.BookingInput{CustomerID: c.ID, ProgramName: "Hajj", TotalAmount: core.FromPounds(1)}, base)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.CreateBooking(ctx, b), core.ErrInvalidReference)
}

func testBookingDerived(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	c := customer(t, repo, owner, "Ahmed Ali", base)
	b := booking(t, repo, c, 10000, 2000, base)

	got, err := repo.GetBooking(ctx, owner, b.ID)
	require.NoError(t, err)
	assert.Equal(t, core.FromPounds(8000), got.RemainingAmount)
	assert.True(t, got.DepartureDate.Equal(core.NewDate(2025, 4, 1)))
	require.NoError(t, got.CheckInvariant())

	got, err = repo.UpdateBooking(ctx, owner, b.ID, func(b *core.Booking) error {
		deposit := core.FromPounds(2500)
		return b.Update(core.BookingPatch{VisaDeposit: &deposit}, base.Add(time.Minute))
	})
	require.NoError(t, err)
	assert.Equal(t, core.FromPounds(7500), got.RemainingAmount)

	stored, err := repo.GetBooking(ctx, owner, b.ID)
	require.NoError(t, err)
	assert.Equal(t, got.RemainingAmount, stored.RemainingAmount)
	require.NoError(t, stored.CheckInvariant())
}

func testBookingToggle(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	c := customer(t, repo, owner, "Ahmed Ali", base)
	b := booking(t, repo, c, 10000, 2000, base)

	paid, err := repo.ToggleBookingPaid(ctx, owner, b.ID, base.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.True(t, paid.RemainingAmount.IsZero())
	assert.True(t, paid.UpdatedAt.Equal(base.Add(time.Minute)))

	unpaid, err := repo.ToggleBookingPaid(ctx, owner, b.ID, base.Add(2*time.Minute))
	require.NoError(t, err)
	assert.False(t, unpaid.IsPaid)
	assert.Equal(t, core.FromPounds(8000), unpaid.RemainingAmount)

	_, err = repo.ToggleBookingPaid(ctx, owner, "missing", base)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func testBookingUnknownCustomer(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	b, err := core.NewBooking(owner, core.BookingInput{CustomerID: "nobody", ProgramName: "Hajj", TotalAmount: core.FromPounds(1)}, base)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.CreateBooking(ctx, b), core.ErrInvalidReference)

	list, err := repo.ListBookings(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func testFailedUpdate(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	c := customer(t, repo, owner, "Ahmed Ali", base)
	b := booking(t, repo, c, 10000, 2000, base)

	_, err := repo.UpdateBooking(ctx, owner, b.ID, func(b *core.Booking) error {
		deposit := core.FromPounds(20000)
		return b.Update(core.BookingPatch{VisaDeposit: &deposit}, base)
	})
	assert.ErrorIs(t, err, core.ErrDepositExceedsTotal)

	_, err = repo.UpdateBooking(ctx, owner, b.ID, func(b *core.Booking) error {
		b.OwnerID = other
		return nil
	})
	assert.ErrorIs(t, err, core.ErrImmutableField)

	got, err := repo.GetBooking(ctx, owner, b.ID)
	require.NoError(t, err)
	assert.Equal(t, core.FromPounds(2000), got.VisaDeposit)
	assert.Equal(t, owner, got.OwnerID)
}

func testCascadeDelete(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	gone := customer(t, repo, owner, "Ahmed Ali", base)
	kept := customer(t, repo, owner, "Mona Said", base)
	booking(t, repo, gone, 100, 10, base)
	booking(t, repo, gone, 200, 20, base)
	visa(t, repo, gone, base)
	keptBooking := booking(t, repo, kept, 300, 30, base)
	keptVisa := visa(t, repo, kept, base)

	res, err := repo.DeleteCustomer(ctx, owner, gone.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.CascadeResult{Bookings: 2, Visas: 1}, res)

	bookings, err := repo.ListBookings(ctx, owner)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, keptBooking.ID, bookings[0].ID)

	visas, err := repo.ListVisas(ctx, owner)
	require.NoError(t, err)
	require.Len(t, visas, 1)
	assert.Equal(t, keptVisa.ID, visas[0].ID)

	_, err = repo.GetCustomer(ctx, owner, gone.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func testVisaCRUD(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	c := customer(t, repo, owner, "Ahmed Ali", base)
	v := visa(t, repo, c, base)

	got, err := repo.GetVisa(ctx, owner, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Giza", got.FromLocation)
	assert.True(t, got.ExpiryDate.Equal(core.NewDate(2025, 6, 1)))
	assert.True(t, got.BookingDate.Equal(core.NewDate(2025, 3, 14)))

	got, err = repo.UpdateVisa(ctx, owner, v.ID, func(v *core.Visa) error {
		status := core.VisaIssued
		return v.Update(core.VisaPatch{Status: &status}, base.Add(time.Hour))
	})
	require.NoError(t, err)
	assert.Equal(t, core.VisaIssued, got.Status)

	require.NoError(t, repo.DeleteVisa(ctx, owner, v.ID))
	assert.ErrorIs(t, repo.DeleteVisa(ctx, owner, v.ID), core.ErrNotFound)
}

func testExpenseOrdering(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	mk := func(amount int64, date core.Date) core.Expense {
		e, err := core.NewExpense(owner, core.ExpenseInput{
			Category: core.ExpenseOffice, Amount: core.FromPounds(amount), Description: "rent", Date: date,
		}, base)
		require.NoError(t, err)
		require.NoError(t, repo.CreateExpense(ctx, e))
		return e
	}
	older := mk(500, core.NewDate(2025, 3, 1))
	newer := mk(300, core.NewDate(2025, 3, 10))

	list, err := repo.ListExpenses(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	updated, err := repo.UpdateExpense(ctx, owner, older.ID, func(e *core.Expense) error {
		amount := core.FromPounds(550)
		return e.Update(core.ExpensePatch{Amount: &amount}, base)
	})
	require.NoError(t, err)
	assert.Equal(t, core.FromPounds(550), updated.Amount)

	require.NoError(t, repo.DeleteExpense(ctx, owner, newer.ID))
	_, err = repo.GetExpense(ctx, owner, newer.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func testDebtToggle(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	d, err := core.NewDebt(owner, core.DebtInput{PersonName: "Mahmoud", Amount: core.FromPounds(1000), Type: core.Receivable}, base)
	require.NoError(t, err)
	require.NoError(t, repo.CreateDebt(ctx, d))

	got, err := repo.ToggleDebtPaid(ctx, owner, d.ID, base.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, got.IsPaid)

	got, err = repo.ToggleDebtPaid(ctx, owner, d.ID, base.Add(2*time.Minute))
	require.NoError(t, err)
	assert.False(t, got.IsPaid)

	got, err = repo.UpdateDebt(ctx, owner, d.ID, func(d *core.Debt) error {
		typ := core.Payable
		return d.Update(core.DebtPatch{Type: &typ}, base)
	})
	require.NoError(t, err)
	assert.Equal(t, core.Payable, got.Type)

	list, err := repo.ListDebts(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, repo.DeleteDebt(ctx, owner, d.ID))
	_, err = repo.GetDebt(ctx, owner, d.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
