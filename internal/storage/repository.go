// Package storage defines the record store port shared by the memory, sqlite
// and postgres backends.
package storage

import (
	"context"
	"fmt"
	"time"

	"sindbad/internal/core"
)

// CascadeResult reports the dependents removed together with a customer.
type CascadeResult struct {
	Bookings int `json:"bookings"`
	Visas    int `json:"visas"`
}

// Every method is scoped by owner: a record of another owner is reported as
// core.ErrNotFound. Update methods run the mutate callback inside the write
// transaction; a callback error aborts without writing anything.

type CustomerStore interface {
	CreateCustomer(ctx context.Context, c core.Customer) error
	GetCustomer(ctx context.Context, owner, id string) (core.Customer, error)
	ListCustomers(ctx context.Context, owner string) ([]core.Customer, error)
	UpdateCustomer(ctx context.Context, owner, id string, mutate func(*core.Customer) error) (core.Customer, error)
	// DeleteCustomer removes the customer with its bookings and visas in one transaction.
	DeleteCustomer(ctx context.Context, owner, id string) (CascadeResult, error)
}

type BookingStore interface {
	CreateBooking(ctx context.Context, b core.Booking) error
	GetBooking(ctx context.Context, owner, id string) (core.Booking, error)
	ListBookings(ctx context.Context, owner string) ([]core.Booking, error)
	UpdateBooking(ctx context.Context, owner, id string, mutate func(*core.Booking) error) (core.Booking, error)
	DeleteBooking(ctx context.Context, owner, id string) error
	// ToggleBookingPaid flips the paid flag and recomputes the remaining amount atomically.
	ToggleBookingPaid(ctx context.Context, owner, id string, now time.Time) (core.Booking, error)
}

type VisaStore interface {
	CreateVisa(ctx context.Context, v core.Visa) error
	GetVisa(ctx context.Context, owner, id string) (core.Visa, error)
	ListVisas(ctx context.Context, owner string) ([]core.Visa, error)
	UpdateVisa(ctx context.Context, owner, id string, mutate func(*core.Visa) error) (core.Visa, error)
	DeleteVisa(ctx context.Context, owner, id string) error
}

type ExpenseStore interface {
	CreateExpense(ctx context.Context, e core.Expense) error
	GetExpense(ctx context.Context, owner, id string) (core.Expense, error)
	ListExpenses(ctx context.Context, owner string) ([]core.Expense, error)
	UpdateExpense(ctx context.Context, owner, id string, mutate func(*core.Expense) error) (core.Expense, error)
	DeleteExpense(ctx context.Context, owner, id string) error
}

type DebtStore interface {
	CreateDebt(ctx context.Context, d core.Debt) error
	GetDebt(ctx context.Context, owner, id string) (core.Debt, error)
	ListDebts(ctx context.Context, owner string) ([]core.Debt, error)
	UpdateDebt(ctx context.Context, owner, id string, mutate func(*core.Debt) error) (core.Debt, error)
	DeleteDebt(ctx context.Context, owner, id string) error
	ToggleDebtPaid(ctx context.Context, owner, id string, now time.Time) (core.Debt, error)
}

// Repository is the full record store.
type Repository interface {
	CustomerStore
	BookingStore
	VisaStore
	ExpenseStore
	DebtStore

	Ping(ctx context.Context) error
	Close() error
}

// CheckIdentity rejects a mutation that tried to move a record to another id or owner.
func CheckIdentity(before, after core.Record) error {
	if before.ID != after.ID {
		return &core.ValidationError{Field: "id", Err: core.ErrImmutableField}
	}
	if before.OwnerID != after.OwnerID {
		return &core.ValidationError{Field: "ownerId", Err: core.ErrImmutableField}
	}
	if !before.CreatedAt.Equal(after.CreatedAt) {
		return &core.ValidationError{Field: "createdAt", Err: core.ErrImmutableField}
	}
	return nil
}

// UnknownCustomer is the error for a booking or visa pointing at a missing customer.
func UnknownCustomer(id string) error {
	return fmt.Errorf("customer %s: %w", id, core.ErrInvalidReference)
}
