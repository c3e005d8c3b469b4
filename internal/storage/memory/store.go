// Package memory is an in-process record store. Each Store is isolated, which
// makes it the backend of choice for tests and local experiments.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"sindbad/internal/core"
	"sindbad/internal/storage"
)

type Store struct {
	mu        sync.RWMutex
	customers map[string]core.Customer
	bookings  map[string]core.Booking
	visas     map[string]core.Visa
	expenses  map[string]core.Expense
	debts     map[string]core.Debt
}

var _ storage.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		customers: make(map[string]core.Customer),
		bookings:  make(map[string]core.Booking),
		visas:     make(map[string]core.Visa),
		expenses:  make(map[string]core.Expense),
		debts:     make(map[string]core.Debt),
	}
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
func (s *Store) Close() error                   { return nil }

// get returns the record with id when it belongs to owner.
func get[T any](m map[string]T, owner, id string, rec func(T) core.Record) (T, bool) {
	v, ok := m[id]
	if !ok || rec(v).OwnerID != owner {
		var zero T
		return zero, false
	}
	return v, true
}

func list[T any](m map[string]T, owner string, rec func(T) core.Record, less func(a, b T) bool) []T {
	out := make([]T, 0)
	for _, v := range m {
		if rec(v).OwnerID == owner {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func newestFirst(a, b core.Record) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func byDateDesc(da, db core.Date, a, b core.Record) bool {
	if !da.Equal(db) {
		return da.After(db.Time)
	}
	return newestFirst(a, b)
}

func (s *Store) customerExists(owner, id string) bool {
	c, ok := s.customers[id]
	return ok && c.OwnerID == owner
}

// Customers

func customerRec(c core.Customer) core.Record { return c.Record }

func (s *Store) CreateCustomer(ctx context.Context, c core.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = c
	return nil
}

func (s *Store) GetCustomer(ctx context.Context, owner, id string) (core.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := get(s.customers, owner, id, customerRec)
	if !ok {
		return core.Customer{}, core.NotFound("customer", id)
	}
	return c, nil
}

func (s *Store) ListCustomers(ctx context.Context, owner string) ([]core.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return list(s.customers, owner, customerRec, func(a, b core.Customer) bool {
		return newestFirst(a.Record, b.Record)
	}), nil
}

func (s *Store) UpdateCustomer(ctx context.Context, owner, id string, mutate func(*core.Customer) error) (core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := get(s.customers, owner, id, customerRec)
	if !ok {
		return core.Customer{}, core.NotFound("customer", id)
	}
	next := c
	if err := mutate(&next); err != nil {
		return core.Customer{}, err
	}
	if err := storage.CheckIdentity(c.Record, next.Record); err != nil {
		return core.Customer{}, err
	}
	s.customers[id] = next
	return next, nil
}

func (s *Store) DeleteCustomer(ctx context.Context, owner, id string) (storage.CascadeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res storage.CascadeResult
	if !s.customerExists(owner, id) {
		return res, core.NotFound("customer", id)
	}
	for bid, b := range s.bookings {
		if b.OwnerID == owner && b.CustomerID == id {
			delete(s.bookings, bid)
			res.Bookings++
		}
	}
	for vid, v := range s.visas {
		if v.OwnerID == owner && v.CustomerID == id {
			delete(s.visas, vid)
			res.Visas++
		}
	}
	delete(s.customers, id)
	return res, nil
}

// Bookings

func bookingRec(b core.Booking) core.Record { return b.Record }

func (s *Store) CreateBooking(ctx context.Context, b core.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.customerExists(b.OwnerID, b.CustomerID) {
		return storage.UnknownCustomer(b.CustomerID)
	}
	s.bookings[b.ID] = b
	return nil
}

func (s *Store) GetBooking(ctx context.Context, owner, id string) (core.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := get(s.bookings, owner, id, bookingRec)
	if !ok {
		return core.Booking{}, core.NotFound("booking", id)
	}
	return b, nil
}

func (s *Store) ListBookings(ctx context.Context, owner string) ([]core.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return list(s.bookings, owner, bookingRec, func(a, b core.Booking) bool {
		return newestFirst(a.Record, b.Record)
	}), nil
}

func (s *Store) UpdateBooking(ctx context.Context, owner, id string, mutate func(*core.Booking) error) (core.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := get(s.bookings, owner, id, bookingRec)
	if !ok {
		return core.Booking{}, core.NotFound("booking", id)
	}
	next := b
	if err := mutate(&next); err != nil {
		return core.Booking{}, err
	}
	if err := storage.CheckIdentity(b.Record, next.Record); err != nil {
		return core.Booking{}, err
	}
	if !s.customerExists(owner, next.CustomerID) {
		return core.Booking{}, storage.UnknownCustomer(next.CustomerID)
	}
	s.bookings[id] = next
	return next, nil
}

func (s *Store) DeleteBooking(ctx context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := get(s.bookings, owner, id, bookingRec); !ok {
		return core.NotFound("booking", id)
	}
	delete(s.bookings, id)
	return nil
}

func (s *Store) ToggleBookingPaid(ctx context.Context, owner, id string, now time.Time) (core.Booking, error) {
	return s.UpdateBooking(ctx, owner, id, func(b *core.Booking) error {
		b.TogglePayment()
		b.Touch(now)
		return nil
	})
}

// Visas

func visaRec(v core.Visa) core.Record { return v.Record }

func (s *Store) CreateVisa(ctx context.Context, v core.Visa) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.customerExists(v.OwnerID, v.CustomerID) {
		return storage.UnknownCustomer(v.CustomerID)
	}
	s.visas[v.ID] = v
	return nil
}

func (s *Store) GetVisa(ctx context.Context, owner, id string) (core.Visa, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := get(s.visas, owner, id, visaRec)
	if !ok {
		return core.Visa{}, core.NotFound("visa", id)
	}
	return v, nil
}

func (s *Store) ListVisas(ctx context.Context, owner string) ([]core.Visa, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return list(s.visas, owner, visaRec, func(a, b core.Visa) bool {
		return newestFirst(a.Record, b.Record)
	}), nil
}

func (s *Store) UpdateVisa(ctx context.Context, owner, id string, mutate func(*core.Visa) error) (core.Visa, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := get(s.visas, owner, id, visaRec)
	if !ok {
		return core.Visa{}, core.NotFound("visa", id)
	}
	next := v
	if err := mutate(&next); err != nil {
		return core.Visa{}, err
	}
	if err := storage.CheckIdentity(v.Record, next.Record); err != nil {
		return core.Visa{}, err
	}
	if !s.customerExists(owner, next.CustomerID) {
		return core.Visa{}, storage.UnknownCustomer(next.CustomerID)
	}
	s.visas[id] = next
	return next, nil
}

func (s *Store) DeleteVisa(ctx context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := get(s.visas, owner, id, visaRec); !ok {
		return core.NotFound("visa", id)
	}
	delete(s.visas, id)
	return nil
}

// Expenses

func expenseRec(e core.Expense) core.Record { return e.Record }

func (s *Store) CreateExpense(ctx context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses[e.ID] = e
	return nil
}

func (s *Store) GetExpense(ctx context.Context, owner, id string) (core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := get(s.expenses, owner, id, expenseRec)
	if !ok {
		return core.Expense{}, core.NotFound("expense", id)
	}
	return e, nil
}

func (s *Store) ListExpenses(ctx context.Context, owner string) ([]core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return list(s.expenses, owner, expenseRec, func(a, b core.Expense) bool {
		return byDateDesc(a.Date, b.Date, a.Record, b.Record)
	}), nil
}

func (s *Store) UpdateExpense(ctx context.Context, owner, id string, mutate func(*core.Expense) error) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := get(s.expenses, owner, id, expenseRec)
	if !ok {
		return core.Expense{}, core.NotFound("expense", id)
	}
	next := e
	if err := mutate(&next); err != nil {
		return core.Expense{}, err
	}
	if err := storage.CheckIdentity(e.Record, next.Record); err != nil {
		return core.Expense{}, err
	}
	s.expenses[id] = next
	return next, nil
}

func (s *Store) DeleteExpense(ctx context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := get(s.expenses, owner, id, expenseRec); !ok {
		return core.NotFound("expense", id)
	}
	delete(s.expenses, id)
	return nil
}

// Debts

func debtRec(d core.Debt) core.Record { return d.Record }

func (s *Store) CreateDebt(ctx context.Context, d core.Debt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debts[d.ID] = d
	return nil
}

func (s *Store) GetDebt(ctx context.Context, owner, id string) (core.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := get(s.debts, owner, id, debtRec)
	if !ok {
		return core.Debt{}, core.NotFound("debt", id)
	}
	return d, nil
}

func (s *Store) ListDebts(ctx context.Context, owner string) ([]core.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return list(s.debts, owner, debtRec, func(a, b core.Debt) bool {
		return byDateDesc(a.Date, b.Date, a.Record, b.Record)
	}), nil
}

func (s *Store) UpdateDebt(ctx context.Context, owner, id string, mutate func(*core.Debt) error) (core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := get(s.debts, owner, id, debtRec)
	if !ok {
		return core.Debt{}, core.NotFound("debt", id)
	}
	next := d
	if err := mutate(&next); err != nil {
		return core.Debt{}, err
	}
	if err := storage.CheckIdentity(d.Record, next.Record); err != nil {
		return core.Debt{}, err
	}
	s.debts[id] = next
	return next, nil
}

func (s *Store) DeleteDebt(ctx context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := get(s.debts, owner, id, debtRec); !ok {
		return core.NotFound("debt", id)
	}
	delete(s.debts, id)
	return nil
}

func (s *Store) ToggleDebtPaid(ctx context.Context, owner, id string, now time.Time) (core.Debt, error) {
	return s.UpdateDebt(ctx, owner, id, func(d *core.Debt) error {
		d.TogglePaid()
		d.Touch(now)
		return nil
	})
}
