// Package services holds the application use cases. Each mutation runs as one
// storage transaction and announces itself on the event bus after commit.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sindbad/internal/amqp"
	"sindbad/internal/core"
	"sindbad/internal/log"
	"sindbad/internal/storage"
)

// EventPublisher is implemented by *amqp.Client.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, ev *amqp.RecordEvent) error
}

// RecordService creates, updates and deletes the agency's records.
type RecordService struct {
	repo      storage.Repository
	publisher EventPublisher
	clock     func() time.Time
	loc       *time.Location
}

type Option func(*RecordService)

// WithClock replaces time.Now, mostly for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *RecordService) { s.clock = clock }
}

// WithLocation sets the zone used to decide which day a booking belongs to.
func WithLocation(loc *time.Location) Option {
	return func(s *RecordService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewRecordService wires repo and an optional publisher (nil disables events).
func NewRecordService(repo storage.Repository, publisher EventPublisher, opts ...Option) *RecordService {
	s := &RecordService{
		repo:      repo,
		publisher: publisher,
		clock:     time.Now,
		loc:       time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RecordService) now() time.Time { return s.clock().UTC() }

func (s *RecordService) bookingDay(b core.Booking) string {
	return core.DateOf(b.CreatedAt, s.loc).String()
}

// publish announces a committed change. Failures are logged, never returned:
// the write already happened.
func (s *RecordService) publish(ctx context.Context, owner, entity, id, op string, days ...string) {
	log.NewStructuredLogger(log.FromContext(ctx)).LogRecordChanged(ctx, op, owner, entity, id)
	if s.publisher == nil {
		return
	}
	seen := make(map[string]bool, len(days))
	for _, day := range days {
		if day == "" || seen[day] {
			continue
		}
		seen[day] = true
		ev := amqp.NewRecordEvent(owner, entity, id, op, day)
		if err := s.publisher.PublishRecordEvent(ctx, ev); err != nil {
			slog.ErrorContext(ctx, "Failed to publish record event",
				log.FieldEntity, entity,
				log.FieldRecordID, id,
				log.FieldOperation, op,
				log.FieldDay, day,
				log.FieldError, err)
		}
	}
}

// Customers

func (s *RecordService) CreateCustomer(ctx context.Context, owner string, in core.CustomerInput) (core.Customer, error) {
	c, err := core.NewCustomer(owner, in, s.now())
	if err != nil {
		return core.Customer{}, err
	}
	if err := s.repo.CreateCustomer(ctx, c); err != nil {
		return core.Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return c, nil
}

func (s *RecordService) GetCustomer(ctx context.Context, owner, id string) (core.Customer, error) {
	return s.repo.GetCustomer(ctx, owner, id)
}

func (s *RecordService) ListCustomers(ctx context.Context, owner string) ([]core.Customer, error) {
	return s.repo.ListCustomers(ctx, owner)
}

func (s *RecordService) UpdateCustomer(ctx context.Context, owner, id string, p core.CustomerPatch) (core.Customer, error) {
	now := s.now()
	c, err := s.repo.UpdateCustomer(ctx, owner, id, func(c *core.Customer) error {
		return c.Update(p, now)
	})
	if err != nil {
		return core.Customer{}, fmt.Errorf("update customer: %w", err)
	}
	return c, nil
}

// DeleteCustomer removes the customer together with its bookings and visas.
func (s *RecordService) DeleteCustomer(ctx context.Context, owner, id string) (storage.CascadeResult, error) {
	// Collect the days whose income changes before the bookings disappear.
	var days []string
	bookings, err := s.repo.ListBookings(ctx, owner)
	if err != nil {
		// The delete still goes ahead; only the report refresh of those days is lost.
		slog.WarnContext(ctx, "Failed to list bookings before customer delete",
			log.FieldOwner, owner,
			log.FieldRecordID, id,
			log.FieldError, err)
	}
	for _, b := range bookings {
		if b.CustomerID == id {
			days = append(days, s.bookingDay(b))
		}
	}

	res, err := s.repo.DeleteCustomer(ctx, owner, id)
	if err != nil {
		return storage.CascadeResult{}, fmt.Errorf("delete customer: %w", err)
	}
	s.publish(ctx, owner, amqp.EntityCustomer, id, amqp.OpDeleted, days...)
	return res, nil
}

// Bookings

func (s *RecordService) CreateBooking(ctx context.Context, owner string, in core.BookingInput) (core.Booking, error) {
	b, err := core.NewBooking(owner, in, s.now())
	if err != nil {
		return core.Booking{}, err
	}
	if err := s.repo.CreateBooking(ctx, b); err != nil {
		return core.Booking{}, fmt.Errorf("create booking: %w", err)
	}
	s.publish(ctx, owner, amqp.EntityBooking, b.ID, amqp.OpCreated, s.bookingDay(b))
	return b, nil
}

func (s *RecordService) GetBooking(ctx context.Context, owner, id string) (core.Booking, error) {
	return s.repo.GetBooking(ctx, owner, id)
}

func (s *RecordService) ListBookings(ctx context.Context, owner string) ([]core.Booking, error) {
	return s.repo.ListBookings(ctx, owner)
}

// UpdateBooking applies p and re-derives the remaining amount in the same transaction.
func (s *RecordService) UpdateBooking(ctx context.Context, owner, id string, p core.BookingPatch) (core.Booking, error) {
	now := s.now()
	b, err := s.repo.UpdateBooking(ctx, owner, id, func(b *core.Booking) error {
		return b.Update(p, now)
	})
	if err != nil {
		return core.Booking{}, fmt.Errorf("update booking: %w", err)
	}
	s.publish(ctx, owner, amqp.EntityBooking, b.ID, amqp.OpUpdated, s.bookingDay(b))
	return b, nil
}

func (s *RecordService) ToggleBookingPayment(ctx context.Context, owner, id string) (core.Booking, error) {
	b, err := s.repo.ToggleBookingPaid(ctx, owner, id, s.now())
	if err != nil {
		return core.Booking{}, fmt.Errorf("toggle booking payment: %w", err)
	}
	s.publish(ctx, owner, amqp.EntityBooking, b.ID, amqp.OpToggled, s.bookingDay(b))
	return b, nil
}

func (s *RecordService) DeleteBooking(ctx context.Context, owner, id string) error {
	b, err := s.repo.GetBooking(ctx, owner, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if err := s.repo.DeleteBooking(ctx, owner, id); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	s.publish(ctx, owner, amqp.EntityBooking, id, amqp.OpDeleted, s.bookingDay(b))
	return nil
}

// Visas

func (s *RecordService) CreateVisa(ctx context.Context, owner string, in core.VisaInput) (core.Visa, error) {
	if in.BookingDate.IsEmpty() {
		in.BookingDate = s.todayDate()
	}
	v, err := core.NewVisa(owner, in, s.now())
	if err != nil {
		return core.Visa{}, err
	}
	if err := s.repo.CreateVisa(ctx, v); err != nil {
		return core.Visa{}, fmt.Errorf("create visa: %w", err)
	}
	return v, nil
}

func (s *RecordService) GetVisa(ctx context.Context, owner, id string) (core.Visa, error) {
	return s.repo.GetVisa(ctx, owner, id)
}

// GetVisaWithCustomer loads a visa and the customer it belongs to.
func (s *RecordService) GetVisaWithCustomer(ctx context.Context, owner, id string) (core.Visa, core.Customer, error) {
	v, err := s.repo.GetVisa(ctx, owner, id)
	if err != nil {
		return core.Visa{}, core.Customer{}, err
	}
	c, err := s.repo.GetCustomer(ctx, owner, v.CustomerID)
	if err != nil {
		return core.Visa{}, core.Customer{}, fmt.Errorf("visa %s: %w", id, err)
	}
	return v, c, nil
}

func (s *RecordService) ListVisas(ctx context.Context, owner string) ([]core.Visa, error) {
	return s.repo.ListVisas(ctx, owner)
}

func (s *RecordService) UpdateVisa(ctx context.Context, owner, id string, p core.VisaPatch) (core.Visa, error) {
	now := s.now()
	v, err := s.repo.UpdateVisa(ctx, owner, id, func(v *core.Visa) error {
		return v.Update(p, now)
	})
	if err != nil {
		return core.Visa{}, fmt.Errorf("update visa: %w", err)
	}
	return v, nil
}

func (s *RecordService) DeleteVisa(ctx context.Context, owner, id string) error {
	if err := s.repo.DeleteVisa(ctx, owner, id); err != nil {
		return fmt.Errorf("delete visa: %w", err)
	}
	return nil
}

// Expenses

func (s *RecordService) CreateExpense(ctx context.Context, owner string, in core.ExpenseInput) (core.Expense, error) {
	if in.Date.IsEmpty() {
		in.Date = s.todayDate()
	}
	e, err := core.NewExpense(owner, in, s.now())
	if err != nil {
		return core.Expense{}, err
	}
	if err := s.repo.CreateExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	s.publish(ctx, owner, amqp.EntityExpense, e.ID, amqp.OpCreated, e.Date.String())
	return e, nil
}

func (s *RecordService) GetExpense(ctx context.Context, owner, id string) (core.Expense, error) {
	return s.repo.GetExpense(ctx, owner, id)
}

func (s *RecordService) ListExpenses(ctx context.Context, owner string) ([]core.Expense, error) {
	return s.repo.ListExpenses(ctx, owner)
}

// UpdateExpense announces both the old and the new day when the date moves.
func (s *RecordService) UpdateExpense(ctx context.Context, owner, id string, p core.ExpensePatch) (core.Expense, error) {
	now := s.now()
	var before core.Date
	e, err := s.repo.UpdateExpense(ctx, owner, id, func(e *core.Expense) error {
		before = e.Date
		return e.Update(p, now)
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	s.publish(ctx, owner, amqp.EntityExpense, e.ID, amqp.OpUpdated, before.String(), e.Date.String())
	return e, nil
}

func (s *RecordService) DeleteExpense(ctx context.Context, owner, id string) error {
	e, err := s.repo.GetExpense(ctx, owner, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if err := s.repo.DeleteExpense(ctx, owner, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.publish(ctx, owner, amqp.EntityExpense, id, amqp.OpDeleted, e.Date.String())
	return nil
}

// Debts

func (s *RecordService) CreateDebt(ctx context.Context, owner string, in core.DebtInput) (core.Debt, error) {
	if in.Date.IsEmpty() {
		in.Date = s.todayDate()
	}
	d, err := core.NewDebt(owner, in, s.now())
	if err != nil {
		return core.Debt{}, err
	}
	if err := s.repo.CreateDebt(ctx, d); err != nil {
		return core.Debt{}, fmt.Errorf("create debt: %w", err)
	}
	s.publish(ctx, owner, amqp.EntityDebt, d.ID, amqp.OpCreated, s.today())
	return d, nil
}

func (s *RecordService) GetDebt(ctx context.Context, owner, id string) (core.Debt, error) {
	return s.repo.GetDebt(ctx, owner, id)
}

func (s *RecordService) ListDebts(ctx context.Context, owner string) ([]core.Debt, error) {
	return s.repo.ListDebts(ctx, owner)
}

func (s *RecordService) UpdateDebt(ctx context.Context, owner, id string, p core.DebtPatch) (core.Debt, error) {
	now := s.now()
	d, err := s.repo.UpdateDebt(ctx, owner, id, func(d *core.Debt) error {
		return d.Update(p, now)
	})
	if err != nil {
		return core.Debt{}, fmt.Errorf("update debt: %w", err)
	}
	s.publish(ctx, owner, amqp.EntityDebt, d.ID, amqp.OpUpdated, s.today())
	return d, nil
}

func (s *RecordService) ToggleDebtPaid(ctx context.Context, owner, id string) (core.Debt, error) {
	d, err := s.repo.ToggleDebtPaid(ctx, owner, id, s.now())
	if err != nil {
		return core.Debt{}, fmt.Errorf("toggle debt: %w", err)
	}
	s.publish(ctx, owner, amqp.EntityDebt, d.ID, amqp.OpToggled, s.today())
	return d, nil
}

func (s *RecordService) DeleteDebt(ctx context.Context, owner, id string) error {
	if err := s.repo.DeleteDebt(ctx, owner, id); err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}
	s.publish(ctx, owner, amqp.EntityDebt, id, amqp.OpDeleted, s.today())
	return nil
}

// todayDate is the current day in the reporting location, the same day bookings
// created now are reported under.
func (s *RecordService) todayDate() core.Date {
	return core.DateOf(s.now(), s.loc)
}

// today is the day whose report row carries the current debt balances.
func (s *RecordService) today() string {
	return s.todayDate().String()
}
