package core

import (
	"fmt"
	"strings"
	"time"
)

type Booking struct {
	Record
	CustomerID      string          `json:"customerId"`
	ProgramName     string          `json:"programName"`
	TotalAmount     Money           `json:"totalAmount"`
	VisaDeposit     Money           `json:"visaDeposit"`
	RemainingAmount Money           `json:"remainingAmount"`
	IsPaid          bool            `json:"isPaid"`
	TravelDirection TravelDirection `json:"travelDirection"`
	FromLocation    string          `json:"fromLocation"`
	ToLocation      string          `json:"toLocation"`
	DepartureDate   Date            `json:"departureDate"`
}

type BookingInput struct {
	CustomerID      string
	ProgramName     string
	TotalAmount     Money
	VisaDeposit     Money
	IsPaid          bool
	TravelDirection TravelDirection
	FromLocation    string
	ToLocation      string
	DepartureDate   Date
}

// BookingPatch is a partial update. RemainingAmount is never patched directly;
// it is always derived.
type BookingPatch struct {
	CustomerID      *string
	ProgramName     *string
	TotalAmount     *Money
	VisaDeposit     *Money
	IsPaid          *bool
	TravelDirection *TravelDirection
	FromLocation    *string
	ToLocation      *string
	DepartureDate   *Date
}

// RemainingAmount is the balance still owed on a booking: nothing once paid,
// otherwise total minus deposit, never below zero.
func RemainingAmount(total, deposit Money, paid bool) Money {
	if paid {
		return Money{}
	}
	r := total.Sub(deposit)
	if r.IsNegative() {
		return Money{}
	}
	return r
}

// NewBooking builds a validated booking with its derived fields filled in.
func NewBooking(owner string, in BookingInput, now time.Time) (Booking, error) {
	rec, err := newRecord(owner, now)
	if err != nil {
		return Booking{}, err
	}
	if in.TravelDirection == "" {
		in.TravelDirection = EgyptToSaudi
	}
	b := Booking{
		Record:          rec,
		CustomerID:      strings.TrimSpace(in.CustomerID),
		ProgramName:     strings.TrimSpace(in.ProgramName),
		TotalAmount:     in.TotalAmount,
		VisaDeposit:     in.VisaDeposit,
		IsPaid:          in.IsPaid,
		TravelDirection: in.TravelDirection,
		FromLocation:    strings.TrimSpace(in.FromLocation),
		ToLocation:      strings.TrimSpace(in.ToLocation),
		DepartureDate:   in.DepartureDate,
	}
	if err := b.Validate(); err != nil {
		return Booking{}, err
	}
	b.Derive()
	return b, nil
}

// Validate checks the base fields. A deposit above the total is rejected, not clamped.
func (b Booking) Validate() error {
	if strings.TrimSpace(b.CustomerID) == "" {
		return invalid("customerId", ErrEmptyField)
	}
	if err := required("programName", b.ProgramName, 2); err != nil {
		return err
	}
	if err := maxLen("programName", b.ProgramName, 200); err != nil {
		return err
	}
	if err := amount("totalAmount", b.TotalAmount); err != nil {
		return err
	}
	if err := amount("visaDeposit", b.VisaDeposit); err != nil {
		return err
	}
	if b.VisaDeposit.Cents > b.TotalAmount.Cents {
		return invalid("visaDeposit", ErrDepositExceedsTotal)
	}
	if !b.TravelDirection.Valid() {
		return invalid("travelDirection", ErrInvalidEnum)
	}
	return nil
}

// Derive recomputes RemainingAmount from the base fields.
func (b *Booking) Derive() {
	b.RemainingAmount = RemainingAmount(b.TotalAmount, b.VisaDeposit, b.IsPaid)
}

// TogglePayment flips IsPaid. Becoming paid zeroes the balance, becoming unpaid
// restores total minus deposit.
func (b *Booking) TogglePayment() {
	b.IsPaid = !b.IsPaid
	b.Derive()
}

// CheckInvariant reports a stored booking whose derived field disagrees with its base fields.
func (b Booking) CheckInvariant() error {
	want := RemainingAmount(b.TotalAmount, b.VisaDeposit, b.IsPaid)
	if b.RemainingAmount != want {
		return fmt.Errorf("booking %s: remaining %s, want %s", b.ID, b.RemainingAmount, want)
	}
	return nil
}

// Income is the realized income of the booking: the deposit always counts, the
// rest only once the booking is marked paid.
func (b Booking) Income() Money {
	income := b.VisaDeposit
	if b.IsPaid {
		income = income.Add(b.TotalAmount.Sub(b.VisaDeposit))
	}
	return income
}

// Apply copies the non-nil fields of p onto b. The caller validates and derives afterwards.
func (p BookingPatch) Apply(b *Booking) {
	if p.CustomerID != nil {
		b.CustomerID = strings.TrimSpace(*p.CustomerID)
	}
	if p.ProgramName != nil {
		b.ProgramName = strings.TrimSpace(*p.ProgramName)
	}
	if p.TotalAmount != nil {
		b.TotalAmount = *p.TotalAmount
	}
	if p.VisaDeposit != nil {
		b.VisaDeposit = *p.VisaDeposit
	}
	if p.IsPaid != nil {
		b.IsPaid = *p.IsPaid
	}
	if p.TravelDirection != nil {
		b.TravelDirection = *p.TravelDirection
	}
	if p.FromLocation != nil {
		b.FromLocation = strings.TrimSpace(*p.FromLocation)
	}
	if p.ToLocation != nil {
		b.ToLocation = strings.TrimSpace(*p.ToLocation)
	}
	if p.DepartureDate != nil {
		b.DepartureDate = *p.DepartureDate
	}
}

// Update applies p, validates the result and re-derives the remaining amount.
// b is left untouched when validation fails.
func (b *Booking) Update(p BookingPatch, now time.Time) error {
	next := *b
	p.Apply(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	next.Derive()
	next.Touch(now)
	*b = next
	return nil
}
