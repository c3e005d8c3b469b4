package core

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

func newTestBooking(t *testing.T, total, deposit int64, paid bool) Booking {
	t.Helper()
	b, err := NewBooking("owner-1", BookingInput{
		CustomerID:    "c-1",
		ProgramName:   "Umrah Ramadan",
		TotalAmount:   FromPounds(total),
		VisaDeposit:   FromPounds(deposit),
		IsPaid:        paid,
		FromLocation:  "Cairo",
		ToLocation:    "Makkah",
		DepartureDate: NewDate(2025, 4, 1),
	}, testNow)
	if err != nil {
		t.Fatalf("NewBooking: %v", err)
	}
	return b
}

func TestRemainingAmount(t *testing.T) {
	cases := []struct {
		name           string
		total, deposit int64
		paid           bool
		want           int64
	}{
		{"unpaid", 10000, 2000, false, 8000},
		{"paid", 10000, 2000, true, 0},
		{"no deposit", 500, 0, false, 500},
		{"fully deposited", 500, 500, false, 0},
		{"clamped", 100, 300, false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RemainingAmount(FromPounds(tc.total), FromPounds(tc.deposit), tc.paid)
			if got != FromPounds(tc.want) {
				t.Fatalf("expected %d, got %s", tc.want, got)
			}
		})
	}
}

func TestBookingToggleRoundTrip(t *testing.T) {
	b := newTestBooking(t, 10000, 2000, false)
	if b.RemainingAmount != FromPounds(8000) {
		t.Fatalf("expected remaining 8000, got %s", b.RemainingAmount)
	}

	b.TogglePayment()
	if !b.IsPaid || !b.RemainingAmount.IsZero() {
		t.Fatalf("after first toggle: paid=%v remaining=%s", b.IsPaid, b.RemainingAmount)
	}

	b.TogglePayment()
	if b.IsPaid || b.RemainingAmount != FromPounds(8000) {
		t.Fatalf("after second toggle: paid=%v remaining=%s", b.IsPaid, b.RemainingAmount)
	}
	if err := b.CheckInvariant(); err != nil {
		t.Fatal(err)
	}
}

func TestNewBookingRejectsDepositAboveTotal(t *testing.T) {
	_, err := NewBooking("owner-1", BookingInput{
		CustomerID:  "c-1",
		ProgramName: "Hajj",
		TotalAmount: FromPounds(100),
		VisaDeposit: FromPounds(101),
	}, testNow)
	if !errors.Is(err, ErrDepositExceedsTotal) {
		t.Fatalf("expected ErrDepositExceedsTotal, got %v", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "visaDeposit" {
		t.Fatalf("expected validation error on visaDeposit, got %v", err)
	}
}

func TestNewBookingValidation(t *testing.T) {
	base := BookingInput{CustomerID: "c-1", ProgramName: "Umrah", TotalAmount: FromPounds(10)}
	cases := []struct {
		name  string
		mod   func(*BookingInput)
		field string
	}{
		{"missing customer", func(in *BookingInput) { in.CustomerID = " " }, "customerId"},
		{"short program", func(in *BookingInput) { in.ProgramName = "U" }, "programName"},
		{"negative total", func(in *BookingInput) { in.TotalAmount = Money{Cents: -1} }, "totalAmount"},
		{"bad direction", func(in *BookingInput) { in.TravelDirection = "north" }, "travelDirection"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mod(&in)
			_, err := NewBooking("owner-1", in, testNow)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("expected field %s, got %s", tc.field, ve.Field)
			}
		})
	}
}

func TestBookingUpdateRederives(t *testing.T) {
	b := newTestBooking(t, 10000, 2000, false)
	total := FromPounds(12000)
	if err := b.Update(BookingPatch{TotalAmount: &total}, testNow.Add(time.Hour)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if b.RemainingAmount != FromPounds(10000) {
		t.Fatalf("expected 10000 remaining, got %s", b.RemainingAmount)
	}
	if !b.UpdatedAt.After(b.CreatedAt) {
		t.Fatalf("expected UpdatedAt to move forward")
	}

	paid := true
	if err := b.Update(BookingPatch{IsPaid: &paid}, testNow); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !b.RemainingAmount.IsZero() {
		t.Fatalf("expected zero remaining once paid, got %s", b.RemainingAmount)
	}
}

func TestBookingUpdateFailureLeavesRecord(t *testing.T) {
	b := newTestBooking(t, 10000, 2000, false)
	before := b
	deposit := FromPounds(20000)
	if err := b.Update(BookingPatch{VisaDeposit: &deposit}, testNow); err == nil {
		t.Fatal("expected error")
	}
	if b != before {
		t.Fatalf("booking changed on failed update")
	}
}

func TestBookingIncome(t *testing.T) {
	if got := newTestBooking(t, 10000, 2000, false).Income(); got != FromPounds(2000) {
		t.Fatalf("unpaid income: %s", got)
	}
	if got := newTestBooking(t, 10000, 2000, true).Income(); got != FromPounds(10000) {
		t.Fatalf("paid income: %s", got)
	}
}
