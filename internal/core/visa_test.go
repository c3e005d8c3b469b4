package core

import (
	"errors"
	"testing"
)

func visaInput() VisaInput {
	return VisaInput{
		CustomerID:    "c-1",
		VisaNumber:    "V-123456",
		IssueDate:     NewDate(2025, 1, 10),
		ExpiryDate:    NewDate(2025, 4, 10),
		DepartureDate: NewDate(2025, 2, 1),
		FromLocation:  "cairo",
		ToLocation:    "MAKKAH",
	}
}

func TestNewVisaCanonicalizesRoute(t *testing.T) {
	v, err := NewVisa("owner-1", visaInput(), testNow)
	if err != nil {
		t.Fatalf("NewVisa: %v", err)
	}
	if v.FromLocation != "Cairo" || v.ToLocation != "Makkah" {
		t.Fatalf("unexpected route %s -> %s", v.FromLocation, v.ToLocation)
	}
	if v.Status != VisaPending || v.TravelDirection != EgyptToSaudi {
		t.Fatalf("unexpected defaults: %s %s", v.Status, v.TravelDirection)
	}
	if !v.BookingDate.Equal(NewDate(2025, 3, 14)) {
		t.Fatalf("expected booking date to default to creation day, got %s", v.BookingDate)
	}
}

func TestNewVisaRejectsWrongDirection(t *testing.T) {
	in := visaInput()
	in.TravelDirection = SaudiToEgypt
	_, err := NewVisa("owner-1", in, testNow)
	if !errors.Is(err, ErrInvalidRoute) {
		t.Fatalf("expected ErrInvalidRoute, got %v", err)
	}

	in.FromLocation, in.ToLocation = "Jeddah", "Luxor"
	v, err := NewVisa("owner-1", in, testNow)
	if err != nil {
		t.Fatalf("reverse route: %v", err)
	}
	if v.FromLocation != "Jeddah" || v.ToLocation != "Luxor" {
		t.Fatalf("unexpected route %s -> %s", v.FromLocation, v.ToLocation)
	}
}

func TestNewVisaDates(t *testing.T) {
	in := visaInput()
	in.ExpiryDate = NewDate(2024, 12, 31)
	if _, err := NewVisa("owner-1", in, testNow); !errors.Is(err, ErrExpiryBeforeIssue) {
		t.Fatalf("expected ErrExpiryBeforeIssue, got %v", err)
	}

	in = visaInput()
	in.ExpiryDate = in.IssueDate
	if _, err := NewVisa("owner-1", in, testNow); err != nil {
		t.Fatalf("same-day expiry should be accepted: %v", err)
	}

	in = visaInput()
	in.DepartureDate = Date{}
	if _, err := NewVisa("owner-1", in, testNow); !errors.Is(err, ErrEmptyField) {
		t.Fatalf("expected ErrEmptyField, got %v", err)
	}
}

func TestVisaUpdateRoute(t *testing.T) {
	v, err := NewVisa("owner-1", visaInput(), testNow)
	if err != nil {
		t.Fatal(err)
	}
	to := "riyadh"
	if err := v.Update(VisaPatch{ToLocation: &to}, testNow); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if v.ToLocation != "Riyadh" {
		t.Fatalf("expected canonical Riyadh, got %s", v.ToLocation)
	}
	bad := "Paris"
	if err := v.Update(VisaPatch{ToLocation: &bad}, testNow); !errors.Is(err, ErrInvalidRoute) {
		t.Fatalf("expected ErrInvalidRoute, got %v", err)
	}
	if v.ToLocation != "Riyadh" {
		t.Fatalf("route changed on failed update")
	}
}

func TestEndpointsCount(t *testing.T) {
	from, to := EgyptToSaudi.Endpoints()
	if len(from) != 27 || len(to) != 6 {
		t.Fatalf("unexpected endpoint counts %d/%d", len(from), len(to))
	}
	if f, _ := TravelDirection("x").Endpoints(); f != nil {
		t.Fatal("expected nil endpoints for unknown direction")
	}
}
