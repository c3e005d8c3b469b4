package core

import (
	"errors"
	"testing"
)

func TestNewCustomer(t *testing.T) {
	c, err := NewCustomer("owner-1", CustomerInput{
		FullName:   "  Ahmed Hassan ",
		Phone:      "01012345678",
		NationalID: "29801011234567",
		Program:    "Umrah 15 days",
	}, testNow)
	if err != nil {
		t.Fatalf("NewCustomer: %v", err)
	}
	if c.FullName != "Ahmed Hassan" {
		t.Fatalf("name not trimmed: %q", c.FullName)
	}
	if c.VisaStatus != CustomerVisaPending {
		t.Fatalf("expected default status pending, got %s", c.VisaStatus)
	}
	if !ValidID(c.ID) {
		t.Fatalf("expected uuid id, got %q", c.ID)
	}
	if c.OwnerID != "owner-1" || !c.CreatedAt.Equal(testNow) {
		t.Fatalf("unexpected record fields: %+v", c.Record)
	}
}

func TestNewCustomerValidation(t *testing.T) {
	cases := []struct {
		name  string
		in    CustomerInput
		field string
	}{
		{"short name", CustomerInput{FullName: "A", Phone: "01012345678", NationalID: "12345"}, "fullName"},
		{"short phone", CustomerInput{FullName: "Ali", Phone: "0101", NationalID: "12345"}, "phoneNumber"},
		{"short id", CustomerInput{FullName: "Ali", Phone: "01012345678", NationalID: "123"}, "nationalId"},
		{"bad status", CustomerInput{FullName: "Ali", Phone: "01012345678", NationalID: "12345", VisaStatus: "lost"}, "visaStatus"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCustomer("owner-1", tc.in, testNow)
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tc.field {
				t.Fatalf("expected validation error on %s, got %v", tc.field, err)
			}
		})
	}
}

func TestNewCustomerRequiresOwner(t *testing.T) {
	_, err := NewCustomer("", CustomerInput{FullName: "Ali", Phone: "01012345678", NationalID: "12345"}, testNow)
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCustomerUpdateKeepsRequiredFields(t *testing.T) {
	c, err := NewCustomer("owner-1", CustomerInput{FullName: "Ali", Phone: "01012345678", NationalID: "12345"}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	empty := ""
	if err := c.Update(CustomerPatch{FullName: &empty}, testNow); !errors.Is(err, ErrEmptyField) {
		t.Fatalf("expected ErrEmptyField, got %v", err)
	}
	if c.FullName != "Ali" {
		t.Fatalf("name changed on failed update: %q", c.FullName)
	}

	status := CustomerVisaApproved
	if err := c.Update(CustomerPatch{VisaStatus: &status}, testNow); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if c.VisaStatus != CustomerVisaApproved {
		t.Fatalf("status not applied")
	}
}
