package core

import (
	"strings"
	"time"
)

type Customer struct {
	Record
	FullName   string             `json:"fullName"`
	Phone      string             `json:"phoneNumber"`
	NationalID string             `json:"nationalId"`
	Address    string             `json:"address"`
	Program    string             `json:"program"`
	VisaStatus CustomerVisaStatus `json:"visaStatus"`
	Notes      string             `json:"notes"`
}

// CustomerInput holds the fields a customer is created from.
type CustomerInput struct {
	FullName   string
	Phone      string
	NationalID string
	Address    string
	Program    string
	VisaStatus CustomerVisaStatus
	Notes      string
}

// CustomerPatch is a partial update; nil fields are left untouched.
type CustomerPatch struct {
	FullName   *string
	Phone      *string
	NationalID *string
	Address    *string
	Program    *string
	VisaStatus *CustomerVisaStatus
	Notes      *string
}

// NewCustomer builds a validated customer owned by owner.
func NewCustomer(owner string, in CustomerInput, now time.Time) (Customer, error) {
	rec, err := newRecord(owner, now)
	if err != nil {
		return Customer{}, err
	}
	if in.VisaStatus == "" {
		in.VisaStatus = CustomerVisaPending
	}
	c := Customer{
		Record:     rec,
		FullName:   strings.TrimSpace(in.FullName),
		Phone:      strings.TrimSpace(in.Phone),
		NationalID: strings.TrimSpace(in.NationalID),
		Address:    strings.TrimSpace(in.Address),
		Program:    strings.TrimSpace(in.Program),
		VisaStatus: in.VisaStatus,
		Notes:      strings.TrimSpace(in.Notes),
	}
	if err := c.Validate(); err != nil {
		return Customer{}, err
	}
	return c, nil
}

func (c Customer) Validate() error {
	if err := required("fullName", c.FullName, 2); err != nil {
		return err
	}
	if err := maxLen("fullName", c.FullName, 200); err != nil {
		return err
	}
	if err := required("phoneNumber", c.Phone, 10); err != nil {
		return err
	}
	if err := required("nationalId", c.NationalID, 5); err != nil {
		return err
	}
	if !c.VisaStatus.Valid() {
		return invalid("visaStatus", ErrInvalidEnum)
	}
	if err := maxLen("notes", c.Notes, 2000); err != nil {
		return err
	}
	return nil
}

// Apply copies the non-nil fields of p onto c.
func (p CustomerPatch) Apply(c *Customer) {
	if p.FullName != nil {
		c.FullName = strings.TrimSpace(*p.FullName)
	}
	if p.Phone != nil {
		c.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.NationalID != nil {
		c.NationalID = strings.TrimSpace(*p.NationalID)
	}
	if p.Address != nil {
		c.Address = strings.TrimSpace(*p.Address)
	}
	if p.Program != nil {
		c.Program = strings.TrimSpace(*p.Program)
	}
	if p.VisaStatus != nil {
		c.VisaStatus = *p.VisaStatus
	}
	if p.Notes != nil {
		c.Notes = strings.TrimSpace(*p.Notes)
	}
}

// Update applies p and validates the result; c is untouched on failure.
func (c *Customer) Update(p CustomerPatch, now time.Time) error {
	next := *c
	p.Apply(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	next.Touch(now)
	*c = next
	return nil
}
