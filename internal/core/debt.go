package core

import (
	"strings"
	"time"
)

// Debt is money owed to the agency (receivable) or by it (payable).
type Debt struct {
	Record
	PersonName  string   `json:"personName"`
	Amount      Money    `json:"amount"`
	Type        DebtType `json:"type"`
	Description string   `json:"description"`
	Date        Date     `json:"date"`
	IsPaid      bool     `json:"isPaid"`
}

type DebtInput struct {
	PersonName  string
	Amount      Money
	Type        DebtType
	Description string
	Date        Date
	IsPaid      bool
}

type DebtPatch struct {
	PersonName  *string
	Amount      *Money
	Type        *DebtType
	Description *string
	Date        *Date
	IsPaid      *bool
}

// NewDebt builds a validated debt. An empty date means today.
func NewDebt(owner string, in DebtInput, now time.Time) (Debt, error) {
	rec, err := newRecord(owner, now)
	if err != nil {
		return Debt{}, err
	}
	if in.Date.IsEmpty() {
		in.Date = DateOf(now, time.UTC)
	}
	d := Debt{
		Record:      rec,
		PersonName:  strings.TrimSpace(in.PersonName),
		Amount:      in.Amount,
		Type:        in.Type,
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date,
		IsPaid:      in.IsPaid,
	}
	if err := d.Validate(); err != nil {
		return Debt{}, err
	}
	return d, nil
}

func (d Debt) Validate() error {
	if err := required("personName", d.PersonName, 2); err != nil {
		return err
	}
	if err := maxLen("personName", d.PersonName, 200); err != nil {
		return err
	}
	if err := amount("amount", d.Amount); err != nil {
		return err
	}
	if !d.Type.Valid() {
		return invalid("type", ErrInvalidEnum)
	}
	if err := maxLen("description", d.Description, 500); err != nil {
		return err
	}
	if d.Date.IsEmpty() {
		return invalid("date", ErrEmptyField)
	}
	return nil
}

// TogglePaid flips the settled flag.
func (d *Debt) TogglePaid() {
	d.IsPaid = !d.IsPaid
}

func (p DebtPatch) Apply(d *Debt) {
	if p.PersonName != nil {
		d.PersonName = strings.TrimSpace(*p.PersonName)
	}
	if p.Amount != nil {
		d.Amount = *p.Amount
	}
	if p.Type != nil {
		d.Type = *p.Type
	}
	if p.Description != nil {
		d.Description = strings.TrimSpace(*p.Description)
	}
	if p.Date != nil {
		d.Date = *p.Date
	}
	if p.IsPaid != nil {
		d.IsPaid = *p.IsPaid
	}
}

func (d *Debt) Update(p DebtPatch, now time.Time) error {
	next := *d
	p.Apply(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	next.Touch(now)
	*d = next
	return nil
}
