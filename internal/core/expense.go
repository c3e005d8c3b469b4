package core

import (
	"strings"
	"time"
)

type Expense struct {
	Record
	Category    ExpenseCategory `json:"category"`
	Amount      Money           `json:"amount"`
	Description string          `json:"description"`
	Date        Date            `json:"date"`
}

type ExpenseInput struct {
	Category    ExpenseCategory
	Amount      Money
	Description string
	Date        Date
}

type ExpensePatch struct {
	Category    *ExpenseCategory
	Amount      *Money
	Description *string
	Date        *Date
}

// NewExpense builds a validated expense. An empty date means today.
func NewExpense(owner string, in ExpenseInput, now time.Time) (Expense, error) {
	rec, err := newRecord(owner, now)
	if err != nil {
		return Expense{}, err
	}
	if in.Date.IsEmpty() {
		in.Date = DateOf(now, time.UTC)
	}
	e := Expense{
		Record:      rec,
		Category:    in.Category,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date,
	}
	if err := e.Validate(); err != nil {
		return Expense{}, err
	}
	return e, nil
}

func (e Expense) Validate() error {
	if !e.Category.Valid() {
		return invalid("category", ErrInvalidEnum)
	}
	if err := amount("amount", e.Amount); err != nil {
		return err
	}
	if err := required("description", e.Description, 1); err != nil {
		return err
	}
	if err := maxLen("description", e.Description, 200); err != nil {
		return err
	}
	if e.Date.IsEmpty() {
		return invalid("date", ErrEmptyField)
	}
	return nil
}

func (p ExpensePatch) Apply(e *Expense) {
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Description != nil {
		e.Description = strings.TrimSpace(*p.Description)
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
}

func (e *Expense) Update(p ExpensePatch, now time.Time) error {
	next := *e
	p.Apply(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	next.Touch(now)
	*e = next
	return nil
}
