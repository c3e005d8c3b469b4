package core

import (
	"strings"
	"time"
)

type Visa struct {
	Record
	CustomerID      string          `json:"customerId"`
	VisaNumber      string          `json:"visaNumber"`
	IssueDate       Date            `json:"issueDate"`
	ExpiryDate      Date            `json:"expiryDate"`
	DepartureDate   Date            `json:"departureDate"`
	BookingDate     Date            `json:"bookingDate"`
	Status          VisaStatus      `json:"status"`
	TravelDirection TravelDirection `json:"travelDirection"`
	FromLocation    string          `json:"fromLocation"`
	ToLocation      string          `json:"toLocation"`
}

type VisaInput struct {
	CustomerID      string
	VisaNumber      string
	IssueDate       Date
	ExpiryDate      Date
	DepartureDate   Date
	BookingDate     Date
	Status          VisaStatus
	TravelDirection TravelDirection
	FromLocation    string
	ToLocation      string
}

type VisaPatch struct {
	CustomerID      *string
	VisaNumber      *string
	IssueDate       *Date
	ExpiryDate      *Date
	DepartureDate   *Date
	BookingDate     *Date
	Status          *VisaStatus
	TravelDirection *TravelDirection
	FromLocation    *string
	ToLocation      *string
}

// NewVisa builds a validated visa. BookingDate defaults to the creation day and
// the route is stored in its canonical spelling.
func NewVisa(owner string, in VisaInput, now time.Time) (Visa, error) {
	rec, err := newRecord(owner, now)
	if err != nil {
		return Visa{}, err
	}
	if in.Status == "" {
		in.Status = VisaPending
	}
	if in.TravelDirection == "" {
		in.TravelDirection = EgyptToSaudi
	}
	if in.BookingDate.IsEmpty() {
		in.BookingDate = DateOf(now, time.UTC)
	}
	v := Visa{
		Record:          rec,
		CustomerID:      strings.TrimSpace(in.CustomerID),
		VisaNumber:      strings.TrimSpace(in.VisaNumber),
		IssueDate:       in.IssueDate,
		ExpiryDate:      in.ExpiryDate,
		DepartureDate:   in.DepartureDate,
		BookingDate:     in.BookingDate,
		Status:          in.Status,
		TravelDirection: in.TravelDirection,
		FromLocation:    in.FromLocation,
		ToLocation:      in.ToLocation,
	}
	if err := v.normalize(); err != nil {
		return Visa{}, err
	}
	return v, nil
}

func (v *Visa) normalize() error {
	if err := v.Validate(); err != nil {
		return err
	}
	from, to, err := CanonicalRoute(v.TravelDirection, v.FromLocation, v.ToLocation)
	if err != nil {
		return err
	}
	v.FromLocation, v.ToLocation = from, to
	return nil
}

func (v Visa) Validate() error {
	if strings.TrimSpace(v.CustomerID) == "" {
		return invalid("customerId", ErrEmptyField)
	}
	if err := required("visaNumber", v.VisaNumber, 1); err != nil {
		return err
	}
	if err := maxLen("visaNumber", v.VisaNumber, 64); err != nil {
		return err
	}
	if v.IssueDate.IsEmpty() {
		return invalid("issueDate", ErrEmptyField)
	}
	if v.ExpiryDate.IsEmpty() {
		return invalid("expiryDate", ErrEmptyField)
	}
	if v.DepartureDate.IsEmpty() {
		return invalid("departureDate", ErrEmptyField)
	}
	if v.BookingDate.IsEmpty() {
		return invalid("bookingDate", ErrEmptyField)
	}
	if v.ExpiryDate.Before(v.IssueDate) {
		return invalid("expiryDate", ErrExpiryBeforeIssue)
	}
	if !v.Status.Valid() {
		return invalid("status", ErrInvalidEnum)
	}
	if _, _, err := CanonicalRoute(v.TravelDirection, v.FromLocation, v.ToLocation); err != nil {
		return err
	}
	return nil
}

func (p VisaPatch) Apply(v *Visa) {
	if p.CustomerID != nil {
		v.CustomerID = strings.TrimSpace(*p.CustomerID)
	}
	if p.VisaNumber != nil {
		v.VisaNumber = strings.TrimSpace(*p.VisaNumber)
	}
	if p.IssueDate != nil {
		v.IssueDate = *p.IssueDate
	}
	if p.ExpiryDate != nil {
		v.ExpiryDate = *p.ExpiryDate
	}
	if p.DepartureDate != nil {
		v.DepartureDate = *p.DepartureDate
	}
	if p.BookingDate != nil {
		v.BookingDate = *p.BookingDate
	}
	if p.Status != nil {
		v.Status = *p.Status
	}
	if p.TravelDirection != nil {
		v.TravelDirection = *p.TravelDirection
	}
	if p.FromLocation != nil {
		v.FromLocation = *p.FromLocation
	}
	if p.ToLocation != nil {
		v.ToLocation = *p.ToLocation
	}
}

// Update applies p and re-validates the route; v is untouched on failure.
func (v *Visa) Update(p VisaPatch, now time.Time) error {
	next := *v
	p.Apply(&next)
	if err := next.normalize(); err != nil {
		return err
	}
	next.Touch(now)
	*v = next
	return nil
}
