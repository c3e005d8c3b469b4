package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"sindbad/internal/core"
)

const maxBodyBytes = 1 << 20

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type customerRequest struct {
	FullName    string `json:"fullName" validate:"required,max=200"`
	PhoneNumber string `json:"phoneNumber" validate:"required,max=32"`
	NationalID  string `json:"nationalId" validate:"required,max=32"`
	Address     string `json:"address" validate:"max=500"`
	Program     string `json:"program" validate:"max=200"`
	VisaStatus  string `json:"visaStatus" validate:"omitempty,oneof=pending processing approved rejected issued expired"`
	Notes       string `json:"notes" validate:"max=2000"`
}

func (r customerRequest) input() core.CustomerInput {
	return core.CustomerInput{
		FullName:   r.FullName,
		Phone:      r.PhoneNumber,
		NationalID: r.NationalID,
		Address:    r.Address,
		Program:    r.Program,
		VisaStatus: core.CustomerVisaStatus(r.VisaStatus),
		Notes:      r.Notes,
	}
}

type customerPatchRequest struct {
	FullName    *string `json:"fullName" validate:"omitempty,max=200"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,max=32"`
	NationalID  *string `json:"nationalId" validate:"omitempty,max=32"`
	Address     *string `json:"address" validate:"omitempty,max=500"`
	Program     *string `json:"program" validate:"omitempty,max=200"`
	VisaStatus  *string `json:"visaStatus" validate:"omitempty,oneof=pending processing approved rejected issued expired"`
	Notes       *string `json:"notes" validate:"omitempty,max=2000"`
}

func (r customerPatchRequest) patch() core.CustomerPatch {
	p := core.CustomerPatch{
		FullName:   r.FullName,
		Phone:      r.PhoneNumber,
		NationalID: r.NationalID,
		Address:    r.Address,
		Program:    r.Program,
		Notes:      r.Notes,
	}
	if r.VisaStatus != nil {
		s := core.CustomerVisaStatus(*r.VisaStatus)
		p.VisaStatus = &s
	}
	return p
}

type bookingRequest struct {
	CustomerID      string      `json:"customerId" validate:"required"`
	ProgramName     string      `json:"programName" validate:"required,max=200"`
	TotalAmount     *core.Money `json:"totalAmount" validate:"required"`
	VisaDeposit     *core.Money `json:"visaDeposit" validate:"required"`
	IsPaid          bool        `json:"isPaid"`
	TravelDirection string      `json:"travelDirection" validate:"omitempty,oneof=egypt-to-saudi saudi-to-egypt"`
	FromLocation    string      `json:"fromLocation" validate:"max=100"`
	ToLocation      string      `json:"toLocation" validate:"max=100"`
	DepartureDate   core.Date   `json:"departureDate"`
}

func (r bookingRequest) input() core.BookingInput {
	return core.BookingInput{
		CustomerID:      r.CustomerID,
		ProgramName:     r.ProgramName,
		TotalAmount:     *r.TotalAmount,
		VisaDeposit:     *r.VisaDeposit,
		IsPaid:          r.IsPaid,
		TravelDirection: core.TravelDirection(r.TravelDirection),
		FromLocation:    r.FromLocation,
		ToLocation:      r.ToLocation,
		DepartureDate:   r.DepartureDate,
	}
}

type bookingPatchRequest struct {
	CustomerID      *string     `json:"customerId" validate:"omitempty,min=1"`
	ProgramName     *string     `json:"programName" validate:"omitempty,max=200"`
	TotalAmount     *core.Money `json:"totalAmount"`
	VisaDeposit     *core.Money `json:"visaDeposit"`
	IsPaid          *bool       `json:"isPaid"`
	TravelDirection *string     `json:"travelDirection" validate:"omitempty,oneof=egypt-to-saudi saudi-to-egypt"`
	FromLocation    *string     `json:"fromLocation" validate:"omitempty,max=100"`
	ToLocation      *string     `json:"toLocation" validate:"omitempty,max=100"`
	DepartureDate   *core.Date  `json:"departureDate"`
}

func (r bookingPatchRequest) patch() core.BookingPatch {
	p := core.BookingPatch{
		CustomerID:    r.CustomerID,
		ProgramName:   r.ProgramName,
		TotalAmount:   r.TotalAmount,
		VisaDeposit:   r.VisaDeposit,
		IsPaid:        r.IsPaid,
		FromLocation:  r.FromLocation,
		ToLocation:    r.ToLocation,
		DepartureDate: r.DepartureDate,
	}
	if r.TravelDirection != nil {
		d := core.TravelDirection(*r.TravelDirection)
		p.TravelDirection = &d
	}
	return p
}

type visaRequest struct {
	CustomerID      string    `json:"customerId" validate:"required"`
	VisaNumber      string    `json:"visaNumber" validate:"required,max=64"`
	IssueDate       core.Date `json:"issueDate"`
	ExpiryDate      core.Date `json:"expiryDate"`
	DepartureDate   core.Date `json:"departureDate"`
	BookingDate     core.Date `json:"bookingDate"`
	Status          string    `json:"status" validate:"omitempty,oneof=pending issued expired"`
	TravelDirection string    `json:"travelDirection" validate:"omitempty,oneof=egypt-to-saudi saudi-to-egypt"`
	FromLocation    string    `json:"fromLocation" validate:"required,max=100"`
	ToLocation      string    `json:"toLocation" validate:"required,max=100"`
}

func (r visaRequest) input() core.VisaInput {
	return core.VisaInput{
		CustomerID:      r.CustomerID,
		VisaNumber:      r.VisaNumber,
		IssueDate:       r.IssueDate,
		ExpiryDate:      r.ExpiryDate,
		DepartureDate:   r.DepartureDate,
		BookingDate:     r.BookingDate,
		Status:          core.VisaStatus(r.Status),
		TravelDirection: core.TravelDirection(r.TravelDirection),
		FromLocation:    r.FromLocation,
		ToLocation:      r.ToLocation,
	}
}

type visaPatchRequest struct {
	CustomerID      *string    `json:"customerId" validate:"omitempty,min=1"`
	VisaNumber      *string    `json:"visaNumber" validate:"omitempty,max=64"`
	IssueDate       *core.Date `json:"issueDate"`
	ExpiryDate      *core.Date `json:"expiryDate"`
	DepartureDate   *core.Date `json:"departureDate"`
	BookingDate     *core.Date `json:"bookingDate"`
	Status          *string    `json:"status" validate:"omitempty,oneof=pending issued expired"`
	TravelDirection *string    `json:"travelDirection" validate:"omitempty,oneof=egypt-to-saudi saudi-to-egypt"`
	FromLocation    *string    `json:"fromLocation" validate:"omitempty,max=100"`
	ToLocation      *string    `json:"toLocation" validate:"omitempty,max=100"`
}

func (r visaPatchRequest) patch() core.VisaPatch {
	p := core.VisaPatch{
		CustomerID:    r.CustomerID,
		VisaNumber:    r.VisaNumber,
		IssueDate:     r.IssueDate,
		ExpiryDate:    r.ExpiryDate,
		DepartureDate: r.DepartureDate,
		BookingDate:   r.BookingDate,
		FromLocation:  r.FromLocation,
		ToLocation:    r.ToLocation,
	}
	if r.Status != nil {
		s := core.VisaStatus(*r.Status)
		p.Status = &s
	}
	if r.TravelDirection != nil {
		d := core.TravelDirection(*r.TravelDirection)
		p.TravelDirection = &d
	}
	return p
}

type expenseRequest struct {
	Category    string      `json:"category" validate:"required,oneof=office transport marketing salaries utilities other"`
	Amount      *core.Money `json:"amount" validate:"required"`
	Description string      `json:"description" validate:"required,max=200"`
	Date        core.Date   `json:"date"`
}

func (r expenseRequest) input() core.ExpenseInput {
	return core.ExpenseInput{
		Category:    core.ExpenseCategory(r.Category),
		Amount:      *r.Amount,
		Description: r.Description,
		Date:        r.Date,
	}
}

type expensePatchRequest struct {
	Category    *string     `json:"category" validate:"omitempty,oneof=office transport marketing salaries utilities other"`
	Amount      *core.Money `json:"amount"`
	Description *string     `json:"description" validate:"omitempty,max=200"`
	Date        *core.Date  `json:"date"`
}

func (r expensePatchRequest) patch() core.ExpensePatch {
	p := core.ExpensePatch{
		Amount:      r.Amount,
		Description: r.Description,
		Date:        r.Date,
	}
	if r.Category != nil {
		c := core.ExpenseCategory(*r.Category)
		p.Category = &c
	}
	return p
}

type debtRequest struct {
	PersonName  string      `json:"personName" validate:"required,max=200"`
	Amount      *core.Money `json:"amount" validate:"required"`
	Type        string      `json:"type" validate:"required,oneof=receivable payable"`
	Description string      `json:"description" validate:"max=500"`
	Date        core.Date   `json:"date"`
	IsPaid      bool        `json:"isPaid"`
}

func (r debtRequest) input() core.DebtInput {
	return core.DebtInput{
		PersonName:  r.PersonName,
		Amount:      *r.Amount,
		Type:        core.DebtType(r.Type),
		Description: r.Description,
		Date:        r.Date,
		IsPaid:      r.IsPaid,
	}
}

type debtPatchRequest struct {
	PersonName  *string     `json:"personName" validate:"omitempty,max=200"`
	Amount      *core.Money `json:"amount"`
	Type        *string     `json:"type" validate:"omitempty,oneof=receivable payable"`
	Description *string     `json:"description" validate:"omitempty,max=500"`
	Date        *core.Date  `json:"date"`
	IsPaid      *bool       `json:"isPaid"`
}

func (r debtPatchRequest) patch() core.DebtPatch {
	p := core.DebtPatch{
		PersonName:  r.PersonName,
		Amount:      r.Amount,
		Description: r.Description,
		Date:        r.Date,
		IsPaid:      r.IsPaid,
	}
	if r.Type != nil {
		t := core.DebtType(*r.Type)
		p.Type = &t
	}
	return p
}

// decode reads a JSON body into dst and validates it. On failure it writes
// the response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidAmount), errors.Is(err, core.ErrInvalidDate):
			writeErr(w, http.StatusUnprocessableEntity, err.Error(), nil)
		case errors.Is(err, io.EOF):
			writeErr(w, http.StatusBadRequest, MsgInvalidJSON+": empty body", nil)
		default:
			writeErr(w, http.StatusBadRequest, fmt.Sprintf("%s: %v", MsgInvalidJSON, err), nil)
		}
		return false
	}
	if err := s.val.Struct(dst); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			writeErr(w, http.StatusBadRequest, err.Error(), nil)
			return false
		}
		fields := make(map[string]string, len(ves))
		for _, fe := range ves {
			fields[fe.Field()] = describe(fe)
		}
		writeErr(w, http.StatusUnprocessableEntity, MsgValidation, fields)
		return false
	}
	return true
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must not be empty"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
