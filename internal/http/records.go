package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"sindbad/internal/log"
)

// listResponse wraps collections so totals can be added without breaking clients.
type listResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

func list[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Data: items, Total: len(items)}
}

func idVar(r *http.Request) string { return mux.Vars(r)["id"] }

func (s *Server) listCustomers(w http.ResponseWriter, r *http.Request) {
	out, err := s.records.ListCustomers(r.Context(), s.owner(r))
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, list(out))
}

func (s *Server) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !s.decode(w, r, &req) {
		return
	}
	c, err := s.records.CreateCustomer(r.Context(), s.owner(r), req.input())
	if err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) getCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := s.records.GetCustomer(r.Context(), s.owner(r), idVar(r))
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) updateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerPatchRequest
	if !s.decode(w, r, &req) {
		return
	}
	c, err := s.records.UpdateCustomer(r.Context(), s.owner(r), idVar(r), req.patch())
	if err != nil {
		s.respondError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type customerDeleted struct {
	ID              string `json:"id"`
	DeletedBookings int    `json:"deletedBookings"`
	DeletedVisas    int    `json:"deletedVisas"`
}

func (s *Server) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id := idVar(r)
	res, err := s.records.DeleteCustomer(r.Context(), s.owner(r), id)
	if err != nil {
		s.respondError(w, r, log.OpDelete, err)
		return
	}
	writeJSON(w, http.StatusOK, customerDeleted{ID: id, DeletedBookings: res.Bookings, DeletedVisas: res.Visas})
}

func (s *Server) listBookings(w http.ResponseWriter, r *http.Request) {
	out, err := s.records.ListBookings(r.Context(), s.owner(r))
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, list(out))
}

func (s *Server) createBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if !s.decode(w, r, &req) {
		return
	}
	b, err := s.records.CreateBooking(r.Context(), s.owner(r), req.input())
	if err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) getBooking(w http.ResponseWriter, r *http.Request) {
	b, err := s.records.GetBooking(r.Context(), s.owner(r), idVar(r))
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) updateBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingPatchRequest
	if !s.decode(w, r, &req) {
		return
	}
	b, err := s.records.UpdateBooking(r.Context(), s.owner(r), idVar(r), req.patch())
	if err != nil {
		s.respondError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) toggleBookingPayment(w http.ResponseWriter, r *http.Request) {
	b, err := s.records.ToggleBookingPayment(r.Context(), s.owner(r), idVar(r))
	if err != nil {
		s.respondError(w, r, log.OpToggle, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) deleteBooking(w http.ResponseWriter, r *http.Request) {
	if err := s.records.DeleteBooking(r.Context(), s.owner(r), idVar(r)); err != nil {
		s.respondError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listVisas(w http.ResponseWriter, r *http.Request) {
	out, err := s.records.ListVisas(r.Context(), s.owner(r))
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, list(out))
}

func (s *Server) createVisa(w http.ResponseWriter, r *http.Request) {
	var req visaRequest
	if !s.decode(w, r, &req) {
		return
	}
	v, err := s.records.CreateVisa(r.Context(), s.owner(r), req.input())
	if err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) getVisa(w http.ResponseWriter, r *http.Request) {
	v, err := s.records.GetVisa(r.Context(), s.owner(r), idVar(r))
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) updateVisa(w http.ResponseWriter, r *http.Request) {
	var req visaPatchRequest
	if !s.decode(w, r, &req) {
		return
	}
	v, err := s.records.UpdateVisa(r.Context(), s.owner(r), idVar(r), req.patch())
	if err != nil {
		s.respondError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) deleteVisa(w http.ResponseWriter, r *http.Request) {
	if err := s.records.DeleteVisa(r.Context(), s.owner(r), idVar(r)); err != nil {
		s.respondError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	out, err := s.records.ListExpenses(r.Context(), s.owner(r))
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, list(out))
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !s.decode(w, r, &req) {
		return
	}
	e, err := s.records.CreateExpense(r.Context(), s.owner(r), req.input())
	if err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) getExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.records.GetExpense(r.Context(), s.owner(r), idVar(r))
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) updateExpense(w http.ResponseWriter, r *http.Request) {
	var req expensePatchRequest
	if !s.decode(w, r, &req) {
		return
	}
	e, err := s.records.UpdateExpense(r.Context(), s.owner(r), idVar(r), req.patch())
	if err != nil {
		s.respondError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.records.DeleteExpense(r.Context(), s.owner(r), idVar(r)); err != nil {
		s.respondError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listDebts(w http.ResponseWriter, r *http.Request) {
	out, err := s.records.ListDebts(r.Context(), s.owner(r))
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, list(out))
}

func (s *Server) createDebt(w http.ResponseWriter, r *http.Request) {
	var req debtRequest
	if !s.decode(w, r, &req) {
		return
	}
	d, err := s.records.CreateDebt(r.Context(), s.owner(r), req.input())
	if err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) getDebt(w http.ResponseWriter, r *http.Request) {
	d, err := s.records.GetDebt(r.Context(), s.owner(r), idVar(r))
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) updateDebt(w http.ResponseWriter, r *http.Request) {
	var req debtPatchRequest
	if !s.decode(w, r, &req) {
		return
	}
	d, err := s.records.UpdateDebt(r.Context(), s.owner(r), idVar(r), req.patch())
	if err != nil {
		s.respondError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) toggleDebtPaid(w http.ResponseWriter, r *http.Request) {
	d, err := s.records.ToggleDebtPaid(r.Context(), s.owner(r), idVar(r))
	if err != nil {
		s.respondError(w, r, log.OpToggle, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) deleteDebt(w http.ResponseWriter, r *http.Request) {
	if err := s.records.DeleteDebt(r.Context(), s.owner(r), idVar(r)); err != nil {
		s.respondError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
