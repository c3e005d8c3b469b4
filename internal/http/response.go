package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"sindbad/internal/core"
	"sindbad/internal/log"
)

const (
	MsgInvalidJSON = "invalid JSON body"
	MsgValidation  = "validation failed"
	MsgNotFound    = "not found"
	MsgInternal    = "internal error"
)

type apiError struct {
	Error   bool              `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string, fields map[string]string) {
	writeJSON(w, status, apiError{Error: true, Message: msg, Fields: fields})
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) (int, string) {
	switch {
	case core.IsValidation(err):
		return http.StatusUnprocessableEntity, log.ErrorTypeValidation
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, log.ErrorTypeNotFound
	case errors.Is(err, core.ErrInvalidReference):
		return http.StatusConflict, log.ErrorTypeConflict
	default:
		return http.StatusInternalServerError, log.ErrorTypeInternal
	}
}

// respondError writes err with the status of its class. Remote failures keep
// their message so the client sees what went wrong.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, errType := statusFor(err)
	var fields map[string]string
	var ve *core.ValidationError
	if errors.As(err, &ve) && ve.Field != "" {
		fields = map[string]string{ve.Field: ve.Err.Error()}
	}
	if status == http.StatusInternalServerError {
		s.logs.LogError(r.Context(), "Request failed", err, errType, op,
			log.NewFields().WithRequestID(requestID(r)))
	} else {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Request rejected",
			log.FieldOperation, op, log.FieldErrorType, errType, log.FieldError, err.Error())
	}
	writeErr(w, status, err.Error(), fields)
}
