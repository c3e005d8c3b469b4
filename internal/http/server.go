package http

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"sindbad/internal/log"
	"sindbad/internal/services"
	appweb "sindbad/web"
)

// OwnerHeader selects the owner every request is scoped to.
const OwnerHeader = "X-Owner-ID"

const requestIDHeader = "X-Request-ID"

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the API serves.
type Deps struct {
	Records      *services.RecordService
	Reports      *services.ReportService
	Store        Pinger
	DefaultOwner string
	// RateLimit is the number of mutating requests allowed per client and minute.
	RateLimit int
	Logger    *log.Logger
}

type Server struct {
	http.Server
	records      *services.RecordService
	reports      *services.ReportService
	store        Pinger
	defaultOwner string
	val          *validator.Validate
	templates    *template.Template
	logger       *log.Logger
	logs         *log.StructuredLogger
	rateLimiter  *rateLimiter
	metrics      *securityMetrics
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		records:      deps.Records,
		reports:      deps.Reports,
		store:        deps.Store,
		defaultOwner: deps.DefaultOwner,
		val:          newValidator(),
		logger:       logger,
		logs:         log.NewStructuredLogger(logger),
		rateLimiter:  newRateLimiter(deps.RateLimit),
		metrics:      &securityMetrics{},
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeErr(w, http.StatusNotFound, MsgNotFound, nil)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(s.withRequestContext, s.withAccessLog, securityHeaders, s.withRateLimit)

	api.HandleFunc("/customers", s.listCustomers).Methods(http.MethodGet)
	api.HandleFunc("/customers", s.createCustomer).Methods(http.MethodPost)
	api.HandleFunc("/customers/{id}", s.getCustomer).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id}", s.updateCustomer).Methods(http.MethodPatch)
	api.HandleFunc("/customers/{id}", s.deleteCustomer).Methods(http.MethodDelete)

	api.HandleFunc("/bookings", s.listBookings).Methods(http.MethodGet)
	api.HandleFunc("/bookings", s.createBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}", s.getBooking).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id}", s.updateBooking).Methods(http.MethodPatch)
	api.HandleFunc("/bookings/{id}", s.deleteBooking).Methods(http.MethodDelete)
	api.HandleFunc("/bookings/{id}/toggle-payment", s.toggleBookingPayment).Methods(http.MethodPost)

	api.HandleFunc("/visas", s.listVisas).Methods(http.MethodGet)
	api.HandleFunc("/visas", s.createVisa).Methods(http.MethodPost)
	api.HandleFunc("/visas/{id}", s.getVisa).Methods(http.MethodGet)
	api.HandleFunc("/visas/{id}", s.updateVisa).Methods(http.MethodPatch)
	api.HandleFunc("/visas/{id}", s.deleteVisa).Methods(http.MethodDelete)
	api.HandleFunc("/visas/{id}/card", s.visaCard).Methods(http.MethodGet)
	api.HandleFunc("/visas/{id}/share", s.visaShare).Methods(http.MethodGet)

	api.HandleFunc("/expenses", s.listExpenses).Methods(http.MethodGet)
	api.HandleFunc("/expenses", s.createExpense).Methods(http.MethodPost)
	api.HandleFunc("/expenses/{id}", s.getExpense).Methods(http.MethodGet)
	api.HandleFunc("/expenses/{id}", s.updateExpense).Methods(http.MethodPatch)
	api.HandleFunc("/expenses/{id}", s.deleteExpense).Methods(http.MethodDelete)

	api.HandleFunc("/debts", s.listDebts).Methods(http.MethodGet)
	api.HandleFunc("/debts", s.createDebt).Methods(http.MethodPost)
	api.HandleFunc("/debts/{id}", s.getDebt).Methods(http.MethodGet)
	api.HandleFunc("/debts/{id}", s.updateDebt).Methods(http.MethodPatch)
	api.HandleFunc("/debts/{id}", s.deleteDebt).Methods(http.MethodDelete)
	api.HandleFunc("/debts/{id}/toggle-paid", s.toggleDebtPaid).Methods(http.MethodPost)

	api.HandleFunc("/reports/summary", s.reportSummary).Methods(http.MethodGet)
	api.HandleFunc("/reports/daily", s.reportDaily).Methods(http.MethodGet)
	api.HandleFunc("/reports/daily/export", s.reportDailyExport).Methods(http.MethodGet)
	api.HandleFunc("/reports/import", s.reportImport).Methods(http.MethodPost)
	api.HandleFunc("/reports/categories", s.reportCategories).Methods(http.MethodGet)
	api.HandleFunc("/dashboard", s.dashboard).Methods(http.MethodGet)

	return r
}

// Shutdown gracefully shuts down the server and the rate limiter cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// owner returns the owner the request acts for.
func (s *Server) owner(r *http.Request) string {
	if o := strings.TrimSpace(r.Header.Get(OwnerHeader)); o != "" {
		return o
	}
	return s.defaultOwner
}

type requestIDKey struct{}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}

// withRequestContext assigns a request ID and stores a logger carrying it.
func (s *Server) withRequestContext(next http.Handler) http.Handler {
	attach := log.RequestIDMiddleware(requestID)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		ctx = log.WithLogger(ctx, s.logger)
		attach(next).ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		s.logs.LogHTTPEnd(r.Context(), r, rw.statusCode, time.Since(start).Milliseconds(), extractClientIP(r))
	})
}

// withRateLimit throttles mutating requests per client IP.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		clientIP := extractClientIP(r)
		if !s.rateLimiter.allow(clientIP, s.metrics) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldClientIP, clientIP, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeErr(w, http.StatusTooManyRequests, "rate limit exceeded, try again later", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ready",
		"rate_limit_hits": s.metrics.RateLimitHits(),
	})
}
