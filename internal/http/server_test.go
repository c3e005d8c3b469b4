package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sindbad/internal/log"
	"sindbad/internal/services"
	"sindbad/internal/storage/memory"
)

const testOwner = "owner-a"

var fixedNow = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

func newTestServer(t *testing.T, rateLimit int) *Server {
	t.Helper()
	store := memory.New()
	clock := func() time.Time { return fixedNow }
	s := NewServer(":0", Deps{
		Records:      services.NewRecordService(store, nil, services.WithClock(clock)),
		Reports:      services.NewReportService(store, time.UTC, clock),
		Store:        store,
		DefaultOwner: testOwner,
		RateLimit:    rateLimit,
		Logger:       log.New(log.Config{Output: io.Discard}),
	})
	t.Cleanup(func() { s.rateLimiter.stop() })
	return s
}

func do(t *testing.T, s *Server, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func createCustomer(t *testing.T, s *Server) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/customers", map[string]any{
		"fullName":    "Ahmed Hassan",
		"phoneNumber": "01012345678",
		"nationalId":  "29801011234567",
		"program":     "Umrah",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody(t, rec)["id"].(string)
}

func createBooking(t *testing.T, s *Server, customerID string) map[string]any {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/bookings", map[string]any{
		"customerId":  customerID,
		"programName": "Umrah 15 days",
		"totalAmount": 10000,
		"visaDeposit": "2000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody(t, rec)
}

func TestBookingTogglePaymentRoundTrip(t *testing.T) {
	s := newTestServer(t, 100)
	b := createBooking(t, s, createCustomer(t, s))
	assert.Equal(t, "8000.00", b["remainingAmount"])
	assert.Equal(t, false, b["isPaid"])

	path := "/bookings/" + b["id"].(string) + "/toggle-payment"
	rec := do(t, s, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, true, got["isPaid"])
	assert.Equal(t, "0.00", got["remainingAmount"])

	rec = do(t, s, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decodeBody(t, rec)
	assert.Equal(t, false, got["isPaid"])
	assert.Equal(t, "8000.00", got["remainingAmount"])
}

func TestErrorStatuses(t *testing.T) {
	s := newTestServer(t, 100)
	customerID := createCustomer(t, s)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		field  string
	}{
		{"missing required field", http.MethodPost, "/customers", map[string]any{"phoneNumber": "01012345678", "nationalId": "12345"}, http.StatusUnprocessableEntity, "fullName"},
		{"bad enum", http.MethodPost, "/expenses", map[string]any{"category": "food", "amount": 10, "description": "x"}, http.StatusUnprocessableEntity, "category"},
		{"deposit above total", http.MethodPost, "/bookings", map[string]any{"customerId": customerID, "programName": "Hajj", "totalAmount": 100, "visaDeposit": 200}, http.StatusUnprocessableEntity, "visaDeposit"},
		{"bad amount", http.MethodPost, "/expenses", `{"category":"office","amount":"abc","description":"rent"}`, http.StatusUnprocessableEntity, ""},
		{"overflowing amount", http.MethodPost, "/bookings", `{"customerId":"x","programName":"Hajj","totalAmount":"184467440737095516.16","visaDeposit":0}`, http.StatusUnprocessableEntity, ""},
		{"malformed json", http.MethodPost, "/debts", `{"personName":`, http.StatusBadRequest, ""},
		{"unknown customer", http.MethodPost, "/bookings", map[string]any{"customerId": "missing", "programName": "Hajj", "totalAmount": 100, "visaDeposit": 50}, http.StatusConflict, ""},
		{"unknown booking", http.MethodGet, "/bookings/missing", nil, http.StatusNotFound, ""},
		{"unknown debt toggle", http.MethodPost, "/debts/missing/toggle-paid", nil, http.StatusNotFound, ""},
		{"bad report date", http.MethodGet, "/reports/daily?date=14-03-2025", nil, http.StatusUnprocessableEntity, "date"},
		{"unknown route", http.MethodGet, "/nope", nil, http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			body := decodeBody(t, rec)
			assert.Equal(t, true, body["error"])
			if tt.field != "" {
				fields, ok := body["fields"].(map[string]any)
				require.True(t, ok, rec.Body.String())
				assert.Contains(t, fields, tt.field)
			}
		})
	}
}

func TestOwnerScoping(t *testing.T) {
	s := newTestServer(t, 100)
	id := createCustomer(t, s)

	rec := do(t, s, http.MethodGet, "/customers/"+id, nil, OwnerHeader, "owner-b")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/customers", nil, OwnerHeader, "owner-b")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["total"])

	rec = do(t, s, http.MethodGet, "/customers/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteCustomerCascades(t *testing.T) {
	s := newTestServer(t, 100)
	id := createCustomer(t, s)
	createBooking(t, s, id)
	rec := do(t, s, http.MethodPost, "/visas", map[string]any{
		"customerId":    id,
		"visaNumber":    "V-1001",
		"issueDate":     "2025-03-01",
		"expiryDate":    "2025-09-01",
		"departureDate": "2025-04-01",
		"fromLocation":  "Cairo",
		"toLocation":    "Jeddah",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodDelete, "/customers/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["deletedBookings"])
	assert.Equal(t, float64(1), body["deletedVisas"])

	for _, path := range []string{"/bookings", "/visas"} {
		rec = do(t, s, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(0), decodeBody(t, rec)["total"], path)
	}
}

func TestUpdateExpenseAndDebt(t *testing.T) {
	s := newTestServer(t, 100)

	rec := do(t, s, http.MethodPost, "/expenses", map[string]any{"category": "office", "amount": 500, "description": "rent"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	exp := decodeBody(t, rec)
	assert.Equal(t, "2025-03-14", exp["date"])

	rec = do(t, s, http.MethodPatch, "/expenses/"+exp["id"].(string), map[string]any{"amount": "750.50"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "750.50", decodeBody(t, rec)["amount"])
	assert.Equal(t, "rent", decodeBody(t, rec)["description"])

	rec = do(t, s, http.MethodPost, "/debts", map[string]any{"personName": "Mahmoud", "amount": 1000, "type": "receivable"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	debtID := decodeBody(t, rec)["id"].(string)

	rec = do(t, s, http.MethodPost, "/debts/"+debtID+"/toggle-paid", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["isPaid"])

	rec = do(t, s, http.MethodDelete, "/debts/"+debtID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s, http.MethodGet, "/debts/"+debtID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDailyExportImport(t *testing.T) {
	s := newTestServer(t, 100)
	createBooking(t, s, createCustomer(t, s))
	rec := do(t, s, http.MethodPost, "/expenses", map[string]any{"category": "transport", "amount": 500, "description": "bus"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodGet, "/reports/daily/export?date=2025-03-14", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "daily-report-2025-03-14.json")
	exported := rec.Body.Bytes()

	rec = do(t, s, http.MethodPost, "/reports/import", string(exported))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["match"])
	recomputed := body["recomputed"].(map[string]any)
	assert.Equal(t, "2000.00", recomputed["dailyIncome"])
	assert.Equal(t, "500.00", recomputed["dailyExpenses"])
	assert.Equal(t, "1500.00", recomputed["dailyProfit"])

	var doc map[string]any
	require.NoError(t, json.Unmarshal(exported, &doc))
	doc["dailyIncome"] = "9999.00"
	tampered, err := json.Marshal(doc)
	require.NoError(t, err)
	rec = do(t, s, http.MethodPost, "/reports/import", string(tampered))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["match"])

	rec = do(t, s, http.MethodPost, "/reports/import", `{"kind":"something-else"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSummaryAndDashboard(t *testing.T) {
	s := newTestServer(t, 100)
	createBooking(t, s, createCustomer(t, s))

	rec := do(t, s, http.MethodGet, "/reports/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2000.00", decodeBody(t, rec)["totalIncome"])

	rec = do(t, s, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/reports/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestVisaCardAndShare(t *testing.T) {
	s := newTestServer(t, 100)
	id := createCustomer(t, s)
	rec := do(t, s, http.MethodPost, "/visas", map[string]any{
		"customerId":    id,
		"visaNumber":    "V-2002",
		"issueDate":     "2025-03-01",
		"expiryDate":    "2025-09-01",
		"departureDate": "2025-04-01",
		"fromLocation":  "giza",
		"toLocation":    "makkah",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	visaID := decodeBody(t, rec)["id"].(string)

	rec = do(t, s, http.MethodGet, "/visas/"+visaID+"/card", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "V-2002")
	assert.Contains(t, rec.Body.String(), "Ahmed Hassan")
	assert.Contains(t, rec.Body.String(), "Makkah")

	rec = do(t, s, http.MethodGet, "/visas/"+visaID+"/share", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(decodeBody(t, rec)["link"].(string), "https://wa.me/201012345678?text="))

	rec = do(t, s, http.MethodGet, "/visas/"+visaID+"/share?phone=0111-222-3333", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(decodeBody(t, rec)["link"].(string), "https://wa.me/201112223333?text="))
}

func TestRateLimitAppliesToMutations(t *testing.T) {
	s := newTestServer(t, 2)
	body := map[string]any{"category": "office", "amount": 5, "description": "pens"}

	for range 2 {
		rec := do(t, s, http.MethodPost, "/expenses", body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := do(t, s, http.MethodPost, "/expenses", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	rec = do(t, s, http.MethodGet, "/expenses", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), s.metrics.RateLimitHits())
}

func TestHealthAndHeaders(t *testing.T) {
	s := newTestServer(t, 100)

	rec := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decodeBody(t, rec)["status"])

	rec = do(t, s, http.MethodGet, "/customers", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"direct", "203.0.113.9:1234", "", "203.0.113.9"},
		{"untrusted peer ignores header", "203.0.113.9:1234", "198.51.100.1", "203.0.113.9"},
		{"trusted proxy", "10.0.0.2:80", "198.51.100.1, 10.0.0.2", "198.51.100.1"},
		{"trusted proxy bad header", "10.0.0.2:80", "garbage", "10.0.0.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, extractClientIP(r))
		})
	}
}
