package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"sindbad/internal/core"
	"sindbad/internal/report"
)

// fakeSheets serves the two Values endpoints the client uses.
type fakeSheets struct {
	mu      sync.Mutex
	keys    [][]any
	updates []gsheet.ValueRange
	paths   []string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch r.Method {
	case http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"values": f.keys})
	case http.MethodPut:
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.updates = append(f.updates, vr)
		f.paths = append(f.paths, r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"updatedRows": 1})
	default:
		http.Error(w, "unexpected", http.StatusMethodNotAllowed)
	}
}

func newTestClient(t *testing.T, f *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	c := NewWithService(svc, "sheet-id", "Daily")
	c.now = func() time.Time { return time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC) }
	return c
}

func dailyReport() report.DailyReport {
	return report.DailyReport{
		Kind:        report.ReportKind,
		Date:        core.NewDate(2025, 3, 14),
		DailyIncome: core.FromPounds(2000),
		DailyProfit: core.FromPounds(2000),
	}
}

func TestUpsertDailyRowReplacesExisting(t *testing.T) {
	f := &fakeSheets{keys: [][]any{
		{"Date", "Owner"},
		{"2025-03-13", "owner-a"},
		{"2025-03-14", "owner-a"},
	}}
	c := newTestClient(t, f)

	ref, err := c.UpsertDailyRow(t.Context(), "owner-a", dailyReport())
	require.NoError(t, err)
	assert.Equal(t, "Daily!A3:J3", ref)

	require.Len(t, f.updates, 1)
	row := f.updates[0].Values[0]
	assert.Equal(t, "2025-03-14", row[0])
	assert.Equal(t, "owner-a", row[1])
	assert.Equal(t, "2000.00", row[2])
}

func TestUpsertDailyRowAppendsAndWritesHeader(t *testing.T) {
	f := &fakeSheets{}
	c := newTestClient(t, f)

	ref, err := c.UpsertDailyRow(t.Context(), "owner-a", dailyReport())
	require.NoError(t, err)
	assert.Equal(t, "Daily!A2:J2", ref)

	require.Len(t, f.updates, 2)
	assert.Equal(t, "Date", f.updates[0].Values[0][0])
	assert.True(t, strings.Contains(f.paths[1], "A2:J2"), f.paths[1])
}

func TestUpsertDailyRowWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	_, err := c.UpsertDailyRow(t.Context(), "owner-a", dailyReport())
	assert.Error(t, err)
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	_, err := New(t.Context(), Config{})
	require.Error(t, err)
	assert.Equal(t, "missing GOOGLE_SPREADSHEET_ID", err.Error())
}
