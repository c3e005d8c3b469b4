package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sindbad/internal/report"
	"sindbad/internal/sheets"
)

var _ sheets.ReportWriter = (*Store)(nil)

// Store keeps exported rows in memory. It backs local runs without Google
// credentials and the worker tests.
type Store struct {
	mu   sync.Mutex
	rows [][]any
	keys []string
}

func New() *Store { return &Store{} }

func (s *Store) UpsertDailyRow(_ context.Context, owner string, r report.DailyReport) (string, error) {
	if r.Date.IsEmpty() {
		return "", fmt.Errorf("upsert daily row: missing date")
	}
	row := sheets.Row(owner, r, time.Now().UTC().Format(time.RFC3339))
	key := owner + "|" + r.Date.String()

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, k := range s.keys {
		if k == key {
			s.rows[i] = row
			return fmt.Sprintf("mem:%d", i+1), nil
		}
	}
	s.keys = append(s.keys, key)
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of the stored rows in insertion order.
func (s *Store) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.rows))
	copy(out, s.rows)
	return out
}
