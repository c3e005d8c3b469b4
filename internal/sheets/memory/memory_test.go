package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sindbad/internal/core"
	"sindbad/internal/report"
)

func TestUpsertReplacesSameDay(t *testing.T) {
	s := New()
	r := report.DailyReport{Date: core.NewDate(2025, 3, 14), DailyIncome: core.FromPounds(100)}

	ref1, err := s.UpsertDailyRow(t.Context(), "owner-a", r)
	require.NoError(t, err)

	r.DailyIncome = core.FromPounds(250)
	ref2, err := s.UpsertDailyRow(t.Context(), "owner-a", r)
	require.NoError(t, err)
	assert.Equal(t, ref1, ref2)

	_, err = s.UpsertDailyRow(t.Context(), "owner-b", r)
	require.NoError(t, err)

	rows := s.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "250.00", rows[0][2])
}

func TestUpsertRequiresDate(t *testing.T) {
	_, err := New().UpsertDailyRow(t.Context(), "owner-a", report.DailyReport{})
	assert.Error(t, err)
}
