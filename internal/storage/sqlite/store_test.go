package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"sindbad/internal/core"
	"sindbad/internal/storage"
	"sindbad/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Repository {
		s, err := Open(filepath.Join(t.TempDir(), "sindbad.db"))
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		return s
	})
}

func TestOpenTwiceKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sindbad.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	c, err := core.NewCustomer("owner", core.CustomerInput{FullName: "Ahmed Ali", Phone: "01012345678", NationalID: "12345"}, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.CreateCustomer(t.Context(), c); err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.GetCustomer(t.Context(), "owner", c.ID)
	if err != nil {
		t.Fatalf("GetCustomer after reopen: %v", err)
	}
	if got.FullName != c.FullName {
		t.Fatalf("unexpected name %q", got.FullName)
	}
}

func TestTimeLayoutSorts(t *testing.T) {
	a := formatTime(time.Date(2025, 1, 1, 0, 0, 0, 5, time.UTC))
	b := formatTime(time.Date(2025, 1, 1, 0, 0, 0, 500000000, time.UTC))
	if !(a < b) {
		t.Fatalf("expected %s < %s", a, b)
	}
	parsed, err := parseTime(a)
	if err != nil || parsed.Nanosecond() != 5 {
		t.Fatalf("round trip: %v %v", parsed, err)
	}
}
