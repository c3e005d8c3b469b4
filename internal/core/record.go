package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record carries the identity and bookkeeping columns shared by every entity.
type Record struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newRecord(owner string, now time.Time) (Record, error) {
	if strings.TrimSpace(owner) == "" {
		return Record{}, invalid("ownerId", ErrEmptyField)
	}
	now = now.UTC()
	return Record{
		ID:        uuid.NewString(),
		OwnerID:   owner,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Touch bumps UpdatedAt.
func (r *Record) Touch(now time.Time) {
	r.UpdatedAt = now.UTC()
}

// ValidID reports whether s looks like an identifier produced by this package.
func ValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func required(field, value string, min int) error {
	v := strings.TrimSpace(value)
	if v == "" {
		return invalid(field, ErrEmptyField)
	}
	if len([]rune(v)) < min {
		return invalid(field, ErrEmptyField)
	}
	return nil
}

func maxLen(field, value string, max int) error {
	if len([]rune(value)) > max {
		return invalid(field, ErrTooLong)
	}
	return nil
}

func amount(field string, m Money) error {
	if err := m.Validate(); err != nil {
		return invalid(field, err)
	}
	return nil
}
