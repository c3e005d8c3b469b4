package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"sindbad/internal/core"
	"sindbad/internal/storage"
)

const bookingColumns = `id, owner_id, customer_id, program_name, total_cents, deposit_cents, remaining_cents,
	is_paid, travel_direction, from_location, to_location, departure_date, created_at, updated_at`

func scanBooking(row scanner) (core.Booking, error) {
	var (
		b                         core.Booking
		total, deposit, remaining int64
		dir                       string
		departure                 pgtype.Date
	)
	if err := row.Scan(&b.ID, &b.OwnerID, &b.CustomerID, &b.ProgramName, &total, &deposit, &remaining,
		&b.IsPaid, &dir, &b.FromLocation, &b.ToLocation, &departure, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return core.Booking{}, err
	}
	b.TotalAmount = core.Money{Cents: total}
	b.VisaDeposit = core.Money{Cents: deposit}
	b.RemainingAmount = core.Money{Cents: remaining}
	b.TravelDirection = core.TravelDirection(dir)
	b.DepartureDate = fromDate(departure)
	utc(&b.Record)
	return b, nil
}

func (s *Store) CreateBooking(ctx context.Context, b core.Booking) error {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := requireCustomer(ctx, tx, b.OwnerID, b.CustomerID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `INSERT INTO bookings (`+bookingColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			b.ID, b.OwnerID, b.CustomerID, b.ProgramName, b.TotalAmount.Cents, b.VisaDeposit.Cents,
			b.RemainingAmount.Cents, b.IsPaid, string(b.TravelDirection), b.FromLocation, b.ToLocation,
			toDate(b.DepartureDate), b.CreatedAt, b.UpdatedAt)
		if err != nil {
			return mapError(err, "insert booking")
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Booking saved",
		"id", b.ID,
		"customer_id", b.CustomerID,
		"total_cents", b.TotalAmount.Cents,
		"deposit_cents", b.VisaDeposit.Cents)
	return nil
}

func getBooking(ctx context.Context, q querier, owner, id string, lock bool) (core.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 AND owner_id = $2`
	if lock {
		query += ` FOR UPDATE`
	}
	b, err := scanBooking(q.QueryRow(ctx, query, id, owner))
	if err != nil {
		return core.Booking{}, notFound(err, "booking", id)
	}
	return b, nil
}

func (s *Store) GetBooking(ctx context.Context, owner, id string) (core.Booking, error) {
	return getBooking(ctx, s.pool, owner, id, false)
}

func (s *Store) ListBookings(ctx context.Context, owner string) ([]core.Booking, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	out := make([]core.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) UpdateBooking(ctx context.Context, owner, id string, mutate func(*core.Booking) error) (core.Booking, error) {
	var out core.Booking
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		cur, err := getBooking(ctx, tx, owner, id, true)
		if err != nil {
			return err
		}
		next := cur
		if err := mutate(&next); err != nil {
			return err
		}
		if err := storage.CheckIdentity(cur.Record, next.Record); err != nil {
			return err
		}
		if next.CustomerID != cur.CustomerID {
			if err := requireCustomer(ctx, tx, owner, next.CustomerID); err != nil {
				return err
			}
		}
		tag, err := tx.Exec(ctx, `UPDATE bookings SET customer_id = $1, program_name = $2,
			total_cents = $3, deposit_cents = $4, remaining_cents = $5, is_paid = $6, travel_direction = $7,
			from_location = $8, to_location = $9, departure_date = $10, updated_at = $11
			WHERE id = $12 AND owner_id = $13`,
			next.CustomerID, next.ProgramName, next.TotalAmount.Cents, next.VisaDeposit.Cents,
			next.RemainingAmount.Cents, next.IsPaid, string(next.TravelDirection), next.FromLocation,
			next.ToLocation, toDate(next.DepartureDate), next.UpdatedAt, id, owner)
		if err != nil {
			return mapError(err, "update booking")
		}
		if err := affected(tag, "booking", id); err != nil {
			return err
		}
		out = next
		return nil
	})
	return out, err
}

func (s *Store) DeleteBooking(ctx context.Context, owner, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1 AND owner_id = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return affected(tag, "booking", id)
}

// ToggleBookingPaid flips the flag and the remaining amount in one statement.
func (s *Store) ToggleBookingPaid(ctx context.Context, owner, id string, now time.Time) (core.Booking, error) {
	row := s.pool.QueryRow(ctx, `UPDATE bookings SET
			is_paid = NOT is_paid,
			remaining_cents = CASE WHEN is_paid THEN total_cents - deposit_cents ELSE 0 END,
			updated_at = $1
		WHERE id = $2 AND owner_id = $3
		RETURNING `+bookingColumns, now.UTC(), id, owner)
	b, err := scanBooking(row)
	if err != nil {
		return core.Booking{}, notFound(err, "booking", id)
	}
	slog.InfoContext(ctx, "Booking payment toggled", "id", id, "is_paid", b.IsPaid)
	return b, nil
}
