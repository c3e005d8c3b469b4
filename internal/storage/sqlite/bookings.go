package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"sindbad/internal/core"
	"sindbad/internal/storage"
)

const bookingColumns = `id, owner_id, customer_id, program_name, total_cents, deposit_cents, remaining_cents,
	is_paid, travel_direction, from_location, to_location, departure_date, created_at, updated_at`

func scanBooking(row scanner) (core.Booking, error) {
	var (
		b                         core.Booking
		id, owner, dir            string
		total, deposit, remaining int64
		departure                 sql.NullString
		created, updated          string
	)
	if err := row.Scan(&id, &owner, &b.CustomerID, &b.ProgramName, &total, &deposit, &remaining,
		&b.IsPaid, &dir, &b.FromLocation, &b.ToLocation, &departure, &created, &updated); err != nil {
		return core.Booking{}, err
	}
	rec, err := record(id, owner, created, updated)
	if err != nil {
		return core.Booking{}, err
	}
	b.Record = rec
	b.TotalAmount = core.Money{Cents: total}
	b.VisaDeposit = core.Money{Cents: deposit}
	b.RemainingAmount = core.Money{Cents: remaining}
	b.TravelDirection = core.TravelDirection(dir)
	if b.DepartureDate, err = parseDate(departure); err != nil {
		return core.Booking{}, fmt.Errorf("parse departure_date: %w", err)
	}
	return b, nil
}

func (s *Store) CreateBooking(ctx context.Context, b core.Booking) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := requireCustomer(ctx, tx, b.OwnerID, b.CustomerID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO bookings (`+bookingColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID, b.OwnerID, b.CustomerID, b.ProgramName, b.TotalAmount.Cents, b.VisaDeposit.Cents,
			b.RemainingAmount.Cents, b.IsPaid, string(b.TravelDirection), b.FromLocation, b.ToLocation,
			formatDate(b.DepartureDate), formatTime(b.CreatedAt), formatTime(b.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert booking: %w", err)
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

func getBooking(ctx context.Context, q querier, owner, id string) (core.Booking, error) {
	row := q.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? AND owner_id = ?`, id, owner)
	b, err := scanBooking(row)
	if err != nil {
		return core.Booking{}, notFound(err, "booking", id)
	}
	return b, nil
}

func (s *Store) GetBooking(ctx context.Context, owner, id string) (core.Booking, error) {
	return getBooking(ctx, s.db, owner, id)
}

func (s *Store) ListBookings(ctx context.Context, owner string) ([]core.Booking, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE owner_id = ? ORDER BY created_at DESC, id DESC`, owner)
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
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		cur, err := getBooking(ctx, tx, owner, id)
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
		res, err := tx.ExecContext(ctx, `UPDATE bookings SET customer_id = ?, program_name = ?,
			total_cents = ?, deposit_cents = ?, remaining_cents = ?, is_paid = ?, travel_direction = ?,
			from_location = ?, to_location = ?, departure_date = ?, updated_at = ?
			WHERE id = ? AND owner_id = ?`,
			next.CustomerID, next.ProgramName, next.TotalAmount.Cents, next.VisaDeposit.Cents,
			next.RemainingAmount.Cents, next.IsPaid, string(next.TravelDirection), next.FromLocation,
			next.ToLocation, formatDate(next.DepartureDate), formatTime(next.UpdatedAt), id, owner)
		if err != nil {
			return fmt.Errorf("update booking: %w", err)
		}
		if err := affected(res, "booking", id); err != nil {
			return err
		}
		out = next
		return nil
	})
	return out, err
}

func (s *Store) DeleteBooking(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return affected(res, "booking", id)
}

// ToggleBookingPaid flips the flag and the remaining amount in one statement.
// The SET expressions see the row as it was before the update.
func (s *Store) ToggleBookingPaid(ctx context.Context, owner, id string, now time.Time) (core.Booking, error) {
	row := s.db.QueryRowContext(ctx, `UPDATE bookings SET
			is_paid = NOT is_paid,
			remaining_cents = CASE WHEN is_paid THEN total_cents - deposit_cents ELSE 0 END,
			updated_at = ?
		WHERE id = ? AND owner_id = ?
		RETURNING `+bookingColumns, formatTime(now), id, owner)
	b, err := scanBooking(row)
	if err != nil {
		return core.Booking{}, notFound(err, "booking", id)
	}
	slog.InfoContext(ctx, "Booking payment toggled", "id", id, "is_paid", b.IsPaid)
	return b, nil
}
