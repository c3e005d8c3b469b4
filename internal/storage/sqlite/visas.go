package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"sindbad/internal/core"
	"sindbad/internal/storage"
)

const visaColumns = `id, owner_id, customer_id, visa_number, issue_date, expiry_date, departure_date,
	booking_date, status, travel_direction, from_location, to_location, created_at, updated_at`

func scanVisa(row scanner) (core.Visa, error) {
	var (
		v                                  core.Visa
		id, owner, status, dir             string
		issue, expiry, departure, bookedOn sql.NullString
		created, updated                   string
	)
	if err := row.Scan(&id, &owner, &v.CustomerID, &v.VisaNumber, &issue, &expiry, &departure,
		&bookedOn, &status, &dir, &v.FromLocation, &v.ToLocation, &created, &updated); err != nil {
		return core.Visa{}, err
	}
	rec, err := record(id, owner, created, updated)
	if err != nil {
		return core.Visa{}, err
	}
	v.Record = rec
	v.Status = core.VisaStatus(status)
	v.TravelDirection = core.TravelDirection(dir)
	for _, d := range []struct {
		dst *core.Date
		src sql.NullString
	}{{&v.IssueDate, issue}, {&v.ExpiryDate, expiry}, {&v.DepartureDate, departure}, {&v.BookingDate, bookedOn}} {
		if *d.dst, err = parseDate(d.src); err != nil {
			return core.Visa{}, fmt.Errorf("parse visa date: %w", err)
		}
	}
	return v, nil
}

func (s *Store) CreateVisa(ctx context.Context, v core.Visa) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := requireCustomer(ctx, tx, v.OwnerID, v.CustomerID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO visas (`+visaColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			v.ID, v.OwnerID, v.CustomerID, v.VisaNumber, formatDate(v.IssueDate), formatDate(v.ExpiryDate),
			formatDate(v.DepartureDate), formatDate(v.BookingDate), string(v.Status), string(v.TravelDirection),
			v.FromLocation, v.ToLocation, formatTime(v.CreatedAt), formatTime(v.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert visa: %w", err)
		}
		return nil
	})
}

func getVisa(ctx context.Context, q querier, owner, id string) (core.Visa, error) {
	row := q.QueryRowContext(ctx, `SELECT `+visaColumns+` FROM visas WHERE id = ? AND owner_id = ?`, id, owner)
	v, err := scanVisa(row)
	if err != nil {
		return core.Visa{}, notFound(err, "visa", id)
	}
	return v, nil
}

func (s *Store) GetVisa(ctx context.Context, owner, id string) (core.Visa, error) {
	return getVisa(ctx, s.db, owner, id)
}

func (s *Store) ListVisas(ctx context.Context, owner string) ([]core.Visa, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+visaColumns+` FROM visas
		WHERE owner_id = ? ORDER BY created_at DESC, id DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list visas: %w", err)
	}
	defer rows.Close()

	out := make([]core.Visa, 0)
	for rows.Next() {
		v, err := scanVisa(rows)
		if err != nil {
			return nil, fmt.Errorf("scan visa: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) UpdateVisa(ctx context.Context, owner, id string, mutate func(*core.Visa) error) (core.Visa, error) {
	var out core.Visa
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		cur, err := getVisa(ctx, tx, owner, id)
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
		res, err := tx.ExecContext(ctx, `UPDATE visas SET customer_id = ?, visa_number = ?, issue_date = ?,
			expiry_date = ?, departure_date = ?, booking_date = ?, status = ?, travel_direction = ?,
			from_location = ?, to_location = ?, updated_at = ?
			WHERE id = ? AND owner_id = ?`,
			next.CustomerID, next.VisaNumber, formatDate(next.IssueDate), formatDate(next.ExpiryDate),
			formatDate(next.DepartureDate), formatDate(next.BookingDate), string(next.Status),
			string(next.TravelDirection), next.FromLocation, next.ToLocation, formatTime(next.UpdatedAt), id, owner)
		if err != nil {
			return fmt.Errorf("update visa: %w", err)
		}
		if err := affected(res, "visa", id); err != nil {
			return err
		}
		out = next
		return nil
	})
	return out, err
}

func (s *Store) DeleteVisa(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM visas WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete visa: %w", err)
	}
	return affected(res, "visa", id)
}
