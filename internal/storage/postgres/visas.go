package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"sindbad/internal/core"
	"sindbad/internal/storage"
)

const visaColumns = `id, owner_id, customer_id, visa_number, issue_date, expiry_date, departure_date,
	booking_date, status, travel_direction, from_location, to_location, created_at, updated_at`

func scanVisa(row scanner) (core.Visa, error) {
	var (
		v                                  core.Visa
		status, dir                        string
		issue, expiry, departure, bookedOn pgtype.Date
	)
	if err := row.Scan(&v.ID, &v.OwnerID, &v.CustomerID, &v.VisaNumber, &issue, &expiry, &departure,
		&bookedOn, &status, &dir, &v.FromLocation, &v.ToLocation, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return core.Visa{}, err
	}
	v.IssueDate = fromDate(issue)
	v.ExpiryDate = fromDate(expiry)
	v.DepartureDate = fromDate(departure)
	v.BookingDate = fromDate(bookedOn)
	v.Status = core.VisaStatus(status)
	v.TravelDirection = core.TravelDirection(dir)
	utc(&v.Record)
	return v, nil
}

func (s *Store) CreateVisa(ctx context.Context, v core.Visa) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := requireCustomer(ctx, tx, v.OwnerID, v.CustomerID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `INSERT INTO visas (`+visaColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			v.ID, v.OwnerID, v.CustomerID, v.VisaNumber, toDate(v.IssueDate), toDate(v.ExpiryDate),
			toDate(v.DepartureDate), toDate(v.BookingDate), string(v.Status), string(v.TravelDirection),
			v.FromLocation, v.ToLocation, v.CreatedAt, v.UpdatedAt)
		if err != nil {
			return mapError(err, "insert visa")
		}
		return nil
	})
}

func getVisa(ctx context.Context, q querier, owner, id string, lock bool) (core.Visa, error) {
	query := `SELECT ` + visaColumns + ` FROM visas WHERE id = $1 AND owner_id = $2`
	if lock {
		query += ` FOR UPDATE`
	}
	v, err := scanVisa(q.QueryRow(ctx, query, id, owner))
	if err != nil {
		return core.Visa{}, notFound(err, "visa", id)
	}
	return v, nil
}

func (s *Store) GetVisa(ctx context.Context, owner, id string) (core.Visa, error) {
	return getVisa(ctx, s.pool, owner, id, false)
}

func (s *Store) ListVisas(ctx context.Context, owner string) ([]core.Visa, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+visaColumns+` FROM visas
		WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`, owner)
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
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		cur, err := getVisa(ctx, tx, owner, id, true)
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
		tag, err := tx.Exec(ctx, `UPDATE visas SET customer_id = $1, visa_number = $2, issue_date = $3,
			expiry_date = $4, departure_date = $5, booking_date = $6, status = $7, travel_direction = $8,
			from_location = $9, to_location = $10, updated_at = $11
			WHERE id = $12 AND owner_id = $13`,
			next.CustomerID, next.VisaNumber, toDate(next.IssueDate), toDate(next.ExpiryDate),
			toDate(next.DepartureDate), toDate(next.BookingDate), string(next.Status),
			string(next.TravelDirection), next.FromLocation, next.ToLocation, next.UpdatedAt, id, owner)
		if err != nil {
			return mapError(err, "update visa")
		}
		if err := affected(tag, "visa", id); err != nil {
			return err
		}
		out = next
		return nil
	})
	return out, err
}

func (s *Store) DeleteVisa(ctx context.Context, owner, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM visas WHERE id = $1 AND owner_id = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("delete visa: %w", err)
	}
	return affected(tag, "visa", id)
}
