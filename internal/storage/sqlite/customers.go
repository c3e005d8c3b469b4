package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"sindbad/internal/core"
	"sindbad/internal/storage"
)

const customerColumns = `id, owner_id, full_name, phone, national_id, address, program, visa_status, notes, created_at, updated_at`

func scanCustomer(row scanner) (core.Customer, error) {
	var (
		c                 core.Customer
		id, owner, status string
		created, updated  string
	)
	if err := row.Scan(&id, &owner, &c.FullName, &c.Phone, &c.NationalID, &c.Address,
		&c.Program, &status, &c.Notes, &created, &updated); err != nil {
		return core.Customer{}, err
	}
	rec, err := record(id, owner, created, updated)
	if err != nil {
		return core.Customer{}, err
	}
	c.Record = rec
	c.VisaStatus = core.CustomerVisaStatus(status)
	return c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, c core.Customer) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO customers (`+customerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.OwnerID, c.FullName, c.Phone, c.NationalID, c.Address, c.Program,
		string(c.VisaStatus), c.Notes, formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	slog.InfoContext(ctx, "Customer saved", "id", c.ID, "owner", c.OwnerID)
	return nil
}

func getCustomer(ctx context.Context, q querier, owner, id string) (core.Customer, error) {
	row := q.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ? AND owner_id = ?`, id, owner)
	c, err := scanCustomer(row)
	if err != nil {
		return core.Customer{}, notFound(err, "customer", id)
	}
	return c, nil
}

func (s *Store) GetCustomer(ctx context.Context, owner, id string) (core.Customer, error) {
	return getCustomer(ctx, s.db, owner, id)
}

func (s *Store) ListCustomers(ctx context.Context, owner string) ([]core.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers
		WHERE owner_id = ? ORDER BY created_at DESC, id DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	out := make([]core.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) UpdateCustomer(ctx context.Context, owner, id string, mutate func(*core.Customer) error) (core.Customer, error) {
	var out core.Customer
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		cur, err := getCustomer(ctx, tx, owner, id)
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
		res, err := tx.ExecContext(ctx, `UPDATE customers SET full_name = ?, phone = ?, national_id = ?,
			address = ?, program = ?, visa_status = ?, notes = ?, updated_at = ?
			WHERE id = ? AND owner_id = ?`,
			next.FullName, next.Phone, next.NationalID, next.Address, next.Program,
			string(next.VisaStatus), next.Notes, formatTime(next.UpdatedAt), id, owner)
		if err != nil {
			return fmt.Errorf("update customer: %w", err)
		}
		if err := affected(res, "customer", id); err != nil {
			return err
		}
		out = next
		return nil
	})
	return out, err
}

func (s *Store) DeleteCustomer(ctx context.Context, owner, id string) (storage.CascadeResult, error) {
	var res storage.CascadeResult
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		ok, err := customerExists(ctx, tx, owner, id)
		if err != nil {
			return err
		}
		if !ok {
			return core.NotFound("customer", id)
		}

		r, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE customer_id = ? AND owner_id = ?`, id, owner)
		if err != nil {
			return fmt.Errorf("delete customer bookings: %w", err)
		}
		n, _ := r.RowsAffected()
		res.Bookings = int(n)

		r, err = tx.ExecContext(ctx, `DELETE FROM visas WHERE customer_id = ? AND owner_id = ?`, id, owner)
		if err != nil {
			return fmt.Errorf("delete customer visas: %w", err)
		}
		n, _ = r.RowsAffected()
		res.Visas = int(n)

		if _, err := tx.ExecContext(ctx, `DELETE FROM customers WHERE id = ? AND owner_id = ?`, id, owner); err != nil {
			return fmt.Errorf("delete customer: %w", err)
		}
		return nil
	})
	if err != nil {
		return storage.CascadeResult{}, err
	}
	slog.InfoContext(ctx, "Customer deleted", "id", id, "bookings", res.Bookings, "visas", res.Visas)
	return res, nil
}
