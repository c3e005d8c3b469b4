package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"sindbad/internal/core"
	"sindbad/internal/storage"
)

const customerColumns = `id, owner_id, full_name, phone, national_id, address, program, visa_status, notes, created_at, updated_at`

func scanCustomer(row scanner) (core.Customer, error) {
	var (
		c      core.Customer
		status string
	)
	if err := row.Scan(&c.ID, &c.OwnerID, &c.FullName, &c.Phone, &c.NationalID, &c.Address,
		&c.Program, &status, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return core.Customer{}, err
	}
	c.VisaStatus = core.CustomerVisaStatus(status)
	utc(&c.Record)
	return c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, c core.Customer) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO customers (`+customerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.OwnerID, c.FullName, c.Phone, c.NationalID, c.Address, c.Program,
		string(c.VisaStatus), c.Notes, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return mapError(err, "insert customer")
	}
	slog.InfoContext(ctx, "Customer saved", "id", c.ID, "owner", c.OwnerID)
	return nil
}

func getCustomer(ctx context.Context, q querier, owner, id string, lock bool) (core.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1 AND owner_id = $2`
	if lock {
		query += ` FOR UPDATE`
	}
	c, err := scanCustomer(q.QueryRow(ctx, query, id, owner))
	if err != nil {
		return core.Customer{}, notFound(err, "customer", id)
	}
	return c, nil
}

func (s *Store) GetCustomer(ctx context.Context, owner, id string) (core.Customer, error) {
	return getCustomer(ctx, s.pool, owner, id, false)
}

func (s *Store) ListCustomers(ctx context.Context, owner string) ([]core.Customer, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+customerColumns+` FROM customers
		WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`, owner)
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
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		cur, err := getCustomer(ctx, tx, owner, id, true)
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
		tag, err := tx.Exec(ctx, `UPDATE customers SET full_name = $1, phone = $2, national_id = $3,
			address = $4, program = $5, visa_status = $6, notes = $7, updated_at = $8
			WHERE id = $9 AND owner_id = $10`,
			next.FullName, next.Phone, next.NationalID, next.Address, next.Program,
			string(next.VisaStatus), next.Notes, next.UpdatedAt, id, owner)
		if err != nil {
			return mapError(err, "update customer")
		}
		if err := affected(tag, "customer", id); err != nil {
			return err
		}
		out = next
		return nil
	})
	return out, err
}

func (s *Store) DeleteCustomer(ctx context.Context, owner, id string) (storage.CascadeResult, error) {
	var res storage.CascadeResult
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := getCustomer(ctx, tx, owner, id, true); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM bookings WHERE customer_id = $1 AND owner_id = $2`, id, owner)
		if err != nil {
			return fmt.Errorf("delete customer bookings: %w", err)
		}
		res.Bookings = int(tag.RowsAffected())

		tag, err = tx.Exec(ctx, `DELETE FROM visas WHERE customer_id = $1 AND owner_id = $2`, id, owner)
		if err != nil {
			return fmt.Errorf("delete customer visas: %w", err)
		}
		res.Visas = int(tag.RowsAffected())

		if _, err := tx.Exec(ctx, `DELETE FROM customers WHERE id = $1 AND owner_id = $2`, id, owner); err != nil {
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
