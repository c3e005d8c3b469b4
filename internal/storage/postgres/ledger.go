package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"sindbad/internal/core"
	"sindbad/internal/storage"
)

const expenseColumns = `id, owner_id, category, amount_cents, description, date, created_at, updated_at`

func scanExpense(row scanner) (core.Expense, error) {
	var (
		e        core.Expense
		category string
		amount   int64
		date     pgtype.Date
	)
	if err := row.Scan(&e.ID, &e.OwnerID, &category, &amount, &e.Description, &date, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return core.Expense{}, err
	}
	e.Category = core.ExpenseCategory(category)
	e.Amount = core.Money{Cents: amount}
	e.Date = fromDate(date)
	utc(&e.Record)
	return e, nil
}

func (s *Store) CreateExpense(ctx context.Context, e core.Expense) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO expenses (`+expenseColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.OwnerID, string(e.Category), e.Amount.Cents, e.Description, toDate(e.Date), e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return mapError(err, "insert expense")
	}
	return nil
}

func getExpense(ctx context.Context, q querier, owner, id string, lock bool) (core.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1 AND owner_id = $2`
	if lock {
		query += ` FOR UPDATE`
	}
	e, err := scanExpense(q.QueryRow(ctx, query, id, owner))
	if err != nil {
		return core.Expense{}, notFound(err, "expense", id)
	}
	return e, nil
}

func (s *Store) GetExpense(ctx context.Context, owner, id string) (core.Expense, error) {
	return getExpense(ctx, s.pool, owner, id, false)
}

func (s *Store) ListExpenses(ctx context.Context, owner string) ([]core.Expense, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+expenseColumns+` FROM expenses
		WHERE owner_id = $1 ORDER BY date DESC, created_at DESC, id DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	out := make([]core.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) UpdateExpense(ctx context.Context, owner, id string, mutate func(*core.Expense) error) (core.Expense, error) {
	var out core.Expense
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		cur, err := getExpense(ctx, tx, owner, id, true)
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
		tag, err := tx.Exec(ctx, `UPDATE expenses SET category = $1, amount_cents = $2, description = $3,
			date = $4, updated_at = $5 WHERE id = $6 AND owner_id = $7`,
			string(next.Category), next.Amount.Cents, next.Description, toDate(next.Date), next.UpdatedAt, id, owner)
		if err != nil {
			return mapError(err, "update expense")
		}
		if err := affected(tag, "expense", id); err != nil {
			return err
		}
		out = next
		return nil
	})
	return out, err
}

func (s *Store) DeleteExpense(ctx context.Context, owner, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND owner_id = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return affected(tag, "expense", id)
}

const debtColumns = `id, owner_id, person_name, amount_cents, type, description, date, is_paid, created_at, updated_at`

func scanDebt(row scanner) (core.Debt, error) {
	var (
		d      core.Debt
		typ    string
		amount int64
		date   pgtype.Date
	)
	if err := row.Scan(&d.ID, &d.OwnerID, &d.PersonName, &amount, &typ, &d.Description, &date, &d.IsPaid,
		&d.CreatedAt, &d.UpdatedAt); err != nil {
		return core.Debt{}, err
	}
	d.Amount = core.Money{Cents: amount}
	d.Type = core.DebtType(typ)
	d.Date = fromDate(date)
	utc(&d.Record)
	return d, nil
}

func (s *Store) CreateDebt(ctx context.Context, d core.Debt) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO debts (`+debtColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		d.ID, d.OwnerID, d.PersonName, d.Amount.Cents, string(d.Type), d.Description, toDate(d.Date),
		d.IsPaid, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return mapError(err, "insert debt")
	}
	return nil
}

func getDebt(ctx context.Context, q querier, owner, id string, lock bool) (core.Debt, error) {
	query := `SELECT ` + debtColumns + ` FROM debts WHERE id = $1 AND owner_id = $2`
	if lock {
		query += ` FOR UPDATE`
	}
	d, err := scanDebt(q.QueryRow(ctx, query, id, owner))
	if err != nil {
		return core.Debt{}, notFound(err, "debt", id)
	}
	return d, nil
}

func (s *Store) GetDebt(ctx context.Context, owner, id string) (core.Debt, error) {
	return getDebt(ctx, s.pool, owner, id, false)
}

func (s *Store) ListDebts(ctx context.Context, owner string) ([]core.Debt, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+debtColumns+` FROM debts
		WHERE owner_id = $1 ORDER BY date DESC, created_at DESC, id DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	out := make([]core.Debt, 0)
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) UpdateDebt(ctx context.Context, owner, id string, mutate func(*core.Debt) error) (core.Debt, error) {
	var out core.Debt
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		cur, err := getDebt(ctx, tx, owner, id, true)
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
		tag, err := tx.Exec(ctx, `UPDATE debts SET person_name = $1, amount_cents = $2, type = $3,
			description = $4, date = $5, is_paid = $6, updated_at = $7 WHERE id = $8 AND owner_id = $9`,
			next.PersonName, next.Amount.Cents, string(next.Type), next.Description, toDate(next.Date),
			next.IsPaid, next.UpdatedAt, id, owner)
		if err != nil {
			return mapError(err, "update debt")
		}
		if err := affected(tag, "debt", id); err != nil {
			return err
		}
		out = next
		return nil
	})
	return out, err
}

func (s *Store) DeleteDebt(ctx context.Context, owner, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM debts WHERE id = $1 AND owner_id = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}
	return affected(tag, "debt", id)
}

func (s *Store) ToggleDebtPaid(ctx context.Context, owner, id string, now time.Time) (core.Debt, error) {
	row := s.pool.QueryRow(ctx, `UPDATE debts SET is_paid = NOT is_paid, updated_at = $1
		WHERE id = $2 AND owner_id = $3 RETURNING `+debtColumns, now.UTC(), id, owner)
	d, err := scanDebt(row)
	if err != nil {
		return core.Debt{}, notFound(err, "debt", id)
	}
	return d, nil
}
