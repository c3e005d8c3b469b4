package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sindbad/internal/core"
	"sindbad/internal/storage"
)

const expenseColumns = `id, owner_id, category, amount_cents, description, date, created_at, updated_at`

func scanExpense(row scanner) (core.Expense, error) {
	var (
		e                         core.Expense
		id, owner, category, date string
		amount                    int64
		created, updated          string
	)
	if err := row.Scan(&id, &owner, &category, &amount, &e.Description, &date, &created, &updated); err != nil {
		return core.Expense{}, err
	}
	rec, err := record(id, owner, created, updated)
	if err != nil {
		return core.Expense{}, err
	}
	e.Record = rec
	e.Category = core.ExpenseCategory(category)
	e.Amount = core.Money{Cents: amount}
	if e.Date, err = core.ParseDate(date); err != nil {
		return core.Expense{}, fmt.Errorf("parse expense date: %w", err)
	}
	return e, nil
}

func (s *Store) CreateExpense(ctx context.Context, e core.Expense) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.OwnerID, string(e.Category), e.Amount.Cents, e.Description, e.Date.String(),
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func getExpense(ctx context.Context, q querier, owner, id string) (core.Expense, error) {
	row := q.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND owner_id = ?`, id, owner)
	e, err := scanExpense(row)
	if err != nil {
		return core.Expense{}, notFound(err, "expense", id)
	}
	return e, nil
}

func (s *Store) GetExpense(ctx context.Context, owner, id string) (core.Expense, error) {
	return getExpense(ctx, s.db, owner, id)
}

func (s *Store) ListExpenses(ctx context.Context, owner string) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+expenseColumns+` FROM expenses
		WHERE owner_id = ? ORDER BY date DESC, created_at DESC, id DESC`, owner)
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
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		cur, err := getExpense(ctx, tx, owner, id)
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
		res, err := tx.ExecContext(ctx, `UPDATE expenses SET category = ?, amount_cents = ?, description = ?,
			date = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
			string(next.Category), next.Amount.Cents, next.Description, next.Date.String(),
			formatTime(next.UpdatedAt), id, owner)
		if err != nil {
			return fmt.Errorf("update expense: %w", err)
		}
		if err := affected(res, "expense", id); err != nil {
			return err
		}
		out = next
		return nil
	})
	return out, err
}

func (s *Store) DeleteExpense(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return affected(res, "expense", id)
}

const debtColumns = `id, owner_id, person_name, amount_cents, type, description, date, is_paid, created_at, updated_at`

func scanDebt(row scanner) (core.Debt, error) {
	var (
		d                    core.Debt
		id, owner, typ, date string
		amount               int64
		created, updated     string
	)
	if err := row.Scan(&id, &owner, &d.PersonName, &amount, &typ, &d.Description, &date, &d.IsPaid,
		&created, &updated); err != nil {
		return core.Debt{}, err
	}
	rec, err := record(id, owner, created, updated)
	if err != nil {
		return core.Debt{}, err
	}
	d.Record = rec
	d.Amount = core.Money{Cents: amount}
	d.Type = core.DebtType(typ)
	if d.Date, err = core.ParseDate(date); err != nil {
		return core.Debt{}, fmt.Errorf("parse debt date: %w", err)
	}
	return d, nil
}

func (s *Store) CreateDebt(ctx context.Context, d core.Debt) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO debts (`+debtColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.OwnerID, d.PersonName, d.Amount.Cents, string(d.Type), d.Description, d.Date.String(),
		d.IsPaid, formatTime(d.CreatedAt), formatTime(d.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert debt: %w", err)
	}
	return nil
}

func getDebt(ctx context.Context, q querier, owner, id string) (core.Debt, error) {
	row := q.QueryRowContext(ctx, `SELECT `+debtColumns+` FROM debts WHERE id = ? AND owner_id = ?`, id, owner)
	d, err := scanDebt(row)
	if err != nil {
		return core.Debt{}, notFound(err, "debt", id)
	}
	return d, nil
}

func (s *Store) GetDebt(ctx context.Context, owner, id string) (core.Debt, error) {
	return getDebt(ctx, s.db, owner, id)
}

func (s *Store) ListDebts(ctx context.Context, owner string) ([]core.Debt, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+debtColumns+` FROM debts
		WHERE owner_id = ? ORDER BY date DESC, created_at DESC, id DESC`, owner)
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
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		cur, err := getDebt(ctx, tx, owner, id)
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
		res, err := tx.ExecContext(ctx, `UPDATE debts SET person_name = ?, amount_cents = ?, type = ?,
			description = ?, date = ?, is_paid = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
			next.PersonName, next.Amount.Cents, string(next.Type), next.Description, next.Date.String(),
			next.IsPaid, formatTime(next.UpdatedAt), id, owner)
		if err != nil {
			return fmt.Errorf("update debt: %w", err)
		}
		if err := affected(res, "debt", id); err != nil {
			return err
		}
		out = next
		return nil
	})
	return out, err
}

func (s *Store) DeleteDebt(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM debts WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}
	return affected(res, "debt", id)
}

func (s *Store) ToggleDebtPaid(ctx context.Context, owner, id string, now time.Time) (core.Debt, error) {
	row := s.db.QueryRowContext(ctx, `UPDATE debts SET is_paid = NOT is_paid, updated_at = ?
		WHERE id = ? AND owner_id = ? RETURNING `+debtColumns, formatTime(now), id, owner)
	d, err := scanDebt(row)
	if err != nil {
		return core.Debt{}, notFound(err, "debt", id)
	}
	return d, nil
}
