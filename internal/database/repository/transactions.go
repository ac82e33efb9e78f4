package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rudradey/hisab/internal/database"
	"github.com/rudradey/hisab/internal/ledger"
)

// TransactionRepo handles the append-only transaction table and its tag
// links.
type TransactionRepo struct {
	q database.DBTX
}

func NewTransactionRepo(q database.DBTX) *TransactionRepo { return &TransactionRepo{q: q} }

// Insert writes a transaction row and its tag links. t.ID > 0 forces an
// explicit id, used when an edit re-inserts under the original id so later
// ordering stays stable; otherwise the id is auto-assigned.
func (r *TransactionRepo) Insert(ctx context.Context, t ledger.Transaction) (ledger.Transaction, error) {
	date := t.Date.Format(ledger.DateLayout)
	var (
		res sql.Result
		err error
	)
	if t.ID > 0 {
		res, err = r.q.ExecContext(ctx, `
		INSERT INTO transactions(id, date, details, amount_cents, tx_type, method_id, to_method_id)
		VALUES(?, ?, ?, ?, ?, ?, ?)`,
			t.ID, date, t.Details, int64(t.Amount), t.Type.String(), t.MethodID, t.ToMethodID)
	} else {
		res, err = r.q.ExecContext(ctx, `
		INSERT INTO transactions(date, details, amount_cents, tx_type, method_id, to_method_id)
		VALUES(?, ?, ?, ?, ?, ?)`,
			date, t.Details, int64(t.Amount), t.Type.String(), t.MethodID, t.ToMethodID)
	}
	if err != nil {
		return ledger.Transaction{}, persistErr("insert transaction", err)
	}
	if t.ID == 0 {
		id, err := res.LastInsertId()
		if err != nil {
			return ledger.Transaction{}, persistErr("insert transaction", err)
		}
		t.ID = id
	}
	if len(t.Tags) == 0 {
		t.Tags = []string{ledger.DefaultTag}
	}
	if err := r.attachTags(ctx, t.ID, t.Tags); err != nil {
		return ledger.Transaction{}, err
	}
	return t, nil
}

func (r *TransactionRepo) attachTags(ctx context.Context, txID int64, names []string) error {
	tagRepo := NewTagRepo(r.q)
	tags, err := tagRepo.Ensure(ctx, names)
	if err != nil {
		return err
	}
	for _, tg := range tags {
		if _, err := r.q.ExecContext(ctx,
			`INSERT OR IGNORE INTO transaction_tags(transaction_id, tag_id) VALUES(?, ?)`,
			txID, tg.ID); err != nil {
			return persistErr("attach tag", err)
		}
	}
	return nil
}

// Delete removes a transaction; tag links cascade.
func (r *TransactionRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return persistErr("delete transaction", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	return nil
}

// Get loads one transaction with its tags.
func (r *TransactionRepo) Get(ctx context.Context, id int64) (ledger.Transaction, error) {
	row := r.q.QueryRowContext(ctx, `
	SELECT id, date, details, amount_cents, tx_type, method_id, to_method_id
	FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Transaction{}, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return ledger.Transaction{}, err
	}
	t.Tags, err = r.fetchTags(ctx, t.ID)
	return t, err
}

// ListRange returns all transactions with from <= date <= to, ordered by
// (date, id) ascending, as a materialized slice. Consumers take multiple
// passes over it.
func (r *TransactionRepo) ListRange(ctx context.Context, from, to time.Time) ([]ledger.Transaction, error) {
	return r.list(ctx, `
	SELECT id, date, details, amount_cents, tx_type, method_id, to_method_id
	FROM transactions WHERE date >= ? AND date <= ?
	ORDER BY date ASC, id ASC`,
		from.Format(ledger.DateLayout), to.Format(ledger.DateLayout))
}

// ListFrom returns all transactions dated on or after from, ordered by
// (date, id) ascending.
func (r *TransactionRepo) ListFrom(ctx context.Context, from time.Time) ([]ledger.Transaction, error) {
	return r.list(ctx, `
	SELECT id, date, details, amount_cents, tx_type, method_id, to_method_id
	FROM transactions WHERE date >= ?
	ORDER BY date ASC, id ASC`,
		from.Format(ledger.DateLayout))
}

// Search returns transactions whose details, method name, or tag matches
// the needle, newest first.
func (r *TransactionRepo) Search(ctx context.Context, needle string) ([]ledger.Transaction, error) {
	like := "%" + needle + "%"
	return r.list(ctx, `
	SELECT DISTINCT t.id, t.date, t.details, t.amount_cents, t.tx_type, t.method_id, t.to_method_id
	FROM transactions t
	JOIN methods m ON m.id = t.method_id
	LEFT JOIN transaction_tags tt ON tt.transaction_id = t.id
	LEFT JOIN tags tg ON tg.id = tt.tag_id
	WHERE t.details LIKE ? OR m.name LIKE ? OR tg.name LIKE ?
	ORDER BY t.date DESC, t.id DESC`,
		like, like, like)
}

func (r *TransactionRepo) list(ctx context.Context, query string, args ...any) ([]ledger.Transaction, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("query transactions", err)
	}
	defer rows.Close()

	var out []ledger.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("query transactions", err)
	}
	for i := range out {
		tags, err := r.fetchTags(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Tags = tags
	}
	return out, nil
}

// SwapIDs exchanges the ids of two transactions. Used to reorder two rows
// sharing the same date; the caller checks the date precondition. Tag
// links follow via ON UPDATE CASCADE.
func (r *TransactionRepo) SwapIDs(ctx context.Context, a, b int64) error {
	// Ids are positive, so a negative temp id can never collide.
	steps := []struct {
		from, to int64
	}{{a, -1}, {b, a}, {-1, b}}
	for _, s := range steps {
		res, err := r.q.ExecContext(ctx, `UPDATE transactions SET id = ? WHERE id = ?`, s.to, s.from)
		if err != nil {
			return persistErr("swap transaction ids", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("transaction %d: %w", s.from, ErrNotFound)
		}
	}
	return nil
}

func (r *TransactionRepo) fetchTags(ctx context.Context, txID int64) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, `
	SELECT tg.name FROM tags tg
	JOIN transaction_tags tt ON tt.tag_id = tg.id
	WHERE tt.transaction_id = ?
	ORDER BY tg.id ASC`, txID)
	if err != nil {
		return nil, persistErr("fetch tags", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, persistErr("scan tag", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (ledger.Transaction, error) {
	var (
		t       ledger.Transaction
		date    string
		txType  string
		amount  int64
		toMeth  sql.NullInt64
		details string
	)
	if err := row.Scan(&t.ID, &date, &details, &amount, &txType, &t.MethodID, &toMeth); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Transaction{}, err
		}
		return ledger.Transaction{}, persistErr("scan transaction", err)
	}
	parsed, err := time.Parse(ledger.DateLayout, date)
	if err != nil {
		return ledger.Transaction{}, &CorruptDataError{Table: "transactions", Value: date, Err: err}
	}
	kind, err := ledger.ParseTxType(txType)
	if err != nil {
		return ledger.Transaction{}, &CorruptDataError{Table: "transactions", Value: txType, Err: err}
	}
	t.Date = parsed
	t.Details = details
	t.Amount = ledger.Cents(amount)
	t.Type = kind
	if toMeth.Valid {
		v := toMeth.Int64
		t.ToMethodID = &v
	}
	return t, nil
}

// SplitTags renders a tag list the way activity snapshots store it.
func SplitTags(tags []string) string {
	return strings.Join(tags, ", ")
}
