package repository

import (
	"context"

	"github.com/rudradey/hisab/internal/database"
	"github.com/rudradey/hisab/internal/ledger"
)

// SnapshotRepo handles the sparse per-period balance table and the
// distinguished absolute final balance. A (period, method) row exists only
// when that balance is known; absence means "no history yet", so an
// explicit zero is always trusted.
type SnapshotRepo struct {
	q database.DBTX
}

func NewSnapshotRepo(q database.DBTX) *SnapshotRepo { return &SnapshotRepo{q: q} }

// Period returns the known end-of-period balances at idx. Methods without
// a row are simply absent from the map.
func (r *SnapshotRepo) Period(ctx context.Context, idx int) (map[int64]ledger.Cents, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT method_id, balance_cents FROM balance_snapshots WHERE period_idx = ?`, idx)
	if err != nil {
		return nil, persistErr("query snapshot", err)
	}
	defer rows.Close()

	out := make(map[int64]ledger.Cents)
	for rows.Next() {
		var method, cents int64
		if err := rows.Scan(&method, &cents); err != nil {
			return nil, persistErr("scan snapshot", err)
		}
		out[method] = ledger.Cents(cents)
	}
	return out, rows.Err()
}

// LatestBefore returns, per method, the most recent known balance at any
// index strictly below idx. Methods that have never had a snapshot are
// absent, which the caller reads as a zero baseline.
func (r *SnapshotRepo) LatestBefore(ctx context.Context, idx int) (map[int64]ledger.Cents, error) {
	rows, err := r.q.QueryContext(ctx, `
	SELECT s.method_id, s.balance_cents
	FROM balance_snapshots s
	JOIN (
		SELECT method_id, MAX(period_idx) AS latest
		FROM balance_snapshots
		WHERE period_idx < ?
		GROUP BY method_id
	) last ON last.method_id = s.method_id AND last.latest = s.period_idx`, idx)
	if err != nil {
		return nil, persistErr("query prior snapshot", err)
	}
	defer rows.Close()

	out := make(map[int64]ledger.Cents)
	for rows.Next() {
		var method, cents int64
		if err := rows.Scan(&method, &cents); err != nil {
			return nil, persistErr("scan prior snapshot", err)
		}
		out[method] = ledger.Cents(cents)
	}
	return out, rows.Err()
}

// Upsert records end-of-period balances for the given methods at idx.
func (r *SnapshotRepo) Upsert(ctx context.Context, idx int, balances map[int64]ledger.Cents) error {
	for method, cents := range balances {
		if _, err := r.q.ExecContext(ctx, `
		INSERT INTO balance_snapshots(period_idx, method_id, balance_cents)
		VALUES(?, ?, ?)
		ON CONFLICT(period_idx, method_id) DO UPDATE SET balance_cents = excluded.balance_cents`,
			idx, method, int64(cents)); err != nil {
			return persistErr("upsert snapshot", err)
		}
	}
	return nil
}

// DeleteFrom drops every snapshot row at idx or later. Used before a
// forward replay rewrites them.
func (r *SnapshotRepo) DeleteFrom(ctx context.Context, idx int) error {
	if _, err := r.q.ExecContext(ctx,
		`DELETE FROM balance_snapshots WHERE period_idx >= ?`, idx); err != nil {
		return persistErr("delete snapshots", err)
	}
	return nil
}

// FinalBalances returns the absolute final balance per method (the balance
// after the very latest transaction, independent of any viewed period).
func (r *SnapshotRepo) FinalBalances(ctx context.Context) (map[int64]ledger.Cents, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT method_id, balance_cents FROM final_balances`)
	if err != nil {
		return nil, persistErr("query final balances", err)
	}
	defer rows.Close()

	out := make(map[int64]ledger.Cents)
	for rows.Next() {
		var method, cents int64
		if err := rows.Scan(&method, &cents); err != nil {
			return nil, persistErr("scan final balance", err)
		}
		out[method] = ledger.Cents(cents)
	}
	return out, rows.Err()
}

// ReplaceFinalBalances overwrites the absolute final balance for the given
// methods. Methods not present in balances keep their existing row.
func (r *SnapshotRepo) ReplaceFinalBalances(ctx context.Context, balances map[int64]ledger.Cents) error {
	for method, cents := range balances {
		if _, err := r.q.ExecContext(ctx, `
		INSERT INTO final_balances(method_id, balance_cents)
		VALUES(?, ?)
		ON CONFLICT(method_id) DO UPDATE SET balance_cents = excluded.balance_cents`,
			method, int64(cents)); err != nil {
			return persistErr("replace final balance", err)
		}
	}
	return nil
}

// ClearFinalBalances removes final-balance rows for methods absent from
// keep. Needed when a delete erases a method's entire history.
func (r *SnapshotRepo) ClearFinalBalances(ctx context.Context, keep map[int64]ledger.Cents) error {
	existing, err := r.FinalBalances(ctx)
	if err != nil {
		return err
	}
	for method := range existing {
		if _, ok := keep[method]; !ok {
			if _, err := r.q.ExecContext(ctx,
				`DELETE FROM final_balances WHERE method_id = ?`, method); err != nil {
				return persistErr("clear final balance", err)
			}
		}
	}
	return nil
}
