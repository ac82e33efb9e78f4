package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rudradey/hisab/internal/database"
	"github.com/rudradey/hisab/internal/ledger"
)

// ActivityTx is the snapshot of a transaction as it was when the activity
// happened. Purely observational; the balance engine never reads these.
type ActivityTx struct {
	TxID     int64
	Date     string
	Details  string
	Amount   ledger.Cents
	Type     string
	Method   string
	ToMethod string
	Tags     string
}

// Activity is one append-only activity-log entry.
type Activity struct {
	ID          string
	Kind        ledger.ActivityKind
	CreatedAt   time.Time
	Description string
	Txs         []ActivityTx
}

// ActivityRepo handles the append-only activity log.
type ActivityRepo struct {
	q database.DBTX
}

func NewActivityRepo(q database.DBTX) *ActivityRepo { return &ActivityRepo{q: q} }

// Append records an activity and the snapshots of the transactions it
// touched.
func (r *ActivityRepo) Append(ctx context.Context, kind ledger.ActivityKind, description string, txs ...ActivityTx) error {
	id := uuid.NewString()
	if _, err := r.q.ExecContext(ctx, `
	INSERT INTO activities(id, kind, created_at, description)
	VALUES(?, ?, ?, ?)`,
		id, string(kind), database.Now().Format(time.RFC3339), description); err != nil {
		return persistErr("append activity", err)
	}
	for _, t := range txs {
		if _, err := r.q.ExecContext(ctx, `
		INSERT INTO activity_txs(activity_id, tx_id, date, details, amount_cents, tx_type, method, to_method, tags)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, t.TxID, t.Date, t.Details, int64(t.Amount), t.Type, t.Method, t.ToMethod, t.Tags); err != nil {
			return persistErr("append activity tx", err)
		}
	}
	return nil
}

// List returns the most recent activities, newest first.
func (r *ActivityRepo) List(ctx context.Context, limit int) ([]Activity, error) {
	rows, err := r.q.QueryContext(ctx, `
	SELECT id, kind, created_at, description
	FROM activities ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, persistErr("list activities", err)
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var (
			a  Activity
			ts string
		)
		var kind string
		if err := rows.Scan(&a.ID, &kind, &ts, &a.Description); err != nil {
			return nil, persistErr("scan activity", err)
		}
		created, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, &CorruptDataError{Table: "activities", Value: ts, Err: err}
		}
		a.Kind = ledger.ActivityKind(kind)
		a.CreatedAt = created
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list activities", err)
	}
	for i := range out {
		txs, err := r.fetchTxs(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Txs = txs
	}
	return out, nil
}

func (r *ActivityRepo) fetchTxs(ctx context.Context, activityID string) ([]ActivityTx, error) {
	rows, err := r.q.QueryContext(ctx, `
	SELECT tx_id, date, details, amount_cents, tx_type, method, to_method, tags
	FROM activity_txs WHERE activity_id = ?`, activityID)
	if err != nil {
		return nil, persistErr("fetch activity txs", err)
	}
	defer rows.Close()

	var out []ActivityTx
	for rows.Next() {
		var (
			t     ActivityTx
			cents int64
		)
		if err := rows.Scan(&t.TxID, &t.Date, &t.Details, &cents, &t.Type, &t.Method, &t.ToMethod, &t.Tags); err != nil {
			return nil, persistErr("scan activity tx", err)
		}
		t.Amount = ledger.Cents(cents)
		out = append(out, t)
	}
	return out, rows.Err()
}
