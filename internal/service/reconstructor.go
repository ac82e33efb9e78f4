package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rudradey/hisab/internal/database"
	"github.com/rudradey/hisab/internal/database/repository"
	"github.com/rudradey/hisab/internal/ledger"
)

// RunningBalance pairs a transaction with the per-method balances right
// after it was applied. The UI renders these as the Changes/Balance
// columns.
type RunningBalance struct {
	Tx       ledger.Transaction
	Balances map[int64]ledger.Cents
}

// Reconstructor rebuilds running balances and end-of-period snapshots from
// the transaction log.
type Reconstructor struct {
	DB  *sql.DB
	Cal ledger.Calendar
	Log zerolog.Logger
}

// Reconstruct computes the per-transaction running balance for a period
// and persists the recomputed end-of-month snapshots it visited. The
// second return value is the ending balance per method with any history.
func (r *Reconstructor) Reconstruct(ctx context.Context, p ledger.Period) ([]RunningBalance, map[int64]ledger.Cents, error) {
	var (
		rows   []RunningBalance
		ending map[int64]ledger.Cents
	)
	err := database.WithTx(r.DB, func(tx *sql.Tx) error {
		var err error
		rows, ending, err = replayPeriod(ctx, tx, r.Cal, p, true)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("reconstruct %s: %w", p, err)
	}
	r.Log.Debug().Str("period", p.String()).Int("transactions", len(rows)).Msg("reconstructed balances")
	return rows, ending, nil
}

// replayPeriod replays all transactions in p on top of the baseline taken
// from the latest snapshot before the period. When persist is set, the
// snapshot row for each visited month is upserted for the methods that had
// activity in it.
func replayPeriod(ctx context.Context, q database.DBTX, cal ledger.Calendar, p ledger.Period, persist bool) ([]RunningBalance, map[int64]ledger.Cents, error) {
	snaps := repository.NewSnapshotRepo(q)
	txRepo := repository.NewTransactionRepo(q)

	indices := p.Indices(cal)
	firstIdx := indices[0]

	baseline, err := snaps.LatestBefore(ctx, firstIdx)
	if err != nil {
		return nil, nil, err
	}

	from, to := p.Bounds(cal)
	txs, err := txRepo.ListRange(ctx, from, to)
	if err != nil {
		return nil, nil, err
	}

	running := cloneBalances(baseline)
	rows := make([]RunningBalance, 0, len(txs))

	// Per-month bookkeeping for snapshot persistence.
	curIdx := -1
	touched := make(map[int64]struct{})
	flush := func() error {
		if !persist || curIdx < 0 || len(touched) == 0 {
			return nil
		}
		out := make(map[int64]ledger.Cents, len(touched))
		for m := range touched {
			out[m] = running[m]
		}
		return snaps.Upsert(ctx, curIdx, out)
	}

	for _, t := range txs {
		idx := cal.Index(t.Date)
		if idx != curIdx {
			if err := flush(); err != nil {
				return nil, nil, err
			}
			curIdx = idx
			touched = make(map[int64]struct{})
		}
		for method, delta := range t.Deltas() {
			running[method] += delta
			touched[method] = struct{}{}
		}
		rows = append(rows, RunningBalance{Tx: t, Balances: cloneBalances(running)})
	}
	if err := flush(); err != nil {
		return nil, nil, err
	}
	return rows, running, nil
}

// Reconcile rewrites every snapshot from fromIdx onward inside the
// caller's transaction. Exposed for bulk paths (the legacy importer) that
// insert rows directly and reconcile once at the end.
func Reconcile(ctx context.Context, q database.DBTX, cal ledger.Calendar, fromIdx int) error {
	return reconcileFrom(ctx, q, cal, fromIdx)
}

// reconcileFrom rewrites every snapshot from fromIdx onward by replaying
// the transaction log forward, then rebuilds the absolute final balance.
// All snapshot state at fromIdx and later is derived state, so it is
// dropped and recomputed rather than patched.
func reconcileFrom(ctx context.Context, q database.DBTX, cal ledger.Calendar, fromIdx int) error {
	snaps := repository.NewSnapshotRepo(q)
	txRepo := repository.NewTransactionRepo(q)

	if fromIdx < 0 {
		fromIdx = 0
	}
	if err := snaps.DeleteFrom(ctx, fromIdx); err != nil {
		return err
	}

	baseline, err := snaps.LatestBefore(ctx, fromIdx)
	if err != nil {
		return err
	}

	year, month := cal.MonthOf(fromIdx)
	fromDate := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	txs, err := txRepo.ListFrom(ctx, fromDate)
	if err != nil {
		return err
	}

	running := cloneBalances(baseline)
	curIdx := -1
	touched := make(map[int64]struct{})
	flush := func() error {
		if curIdx < 0 || len(touched) == 0 {
			return nil
		}
		out := make(map[int64]ledger.Cents, len(touched))
		for m := range touched {
			out[m] = running[m]
		}
		return snaps.Upsert(ctx, curIdx, out)
	}

	for _, t := range txs {
		idx := cal.Index(t.Date)
		if idx != curIdx {
			if err := flush(); err != nil {
				return err
			}
			curIdx = idx
			touched = make(map[int64]struct{})
		}
		for method, delta := range t.Deltas() {
			running[method] += delta
			touched[method] = struct{}{}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	// The absolute final balance covers every method with any history.
	if err := snaps.ReplaceFinalBalances(ctx, running); err != nil {
		return err
	}
	return snaps.ClearFinalBalances(ctx, running)
}

func cloneBalances(in map[int64]ledger.Cents) map[int64]ledger.Cents {
	out := make(map[int64]ledger.Cents, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
