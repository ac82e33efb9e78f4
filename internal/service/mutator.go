package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rudradey/hisab/internal/database"
	"github.com/rudradey/hisab/internal/database/repository"
	"github.com/rudradey/hisab/internal/ledger"
)

// ValidationError reports a typed-field rejection from the mutator. Raw
// string normalization happens earlier, in the verify package; this guards
// the last line before persistence.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Mutator is the only path through which a transaction is created, edited,
// or removed. Every mutation runs inside one sql transaction covering the
// row writes, the snapshot rewrite, the final balance, and the activity
// record, so the store can never be left partially applied.
type Mutator struct {
	DB  *sql.DB
	Cal ledger.Calendar
	Log zerolog.Logger
}

// Add validates and persists a new transaction, then reconciles every
// snapshot from its period forward. A backdated insert therefore replays
// all later periods instead of patching only the final balance.
func (m *Mutator) Add(ctx context.Context, t ledger.Transaction) (ledger.Transaction, error) {
	if err := m.validate(t); err != nil {
		return ledger.Transaction{}, err
	}
	var out ledger.Transaction
	err := database.WithTx(m.DB, func(tx *sql.Tx) error {
		var err error
		out, err = m.insertAndReconcile(ctx, tx, t, ledger.ActivityNewTX)
		return err
	})
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	m.Log.Info().Int64("id", out.ID).Str("type", out.Type.String()).
		Str("amount", out.Amount.String()).Msg("transaction added")
	return out, nil
}

// Edit replaces a transaction's fields keeping its id: the old row is
// deleted and the new one re-inserted under the same id inside one sql
// transaction, then snapshots reconcile from the earlier of the two
// periods.
func (m *Mutator) Edit(ctx context.Context, id int64, t ledger.Transaction) error {
	if err := m.validate(t); err != nil {
		return err
	}
	err := database.WithTx(m.DB, func(tx *sql.Tx) error {
		txRepo := repository.NewTransactionRepo(tx)
		old, err := txRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := txRepo.Delete(ctx, id); err != nil {
			return err
		}
		t.ID = id
		inserted, err := txRepo.Insert(ctx, t)
		if err != nil {
			return err
		}
		fromIdx := min(m.Cal.Index(old.Date), m.Cal.Index(t.Date))
		if err := reconcileFrom(ctx, tx, m.Cal, fromIdx); err != nil {
			return err
		}
		snap, err := m.activitySnapshot(ctx, tx, inserted)
		if err != nil {
			return err
		}
		return repository.NewActivityRepo(tx).Append(ctx, ledger.ActivityEditTX,
			fmt.Sprintf("edited transaction %d", id), snap)
	})
	if err != nil {
		return fmt.Errorf("edit transaction %d: %w", id, err)
	}
	m.Log.Info().Int64("id", id).Msg("transaction edited")
	return nil
}

// Delete removes a transaction and reconciles snapshots from its period
// forward. Returns repository.ErrNotFound when the id has vanished.
func (m *Mutator) Delete(ctx context.Context, id int64) error {
	err := database.WithTx(m.DB, func(tx *sql.Tx) error {
		txRepo := repository.NewTransactionRepo(tx)
		old, err := txRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		snap, err := m.activitySnapshot(ctx, tx, old)
		if err != nil {
			return err
		}
		if err := txRepo.Delete(ctx, id); err != nil {
			return err
		}
		if err := reconcileFrom(ctx, tx, m.Cal, m.Cal.Index(old.Date)); err != nil {
			return err
		}
		return repository.NewActivityRepo(tx).Append(ctx, ledger.ActivityDeleteTX,
			fmt.Sprintf("deleted transaction %d", id), snap)
	})
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	m.Log.Info().Int64("id", id).Msg("transaction deleted")
	return nil
}

// SwitchPosition swaps the ids of two transactions sharing the same date,
// reordering them in the (date, id) display order. Differing dates are a
// silent no-op.
func (m *Mutator) SwitchPosition(ctx context.Context, idA, idB int64) error {
	if idA == idB {
		return nil
	}
	err := database.WithTx(m.DB, func(tx *sql.Tx) error {
		txRepo := repository.NewTransactionRepo(tx)
		a, err := txRepo.Get(ctx, idA)
		if err != nil {
			return err
		}
		b, err := txRepo.Get(ctx, idB)
		if err != nil {
			return err
		}
		if !a.Date.Equal(b.Date) {
			return nil
		}
		if err := txRepo.SwapIDs(ctx, idA, idB); err != nil {
			return err
		}
		snapA, err := m.activitySnapshot(ctx, tx, a)
		if err != nil {
			return err
		}
		snapB, err := m.activitySnapshot(ctx, tx, b)
		if err != nil {
			return err
		}
		return repository.NewActivityRepo(tx).Append(ctx, ledger.ActivityIDSwap,
			fmt.Sprintf("swapped order of %d and %d", idA, idB), snapA, snapB)
	})
	if err != nil {
		return fmt.Errorf("switch position %d/%d: %w", idA, idB, err)
	}
	return nil
}

// Search finds transactions by details, method name, or tag text and logs
// the search in the activity log.
func (m *Mutator) Search(ctx context.Context, needle string) ([]ledger.Transaction, error) {
	var out []ledger.Transaction
	err := database.WithTx(m.DB, func(tx *sql.Tx) error {
		txRepo := repository.NewTransactionRepo(tx)
		found, err := txRepo.Search(ctx, needle)
		if err != nil {
			return err
		}
		out = found
		snaps := make([]repository.ActivityTx, 0, len(found))
		for _, t := range found {
			s, err := m.activitySnapshot(ctx, tx, t)
			if err != nil {
				return err
			}
			snaps = append(snaps, s)
		}
		return repository.NewActivityRepo(tx).Append(ctx, ledger.ActivitySearchTX,
			fmt.Sprintf("searched for %q", needle), snaps...)
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return out, nil
}

func (m *Mutator) insertAndReconcile(ctx context.Context, tx *sql.Tx, t ledger.Transaction, kind ledger.ActivityKind) (ledger.Transaction, error) {
	txRepo := repository.NewTransactionRepo(tx)
	inserted, err := txRepo.Insert(ctx, t)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if err := reconcileFrom(ctx, tx, m.Cal, m.Cal.Index(t.Date)); err != nil {
		return ledger.Transaction{}, err
	}
	snap, err := m.activitySnapshot(ctx, tx, inserted)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if err := repository.NewActivityRepo(tx).Append(ctx, kind,
		fmt.Sprintf("new %s of %s", inserted.Type, inserted.Amount), snap); err != nil {
		return ledger.Transaction{}, err
	}
	return inserted, nil
}

func (m *Mutator) validate(t ledger.Transaction) error {
	if !m.Cal.Contains(t.Date) {
		return &ValidationError{Field: "date", Reason: fmt.Sprintf(
			"must fall between %d and %d", m.Cal.EpochYear, m.Cal.HorizonYear)}
	}
	if t.Amount <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if t.MethodID == 0 {
		return &ValidationError{Field: "method", Reason: "is required"}
	}
	switch t.Type {
	case ledger.Transfer:
		if t.ToMethodID == nil {
			return &ValidationError{Field: "to method", Reason: "is required for a transfer"}
		}
		if *t.ToMethodID == t.MethodID {
			return &ValidationError{Field: "to method", Reason: "must differ from the source method"}
		}
	case ledger.Income, ledger.Expense:
		if t.ToMethodID != nil {
			return &ValidationError{Field: "to method", Reason: "is only valid for transfers"}
		}
	default:
		return &ValidationError{Field: "type", Reason: "is not a known transaction type"}
	}
	return nil
}

func (m *Mutator) activitySnapshot(ctx context.Context, q database.DBTX, t ledger.Transaction) (repository.ActivityTx, error) {
	methods := repository.NewMethodRepo(q)
	from, err := methods.ByID(ctx, t.MethodID)
	if err != nil {
		return repository.ActivityTx{}, err
	}
	to := ""
	if t.ToMethodID != nil {
		toMethod, err := methods.ByID(ctx, *t.ToMethodID)
		if err != nil {
			return repository.ActivityTx{}, err
		}
		to = toMethod.Name
	}
	return repository.ActivityTx{
		TxID:     t.ID,
		Date:     t.Date.Format(ledger.DateLayout),
		Details:  t.Details,
		Amount:   t.Amount,
		Type:     t.Type.String(),
		Method:   from.Name,
		ToMethod: to,
		Tags:     repository.SplitTags(t.Tags),
	}, nil
}
