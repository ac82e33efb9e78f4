// Package legacy imports a ledger from the old sqlite layout: amounts as
// text, transfers encoded as "A to B" method strings, one balance column
// per method. The importer inserts every row through the repository inside
// one sql transaction and reconciles once from the earliest month, so
// snapshots and the final balance are rebuilt under the current schema;
// the legacy balance table is ignored as derived state.
package legacy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rudradey/hisab/internal/database"
	"github.com/rudradey/hisab/internal/database/repository"
	"github.com/rudradey/hisab/internal/ledger"
	"github.com/rudradey/hisab/internal/service"
)

// ErrNotEmpty guards against importing into a store that already holds
// transactions.
var ErrNotEmpty = errors.New("target database is not empty")

// legacy rows carry dates either ISO or day-first.
var dateLayouts = []string{"2006-01-02", "02-01-2006"}

// Importer performs the one-time migration.
type Importer struct {
	Target *sql.DB
	Cal    ledger.Calendar
	Log    zerolog.Logger
}

type legacyRow struct {
	id      int64
	date    string
	details string
	method  string
	amount  string
	txType  string
	tags    string
}

// Run reads every row of the legacy tx_all table at legacyPath and replays
// it into the target store.
func (im *Importer) Run(ctx context.Context, legacyPath string) (int, error) {
	var count int
	err := database.WithTx(im.Target, func(tx *sql.Tx) error {
		if err := ensureEmpty(ctx, tx); err != nil {
			return err
		}
		rows, err := readLegacyRows(ctx, legacyPath)
		if err != nil {
			return err
		}
		methods, err := im.ensureMethods(ctx, tx, rows)
		if err != nil {
			return err
		}
		txRepo := repository.NewTransactionRepo(tx)
		minIdx := -1
		for _, row := range rows {
			t, err := im.convert(row, methods)
			if err != nil {
				return err
			}
			if _, err := txRepo.Insert(ctx, t); err != nil {
				return err
			}
			idx := im.Cal.Index(t.Date)
			if minIdx < 0 || idx < minIdx {
				minIdx = idx
			}
			count++
		}
		if count > 0 {
			if err := service.Reconcile(ctx, tx, im.Cal, minIdx); err != nil {
				return err
			}
		}
		return repository.NewActivityRepo(tx).Append(ctx, ledger.ActivityNewTX,
			fmt.Sprintf("imported %d transactions from legacy store", count))
	})
	if err != nil {
		return 0, fmt.Errorf("legacy import: %w", err)
	}
	im.Log.Info().Int("transactions", count).Msg("legacy import complete")
	return count, nil
}

func ensureEmpty(ctx context.Context, q database.DBTX) error {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return fmt.Errorf("count transactions: %w", err)
	}
	if n > 0 {
		return ErrNotEmpty
	}
	return nil
}

func readLegacyRows(ctx context.Context, path string) ([]legacyRow, error) {
	src, err := database.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open legacy db: %w", err)
	}
	defer src.Close()

	rows, err := src.QueryContext(ctx, `
	SELECT id_num, date, details, tx_method, amount, tx_type, tags
	FROM tx_all ORDER BY date ASC, id_num ASC`)
	if err != nil {
		return nil, fmt.Errorf("query legacy transactions: %w", err)
	}
	defer rows.Close()

	var out []legacyRow
	for rows.Next() {
		var r legacyRow
		if err := rows.Scan(&r.id, &r.date, &r.details, &r.method, &r.amount, &r.txType, &r.tags); err != nil {
			return nil, fmt.Errorf("scan legacy row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ensureMethods creates methods in first-seen order, splitting "A to B"
// transfer strings into both sides.
func (im *Importer) ensureMethods(ctx context.Context, q database.DBTX, rows []legacyRow) (map[string]int64, error) {
	repo := repository.NewMethodRepo(q)
	existing, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]int64)
	for _, m := range existing {
		byName[strings.ToLower(m.Name)] = m.ID
	}
	ensure := func(name string) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return &repository.CorruptDataError{Table: "tx_all", Value: name, Err: errors.New("empty method name")}
		}
		if _, ok := byName[strings.ToLower(name)]; ok {
			return nil
		}
		m, err := repo.Create(ctx, name)
		if err != nil {
			return err
		}
		byName[strings.ToLower(name)] = m.ID
		return nil
	}
	for _, r := range rows {
		for _, name := range splitMethodSpec(r.method) {
			if err := ensure(name); err != nil {
				return nil, err
			}
		}
	}
	return byName, nil
}

func splitMethodSpec(spec string) []string {
	if from, to, ok := strings.Cut(spec, " to "); ok {
		return []string{from, to}
	}
	return []string{spec}
}

func (im *Importer) convert(r legacyRow, methods map[string]int64) (ledger.Transaction, error) {
	date, err := parseLegacyDate(r.date)
	if err != nil {
		return ledger.Transaction{}, &repository.CorruptDataError{Table: "tx_all", Value: r.date, Err: err}
	}
	// A date outside the calendar would never be reached by the reconcile
	// replay and would sit in the store as ghost data.
	if !im.Cal.Contains(date) {
		return ledger.Transaction{}, &repository.CorruptDataError{
			Table: "tx_all", Value: r.date,
			Err: fmt.Errorf("date outside the %d-%d calendar", im.Cal.EpochYear, im.Cal.HorizonYear)}
	}
	amount, err := parseLegacyAmount(r.amount)
	if err != nil {
		return ledger.Transaction{}, err
	}
	kind, err := ledger.ParseTxType(r.txType)
	if err != nil {
		return ledger.Transaction{}, &repository.CorruptDataError{Table: "tx_all", Value: r.txType, Err: err}
	}

	t := ledger.Transaction{
		Date:    date,
		Details: r.details,
		Amount:  amount,
		Type:    kind,
		Tags:    splitLegacyTags(r.tags),
	}
	names := splitMethodSpec(r.method)
	t.MethodID = methods[strings.ToLower(strings.TrimSpace(names[0]))]
	if kind == ledger.Transfer {
		if len(names) != 2 {
			return ledger.Transaction{}, &repository.CorruptDataError{
				Table: "tx_all", Value: r.method, Err: errors.New("transfer without 'A to B' methods")}
		}
		to := methods[strings.ToLower(strings.TrimSpace(names[1]))]
		t.ToMethodID = &to
	}
	return t, nil
}

func parseLegacyDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseLegacyAmount converts the legacy text amount. Garbage here is the
// classic corrupt-store case and must surface as a typed error, never a
// panic.
func parseLegacyAmount(s string) (ledger.Cents, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, &repository.CorruptDataError{Table: "tx_all", Value: s, Err: err}
	}
	if d.Sign() <= 0 {
		return 0, &repository.CorruptDataError{Table: "tx_all", Value: s, Err: errors.New("non-positive amount")}
	}
	return ledger.Cents(d.Truncate(2).Shift(2).IntPart()), nil
}

func splitLegacyTags(s string) []string {
	var out []string
	for _, raw := range strings.Split(s, ",") {
		tag := strings.TrimSpace(raw)
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
