package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rudradey/hisab/internal/database"
	"github.com/rudradey/hisab/internal/ledger"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	f, err := os.CreateTemp("", "hisab-repo-*.db")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	path := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(path) })

	db, err := database.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func mustMethod(t *testing.T, db *sql.DB, name string) ledger.Method {
	t.Helper()
	m, err := NewMethodRepo(db).Create(context.Background(), name)
	if err != nil {
		t.Fatalf("create method %q: %v", name, err)
	}
	return m
}

func mustTx(t *testing.T, db *sql.DB, day string, method int64, kind ledger.TxType, cents ledger.Cents, tags ...string) ledger.Transaction {
	t.Helper()
	d, err := time.Parse(ledger.DateLayout, day)
	if err != nil {
		t.Fatalf("parse date %q: %v", day, err)
	}
	tx, err := NewTransactionRepo(db).Insert(context.Background(), ledger.Transaction{
		Date:     d,
		Amount:   cents,
		Type:     kind,
		MethodID: method,
		Tags:     tags,
	})
	if err != nil {
		t.Fatalf("insert tx: %v", err)
	}
	return tx
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := testDB(t)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	for _, table := range []string{
		"methods", "transactions", "tags", "transaction_tags",
		"balance_snapshots", "final_balances", "activities", "activity_txs",
	} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestMethodCreateAssignsPositions(t *testing.T) {
	db := testDB(t)
	a := mustMethod(t, db, "Cash")
	b := mustMethod(t, db, "Bank")
	if a.Position != 1 || b.Position != 2 {
		t.Fatalf("positions = %d, %d; want 1, 2", a.Position, b.Position)
	}

	if _, err := NewMethodRepo(db).Create(context.Background(), "  "); err == nil {
		t.Fatal("blank name accepted")
	}
}

func TestMethodByNameIsCaseInsensitive(t *testing.T) {
	db := testDB(t)
	created := mustMethod(t, db, "Bank")

	got, err := NewMethodRepo(db).ByName(context.Background(), "bAnK")
	if err != nil {
		t.Fatalf("ByName: %v", err)
	}
	if got.ID != created.ID || got.Name != "Bank" {
		t.Fatalf("got %+v, want id %d name Bank", got, created.ID)
	}

	_, err = NewMethodRepo(db).ByName(context.Background(), "Wallet")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing method: got %v, want ErrNotFound", err)
	}
}

func TestMethodRenameKeepsReferences(t *testing.T) {
	db := testDB(t)
	m := mustMethod(t, db, "Cash")
	tx := mustTx(t, db, "2022-07-19", m.ID, ledger.Income, 10000)

	repo := NewMethodRepo(db)
	if err := repo.Rename(context.Background(), m.ID, "Wallet"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	got, err := NewTransactionRepo(db).Get(context.Background(), tx.ID)
	if err != nil {
		t.Fatalf("get tx: %v", err)
	}
	if got.MethodID != m.ID {
		t.Fatalf("tx method id changed: %d", got.MethodID)
	}
}

func TestMethodReposition(t *testing.T) {
	db := testDB(t)
	mustMethod(t, db, "Cash")
	bank := mustMethod(t, db, "Bank")
	mustMethod(t, db, "Card")

	repo := NewMethodRepo(db)
	cases := []struct {
		name   string
		id     int64
		pos    int
		expect []string
	}{
		{"move up", bank.ID, 1, []string{"Bank", "Cash", "Card"}},
		{"move down", bank.ID, 3, []string{"Cash", "Card", "Bank"}},
		{"no-op", bank.ID, 3, []string{"Cash", "Card", "Bank"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := repo.Reposition(context.Background(), tc.id, tc.pos); err != nil {
				t.Fatalf("reposition: %v", err)
			}
			names, err := repo.Names(context.Background())
			if err != nil {
				t.Fatalf("names: %v", err)
			}
			if len(names) != len(tc.expect) {
				t.Fatalf("names = %v, want %v", names, tc.expect)
			}
			for i := range names {
				if names[i] != tc.expect[i] {
					t.Fatalf("names = %v, want %v", names, tc.expect)
				}
			}
		})
	}
}

func TestInsertDefaultsTag(t *testing.T) {
	db := testDB(t)
	m := mustMethod(t, db, "Cash")
	tx := mustTx(t, db, "2022-07-19", m.ID, ledger.Expense, 500)

	got, err := NewTransactionRepo(db).Get(context.Background(), tx.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0] != ledger.DefaultTag {
		t.Fatalf("tags = %v, want [%s]", got.Tags, ledger.DefaultTag)
	}
}

func TestInsertRejectsNonPositiveAmount(t *testing.T) {
	db := testDB(t)
	m := mustMethod(t, db, "Cash")

	repo := NewTransactionRepo(db)
	d, _ := time.Parse(ledger.DateLayout, "2022-07-19")
	for _, amount := range []ledger.Cents{0, -100} {
		_, err := repo.Insert(context.Background(), ledger.Transaction{
			Date: d, Amount: amount, Type: ledger.Expense, MethodID: m.ID,
		})
		if err == nil {
			t.Fatalf("amount %d accepted", amount)
		}
	}
}

func TestListRangeOrdering(t *testing.T) {
	db := testDB(t)
	m := mustMethod(t, db, "Cash")
	late := mustTx(t, db, "2022-07-20", m.ID, ledger.Income, 300)
	early := mustTx(t, db, "2022-07-01", m.ID, ledger.Income, 100)
	mid := mustTx(t, db, "2022-07-20", m.ID, ledger.Income, 200)
	mustTx(t, db, "2022-08-01", m.ID, ledger.Income, 400) // out of range

	from, _ := time.Parse(ledger.DateLayout, "2022-07-01")
	to, _ := time.Parse(ledger.DateLayout, "2022-07-31")
	txs, err := NewTransactionRepo(db).ListRange(context.Background(), from, to)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []int64{early.ID, late.ID, mid.ID}
	if len(txs) != len(want) {
		t.Fatalf("got %d txs, want %d", len(txs), len(want))
	}
	for i, tx := range txs {
		if tx.ID != want[i] {
			t.Fatalf("order = %v, want %v", txIDs(txs), want)
		}
	}
}

func txIDs(txs []ledger.Transaction) []int64 {
	out := make([]int64, len(txs))
	for i, tx := range txs {
		out[i] = tx.ID
	}
	return out
}

func TestSwapIDsMovesTagLinks(t *testing.T) {
	db := testDB(t)
	m := mustMethod(t, db, "Cash")
	a := mustTx(t, db, "2022-07-19", m.ID, ledger.Income, 100, "Salary")
	b := mustTx(t, db, "2022-07-19", m.ID, ledger.Expense, 200, "Food")

	repo := NewTransactionRepo(db)
	if err := repo.SwapIDs(context.Background(), a.ID, b.ID); err != nil {
		t.Fatalf("swap: %v", err)
	}

	gotA, err := repo.Get(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if gotA.Amount != 200 || len(gotA.Tags) != 1 || gotA.Tags[0] != "Food" {
		t.Fatalf("row under id %d = %+v; want b's content", a.ID, gotA)
	}

	if err := repo.SwapIDs(context.Background(), a.ID, 999); err == nil {
		t.Fatal("swap with missing id succeeded")
	}
}

func TestSearchMatchesDetailsMethodAndTag(t *testing.T) {
	db := testDB(t)
	cash := mustMethod(t, db, "Cash")
	bank := mustMethod(t, db, "Bank")

	groceries, err := NewTransactionRepo(db).Insert(context.Background(), ledger.Transaction{
		Date: mustDate(t, "2022-07-02"), Details: "weekly groceries",
		Amount: 500, Type: ledger.Expense, MethodID: cash.ID, Tags: []string{"Food"},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	salary := mustTx(t, db, "2022-07-01", bank.ID, ledger.Income, 100000, "Salary")

	repo := NewTransactionRepo(db)
	cases := []struct {
		needle string
		want   int64
	}{
		{"grocer", groceries.ID},
		{"bank", salary.ID},
		{"food", groceries.ID},
	}
	for _, tc := range cases {
		got, err := repo.Search(context.Background(), tc.needle)
		if err != nil {
			t.Fatalf("search %q: %v", tc.needle, err)
		}
		if len(got) != 1 || got[0].ID != tc.want {
			t.Fatalf("search %q = %v, want [%d]", tc.needle, txIDs(got), tc.want)
		}
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(ledger.DateLayout, s)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return d
}

func TestTagEnsureReusesRows(t *testing.T) {
	db := testDB(t)
	repo := NewTagRepo(db)

	first, err := repo.Ensure(context.Background(), []string{"Food", "Travel"})
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	second, err := repo.Ensure(context.Background(), []string{"Food"})
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if second[0].ID != first[0].ID {
		t.Fatalf("tag Food got new id %d, want %d", second[0].ID, first[0].ID)
	}
}

func TestSnapshotUpsertAndLatestBefore(t *testing.T) {
	db := testDB(t)
	m := mustMethod(t, db, "Cash")
	ctx := context.Background()
	repo := NewSnapshotRepo(db)

	if err := repo.Upsert(ctx, 3, map[int64]ledger.Cents{m.ID: 10000}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Upsert(ctx, 3, map[int64]ledger.Cents{m.ID: 12000}); err != nil {
		t.Fatalf("upsert overwrite: %v", err)
	}
	if err := repo.Upsert(ctx, 7, map[int64]ledger.Cents{m.ID: 9000}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.Period(ctx, 3)
	if err != nil {
		t.Fatalf("period: %v", err)
	}
	if got[m.ID] != 12000 {
		t.Fatalf("period 3 = %d, want 12000", got[m.ID])
	}

	// Months with no snapshot row fall back to the latest earlier one.
	prior, err := repo.LatestBefore(ctx, 6)
	if err != nil {
		t.Fatalf("latest before: %v", err)
	}
	if prior[m.ID] != 12000 {
		t.Fatalf("latest before 6 = %d, want 12000", prior[m.ID])
	}

	none, err := repo.LatestBefore(ctx, 3)
	if err != nil {
		t.Fatalf("latest before: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("latest before 3 = %v, want empty", none)
	}

	if err := repo.DeleteFrom(ctx, 7); err != nil {
		t.Fatalf("delete from: %v", err)
	}
	late, err := repo.Period(ctx, 7)
	if err != nil {
		t.Fatalf("period: %v", err)
	}
	if len(late) != 0 {
		t.Fatalf("period 7 survived DeleteFrom: %v", late)
	}
}

func TestFinalBalancesReplaceAndClear(t *testing.T) {
	db := testDB(t)
	cash := mustMethod(t, db, "Cash")
	bank := mustMethod(t, db, "Bank")
	ctx := context.Background()
	repo := NewSnapshotRepo(db)

	balances := map[int64]ledger.Cents{cash.ID: 5000, bank.ID: 20000}
	if err := repo.ReplaceFinalBalances(ctx, balances); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := repo.ClearFinalBalances(ctx, map[int64]ledger.Cents{cash.ID: 5000}); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, err := repo.FinalBalances(ctx)
	if err != nil {
		t.Fatalf("final balances: %v", err)
	}
	if len(got) != 1 || got[cash.ID] != 5000 {
		t.Fatalf("final = %v, want only cash 5000", got)
	}
}
