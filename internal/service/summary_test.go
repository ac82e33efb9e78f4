package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rudradey/hisab/internal/ledger"
)

func TestAggregateMonthly(t *testing.T) {
	db, ids := testStore(t)
	m := testMutator(db)
	ctx := context.Background()

	addTx(t, m, ids, "2022-07-01", "Bank", ledger.Income, "1000.00", "Salary")
	addTx(t, m, ids, "2022-07-05", "Cash", ledger.Expense, "250.00", "Food")
	addTx(t, m, ids, "2022-07-10", "Bank", ledger.Expense, "250.00", "Food", "Eating Out")
	to := ids["Cash"]
	_, err := m.Add(ctx, ledger.Transaction{
		Date: date("2022-07-15"), Amount: 30000, Type: ledger.Transfer,
		MethodID: ids["Bank"], ToMethodID: &to,
	})
	require.NoError(t, err)
	// Outside the queried month.
	addTx(t, m, ids, "2022-08-01", "Cash", ledger.Income, "999.00")

	s := &Summarizer{DB: db, Cal: ledger.DefaultCalendar()}
	sum, err := s.Aggregate(ctx, ledger.MonthPeriod(2022, time.July))
	require.NoError(t, err)

	// The transfer counts toward neither total.
	require.Equal(t, ledger.Cents(100000), sum.TotalIncome)
	require.Equal(t, ledger.Cents(50000), sum.TotalExpense)
	require.InDelta(t, 66.66, sum.IncomePct, 0.01)
	require.InDelta(t, 33.33, sum.ExpensePct, 0.01)
	require.Equal(t, 1, sum.MonthSpan)

	byName := make(map[string]MethodSummary)
	for _, ms := range sum.Methods {
		byName[ms.Name] = ms
	}
	require.Equal(t, ledger.Cents(100000), byName["Bank"].Income)
	require.Equal(t, ledger.Cents(25000), byName["Bank"].Expense)
	require.Equal(t, ledger.Cents(25000), byName["Cash"].Expense)
	require.InDelta(t, 100.0, byName["Bank"].IncomeShare, 0.01)
	require.InDelta(t, 50.0, byName["Cash"].ExpenseShare, 0.01)

	// Tags sorted by name; "Food" spans two transactions.
	require.Len(t, sum.Tags, 3)
	require.Equal(t, "Eating Out", sum.Tags[0].Name)
	require.Equal(t, "Food", sum.Tags[1].Name)
	require.Equal(t, "Salary", sum.Tags[2].Name)
	require.Equal(t, ledger.Cents(50000), sum.Tags[1].Expense)
	require.InDelta(t, 100.0, sum.Tags[1].ExpenseShare, 0.01)

	require.NotNil(t, sum.LargestIncome)
	require.Equal(t, ledger.Cents(100000), sum.LargestIncome.Amount)
	require.Equal(t, "Bank", sum.LargestIncome.Method)
	require.NotNil(t, sum.LargestExpense)
	// Equal expenses: the earlier one stays the highlight.
	require.Equal(t, date("2022-07-05"), sum.LargestExpense.Date)
}

func TestAggregateYearlyPeaksAndAverages(t *testing.T) {
	db, ids := testStore(t)
	m := testMutator(db)
	ctx := context.Background()

	addTx(t, m, ids, "2022-02-01", "Bank", ledger.Income, "300.00")
	addTx(t, m, ids, "2022-06-01", "Bank", ledger.Income, "300.00")
	addTx(t, m, ids, "2022-06-15", "Cash", ledger.Expense, "90.00")
	addTx(t, m, ids, "2022-09-01", "Cash", ledger.Expense, "120.00")

	s := &Summarizer{DB: db, Cal: ledger.DefaultCalendar()}
	sum, err := s.Aggregate(ctx, ledger.YearPeriod(2022))
	require.NoError(t, err)

	require.Equal(t, 12, sum.MonthSpan)

	// February and June tie on income; the earlier month wins.
	require.NotNil(t, sum.PeakIncome)
	require.Equal(t, time.February, sum.PeakIncome.Month)
	require.Equal(t, ledger.Cents(30000), sum.PeakIncome.Total)

	require.NotNil(t, sum.PeakExpense)
	require.Equal(t, time.September, sum.PeakExpense.Month)
	require.Equal(t, ledger.Cents(12000), sum.PeakExpense.Total)

	byName := make(map[string]MethodSummary)
	for _, ms := range sum.Methods {
		byName[ms.Name] = ms
	}
	require.Equal(t, ledger.Cents(60000/12), byName["Bank"].MonthlyAvgIn)
	require.Equal(t, ledger.Cents(21000/12), byName["Cash"].MonthlyAvgOut)
}

func TestAggregateAllTimeSpansObservedMonths(t *testing.T) {
	db, ids := testStore(t)
	m := testMutator(db)
	ctx := context.Background()

	addTx(t, m, ids, "2022-11-01", "Cash", ledger.Income, "100.00")
	addTx(t, m, ids, "2023-02-01", "Cash", ledger.Income, "100.00")

	s := &Summarizer{DB: db, Cal: ledger.DefaultCalendar()}
	sum, err := s.Aggregate(ctx, ledger.AllPeriod())
	require.NoError(t, err)

	// Nov 2022 .. Feb 2023 inclusive.
	require.Equal(t, 4, sum.MonthSpan)
}

func TestAggregateEmptyPeriod(t *testing.T) {
	db, _ := testStore(t)

	s := &Summarizer{DB: db, Cal: ledger.DefaultCalendar()}
	sum, err := s.Aggregate(context.Background(), ledger.MonthPeriod(2022, time.July))
	require.NoError(t, err)

	require.Zero(t, sum.TotalIncome)
	require.Zero(t, sum.TotalExpense)
	require.Zero(t, sum.IncomePct)
	require.Zero(t, sum.ExpensePct)
	require.Nil(t, sum.LargestIncome)
	require.Nil(t, sum.PeakIncome)
	for _, ms := range sum.Methods {
		require.Zero(t, ms.IncomeShare)
		require.Zero(t, ms.ExpenseShare)
	}
}

func TestDeltaString(t *testing.T) {
	cases := []struct {
		name      string
		current   ledger.Cents
		previous  ledger.Cents
		withDelta bool
		want      string
	}{
		{"growth", 15000, 10000, true, "↑50.00"},
		{"decline", 5000, 10000, true, "↓50.00"},
		{"flat", 10000, 10000, true, "↑0.00"},
		{"from zero", 10000, 0, true, "∞"},
		{"both zero", 0, 0, true, "↑0.00"},
		{"delta off", 15000, 10000, false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, DeltaString(tc.current, tc.previous, tc.withDelta))
		})
	}
}

func TestDiffMatchesByName(t *testing.T) {
	current := Summary{
		TotalIncome:  20000,
		TotalExpense: 5000,
		Methods:      []MethodSummary{{Name: "Bank", Income: 20000}, {Name: "Cash", Expense: 5000}},
		Tags:         []TagSummary{{Name: "Food", Expense: 5000}},
	}
	previous := Summary{
		TotalIncome: 10000,
		Methods:     []MethodSummary{{Name: "Bank", Income: 10000}},
	}

	view := Diff(current, previous, true)
	require.Equal(t, "↑100.00", view.TotalIncome)
	require.Equal(t, "∞", view.TotalExpense)
	require.Equal(t, "↑100.00", view.MethodIncome["Bank"])
	require.Equal(t, "∞", view.MethodExpense["Cash"])
	require.Equal(t, "∞", view.TagExpense["Food"])

	off := Diff(current, previous, false)
	require.Equal(t, "", off.TotalIncome)
	require.Equal(t, "", off.MethodIncome["Bank"])
}
