package service

import (
	"fmt"

	"github.com/rudradey/hisab/internal/ledger"
)

// Row-set builders: the core hands the UI ordered slices of formatted
// strings and stays ignorant of how they are drawn.

// TxRows renders the transaction table for a period, one row per
// transaction with running Changes/Balance columns per method.
func TxRows(rows []RunningBalance, methods []ledger.Method, methodNames map[int64]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, rb := range rows {
		row := []string{
			fmt.Sprintf("%d", rb.Tx.ID),
			rb.Tx.Date.Format(ledger.DateLayout),
			rb.Tx.Details,
			methodCell(rb.Tx, methodNames),
			rb.Tx.Amount.String(),
			rb.Tx.Type.String(),
			ledgerTags(rb.Tx.Tags),
		}
		for _, m := range methods {
			row = append(row, rb.Balances[m.ID].String())
		}
		out = append(out, row)
	}
	return out
}

// BalanceRow renders one balance line in method display order, absent
// methods shown as zero.
func BalanceRow(balances map[int64]ledger.Cents, methods []ledger.Method) []string {
	out := make([]string, 0, len(methods))
	for _, m := range methods {
		out = append(out, balances[m.ID].String())
	}
	return out
}

// SummaryRows renders the aggregate tables for a summary, with optional
// deltas from a DeltaView.
func SummaryRows(s Summary, d DeltaView) [][]string {
	out := [][]string{
		{"Total Income", s.TotalIncome.String(), fmt.Sprintf("%.2f%%", s.IncomePct), d.TotalIncome},
		{"Total Expense", s.TotalExpense.String(), fmt.Sprintf("%.2f%%", s.ExpensePct), d.TotalExpense},
	}
	if s.LargestIncome != nil {
		out = append(out, []string{"Largest Income", s.LargestIncome.Amount.String(),
			s.LargestIncome.Method, s.LargestIncome.Date.Format(ledger.DateLayout)})
	}
	if s.LargestExpense != nil {
		out = append(out, []string{"Largest Expense", s.LargestExpense.Amount.String(),
			s.LargestExpense.Method, s.LargestExpense.Date.Format(ledger.DateLayout)})
	}
	if s.PeakIncome != nil {
		out = append(out, []string{"Peak Income Month",
			fmt.Sprintf("%04d-%02d", s.PeakIncome.Year, int(s.PeakIncome.Month)),
			s.PeakIncome.Total.String(), ""})
	}
	if s.PeakExpense != nil {
		out = append(out, []string{"Peak Expense Month",
			fmt.Sprintf("%04d-%02d", s.PeakExpense.Year, int(s.PeakExpense.Month)),
			s.PeakExpense.Total.String(), ""})
	}
	return out
}

// MethodRows renders per-method aggregates.
func MethodRows(s Summary, d DeltaView) [][]string {
	out := make([][]string, 0, len(s.Methods))
	for _, m := range s.Methods {
		row := []string{
			m.Name,
			m.Income.String(), fmt.Sprintf("%.2f%%", m.IncomeShare), d.MethodIncome[m.Name],
			m.Expense.String(), fmt.Sprintf("%.2f%%", m.ExpenseShare), d.MethodExpense[m.Name],
		}
		if s.Period.Mode != ledger.Monthly {
			row = append(row, m.MonthlyAvgIn.String(), m.MonthlyAvgOut.String())
		}
		out = append(out, row)
	}
	return out
}

// TagRows renders per-tag aggregates.
func TagRows(s Summary, d DeltaView) [][]string {
	out := make([][]string, 0, len(s.Tags))
	for _, t := range s.Tags {
		out = append(out, []string{
			t.Name,
			t.Income.String(), fmt.Sprintf("%.2f%%", t.IncomeShare), d.TagIncome[t.Name],
			t.Expense.String(), fmt.Sprintf("%.2f%%", t.ExpenseShare), d.TagExpense[t.Name],
		})
	}
	return out
}

func methodCell(t ledger.Transaction, names map[int64]string) string {
	if t.Type == ledger.Transfer && t.ToMethodID != nil {
		return names[t.MethodID] + " → " + names[*t.ToMethodID]
	}
	return names[t.MethodID]
}

func ledgerTags(tags []string) string {
	out := ""
	for i, tg := range tags {
		if i > 0 {
			out += ", "
		}
		out += tg
	}
	return out
}
