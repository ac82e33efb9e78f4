package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/rudradey/hisab/internal/database/repository"
	"github.com/rudradey/hisab/internal/ledger"
)

// TxHighlight marks the single largest transaction of a kind in a period.
type TxHighlight struct {
	Amount ledger.Cents
	Method string
	Date   time.Time
}

// PeakMonth is the month with the highest income (or expense) inside the
// queried range. Strict comparison means the earliest month wins ties.
type PeakMonth struct {
	Year  int
	Month time.Month
	Total ledger.Cents
}

// MethodSummary aggregates one method over a period.
type MethodSummary struct {
	Name          string
	Income        ledger.Cents
	Expense       ledger.Cents
	IncomeShare   float64
	ExpenseShare  float64
	MonthlyAvgIn  ledger.Cents // Yearly/All only
	MonthlyAvgOut ledger.Cents // Yearly/All only
}

// TagSummary aggregates one tag over a period.
type TagSummary struct {
	Name         string
	Income       ledger.Cents
	Expense      ledger.Cents
	IncomeShare  float64
	ExpenseShare float64
}

// Summary is the read-only aggregate view of a period. Transfers move
// money between methods and count toward neither income nor expense.
type Summary struct {
	Period         ledger.Period
	TotalIncome    ledger.Cents
	TotalExpense   ledger.Cents
	IncomePct      float64
	ExpensePct     float64
	Methods        []MethodSummary
	Tags           []TagSummary
	LargestIncome  *TxHighlight
	LargestExpense *TxHighlight
	PeakIncome     *PeakMonth
	PeakExpense    *PeakMonth
	MonthSpan      int // months considered for averages
}

// Summarizer produces aggregate views over the transaction log. All
// operations are pure reads.
type Summarizer struct {
	DB  *sql.DB
	Cal ledger.Calendar
}

// Aggregate scans all transactions in p and produces the period summary.
func (s *Summarizer) Aggregate(ctx context.Context, p ledger.Period) (Summary, error) {
	methods := repository.NewMethodRepo(s.DB)
	txRepo := repository.NewTransactionRepo(s.DB)

	methodList, err := methods.List(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("aggregate %s: %w", p, err)
	}
	nameByID := make(map[int64]string, len(methodList))
	for _, m := range methodList {
		nameByID[m.ID] = m.Name
	}

	from, to := p.Bounds(s.Cal)
	txs, err := txRepo.ListRange(ctx, from, to)
	if err != nil {
		return Summary{}, fmt.Errorf("aggregate %s: %w", p, err)
	}

	sum := Summary{Period: p}
	perMethod := make(map[int64]*MethodSummary)
	for _, m := range methodList {
		perMethod[m.ID] = &MethodSummary{Name: m.Name}
	}
	perTag := make(map[string]*TagSummary)
	var tagOrder []string

	// Peak tracking: accumulate the current month, compare against the
	// best so far when the month boundary changes or the data ends.
	var (
		curIdx        = -1
		curIn, curOut ledger.Cents
		firstIdx      = -1
		lastIdx       = -1
	)
	finishMonth := func() {
		if curIdx < 0 {
			return
		}
		y, mo := s.Cal.MonthOf(curIdx)
		if sum.PeakIncome == nil || curIn > sum.PeakIncome.Total {
			sum.PeakIncome = &PeakMonth{Year: y, Month: mo, Total: curIn}
		}
		if sum.PeakExpense == nil || curOut > sum.PeakExpense.Total {
			sum.PeakExpense = &PeakMonth{Year: y, Month: mo, Total: curOut}
		}
	}

	for _, t := range txs {
		idx := s.Cal.Index(t.Date)
		if idx != curIdx {
			finishMonth()
			curIdx = idx
			curIn, curOut = 0, 0
		}
		if firstIdx < 0 {
			firstIdx = idx
		}
		lastIdx = idx

		ms := perMethod[t.MethodID]
		if ms == nil {
			return Summary{}, &repository.CorruptDataError{
				Table: "transactions",
				Value: fmt.Sprintf("method_id=%d", t.MethodID),
				Err:   repository.ErrNotFound,
			}
		}
		switch t.Type {
		case ledger.Income:
			sum.TotalIncome += t.Amount
			curIn += t.Amount
			ms.Income += t.Amount
			if sum.LargestIncome == nil || t.Amount > sum.LargestIncome.Amount {
				sum.LargestIncome = &TxHighlight{Amount: t.Amount, Method: ms.Name, Date: t.Date}
			}
		case ledger.Expense:
			sum.TotalExpense += t.Amount
			curOut += t.Amount
			ms.Expense += t.Amount
			if sum.LargestExpense == nil || t.Amount > sum.LargestExpense.Amount {
				sum.LargestExpense = &TxHighlight{Amount: t.Amount, Method: ms.Name, Date: t.Date}
			}
		case ledger.Transfer:
			// Moves between methods; neither income nor expense.
		}

		if t.Type == ledger.Income || t.Type == ledger.Expense {
			for _, tag := range t.Tags {
				ts, ok := perTag[tag]
				if !ok {
					ts = &TagSummary{Name: tag}
					perTag[tag] = ts
					tagOrder = append(tagOrder, tag)
				}
				if t.Type == ledger.Income {
					ts.Income += t.Amount
				} else {
					ts.Expense += t.Amount
				}
			}
		}
	}
	finishMonth()

	sum.IncomePct, sum.ExpensePct = split(sum.TotalIncome, sum.TotalExpense)
	sum.MonthSpan = monthSpan(p, firstIdx, lastIdx)

	for _, m := range methodList {
		ms := perMethod[m.ID]
		ms.IncomeShare = share(ms.Income, sum.TotalIncome)
		ms.ExpenseShare = share(ms.Expense, sum.TotalExpense)
		if p.Mode != ledger.Monthly && sum.MonthSpan > 0 {
			ms.MonthlyAvgIn = ms.Income / ledger.Cents(sum.MonthSpan)
			ms.MonthlyAvgOut = ms.Expense / ledger.Cents(sum.MonthSpan)
		}
		sum.Methods = append(sum.Methods, *ms)
	}
	sort.Strings(tagOrder)
	for _, tag := range tagOrder {
		ts := perTag[tag]
		ts.IncomeShare = share(ts.Income, sum.TotalIncome)
		ts.ExpenseShare = share(ts.Expense, sum.TotalExpense)
		sum.Tags = append(sum.Tags, *ts)
	}
	return sum, nil
}

// monthSpan is the divisor for monthly averages: a year always averages
// over 12 months, all-time over the observed first..last month span.
func monthSpan(p ledger.Period, firstIdx, lastIdx int) int {
	switch p.Mode {
	case ledger.Yearly:
		return 12
	case ledger.All:
		if firstIdx < 0 {
			return 0
		}
		return lastIdx - firstIdx + 1
	default:
		return 1
	}
}

// split returns the income/expense percentage split, 0/0 when both are 0.
func split(income, expense ledger.Cents) (float64, float64) {
	total := income + expense
	if total == 0 {
		return 0, 0
	}
	in := income.Float() / total.Float() * 100
	return in, 100 - in
}

// share is pct-of-total, defined as 0 (not NaN) when the total is 0.
func share(part, total ledger.Cents) float64 {
	if total == 0 {
		return 0
	}
	return part.Float() / total.Float() * 100
}
