package ledger

import (
	"fmt"
	"time"
)

// PeriodMode selects the aggregation window shape.
type PeriodMode int

const (
	Monthly PeriodMode = iota
	Yearly
	All
)

func (m PeriodMode) String() string {
	switch m {
	case Monthly:
		return "monthly"
	case Yearly:
		return "yearly"
	case All:
		return "all"
	}
	return "unknown"
}

// Calendar pins the valid date range of the ledger. Periods are addressed
// by a 0-based month index anchored at January of the epoch year.
type Calendar struct {
	EpochYear   int
	HorizonYear int // inclusive last valid year
}

// DefaultCalendar covers 2022 through 2037.
func DefaultCalendar() Calendar {
	return Calendar{EpochYear: 2022, HorizonYear: 2037}
}

// MaxIndex is the highest addressable month index.
func (c Calendar) MaxIndex() int {
	return (c.HorizonYear-c.EpochYear+1)*12 - 1
}

// Contains reports whether d falls inside the calendar's valid range.
func (c Calendar) Contains(d time.Time) bool {
	return d.Year() >= c.EpochYear && d.Year() <= c.HorizonYear
}

// Index returns the month index for a date.
func (c Calendar) Index(d time.Time) int {
	return (d.Year()-c.EpochYear)*12 + int(d.Month()) - 1
}

// IndexOf returns the month index for an explicit year/month pair.
func (c Calendar) IndexOf(year int, month time.Month) int {
	return (year-c.EpochYear)*12 + int(month) - 1
}

// MonthOf is the inverse of Index.
func (c Calendar) MonthOf(idx int) (year int, month time.Month) {
	return c.EpochYear + idx/12, time.Month(idx%12 + 1)
}

// Period is a Monthly, Yearly, or All-time window.
type Period struct {
	Mode  PeriodMode
	Month time.Month // Monthly only
	Year  int        // Monthly and Yearly
}

// MonthPeriod builds a monthly period.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Mode: Monthly, Month: month, Year: year}
}

// YearPeriod builds a yearly period.
func YearPeriod(year int) Period {
	return Period{Mode: Yearly, Year: year}
}

// AllPeriod covers the whole calendar.
func AllPeriod() Period {
	return Period{Mode: All}
}

func (p Period) String() string {
	switch p.Mode {
	case Monthly:
		return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
	case Yearly:
		return fmt.Sprintf("%04d", p.Year)
	default:
		return "all"
	}
}

// Bounds returns the inclusive first and last dates of the period within
// the calendar.
func (p Period) Bounds(c Calendar) (from, to time.Time) {
	switch p.Mode {
	case Monthly:
		from = time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, -1)
	case Yearly:
		from = time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to = time.Date(p.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
	default:
		from = time.Date(c.EpochYear, time.January, 1, 0, 0, 0, 0, time.UTC)
		to = time.Date(c.HorizonYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	}
	return from, to
}

// Indices returns the month indices the period spans, ascending.
func (p Period) Indices(c Calendar) []int {
	switch p.Mode {
	case Monthly:
		return []int{c.IndexOf(p.Year, p.Month)}
	case Yearly:
		out := make([]int, 0, 12)
		for m := time.January; m <= time.December; m++ {
			out = append(out, c.IndexOf(p.Year, m))
		}
		return out
	default:
		out := make([]int, 0, c.MaxIndex()+1)
		for i := 0; i <= c.MaxIndex(); i++ {
			out = append(out, i)
		}
		return out
	}
}

// Previous returns the immediately preceding period of the same mode and
// false when there is none (All-time, or the calendar floor).
func (p Period) Previous(c Calendar) (Period, bool) {
	switch p.Mode {
	case Monthly:
		idx := c.IndexOf(p.Year, p.Month)
		if idx <= 0 {
			return Period{}, false
		}
		y, m := c.MonthOf(idx - 1)
		return MonthPeriod(y, m), true
	case Yearly:
		if p.Year <= c.EpochYear {
			return Period{}, false
		}
		return YearPeriod(p.Year - 1), true
	default:
		return Period{}, false
	}
}
