package service

import (
	"fmt"

	"github.com/rudradey/hisab/internal/ledger"
)

// DeltaView carries period-over-period percentage changes rendered for
// display: "↑12.34", "↓12.34", "∞" (previous was zero), or "" when delta
// display is off (All-time has no previous period).
type DeltaView struct {
	TotalIncome   string
	TotalExpense  string
	MethodIncome  map[string]string
	MethodExpense map[string]string
	TagIncome     map[string]string
	TagExpense    map[string]string
}

// Diff compares two summaries metric by metric. withDelta is false for
// All-time mode, where MoM/YoY is meaningless and every delta is omitted.
func Diff(current, previous Summary, withDelta bool) DeltaView {
	view := DeltaView{
		TotalIncome:   DeltaString(current.TotalIncome, previous.TotalIncome, withDelta),
		TotalExpense:  DeltaString(current.TotalExpense, previous.TotalExpense, withDelta),
		MethodIncome:  make(map[string]string),
		MethodExpense: make(map[string]string),
		TagIncome:     make(map[string]string),
		TagExpense:    make(map[string]string),
	}
	prevMethods := make(map[string]MethodSummary, len(previous.Methods))
	for _, m := range previous.Methods {
		prevMethods[m.Name] = m
	}
	for _, m := range current.Methods {
		p := prevMethods[m.Name]
		view.MethodIncome[m.Name] = DeltaString(m.Income, p.Income, withDelta)
		view.MethodExpense[m.Name] = DeltaString(m.Expense, p.Expense, withDelta)
	}
	prevTags := make(map[string]TagSummary, len(previous.Tags))
	for _, t := range previous.Tags {
		prevTags[t.Name] = t
	}
	for _, t := range current.Tags {
		p := prevTags[t.Name]
		view.TagIncome[t.Name] = DeltaString(t.Income, p.Income, withDelta)
		view.TagExpense[t.Name] = DeltaString(t.Expense, p.Expense, withDelta)
	}
	return view
}

// DeltaString renders (current-previous)/previous as a percentage arrow.
func DeltaString(current, previous ledger.Cents, withDelta bool) string {
	if !withDelta {
		return ""
	}
	if previous == 0 {
		if current == 0 {
			return "↑0.00"
		}
		return "∞"
	}
	pct := (current.Float() - previous.Float()) / previous.Float() * 100
	if pct < 0 {
		return fmt.Sprintf("↓%.2f", -pct)
	}
	return fmt.Sprintf("↑%.2f", pct)
}
