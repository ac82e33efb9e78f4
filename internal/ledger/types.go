package ledger

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical stored date format.
const DateLayout = "2006-01-02"

// TxType is the closed set of transaction kinds.
type TxType int

const (
	Income TxType = iota
	Expense
	Transfer
)

func (t TxType) String() string {
	switch t {
	case Income:
		return "Income"
	case Expense:
		return "Expense"
	case Transfer:
		return "Transfer"
	}
	return "Unknown"
}

// ParseTxType maps a stored string back to a TxType.
func ParseTxType(s string) (TxType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	case "transfer":
		return Transfer, nil
	}
	return 0, fmt.Errorf("unknown tx type %q", s)
}

// Method is a named money sink/source. Methods are never deleted; they are
// only created, renamed, or repositioned.
type Method struct {
	ID       int64
	Name     string
	Position int
}

// Tag is a short label attached to transactions, created implicitly on
// first use.
type Tag struct {
	ID   int64
	Name string
}

// DefaultTag is attached when a transaction is submitted with no tags.
const DefaultTag = "Unknown"

// Transaction is a single financial event. ToMethodID is set only for
// transfers, in which case MethodID is the debited side.
type Transaction struct {
	ID         int64
	Date       time.Time
	Details    string
	Amount     Cents
	Type       TxType
	MethodID   int64
	ToMethodID *int64
	Tags       []string
}

// Deltas returns the signed per-method balance change this transaction
// causes.
func (t Transaction) Deltas() map[int64]Cents {
	d := make(map[int64]Cents, 2)
	switch t.Type {
	case Income:
		d[t.MethodID] = t.Amount
	case Expense:
		d[t.MethodID] = -t.Amount
	case Transfer:
		d[t.MethodID] = -t.Amount
		if t.ToMethodID != nil {
			d[*t.ToMethodID] += t.Amount
		}
	}
	return d
}

// ActivityKind identifies an entry in the append-only activity log.
type ActivityKind string

const (
	ActivityNewTX    ActivityKind = "NewTX"
	ActivityEditTX   ActivityKind = "EditTX"
	ActivityDeleteTX ActivityKind = "DeleteTX"
	ActivityIDSwap   ActivityKind = "IDNumSwap"
	ActivitySearchTX ActivityKind = "SearchTX"
)
