package verify

import "strings"

// TxType resolves a transaction type from its first letter: i -> Income,
// e -> Expense, t -> Transfer. Anything else clears the field.
func TxType(input string) (string, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return "", errf(CodeInvalidTxType, "transaction type is empty")
	}
	switch s[0] {
	case 'i':
		return "Income", nil
	case 'e':
		return "Expense", nil
	case 't':
		return "Transfer", nil
	}
	return "", errf(CodeInvalidTxType, "unknown transaction type %q", input)
}
