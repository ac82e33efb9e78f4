package verify

import (
	"strings"

	"github.com/shopspring/decimal"
)

const maxIntegerDigits = 10

// Amount normalizes a free-text amount. Inline arithmetic is supported:
// the expression is repeatedly reduced two operands at a time, with the
// operators scanned in the fixed textual order `*`, `/`, `+`, `-` rather
// than standard precedence, so "5+3*2" reduces `3*2` first and yields
// "11.00". The accepted value always has exactly two decimal places and a
// strictly positive value.
func Amount(input string) (string, error) {
	expr := stripExcept(input, "0123456789.*/+-")
	if expr == "" {
		return "", errf(CodeInvalidAmount, "amount %q has no numeric value", input)
	}

	for _, op := range []byte{'*', '/', '+', '-'} {
		for {
			i := findBinaryOp(expr, op)
			if i < 0 {
				break
			}
			reduced, err := reduceAt(expr, i)
			if err != nil {
				return "", err
			}
			expr = reduced
		}
	}

	d, err := decimal.NewFromString(expr)
	if err != nil {
		return "", errf(CodeInvalidAmount, "amount %q is not a number", input)
	}
	// Truncate before the sign check so 0.004 cannot slip through as an
	// accepted zero.
	d = d.Truncate(2)
	if d.Sign() <= 0 {
		return format(d.Abs()), errf(CodeAmountBelowZero, "amount must be greater than zero")
	}
	return format(d), nil
}

func format(d decimal.Decimal) string {
	s := d.Truncate(2).StringFixed(2)
	// Oversized integer parts are capped rather than rejected.
	if dot := strings.IndexByte(s, '.'); dot > maxIntegerDigits {
		s = s[:maxIntegerDigits] + s[dot:]
	}
	return s
}

// findBinaryOp returns the index of the first occurrence of op acting as a
// binary operator, or -1. An op directly after another operator (or at the
// start) is a sign, not an operator.
func findBinaryOp(expr string, op byte) int {
	for i := 1; i < len(expr)-1; i++ {
		if expr[i] == op && isNumByte(expr[i-1]) {
			return i
		}
	}
	return -1
}

// reduceAt replaces the two-operand expression around the operator at i
// with its computed value.
func reduceAt(expr string, i int) (string, error) {
	start := i - 1
	for start > 0 && isNumByte(expr[start-1]) {
		start--
	}
	// A leading '-' belongs to the left operand when it is a sign.
	if start > 0 && expr[start-1] == '-' && (start-1 == 0 || isOpByte(expr[start-2])) {
		start--
	}

	end := i + 1
	if end < len(expr) && expr[end] == '-' {
		end++
	}
	for end < len(expr) && isNumByte(expr[end]) {
		end++
	}

	left, right := expr[start:i], expr[i+1:end]
	l, errL := decimal.NewFromString(left)
	r, errR := decimal.NewFromString(right)
	if errL != nil || errR != nil {
		return "", errf(CodeInvalidAmount, "cannot evaluate %q", expr)
	}

	var v decimal.Decimal
	switch expr[i] {
	case '*':
		v = l.Mul(r)
	case '/':
		if r.IsZero() {
			return "", errf(CodeInvalidAmount, "division by zero in %q", expr)
		}
		v = l.Div(r)
	case '+':
		v = l.Add(r)
	case '-':
		v = l.Sub(r)
	}
	return expr[:start] + v.String() + expr[end:], nil
}

func isNumByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == '.'
}

func isOpByte(b byte) bool {
	return b == '*' || b == '/' || b == '+' || b == '-'
}
