package verify

import "testing"

func TestAmountNormalization(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    string
		wantErr Code
	}{
		{"plain integer", "100", "100.00", 0},
		{"already two decimals", "40.00", "40.00", 0},
		{"one decimal padded", "3.5", "3.50", 0},
		{"extra decimals truncated", "9.999", "9.99", 0},
		{"currency noise stripped", "$1,250.75", "1250.75", 0},
		{"star scanned first", "5+3*2", "11.00", 0},
		{"division", "10/4", "2.50", 0},
		{"chained same op", "2*3*4", "24.00", 0},
		{"mixed chain", "100-20+5", "75.00", 0},
		{"zero rejected", "0", "0.00", CodeAmountBelowZero},
		{"negative result rejected", "5-8", "3.00", CodeAmountBelowZero},
		{"division by zero", "5/0", "", CodeInvalidAmount},
		{"empty", "", "", CodeInvalidAmount},
		{"letters only", "abc", "", CodeInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Amount(tc.input)
			if got != tc.want {
				t.Errorf("Amount(%q) = %q, want %q", tc.input, got, tc.want)
			}
			checkCode(t, err, tc.wantErr)
		})
	}
}

// The fixed */+- scan order is not standard precedence: * reduces first
// wherever it sits, then /, then +, then -.
func TestAmountFixedOperatorOrder(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"5+3*2", "11.00"},
		{"2*5+3", "13.00"},
		{"1+9/3", "4.00"},
		// + reduces before -, so 12-2+4 is 12-(2+4), not (12-2)+4.
		{"12-2+4", "6.00"},
	}
	for _, tc := range cases {
		got, err := Amount(tc.input)
		if err != nil {
			t.Fatalf("Amount(%q): %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("Amount(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

// Accepted amounts are never zero or negative.
func TestAmountNeverAcceptsNonPositive(t *testing.T) {
	for _, input := range []string{"0", "0.00", "-5", "3-3", "2-10", "0.004"} {
		if got, err := Amount(input); err == nil {
			t.Errorf("Amount(%q) accepted %q, want rejection", input, got)
		}
	}
}

func TestAmountIntegerDigitCap(t *testing.T) {
	got, err := Amount("123456789012345")
	if err != nil {
		t.Fatalf("Amount: %v", err)
	}
	if got != "1234567890.00" {
		t.Errorf("Amount cap = %q, want %q", got, "1234567890.00")
	}
}
