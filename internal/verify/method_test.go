package verify

import (
	"errors"
	"testing"
)

func TestMethodExactMatch(t *testing.T) {
	known := []string{"Bank", "Cash", "Super"}
	cases := []struct {
		input string
		want  string
	}{
		{"Bank", "Bank"},
		{"bank", "Bank"},
		{"  CASH ", "Cash"},
	}
	for _, tc := range cases {
		got, err := Method(tc.input, known)
		if err != nil {
			t.Errorf("Method(%q): unexpected error %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("Method(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestMethodFuzzySuggestion(t *testing.T) {
	known := []string{"Bank", "Cash"}
	cases := []struct {
		input string
		want  string
	}{
		{"Bnak", "Bank"},
		{"csh", "Cash"},
		{"bnk", "Bank"},
	}
	for _, tc := range cases {
		got, err := Method(tc.input, known)
		var ve *Error
		if !errors.As(err, &ve) || ve.Code != CodeInvalidTxMethod {
			t.Fatalf("Method(%q): expected InvalidTxMethod, got %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("Method(%q) suggestion = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestMethodNoKnownMethods(t *testing.T) {
	if _, err := Method("Bank", nil); err == nil {
		t.Error("expected error with empty known set")
	}
}

func TestTxType(t *testing.T) {
	cases := []struct {
		input string
		want  string
		ok    bool
	}{
		{"i", "Income", true},
		{"Expense", "Expense", true},
		{"E", "Expense", true},
		{"transfer", "Transfer", true},
		{"x", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := TxType(tc.input)
		if (err == nil) != tc.ok {
			t.Errorf("TxType(%q) error = %v, want ok=%v", tc.input, err, tc.ok)
		}
		if got != tc.want {
			t.Errorf("TxType(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestTags(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Food, food, Transport,,", "Food, Transport"},
		{"a,b,a", "a, b"},
		{"  Rent  ", "Rent"},
		{",,,", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Tags(tc.input); got != tc.want {
			t.Errorf("Tags(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestTagsForced(t *testing.T) {
	known := []string{"Food", "Transport"}

	got, err := TagsForced("food, Gadgets, Transport", known)
	var ve *Error
	if !errors.As(err, &ve) || ve.Code != CodeNonExistingTag {
		t.Fatalf("expected NonExistingTag, got %v", err)
	}
	if got != "Food, Transport" {
		t.Errorf("TagsForced = %q, want %q", got, "Food, Transport")
	}

	got, err = TagsForced("Food", known)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if got != "Food" {
		t.Errorf("TagsForced = %q, want %q", got, "Food")
	}
}
