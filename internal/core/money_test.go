package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{".50", 50, true},
		{"5.", 500, true},
		{"5.999", 600, true},
		{"92233720368547759", 0, false}, // overflows int64 cents
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestFormatCents(t *testing.T) {
	cases := []struct {
		in  int64
		out string
	}{
		{0, "0.00"},
		{1, "0.01"},
		{100, "1.00"},
		{1234, "12.34"},
		{100005, "1000.05"},
		{-250, "-2.50"},
	}
	for _, tc := range cases {
		if got := FormatCents(tc.in); got != tc.out {
			t.Fatalf("%d expected %q, got %q", tc.in, tc.out, got)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 100}).Validate(); err != nil {
		t.Fatalf("positive amount should be valid: %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatal("zero amount should be invalid")
	}
	if err := (Money{Cents: -1}).Validate(); err == nil {
		t.Fatal("negative amount should be invalid")
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, s := range []string{"0.01", "1.00", "12.34", "999.99"} {
		cents, err := ParseDecimalToCents(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if got := FormatCents(cents); got != s {
			t.Fatalf("round trip %q -> %d -> %q", s, cents, got)
		}
	}
}
