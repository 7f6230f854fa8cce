package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"500", 50_000, true},
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"12.345", 1234, true},
		{"12.346", 1235, true},
		{"500.01", 50_001, true},
		{"0", 0, false},
		{"", 0, false},
		{"-5", 0, false},
		{"+5", 0, false},
		{"1.2.3", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseDecimalToCents(%q) = %d, %v; want %d", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseDecimalToCents(%q) expected error", tc.in)
		}
	}
}

func TestPercentOf(t *testing.T) {
	// 3% of 10,000.00 is exactly 300.00
	if got := PercentOf(1_000_000, 3); got != 30_000 {
		t.Fatalf("PercentOf(1000000, 3) = %d, want 30000", got)
	}
	// 3% of 0.33 is 0.0099 -> rounds to 0.01
	if got := PercentOf(33, 3); got != 1 {
		t.Fatalf("PercentOf(33, 3) = %d, want 1", got)
	}
	// half-up at exactly .5
	if got := PercentOf(50, 1); got != 1 {
		t.Fatalf("PercentOf(50, 1) = %d, want 1", got)
	}
}

func TestFormatPesos(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "₱0.00"},
		{50_000, "₱500.00"},
		{5_000_000, "₱50,000.00"},
		{-123_456, "-₱1,234.56"},
		{123_456_789, "₱1,234,567.89"},
	}
	for _, tc := range cases {
		if got := FormatPesos(tc.cents); got != tc.want {
			t.Fatalf("FormatPesos(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}
