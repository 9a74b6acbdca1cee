package core

import "testing"

func TestRound(t *testing.T) {
	cases := []struct {
		in  float64
		out float64
	}{
		{1.005, 1.01}, // ties away from zero, not banker's
		{1.004, 1.00},
		{-1.005, -1.01},
		{2.675, 2.68},
		{0.125, 0.13}, // exactly representable tie still goes up
		{0, 0},
		{33.333333, 33.33},
		{16.666666, 16.67},
	}
	for _, tc := range cases {
		if got := Round(tc.in); got != tc.out {
			t.Errorf("Round(%v) = %v, want %v", tc.in, got, tc.out)
		}
	}
}

func TestRoundIdempotent(t *testing.T) {
	for _, v := range []float64{12.34, 0.01, 99.99, 1234.56} {
		if Round(v) != v {
			t.Errorf("Round(%v) changed an already-rounded value", v)
		}
	}
}

func TestCentsFromFloat(t *testing.T) {
	cases := []struct {
		in  float64
		out int64
		ok  bool
	}{
		{12.34, 1234, true},
		{0, 0, true},
		{0.005, 1, true},
		{1.005, 101, true}, // same tie handling as Round
		{62.5, 6250, true},
		{-0.01, 0, false},
	}
	for _, tc := range cases {
		got, err := CentsFromFloat(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Errorf("CentsFromFloat(%v) = %d, %v; want %d", tc.in, got, err, tc.out)
			}
		} else if err == nil {
			t.Errorf("CentsFromFloat(%v) expected error", tc.in)
		}
	}
}

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
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

func TestMoneyString(t *testing.T) {
	if got := (Money{Cents: 1234}).String(); got != "12.34" {
		t.Errorf("Money string = %q, want 12.34", got)
	}
	if got := (Money{Cents: 5}).String(); got != "0.05" {
		t.Errorf("Money string = %q, want 0.05", got)
	}
}
