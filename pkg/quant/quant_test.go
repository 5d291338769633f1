package quant

import (
	"math"
	"testing"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		in     float64
		digits int32
		want   float64
	}{
		{100.259, 2, 100.25},
		{100.25, 2, 100.25},
		{100.999, 2, 100.99},
		{0.009, 2, 0.0},
		{42.0, 2, 42.0},
		{1.23456, 4, 1.2345},
	}
	for _, c := range cases {
		got := Truncate(c.in, c.digits)
		if got != c.want {
			t.Errorf("Truncate(%v, %d) = %v, want %v", c.in, c.digits, got, c.want)
		}
	}
}

// Truncation must never produce a value greater than its input.
func TestTruncateNeverRoundsUp(t *testing.T) {
	inputs := []float64{0.0, 0.001, 0.999, 1.005, 99.999999, 100.255, 12345.678901}
	for _, x := range inputs {
		for digits := int32(0); digits <= 8; digits++ {
			got := Truncate(x, digits)
			if got > x {
				t.Errorf("Truncate(%v, %d) = %v exceeds input", x, digits, got)
			}
			step := math.Pow(10, -float64(digits))
			if x-got > step+1e-12 {
				t.Errorf("Truncate(%v, %d) = %v dropped more than one unit of precision", x, digits, got)
			}
		}
	}
}

func TestParseFloat(t *testing.T) {
	got, err := ParseFloat("100.25000000")
	if err != nil {
		t.Fatalf("ParseFloat: %v", err)
	}
	if got != 100.25 {
		t.Errorf("got %v, want 100.25", got)
	}

	if _, err := ParseFloat("abc"); err == nil {
		t.Error("expected error for non-numeric input")
	}

	got, err = ParseFloat("")
	if err != nil || got != 0 {
		t.Errorf("empty string: got (%v, %v), want (0, nil)", got, err)
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(100.259, 2); got != "100.25" {
		t.Errorf("got %q, want %q", got, "100.25")
	}
	if got := FormatAmount(42.0, 2); got != "42" {
		t.Errorf("got %q, want %q", got, "42")
	}
}
