package utils

import "testing"

func TestFormatDollars(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{152.72, "$153"},
		{99.4, "$99"},
		{1234, "$1,234"},
		{0, "$0"},
	}
	for _, tt := range tests {
		if got := FormatDollars(tt.in); got != tt.want {
			t.Errorf("FormatDollars(%v) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{7, "7"},
		{999, "999"},
		{48884, "48,884"},
		{1000000, "1,000,000"},
	}
	for _, tt := range tests {
		if got := FormatCount(tt.in); got != tt.want {
			t.Errorf("FormatCount(%d) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNights(t *testing.T) {
	if got := FormatNights(7.0297); got != "7.0 nights" {
		t.Errorf("FormatNights: got %q", got)
	}
	if got := FormatNights(12.5); got != "12.5 nights" {
		t.Errorf("FormatNights: got %q", got)
	}
}
