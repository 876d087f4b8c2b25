package utils

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable is shown in place of a metric when nothing matches the filters.
const NotAvailable = "N/A"

// FormatDollars renders a price rounded to whole dollars with thousands separators: $1,234.
func FormatDollars(v float64) string {
	return message.NewPrinter(language.English).Sprintf("$%.0f", v)
}

// FormatCount renders an integer with thousands separators: 12,345.
func FormatCount(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// FormatNights renders an average stay length with one decimal: 6.9 nights.
func FormatNights(v float64) string {
	return fmt.Sprintf("%.1f nights", v)
}
