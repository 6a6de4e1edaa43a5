package util

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var viPrinter = message.NewPrinter(language.Vietnamese)

// FormatVND renders an amount in dong the way the storefront displays prices, e.g. "1.234.567 đ".
func FormatVND(amount int64) string {
	return viPrinter.Sprintf("%d", amount) + " đ"
}

// CompactAmount renders chart axis values: 2.5tỷ, 1.2tr, 350k.
func CompactAmount(value float64) string {
	const (
		billion  = 1_000_000_000
		million  = 1_000_000
		thousand = 1_000
	)
	switch {
	case value >= billion:
		return fmt.Sprintf("%.1ftỷ", value/billion)
	case value >= million:
		return fmt.Sprintf("%.1ftr", value/million)
	case value >= thousand:
		return fmt.Sprintf("%.0fk", value/thousand)
	default:
		return fmt.Sprintf("%.0f", value)
	}
}
