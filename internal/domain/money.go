package domain

import (
	"math"
	"strconv"
	"strings"
)

// FormatPrice renders a price the way the storefront displays it:
// "R$ 1234,56". A nil price renders as "Consulte".
func FormatPrice(price *float64) string {
	if price == nil {
		return "Consulte"
	}
	return "R$ " + strings.Replace(strconv.FormatFloat(*price, 'f', 2, 64), ".", ",", 1)
}

// FormatAmount renders a known numeric amount as "R$ 1234,56".
func FormatAmount(v float64) string {
	return FormatPrice(&v)
}

// Round2 rounds a value to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
