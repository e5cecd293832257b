package insight

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// FormatPrice renders a USD price. Prices of at least one dollar get
// thousands separators and two decimals ("$1,234.50"); smaller prices keep
// four significant digits ("$0.00004320").
func FormatPrice(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
		return "$0.00"
	}

	d := decimal.NewFromFloat(p)
	if d.LessThan(one) {
		places := int32(3 - int(math.Floor(math.Log10(p))))
		small := d.Round(places)
		// Rounding up to the next power of ten adds a digit.
		if !small.LessThan(decimal.New(1, 4-places)) {
			places--
			small = d.Round(places)
		}
		if small.LessThan(one) {
			return "$" + small.StringFixed(places)
		}
		d = small
	}

	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")
	n, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return "$" + d.StringFixed(2)
	}
	return "$" + humanize.BigComma(n) + "." + frac
}

// FormatPercent renders a percentage with an explicit sign and two
// decimals ("+6.20%", "-1.00%").
func FormatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "+0.00%"
	}
	d := decimal.NewFromFloat(v).Round(2)
	if d.Sign() >= 0 {
		return "+" + d.StringFixed(2) + "%"
	}
	return d.StringFixed(2) + "%"
}

// formatPoints renders an unsigned percentage-point distance.
func formatPoints(v float64) string {
	return decimal.NewFromFloat(math.Abs(v)).StringFixed(2)
}

// formatCompact renders large dollar amounts as $28.4B, $512.0M, $9.1K.
func formatCompact(v float64) string {
	switch {
	case v >= 1_000_000_000_000:
		return fmt.Sprintf("$%.2fT", v/1_000_000_000_000)
	case v >= 1_000_000_000:
		return fmt.Sprintf("$%.1fB", v/1_000_000_000)
	case v >= 1_000_000:
		return fmt.Sprintf("$%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("$%.1fK", v/1_000)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}
