// Package format provides display formatting for currency amounts and
// condensed price labels.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Currency returns a currency string with thousands separators (e.g.
// "1,234.56" or "-1,234.56").
func Currency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	return sign + formatPositiveCurrency(math.Abs(amount))
}

// CondensePrice condenses a price into a short axis label: values of a
// million or more become "1.38M" or "15M", values of a thousand or more
// become "786k" or "1.5k", everything else is printed as an integer.
func CondensePrice(value float64) string {
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}

	switch {
	case value >= 1000000:
		millions := math.Round(value/10000) / 100
		return sign + trimFloat(millions) + "M"
	case value >= 1000:
		thousands := math.Round(value/100) / 10
		return sign + trimFloat(thousands) + "k"
	default:
		return sign + strconv.FormatFloat(math.Round(value), 'f', 0, 64)
	}
}

// trimFloat prints a float without trailing zeros ("1.38", "15", "1.5").
func trimFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func formatPositiveCurrency(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
