// Package common: pluralize.go formats currency amounts for reward labels
// and the achievement catalog ("+3 Energy", "+1 Diamond", "+20 Points").
package common

import "fmt"

// Pluralize picks the singular form for |n| == 1 and the plural otherwise.
//
// Examples:
//
//	Pluralize(1, "Point", "Points")  → "Point"
//	Pluralize(0, "Point", "Points")  → "Points"
//	Pluralize(-1, "Point", "Points") → "Point"
func Pluralize(n int64, singular, plural string) string {
	if n == 1 || n == -1 {
		return singular
	}
	return plural
}

// units maps a currency name to its singular and plural labels.
// Energy and gold are mass nouns and never take an "s".
var units = map[string][2]string{
	"energy":  {"Energy", "Energy"},
	"points":  {"Point", "Points"},
	"gold":    {"Gold", "Gold"},
	"diamond": {"Diamond", "Diamonds"},
	"luck":    {"Luck", "Luck"},
}

// FormatAmount creates a signed label such as "+5 Points" or "-3 Energy".
// Unknown currencies are printed verbatim.
func FormatAmount(amount int64, currency string) string {
	label := currency
	if u, ok := units[currency]; ok {
		label = Pluralize(amount, u[0], u[1])
	}
	if amount >= 0 {
		return fmt.Sprintf("+%d %s", amount, label)
	}
	return fmt.Sprintf("%d %s", amount, label)
}
