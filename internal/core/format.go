package core

import (
	"strconv"
	"strings"
)

// FormatKSh renders an amount as "KSh 12,345", rounded to the nearest
// whole shilling first.
func FormatKSh(m Money) string {
	return "KSh " + groupThousands(m.RoundedUnits())
}

func groupThousands(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	pre := len(digits) % 3
	if pre > 0 {
		b.WriteString(digits[:pre])
	}
	for i := pre; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}

var iconLabels = map[string]string{
	"rent":          "House",
	"utilities":     "Light",
	"transport":     "Bus",
	"food":          "Plate",
	"entertainment": "Movie",
	"emergency":     "Shield",
	"loans":         "Credit Card",
}

// IconFor picks a display label from the first word of a category name.
func IconFor(name string) string {
	first := strings.FieldsFunc(name, func(r rune) bool { return r == ' ' || r == '/' })
	if len(first) == 0 {
		return "Money"
	}
	if icon, ok := iconLabels[strings.ToLower(first[0])]; ok {
		return icon
	}
	return "Money"
}
