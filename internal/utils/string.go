package utils

import (
	"strconv"
	"strings"
)

// FormatWithCommas renders n with thousands separators, e.g. 1234567 -> 1,234,567
func FormatWithCommas(n int) string {
	s := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	b.Grow(len(s) + len(s)/3 + 1)
	b.WriteString(sign)
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatScore renders a probability as a percentage with one decimal
func FormatScore(score float64) string {
	return strconv.FormatFloat(score*100, 'f', 1, 64) + "%"
}
