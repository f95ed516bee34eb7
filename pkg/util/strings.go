package util

import "strings"

// Slugify lowercases s and collapses every run of characters outside
// [a-z0-9] into a single "-", trimming dashes at both ends.
// "BTC-USD" → "btc-usd", "^GSPC" → "gspc", "XAU/USD" → "xau-usd".
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}

// NormalizeSymbol trims and upper-cases a ticker as typed by a user.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
