// Package ui renders store snapshots into terminal dashboard panels.
package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/copydash/client/internal/store"
)

// FlattenLimit is how many markets per category the combined "all"
// view shows.
const FlattenLimit = 5

// FormatUSD renders a dollar amount with thousands separators:
// "$1,000.00".
func FormatUSD(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "$" + withCommas(fmt.Sprintf("%.2f", v))
}

// FormatSigned renders a signed delta with a forced sign: "+$0.00" for
// non-negative values, "$-12.50" for negative ones.
func FormatSigned(v float64) string {
	if v < 0 {
		return "$-" + withCommas(fmt.Sprintf("%.2f", -v))
	}
	return "+$" + withCommas(fmt.Sprintf("%.2f", v))
}

// FormatPercent renders a percentage to one decimal: "62.5%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Abbreviate shortens large numbers: 1234 -> "1.2K", 3400000 -> "3.4M".
// Values below a thousand keep their plain form.
func Abbreviate(v float64) string {
	neg := ""
	if v < 0 {
		neg = "-"
		v = -v
	}
	switch {
	case v >= 1e6:
		return fmt.Sprintf("%s%.1fM", neg, v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%s%.1fK", neg, v/1e3)
	default:
		return fmt.Sprintf("%s%.0f", neg, v)
	}
}

// withCommas inserts thousands separators into a "1234.56"-style string.
func withCommas(s string) string {
	intPart := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	n := len(intPart)
	if n <= 3 {
		return intPart + frac
	}

	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String() + frac
}

// FlattenMarkets projects the category mapping into one display list.
// A specific category shows that category's full list in server order.
// "all" combines the first FlattenLimit entries of each category, in
// the order the server listed the categories.
func FlattenMarkets(m store.MarketsByCategory, category string) []store.MarketInfo {
	if category != "" && category != "all" {
		return m.ByCategory[category]
	}

	var out []store.MarketInfo
	for _, cat := range categoryOrder(m) {
		markets := m.ByCategory[cat]
		if len(markets) > FlattenLimit {
			markets = markets[:FlattenLimit]
		}
		out = append(out, markets...)
	}
	return out
}

// Categories lists the known category names with "all" first.
func Categories(m store.MarketsByCategory) []string {
	return append([]string{"all"}, categoryOrder(m)...)
}

// categoryOrder returns the server-provided category order, falling
// back to sorted names for snapshots without one.
func categoryOrder(m store.MarketsByCategory) []string {
	if len(m.CategoryOrder) > 0 {
		return m.CategoryOrder
	}
	names := make([]string, 0, len(m.ByCategory))
	for cat := range m.ByCategory {
		names = append(names, cat)
	}
	sort.Strings(names)
	return names
}

// formatTimeAgo formats a time as "Xs/Xm/Xh ago".
func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	elapsed := time.Since(t)

	if elapsed < time.Minute {
		return fmt.Sprintf("%.0fs ago", elapsed.Seconds())
	}
	if elapsed < time.Hour {
		return fmt.Sprintf("%.0fm ago", elapsed.Minutes())
	}
	return fmt.Sprintf("%.0fh ago", elapsed.Hours())
}

// truncateText shortens display text with an ellipsis.
func truncateText(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
