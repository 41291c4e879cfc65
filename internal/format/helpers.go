package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"mlem2/internal/caseset"
)

// CaseList prints a case set with 1-based case numbers, e.g. "{1, 4, 7}".
func CaseList(s caseset.Set) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, m := range s.Members() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(m + 1))
	}
	b.WriteByte('}')
	return b.String()
}

// FmtDuration formats a duration as "850ms", "12s" or "3m 5s".
func FmtDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	s := int(d.Seconds())
	if s >= 60 {
		return fmt.Sprintf("%dm %ds", s/60, s%60)
	}
	return fmt.Sprintf("%ds", s)
}

// Truncate shortens s to maxLen characters, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// BoolMark returns "✓" for true and "✗" for false.
func BoolMark(v bool) string {
	if v {
		return "✓"
	}
	return "✗"
}
