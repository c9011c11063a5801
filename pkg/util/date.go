package util

import (
	"strings"
	"time"
)

// DefaultDateTpl is used when FormatDateTpl gets an empty template.
const DefaultDateTpl = "YYYY-MM-DD hh:mm"

// dateTokens is ordered so that YYYY is consumed before YY.
var dateTokens = []struct{ tpl, layout string }{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"hh", "15"},
	{"mm", "04"},
	{"ss", "05"},
}

// FormatDateTpl formats t with a template of placeholders.
//
// Supported placeholders:
//   - YYYY: 4-digit year
//   - YY: 2-digit year
//   - MM: 2-digit month (01-12)
//   - DD: 2-digit day (01-31)
//   - hh: 2-digit hour (00-23)
//   - mm: 2-digit minute (00-59)
//   - ss: 2-digit second (00-59)
//
// Example:
//
//	FormatDateTpl(t, "YYYY.MM.DD")       // "2023.11.10"
//	FormatDateTpl(t, "YYYY-MM-DD hh:mm") // "2023-11-10 00:00"
func FormatDateTpl(t time.Time, tpl string) string {
	if t.IsZero() {
		return ""
	}
	if strings.TrimSpace(tpl) == "" {
		tpl = DefaultDateTpl
	}

	var b strings.Builder
	for i := 0; i < len(tpl); {
		matched := false
		for _, tok := range dateTokens {
			if strings.HasPrefix(tpl[i:], tok.tpl) {
				b.WriteString(t.Format(tok.layout))
				i += len(tok.tpl)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(tpl[i])
			i++
		}
	}
	return b.String()
}
