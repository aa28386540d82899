package audit

import (
	"strings"
	"time"
)

// moment-style tokens, longest first so "YYYY" wins over "YY".
var layoutTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"DD", "02"},
	{"D", "2"},
	{"dddd", "Monday"},
	{"ddd", "Mon"},
	{"HH", "15"},
	{"hh", "03"},
	{"h", "3"},
	{"mm", "04"},
	{"ss", "05"},
	{"A", "PM"},
	{"a", "pm"},
}

// GoLayout converts a moment-style date format such as "M/D/YYYY" to a Go
// time layout. Characters that are not tokens are copied through, so only
// separator literals are safe: Go would read a literal digit or a word like
// "Mon" as a layout element. Use FormatDate for arbitrary formats.
func GoLayout(format string) string {
	var b strings.Builder
	for i := 0; i < len(format); {
		matched := false
		for _, t := range layoutTokens {
			if strings.HasPrefix(format[i:], t.token) {
				b.WriteString(t.layout)
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String()
}

// FormatDate renders t with a moment-style format. Tokens are formatted one
// at a time and everything else, including text in [brackets], is written
// verbatim.
func FormatDate(t time.Time, format string) string {
	var b strings.Builder
	for i := 0; i < len(format); {
		if format[i] == '[' {
			if end := strings.IndexByte(format[i+1:], ']'); end >= 0 {
				b.WriteString(format[i+1 : i+1+end])
				i += end + 2
				continue
			}
		}
		matched := false
		for _, tok := range layoutTokens {
			if strings.HasPrefix(format[i:], tok.token) {
				b.WriteString(t.Format(tok.layout))
				i += len(tok.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String()
}
