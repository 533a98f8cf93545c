package textutil

import (
	"strings"
	"unicode"
)

// KeySegment turns a label into a lowercase object-key segment: ASCII
// letters, digits, '-' and '_' survive, runs of anything else collapse to a
// single '_'. An empty result becomes "unknown".
func KeySegment(value string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	if out := strings.Trim(b.String(), "_-"); out != "" {
		return out
	}
	return "unknown"
}
