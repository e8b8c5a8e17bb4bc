// Package engine is the deterministic fallback intent classifier. It turns
// one user message into an IntentResult by normalizing the text, matching it
// against an ordered template library, extracting parameters, resolving
// product mentions and scoring the outcome. The engine itself is pure and
// synchronous; the injected resolver is the only component that performs
// I/O.
package engine

import (
	"regexp"
	"strings"
)

// curly quotes fold to their ASCII forms before any other processing so
// phone keyboards and copy-pasted text behave like typed quotes.
var quoteFolder = strings.NewReplacer("“", `"`, "”", `"`, "‘", "'", "’", "'")

var quotedSpanPattern = regexp.MustCompile(`"([^"]+)"`)

// Normalize lowercases, trims, collapses whitespace runs and strips a quote
// pair wrapping the whole message. It never fails and is idempotent:
// Normalize(Normalize(s)) == Normalize(s). Interior quoted spans survive so
// extraction can still find them.
func Normalize(s string) string {
	s = quoteFolder.Replace(s)
	s = strings.TrimSpace(s)

	// A message entirely wrapped in one quote pair is unwrapped; quotes
	// around a span inside the message are left alone.
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' &&
		!strings.Contains(s[1:len(s)-1], `"`) {
		s = s[1 : len(s)-1]
	}

	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// QuotedSpans returns the contents of interior double-quoted spans in order
// of appearance, with the original casing preserved.
func QuotedSpans(s string) []string {
	s = quoteFolder.Replace(s)
	matches := quotedSpanPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		span := strings.TrimSpace(m[1])
		if span != "" {
			out = append(out, span)
		}
	}
	return out
}

// message is one user message in the three forms matching and extraction
// work on.
type message struct {
	raw    string
	norm   string
	quoted []string
}

func newMessage(raw string) *message {
	return &message{
		raw:    raw,
		norm:   Normalize(raw),
		quoted: QuotedSpans(raw),
	}
}

// containsAny reports whether the normalized text contains any of the
// phrases.
func (m *message) containsAny(phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(m.norm, p) {
			return true
		}
	}
	return false
}
