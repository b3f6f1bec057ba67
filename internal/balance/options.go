package balance

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultCommentMarker starts a line comment. Iris treats a single ';' as a
// comment; ";;" is only a convention for full-line comments.
const DefaultCommentMarker = ";"

// StringPolicy decides what a newline does to an open string literal.
type StringPolicy uint8

const (
	// StringsSpanLines keeps the string open across newlines (Iris accepts
	// multi-line string literals).
	StringsSpanLines StringPolicy = iota
	// StringsEndAtNewline silently closes an open string at end of line.
	StringsEndAtNewline
)

func (p StringPolicy) String() string {
	switch p {
	case StringsSpanLines:
		return "span"
	case StringsEndAtNewline:
		return "line"
	}
	return "unknown"
}

// ParseStringPolicy converts "span" or "line".
func ParseStringPolicy(s string) (StringPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "span":
		return StringsSpanLines, nil
	case "line":
		return StringsEndAtNewline, nil
	default:
		return StringsSpanLines, fmt.Errorf("unknown string policy %q (expected span|line)", s)
	}
}

// Options configures the lexical rules of Scan. The zero value means defaults.
type Options struct {
	CommentMarker string
	Strings       StringPolicy
	Quote         rune
	Escape        rune
}

// DefaultOptions returns the canonical Iris rules.
func DefaultOptions() Options {
	return Options{
		CommentMarker: DefaultCommentMarker,
		Strings:       StringsSpanLines,
		Quote:         '"',
		Escape:        '\\',
	}
}

// Normalize fills zero fields with defaults.
func (o Options) Normalize() Options {
	def := DefaultOptions()
	if o.CommentMarker == "" {
		o.CommentMarker = def.CommentMarker
	}
	if o.Quote == 0 {
		o.Quote = def.Quote
	}
	if o.Escape == 0 {
		o.Escape = def.Escape
	}
	return o
}

var errBadMarker = errors.New("invalid comment marker")

// Validate rejects option sets that would make the scanner ambiguous.
func (o Options) Validate() error {
	o = o.Normalize()
	if strings.ContainsAny(o.CommentMarker, "()\n") {
		return fmt.Errorf("%w %q: must not contain parentheses or newlines", errBadMarker, o.CommentMarker)
	}
	if strings.ContainsRune(o.CommentMarker, o.Quote) {
		return fmt.Errorf("%w %q: must not contain the quote character", errBadMarker, o.CommentMarker)
	}
	if o.Quote == o.Escape {
		return fmt.Errorf("quote and escape must differ (both %q)", o.Quote)
	}
	if o.Strings > StringsEndAtNewline {
		return fmt.Errorf("unknown string policy %d", o.Strings)
	}
	return nil
}

// Fingerprint is a stable textual key of the effective options, used to key
// cached scan results.
func (o Options) Fingerprint() string {
	o = o.Normalize()
	return fmt.Sprintf("c=%q;s=%s;q=%q;e=%q", o.CommentMarker, o.Strings, o.Quote, o.Escape)
}
