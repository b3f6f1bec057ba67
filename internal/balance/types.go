package balance

import "fmt"

// Position is a location in the scanned text.
type Position struct {
	Line   uint32 // 1-based
	Col    uint32 // 1-based, in runes
	Offset int    // byte offset of the character
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// OpenMark records an opening delimiter that has not been closed yet.
type OpenMark struct {
	Pos Position
	// Form is the head symbol right after '(' on the same line ("define",
	// "program"), empty when there is none.
	Form string
}

// Kind classifies a structural defect.
type Kind uint8

const (
	// UnmatchedClose is a ')' seen while no '(' was open.
	UnmatchedClose Kind = iota + 1
	// UnclosedOpen is a '(' still open at end of input.
	UnclosedOpen
)

func (k Kind) String() string {
	switch k {
	case UnmatchedClose:
		return "unmatched-close"
	case UnclosedOpen:
		return "unclosed-open"
	}
	return "unknown"
}

// Diagnostic is a single structural defect found by Scan.
type Diagnostic struct {
	Kind Kind
	Pos  Position
	Form string // only for UnclosedOpen
}

// String renders the diagnostic the way the CLI prints it.
func (d Diagnostic) String() string {
	switch d.Kind {
	case UnmatchedClose:
		return fmt.Sprintf("Unmatched ')' at %s", d.Pos)
	case UnclosedOpen:
		return fmt.Sprintf("Unclosed '(' opened at %s", d.Pos)
	}
	return fmt.Sprintf("unknown diagnostic at %s", d.Pos)
}

// Result is the outcome of one Scan call.
type Result struct {
	// Diagnostics lists every UnmatchedClose in scan order, followed by every
	// UnclosedOpen from the innermost to the outermost.
	Diagnostics []Diagnostic
	// Balance is Opens - Closes. It is never re-zeroed on underflow, so it can
	// disagree with the diagnostic count.
	Balance int
	Opens   int
	Closes  int
	// MaxDepth is the deepest nesting reached, closed or not.
	MaxDepth int
	// Unclosed is the residual stack, outermost first.
	Unclosed []OpenMark
	// UnterminatedString is where a string still open at end of input began.
	// It is informational and never produces a Diagnostic.
	UnterminatedString *Position
}

// OK reports whether the text is balanced.
func (r Result) OK() bool {
	return len(r.Diagnostics) == 0
}

// Count returns the number of diagnostics of the given kind.
func (r Result) Count(kind Kind) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			n++
		}
	}
	return n
}
