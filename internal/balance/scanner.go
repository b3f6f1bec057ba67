package balance

import (
	"bytes"
	"unicode/utf8"
)

type mode uint8

const (
	modeNormal mode = iota
	modeString
	modeComment
)

// maxFormLen caps the head symbol captured for an OpenMark.
const maxFormLen = 32

// state is owned by a single Scan call.
type state struct {
	mode     mode
	escape   bool // только в modeString
	line     uint32
	col      uint32
	stack    []OpenMark
	strStart Position
}

// ScanString scans text with DefaultOptions.
func ScanString(text string) Result {
	return Scan([]byte(text), DefaultOptions())
}

// Scan checks text for unbalanced parentheses. It never fails.
func Scan(text []byte, opts Options) Result {
	opts = opts.Normalize()
	marker := []byte(opts.CommentMarker)

	st := state{line: 1}
	var res Result

	for off := 0; off < len(text); {
		r, size := utf8.DecodeRune(text[off:])
		st.col++
		pos := Position{Line: st.line, Col: st.col, Offset: off}

		if r == '\n' {
			st.newline(opts.Strings)
			off += size
			continue
		}

		switch st.mode {
		case modeComment:
			// до конца строки
		case modeString:
			switch {
			case st.escape:
				st.escape = false
			case r == opts.Escape:
				st.escape = true
			case r == opts.Quote:
				st.mode = modeNormal
			}
		default:
			switch {
			case bytes.HasPrefix(text[off:], marker):
				st.mode = modeComment
			case r == opts.Quote:
				st.mode = modeString
				st.strStart = pos
			case r == '(':
				res.Opens++
				st.stack = append(st.stack, OpenMark{Pos: pos, Form: formAfter(text[off+size:])})
				res.MaxDepth = max(res.MaxDepth, len(st.stack))
			case r == ')':
				res.Closes++
				if n := len(st.stack); n > 0 {
					st.stack = st.stack[:n-1]
				} else {
					res.Diagnostics = append(res.Diagnostics, Diagnostic{Kind: UnmatchedClose, Pos: pos})
				}
			}
		}
		off += size
	}

	return st.finish(res)
}

// newline applies the per-line resets.
func (st *state) newline(policy StringPolicy) {
	if st.mode == modeComment {
		st.mode = modeNormal
	}
	if st.mode == modeString && policy == StringsEndAtNewline {
		st.mode = modeNormal
	}
	st.escape = false
	st.line++
	st.col = 0
}

func (st *state) finish(res Result) Result {
	for i := len(st.stack) - 1; i >= 0; i-- {
		mark := st.stack[i]
		res.Diagnostics = append(res.Diagnostics, Diagnostic{Kind: UnclosedOpen, Pos: mark.Pos, Form: mark.Form})
	}
	if len(st.stack) > 0 {
		res.Unclosed = append([]OpenMark(nil), st.stack...)
	}
	if st.mode == modeString {
		start := st.strStart
		res.UnterminatedString = &start
	}
	res.Balance = res.Opens - res.Closes
	return res
}

// formAfter returns the symbol that follows an opening paren on the same line.
func formAfter(rest []byte) string {
	i := 0
	for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t') {
		i++
	}
	start := i
	for i < len(rest) && i-start < maxFormLen && isFormByte(rest[i]) {
		i++
	}
	return string(rest[start:i])
}

func isFormByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '_', b == '!', b == '.', b == '-':
		return true
	}
	return false
}
