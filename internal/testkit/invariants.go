package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"irislint/internal/balance"
	"irislint/internal/source"
)

// CheckScanInvariants verifies a scan result against the file it came from:
// 1) Balance equals Opens - Closes
// 2) every matched ')' consumed one '(' and the rest are reported as unclosed
// 3) every diagnostic points at the delimiter byte it names, with the same
//    line:col the FileSet resolves for that offset
// 4) unmatched closes come first in text order, unclosed opens follow innermost first
func CheckScanInvariants(fs *source.FileSet, id source.FileID, res balance.Result) error {
	file := fs.Get(id)
	if file == nil {
		return fmt.Errorf("file %d not found", id)
	}

	if res.Balance != res.Opens-res.Closes {
		return fmt.Errorf("balance %d != opens %d - closes %d", res.Balance, res.Opens, res.Closes)
	}
	unmatched := res.Count(balance.UnmatchedClose)
	unclosed := res.Count(balance.UnclosedOpen)
	if unclosed != len(res.Unclosed) {
		return fmt.Errorf("unclosed diagnostics %d != residual stack %d", unclosed, len(res.Unclosed))
	}
	if matched := res.Closes - unmatched; res.Opens-matched != unclosed {
		return fmt.Errorf("opens %d - matched %d != unclosed %d", res.Opens, matched, unclosed)
	}

	if res.MaxDepth < len(res.Unclosed) {
		return fmt.Errorf("max depth %d below residual stack %d", res.MaxDepth, len(res.Unclosed))
	}
	if res.Opens > 0 && res.MaxDepth == 0 {
		return fmt.Errorf("max depth 0 with %d opens", res.Opens)
	}

	seenOpen := false
	prev := -1
	for i, d := range res.Diagnostics {
		if err := checkPosition(fs, file, d); err != nil {
			return fmt.Errorf("diagnostic %d: %w", i, err)
		}
		switch d.Kind {
		case balance.UnmatchedClose:
			if seenOpen {
				return fmt.Errorf("diagnostic %d: unmatched close after unclosed open", i)
			}
			if d.Pos.Offset <= prev {
				return fmt.Errorf("diagnostic %d: unmatched closes out of text order", i)
			}
			prev = d.Pos.Offset
		case balance.UnclosedOpen:
			if seenOpen && d.Pos.Offset >= prev {
				return fmt.Errorf("diagnostic %d: unclosed opens not innermost first", i)
			}
			seenOpen = true
			prev = d.Pos.Offset
		default:
			return fmt.Errorf("diagnostic %d: unknown kind %v", i, d.Kind)
		}
	}
	return nil
}

func checkPosition(fs *source.FileSet, file *source.File, d balance.Diagnostic) error {
	if d.Pos.Offset < 0 || d.Pos.Offset >= len(file.Content) {
		return fmt.Errorf("offset %d outside content of %d bytes", d.Pos.Offset, len(file.Content))
	}
	want := byte('(')
	if d.Kind == balance.UnmatchedClose {
		want = ')'
	}
	if got := file.Content[d.Pos.Offset]; got != want {
		return fmt.Errorf("offset %d holds %q, want %q", d.Pos.Offset, got, want)
	}
	off, err := safecast.Conv[uint32](d.Pos.Offset)
	if err != nil {
		return fmt.Errorf("offset overflow: %w", err)
	}
	lc, _ := fs.Resolve(source.Span{File: file.ID, Start: off, End: off + 1})
	if lc.Line != d.Pos.Line || lc.Col != d.Pos.Col {
		return fmt.Errorf("position %s, file resolves %d:%d", d.Pos, lc.Line, lc.Col)
	}
	return nil
}
