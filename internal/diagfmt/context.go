package diagfmt

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"irislint/internal/source"
)

// RenderContext returns the lines around pos with the target line marked by
// '>' and a caret under the column:
//
//	>     3 | (define (f x)
//	        |         ^
//
// Lines outside the file are skipped. An empty string means nothing could be
// shown.
func RenderContext(file *source.File, pos source.LineCol, context int) string {
	if file == nil || pos.Line == 0 {
		return ""
	}
	context = max(context, 0)
	total := int(file.LineCount())
	target := int(pos.Line)

	start := max(1, target-context)
	end := min(total, target+context)
	if start > end {
		return ""
	}

	var b strings.Builder
	for ln := start; ln <= end; ln++ {
		text := file.GetLine(uint32(ln)) //nolint:gosec // ln is bounded by LineCount
		prefix := " "
		if ln == target {
			prefix = ">"
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %5d | %s", prefix, ln, text)
		if ln == target {
			b.WriteString("\n        | ")
			b.WriteString(caretPadding(text, int(pos.Col)))
			b.WriteByte('^')
		}
	}
	return b.String()
}

// RenderContextFile reads path from disk and renders context around pos.
// A missing file yields an error wrapping fs.ErrNotExist.
func RenderContextFile(path string, pos source.LineCol, context int) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	fs := source.NewFileSet()
	id := fs.AddVirtual(path, data)
	return RenderContext(fs.Get(id), pos, context), nil
}

// caretPadding builds the whitespace that puts a caret under the col-th rune
// of line. Tabs are copied so the terminal expands them the same way; other
// runes take their display width.
func caretPadding(line string, col int) string {
	runes := utf8.RuneCountInString(line)
	col = max(1, min(col, runes+1))

	var b strings.Builder
	i := 1
	for _, r := range line {
		if i >= col {
			break
		}
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
		}
		i++
	}
	return b.String()
}
