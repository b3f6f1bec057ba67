package diagfmt

import (
	"fmt"
	"io"

	"irislint/internal/diag"
	"irislint/internal/source"
)

// Short печатает одну строку на диагностику в формате
// "<severity> <CODE> <path>:<line>:<col> <message>".
func Short(w io.Writer, reports []*FileReport, fs *source.FileSet, includeNotes bool) error {
	var all []*diag.Diagnostic
	for _, r := range reports {
		all = append(all, bagItems(r.Bag)...)
	}
	out := diag.FormatShortDiagnostics(all, fs, includeNotes)
	if out == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, out)
	return err
}
