package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"irislint/internal/diag"
	"irislint/internal/source"
)

type palette struct {
	ok   *color.Color
	fail *color.Color
	note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		ok:   color.New(color.FgGreen, color.Bold),
		fail: color.New(color.FgRed, color.Bold),
		note: color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.ok, p.fail, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty печатает отчёты в человекочитаемом виде:
//
//	OK: parentheses balanced: <path>
//	FAIL: <path>
//	- Unmatched ')' at L:C
//	- Unclosed '(' opened at L:C
//
// Если opts.Context > 0, после каждой диагностики выводится контекст строк.
func Pretty(w io.Writer, reports []*FileReport, fs *source.FileSet, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	for _, r := range reports {
		if err := prettyReport(w, r, fs, opts, p); err != nil {
			return err
		}
	}
	return nil
}

func prettyReport(w io.Writer, r *FileReport, fs *source.FileSet, opts PrettyOpts, p palette) error {
	path := displayPath(r, fs, opts.PathMode)

	if !r.Loaded {
		for _, d := range bagItems(r.Bag) {
			if d.Code == diag.IOFileNotFound {
				if _, err := fmt.Fprintf(w, "%s file not found: %s\n", p.fail.Sprint("ERROR:"), path); err != nil {
					return err
				}
				continue
			}
			if _, err := fmt.Fprintf(w, "%s %s: %s\n", p.fail.Sprint("ERROR:"), path, d.Message); err != nil {
				return err
			}
		}
		return nil
	}

	if r.OK() {
		_, err := fmt.Fprintf(w, "%s %s\n", p.ok.Sprint("OK:"), "parentheses balanced: "+path)
		return err
	}

	if _, err := fmt.Fprintf(w, "%s %s\n", p.fail.Sprint("FAIL:"), path); err != nil {
		return err
	}

	var file *source.File
	if fs != nil {
		file = fs.Get(r.File)
	}
	for _, d := range r.Bag.Items() {
		if _, err := fmt.Fprintf(w, "- %s\n", d.Message); err != nil {
			return err
		}
		if opts.ShowNotes {
			for _, n := range d.Notes {
				if _, err := fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), n.Msg); err != nil {
					return err
				}
			}
		}
		if opts.Context > 0 && file != nil {
			start, _ := fs.Resolve(d.Primary)
			if ctx := RenderContext(file, start, opts.Context); ctx != "" {
				if _, err := fmt.Fprintln(w, ctx); err != nil {
					return err
				}
			}
		}
	}
	if dropped := r.Bag.Dropped(); dropped > 0 {
		if _, err := fmt.Fprintf(w, "- ... %d more diagnostic(s) not shown\n", dropped); err != nil {
			return err
		}
	}
	return nil
}

func bagItems(b *diag.Bag) []*diag.Diagnostic {
	if b == nil {
		return nil
	}
	return b.Items()
}
