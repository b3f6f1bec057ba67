package diagfmt

import (
	"encoding/json"
	"io"

	"irislint/internal/diag"
	"irislint/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// FileJSON is the JSON view of one checked file.
type FileJSON struct {
	OK          bool             `json:"ok"`
	Balance     int              `json:"balance"`
	Opens       int              `json:"opens"`
	Closes      int              `json:"closes"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Dropped     int              `json:"dropped,omitempty"`
}

// ReportsOutput is keyed by display path.
type ReportsOutput map[string]FileJSON

func makeLocation(span source.Span, path string, fs *source.FileSet, includePositions bool) LocationJSON {
	loc := LocationJSON{
		File:      path,
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if includePositions && fs != nil && fs.Get(span.File) != nil {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}
	return loc
}

// BuildReportsOutput формирует структуру JSON-вывода без сериализации.
func BuildReportsOutput(reports []*FileReport, fs *source.FileSet, opts JSONOpts) ReportsOutput {
	out := make(ReportsOutput, len(reports))
	for _, r := range reports {
		path := displayPath(r, fs, opts.PathMode)
		items := bagItems(r.Bag)
		maxItems := len(items)
		if opts.Max > 0 && opts.Max < maxItems {
			maxItems = opts.Max
		}

		entry := FileJSON{
			OK:          r.OK(),
			Balance:     r.Balance,
			Opens:       r.Opens,
			Closes:      r.Closes,
			Diagnostics: make([]DiagnosticJSON, 0, maxItems),
			Dropped:     len(items) - maxItems,
		}
		if r.Bag != nil {
			entry.Dropped += r.Bag.Dropped()
		}

		for _, d := range items[:maxItems] {
			entry.Diagnostics = append(entry.Diagnostics, diagnosticJSON(d, path, r.Loaded, fs, opts))
		}
		out[path] = entry
	}
	return out
}

func diagnosticJSON(d *diag.Diagnostic, path string, loaded bool, fs *source.FileSet, opts JSONOpts) DiagnosticJSON {
	withPos := opts.IncludePositions && loaded
	dj := DiagnosticJSON{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Message:  d.Message,
		Location: makeLocation(d.Primary, path, fs, withPos),
	}
	if opts.IncludeNotes && len(d.Notes) > 0 {
		dj.Notes = make([]NoteJSON, len(d.Notes))
		for j, note := range d.Notes {
			dj.Notes[j] = NoteJSON{
				Message:  note.Msg,
				Location: makeLocation(note.Span, path, fs, withPos),
			}
		}
	}
	return dj
}

// JSON форматирует отчёты в JSON: объект, ключи которого - пути файлов.
func JSON(w io.Writer, reports []*FileReport, fs *source.FileSet, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildReportsOutput(reports, fs, opts))
}
