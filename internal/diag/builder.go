package diag

import (
	"errors"
	"io/fs"

	"irislint/internal/source"
)

func New(sev Severity, code Code, primary source.Span, msg string) *Diagnostic {
	return &Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) *Diagnostic {
	return New(SevError, code, primary, msg)
}

// NewIOError builds a diagnostic for a file that could not be read.
func NewIOError(path string, err error) *Diagnostic {
	code := IOLoadFileError
	if errors.Is(err, fs.ErrNotExist) {
		code = IOFileNotFound
	}
	return &Diagnostic{
		Severity: SevError,
		Code:     code,
		Message:  "failed to load file: " + err.Error(),
		Path:     path,
	}
}

func (d *Diagnostic) WithNote(sp source.Span, msg string) *Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}
