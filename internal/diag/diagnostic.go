package diag

import (
	"irislint/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	// Path names the file when Primary cannot, e.g. the file failed to load.
	Path  string
	Notes []Note
}
