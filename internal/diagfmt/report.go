package diagfmt

import (
	"irislint/internal/diag"
	"irislint/internal/source"
)

// FileReport is the outcome of checking one file as the renderers see it.
type FileReport struct {
	File source.FileID
	// Path is the name the file was requested under. It is the only location
	// available when the file failed to load.
	Path    string
	Loaded  bool
	Bag     *diag.Bag
	Balance int
	Opens   int
	Closes  int
}

// OK reports whether the file loaded and has no diagnostics.
func (r *FileReport) OK() bool {
	return r.Loaded && (r.Bag == nil || r.Bag.Len() == 0)
}

func displayPath(r *FileReport, fs *source.FileSet, mode PathMode) string {
	if !r.Loaded || fs == nil {
		return r.Path
	}
	f := fs.Get(r.File)
	if f == nil {
		return r.Path
	}
	return formatPath(f, fs, mode, r.Path)
}

func formatPath(f *source.File, fs *source.FileSet, mode PathMode, given string) string {
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		if given != "" {
			return given
		}
		return f.Path
	}
}
