package diagfmt

import (
	"bytes"
	"io/fs"
	"strings"
	"testing"

	"irislint/internal/diag"
	"irislint/internal/source"
)

func sampleReports(t *testing.T) ([]*FileReport, *source.FileSet) {
	t.Helper()
	fset := source.NewFileSetWithBase("/home/user/project")

	okID := fset.AddVirtual("/home/user/project/examples/ok.iris", []byte("(a (b))\n"))
	badID := fset.AddVirtual("/home/user/project/examples/bad.iris", []byte("(defs\n  (x))\n)\n)"))

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.BalUnmatchedClose, source.Span{File: badID, Start: 15, End: 16}, "Unmatched ')' at 4:1"))
	bag.Add(diag.NewError(diag.BalUnclosedOpen, source.Span{File: badID, Start: 0, End: 1}, "Unclosed '(' opened at 1:1").
		WithNote(source.Span{File: badID, Start: 0, End: 5}, "unclosed form (defs"))

	missing := diag.NewBag(1)
	missing.Add(diag.NewIOError("examples/none.iris", fs.ErrNotExist))

	return []*FileReport{
		{File: okID, Path: "examples/ok.iris", Loaded: true, Bag: diag.NewBag(10), Opens: 2, Closes: 2},
		{File: badID, Path: "examples/bad.iris", Loaded: true, Bag: bag, Balance: 0, Opens: 2, Closes: 3},
		{Path: "examples/none.iris", Bag: missing},
	}, fset
}

func TestPretty(t *testing.T) {
	reports, fset := sampleReports(t)

	var buf bytes.Buffer
	if err := Pretty(&buf, reports, fset, PrettyOpts{ShowNotes: true}); err != nil {
		t.Fatal(err)
	}

	want := strings.Join([]string{
		"OK: parentheses balanced: examples/ok.iris",
		"FAIL: examples/bad.iris",
		"- Unmatched ')' at 4:1",
		"- Unclosed '(' opened at 1:1",
		"  note: unclosed form (defs",
		"ERROR: file not found: examples/none.iris",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyContext(t *testing.T) {
	reports, fset := sampleReports(t)

	var buf bytes.Buffer
	if err := Pretty(&buf, reports[1:2], fset, PrettyOpts{Context: 1}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"      3 | )\n>     4 | )\n        | ^",
		">     1 | (defs\n        | ^\n      2 |   (x))",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "note:") {
		t.Error("notes must be hidden unless requested")
	}
}

func TestPathModes(t *testing.T) {
	reports, fset := sampleReports(t)

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{name: "as given", mode: PathModeAuto, contains: "FAIL: examples/bad.iris"},
		{name: "absolute", mode: PathModeAbsolute, contains: "FAIL: /home/user/project/examples/bad.iris"},
		{name: "relative", mode: PathModeRelative, contains: "FAIL: examples/bad.iris"},
		{name: "basename", mode: PathModeBasename, contains: "FAIL: bad.iris"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Pretty(&buf, reports, fset, PrettyOpts{PathMode: tt.mode}); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(buf.String(), tt.contains) {
				t.Errorf("expected %q in:\n%s", tt.contains, buf.String())
			}
		})
	}
}

func TestShort(t *testing.T) {
	reports, fset := sampleReports(t)

	var buf bytes.Buffer
	if err := Short(&buf, reports, fset, false); err != nil {
		t.Fatal(err)
	}
	want := "error BAL1002 examples/bad.iris:1:1 Unclosed '(' opened at 1:1\n" +
		"error BAL1001 examples/bad.iris:4:1 Unmatched ')' at 4:1\n" +
		"error IO4002 examples/none.iris:0:0 failed to load file: file does not exist\n"
	if got := buf.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}
