package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"irislint/internal/balance"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, FileName)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	p := writeConfig(t, dir, `
[scan]
comment = ";;"
strings = "line"

[check]
extensions = [".iris", ".sexp"]
context = 2
exclude = ["dist_test/**"]
`)
	f, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if f.Root != dir {
		t.Errorf("Root = %q, want %q", f.Root, dir)
	}
	if !f.IsDefined("scan", "comment") || f.IsDefined("check", "jobs") {
		t.Error("IsDefined must follow the file contents")
	}
	opts, err := f.Config.ScanOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.CommentMarker != ";;" || opts.Strings != balance.StringsEndAtNewline {
		t.Errorf("unexpected scan options %+v", opts)
	}
	if f.Config.Check.Context != 2 || len(f.Config.Check.Extensions) != 2 {
		t.Errorf("unexpected check config %+v", f.Config.Check)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "unknown key", body: "[scan]\ncolour = \"x\"\n", want: "unknown keys: scan.colour"},
		{name: "bad policy", body: "[scan]\nstrings = \"wrap\"\n", want: "unknown string policy"},
		{name: "bad marker", body: "[scan]\ncomment = \"(\"\n", want: "invalid comment marker"},
		{name: "negative context", body: "[check]\ncontext = -1\n", want: "context must be >= 0"},
		{name: "syntax", body: "[scan\n", want: "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeConfig(t, t.TempDir(), tt.body)
			_, err := Load(p)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[check]\njobs = 3\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	f, ok, err := Discover(nested)
	if err != nil || !ok {
		t.Fatalf("Discover: ok=%v err=%v", ok, err)
	}
	if f.Config.Check.Jobs != 3 {
		t.Errorf("Jobs = %d, want 3", f.Config.Check.Jobs)
	}
}

func TestNilFileDefinesNothing(t *testing.T) {
	var f *File
	if f.IsDefined("scan") {
		t.Fatal("nil file must define nothing")
	}
}
