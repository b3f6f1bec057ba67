package driver

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/google/uuid"

	"irislint/internal/balance"
	"irislint/internal/diag"
	"irislint/internal/source"
	"irislint/internal/testkit"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

func failingFiles(res *Result) []string {
	var out []string
	for _, f := range res.Files {
		if !f.OK() {
			out = append(out, filepath.Base(f.Path))
		}
	}
	sort.Strings(out)
	return out
}

// Batch of N files where exactly K are unbalanced reports exactly those K.
func TestCheckPathsReportsExactlyFailingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.iris":        "(define (f x) (+ x 1))\n",
		"b.iris":        "(a))\n",
		"c.iris":        "(program\n  (x\n",
		"d.iris":        "(display \"(\") ; (\n",
		"nested/e.iris": "(()())",
		"notes.txt":     "(((",
	})

	for _, jobs := range []int{1, 4} {
		res, err := CheckPaths(context.Background(), []string{dir}, Options{Jobs: jobs, MaxDiagnostics: 100})
		if err != nil {
			t.Fatalf("jobs=%d: unexpected error: %v", jobs, err)
		}
		if len(res.Files) != 5 {
			t.Fatalf("jobs=%d: expected 5 files, got %d", jobs, len(res.Files))
		}
		if got, want := failingFiles(res), []string{"b.iris", "c.iris"}; !reflect.DeepEqual(got, want) {
			t.Errorf("jobs=%d: failing = %v, want %v", jobs, got, want)
		}
		if !res.HasDiagnostics() || res.HasEnvErrors() {
			t.Errorf("jobs=%d: HasDiagnostics=%v HasEnvErrors=%v", jobs, res.HasDiagnostics(), res.HasEnvErrors())
		}
	}

	clean, err := CheckPaths(context.Background(), []string{filepath.Join(dir, "a.iris"), filepath.Join(dir, "nested")}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if clean.HasDiagnostics() || len(clean.Files) != 2 {
		t.Errorf("expected 2 clean files, got %+v", failingFiles(clean))
	}
}

func TestCheckPathsGlobAndMissing(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"one.iris": "(a)",
		"two.iris": "(b",
	})

	args := []string{
		filepath.Join(dir, "*.iris"),
		filepath.Join(dir, "missing.iris"),
		filepath.Join(dir, "*.none"),
	}
	res, err := CheckPaths(context.Background(), args, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Files) != 4 {
		t.Fatalf("expected 4 results, got %d", len(res.Files))
	}
	if !res.HasEnvErrors() {
		t.Fatal("missing inputs must count as environment errors")
	}
	for _, f := range res.Files[2:] {
		if f.Loaded {
			t.Fatalf("%s must not load", f.Path)
		}
		if !errors.Is(f.Err, fs.ErrNotExist) {
			t.Errorf("%s: expected fs.ErrNotExist, got %v", f.Path, f.Err)
		}
		if items := f.Bag.Items(); len(items) != 1 || items[0].Code != diag.IOFileNotFound {
			t.Errorf("%s: expected one IO4002 diagnostic, got %+v", f.Path, items)
		}
	}
	if failing := failingFiles(res); !reflect.DeepEqual(failing, []string{"*.none", "missing.iris", "two.iris"}) {
		t.Errorf("failing = %v", failing)
	}
}

func TestCheckFileMissing(t *testing.T) {
	_, err := CheckFile(context.Background(), filepath.Join(t.TempDir(), "nope.iris"), Options{})
	if !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestCheckFileRejectsBadOptions(t *testing.T) {
	opts := Options{Scan: balance.Options{CommentMarker: "("}}
	if _, err := CheckFile(context.Background(), "x.iris", opts); err == nil {
		t.Fatal("expected options error")
	}
}

func TestBuildBagSpansAndNotes(t *testing.T) {
	fset := source.NewFileSet()
	id := fset.AddVirtual("s.iris", []byte("(defs\n  (x \"open\n)"))
	file := fset.Get(id)

	res := balance.Scan(file.Content, balance.DefaultOptions())
	bag := buildBag(file, &res, 10)

	items := bag.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(items))
	}

	inner, outer := items[0], items[1]
	if inner.Code != diag.BalUnclosedOpen || inner.Message != "Unclosed '(' opened at 2:3" {
		t.Errorf("unexpected inner diagnostic %+v", inner)
	}
	if start, _ := fset.Resolve(inner.Primary); start != (source.LineCol{Line: 2, Col: 3}) {
		t.Errorf("inner span resolves to %+v", start)
	}
	if len(inner.Notes) != 2 || inner.Notes[0].Msg != "unclosed form (x" ||
		inner.Notes[1].Msg != "string literal opened at 2:6 is never closed" {
		t.Errorf("unexpected inner notes %+v", inner.Notes)
	}
	if len(outer.Notes) != 1 || outer.Notes[0].Msg != "unclosed form (defs" {
		t.Errorf("unexpected outer notes %+v", outer.Notes)
	}
}

func TestCheckTargetsProgressEvents(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"ok.iris": "()", "bad.iris": ")"})

	ch := make(chan Event, 64)
	targets := []Target{{Path: filepath.Join(dir, "ok.iris")}, {Path: filepath.Join(dir, "bad.iris")}}
	if _, err := CheckTargets(context.Background(), targets, Options{Progress: ChannelSink{Ch: ch}}); err != nil {
		t.Fatal(err)
	}
	close(ch)

	final := map[string]Status{}
	loaded := map[string]bool{}
	for ev := range ch {
		name := filepath.Base(ev.File)
		switch {
		case ev.Stage == StageLoad && ev.Status == StatusDone:
			loaded[name] = true
		case ev.Stage == StageScan && ev.Status != StatusWorking:
			if !loaded[name] {
				t.Errorf("%s scanned before its load finished", name)
			}
			final[name] = ev.Status
		}
	}
	if final["ok.iris"] != StatusDone || final["bad.iris"] != StatusFailed {
		t.Errorf("unexpected final statuses %v", final)
	}
}

func TestCheckUsesResultCache(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"f.iris": "(a (b\n)) )"})
	cache, err := OpenResultCacheAt(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Cache: cache}
	path := filepath.Join(dir, "f.iris")

	first, err := CheckFile(context.Background(), path, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := CheckFile(context.Background(), path, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.Files[0].Cached || !second.Files[0].Cached {
		t.Fatalf("cached flags: first=%v second=%v", first.Files[0].Cached, second.Files[0].Cached)
	}
	if !reflect.DeepEqual(first.Files[0].Scan, second.Files[0].Scan) {
		t.Errorf("cached result differs:\n%+v\n%+v", first.Files[0].Scan, second.Files[0].Scan)
	}

	opts.Scan.Strings = balance.StringsEndAtNewline
	third, err := CheckFile(context.Background(), path, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.Files[0].Cached {
		t.Error("different options must not hit the cache")
	}
}

func TestCheckPathsRepositoryTestdata(t *testing.T) {
	root := filepath.Join("..", "..", "testdata")
	res, err := CheckPaths(context.Background(), []string{root}, Options{Scan: balance.DefaultOptions()})
	if err != nil {
		t.Fatalf("CheckPaths: %v", err)
	}
	if len(res.Files) == 0 {
		t.Fatal("no testdata files discovered")
	}
	for _, f := range res.Files {
		if !f.Loaded {
			t.Fatalf("%s not loaded: %v", f.Path, f.Err)
		}
		wantOK := filepath.Base(filepath.Dir(f.Path)) == "balanced"
		if f.OK() != wantOK {
			t.Errorf("%s: OK() = %v, want %v", f.Path, f.OK(), wantOK)
		}
		if err := testkit.CheckScanInvariants(res.FileSet, f.FileID, f.Scan); err != nil {
			t.Errorf("%s: %v", f.Path, err)
		}
	}
}

func TestCheckTargetsAssignsRunID(t *testing.T) {
	first, err := CheckTargets(context.Background(), nil, Options{})
	if err != nil {
		t.Fatalf("CheckTargets: %v", err)
	}
	second, err := CheckTargets(context.Background(), nil, Options{})
	if err != nil {
		t.Fatalf("CheckTargets: %v", err)
	}
	if _, err := uuid.Parse(first.RunID); err != nil {
		t.Fatalf("RunID %q is not a UUID: %v", first.RunID, err)
	}
	if first.RunID == second.RunID {
		t.Fatalf("two runs share RunID %q", first.RunID)
	}
}
