package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCLI executes a fresh command tree and returns stdout, stderr and the exit
// code main would use.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "irislint.toml")
	if err := os.WriteFile(cfg, nil, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	full := append([]string{"--color", "off"}, args...)
	if !hasFlag(args, "--config") {
		full = append([]string{"--config", cfg}, full...)
	}
	root.SetArgs(full)
	err := root.Execute()
	return out.String(), errOut.String(), exitCodeFor(err)
}

func hasFlag(args []string, name string) bool {
	for _, a := range args {
		if a == name || strings.HasPrefix(a, name+"=") {
			return true
		}
	}
	return false
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: exitOK},
		{name: "diagnostics", err: &exitError{code: exitDiagnostics, silent: true}, want: exitDiagnostics},
		{name: "wrapped", err: fmt.Errorf("run: %w", &exitError{code: exitEnvironment}), want: exitEnvironment},
		{name: "plain error", err: errors.New("bad flag"), want: exitEnvironment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Fatalf("exitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitErrorMessage(t *testing.T) {
	if got := (&exitError{code: 3}).Error(); got != "exit status 3" {
		t.Fatalf("Error() = %q", got)
	}
	inner := errors.New("boom")
	ee := &exitError{code: 2, err: inner}
	if ee.Error() != "boom" || !errors.Is(ee, inner) {
		t.Fatalf("exitError does not expose the wrapped error")
	}
}

func TestCheckBalancedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ok.iris", "(defs (x \")\") ; )\n)\n")

	stdout, _, code := runCLI(t, "check", "--ui", "off", path)
	if code != exitOK {
		t.Fatalf("exit code = %d, want 0; output:\n%s", code, stdout)
	}
	want := "OK: parentheses balanced: " + path + "\n"
	if stdout != want {
		t.Fatalf("stdout = %q, want %q", stdout, want)
	}
}

func TestCheckUnbalancedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.iris", "(defs\n  (x))\n)\n)")

	stdout, _, code := runCLI(t, "check", "--ui", "off", path)
	if code != exitDiagnostics {
		t.Fatalf("exit code = %d, want 1; output:\n%s", code, stdout)
	}
	for _, want := range []string{
		"FAIL: " + path,
		"- Unmatched ')' at 4:1",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestCheckMissingFileIsEnvironmentError(t *testing.T) {
	dir := t.TempDir()
	ok := writeFile(t, dir, "ok.iris", "()")
	bad := writeFile(t, dir, "bad.iris", "(")
	missing := filepath.Join(dir, "missing.iris")

	stdout, stderr, code := runCLI(t, "check", "--ui", "off", ok, bad, missing)
	if code != exitEnvironment {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr, "ERROR: file not found: "+missing) {
		t.Errorf("stderr missing not-found line:\n%s", stderr)
	}
	if !strings.Contains(stdout, "FAIL: "+bad) || !strings.Contains(stdout, "OK: parentheses balanced: "+ok) {
		t.Errorf("stdout missing per-file results:\n%s", stdout)
	}
}

func TestCheckGlobAggregatesFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.iris", "(a)")
	writeFile(t, dir, "b.iris", "(b))")
	writeFile(t, dir, "c.iris", "((c)")

	stdout, _, code := runCLI(t, "check", "--ui", "off", "--quiet", filepath.Join(dir, "*.iris"))
	if code != exitDiagnostics {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if strings.Contains(stdout, "OK:") {
		t.Errorf("--quiet should hide balanced files:\n%s", stdout)
	}
	if got := strings.Count(stdout, "FAIL: "); got != 2 {
		t.Errorf("FAIL lines = %d, want 2:\n%s", got, stdout)
	}
}

func TestCheckShortFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.iris", ")")

	stdout, _, code := runCLI(t, "check", "--ui", "off", "--format", "short", path)
	if code != exitDiagnostics {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stdout, "error BAL1001 ") || !strings.Contains(stdout, ":1:1 Unmatched ')' at 1:1") {
		t.Fatalf("unexpected short output: %q", stdout)
	}
}

func TestCheckJSONFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.iris", "((")

	stdout, _, code := runCLI(t, "check", "--ui", "off", "--format", "json", path)
	if code != exitDiagnostics {
		t.Fatalf("exit code = %d, want 1", code)
	}
	for _, want := range []string{`"balance": 2`, `"opens": 2`, "BAL1002"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("json output missing %s:\n%s", want, stdout)
		}
	}
}

func TestCheckInvalidArguments(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ok.iris", "()")

	tests := []struct {
		name string
		args []string
	}{
		{name: "no files", args: []string{"check"}},
		{name: "bad format", args: []string{"check", "--format", "xml", path}},
		{name: "bad strings policy", args: []string{"check", "--strings", "maybe", path}},
		{name: "empty comment", args: []string{"check", "--comment", "", path}},
		{name: "negative context", args: []string{"check", "--context", "-1", path}},
		{name: "bad color", args: []string{"--color", "purple", "check", path}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, code := runCLI(t, tt.args...); code != exitEnvironment {
				t.Fatalf("exit code = %d, want 2", code)
			}
		})
	}
}

func TestConfigFileAndFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	// с ";;" одиночный ';' не комментарий, и ')' после него считается
	path := writeFile(t, dir, "c.iris", "() ; )\n")
	cfg := writeFile(t, dir, "irislint.toml", "[scan]\ncomment = \";;\"\n")

	if _, _, code := runCLI(t, "--config", cfg, "check", "--ui", "off", path); code != exitDiagnostics {
		t.Fatalf("config comment marker: exit code = %d, want 1", code)
	}
	if _, _, code := runCLI(t, "--config", cfg, "check", "--ui", "off", "--comment", ";", path); code != exitOK {
		t.Fatalf("flag should override config: exit code = %d, want 0", code)
	}
	if _, _, code := runCLI(t, "check", "--ui", "off", path); code != exitOK {
		t.Fatalf("default comment marker: exit code = %d, want 0", code)
	}
}

func TestBalanceCommand(t *testing.T) {
	dir := t.TempDir()
	over := writeFile(t, dir, "over.iris", "(a))(")
	open := writeFile(t, dir, "open.iris", "((a)")

	stdout, _, code := runCLI(t, "balance", over, open)
	if code != exitOK {
		t.Fatalf("exit code = %d, want 0", code)
	}
	want := over + " balance: 0\n" + open + " balance: 1\n"
	if stdout != want {
		t.Fatalf("stdout = %q, want %q", stdout, want)
	}

	if _, _, code := runCLI(t, "balance", filepath.Join(dir, "nope.iris")); code != exitEnvironment {
		t.Fatalf("missing file: exit code = %d, want 2", code)
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, code := runCLI(t, "version", "--format", "json", "--full")
	if code != exitOK {
		t.Fatalf("exit code = %d, want 0", code)
	}
	for _, want := range []string{`"tool": "irislint"`, `"git_commit"`, `"build_date"`} {
		if !strings.Contains(stdout, want) {
			t.Errorf("version json missing %s:\n%s", want, stdout)
		}
	}

	stdout, _, _ = runCLI(t, "version")
	if !strings.HasPrefix(stdout, "irislint ") {
		t.Errorf("pretty version = %q", stdout)
	}
	if _, _, code := runCLI(t, "version", "--format", "yaml"); code != exitEnvironment {
		t.Errorf("unsupported format: exit code = %d, want 2", code)
	}
}

func TestMemProfileFlag(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ok.iris", "()")
	heap := filepath.Join(dir, "heap.pprof")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--color", "off", "--config", writeFile(t, dir, "irislint.toml", ""), "--mem-profile", heap, "balance", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	finishProfiling(root)
	if _, err := os.Stat(heap); err != nil {
		t.Fatalf("heap profile not written: %v", err)
	}
}

func TestReportFailuresDoNotPrintUsage(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.iris", "(a))")
	missing := filepath.Join(dir, "missing.iris")

	tests := []struct {
		name string
		args []string
		code int
	}{
		{name: "unbalanced pretty", args: []string{"check", "--ui", "off", bad}, code: exitDiagnostics},
		{name: "unbalanced short", args: []string{"check", "--ui", "off", "--format", "short", bad}, code: exitDiagnostics},
		{name: "unbalanced json", args: []string{"check", "--ui", "off", "--format", "json", bad}, code: exitDiagnostics},
		{name: "missing file", args: []string{"check", "--ui", "off", missing}, code: exitEnvironment},
		{name: "glob without matches", args: []string{"check", "--ui", "off", filepath.Join(dir, "*.none")}, code: exitEnvironment},
		{name: "balance missing file", args: []string{"balance", missing}, code: exitEnvironment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, code := runCLI(t, tt.args...)
			if code != tt.code {
				t.Fatalf("exit code = %d, want %d", code, tt.code)
			}
			if strings.Contains(stdout+stderr, "Usage:") {
				t.Fatalf("usage block printed after report:\n%s%s", stdout, stderr)
			}
		})
	}
}

func TestClearCacheDropsStoredResults(t *testing.T) {
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	dir := t.TempDir()
	path := writeFile(t, dir, "ok.iris", "(a)")
	results := filepath.Join(cacheHome, "irislint")

	countEntries := func() int {
		t.Helper()
		n := 0
		err := filepath.WalkDir(results, func(_ string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				n++
			}
			return nil
		})
		if err != nil {
			t.Fatalf("walk cache: %v", err)
		}
		return n
	}

	if _, _, code := runCLI(t, "check", "--ui", "off", "--cache", path); code != exitOK {
		t.Fatalf("cached run: exit code = %d, want 0", code)
	}
	if countEntries() == 0 {
		t.Fatal("--cache stored no results")
	}

	if _, _, code := runCLI(t, "check", "--ui", "off", "--clear-cache", path); code != exitOK {
		t.Fatalf("clear run: exit code = %d, want 0", code)
	}
	if got := countEntries(); got != 0 {
		t.Fatalf("cache entries after --clear-cache = %d, want 0", got)
	}
}
