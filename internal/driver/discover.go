package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions are the file extensions picked up when walking a directory.
var DefaultExtensions = []string{".iris"}

// Target is one file to check, in the order it will be reported.
type Target struct {
	// Path is the file path as it will be loaded and displayed.
	Path string
	// Err is set when the argument that produced this target could not be
	// resolved (missing file, glob without matches). The target is then
	// reported as an I/O failure instead of being scanned.
	Err error
}

// DiscoverOptions controls how arguments expand into targets.
type DiscoverOptions struct {
	Extensions []string
	// Exclude holds path.Match patterns. A pattern excludes a file when it
	// matches the trailing segments of the file path or of one of its parent
	// directories, so "dist_test/**" drops the whole dist_test subtree.
	Exclude []string
}

// Discover expands files, directories and glob patterns into targets.
// Directories are walked recursively and filtered by extension; glob matches
// and walk results are sorted. Duplicates keep their first position.
// Only a malformed glob pattern is returned as an error; missing inputs
// become targets with Err set.
func Discover(args []string, opts DiscoverOptions) ([]Target, error) {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	for _, pattern := range opts.Exclude {
		if _, err := path.Match(strings.TrimSuffix(pattern, "/**"), ""); err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}

	var targets []Target
	seen := make(map[string]struct{})
	add := func(t Target) {
		key := filepath.Clean(t.Path)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		targets = append(targets, t)
	}

	for _, arg := range args {
		if isGlob(arg) {
			matches, err := filepath.Glob(arg)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
			}
			sort.Strings(matches)
			kept := 0
			for _, m := range matches {
				if excluded(m, opts.Exclude) {
					continue
				}
				if info, err := os.Stat(m); err == nil && info.IsDir() {
					continue
				}
				add(Target{Path: m})
				kept++
			}
			if kept == 0 {
				add(Target{Path: arg, Err: fmt.Errorf("no files match %q: %w", arg, fs.ErrNotExist)})
			}
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			add(Target{Path: arg, Err: err})
			continue
		}
		if !info.IsDir() {
			add(Target{Path: arg})
			continue
		}

		files, err := listFiles(arg, exts, opts.Exclude)
		if err != nil {
			add(Target{Path: arg, Err: fmt.Errorf("failed to walk %s: %w", arg, err)})
			continue
		}
		for _, f := range files {
			add(Target{Path: f})
		}
	}
	return targets, nil
}

// listFiles возвращает отсортированный список файлов с нужными расширениями
func listFiles(dir string, exts, exclude []string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != dir && excluded(p, exclude) {
				return filepath.SkipDir
			}
			return nil
		}
		if hasExtension(p, exts) && !excluded(p, exclude) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

func isGlob(arg string) bool {
	return strings.ContainsAny(arg, "*?[")
}

func hasExtension(p string, exts []string) bool {
	ext := filepath.Ext(p)
	for _, e := range exts {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

func excluded(p string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	slash := filepath.ToSlash(filepath.Clean(p))
	for _, pattern := range patterns {
		pattern = strings.TrimSuffix(pattern, "/**")
		for cur := slash; cur != "." && cur != "/" && cur != ""; cur = path.Dir(cur) {
			if matchTail(pattern, cur) {
				return true
			}
			if !strings.Contains(cur, "/") {
				break
			}
		}
	}
	return false
}

// matchTail reports whether pattern matches p or one of its trailing segment
// runs: "a/b/c" is tried as "a/b/c", "b/c" and "c".
func matchTail(pattern, p string) bool {
	for {
		if ok, err := path.Match(pattern, p); err == nil && ok {
			return true
		}
		i := strings.IndexByte(p, '/')
		if i < 0 {
			return false
		}
		p = p[i+1:]
	}
}

// IsNotFound reports whether err means a requested input does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
