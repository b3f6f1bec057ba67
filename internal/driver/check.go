package driver

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"fortio.org/safecast"
	"github.com/google/uuid"

	"irislint/internal/balance"
	"irislint/internal/diag"
	"irislint/internal/observ"
	"irislint/internal/source"
	"irislint/internal/trace"
)

// Options configures a check run.
type Options struct {
	Scan     balance.Options
	Encoding source.Encoding
	Discover DiscoverOptions
	// Jobs limits parallel scanning; <= 0 means GOMAXPROCS.
	Jobs           int
	MaxDiagnostics int
	// Cache enables the on-disk result cache when non-nil.
	Cache *ResultCache
	// Progress receives per-file events when non-nil.
	Progress ProgressSink
	// BaseDir is used for relative display paths; empty means the working
	// directory.
	BaseDir string
}

// FileResult is the outcome for one target.
type FileResult struct {
	// Path as requested (after glob/dir expansion).
	Path   string
	FileID source.FileID
	Loaded bool
	// Err is the load error when Loaded is false.
	Err    error
	Bag    *diag.Bag
	Scan   balance.Result
	Cached bool
}

// OK reports whether the file loaded and is balanced.
func (r *FileResult) OK() bool {
	return r.Loaded && r.Bag.Len() == 0
}

// Result aggregates a whole run.
type Result struct {
	// RunID identifies the run in trace output.
	RunID   string
	FileSet *source.FileSet
	Files   []*FileResult
	Timer   *observ.Timer
}

// HasDiagnostics reports whether any loaded file is unbalanced.
func (r *Result) HasDiagnostics() bool {
	for _, f := range r.Files {
		if f.Loaded && f.Bag.Len() > 0 {
			return true
		}
	}
	return false
}

// HasEnvErrors reports whether any target could not be read.
func (r *Result) HasEnvErrors() bool {
	for _, f := range r.Files {
		if !f.Loaded {
			return true
		}
	}
	return false
}

// CheckFile checks a single file. Load failures are returned as errors that
// wrap the underlying I/O error, so errors.Is(err, fs.ErrNotExist) detects a
// missing file.
func CheckFile(ctx context.Context, path string, opts Options) (*Result, error) {
	res, err := CheckTargets(ctx, []Target{{Path: path}}, opts)
	if err != nil {
		return res, err
	}
	if f := res.Files[0]; !f.Loaded {
		return res, f.Err
	}
	return res, nil
}

// CheckPaths expands files, directories and globs and checks every target.
// Unreadable targets are reported per file, not as an error.
func CheckPaths(ctx context.Context, args []string, opts Options) (*Result, error) {
	timer := observ.NewTimer()
	idx := timer.Begin("discover")
	targets, err := Discover(args, opts.Discover)
	timer.End(idx, strconv.Itoa(len(targets))+" files")
	if err != nil {
		return nil, err
	}
	return checkTargets(ctx, targets, opts, timer)
}

// CheckTargets checks already discovered targets.
func CheckTargets(ctx context.Context, targets []Target, opts Options) (*Result, error) {
	return checkTargets(ctx, targets, opts, observ.NewTimer())
}

func checkTargets(ctx context.Context, targets []Target, opts Options, timer *observ.Timer) (*Result, error) {
	if err := opts.Scan.Validate(); err != nil {
		return nil, err
	}
	opts.Scan = opts.Scan.Normalize()

	runID := uuid.NewString()
	ctx, runSpan := trace.BeginCtx(ctx, trace.ScopeRun, "check")
	defer runSpan.End("")

	fileSet := source.NewFileSetWithBase(opts.BaseDir)
	results := make([]*FileResult, len(targets))
	for i, t := range targets {
		results[i] = &FileResult{Path: t.Path}
		emit(opts.Progress, Event{File: t.Path, Stage: StageLoad, Status: StatusQueued})
	}

	idx := timer.Begin("load")
	loadTargets(ctx, fileSet, targets, results, opts)
	timer.End(idx, "")

	idx = timer.Begin("scan")
	err := scanParallel(ctx, fileSet, results, opts)
	timer.End(idx, fmt.Sprintf("jobs=%d", effectiveJobs(opts.Jobs, len(results))))

	runSpan.WithExtra("files", strconv.Itoa(len(results))).
		WithExtra("run_id", runID)
	return &Result{RunID: runID, FileSet: fileSet, Files: results, Timer: timer}, err
}

// loadTargets reads every target into the FileSet. FileSet is not safe for
// concurrent Add, so loading is sequential.
func loadTargets(ctx context.Context, fileSet *source.FileSet, targets []Target, results []*FileResult, opts Options) {
	ctx, span := trace.BeginCtx(ctx, trace.ScopePhase, "load")
	defer span.End("")
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID

	for i, t := range targets {
		r := results[i]
		r.Bag = diag.NewBag(opts.MaxDiagnostics)
		emit(opts.Progress, Event{File: t.Path, Stage: StageLoad, Status: StatusWorking})

		err := t.Err
		if err == nil {
			var id source.FileID
			id, err = fileSet.LoadEncoded(t.Path, opts.Encoding)
			if err == nil {
				r.FileID = id
				r.Loaded = true
				emit(opts.Progress, Event{File: t.Path, Stage: StageLoad, Status: StatusDone})
				continue
			}
			err = fmt.Errorf("failed to load %s: %w", t.Path, err)
		}

		r.Err = err
		r.Bag.Add(diag.NewIOError(t.Path, unwrapLoad(t, err)))
		trace.Error(tracer, trace.ScopeFile, "load:"+t.Path, err.Error(), parent)
		emit(opts.Progress, Event{File: t.Path, Stage: StageLoad, Status: StatusError, Err: err})
	}
}

// unwrapLoad keeps the diagnostic message free of the path prefix added by
// loadTargets; the path is printed next to it anyway.
func unwrapLoad(t Target, err error) error {
	if t.Err != nil {
		return t.Err
	}
	if u, ok := err.(interface{ Unwrap() error }); ok {
		if inner := u.Unwrap(); inner != nil {
			return inner
		}
	}
	return err
}

func effectiveJobs(jobs, files int) int {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(1, min(jobs, files))
}

// scanFile runs (or recalls) the scan for one loaded file.
func scanFile(ctx context.Context, file *source.File, opts Options) (balance.Result, bool) {
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID
	fingerprint := opts.Scan.Fingerprint()

	var key CacheKey
	if opts.Cache != nil {
		key = MakeCacheKey(file.Hash, fingerprint)
		res, ok, err := opts.Cache.Get(key, fingerprint)
		switch {
		case err != nil:
			trace.Point(tracer, trace.ScopeDebug, "cache", "read failed: "+err.Error(), parent)
		case ok:
			trace.Point(tracer, trace.ScopeDebug, "cache", "hit", parent)
			return res, true
		default:
			trace.Point(tracer, trace.ScopeDebug, "cache", "miss", parent)
		}
	}

	res := balance.Scan(file.Content, opts.Scan)

	if opts.Cache != nil {
		if err := opts.Cache.Put(key, fingerprint, &res); err != nil {
			trace.Point(tracer, trace.ScopeDebug, "cache", "write failed: "+err.Error(), parent)
		}
	}
	return res, false
}

// buildBag maps scanner diagnostics onto spans of file.
func buildBag(file *source.File, res *balance.Result, maxDiagnostics int) *diag.Bag {
	bag := diag.NewBag(maxDiagnostics)
	reporter := diag.BagReporter{Bag: bag}

	stringNoted := false
	for _, d := range res.Diagnostics {
		sp := delimSpan(file.ID, d.Pos)
		var b *diag.ReportBuilder
		switch d.Kind {
		case balance.UnmatchedClose:
			b = diag.ReportError(reporter, diag.BalUnmatchedClose, sp, d.String())
		case balance.UnclosedOpen:
			b = diag.ReportError(reporter, diag.BalUnclosedOpen, sp, d.String())
			if d.Form != "" {
				b.WithNote(sp, "unclosed form ("+d.Form)
			}
			if res.UnterminatedString != nil && !stringNoted {
				pos := *res.UnterminatedString
				b.WithNote(delimSpan(file.ID, pos), fmt.Sprintf("string literal opened at %s is never closed", pos))
				stringNoted = true
			}
		default:
			continue
		}
		b.Emit()
	}
	return bag
}

// delimSpan covers the single-byte delimiter at pos.
func delimSpan(id source.FileID, pos balance.Position) source.Span {
	start, err := safecast.Conv[uint32](pos.Offset)
	if err != nil {
		return source.Span{File: id}
	}
	return source.Span{File: id, Start: start, End: start + 1}
}
