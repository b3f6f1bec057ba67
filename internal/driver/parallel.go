package driver

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"irislint/internal/source"
	"irislint/internal/trace"
)

// scanParallel scans every loaded result in place. Each goroutine writes only
// its own slot, so no mutex is needed.
func scanParallel(ctx context.Context, fileSet *source.FileSet, results []*FileResult, opts Options) error {
	if len(results) == 0 {
		return nil
	}
	ctx, span := trace.BeginCtx(ctx, trace.ScopePhase, "scan")
	defer span.End("")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(effectiveJobs(opts.Jobs, len(results)))

	for _, r := range results {
		if !r.Loaded {
			continue
		}
		g.Go(func() error {
			// Проверка отмены между файлами
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			started := time.Now()
			emit(opts.Progress, Event{File: r.Path, Stage: StageScan, Status: StatusWorking})

			fctx, fspan := trace.BeginCtx(gctx, trace.ScopeFile, "file:"+r.Path)
			file := fileSet.Get(r.FileID)
			res, cached := scanFile(fctx, file, opts)
			r.Scan = res
			r.Cached = cached
			r.Bag = buildBag(file, &r.Scan, opts.MaxDiagnostics)

			status := StatusDone
			if !res.OK() {
				status = StatusFailed
			}
			fspan.WithExtra("opens", strconv.Itoa(res.Opens)).
				WithExtra("closes", strconv.Itoa(res.Closes)).
				WithExtra("balance", strconv.Itoa(res.Balance)).
				End(string(status))

			emit(opts.Progress, Event{File: r.Path, Stage: StageScan, Status: status, Elapsed: time.Since(started)})
			return nil
		})
	}

	return g.Wait()
}
