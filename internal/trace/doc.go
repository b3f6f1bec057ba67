// Package trace is the structured event log of irislint.
//
// A check run emits begin/end events for the run, for each phase (discover,
// load, scan, render) and for each file, plus point events for cache hits
// and load failures. Events are written as text or NDJSON.
//
// # Usage
//
//	irislint --trace=- --trace-level=detail check examples/
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: writes every event immediately (file or stderr)
//   - RingTracer: keeps the last N events, dumped when a run fails
//   - MultiTracer: fans out to several tracers
//
// # Levels
//
//   - LevelOff: nothing
//   - LevelError: error events only
//   - LevelPhase: run and phase boundaries
//   - LevelDetail: per-file spans
//   - LevelDebug: everything, including cache lookups
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.BeginCtx(ctx, trace.ScopePhase, "scan")
//	defer span.End("")
package trace
