package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"irislint/internal/trace"
)

// traceState keeps what finishTracing needs after Execute returns.
type traceState struct {
	tracer    trace.Tracer
	heartbeat *trace.Heartbeat
}

var activeTrace *traceState

// setupTracing inspects trace-related flags, initializes the tracer and
// attaches it to the command context.
func setupTracing(cmd *cobra.Command) error {
	root := cmd.Root()

	traceOutput, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return fmt.Errorf("failed to get trace flag: %w", err)
	}

	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return fmt.Errorf("failed to get trace-level flag: %w", err)
	}

	modeStr, err := root.PersistentFlags().GetString("trace-mode")
	if err != nil {
		return fmt.Errorf("failed to get trace-mode flag: %w", err)
	}

	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	heartbeatInterval, err := root.PersistentFlags().GetDuration("trace-heartbeat")
	if err != nil {
		return fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return err
	}
	// --trace без уровня включает phase
	if level == trace.LevelOff && traceOutput != "" && !root.PersistentFlags().Changed("trace-level") {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return err
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: traceOutput,
		RingSize:   ringSize,
		Heartbeat:  heartbeatInterval,
	})
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}

	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	activeTrace = &traceState{
		tracer:    tracer,
		heartbeat: trace.StartHeartbeat(tracer, heartbeatInterval),
	}
	return nil
}

// finishTracing stops the heartbeat and closes the tracer. When the run ended
// with an environment failure, the ring buffer (if any) is dumped to stderr.
func finishTracing(cmd *cobra.Command, code int) {
	st := activeTrace
	if st == nil {
		return
	}
	activeTrace = nil

	st.heartbeat.Stop()
	errOut := cmd.ErrOrStderr()
	if code == exitEnvironment {
		if dumped, err := trace.DumpRing(st.tracer, errOut); err != nil {
			fmt.Fprintf(errOut, "trace: dump error: %v\n", err)
		} else if dumped {
			fmt.Fprintln(errOut, "trace: ring buffer dumped above")
		}
	}
	if err := st.tracer.Close(); err != nil {
		fmt.Fprintf(errOut, "trace: close error: %v\n", err)
	}
}
