package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"irislint/internal/driver"
	"irislint/internal/ui"
)

type checkOutcome struct {
	result *driver.Result
	err    error
}

// runCheckWithUI checks targets in the background while a Bubble Tea program
// renders per-file progress on out.
func runCheckWithUI(ctx context.Context, out io.Writer, title string, targets []driver.Target, opts driver.Options) (*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	files := make([]string, len(targets))
	for i, t := range targets {
		files[i] = t.Path
	}

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.CheckTargets(ctx, targets, optsCopy)
		outcomeCh <- checkOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithInput(nil))
	_, uiErr := program.Run()
	// дочитываем события, если программа вышла раньше, чтобы воркеры не заблокировались
	go func() {
		for range events { //nolint:revive // drain
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
