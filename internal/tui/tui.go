// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package tui shows live sync progress in the terminal. While a push or pull
// runs, every store touched by it gets one line: a spinner while it is in
// flight, then the colored indicator of its final state.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-farrier-sync/internal/service"
)

// ErrUserQuit is returned when the user cancels the run from the keyboard.
var ErrUserQuit = errors.New("sync cancelled by user")

// Runner is the push or pull being watched.
type Runner func(ctx context.Context) error

// RunIndicators runs run while rendering the indicator board. It returns
// once both the view and run have finished; quitting the view cancels the
// context passed to run.
func RunIndicators(ctx context.Context, board *service.IndicatorBoard, title string, run Runner, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, unsubscribe := board.Subscribe()
	defer unsubscribe()

	p := tea.NewProgram(newIndicatorModel(title, events), opts...)

	done := make(chan error, 1)
	go func() {
		err := run(ctx)
		done <- err
		p.Send(runDoneMsg{err: err})
	}()

	final, err := p.Run()
	cancel()
	runErr := <-done
	if err != nil {
		return err
	}

	result, ok := final.(indicatorModel)
	if !ok {
		return tea.ErrProgramKilled
	}
	if result.quitByUser {
		return ErrUserQuit
	}
	return runErr
}
