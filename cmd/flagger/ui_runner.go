package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"flagger/internal/buildpipeline"
	"flagger/internal/ui"
)

type genOutcome struct {
	result *buildpipeline.GenResult
	err    error
}

// runGenWithUI runs Generate in the background and drives the progress
// model from its events until both finish.
func runGenWithUI(ctx context.Context, title string, files []string, req *buildpipeline.GenRequest) (*buildpipeline.GenResult, error) {
	if req == nil {
		return nil, fmt.Errorf("missing gen request")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan genOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = buildpipeline.ChannelSink{Ch: events}
		res, err := buildpipeline.Generate(ctx, &reqCopy)
		outcomeCh <- genOutcome{result: res, err: err}
		close(events)
	}()

	display := func(path string) string {
		if rel, err := filepath.Rel(req.Path, path); err == nil && rel != "." {
			return rel
		}
		return filepath.Base(path)
	}
	model := ui.NewProgressModel(title, files, display, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// ctrl+c закрывает UI раньше пайплайна: отменяем и вычерпываем события
	cancel()
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
