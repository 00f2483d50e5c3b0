package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"jasmine/internal/buildpipeline"
	"jasmine/internal/ui"
)

// uiMode is the --ui setting of `jasmine build`.
type uiMode uint8

const (
	uiAuto uiMode = iota
	uiOn
	uiOff
)

func parseUIMode(value string) (uiMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return uiAuto, nil
	case "on":
		return uiOn, nil
	case "off":
		return uiOff, nil
	}
	return uiAuto, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// enabled decides whether the progress view replaces line output. Auto
// needs a terminal on out; quiet or machine-readable runs never get one.
func (m uiMode) enabled(out *os.File, s *commandSettings) bool {
	if s.quiet || s.diagFormat == "json" {
		return false
	}
	switch m {
	case uiOn:
		return true
	case uiOff:
		return false
	}
	return out != nil && isTerminal(out)
}

type batchOutcome struct {
	items []buildpipeline.BatchItem
	err   error
}

// runBuildWithUI runs BuildAll in the background and feeds its events to
// the progress view until the batch finishes.
func runBuildWithUI(ctx context.Context, title string, files []string, req *buildpipeline.BatchRequest) ([]buildpipeline.BatchItem, error) {
	if req == nil {
		return nil, fmt.Errorf("missing build request")
	}
	events := make(chan buildpipeline.Event, 256)
	done := make(chan batchOutcome, 1)

	go func() {
		defer close(events)
		batch := *req
		batch.Template.Progress = buildpipeline.ChannelSink{Ch: events}
		items, err := buildpipeline.BuildAll(ctx, &batch)
		done <- batchOutcome{items: items, err: err}
	}()

	_, uiErr := tea.NewProgram(ui.NewProgressModel(title, files, events), tea.WithOutput(os.Stdout)).Run()
	outcome := <-done
	if uiErr != nil {
		return outcome.items, fmt.Errorf("progress view: %w", uiErr)
	}
	return outcome.items, outcome.err
}
