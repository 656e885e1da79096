package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"ember/internal/driver"
	"ember/internal/ui"
)

type resolveOutcome struct {
	results []driver.Outcome
	err     error
}

func runResolveWithUI(ctx context.Context, title string, eng *driver.Engine, reqs []driver.Request) ([]driver.Outcome, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan resolveOutcome, 1)

	go func() {
		eng.Progress = driver.ChannelSink{Ch: events}
		results, err := eng.ResolveAll(ctx, reqs)
		outcomeCh <- resolveOutcome{results: results, err: err}
		close(events)
	}()

	labels := make([]string, len(reqs))
	for i, req := range reqs {
		labels[i] = req.Label
	}
	model := ui.NewProgressModel(title, labels, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
