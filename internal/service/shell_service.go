package service

import (
	"context"

	"trident-dashboards/pkg/logger"
	"trident-dashboards/pkg/navigation"
)

type ShellService struct {
	table navigation.Table
	store ShellStateStore
	title string
}

func NewShellService(table navigation.Table, store ShellStateStore, title string) *ShellService {
	initMetrics()
	return &ShellService{table: table, store: store, title: title}
}

func (s *ShellService) Table() navigation.Table {
	return s.table
}

// State returns the sidebar state of the session. Store failures are logged
// and reported as the initial, expanded state.
func (s *ShellService) State(ctx context.Context, sessionID string) navigation.State {
	if sessionID == "" || s.store == nil {
		return navigation.State{}
	}

	state, err := s.store.Load(ctx, sessionID)
	if err != nil {
		shellStoreErrors.WithLabelValues("load").Inc()
		logger.FromContext(ctx).WithError(err).Warn("Failed to load shell state")
		return navigation.State{}
	}
	return state
}

// Toggle flips the sidebar state of the session and returns the new state.
// Without a session or a working store the flip is not remembered.
func (s *ShellService) Toggle(ctx context.Context, sessionID string) navigation.State {
	if sessionID == "" || s.store == nil {
		return navigation.State{}.Toggle()
	}

	state, err := s.store.Toggle(ctx, sessionID)
	if err != nil {
		shellStoreErrors.WithLabelValues("toggle").Inc()
		logger.FromContext(ctx).WithError(err).Warn("Failed to toggle shell state")
		return navigation.State{}
	}

	shellTogglesTotal.WithLabelValues(stateLabel(state.Collapsed)).Inc()
	return state
}

// View renders the shell for route, which must already be normalized.
func (s *ShellService) View(ctx context.Context, sessionID, route string) navigation.View {
	return s.table.RenderRoute(s.title, route, s.State(ctx, sessionID))
}
