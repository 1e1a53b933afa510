package service

import (
	"context"
	"errors"
	"net/url"

	"trident-dashboards/internal/models"
	"trident-dashboards/pkg/navigation"
)

var (
	ErrDashboardNotFound = errors.New("dashboard not found")
	ErrActionNotFound    = errors.New("action not found")
	ErrInvalidFilter     = errors.New("invalid filter value")
)

type ShellUseCase interface {
	Table() navigation.Table
	State(ctx context.Context, sessionID string) navigation.State
	Toggle(ctx context.Context, sessionID string) navigation.State
	View(ctx context.Context, sessionID, route string) navigation.View
}

type DashboardUseCase interface {
	List() []models.Dashboard
	Get(slug string) (*models.Dashboard, error)
	ParseFilters(d *models.Dashboard, values url.Values) (models.FilterSelection, error)
	Query(ctx context.Context, q models.Query) (models.Dataset, error)
	Acknowledge(ctx context.Context, slug, action string) (models.Acknowledgement, error)
}

// DataSource answers dashboard queries: filters in, rows out.
type DataSource interface {
	Query(ctx context.Context, d *models.Dashboard, filters models.FilterSelection) (models.Dataset, error)
}

// ShellStateStore keeps the sidebar state of each session.
type ShellStateStore interface {
	Load(ctx context.Context, sessionID string) (navigation.State, error)
	Toggle(ctx context.Context, sessionID string) (navigation.State, error)
}
