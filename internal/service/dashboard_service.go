package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"trident-dashboards/internal/models"
	"trident-dashboards/pkg/cache"
	"trident-dashboards/pkg/logger"
	"trident-dashboards/pkg/validator"
)

const (
	dateLayout        = "2006-01-02"
	maxTextFilterSize = 64
)

// FilterError reports the filter that failed validation.
type FilterError struct {
	Filter string
	Value  string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("invalid value %q for filter %q", e.Value, e.Filter)
}

func (e *FilterError) Unwrap() error {
	return ErrInvalidFilter
}

type datasetCache interface {
	Enabled() bool
	GetCachedDataset(ctx context.Context, slug, filtersHash string, dest interface{}) error
	CacheDataset(ctx context.Context, slug, filtersHash string, dataset interface{}) error
	DeleteDataset(ctx context.Context, slug, filtersHash string) error
	InvalidateDashboards(ctx context.Context) error
}

type DashboardService struct {
	dashboards []models.Dashboard
	bySlug     map[string]int
	source     DataSource
	cache      datasetCache
	now        func() time.Time
}

func NewDashboardService(dashboards []models.Dashboard, source DataSource, c *cache.Cache) *DashboardService {
	var dc datasetCache
	if c.Enabled() {
		dc = c
	}
	return newDashboardService(dashboards, source, dc)
}

func newDashboardService(dashboards []models.Dashboard, source DataSource, dc datasetCache) *DashboardService {
	initMetrics()

	s := &DashboardService{
		dashboards: make([]models.Dashboard, len(dashboards)),
		bySlug:     make(map[string]int, len(dashboards)),
		source:     source,
		cache:      dc,
		now:        time.Now,
	}
	copy(s.dashboards, dashboards)
	for i, d := range s.dashboards {
		s.bySlug[d.Slug] = i
	}
	return s
}

func (s *DashboardService) List() []models.Dashboard {
	result := make([]models.Dashboard, len(s.dashboards))
	copy(result, s.dashboards)
	return result
}

func (s *DashboardService) Get(slug string) (*models.Dashboard, error) {
	i, ok := s.bySlug[slug]
	if !ok {
		return nil, ErrDashboardNotFound
	}
	d := s.dashboards[i]
	return &d, nil
}

// ParseFilters validates the submitted filter values of d and fills in
// defaults for the ones left empty. Unknown parameters are ignored.
func (s *DashboardService) ParseFilters(d *models.Dashboard, values url.Values) (models.FilterSelection, error) {
	selection := make(models.FilterSelection, len(d.Filters))

	for _, f := range d.Filters {
		raw := strings.TrimSpace(values.Get(f.Name))

		switch f.Kind {
		case models.FilterSelect:
			if raw == "" {
				raw = f.Default
				if raw == "" && len(f.Options) > 0 {
					raw = f.Options[0].Value
				}
				selection[f.Name] = raw
				continue
			}
			if err := validator.Var(raw, "oneof="+strings.Join(f.OptionValues(), " ")); err != nil {
				return nil, &FilterError{Filter: f.Name, Value: raw}
			}
		case models.FilterDate:
			if raw == "" {
				raw = f.Default
				if raw == "" {
					raw = s.now().Format(dateLayout)
				}
				selection[f.Name] = raw
				continue
			}
			if err := validator.Var(raw, "datetime="+dateLayout); err != nil {
				return nil, &FilterError{Filter: f.Name, Value: raw}
			}
		case models.FilterText:
			raw = validator.NormalizeText(validator.SanitizeString(raw))
			if err := validator.Var(raw, fmt.Sprintf("max=%d", maxTextFilterSize)); err != nil {
				return nil, &FilterError{Filter: f.Name, Value: raw}
			}
		}

		selection[f.Name] = raw
	}

	return selection, nil
}

// Query returns the rows of every card of the requested dashboard.
func (s *DashboardService) Query(ctx context.Context, q models.Query) (models.Dataset, error) {
	d, err := s.Get(q.Dashboard)
	if err != nil {
		return nil, err
	}

	hash := q.Filters.Hash()
	if s.cache != nil {
		var cached models.Dataset
		err := s.cache.GetCachedDataset(ctx, d.Slug, hash, &cached)
		switch {
		case err == nil:
			datasetCacheRequests.WithLabelValues("hit").Inc()
			return cached, nil
		case errors.Is(err, cache.ErrCacheMiss):
			datasetCacheRequests.WithLabelValues("miss").Inc()
		default:
			datasetCacheRequests.WithLabelValues("error").Inc()
			logger.FromContext(ctx).WithError(err).Warn("Failed to read cached dataset")
			if err := s.cache.DeleteDataset(ctx, d.Slug, hash); err != nil {
				logger.FromContext(ctx).WithError(err).Warn("Failed to drop cached dataset")
			}
		}
	}

	dataset, err := s.source.Query(ctx, d, q.Filters)
	if err != nil {
		return nil, fmt.Errorf("failed to query dashboard %s: %w", d.Slug, err)
	}

	if s.cache != nil {
		if err := s.cache.CacheDataset(ctx, d.Slug, hash, dataset); err != nil {
			logger.FromContext(ctx).WithError(err).Warn("Failed to cache dataset")
		}
	}

	return dataset, nil
}

// Acknowledge returns the placeholder message of an action. Nothing is
// generated or exported.
func (s *DashboardService) Acknowledge(ctx context.Context, slug, action string) (models.Acknowledgement, error) {
	d, err := s.Get(slug)
	if err != nil {
		return models.Acknowledgement{}, err
	}

	a, ok := d.Action(action)
	if !ok {
		return models.Acknowledgement{}, ErrActionNotFound
	}

	dashboardActions.WithLabelValues(d.Slug, a.Key).Inc()
	logger.FromContext(ctx).WithFields(map[string]interface{}{
		"dashboard": d.Slug,
		"action":    a.Key,
	}).Info("Dashboard action acknowledged")

	return models.Acknowledgement{
		Dashboard: d.Slug,
		Action:    a.Key,
		Message:   a.Acknowledgement,
	}, nil
}

// Warm drops every cached dataset and queries each dashboard with its
// default filters, so the first visitor after a restart reads fresh rows from
// the cache. It returns the first failure after trying every dashboard.
func (s *DashboardService) Warm(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	if err := s.cache.InvalidateDashboards(ctx); err != nil {
		return fmt.Errorf("failed to invalidate cached datasets: %w", err)
	}

	var firstErr error
	warmed := 0
	for i := range s.dashboards {
		if err := ctx.Err(); err != nil {
			return err
		}

		d := &s.dashboards[i]
		filters, err := s.ParseFilters(d, nil)
		if err == nil {
			_, err = s.Query(ctx, models.Query{Dashboard: d.Slug, Filters: filters})
		}
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to warm dashboard %s: %w", d.Slug, err)
			}
			continue
		}
		warmed++
	}

	logger.FromContext(ctx).WithField("dashboards", warmed).Info("Dashboard cache warmed")
	return firstErr
}
