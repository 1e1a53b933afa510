package service

import (
	"context"

	"trident-dashboards/internal/models"
	"trident-dashboards/internal/seed"
)

// SampleDataSource serves the rows bundled with the dashboard catalog. Cards
// with a variant filter return the row set recorded for the selected value;
// every other filter is accepted and ignored.
type SampleDataSource struct {
	samples map[string]seed.Samples
}

func NewSampleDataSource(catalog *seed.Catalog) *SampleDataSource {
	return &SampleDataSource{samples: catalog.Samples}
}

func (s *SampleDataSource) Query(ctx context.Context, d *models.Dashboard, filters models.FilterSelection) (models.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	samples, ok := s.samples[d.Slug]
	if !ok {
		return nil, ErrDashboardNotFound
	}

	dataset := make(models.Dataset, len(d.Cards))
	for _, card := range d.Cards {
		sample := samples[card.Key]
		rows := sample.Rows
		if card.VariantFilter != "" {
			if variant, ok := sample.Variants[filters[card.VariantFilter]]; ok {
				rows = variant
			}
		}
		dataset[card.Key] = copyRows(rows)
	}

	return dataset, nil
}

func copyRows(rows []models.Row) []models.Row {
	result := make([]models.Row, 0, len(rows))
	for _, row := range rows {
		clone := make(models.Row, len(row))
		for k, v := range row {
			clone[k] = v
		}
		result = append(result, clone)
	}
	return result
}
