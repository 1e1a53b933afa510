package seed

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"trident-dashboards/internal/models"
	"trident-dashboards/pkg/logger"
	"trident-dashboards/pkg/validator"
)

//go:embed data/*.json
var embeddedData embed.FS

// Catalog is the loaded set of dashboards and their sample rows.
type Catalog struct {
	Dashboards []models.Dashboard
	Samples    map[string]Samples
}

// Samples holds the rows of every card of one dashboard.
type Samples map[string]CardSamples

type CardSamples struct {
	Rows     []models.Row
	Variants map[string][]models.Row
}

type dashboardFile struct {
	models.Dashboard
	Cards []cardFile `json:"cards"`
}

type cardFile struct {
	models.Card
	Rows     []models.Row            `json:"rows"`
	Variants map[string][]models.Row `json:"variants"`
}

// DataFS returns the embedded dashboard definitions.
func DataFS() fs.FS {
	sub, err := fs.Sub(embeddedData, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// LoadDashboards reads every *.json definition in dataFS, ordered by file
// name, and validates the result as a whole.
func LoadDashboards(dataFS fs.FS) (*Catalog, error) {
	if dataFS == nil {
		return nil, fmt.Errorf("dashboard definitions are required")
	}

	entries, err := fs.ReadDir(dataFS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard definitions: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	catalog := &Catalog{Samples: make(map[string]Samples)}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".json") {
			continue
		}

		data, err := fs.ReadFile(dataFS, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		dashboard, samples, err := decodeDashboard(data)
		if err != nil {
			return nil, fmt.Errorf("invalid dashboard definition %s: %w", name, err)
		}

		if _, exists := catalog.Samples[dashboard.Slug]; exists {
			return nil, fmt.Errorf("duplicate dashboard slug %q in %s", dashboard.Slug, name)
		}

		catalog.Dashboards = append(catalog.Dashboards, dashboard)
		catalog.Samples[dashboard.Slug] = samples
	}

	if len(catalog.Dashboards) == 0 {
		return nil, fmt.Errorf("no dashboard definitions found")
	}

	logger.Debug("Dashboard catalog loaded", map[string]interface{}{"dashboards": len(catalog.Dashboards)})

	return catalog, nil
}

func decodeDashboard(data []byte) (models.Dashboard, Samples, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var file dashboardFile
	if err := decoder.Decode(&file); err != nil {
		return models.Dashboard{}, nil, err
	}

	dashboard := file.Dashboard
	dashboard.Title = strings.TrimSpace(dashboard.Title)
	dashboard.Cards = make([]models.Card, 0, len(file.Cards))
	if dashboard.Filters == nil {
		dashboard.Filters = []models.Filter{}
	}
	if dashboard.Actions == nil {
		dashboard.Actions = []models.Action{}
	}

	samples := make(Samples, len(file.Cards))
	for _, card := range file.Cards {
		dashboard.Cards = append(dashboard.Cards, card.Card)
		samples[card.Key] = CardSamples{
			Rows:     normalizeRows(card.Rows),
			Variants: normalizeVariants(card.Variants),
		}
	}

	if err := validateDashboard(&dashboard, samples); err != nil {
		return models.Dashboard{}, nil, err
	}

	return dashboard, samples, nil
}

func validateDashboard(d *models.Dashboard, samples Samples) error {
	if err := validator.Validate(d); err != nil {
		return err
	}

	filters := make(map[string]models.Filter, len(d.Filters))
	for _, f := range d.Filters {
		if err := validator.Validate(f); err != nil {
			return fmt.Errorf("filter %q: %w", f.Name, err)
		}
		if !f.Kind.Valid() {
			return fmt.Errorf("filter %q: unknown kind %q", f.Name, f.Kind)
		}
		if _, exists := filters[f.Name]; exists {
			return fmt.Errorf("duplicate filter %q", f.Name)
		}
		if f.Kind == models.FilterSelect {
			if len(f.Options) == 0 {
				return fmt.Errorf("filter %q: select without options", f.Name)
			}
			if f.Default != "" && !containsValue(f.OptionValues(), f.Default) {
				return fmt.Errorf("filter %q: default %q is not an option", f.Name, f.Default)
			}
		}
		filters[f.Name] = f
	}

	cards := make(map[string]struct{}, len(d.Cards))
	for _, c := range d.Cards {
		if err := validator.Validate(c); err != nil {
			return fmt.Errorf("card %q: %w", c.Key, err)
		}
		if !c.Kind.Valid() {
			return fmt.Errorf("card %q: unknown kind %q", c.Key, c.Kind)
		}
		if _, exists := cards[c.Key]; exists {
			return fmt.Errorf("duplicate card %q", c.Key)
		}
		cards[c.Key] = struct{}{}

		if c.Kind == models.CardSeries && (c.XKey == "" || len(c.YKeys) == 0) {
			return fmt.Errorf("card %q: series requires x_key and y_keys", c.Key)
		}
		if c.Kind == models.CardTable && len(c.Columns) == 0 {
			return fmt.Errorf("card %q: table requires columns", c.Key)
		}

		sample := samples[c.Key]
		if c.VariantFilter == "" {
			if len(sample.Variants) > 0 {
				return fmt.Errorf("card %q: variants without variant_filter", c.Key)
			}
			continue
		}

		f, ok := filters[c.VariantFilter]
		if !ok || f.Kind != models.FilterSelect {
			return fmt.Errorf("card %q: variant_filter %q is not a select filter", c.Key, c.VariantFilter)
		}
		for value := range sample.Variants {
			if !containsValue(f.OptionValues(), value) {
				return fmt.Errorf("card %q: variant %q is not an option of %q", c.Key, value, f.Name)
			}
		}
	}

	seen := make(map[string]struct{}, len(d.Actions))
	for _, a := range d.Actions {
		if err := validator.Validate(a); err != nil {
			return fmt.Errorf("action %q: %w", a.Key, err)
		}
		if _, exists := seen[a.Key]; exists {
			return fmt.Errorf("duplicate action %q", a.Key)
		}
		seen[a.Key] = struct{}{}
	}

	return nil
}

func containsValue(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func normalizeVariants(variants map[string][]models.Row) map[string][]models.Row {
	if len(variants) == 0 {
		return nil
	}
	result := make(map[string][]models.Row, len(variants))
	for key, rows := range variants {
		result[key] = normalizeRows(rows)
	}
	return result
}

// normalizeRows turns json.Number values into int64 or float64.
func normalizeRows(rows []models.Row) []models.Row {
	if rows == nil {
		return []models.Row{}
	}
	for _, row := range rows {
		for key, value := range row {
			number, ok := value.(json.Number)
			if !ok {
				continue
			}
			if i, err := number.Int64(); err == nil {
				row[key] = i
				continue
			}
			if f, err := number.Float64(); err == nil {
				row[key] = f
			}
		}
	}
	return rows
}
