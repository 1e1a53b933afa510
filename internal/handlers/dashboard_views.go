package handlers

import (
	"fmt"
	"math"

	"trident-dashboards/internal/models"
	"trident-dashboards/pkg/utils"
)

const (
	chartWidth     = 600
	chartHeight    = 240
	chartPadding   = 24
	chartLabelArea = 20
)

type FilterView struct {
	models.Filter
	Value string
}

type CardView struct {
	Key       string
	Title     string
	Kind      models.CardKind
	SpanClass string
	Unit      string
	Empty     bool

	Series  *SeriesView
	Table   *TableView
	Metrics []MetricView
}

type SeriesView struct {
	Width   int
	Height  int
	Legend  []LegendItem
	Groups  []SeriesGroup
	Max     string
	Columns []models.Column
	Rows    [][]string
}

type LegendItem struct {
	Key   string
	Class string
}

type SeriesGroup struct {
	Label  string
	LabelX int
	Bars   []SeriesBar
}

type SeriesBar struct {
	Key    string
	Value  string
	X      int
	Y      int
	Width  int
	Height int
	Class  string
}

type TableView struct {
	Columns []models.Column
	Rows    [][]CellView
}

type CellView struct {
	Text  string
	Class string
}

type MetricView struct {
	Label    string
	Value    string
	Unit     string
	Target   string
	Progress int
	HasBar   bool
}

func buildFilterViews(d *models.Dashboard, selection models.FilterSelection) []FilterView {
	views := make([]FilterView, 0, len(d.Filters))
	for _, f := range d.Filters {
		views = append(views, FilterView{Filter: f, Value: selection[f.Name]})
	}
	return views
}

func buildCardViews(d *models.Dashboard, dataset models.Dataset) []CardView {
	views := make([]CardView, 0, len(d.Cards))
	for _, card := range d.Cards {
		rows := dataset[card.Key]
		view := CardView{
			Key:       card.Key,
			Title:     card.Title,
			Kind:      card.Kind,
			SpanClass: fmt.Sprintf("span-%d", clampSpan(card.Span)),
			Unit:      card.Unit,
			Empty:     len(rows) == 0,
		}

		if !view.Empty {
			switch card.Kind {
			case models.CardSeries:
				view.Series = buildSeriesView(card, rows)
			case models.CardTable:
				view.Table = buildTableView(card, rows)
			case models.CardMetrics:
				view.Metrics = buildMetricViews(card, rows)
			}
		}

		views = append(views, view)
	}
	return views
}

func clampSpan(span int) int {
	switch {
	case span < 1:
		return 1
	case span > 3:
		return 3
	}
	return span
}

// buildSeriesView lays the rows out as a grouped bar chart: one group per x
// value, one bar per y key, scaled against the largest value.
func buildSeriesView(card models.Card, rows []models.Row) *SeriesView {
	maxValue := 0.0
	for _, row := range rows {
		for _, key := range card.YKeys {
			if v, ok := toFloat(row[key]); ok && v > maxValue {
				maxValue = v
			}
		}
	}

	plotHeight := chartHeight - chartPadding - chartLabelArea
	groupWidth := (chartWidth - 2*chartPadding) / len(rows)
	barWidth := (groupWidth - 8) / len(card.YKeys)
	if barWidth < 1 {
		barWidth = 1
	}

	view := &SeriesView{
		Width:   chartWidth,
		Height:  chartHeight,
		Legend:  make([]LegendItem, 0, len(card.YKeys)),
		Groups:  make([]SeriesGroup, 0, len(rows)),
		Max:     utils.FormatNumber(maxValue),
		Columns: make([]models.Column, 0, len(card.YKeys)+1),
		Rows:    make([][]string, 0, len(rows)),
	}

	view.Columns = append(view.Columns, models.Column{Key: card.XKey, Label: humanizeKey(card.XKey)})
	for i, key := range card.YKeys {
		view.Legend = append(view.Legend, LegendItem{Key: humanizeKey(key), Class: seriesClass(i)})
		view.Columns = append(view.Columns, models.Column{Key: key, Label: humanizeKey(key)})
	}

	for i, row := range rows {
		groupX := chartPadding + i*groupWidth + 4
		group := SeriesGroup{
			Label:  utils.FormatNumber(row[card.XKey]),
			LabelX: chartPadding + i*groupWidth + groupWidth/2,
			Bars:   make([]SeriesBar, 0, len(card.YKeys)),
		}
		cells := []string{group.Label}

		for j, key := range card.YKeys {
			value, _ := toFloat(row[key])
			height := 0
			if maxValue > 0 && value > 0 {
				height = int(math.Round(value / maxValue * float64(plotHeight)))
			}
			group.Bars = append(group.Bars, SeriesBar{
				Key:    humanizeKey(key),
				Value:  utils.FormatNumber(row[key]),
				X:      groupX + j*barWidth,
				Y:      chartPadding + plotHeight - height,
				Width:  barWidth,
				Height: height,
				Class:  seriesClass(j),
			})
			cells = append(cells, utils.FormatNumber(row[key]))
		}

		view.Groups = append(view.Groups, group)
		view.Rows = append(view.Rows, cells)
	}

	return view
}

func buildTableView(card models.Card, rows []models.Row) *TableView {
	view := &TableView{
		Columns: card.Columns,
		Rows:    make([][]CellView, 0, len(rows)),
	}
	for _, row := range rows {
		cells := make([]CellView, 0, len(card.Columns))
		for _, column := range card.Columns {
			text := utils.FormatNumber(row[column.Key])
			cells = append(cells, CellView{Text: text, Class: statusClass(column.Key, text)})
		}
		view.Rows = append(view.Rows, cells)
	}
	return view
}

// buildMetricViews reads label, value, unit and target from each row. A
// target turns the value into progress toward it; a percentage unit is
// progress on its own.
func buildMetricViews(card models.Card, rows []models.Row) []MetricView {
	views := make([]MetricView, 0, len(rows))
	for _, row := range rows {
		unit := card.Unit
		if u, ok := row["unit"].(string); ok && u != "" {
			unit = u
		}

		metric := MetricView{
			Label: utils.FormatNumber(row["label"]),
			Value: utils.FormatNumber(row["value"]),
			Unit:  unit,
		}

		value, hasValue := toFloat(row["value"])
		if target, ok := toFloat(row["target"]); ok && target > 0 && hasValue {
			metric.Target = utils.FormatNumber(row["target"])
			metric.Progress = percent(value / target * 100)
			metric.HasBar = true
		} else if unit == "%" && hasValue {
			metric.Progress = percent(value)
			metric.HasBar = true
		}

		views = append(views, metric)
	}
	return views
}

func percent(v float64) int {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 100:
		return 100
	}
	return int(math.Round(v))
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	}
	return 0, false
}

func seriesClass(i int) string {
	return fmt.Sprintf("series-%d", i%4)
}

func statusClass(column, value string) string {
	if column != "status" {
		return ""
	}
	switch value {
	case "completed", "active", "excellent", "good", "optimal", "pass", "success":
		return "status status-ok"
	case "pending", "in_progress", "maintenance", "attention", "caution", "warning", "idle":
		return "status status-pending"
	case "missing", "expired", "fail":
		return "status status-bad"
	}
	return "status"
}

// humanizeKey turns camelCase and kebab-case keys into column labels.
func humanizeKey(key string) string {
	runes := []rune(key)
	out := make([]rune, 0, len(runes)+4)
	for i, r := range runes {
		switch {
		case r == '-' || r == '_':
			out = append(out, ' ')
			continue
		case i == 0 && r >= 'a' && r <= 'z':
			r = r - 'a' + 'A'
		case i > 0 && r >= 'A' && r <= 'Z' && runes[i-1] >= 'a' && runes[i-1] <= 'z':
			out = append(out, ' ')
		}
		out = append(out, r)
	}
	return string(out)
}
