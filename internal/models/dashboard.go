package models

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"
)

type FilterKind string

const (
	FilterSelect FilterKind = "select"
	FilterDate   FilterKind = "date"
	FilterText   FilterKind = "text"
)

func (k FilterKind) Valid() bool {
	switch k {
	case FilterSelect, FilterDate, FilterText:
		return true
	}
	return false
}

type CardKind string

const (
	CardSeries  CardKind = "series"
	CardTable   CardKind = "table"
	CardMetrics CardKind = "metrics"
)

func (k CardKind) Valid() bool {
	switch k {
	case CardSeries, CardTable, CardMetrics:
		return true
	}
	return false
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Filter struct {
	Name        string     `json:"name" validate:"required,slug"`
	Label       string     `json:"label" validate:"required"`
	Kind        FilterKind `json:"kind" validate:"required"`
	Options     []Option   `json:"options,omitempty"`
	Default     string     `json:"default,omitempty"`
	Placeholder string     `json:"placeholder,omitempty"`
}

// OptionValues returns the selectable values, the empty "all" option included.
func (f Filter) OptionValues() []string {
	values := make([]string, 0, len(f.Options))
	for _, option := range f.Options {
		values = append(values, option.Value)
	}
	return values
}

type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type Card struct {
	Key     string   `json:"key" validate:"required,slug"`
	Title   string   `json:"title" validate:"required"`
	Kind    CardKind `json:"kind" validate:"required"`
	Span    int      `json:"span" validate:"min=1,max=3"`
	Unit    string   `json:"unit,omitempty"`
	XKey    string   `json:"x_key,omitempty"`
	YKeys   []string `json:"y_keys,omitempty"`
	Columns []Column `json:"columns,omitempty"`

	// VariantFilter names a select filter whose value picks one of the
	// card's precomputed row sets.
	VariantFilter string `json:"variant_filter,omitempty"`
}

type Action struct {
	Key             string `json:"key" validate:"required,slug"`
	Label           string `json:"label" validate:"required"`
	Acknowledgement string `json:"acknowledgement" validate:"required,no_html"`
	Primary         bool   `json:"primary,omitempty"`
}

type Dashboard struct {
	Slug        string   `json:"slug" validate:"required,slug"`
	Title       string   `json:"title" validate:"required,no_html"`
	Description string   `json:"description" validate:"no_html"`
	Filters     []Filter `json:"filters"`
	Cards       []Card   `json:"cards"`
	Actions     []Action `json:"actions"`
}

func (d *Dashboard) Filter(name string) (Filter, bool) {
	for _, f := range d.Filters {
		if f.Name == name {
			return f, true
		}
	}
	return Filter{}, false
}

func (d *Dashboard) Action(key string) (Action, bool) {
	for _, a := range d.Actions {
		if a.Key == key {
			return a, true
		}
	}
	return Action{}, false
}

// Row is one sample datum of a card.
type Row map[string]interface{}

// Dataset maps card keys to their rows.
type Dataset map[string][]Row

// FilterSelection holds the validated filter values of one request.
type FilterSelection map[string]string

// Hash is a stable digest of the selection, usable as a cache key part.
func (s FilterSelection) Hash() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(s[k])
		b.WriteByte('&')
	}
	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}

type Query struct {
	Dashboard string
	Filters   FilterSelection
}

type Acknowledgement struct {
	Dashboard string `json:"dashboard"`
	Action    string `json:"action"`
	Message   string `json:"message"`
}
