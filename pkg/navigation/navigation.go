package navigation

import "strings"

// Icon is a symbolic reference to a sidebar glyph. The renderer resolves it to
// markup; the navigation package never interprets it.
type Icon string

const (
	IconTruck          Icon = "truck"
	IconShield         Icon = "shield"
	IconClipboardCheck Icon = "clipboard-check"
	IconDollarSign     Icon = "dollar-sign"
	IconUsers          Icon = "users"
	IconBarChart       Icon = "bar-chart"
	IconBoxes          Icon = "boxes"
	IconBuilding       Icon = "building"
	IconChevronRight   Icon = "chevron-right"
	IconMenu           Icon = "menu"
)

// Entry represents a sidebar link that can be rendered in the shared layout.
type Entry struct {
	Name        string `json:"name" validate:"required,no_html"`
	Icon        Icon   `json:"icon" validate:"required"`
	Route       string `json:"route" validate:"required,route"`
	Description string `json:"description" validate:"no_html"`
}

// Table is the fixed list of sidebar entries. It is built once at start-up and
// handed to whatever renders the shell; callers only ever see copies.
type Table struct {
	entries []Entry
}

func NewTable(entries ...Entry) Table {
	return Table{entries: append([]Entry(nil), entries...)}
}

func (t Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

func (t Table) Len() int {
	return len(t.entries)
}

// Active reports the index of the entry matching route, see ActiveIndex.
func (t Table) Active(route string) (int, bool) {
	return ActiveIndex(route, t.entries)
}

// ActiveIndex returns the first entry whose route equals route or is a path
// ancestor of it. The route is compared as-is.
func ActiveIndex(route string, entries []Entry) (int, bool) {
	for i, entry := range entries {
		if IsActive(route, entry.Route) {
			return i, true
		}
	}
	return -1, false
}

func IsActive(route, target string) bool {
	if route == target {
		return true
	}
	return strings.HasPrefix(route, target+"/")
}

// State is the sidebar layout state. The zero value is expanded.
type State struct {
	Collapsed bool `json:"collapsed"`
}

func (s State) Toggle() State {
	return State{Collapsed: !s.Collapsed}
}
