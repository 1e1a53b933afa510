package navigation

const (
	expandedWidth  = "w-64"
	collapsedWidth = "w-16"

	activeLinkClass   = "bg-blue-50 text-blue-600"
	inactiveLinkClass = "text-gray-600 hover:bg-gray-100 hover:text-gray-900"
)

// View is the projection of the shell that layouts render.
type View struct {
	Title       string     `json:"title"`
	Collapsed   bool       `json:"collapsed"`
	WidthClass  string     `json:"width_class"`
	ToggleLabel string     `json:"toggle_label"`
	ShowTitle   bool       `json:"show_title"`
	ShowFooter  bool       `json:"show_footer"`
	Links       []LinkView `json:"links"`
	ActiveIndex int        `json:"active_index"`
	HasActive   bool       `json:"has_active"`
}

type LinkView struct {
	Entry
	Active      bool   `json:"active"`
	Tooltip     string `json:"tooltip,omitempty"`
	ShowDetails bool   `json:"show_details"`
	ShowChevron bool   `json:"show_chevron"`
	Class       string `json:"class"`
}

// Render projects state and the active entry onto a View. An active index
// outside the entry list is ignored.
func Render(title string, entries []Entry, state State, active int, ok bool) View {
	if ok && (active < 0 || active >= len(entries)) {
		ok = false
	}
	if !ok {
		active = -1
	}

	view := View{
		Title:       title,
		Collapsed:   state.Collapsed,
		WidthClass:  expandedWidth,
		ToggleLabel: "Collapse sidebar",
		ShowTitle:   true,
		ShowFooter:  true,
		Links:       make([]LinkView, 0, len(entries)),
		ActiveIndex: active,
		HasActive:   ok,
	}
	if state.Collapsed {
		view.WidthClass = collapsedWidth
		view.ToggleLabel = "Expand sidebar"
		view.ShowTitle = false
		view.ShowFooter = false
	}

	for i, entry := range entries {
		link := LinkView{
			Entry:       entry,
			Active:      ok && i == active,
			ShowDetails: !state.Collapsed,
			Class:       inactiveLinkClass,
		}
		if link.Active {
			link.Class = activeLinkClass
			link.ShowChevron = !state.Collapsed
		}
		if state.Collapsed {
			link.Tooltip = entry.Name
		}
		view.Links = append(view.Links, link)
	}

	return view
}

// RenderRoute computes the active entry for route and renders the table.
func (t Table) RenderRoute(title, route string, state State) View {
	active, ok := t.Active(route)
	return Render(title, t.entries, state, active, ok)
}
