package theme

import (
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"trident-dashboards/pkg/navigation"
)

func TestEmbeddedDefaultTheme(t *testing.T) {
	manager, err := NewManagerFromDir("")
	if err != nil {
		t.Fatalf("failed to load embedded themes: %v", err)
	}

	if err := manager.Activate(DefaultSlug); err != nil {
		t.Fatalf("failed to activate default theme: %v", err)
	}

	active := manager.Active()
	if active == nil || active.Metadata.Name == "" {
		t.Fatalf("expected active theme with metadata, got %+v", active)
	}

	for _, name := range []string{"base.html", "index.html", "dashboard.html", "not_found.html", "error.html"} {
		if _, err := active.TemplatesFS().Open(name); err != nil {
			t.Errorf("expected template %s: %v", name, err)
		}
	}

	file, err := NewFileSystem(manager).Open("/css/app.css")
	if err != nil {
		t.Fatalf("expected stylesheet to be served: %v", err)
	}
	defer file.Close()

	body, _ := io.ReadAll(file)
	if !strings.Contains(string(body), ".w-16") {
		t.Fatalf("expected sidebar width classes in stylesheet")
	}
}

func TestNewManagerRequiresLayout(t *testing.T) {
	cases := []struct {
		name string
		fsys fstest.MapFS
	}{
		{name: "No themes", fsys: fstest.MapFS{"README": {Data: []byte("x")}}},
		{name: "Missing static", fsys: fstest.MapFS{"plain/templates/base.html": {Data: []byte("x")}}},
		{name: "Missing templates", fsys: fstest.MapFS{"plain/static/app.css": {Data: []byte("x")}}},
		{name: "Bad metadata", fsys: fstest.MapFS{
			"plain/templates/base.html": {Data: []byte("x")},
			"plain/static/app.css":      {Data: []byte("x")},
			"plain/theme.json":          {Data: []byte("{")},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewManager(tc.fsys); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestManagerHumanizesMissingName(t *testing.T) {
	manager, err := NewManager(fstest.MapFS{
		"dark-mode/templates/base.html": {Data: []byte("x")},
		"dark-mode/static/app.css":      {Data: []byte("x")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	theme, ok := manager.Resolve("Dark-Mode")
	if !ok {
		t.Fatalf("expected case-insensitive lookup")
	}
	if theme.Metadata.Name != "Dark Mode" {
		t.Fatalf("expected humanized name, got %q", theme.Metadata.Name)
	}

	if err := manager.Activate("missing"); err == nil {
		t.Fatalf("expected unknown theme to fail activation")
	}
	if _, err := NewFileSystem(manager).Open("/app.css"); err != ErrThemeUnavailable {
		t.Fatalf("expected ErrThemeUnavailable without an active theme, got %v", err)
	}
}

func TestIcon(t *testing.T) {
	for _, icon := range []navigation.Icon{
		navigation.IconTruck, navigation.IconShield, navigation.IconClipboardCheck,
		navigation.IconDollarSign, navigation.IconUsers, navigation.IconBarChart,
		navigation.IconBoxes, navigation.IconBuilding, navigation.IconChevronRight,
		navigation.IconMenu,
	} {
		markup := string(Icon(string(icon)))
		if !strings.HasPrefix(markup, "<svg") || !strings.Contains(markup, "icon-"+string(icon)) {
			t.Errorf("unexpected markup for %s: %s", icon, markup)
		}
	}

	if Icon("unknown") != "" {
		t.Fatalf("expected unknown icons to render nothing")
	}
}
