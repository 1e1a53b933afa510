package theme

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"unicode"
)

//go:embed themes
var embeddedThemes embed.FS

const DefaultSlug = "default"

type Metadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
	Author      string `json:"author"`
}

// Theme is one set of page templates and static assets.
type Theme struct {
	Slug     string
	Metadata Metadata

	templates fs.FS
	static    fs.FS
}

type Manager struct {
	mu     sync.RWMutex
	themes map[string]*Theme
	active *Theme
}

// Embedded returns the themes compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embeddedThemes, "themes")
	if err != nil {
		panic(err)
	}
	return sub
}

// NewManager loads every theme below root. Each theme is a directory with a
// templates/ and a static/ directory and an optional theme.json.
func NewManager(root fs.FS) (*Manager, error) {
	if root == nil {
		return nil, errors.New("themes filesystem is required")
	}

	entries, err := fs.ReadDir(root, ".")
	if err != nil {
		return nil, err
	}

	themes := make(map[string]*Theme)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		theme, loadErr := loadTheme(root, entry.Name())
		if loadErr != nil {
			return nil, loadErr
		}
		themes[theme.Slug] = theme
	}

	if len(themes) == 0 {
		return nil, errors.New("no themes found")
	}

	return &Manager{themes: themes}, nil
}

// NewManagerFromDir loads themes from dir, or the embedded themes when dir
// is empty.
func NewManagerFromDir(dir string) (*Manager, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return NewManager(Embedded())
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("themes path must be a directory")
	}
	return NewManager(os.DirFS(dir))
}

func (m *Manager) List() []*Theme {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*Theme, 0, len(m.themes))
	for _, theme := range m.themes {
		list = append(list, theme)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Slug < list[j].Slug
	})
	return list
}

func (m *Manager) Active() *Theme {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

func (m *Manager) Activate(slug string) error {
	theme, ok := m.Resolve(slug)
	if !ok {
		return fmt.Errorf("theme %q not found", slug)
	}

	m.mu.Lock()
	m.active = theme
	m.mu.Unlock()
	return nil
}

func (m *Manager) Resolve(slug string) (*Theme, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	theme, ok := m.themes[strings.ToLower(strings.TrimSpace(slug))]
	return theme, ok
}

func loadTheme(root fs.FS, slug string) (*Theme, error) {
	slugValue := strings.ToLower(strings.TrimSpace(slug))
	if slugValue == "" {
		slugValue = slug
	}

	metadata, err := readMetadata(root, slug)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", slug, err)
	}
	if metadata.Name == "" {
		metadata.Name = humanizeSlug(slugValue)
	}

	templates, err := subDir(root, path.Join(slug, "templates"))
	if err != nil {
		return nil, errors.New("theme missing templates directory: " + slug)
	}
	static, err := subDir(root, path.Join(slug, "static"))
	if err != nil {
		return nil, errors.New("theme missing static directory: " + slug)
	}

	return &Theme{
		Slug:      slugValue,
		Metadata:  metadata,
		templates: templates,
		static:    static,
	}, nil
}

func subDir(root fs.FS, dir string) (fs.FS, error) {
	info, err := fs.Stat(root, dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return fs.Sub(root, dir)
}

func readMetadata(root fs.FS, slug string) (Metadata, error) {
	data, err := fs.ReadFile(root, path.Join(slug, "theme.json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Metadata{}, nil
		}
		return Metadata{}, err
	}

	var metadata Metadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return Metadata{}, err
	}

	return metadata, nil
}

func (t *Theme) TemplatesFS() fs.FS {
	return t.templates
}

func (t *Theme) StaticFS() fs.FS {
	return t.static
}

func humanizeSlug(value string) string {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return "Theme"
	}

	parts := strings.FieldsFunc(cleaned, func(r rune) bool {
		switch r {
		case '-', '_', ' ':
			return true
		default:
			return false
		}
	})

	if len(parts) == 0 {
		parts = []string{cleaned}
	}

	for i, part := range parts {
		runes := []rune(strings.ToLower(part))
		if len(runes) == 0 {
			continue
		}
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}

	return strings.Join(parts, " ")
}
