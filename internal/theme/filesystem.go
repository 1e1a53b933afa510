package theme

import (
	"errors"
	"net/http"
)

var ErrThemeUnavailable = errors.New("theme assets unavailable")

// FileSystem serves the static assets of whichever theme is active at the
// time of the request.
type FileSystem struct {
	manager *Manager
}

func NewFileSystem(manager *Manager) http.FileSystem {
	return &FileSystem{manager: manager}
}

func (f *FileSystem) Open(name string) (http.File, error) {
	if f.manager == nil {
		return nil, ErrThemeUnavailable
	}

	theme := f.manager.Active()
	if theme == nil {
		return nil, ErrThemeUnavailable
	}

	return http.FS(theme.StaticFS()).Open(name)
}
