package handlers

import (
	"fmt"
	"html/template"
	"sync"

	"trident-dashboards/internal/config"
	"trident-dashboards/internal/service"
)

type TemplateHandler struct {
	shellService     service.ShellUseCase
	dashboardService service.DashboardUseCase
	config           *config.Config

	mu        sync.RWMutex
	templates *template.Template
}

func NewTemplateHandler(shellService service.ShellUseCase, dashboardService service.DashboardUseCase, cfg *config.Config, templates *template.Template) (*TemplateHandler, error) {
	if templates == nil {
		return nil, fmt.Errorf("templates are required")
	}
	if shellService == nil || dashboardService == nil {
		return nil, fmt.Errorf("shell and dashboard services are required")
	}

	return &TemplateHandler{
		shellService:     shellService,
		dashboardService: dashboardService,
		config:           cfg,
		templates:        templates,
	}, nil
}

// SetTemplates swaps the parsed templates, e.g. after a theme change.
func (h *TemplateHandler) SetTemplates(templates *template.Template) {
	if templates == nil {
		return
	}
	h.mu.Lock()
	h.templates = templates
	h.mu.Unlock()
}

func (h *TemplateHandler) templateSet() *template.Template {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.templates
}
