package handlers

import (
	"net/http"

	"trident-dashboards/internal/middleware"
	"trident-dashboards/internal/service"
	"trident-dashboards/pkg/utils"

	"github.com/gin-gonic/gin"
)

type NavigationHandler struct {
	shellService service.ShellUseCase
}

func NewNavigationHandler(shellService service.ShellUseCase) *NavigationHandler {
	return &NavigationHandler{shellService: shellService}
}

// GetNavigation returns the sidebar as it renders for ?route= and the
// caller's session.
func (h *NavigationHandler) GetNavigation(c *gin.Context) {
	route := c.Query("route")
	if route != "" {
		route = utils.NormalizePath(route)
	}

	view := h.shellService.View(c.Request.Context(), middleware.SessionID(c), route)

	var active interface{}
	if view.HasActive {
		active = view.ActiveIndex
	}

	c.JSON(http.StatusOK, gin.H{
		"items":     view.Links,
		"active":    active,
		"collapsed": view.Collapsed,
		"view":      view,
	})
}

func (h *NavigationHandler) ToggleShell(c *gin.Context) {
	state := h.shellService.Toggle(c.Request.Context(), middleware.SessionID(c))
	c.JSON(http.StatusOK, gin.H{"collapsed": state.Collapsed})
}
