package handlers

import (
	"errors"
	"net/http"
	"strings"

	"trident-dashboards/internal/constants"
	"trident-dashboards/internal/middleware"
	"trident-dashboards/internal/models"
	"trident-dashboards/internal/service"
	"trident-dashboards/pkg/logger"
	"trident-dashboards/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RenderIndex lists every dashboard. It serves both "/" and "/dashboard";
// neither path highlights a sidebar entry.
func (h *TemplateHandler) RenderIndex(c *gin.Context) {
	dashboards := h.dashboardService.List()
	table := h.shellService.Table()

	type overviewItem struct {
		models.Dashboard
		Route string
		Icon  string
	}

	icons := make(map[string]string, table.Len())
	for _, entry := range table.Entries() {
		icons[entry.Route] = string(entry.Icon)
	}

	items := make([]overviewItem, 0, len(dashboards))
	for _, d := range dashboards {
		route := dashboardRoute(&d)
		items = append(items, overviewItem{Dashboard: d, Route: route, Icon: icons[route]})
	}

	h.renderTemplate(c, http.StatusOK, c.FullPath(), "index", "Overview", "", gin.H{
		"Dashboards": items,
	})
}

// RenderDashboard renders one dashboard with the filters from the query
// string. Invalid filters fall back to the defaults and show a notice.
func (h *TemplateHandler) RenderDashboard(c *gin.Context) {
	h.renderDashboard(c, http.StatusOK, nil)
}

func (h *TemplateHandler) renderDashboard(c *gin.Context, status int, notice *models.Acknowledgement) {
	slug := c.Param("slug")

	d, err := h.dashboardService.Get(slug)
	if err != nil {
		h.RenderNotFound(c)
		return
	}

	var filterError string
	selection, err := h.dashboardService.ParseFilters(d, c.Request.URL.Query())
	if err != nil {
		var fe *service.FilterError
		if errors.As(err, &fe) {
			filterError = fe.Error()
		} else {
			filterError = err.Error()
		}
		selection, _ = h.dashboardService.ParseFilters(d, nil)
	}

	dataset, err := h.dashboardService.Query(c.Request.Context(), models.Query{Dashboard: d.Slug, Filters: selection})
	if err != nil {
		logger.FromContext(c.Request.Context()).WithError(err).Error("Failed to query dashboard")
		h.renderError(c, http.StatusInternalServerError, "500 - Server Error", "Failed to load dashboard data")
		return
	}

	h.renderTemplate(c, status, dashboardRoute(d), "dashboard", d.Title, d.Description, gin.H{
		"Dashboard":   d,
		"Filters":     buildFilterViews(d, selection),
		"Cards":       buildCardViews(d, dataset),
		"FilterError": filterError,
		"Notice":      notice,
		"Query":       c.Request.URL.RawQuery,
	})
}

// PerformAction acknowledges a dashboard action and re-renders the page with
// the acknowledgement as a notice.
func (h *TemplateHandler) PerformAction(c *gin.Context) {
	ack, err := h.dashboardService.Acknowledge(c.Request.Context(), c.Param("slug"), c.Param("action"))
	if err != nil {
		if errors.Is(err, service.ErrDashboardNotFound) || errors.Is(err, service.ErrActionNotFound) {
			h.RenderNotFound(c)
			return
		}
		h.renderError(c, http.StatusInternalServerError, "500 - Server Error", "Failed to perform action")
		return
	}

	if raw := c.PostForm("query"); raw != "" {
		c.Request.URL.RawQuery = raw
	}
	h.renderDashboard(c, http.StatusOK, &ack)
}

// ToggleShell flips the sidebar for the session and sends the browser back
// to the page it came from.
func (h *TemplateHandler) ToggleShell(c *gin.Context) {
	h.shellService.Toggle(c.Request.Context(), middleware.SessionID(c))
	c.Redirect(http.StatusSeeOther, returnPath(c.PostForm(constants.ShellToggleReturnField)))
}

// RenderNotFound renders the 404 page. No sidebar entry is highlighted, even
// when the path looks like one.
func (h *TemplateHandler) RenderNotFound(c *gin.Context) {
	h.renderTemplate(c, http.StatusNotFound, "", "not_found", "404 - Page Not Found", "", gin.H{
		"Path": utils.NormalizePath(c.Request.URL.Path),
	})
}

// dashboardRoute is the sidebar route of a rendered dashboard. Detail paths
// and action posts resolve to the dashboard they were dispatched to.
func dashboardRoute(d *models.Dashboard) string {
	return "/dashboard/" + d.Slug
}

// returnPath accepts local paths (with an optional query) and falls back to
// the overview for anything else.
func returnPath(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "/"
	}

	path, query, _ := strings.Cut(value, "?")
	if !utils.IsLocalPath(path) {
		return "/"
	}

	path = utils.NormalizePath(path)
	if query != "" {
		return path + "?" + query
	}
	return path
}
