package handlers

import (
	"errors"
	"net/http"

	"trident-dashboards/internal/models"
	"trident-dashboards/internal/service"
	"trident-dashboards/pkg/logger"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardUseCase
}

func NewDashboardHandler(dashboardService service.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"dashboards": h.dashboardService.List()})
}

// Get returns the definition of a dashboard together with the rows for the
// filters in the query string.
func (h *DashboardHandler) Get(c *gin.Context) {
	d, err := h.dashboardService.Get(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	selection, err := h.dashboardService.ParseFilters(d, c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dataset, err := h.dashboardService.Query(c.Request.Context(), models.Query{Dashboard: d.Slug, Filters: selection})
	if err != nil {
		logger.FromContext(c.Request.Context()).WithError(err).Error("Failed to query dashboard")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dashboard": d,
		"filters":   selection,
		"data":      dataset,
	})
}

func (h *DashboardHandler) PerformAction(c *gin.Context) {
	ack, err := h.dashboardService.Acknowledge(c.Request.Context(), c.Param("slug"), c.Param("action"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrDashboardNotFound) || errors.Is(err, service.ErrActionNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dashboard": ack.Dashboard,
		"action":    ack.Action,
		"message":   ack.Message,
	})
}
