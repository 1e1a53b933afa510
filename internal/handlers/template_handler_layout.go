package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"trident-dashboards/internal/middleware"
	"trident-dashboards/pkg/logger"
	"trident-dashboards/pkg/utils"

	"github.com/gin-gonic/gin"
)

func (h *TemplateHandler) siteName() string {
	if h.config != nil && h.config.SiteName != "" {
		return h.config.SiteName
	}
	return "Trident Dashboards"
}

func (h *TemplateHandler) siteDescription() string {
	if h.config != nil {
		return h.config.SiteDescription
	}
	return ""
}

func (h *TemplateHandler) basePageData(c *gin.Context, title, description string, extra gin.H) gin.H {
	if description == "" {
		description = h.siteDescription()
	}

	pageTitle := h.siteName()
	if title != "" && title != pageTitle {
		pageTitle = fmt.Sprintf("%s - %s", title, h.siteName())
	}

	data := gin.H{
		"Title":       pageTitle,
		"Heading":     title,
		"Description": description,
		"Site": gin.H{
			"Name":        h.siteName(),
			"Description": h.siteDescription(),
		},
		"CSRFToken": middleware.CSRFToken(c),
	}

	for k, v := range extra {
		data[k] = v
	}

	return data
}

// renderTemplate renders a page with the sidebar highlighting route. Pass an
// empty route for pages that match no entry.
func (h *TemplateHandler) renderTemplate(c *gin.Context, status int, route, templateName, title, description string, extra gin.H) {
	data := h.basePageData(c, title, description, extra)
	h.renderWithLayout(c, status, route, "base.html", templateName+".html", data)
}

func (h *TemplateHandler) renderWithLayout(c *gin.Context, status int, route, layout, content string, data gin.H) {
	h.setNavigationState(c, data, route)

	tmpl := h.templateSet()

	contentTmpl := tmpl.Lookup(content)
	if contentTmpl == nil {
		logger.Error(nil, "Content template not found", map[string]interface{}{"template": content})
		h.renderError(c, http.StatusInternalServerError, "500 - Server Error", "Template not found")
		return
	}

	buf, err := h.executeTemplate(contentTmpl, data)
	if err != nil {
		logger.Error(err, "Failed to render content", map[string]interface{}{"template": content})
		h.renderError(c, http.StatusInternalServerError, "500 - Server Error", "Failed to render content")
		return
	}

	data["Content"] = template.HTML(buf)

	layoutTmpl := tmpl.Lookup(layout)
	if layoutTmpl == nil {
		logger.Error(nil, "Layout template not found", map[string]interface{}{"template": layout})
		h.renderError(c, http.StatusInternalServerError, "500 - Server Error", "Template not found")
		return
	}

	output, err := h.executeTemplate(layoutTmpl, data)
	if err != nil {
		logger.Error(err, "Failed to render layout", map[string]interface{}{"template": layout})
		h.renderError(c, http.StatusInternalServerError, "500 - Server Error", "Failed to render layout")
		return
	}

	c.Data(status, "text/html; charset=utf-8", output)
}

// setNavigationState renders the sidebar for route, the page the router
// actually dispatched to. The toggle form returns to the requested path.
func (h *TemplateHandler) setNavigationState(c *gin.Context, data gin.H, route string) {
	data["ActivePath"] = route

	returnTo := utils.NormalizePath(c.Request.URL.Path)
	if c.Request.Method == http.MethodGet && c.Request.URL.RawQuery != "" {
		returnTo += "?" + c.Request.URL.RawQuery
	}
	data["ReturnTo"] = returnTo

	if h.shellService == nil {
		return
	}

	shell := h.shellService.View(c.Request.Context(), middleware.SessionID(c), route)
	data["Shell"] = shell
	if shell.HasActive {
		data["ActiveNav"] = shell.Links[shell.ActiveIndex].Route
	} else {
		data["ActiveNav"] = ""
	}
}

func (h *TemplateHandler) executeTemplate(tmpl *template.Template, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (h *TemplateHandler) renderError(c *gin.Context, status int, title, msg string) {
	data := gin.H{
		"Title":      title,
		"error":      msg,
		"StatusCode": status,
		"Site": gin.H{
			"Name":        h.siteName(),
			"Description": h.siteDescription(),
		},
	}

	tmpl := h.templateSet()
	if tmpl == nil {
		c.JSON(status, gin.H{"error": msg})
		return
	}

	errorTmpl := tmpl.Lookup("error.html")
	if errorTmpl == nil {
		logger.Error(nil, "Error template missing", nil)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	output, err := h.executeTemplate(errorTmpl, data)
	if err != nil {
		logger.Error(err, "Failed to render error template", nil)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.Data(status, "text/html; charset=utf-8", output)
}
