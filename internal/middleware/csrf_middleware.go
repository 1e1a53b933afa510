package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"trident-dashboards/internal/constants"

	"github.com/gin-gonic/gin"
)

var stateChangingMethods = map[string]struct{}{
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// CSRFMiddleware enforces the double-submit token on state-changing requests
// that arrive with a shell session cookie. Requests without one have no state
// to forge and pass through.
func CSRFMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, shouldCheck := stateChangingMethods[c.Request.Method]; !shouldCheck {
			c.Next()
			return
		}

		sessionCookie, err := c.Cookie(constants.ShellSessionCookieName)
		if err != nil || strings.TrimSpace(sessionCookie) == "" {
			c.Next()
			return
		}

		csrfCookie, err := c.Cookie(constants.CSRFTokenCookieName)
		if err != nil || strings.TrimSpace(csrfCookie) == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "missing CSRF token"})
			return
		}

		submitted := strings.TrimSpace(c.GetHeader(constants.CSRFHeaderName))
		if submitted == "" {
			submitted = strings.TrimSpace(c.PostForm(constants.CSRFFormField))
		}
		if submitted == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "missing CSRF header"})
			return
		}

		if subtle.ConstantTimeCompare([]byte(csrfCookie), []byte(submitted)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid CSRF token"})
			return
		}

		c.Next()
	}
}
