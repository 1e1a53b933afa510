package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"

	"trident-dashboards/internal/config"
	"trident-dashboards/internal/constants"
	"trident-dashboards/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ShellSessionMiddleware makes sure every visitor carries a session id for the
// sidebar state and a CSRF token for the forms that change it.
func ShellSessionMiddleware(cfg *config.Config) gin.HandlerFunc {
	maxAge := int(cfg.ShellStateTTL.Seconds())

	return func(c *gin.Context) {
		c.SetSameSite(http.SameSiteLaxMode)

		sessionID, err := c.Cookie(constants.ShellSessionCookieName)
		if err != nil || !isSessionID(sessionID) {
			sessionID = uuid.NewString()
		}
		c.SetCookie(constants.ShellSessionCookieName, sessionID, maxAge, "/", "", cfg.ShellCookieSecure, true)

		token, err := c.Cookie(constants.CSRFTokenCookieName)
		if err != nil || !isCSRFToken(token) {
			token = generateCSRFToken()
			c.SetCookie(constants.CSRFTokenCookieName, token, maxAge, "/", "", cfg.ShellCookieSecure, false)
		}

		c.Set(constants.ContextShellSession, sessionID)
		c.Set(constants.ContextCSRFToken, token)

		ctx := logger.ContextWithFields(c.Request.Context(), map[string]interface{}{"session": sessionID[:8]})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// SessionID returns the shell session id stored by ShellSessionMiddleware.
func SessionID(c *gin.Context) string {
	return c.GetString(constants.ContextShellSession)
}

// CSRFToken returns the token forms must echo back.
func CSRFToken(c *gin.Context) string {
	return c.GetString(constants.ContextCSRFToken)
}

func isSessionID(value string) bool {
	parsed, err := uuid.Parse(value)
	return err == nil && parsed.Version() == 4 && parsed.String() == strings.ToLower(value)
}

func isCSRFToken(value string) bool {
	if len(value) != 64 {
		return false
	}
	_, err := hex.DecodeString(value)
	return err == nil
}

func generateCSRFToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	}
	return hex.EncodeToString(buf)
}
