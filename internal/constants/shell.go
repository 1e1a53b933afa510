package constants

const (
	// ShellSessionCookieName holds the session id the sidebar state is stored under.
	ShellSessionCookieName = "trident_shell"
	// CSRFTokenCookieName holds the double-submit token for state-changing forms.
	CSRFTokenCookieName = "trident_csrf"
	// CSRFFormField is the hidden form field carrying the token on HTML posts.
	CSRFFormField = "csrf_token"
	// CSRFHeaderName carries the token on API requests.
	CSRFHeaderName = "X-CSRF-Token"

	// Gin context keys.
	ContextShellSession     = "shell_session"
	ContextCSRFToken        = "csrf_token"
	ContextRequestID        = "request_id"
	ContextRateLimitManager = "rateLimitManager"

	// ShellToggleReturnField names the form field with the page to return to.
	ShellToggleReturnField = "return"
)
