package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"trident-dashboards/internal/background"
	"trident-dashboards/internal/config"
	"trident-dashboards/internal/constants"
)

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Environment = "test"
	cfg.EnableRedis = false
	cfg.EnableMetrics = true
	cfg.RateLimitRequests = 1000
	cfg.ActionRateLimitRequests = 1000
	cfg.ShellStateTTL = time.Hour
	cfg.ThemesDir = ""
	cfg.Theme = "default"
	return cfg
}

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	gin.SetMode(gin.TestMode)

	application, err := New(testConfig())
	if err != nil {
		t.Fatalf("failed to build application: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		application.Shutdown(ctx)
	})
	return application
}

type browser struct {
	t       *testing.T
	router  http.Handler
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, router http.Handler) *browser {
	return &browser{t: t, router: router, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, cookie := range b.cookies {
		req.AddCookie(cookie)
	}

	recorder := httptest.NewRecorder()
	b.router.ServeHTTP(recorder, req)

	for _, cookie := range recorder.Result().Cookies() {
		b.cookies[cookie.Name] = cookie
	}
	return recorder
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) csrfToken() string {
	if cookie, ok := b.cookies[constants.CSRFTokenCookieName]; ok {
		return cookie.Value
	}
	return ""
}

func TestApplication_HealthAndMetrics(t *testing.T) {
	application := newTestApplication(t)
	b := newBrowser(t, application.Router())

	if rec := b.get("/health"); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "healthy") {
		t.Fatalf("unexpected health response %d: %s", rec.Code, rec.Body.String())
	}

	b.get("/dashboard/payments")
	rec := b.get("/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected metrics endpoint, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "trident_http_requests_total") {
		t.Fatalf("expected request metrics to be exported")
	}
}

func TestApplication_HealthReportsPendingJobs(t *testing.T) {
	application := newTestApplication(t)

	scheduler := background.NewScheduler(background.SchedulerConfig{WorkerCount: 1, QueueSize: 1})
	scheduler.Start(context.Background())
	application.scheduler = scheduler

	release := make(chan struct{})
	started := make(chan struct{})
	err := scheduler.ScheduleUnique(background.Job{
		Name: cacheWarmupJob,
		Run: func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		},
	})
	if err != nil {
		t.Fatalf("failed to schedule job: %v", err)
	}
	<-started

	b := newBrowser(t, application.Router())
	if rec := b.get("/health"); !strings.Contains(rec.Body.String(), `"pending_jobs":1`) {
		t.Fatalf("expected one pending job, got %s", rec.Body.String())
	}

	close(release)
	deadline := time.Now().Add(time.Second)
	for scheduler.Pending() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if rec := b.get("/health"); !strings.Contains(rec.Body.String(), `"pending_jobs":0`) {
		t.Fatalf("expected no pending jobs, got %s", rec.Body.String())
	}
}

func TestApplication_ServesThemeAssets(t *testing.T) {
	application := newTestApplication(t)
	b := newBrowser(t, application.Router())

	rec := b.get("/static/css/app.css")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected stylesheet, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ".sidebar") {
		t.Fatalf("expected sidebar styles in stylesheet")
	}
}

func TestApplication_PageCarriesShellAndSecurityHeaders(t *testing.T) {
	application := newTestApplication(t)
	b := newBrowser(t, application.Router())

	rec := b.get("/dashboard/payments")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, `aria-current="page"`) {
		t.Fatalf("expected an active navigation entry")
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Fatalf("expected a content security policy")
	}
	if rec.Header().Get("X-Robots-Tag") == "" {
		t.Fatalf("expected robots directives")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected a request id")
	}
	if b.cookies[constants.ShellSessionCookieName] == nil || b.csrfToken() == "" {
		t.Fatalf("expected session and csrf cookies to be issued")
	}
	if !strings.Contains(body, b.csrfToken()) {
		t.Fatalf("expected the toggle form to carry the csrf token")
	}
}

func TestApplication_ToggleRoundTrip(t *testing.T) {
	application := newTestApplication(t)
	b := newBrowser(t, application.Router())

	if rec := b.get("/dashboard/payments?period=daily"); strings.Contains(rec.Body.String(), "w-16") {
		t.Fatalf("expected the sidebar to start expanded")
	}

	rec := b.postForm("/shell/toggle", url.Values{
		constants.CSRFFormField:          {b.csrfToken()},
		constants.ShellToggleReturnField: {"/dashboard/payments?period=daily"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", rec.Code, rec.Body.String())
	}
	if location := rec.Header().Get("Location"); location != "/dashboard/payments?period=daily" {
		t.Fatalf("unexpected redirect target %q", location)
	}

	if rec := b.get("/dashboard/payments?period=daily"); !strings.Contains(rec.Body.String(), "w-16") {
		t.Fatalf("expected the sidebar to be collapsed after toggling")
	}

	other := newBrowser(t, application.Router())
	if rec := other.get("/dashboard/payments"); strings.Contains(rec.Body.String(), "w-16") {
		t.Fatalf("expected a new visitor to see the expanded sidebar")
	}
}

func TestApplication_RejectsForgedToggle(t *testing.T) {
	application := newTestApplication(t)
	b := newBrowser(t, application.Router())
	b.get("/")

	rec := b.postForm("/shell/toggle", url.Values{constants.CSRFFormField: {"forged"}})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestApplication_NavigationAPI(t *testing.T) {
	application := newTestApplication(t)
	b := newBrowser(t, application.Router())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/navigation?route=/dashboard/governance", nil)
	rec := b.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Items     []map[string]interface{} `json:"items"`
		Collapsed bool                     `json:"collapsed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(payload.Items) != 8 {
		t.Fatalf("expected 8 navigation entries, got %d", len(payload.Items))
	}

	toggle := httptest.NewRequest(http.MethodPost, "/api/v1/shell/toggle", nil)
	toggle.Header.Set(constants.CSRFHeaderName, b.csrfToken())
	if rec := b.do(toggle); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"collapsed":true`) {
		t.Fatalf("unexpected toggle response %d: %s", rec.Code, rec.Body.String())
	}
}

func TestApplication_NotFound(t *testing.T) {
	application := newTestApplication(t)
	b := newBrowser(t, application.Router())

	rec := b.get("/api/v1/unknown")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("expected json 404, got %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}

	rec = b.get("/reports")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "sidebar") {
		t.Fatalf("expected html 404 with the sidebar, got %d", rec.Code)
	}
}

func TestApplication_SidebarFollowsDispatchedRoute(t *testing.T) {
	application := newTestApplication(t)

	cases := []struct {
		name    string
		path    string
		status  int
		heading string
		active  string
	}{
		{name: "Dot segments after a dashboard", path: "/dashboard/operations/../payments", status: http.StatusOK, heading: "Operations Dashboard", active: "/dashboard/operations"},
		{name: "Dot segments after an unknown dashboard", path: "/dashboard/nope/../operations", status: http.StatusNotFound, heading: "Page not found"},
		{name: "Empty segment", path: "/dashboard//operations", status: http.StatusNotFound, heading: "Page not found"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newBrowser(t, application.Router())
			rec := b.get(tc.path)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}

			body := rec.Body.String()
			if !strings.Contains(body, tc.heading) {
				t.Fatalf("expected page %q to be rendered", tc.heading)
			}

			if tc.active == "" {
				if strings.Contains(body, `aria-current="page"`) {
					t.Fatalf("expected no active sidebar entry")
				}
				return
			}
			if strings.Count(body, `aria-current="page"`) != 1 {
				t.Fatalf("expected exactly one active sidebar entry")
			}
			if !strings.Contains(body, `href="`+tc.active+`" class="sidebar-link bg-blue-50 text-blue-600"`) {
				t.Fatalf("expected %s to be the active entry", tc.active)
			}
		})
	}
}

func TestNew_RejectsUnknownTheme(t *testing.T) {
	cfg := testConfig()
	cfg.Theme = "midnight"

	if _, err := New(cfg); err == nil {
		t.Fatalf("expected an error for an unknown theme")
	}
}
