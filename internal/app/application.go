package app

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trident-dashboards/internal/background"
	"trident-dashboards/internal/config"
	"trident-dashboards/internal/constants"
	"trident-dashboards/internal/handlers"
	"trident-dashboards/internal/middleware"
	"trident-dashboards/internal/seed"
	"trident-dashboards/internal/service"
	"trident-dashboards/internal/theme"
	"trident-dashboards/pkg/cache"
	"trident-dashboards/pkg/logger"
	"trident-dashboards/pkg/utils"
)

const cacheWarmupJob = "dashboard-cache-warmup"

type Application struct {
	cfg *config.Config

	ctx    context.Context
	cancel context.CancelFunc

	cache      *cache.Cache
	shellStore service.ShellStateStore
	catalog    *seed.Catalog
	themes     *theme.Manager
	templates  *template.Template

	rateLimits *middleware.RateLimitManager
	scheduler  *background.Scheduler

	services serviceContainer
	handlers handlerContainer

	templateHandler *handlers.TemplateHandler
	router          *gin.Engine
	server          *http.Server
}

type serviceContainer struct {
	Shell     *service.ShellService
	Dashboard *service.DashboardService
}

type handlerContainer struct {
	Navigation *handlers.NavigationHandler
	Dashboard  *handlers.DashboardHandler
}

func New(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &Application{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}

	steps := []func() error{
		app.initCache,
		app.initShellStore,
		app.initCatalog,
		app.initServices,
		app.initTheme,
		app.initHandlers,
		app.initRouter,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			app.release()
			return nil, err
		}
	}

	app.server = &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        app.router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return app, nil
}

func (a *Application) Run() error {
	a.startBackgroundJobs()

	logger.Info("Server starting", map[string]interface{}{
		"port":        a.cfg.Port,
		"environment": a.cfg.Environment,
		"theme":       a.themes.Active().Slug,
		"dashboards":  len(a.catalog.Dashboards),
	})

	return a.server.ListenAndServe()
}

func (a *Application) Shutdown(ctx context.Context) error {
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			return err
		}
	}

	if a.scheduler != nil {
		if err := a.scheduler.Shutdown(ctx); err != nil {
			logger.Error(err, "Failed to stop background jobs", nil)
		}
	}

	a.release()
	return nil
}

func (a *Application) Router() *gin.Engine {
	return a.router
}

// release stops the helpers started during New. It is safe to call on a
// partially initialized application.
func (a *Application) release() {
	if a.cancel != nil {
		a.cancel()
	}

	if a.rateLimits != nil {
		a.rateLimits.Shutdown()
	}

	if store, ok := a.shellStore.(*service.MemoryShellStore); ok {
		store.Shutdown()
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Error(err, "Failed to close cache connection", nil)
		}
	}
}

func (a *Application) initCache() error {
	if !a.cfg.EnableRedis {
		a.cache, _ = cache.NewCache("", false)
		return nil
	}

	logger.Info("Connecting to Redis", map[string]interface{}{"addr": a.cfg.RedisURL})

	c, err := cache.NewCache(a.cfg.RedisURL, true)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	a.cache = c
	return nil
}

func (a *Application) initShellStore() error {
	if a.cache.Enabled() {
		a.shellStore = service.NewCacheShellStore(a.cache, a.cfg.ShellStateTTL)
		logger.Info("Shell state stored in Redis", nil)
		return nil
	}

	a.shellStore = service.NewMemoryShellStore(a.ctx, a.cfg.ShellStateTTL)
	logger.Info("Shell state stored in memory", nil)
	return nil
}

func (a *Application) initCatalog() error {
	catalog, err := seed.LoadDashboards(seed.DataFS())
	if err != nil {
		return fmt.Errorf("failed to load dashboards: %w", err)
	}
	a.catalog = catalog
	return nil
}

func (a *Application) initServices() error {
	dashboardCache := a.cache
	if !a.cfg.EnableCache {
		dashboardCache, _ = cache.NewCache("", false)
	}

	navigation := seed.DefaultNavigation()
	if err := seed.ValidateNavigation(navigation); err != nil {
		return fmt.Errorf("invalid navigation: %w", err)
	}

	a.services = serviceContainer{
		Shell:     service.NewShellService(navigation, a.shellStore, a.cfg.SiteName),
		Dashboard: service.NewDashboardService(a.catalog.Dashboards, service.NewSampleDataSource(a.catalog), dashboardCache),
	}
	return nil
}

func (a *Application) initTheme() error {
	manager, err := theme.NewManagerFromDir(a.cfg.ThemesDir)
	if err != nil {
		return fmt.Errorf("failed to load themes: %w", err)
	}
	if err := manager.Activate(a.cfg.Theme); err != nil {
		return fmt.Errorf("failed to activate theme %q: %w", a.cfg.Theme, err)
	}

	templates, err := utils.LoadTemplates(manager.Active().TemplatesFS(), utils.GetTemplateFuncs(theme.Icon))
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	a.themes = manager
	a.templates = templates
	logger.Info("Templates loaded successfully", map[string]interface{}{"theme": manager.Active().Slug})
	return nil
}

func (a *Application) initHandlers() error {
	a.handlers = handlerContainer{
		Navigation: handlers.NewNavigationHandler(a.services.Shell),
		Dashboard:  handlers.NewDashboardHandler(a.services.Dashboard),
	}

	templateHandler, err := handlers.NewTemplateHandler(a.services.Shell, a.services.Dashboard, a.cfg, a.templates)
	if err != nil {
		return fmt.Errorf("failed to initialize template handler: %w", err)
	}

	a.templateHandler = templateHandler
	return nil
}

func (a *Application) initRouter() error {
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	a.rateLimits = middleware.NewRateLimitManager(a.ctx)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(logger.GinLogger())
	if a.cfg.EnableMetrics {
		router.Use(middleware.MetricsMiddleware())
	}
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.NoIndexMiddleware())
	router.Use(func(c *gin.Context) {
		c.Set(constants.ContextRateLimitManager, a.rateLimits)
		c.Next()
	})
	router.Use(middleware.RateLimitMiddleware(a.cfg))

	router.GET("/health", a.health)

	if a.cfg.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	router.StaticFS("/static", theme.NewFileSystem(a.themes))

	pages := router.Group("")
	pages.Use(middleware.ShellSessionMiddleware(a.cfg))
	pages.Use(middleware.CSRFMiddleware())
	{
		pages.GET("/", a.templateHandler.RenderIndex)
		pages.GET("/dashboard", a.templateHandler.RenderIndex)
		pages.GET("/dashboard/:slug", a.templateHandler.RenderDashboard)
		pages.GET("/dashboard/:slug/*detail", a.templateHandler.RenderDashboard)

		actions := pages.Group("")
		actions.Use(middleware.ActionRateLimitMiddleware(a.cfg))
		{
			actions.POST("/shell/toggle", a.templateHandler.ToggleShell)
			actions.POST("/dashboard/:slug/actions/:action", a.templateHandler.PerformAction)
		}
	}

	v1 := router.Group("/api/v1")
	v1.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", constants.CSRFHeaderName},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	v1.Use(middleware.ShellSessionMiddleware(a.cfg))
	v1.Use(middleware.CSRFMiddleware())
	{
		v1.GET("/navigation", a.handlers.Navigation.GetNavigation)
		v1.GET("/dashboards", a.handlers.Dashboard.List)
		v1.GET("/dashboards/:slug", a.handlers.Dashboard.Get)

		actions := v1.Group("")
		actions.Use(middleware.ActionRateLimitMiddleware(a.cfg))
		{
			actions.POST("/shell/toggle", a.handlers.Navigation.ToggleShell)
			actions.POST("/dashboards/:slug/actions/:action", a.handlers.Dashboard.PerformAction)
		}
	}

	router.NoRoute(middleware.ShellSessionMiddleware(a.cfg), func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Route not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		a.templateHandler.RenderNotFound(c)
	})

	a.router = router
	return nil
}

func (a *Application) health(c *gin.Context) {
	response := gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	}
	if a.scheduler != nil {
		response["pending_jobs"] = a.scheduler.Pending()
	}
	c.JSON(http.StatusOK, response)
}

// startBackgroundJobs warms the dataset cache once the server is about to
// accept traffic. Without a cache there is nothing to warm.
func (a *Application) startBackgroundJobs() {
	if !a.cfg.EnableCache || !a.cache.Enabled() {
		return
	}

	a.scheduler = background.NewScheduler(background.SchedulerConfig{WorkerCount: 1, QueueSize: 4})
	a.scheduler.Start(a.ctx)

	err := a.scheduler.ScheduleUnique(background.Job{
		Name:        cacheWarmupJob,
		Run:         a.services.Dashboard.Warm,
		Timeout:     time.Minute,
		RetryPolicy: background.RetryPolicy{MaxRetries: 3, Backoff: 10 * time.Second},
	})
	if err != nil {
		logger.Error(err, "Failed to schedule cache warmup", nil)
	}
}
