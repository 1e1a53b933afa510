package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port        string
	Environment string

	// Logging
	LogLevel string
	LogFile  string

	// Redis
	EnableRedis bool
	RedisURL    string

	// CORS
	CORSOrigins []string

	// Rate Limiting
	RateLimitRequests int
	RateLimitWindow   int
	RateLimitBurst    int

	ActionRateLimitRequests int
	ActionRateLimitWindow   int

	// Features
	EnableCache   bool
	EnableMetrics bool

	// Shell
	ShellStateTTL     time.Duration
	ShellCookieSecure bool

	// Theme
	ThemesDir string
	Theme     string

	// Site Meta
	SiteName        string
	SiteDescription string
}

func New() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
		LogFile:  getEnv("LOG_FILE", ""),

		// Redis
		EnableRedis: getEnvAsBool("ENABLE_REDIS", false),
		RedisURL:    getEnv("REDIS_URL", "localhost:6379"),

		// CORS
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080")),

		// Rate Limiting
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvAsInt("RATE_LIMIT_WINDOW", 60),
		RateLimitBurst:    getEnvAsInt("RATE_LIMIT_BURST", 0),

		ActionRateLimitRequests: getEnvAsInt("ACTION_RATE_LIMIT_REQUESTS", 30),
		ActionRateLimitWindow:   getEnvAsInt("ACTION_RATE_LIMIT_WINDOW", 60),

		// Features
		EnableCache:   getEnvAsBool("ENABLE_CACHE", true),
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),

		// Shell
		ShellStateTTL:     getEnvAsDuration("SHELL_STATE_TTL", 24*time.Hour),
		ShellCookieSecure: getEnvAsBool("SHELL_COOKIE_SECURE", false),

		// Theme
		ThemesDir: getEnv("THEMES_DIR", ""),
		Theme:     getEnv("THEME", "default"),

		// Site Meta
		SiteName:        getEnv("SITE_NAME", "Trident Dashboards"),
		SiteDescription: getEnv("SITE_DESCRIPTION", "Supply chain monitoring and analytics dashboards"),
	}
}

// Validate reports settings the application cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.EnableRedis && strings.TrimSpace(c.RedisURL) == "" {
		return fmt.Errorf("REDIS_URL is required when ENABLE_REDIS is set")
	}
	if c.ShellStateTTL <= 0 {
		return fmt.Errorf("SHELL_STATE_TTL must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return valueStr == "true" || valueStr == "1"
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
