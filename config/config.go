package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cppla/wellbeing/analytics"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via config.json or the environment.
type AppConfig struct {
	AppPort            string
	JWTSecret          string
	TokenTTLHours      int
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Timezone names the location whose calendar defines "today".
	Timezone string
	// Database
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Redis for the dashboard cache and token revocation
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Analytics; a zero GoodCutoff selects the adaptive percentile cutoff.
	AnalyticsRecentDays   int
	AnalyticsLookbackDays int
	AnalyticsGoodCutoff   int
	AnalyticsPercentile   float64
	// DashboardCacheSeconds below zero disables the cache.
	DashboardCacheSeconds int
	// Demo sessions
	DemoEmailDomain   string
	DemoPurgeHours    int
	DemoPurgeSchedule string
	DemoSeedDays      int
	DemoSeedMax       int
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	c, err := build(filepath.Join("config", "config.json"))
	if err != nil {
		log.Fatal(err)
	}

	cfg = c
	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// build applies config/config.json, then defaults, then environment overrides.
func build(path string) (AppConfig, error) {
	var c AppConfig
	if err := loadJSONConfig(path, &c); err != nil {
		return AppConfig{}, err
	}
	applyDefaults(&c)
	if err := applyEnvOverrides(&c); err != nil {
		return AppConfig{}, err
	}
	if c.JWTSecret == "" {
		return AppConfig{}, errors.New("JWT_SECRET must be set in config.json or the environment")
	}
	return c, nil
}

// Location resolves Timezone, falling back to the process local zone when
// it is empty or unknown.
func (c AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("unknown timezone %q, using local time: %v", c.Timezone, err)
		return time.Local
	}
	return loc
}

// OverviewOptions maps the analytics section onto engine options.
func (c AppConfig) OverviewOptions() analytics.OverviewOptions {
	opts := analytics.DefaultOverviewOptions()
	if c.AnalyticsRecentDays > 0 {
		opts.RecentDays = c.AnalyticsRecentDays
	}
	if c.AnalyticsLookbackDays > 0 {
		opts.LookbackDays = c.AnalyticsLookbackDays
	}
	if c.AnalyticsGoodCutoff > 0 {
		cutoff := c.AnalyticsGoodCutoff
		opts.GoodScoreCutoff = &cutoff
	}
	if c.AnalyticsPercentile > 0 {
		opts.AdaptivePercentile = c.AnalyticsPercentile
	}
	return opts
}

// TokenTTL is the lifetime of issued bearer tokens.
func (c AppConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// DashboardCacheTTL is zero when caching is disabled.
func (c AppConfig) DashboardCacheTTL() time.Duration {
	if c.DashboardCacheSeconds < 0 {
		return 0
	}
	return time.Duration(c.DashboardCacheSeconds) * time.Second
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads JSON file into out if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if s, ok := m[key].(string); ok {
			return s
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if f, ok := m[key].(float64); ok {
			return int(f)
		}
		return 0
	}
	getFloat := func(m map[string]any, key string) float64 {
		if f, ok := m[key].(float64); ok {
			return f
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		if b, ok := m[key].(bool); ok {
			return b
		}
		return false
	}
	getStringSlice := func(m map[string]any, key string) []string {
		arr, ok := m[key].([]any)
		if !ok {
			return nil
		}
		res := make([]string, 0, len(arr))
		for _, it := range arr {
			if s, ok := it.(string); ok {
				res = append(res, s)
			}
		}
		return res
	}

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		out.JWTSecret = getString(app, "JWTSecret")
		out.TokenTTLHours = getInt(app, "TokenTTLHours")
		out.RateLimitPerMinute = getInt(app, "RateLimitPerMinute")
		out.AllowedOrigins = getStringSlice(app, "AllowedOrigins")
		out.Timezone = getString(app, "Timezone")
	}

	if g, ok := raw["gin"].(map[string]any); ok {
		out.GinMode = getString(g, "Mode")
		out.GinPath = getString(g, "LogPath")
	}

	if dbs, ok := raw["database"].(map[string]any); ok {
		out.DatabaseURI = getString(dbs, "DatabaseURI")
		out.DBHost = getString(dbs, "DBHost")
		out.DBPort = getString(dbs, "DBPort")
		out.DBUser = getString(dbs, "DBUser")
		out.DBPassword = getString(dbs, "DBPassword")
		out.DBName = getString(dbs, "DBName")
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		out.RedisHost = getString(rds, "RedisHost")
		out.RedisPort = getInt(rds, "RedisPort")
		out.RedisDB = getInt(rds, "RedisDB")
		out.RedisPassword = getString(rds, "RedisPassword")
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		out.LogLevel = getString(lg, "Level")
		out.LogPath = getString(lg, "Path")
		out.LogMaxSizeMB = getInt(lg, "MaxSizeMB")
		out.LogMaxBackups = getInt(lg, "MaxBackups")
		out.LogMaxAgeDays = getInt(lg, "MaxAgeDays")
		out.LogCompress = getBool(lg, "Compress")
	}

	if an, ok := raw["analytics"].(map[string]any); ok {
		out.AnalyticsRecentDays = getInt(an, "RecentDays")
		out.AnalyticsLookbackDays = getInt(an, "LookbackDays")
		out.AnalyticsGoodCutoff = getInt(an, "GoodCutoff")
		out.AnalyticsPercentile = getFloat(an, "Percentile")
		out.DashboardCacheSeconds = getInt(an, "DashboardCacheSeconds")
	}

	if dm, ok := raw["demo"].(map[string]any); ok {
		out.DemoEmailDomain = getString(dm, "EmailDomain")
		out.DemoPurgeHours = getInt(dm, "PurgeHours")
		out.DemoPurgeSchedule = getString(dm, "PurgeSchedule")
		out.DemoSeedDays = getInt(dm, "SeedDays")
		out.DemoSeedMax = getInt(dm, "SeedMax")
	}

	// Flat keys are still honored for the most common settings.
	if out.AppPort == "" {
		out.AppPort = getString(raw, "AppPort")
	}
	if out.JWTSecret == "" {
		out.JWTSecret = getString(raw, "JWTSecret")
	}
	if out.DatabaseURI == "" {
		out.DatabaseURI = getString(raw, "DatabaseURI")
	}
	if out.Timezone == "" {
		out.Timezone = getString(raw, "Timezone")
	}
	if out.LogLevel == "" {
		out.LogLevel = getString(raw, "LogLevel")
	}

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.TokenTTLHours == 0 {
		c.TokenTTLHours = 72
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "wellbeing"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.AnalyticsRecentDays == 0 {
		c.AnalyticsRecentDays = 7
	}
	if c.AnalyticsLookbackDays == 0 {
		c.AnalyticsLookbackDays = 90
	}
	if c.AnalyticsPercentile == 0 {
		c.AnalyticsPercentile = analytics.DefaultAdaptivePercentile
	}
	if c.DashboardCacheSeconds == 0 {
		c.DashboardCacheSeconds = 300
	}
	if c.DemoEmailDomain == "" {
		c.DemoEmailDomain = "wellbeing.demo"
	}
	if c.DemoPurgeHours == 0 {
		c.DemoPurgeHours = 12
	}
	if c.DemoPurgeSchedule == "" {
		c.DemoPurgeSchedule = "0 0 * * * *"
	}
	if c.DemoSeedDays == 0 {
		c.DemoSeedDays = 30
	}
	if c.DemoSeedMax == 0 {
		c.DemoSeedMax = 22
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) error {
	var firstErr error
	setInt := func(key string, dst *int) {
		if v := getEnv(key, ""); v != "" {
			i, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				if firstErr == nil {
					firstErr = errors.New("invalid integer value for " + key + ": " + v)
				}
				return
			}
			*dst = i
		}
	}
	setString := func(key string, dst *string) {
		if v := getEnv(key, ""); v != "" {
			*dst = v
		}
	}

	setString("APP_PORT", &c.AppPort)
	setString("JWT_SECRET", &c.JWTSecret)
	setInt("TOKEN_TTL_HOURS", &c.TokenTTLHours)
	setString("APP_TIMEZONE", &c.Timezone)
	setString("GIN_MODE", &c.GinMode)
	setString("GIN_PATH", &c.GinPath)
	setString("DATABASE_URI", &c.DatabaseURI)
	setString("DB_HOST", &c.DBHost)
	setString("DB_PORT", &c.DBPort)
	setString("DB_USER", &c.DBUser)
	setString("DB_PASSWORD", &c.DBPassword)
	setString("DB_NAME", &c.DBName)
	setInt("RATE_LIMIT_PER_MINUTE", &c.RateLimitPerMinute)
	c.AllowedOrigins = readListEnv("CORS_ALLOWED_ORIGINS", c.AllowedOrigins)
	setString("REDIS_HOST", &c.RedisHost)
	setInt("REDIS_PORT", &c.RedisPort)
	setInt("REDIS_DB", &c.RedisDB)
	setString("REDIS_PASSWORD", &c.RedisPassword)
	setString("LOG_LEVEL", &c.LogLevel)
	setString("LOG_PATH", &c.LogPath)
	setInt("LOG_MAX_SIZE_MB", &c.LogMaxSizeMB)
	setInt("LOG_MAX_BACKUPS", &c.LogMaxBackups)
	setInt("LOG_MAX_AGE_DAYS", &c.LogMaxAgeDays)
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = v == "true"
	}
	setInt("ANALYTICS_RECENT_DAYS", &c.AnalyticsRecentDays)
	setInt("ANALYTICS_LOOKBACK_DAYS", &c.AnalyticsLookbackDays)
	setInt("ANALYTICS_GOOD_CUTOFF", &c.AnalyticsGoodCutoff)
	if v := getEnv("ANALYTICS_PERCENTILE", ""); v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil && firstErr == nil {
			firstErr = errors.New("invalid float value for ANALYTICS_PERCENTILE: " + v)
		} else if err == nil {
			c.AnalyticsPercentile = f
		}
	}
	setInt("DASHBOARD_CACHE_SECONDS", &c.DashboardCacheSeconds)
	setString("DEMO_EMAIL_DOMAIN", &c.DemoEmailDomain)
	setInt("DEMO_PURGE_HOURS", &c.DemoPurgeHours)
	setString("DEMO_PURGE_SCHEDULE", &c.DemoPurgeSchedule)
	setInt("DEMO_SEED_DAYS", &c.DemoSeedDays)
	setInt("DEMO_SEED_MAX", &c.DemoSeedMax)
	return firstErr
}

func readListEnv(key string, defaults []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaults
	}
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
