package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL string
	Port        string

	// PSGC geographic API settings
	PSGCBaseURL  string
	ProvinceCode string
	PSGCTimeout  time.Duration

	// Database performance settings
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime int // minutes
	DBConnMaxIdleTime int // minutes
	DBReadTimeout     time.Duration
	DBWriteTimeout    time.Duration

	// Monitoring and logging settings
	LogLevel          string
	LogFormat         string // "json" or "text"
	LogFile           string
	EnableFileLogging bool

	// Health check settings
	HealthCheckPath string

	// Config hot-reload polling interval in seconds; 0 disables the watcher
	ConfigReloadIntervalSeconds int

	// Web interface settings
	BasePath string

	// Environment & metrics
	Env              string // development, staging, production
	MetricsEnabled   bool
	MetricsPath      string
	ProfilingEnabled bool
	ProfilingAddr    string

	// CORS for the JSON API routes; comma separated origins, "*" allows all
	CORSAllowedOrigins []string
}

func Load() *Config {
	// Database performance settings with defaults
	dbMaxOpenConns, _ := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25"))
	dbMaxIdleConns, _ := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "10"))
	dbConnMaxLifetime, _ := strconv.Atoi(getEnv("DB_CONN_MAX_LIFETIME_MINUTES", "10"))
	dbConnMaxIdleTime, _ := strconv.Atoi(getEnv("DB_CONN_MAX_IDLE_TIME_MINUTES", "5"))

	enableFileLogging, _ := strconv.ParseBool(getEnv("ENABLE_FILE_LOGGING", "false"))

	env := strings.ToLower(getEnv("ENV", "development"))
	metricsPath := getEnv("METRICS_PATH", "/metrics")

	// Default toggles based on env
	metricsDefault := env == "development" || env == "staging"
	metricsEnabled, _ := strconv.ParseBool(getEnv("METRICS_ENABLED", strconv.FormatBool(metricsDefault)))
	profilingEnabled, _ := strconv.ParseBool(getEnv("PROFILING_ENABLED", "false"))
	configReloadInterval, _ := strconv.Atoi(getEnv("CONFIG_RELOAD_INTERVAL_SECONDS", "30"))

	// Timeouts
	dbReadTO, _ := time.ParseDuration(getEnv("DB_READ_TIMEOUT", "8s"))
	dbWriteTO, _ := time.ParseDuration(getEnv("DB_WRITE_TIMEOUT", "6s"))
	psgcTO, _ := time.ParseDuration(getEnv("PSGC_TIMEOUT", "10s"))

	origins := strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "*"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Port:        getEnv("PORT", "8080"),

		PSGCBaseURL:  getEnv("PSGC_BASE_URL", "https://psgc.gitlab.io/api"),
		ProvinceCode: getEnv("PROVINCE_CODE", "050500000"),
		PSGCTimeout:  psgcTO,

		DBMaxOpenConns:    dbMaxOpenConns,
		DBMaxIdleConns:    dbMaxIdleConns,
		DBConnMaxLifetime: dbConnMaxLifetime,
		DBConnMaxIdleTime: dbConnMaxIdleTime,
		DBReadTimeout:     dbReadTO,
		DBWriteTimeout:    dbWriteTO,

		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		LogFile:           getEnv("LOG_FILE", "/var/log/restaurant-admin/app.log"),
		EnableFileLogging: enableFileLogging,

		HealthCheckPath: getEnv("HEALTH_CHECK_PATH", "/health"),

		ConfigReloadIntervalSeconds: configReloadInterval,

		BasePath: getEnv("BASE_PATH", "/"),

		Env:              env,
		MetricsEnabled:   metricsEnabled,
		MetricsPath:      metricsPath,
		ProfilingEnabled: profilingEnabled,
		ProfilingAddr:    getEnv("PROFILING_ADDR", "127.0.0.1:6060"),

		CORSAllowedOrigins: origins,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
