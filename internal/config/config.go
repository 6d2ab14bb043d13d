package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode       Mode
	HTTPAddr   string
	PublicURL  string
	APIVersion string

	DBDriver string
	DBDSN    string

	BlobBasePath string // generated reports live here

	AuthHMACSecret string
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	BcryptCost     int

	AdminEmail    string
	AdminPassHash string // bcrypt; empty disables bootstrap

	CORSOrigins []string

	RateLimitWindow time.Duration
	RateLimitMax    int

	ReportTTL           time.Duration
	ReportSweepInterval time.Duration
	ChromeBin           string // empty lets rod download or find a browser
	ChromeDebuggerURL   string // connect to a running browser instead of launching one

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	SurveyCatalog string // optional YAML file overriding the embedded catalog
	SeedOnStart   bool

	LogLevel string
}

// Load reads an optional .env file and then the environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	defOrigins := "http://localhost:3000,http://localhost:5173"
	if mode == ModeOnline {
		defOrigins = ""
	}
	return Config{
		Mode:       mode,
		HTTPAddr:   envOr("HTTP_ADDR", ":8080"),
		PublicURL:  strings.TrimSuffix(os.Getenv("PUBLIC_URL"), "/"),
		APIVersion: envOr("API_VERSION", "v1"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		BlobBasePath: envOr("BLOB_BASE_PATH", "./data"),

		AuthHMACSecret: envOr("AUTH_HMAC_SECRET", "dev-secret-change-me"),
		AccessTTL:      envDuration("JWT_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:     envDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		BcryptCost:     envInt("BCRYPT_COST", 12),

		AdminEmail:    envOr("ADMIN_EMAIL", "admin@localhost"),
		AdminPassHash: os.Getenv("ADMIN_PASS_HASH"),

		CORSOrigins: csvOr("CORS_ORIGINS", defOrigins),

		RateLimitWindow: envDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		RateLimitMax:    envInt("RATE_LIMIT_MAX", 100),

		ReportTTL:           envDuration("REPORT_TTL", 30*24*time.Hour),
		ReportSweepInterval: envDuration("REPORT_SWEEP_INTERVAL", time.Hour),
		ChromeBin:           os.Getenv("CHROME_BIN"),
		ChromeDebuggerURL:   os.Getenv("CHROME_DEBUGGER_URL"),

		ReadTimeout:     envDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    envDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: envDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),

		SurveyCatalog: os.Getenv("SURVEY_CATALOG"),
		SeedOnStart:   envBool("SEED_ON_START", true),

		LogLevel: envOr("LOG_LEVEL", "info"),
	}
}

// APIPrefix is the mount point of the versioned API.
func (c Config) APIPrefix() string { return "/api/" + c.APIVersion }

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
func envDuration(k string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
