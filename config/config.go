package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Extraction modes.
const (
	ModeText = "text"
	ModeGrid = "grid"
)

// Write policies for the snapshot file.
const (
	WriteAlways  = "always"
	WriteChanged = "changed"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PageURL       string
	FrameSelector string
	Marker        string
	ExtractMode   string

	NavTimeout    time.Duration
	FrameTimeout  time.Duration
	RenderTimeout time.Duration
	MaxRetries    int
	ChromeBin     string

	OutputPath     string
	WritePolicy    string
	HistoryCSVPath string
	SQLitePath     string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	ScrapeInterval time.Duration
	LogLevel       string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PageURL:       getEnv("PBI_PAGE_URL", "https://mcmanusm.github.io/Cattle_Comments/table.html"),
		FrameSelector: getEnv("PBI_FRAME_SELECTOR", "#pbiTable"),
		Marker:        getEnv("PBI_MARKER", "Select Row"),
		ExtractMode:   strings.ToLower(getEnv("EXTRACT_MODE", ModeText)),

		NavTimeout:    getEnvDuration("NAV_TIMEOUT", 60*time.Second),
		FrameTimeout:  getEnvDuration("FRAME_TIMEOUT", 15*time.Second),
		RenderTimeout: getEnvDuration("RENDER_TIMEOUT", 30*time.Second),
		MaxRetries:    getEnvInt("MAX_RETRIES", 3),
		ChromeBin:     getEnv("CHROME_BIN", ""),

		OutputPath:     getEnv("OUTPUT_PATH", "metrics.json"),
		WritePolicy:    strings.ToLower(getEnv("WRITE_POLICY", WriteAlways)),
		HistoryCSVPath: getEnv("HISTORY_CSV_PATH", ""),
		SQLitePath:     getEnv("SQLITE_PATH", ""),

		PostgresHost:     getEnv("POSTGRES_HOST", ""),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresDB:       getEnv("POSTGRES_DB", "cattle_metrics"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		ScrapeInterval: getEnvDuration("SCRAPE_INTERVAL", time.Hour),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.PageURL) == "" {
		return fmt.Errorf("config: PBI_PAGE_URL is empty")
	}
	if c.ExtractMode != ModeText && c.ExtractMode != ModeGrid {
		return fmt.Errorf("config: EXTRACT_MODE %q is not %q or %q", c.ExtractMode, ModeText, ModeGrid)
	}
	if c.WritePolicy != WriteAlways && c.WritePolicy != WriteChanged {
		return fmt.Errorf("config: WRITE_POLICY %q is not %q or %q", c.WritePolicy, WriteAlways, WriteChanged)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("config: OUTPUT_PATH is empty")
	}
	if c.ScrapeInterval <= 0 {
		return fmt.Errorf("config: SCRAPE_INTERVAL must be positive")
	}
	return nil
}

// PostgresEnabled reports whether a Postgres history sink is configured.
func (c *Config) PostgresEnabled() bool {
	return c.PostgresHost != ""
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90s") or bare seconds ("90").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if n, err := strconv.Atoi(val); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
