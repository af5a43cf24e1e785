package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"

	BrowserChromedp = "chromedp"
	BrowserRod      = "rod"
	BrowserStatic   = "static"

	SettleFixed     = "fixed"
	SettleContainer = "container"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	StoreDriver string
	SQLitePath  string
	StoreTable  string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	BrowserDriver string
	ChromeBin     string
	Headless      bool
	UserAgent     string

	SearchQuery string
	MaxPages    int
	Sites       []string

	SettleMode    string
	SettleDelay   time.Duration
	SettleTimeout time.Duration
	NavTimeout    time.Duration
	MaxRetries    int

	ResetOnHarvest bool
	CSVOutputPath  string

	HTTPAddr        string
	AllowedOrigins  []string
	RateLimitPerSec float64
	HarvestSchedule string

	LogLevel string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreSQLite)),
		SQLitePath:  getEnv("SQLITE_PATH", "ecommerce.db"),
		StoreTable:  getEnv("STORE_TABLE", "products"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "ecommerce"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		BrowserDriver: strings.ToLower(getEnv("BROWSER_DRIVER", BrowserChromedp)),
		ChromeBin:     getEnv("CHROME_BIN", ""),
		Headless:      getEnvBool("HEADLESS", true),
		UserAgent: getEnv("USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),

		SearchQuery: getEnv("SEARCH_QUERY", "shoes"),
		MaxPages:    getEnvInt("MAX_PAGES", 2),
		Sites:       getEnvList("SITES", []string{"amazon", "myntra"}),

		SettleMode:    strings.ToLower(getEnv("SETTLE_MODE", SettleFixed)),
		SettleDelay:   getEnvDuration("SETTLE_DELAY", 3*time.Second),
		SettleTimeout: getEnvDuration("SETTLE_TIMEOUT", 10*time.Second),
		NavTimeout:    getEnvDuration("NAV_TIMEOUT", 60*time.Second),
		MaxRetries:    getEnvInt("MAX_RETRIES", 3),

		ResetOnHarvest: getEnvBool("RESET_ON_HARVEST", true),
		CSVOutputPath:  getEnv("CSV_OUTPUT_PATH", ""),

		HTTPAddr:        getEnv("HTTP_ADDR", ":5000"),
		AllowedOrigins:  getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		RateLimitPerSec: getEnvFloat("RATE_LIMIT_PER_SEC", 10),
		HarvestSchedule: getEnv("HARVEST_SCHEDULE", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks the enumerated settings and numeric bounds.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreSQLite, StorePostgres:
	default:
		return fmt.Errorf("%w: unknown STORE_DRIVER %q", ErrInvalidConfig, c.StoreDriver)
	}
	switch c.BrowserDriver {
	case BrowserChromedp, BrowserRod, BrowserStatic:
	default:
		return fmt.Errorf("%w: unknown BROWSER_DRIVER %q", ErrInvalidConfig, c.BrowserDriver)
	}
	switch c.SettleMode {
	case SettleFixed, SettleContainer:
	default:
		return fmt.Errorf("%w: unknown SETTLE_MODE %q", ErrInvalidConfig, c.SettleMode)
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("%w: MAX_PAGES must be at least 1, got %d", ErrInvalidConfig, c.MaxPages)
	}
	if len(c.Sites) == 0 {
		return fmt.Errorf("%w: SITES is empty", ErrInvalidConfig)
	}
	if c.RateLimitPerSec <= 0 {
		return fmt.Errorf("%w: RATE_LIMIT_PER_SEC must be positive", ErrInvalidConfig)
	}
	return nil
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

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma-separated value, dropping blanks.
func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
