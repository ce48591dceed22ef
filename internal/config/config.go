package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"pinledger/internal/core"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	DataBackend  string // sqlite or memory
	SQLiteDBPath string

	// AMQP (optional)
	AMQPURL           string
	AMQPExchange      string
	AMQPNotifyQueue   string
	AMQPLocationQueue string
	AMQPEventsQueue   string

	// Telegram (optional)
	TelegramToken  string
	TelegramChatID int64

	// Proximity
	PlacesFile          string
	ProximityRadius     float64 // meters
	ProximityCooldown   time.Duration
	LocationInterval    time.Duration
	LocationMinDistance float64 // meters

	// Display defaults
	DefaultCurrency string
	DefaultLanguage string

	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8081"),
		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/expenses.db"),

		AMQPURL:           getEnv("AMQP_URL", ""),
		AMQPExchange:      getEnv("AMQP_EXCHANGE", "pinledger"),
		AMQPNotifyQueue:   getEnv("AMQP_NOTIFY_QUEUE", "notifications"),
		AMQPLocationQueue: getEnv("AMQP_LOCATION_QUEUE", "locations"),
		AMQPEventsQueue:   getEnv("AMQP_EVENTS_QUEUE", "expense_events"),

		TelegramToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID: getEnvInt64("TELEGRAM_CHAT_ID", 0),

		PlacesFile:          getEnv("PLACES_FILE", ""),
		ProximityRadius:     getEnvFloat("PROXIMITY_RADIUS_M", 100),
		ProximityCooldown:   getEnvDuration("PROXIMITY_COOLDOWN", 0),
		LocationInterval:    getEnvDuration("LOCATION_INTERVAL", 10*time.Second),
		LocationMinDistance: getEnvFloat("LOCATION_MIN_DISTANCE_M", 50),

		DefaultCurrency: getEnv("DEFAULT_CURRENCY", core.CurrencyUSD),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", core.LanguageEnglish),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// AMQPEnabled reports whether a broker URL is configured.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// TelegramEnabled reports whether Telegram delivery is configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// DefaultPreferences returns the display preferences a fresh process starts with.
func (c *Config) DefaultPreferences() core.Preferences {
	return core.Preferences{
		Currency: c.DefaultCurrency,
		Language: c.DefaultLanguage,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "memory":
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty")
			break
		}
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be 'sqlite' or 'memory'", c.DataBackend))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPNotifyQueue == "" || c.AMQPLocationQueue == "" || c.AMQPEventsQueue == "" {
			errors = append(errors, "AMQP queue names cannot be empty when AMQP URL is provided")
		}
	}

	if (c.TelegramToken == "") != (c.TelegramChatID == 0) {
		errors = append(errors, "TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}

	if c.ProximityRadius <= 0 {
		errors = append(errors, fmt.Sprintf("invalid proximity radius %v: must be positive", c.ProximityRadius))
	}
	if c.ProximityCooldown < 0 {
		errors = append(errors, fmt.Sprintf("invalid proximity cooldown %v: must not be negative", c.ProximityCooldown))
	}
	if c.LocationInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid location interval %v: must be at least 1 second", c.LocationInterval))
	}
	if c.LocationMinDistance < 0 {
		errors = append(errors, fmt.Sprintf("invalid location minimum distance %v: must not be negative", c.LocationMinDistance))
	}

	if !slices.Contains(core.Currencies, c.DefaultCurrency) {
		errors = append(errors, fmt.Sprintf("invalid default currency '%s': must be one of %v", c.DefaultCurrency, core.Currencies))
	}
	if !slices.Contains(core.Languages, c.DefaultLanguage) {
		errors = append(errors, fmt.Sprintf("invalid default language '%s': must be one of %v", c.DefaultLanguage, core.Languages))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
