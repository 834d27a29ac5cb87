package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mamadbah2/stockkeeper/internal/domain/models"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Files     FilesConfig
	Sheets    SheetsConfig
	WhatsApp  WhatsAppConfig
	Reporting ReportingConfig
	Log       LogConfig
	Automated bool
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI        string
	DBName     string
	Collection string
}

// FilesConfig holds the default spreadsheet locations.
type FilesConfig struct {
	Input  string
	Output string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether a Google Sheet can be used as import source or export target.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// WhatsAppConfig contains credentials for the low stock alert channel.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	AlertTo       string
}

// Enabled reports whether alerts should be sent.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != "" && c.AlertTo != ""
}

// ReportingConfig holds low stock and scheduler settings.
type ReportingConfig struct {
	Threshold    int
	CronSchedule string
}

// LogConfig selects the zap logger flavour.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: failed loading env file %s: %v", models.ErrConfig, envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	threshold, err := getenvInt("STOCKKEEPER_THRESHOLD", models.DefaultThreshold)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:        os.Getenv("MONGO_URI"),
			DBName:     getenvWithDefault("MONGO_DB_NAME", "mini_marche"),
			Collection: getenvWithDefault("MONGO_COLLECTION", "inventory"),
		},
		Files: FilesConfig{
			Input:  getenvWithDefault("STOCKKEEPER_INPUT", "inventory.xlsx"),
			Output: getenvWithDefault("STOCKKEEPER_OUTPUT", "low_stock.xlsx"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_ID"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			AlertTo:       os.Getenv("WHATSAPP_ALERT_TO"),
		},
		Reporting: ReportingConfig{
			Threshold:    threshold,
			CronSchedule: getenvWithDefault("STOCKKEEPER_CRON", "0 8 * * *"),
		},
		Log: LogConfig{
			Level:  getenvWithDefault("LOG_LEVEL", "info"),
			Format: getenvWithDefault("LOG_FORMAT", "json"),
		},
		Automated: isTrue(os.Getenv("GITHUB_ACTIONS")) || isTrue(os.Getenv("STOCKKEEPER_AUTOMATED")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that configured values are usable. An empty MONGO_URI is
// not rejected here; opening the store reports it.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", models.ErrConfig)
	}

	if c.Server.Port == "" {
		return fmt.Errorf("%w: APP_PORT must not be empty", models.ErrConfig)
	}

	if c.MongoDB.DBName == "" || c.MongoDB.Collection == "" {
		return fmt.Errorf("%w: MONGO_DB_NAME and MONGO_COLLECTION must not be empty", models.ErrConfig)
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: LOG_FORMAT must be json or console, got %q", models.ErrConfig, c.Log.Format)
	}

	// A partially configured alert channel is almost always a typo.
	wa := c.WhatsApp
	if (wa.AccessToken != "" || wa.PhoneNumberID != "" || wa.AlertTo != "") && !wa.Enabled() {
		return fmt.Errorf("%w: WHATSAPP_TOKEN, WHATSAPP_PHONE_NUMBER_ID and WHATSAPP_ALERT_TO must be set together", models.ErrConfig)
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", models.ErrConfig, key, value)
	}
	return n, nil
}

func isTrue(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "true")
}
