package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// SMS gateway providers.
const (
	ProviderHTTP     = "http"
	ProviderWhatsApp = "whatsapp"
)

// DefaultBroadcastTemplate is the pickup reminder sent to customers found on a delivery slip.
const DefaultBroadcastTemplate = "Dobry den, pokud jste doposud nevyzvedli svou objednavku, tuto lze vyzvednout " +
	"do soboty 9:00. S podekovanim Bogarovo hospodarstvi. PS: Jestli jste si tuto " +
	"vyzvedli prosíme nezapomínejte odebrat také svou dodejku....."

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Store     StoreConfig
	SMS       SMSConfig
	WhatsApp  WhatsAppConfig
	OCR       OCRConfig
	Broadcast BroadcastConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
	MongoDB   MongoDBConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LogConfig selects the minimum zap level.
type LogConfig struct {
	Level string
}

// StoreConfig locates the local SQLite database.
type StoreConfig struct {
	Path string
}

// SMSConfig selects and configures the outbound SMS gateway.
type SMSConfig struct {
	Provider string
	BaseURL  string
	Token    string
	Sender   string
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API gateway.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
}

// OCRConfig configures text recognition on delivery slip photos.
type OCRConfig struct {
	AnthropicKey string
	BaseURL      string
	Model        string
}

// BroadcastConfig holds the SMS broadcast defaults and initial permission grants.
type BroadcastConfig struct {
	Template      string
	CameraGranted bool
	SMSGranted    bool
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
	ManagerPhone string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Enabled reports whether the spreadsheet export is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// Enabled reports whether the movement log and report storage are configured.
func (c MongoDBConfig) Enabled() bool {
	return c.URI != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Path: getenvWithDefault("STORE_PATH", "data/bogarovo.db"),
		},
		SMS: SMSConfig{
			Provider: strings.ToLower(getenvWithDefault("SMS_PROVIDER", ProviderHTTP)),
			BaseURL:  os.Getenv("SMS_BASE_URL"),
			Token:    os.Getenv("SMS_TOKEN"),
			Sender:   getenvWithDefault("SMS_SENDER", "Bogarovo"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
		},
		OCR: OCRConfig{
			AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
			BaseURL:      getenvWithDefault("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
			Model:        getenvWithDefault("OCR_MODEL", "claude-3-haiku-20240307"),
		},
		Broadcast: BroadcastConfig{
			Template:      getenvWithDefault("BROADCAST_TEMPLATE", DefaultBroadcastTemplate),
			CameraGranted: getenvBool("PERMIT_CAMERA", false),
			SMSGranted:    getenvBool("PERMIT_SMS", false),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Europe/Prague"),
			ManagerPhone: os.Getenv("REPORT_MANAGER_PHONE"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "bogarovo"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Store.Path == "" {
		return errors.New("STORE_PATH must be provided")
	}

	switch c.SMS.Provider {
	case ProviderHTTP:
		if c.SMS.BaseURL == "" {
			return errors.New("SMS_BASE_URL must be provided for the http provider")
		}
	case ProviderWhatsApp:
		switch {
		case c.WhatsApp.AccessToken == "":
			return errors.New("WHATSAPP_TOKEN must be provided")
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	default:
		return fmt.Errorf("unsupported SMS_PROVIDER %q", c.SMS.Provider)
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}
	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Reporting.Timezone, err)
	}

	if c.MongoDB.Enabled() && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided when MONGODB_URI is set")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}
