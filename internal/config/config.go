package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"invoicer/internal/logger"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

var prefixPattern = regexp.MustCompile(`^[A-Z]+$`)

type Config struct {
	// Business
	BusinessName    string
	BusinessTagline string
	BusinessAddress string
	BusinessPhone   string
	InvoicePrefix   string

	// OpenAI parser
	OpenAIAPIKey             string
	OpenAIBaseURL            string
	OpenAIModel              string
	OpenAITranscriptionModel string
	ParserMaxRetries         int
	ParserTimeout            time.Duration

	// Storage
	StoreBackend string
	StorePath    string

	// Export
	ExportDir            string
	GoogleSheetURL       string
	GoogleSheetWorksheet string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// flagKeys maps persistent CLI flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":     "LOG_LEVEL",
	"store-backend": "STORE_BACKEND",
	"store-path":    "STORE_PATH",
}

// Load resolves configuration from defaults, an optional config file, the
// environment and finally any bound command-line flags. Pass an empty
// configFile to skip the file and a nil flag set to skip flag binding.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	config := &Config{
		BusinessName:             v.GetString("BUSINESS_NAME"),
		BusinessTagline:          v.GetString("BUSINESS_TAGLINE"),
		BusinessAddress:          v.GetString("BUSINESS_ADDRESS"),
		BusinessPhone:            v.GetString("BUSINESS_PHONE"),
		InvoicePrefix:            strings.ToUpper(strings.TrimSpace(v.GetString("INVOICE_PREFIX"))),
		OpenAIAPIKey:             v.GetString("OPENAI_API_KEY"),
		OpenAIBaseURL:            v.GetString("OPENAI_BASE_URL"),
		OpenAIModel:              v.GetString("OPENAI_MODEL"),
		OpenAITranscriptionModel: v.GetString("OPENAI_TRANSCRIPTION_MODEL"),
		ParserMaxRetries:         v.GetInt("PARSER_MAX_RETRIES"),
		ParserTimeout:            v.GetDuration("PARSER_TIMEOUT"),
		StoreBackend:             strings.ToLower(v.GetString("STORE_BACKEND")),
		StorePath:                v.GetString("STORE_PATH"),
		ExportDir:                v.GetString("EXPORT_DIR"),
		GoogleSheetURL:           v.GetString("GOOGLE_SHEET_URL"),
		GoogleSheetWorksheet:     v.GetString("GOOGLE_SHEET_WORKSHEET"),
		LogLevel:                 v.GetString("LOG_LEVEL"),
		LogFormat:                v.GetString("LOG_FORMAT"),
		LogTimeFormat:            v.GetString("LOG_TIME_FORMAT"),
		LogOutput:                v.GetString("LOG_OUTPUT"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("BUSINESS_NAME", "Threm Multilinks Venture")
	v.SetDefault("BUSINESS_TAGLINE", "Venture - Cement Depot")
	v.SetDefault("BUSINESS_ADDRESS", "")
	v.SetDefault("BUSINESS_PHONE", "")
	v.SetDefault("INVOICE_PREFIX", "TMV")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_TRANSCRIPTION_MODEL", "whisper-1")
	v.SetDefault("PARSER_MAX_RETRIES", 3)
	v.SetDefault("PARSER_TIMEOUT", "60s")
	v.SetDefault("STORE_BACKEND", BackendFile)
	v.SetDefault("STORE_PATH", "./data")
	v.SetDefault("EXPORT_DIR", ".")
	v.SetDefault("GOOGLE_SHEET_URL", "")
	v.SetDefault("GOOGLE_SHEET_WORKSHEET", "Invoices")
	v.SetDefault("LOG_LEVEL", "warn")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00")
	v.SetDefault("LOG_OUTPUT", "stderr")
}

func (c *Config) validate() error {
	if c.StoreBackend != BackendFile && c.StoreBackend != BackendSQLite {
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendFile, BackendSQLite, c.StoreBackend)
	}
	if c.StorePath == "" {
		return fmt.Errorf("STORE_PATH is required")
	}
	if !prefixPattern.MatchString(c.InvoicePrefix) {
		return fmt.Errorf("INVOICE_PREFIX must be upper-case letters only, got %q", c.InvoicePrefix)
	}
	if c.ParserMaxRetries < 1 {
		return fmt.Errorf("PARSER_MAX_RETRIES must be at least 1")
	}
	if c.ParserTimeout <= 0 {
		return fmt.Errorf("PARSER_TIMEOUT must be positive")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}
