package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kendall-kelly/laundry-shop-api/pricing"
	"github.com/shopspring/decimal"
)

// Store drivers
const (
	StoreDriverGorm = "gorm"
	StoreDriverFile = "file"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL        string
	StoreDriver        string
	DataDir            string
	Port               string
	GoEnv              string
	Auth0Domain        string
	Auth0Audience      string
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	LogLevel           string
	CORSAllowedOrigins []string
	ReportTimezone     string
	PricingFile        string
	Pricing            pricing.Rates
}

var current *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	// Determine which environment file to load
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// If environment-specific file doesn't exist, try .env
		if err := godotenv.Load(); err != nil {
			slog.Debug("no .env file found, using system environment variables")
		}
	} else {
		slog.Info("loaded configuration", "file", envFile)
	}

	config := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		StoreDriver:        getEnv("STORE_DRIVER", StoreDriverGorm),
		DataDir:            getEnv("DATA_DIR", ""),
		Port:               getEnv("PORT", "8080"),
		GoEnv:              getEnv("GO_ENV", "development"),
		Auth0Domain:        getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:      getEnv("AUTH0_AUDIENCE", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReportTimezone:     getEnv("REPORT_TIMEZONE", "UTC"),
		PricingFile:        getEnv("PRICING_FILE", ""),
	}

	rates, err := loadPricing(config.PricingFile)
	if err != nil {
		return nil, err
	}
	config.Pricing = rates

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// loadPricing starts from the default rate table, swaps in the YAML table
// when one is configured, then applies the single-value env overrides.
func loadPricing(path string) (pricing.Rates, error) {
	rates := pricing.DefaultRates()
	if path != "" {
		fromFile, err := LoadPricingFile(path)
		if err != nil {
			return pricing.Rates{}, err
		}
		rates = fromFile
	}

	overrides := []struct {
		key    string
		target *decimal.Decimal
	}{
		{"MIN_WEIGHT", &rates.MinWeight},
		{"MAX_WEIGHT", &rates.MaxWeight},
		{"EXCESS_RATE_PER_KG", &rates.ExcessPerKg},
		{"ADDON_UNIT_PRICE", &rates.DefaultAddOn},
	}
	for _, o := range overrides {
		raw := os.Getenv(o.key)
		if raw == "" {
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return pricing.Rates{}, fmt.Errorf("%s must be numeric, got %q", o.key, raw)
		}
		*o.target = v
	}

	// A flat unit price applies to every catalogued add-on.
	if os.Getenv("ADDON_UNIT_PRICE") != "" {
		for name := range rates.AddOnPrices {
			rates.AddOnPrices[name] = rates.DefaultAddOn
		}
	}
	if gate := os.Getenv("ADDON_GATE"); gate != "" {
		rates.Gate = pricing.AddOnGate(gate)
	}
	if mode := os.Getenv("ADDON_MODE"); mode != "" {
		rates.Mode = pricing.AddOnMode(mode)
	}

	return rates, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverGorm:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case StoreDriverFile:
		if c.DataDir == "" {
			return fmt.Errorf("DATA_DIR is required when STORE_DRIVER=file")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.Pricing.MinWeight.GreaterThan(c.Pricing.MaxWeight) {
		return fmt.Errorf("MIN_WEIGHT (%s) must not exceed MAX_WEIGHT (%s)", c.Pricing.MinWeight, c.Pricing.MaxWeight)
	}
	switch c.Pricing.Gate {
	case pricing.GateWashOnly, pricing.GateAllServices:
	default:
		return fmt.Errorf("unknown ADDON_GATE %q", c.Pricing.Gate)
	}
	switch c.Pricing.Mode {
	case pricing.ModeQuantity, pricing.ModePresence:
	default:
		return fmt.Errorf("unknown ADDON_MODE %q", c.Pricing.Mode)
	}
	if len(c.Pricing.Services) == 0 {
		return fmt.Errorf("pricing table has no service types")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// AuthEnabled reports whether operator JWTs are enforced
func (c *Config) AuthEnabled() bool {
	return c.Auth0Domain != "" && c.Auth0Audience != ""
}

// ReceiptsEnabled reports whether an S3 bucket is configured for receipts
func (c *Config) ReceiptsEnabled() bool {
	return c.AWSS3Bucket != ""
}

// GetConfig returns the configuration set by SetConfig
func GetConfig() *Config {
	return current
}

// SetConfig stores the process configuration (used by main and tests)
func SetConfig(cfg *Config) {
	current = cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseLogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}
	return slog.LevelInfo
}

// NewLogger builds the JSON logger used across the service.
func NewLogger(level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParseLogLevel(level),
	}))
}
