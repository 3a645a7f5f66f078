package config

import (
	"log/slog"
	"testing"

	"github.com/kendall-kelly/laundry-shop-api/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite://test.db")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("PRICING_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverGorm, cfg.StoreDriver)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "UTC", cfg.ReportTimezone)
	assert.True(t, decimal.NewFromInt(6).Equal(cfg.Pricing.MinWeight))
	assert.True(t, decimal.NewFromInt(8).Equal(cfg.Pricing.MaxWeight))
	assert.Equal(t, pricing.GateWashOnly, cfg.Pricing.Gate)
	assert.Equal(t, pricing.ModeQuantity, cfg.Pricing.Mode)
	assert.False(t, cfg.AuthEnabled())
	assert.False(t, cfg.ReceiptsEnabled())
	assert.True(t, cfg.IsTest())
}

func TestLoad_PricingOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite://test.db")
	t.Setenv("MIN_WEIGHT", "5")
	t.Setenv("MAX_WEIGHT", "9.5")
	t.Setenv("EXCESS_RATE_PER_KG", "25")
	t.Setenv("ADDON_UNIT_PRICE", "15")
	t.Setenv("ADDON_GATE", "all")
	t.Setenv("ADDON_MODE", "presence")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(5).Equal(cfg.Pricing.MinWeight))
	assert.True(t, decimal.RequireFromString("9.5").Equal(cfg.Pricing.MaxWeight))
	assert.True(t, decimal.NewFromInt(25).Equal(cfg.Pricing.ExcessPerKg))
	assert.True(t, decimal.NewFromInt(15).Equal(cfg.Pricing.AddOnPrices["fabcon"]))
	assert.Equal(t, pricing.GateAllServices, cfg.Pricing.Gate)
	assert.Equal(t, pricing.ModePresence, cfg.Pricing.Mode)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing database url", map[string]string{"DATABASE_URL": ""}},
		{"file store without data dir", map[string]string{"STORE_DRIVER": "file", "DATA_DIR": ""}},
		{"unknown store driver", map[string]string{"STORE_DRIVER": "redis"}},
		{"non-numeric weight", map[string]string{"MIN_WEIGHT": "six"}},
		{"inverted weight band", map[string]string{"MIN_WEIGHT": "9", "MAX_WEIGHT": "8"}},
		{"unknown gate", map[string]string{"ADDON_GATE": "sometimes"}},
		{"unknown mode", map[string]string{"ADDON_MODE": "bitmask"}},
		{"missing pricing file", map[string]string{"PRICING_FILE": "/does/not/exist.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "sqlite://test.db")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetSetConfig(t *testing.T) {
	original := GetConfig()
	defer SetConfig(original)

	cfg := &Config{Port: "9999"}
	SetConfig(cfg)
	assert.Same(t, cfg, GetConfig())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel(""))
	assert.Equal(t, slog.Level(-8), ParseLogLevel("-8"))
}
