package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kendall-kelly/laundry-shop-api/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pricingYAML = `
min_weight: 5
max_weight: 10
excess_rate_per_kg: 15.5
addon_gate: all
services:
  wash: {base_rate: 150, addons_eligible: true}
  premium: {base_rate: 300}
add_ons:
  fabcon: 12
  softener: 8
`

func TestParsePricing(t *testing.T) {
	rates, err := ParsePricing([]byte(pricingYAML))
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(5).Equal(rates.MinWeight))
	assert.True(t, decimal.NewFromInt(10).Equal(rates.MaxWeight))
	assert.True(t, decimal.RequireFromString("15.5").Equal(rates.ExcessPerKg))
	assert.Equal(t, pricing.GateAllServices, rates.Gate)
	assert.Equal(t, pricing.ModeQuantity, rates.Mode, "omitted values keep the default")

	require.Len(t, rates.Services, 2)
	assert.True(t, decimal.NewFromInt(300).Equal(rates.Services["premium"].BaseRate))
	assert.True(t, rates.Services["wash"].AddOnsEligible)

	require.Len(t, rates.AddOnPrices, 2)
	assert.True(t, decimal.NewFromInt(8).Equal(rates.AddOnPrices["softener"]))
}

func TestParsePricing_Invalid(t *testing.T) {
	_, err := ParsePricing([]byte("services:\n  wash: {base_rate: cheap}\n"))
	assert.Error(t, err)

	_, err = ParsePricing([]byte("min_weight: [1, 2]\n"))
	assert.Error(t, err)
}

func TestLoadPricingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(pricingYAML), 0o644))

	rates, err := LoadPricingFile(path)
	require.NoError(t, err)
	assert.Contains(t, rates.Services, "premium")

	t.Setenv("DATABASE_URL", "sqlite://test.db")
	t.Setenv("PRICING_FILE", path)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Contains(t, cfg.Pricing.Services, "premium")
}
