package config

import (
	"fmt"
	"os"

	"github.com/kendall-kelly/laundry-shop-api/pricing"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// PricingFile is the YAML shape of a rate table, e.g.
//
//	min_weight: 6
//	max_weight: 8
//	excess_rate_per_kg: 20
//	addon_gate: wash-only
//	addon_mode: quantity
//	services:
//	  wash-fold: {base_rate: 160, addons_eligible: true}
//	  dry-clean: {base_rate: 250}
//	add_ons:
//	  fabcon: 10
type PricingFile struct {
	MinWeight      string                 `yaml:"min_weight"`
	MaxWeight      string                 `yaml:"max_weight"`
	ExcessRate     string                 `yaml:"excess_rate_per_kg"`
	AddOnUnitPrice string                 `yaml:"addon_unit_price"`
	AddOnGate      string                 `yaml:"addon_gate"`
	AddOnMode      string                 `yaml:"addon_mode"`
	AllowAnyAddOns bool                   `yaml:"allow_any_add_ons"`
	Services       map[string]ServiceRate `yaml:"services"`
	AddOns         map[string]string      `yaml:"add_ons"`
}

// ServiceRate is one service type in the YAML rate table
type ServiceRate struct {
	BaseRate       string `yaml:"base_rate"`
	AddOnsEligible bool   `yaml:"addons_eligible"`
}

// LoadPricingFile reads a YAML rate table. Omitted scalar values keep the
// shop defaults; a services or add_ons section replaces the default table.
func LoadPricingFile(path string) (pricing.Rates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pricing.Rates{}, fmt.Errorf("read pricing file: %w", err)
	}
	return ParsePricing(data)
}

// ParsePricing decodes a YAML rate table on top of the default rates.
func ParsePricing(data []byte) (pricing.Rates, error) {
	var f PricingFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return pricing.Rates{}, fmt.Errorf("parse pricing file: %w", err)
	}

	rates := pricing.DefaultRates()
	scalars := []struct {
		name  string
		raw   string
		value *decimal.Decimal
	}{
		{"min_weight", f.MinWeight, &rates.MinWeight},
		{"max_weight", f.MaxWeight, &rates.MaxWeight},
		{"excess_rate_per_kg", f.ExcessRate, &rates.ExcessPerKg},
		{"addon_unit_price", f.AddOnUnitPrice, &rates.DefaultAddOn},
	}
	for _, s := range scalars {
		if s.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(s.raw)
		if err != nil {
			return pricing.Rates{}, fmt.Errorf("pricing %s must be numeric, got %q", s.name, s.raw)
		}
		*s.value = v
	}

	if f.AddOnGate != "" {
		rates.Gate = pricing.AddOnGate(f.AddOnGate)
	}
	if f.AddOnMode != "" {
		rates.Mode = pricing.AddOnMode(f.AddOnMode)
	}
	rates.AllowAnyAddOns = f.AllowAnyAddOns

	if len(f.Services) > 0 {
		rates.Services = make(map[string]pricing.Service, len(f.Services))
		for name, svc := range f.Services {
			base, err := decimal.NewFromString(svc.BaseRate)
			if err != nil {
				return pricing.Rates{}, fmt.Errorf("pricing service %q base_rate must be numeric, got %q", name, svc.BaseRate)
			}
			rates.Services[name] = pricing.Service{BaseRate: base, AddOnsEligible: svc.AddOnsEligible}
		}
	}

	if len(f.AddOns) > 0 {
		rates.AddOnPrices = make(map[string]decimal.Decimal, len(f.AddOns))
		for name, raw := range f.AddOns {
			v, err := decimal.NewFromString(raw)
			if err != nil {
				return pricing.Rates{}, fmt.Errorf("pricing add-on %q must be numeric, got %q", name, raw)
			}
			rates.AddOnPrices[name] = v
		}
	}

	return rates, nil
}
