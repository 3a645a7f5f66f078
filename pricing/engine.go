// Package pricing turns intake fields into an order price. It is a pure
// function of its Rates; nothing here touches storage or the clock.
package pricing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// AddOnGate decides which service types may be charged for add-ons.
type AddOnGate string

const (
	// GateWashOnly charges add-ons only on services flagged AddOnsEligible.
	GateWashOnly AddOnGate = "wash-only"
	// GateAllServices charges add-ons on every service type.
	GateAllServices AddOnGate = "all"
)

// AddOnMode decides how add-on selections are counted.
type AddOnMode string

const (
	// ModeQuantity bills each unit selected.
	ModeQuantity AddOnMode = "quantity"
	// ModePresence bills a selected add-on once, whatever the quantity.
	ModePresence AddOnMode = "presence"
)

// Service is one entry of the rate table.
type Service struct {
	BaseRate       decimal.Decimal
	AddOnsEligible bool
}

// Rates is the full pricing configuration.
type Rates struct {
	MinWeight      decimal.Decimal
	MaxWeight      decimal.Decimal
	ExcessPerKg    decimal.Decimal
	Services       map[string]Service
	AddOnPrices    map[string]decimal.Decimal
	DefaultAddOn   decimal.Decimal
	Gate           AddOnGate
	Mode           AddOnMode
	AllowAnyAddOns bool // accept add-on names missing from AddOnPrices, billed at DefaultAddOn
}

// Selection is one chosen add-on with its already-validated quantity.
type Selection struct {
	Name     string
	Quantity int
}

// Request carries already-parsed numeric inputs.
type Request struct {
	ServiceType   string
	Weight        decimal.Decimal
	AddOns        []Selection
	ExplicitPrice *decimal.Decimal
}

// Breakdown explains how a price was reached.
type Breakdown struct {
	Base     decimal.Decimal
	Excess   decimal.Decimal
	AddOns   decimal.Decimal
	Total    decimal.Decimal
	Explicit bool
}

// Error is returned for any input the engine refuses to price.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// DefaultRates mirrors the shop's price list: 6-8 kg per load, 160 base,
// 20 per kg over 6, 10 per fabcon or powder on wash services.
func DefaultRates() Rates {
	return Rates{
		MinWeight:   decimal.NewFromInt(6),
		MaxWeight:   decimal.NewFromInt(8),
		ExcessPerKg: decimal.NewFromInt(20),
		Services: map[string]Service{
			"wash":      {BaseRate: decimal.NewFromInt(160), AddOnsEligible: true},
			"wash-fold": {BaseRate: decimal.NewFromInt(160), AddOnsEligible: true},
			"wash-iron": {BaseRate: decimal.NewFromInt(200)},
			"dry-clean": {BaseRate: decimal.NewFromInt(250)},
		},
		AddOnPrices: map[string]decimal.Decimal{
			"fabcon": decimal.NewFromInt(10),
			"powder": decimal.NewFromInt(10),
		},
		DefaultAddOn: decimal.NewFromInt(10),
		Gate:         GateWashOnly,
		Mode:         ModeQuantity,
	}
}

// Engine prices orders against a fixed set of Rates.
type Engine struct {
	rates Rates
}

// NewEngine creates a pricing engine
func NewEngine(rates Rates) *Engine {
	return &Engine{rates: rates}
}

// Rates returns the engine's configuration.
func (e *Engine) Rates() Rates {
	return e.rates
}

// ServiceTypes lists the known service types, sorted.
func (e *Engine) ServiceTypes() []string {
	types := make([]string, 0, len(e.rates.Services))
	for name := range e.rates.Services {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// ValidateWeight checks the weight band, inclusive on both ends.
func (e *Engine) ValidateWeight(w decimal.Decimal) error {
	if w.LessThan(e.rates.MinWeight) || w.GreaterThan(e.rates.MaxWeight) {
		return &Error{
			Field:   "weight",
			Message: fmt.Sprintf("must be between %skg and %skg", e.rates.MinWeight, e.rates.MaxWeight),
		}
	}
	return nil
}

// ValidateServiceType checks the service type is in the rate table.
func (e *Engine) ValidateServiceType(serviceType string) error {
	if _, ok := e.rates.Services[serviceType]; !ok {
		return &Error{Field: "service_type", Message: fmt.Sprintf("unknown service type %q", serviceType)}
	}
	return nil
}

// ValidateAddOn checks an add-on name and quantity.
func (e *Engine) ValidateAddOn(s Selection) error {
	if s.Quantity < 0 {
		return &Error{Field: "add_ons", Message: fmt.Sprintf("quantity for %q must not be negative", s.Name)}
	}
	if _, ok := e.rates.AddOnPrices[s.Name]; !ok && !e.rates.AllowAnyAddOns {
		return &Error{Field: "add_ons", Message: fmt.Sprintf("unknown add-on %q", s.Name)}
	}
	return nil
}

// Compute prices a request. An explicit price wins over everything else and
// is only rounded; otherwise the total is base + excess weight + add-ons.
func (e *Engine) Compute(req Request) (Breakdown, error) {
	if req.ExplicitPrice != nil {
		if req.ExplicitPrice.IsNegative() {
			return Breakdown{}, &Error{Field: "price", Message: "must not be negative"}
		}
		total := req.ExplicitPrice.Round(2)
		return Breakdown{Total: total, Explicit: true}, nil
	}

	if err := e.ValidateServiceType(req.ServiceType); err != nil {
		return Breakdown{}, err
	}
	if err := e.ValidateWeight(req.Weight); err != nil {
		return Breakdown{}, err
	}

	svc := e.rates.Services[req.ServiceType]
	b := Breakdown{Base: svc.BaseRate}

	if req.Weight.GreaterThan(e.rates.MinWeight) {
		b.Excess = req.Weight.Sub(e.rates.MinWeight).Mul(e.rates.ExcessPerKg)
	}

	for _, sel := range req.AddOns {
		if err := e.ValidateAddOn(sel); err != nil {
			return Breakdown{}, err
		}
	}
	if e.rates.Gate == GateAllServices || svc.AddOnsEligible {
		b.AddOns = e.addOnTotal(req.AddOns)
	}

	b.Total = b.Base.Add(b.Excess).Add(b.AddOns).Round(2)
	return b, nil
}

// Price is Compute without the breakdown.
func (e *Engine) Price(req Request) (decimal.Decimal, error) {
	b, err := e.Compute(req)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Total, nil
}

func (e *Engine) addOnTotal(sels []Selection) decimal.Decimal {
	total := decimal.Zero
	for _, sel := range sels {
		if sel.Quantity <= 0 {
			continue
		}
		qty := sel.Quantity
		if e.rates.Mode == ModePresence {
			qty = 1
		}
		unit, ok := e.rates.AddOnPrices[sel.Name]
		if !ok {
			unit = e.rates.DefaultAddOn
		}
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}
