package models

import (
	"github.com/shopspring/decimal"
)

// Money is a currency amount kept at two decimal places. It serializes to
// JSON as a plain number (e.g. 240.00) rather than decimal's quoted string.
type Money struct {
	decimal.Decimal
}

// NewMoney rounds d to two places.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(2)}
}

// MoneyFromFloat is a convenience for tests and fixtures.
func MoneyFromFloat(f float64) Money {
	return NewMoney(decimal.NewFromFloat(f))
}

// MarshalJSON writes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(2)), nil
}

// UnmarshalJSON accepts both numbers and quoted numeric strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	if err := m.Decimal.UnmarshalJSON(data); err != nil {
		return err
	}
	m.Decimal = m.Round(2)
	return nil
}

// Float64 returns the amount as a float for aggregation output.
func (m Money) Float64() float64 {
	f, _ := m.Decimal.Float64()
	return f
}
