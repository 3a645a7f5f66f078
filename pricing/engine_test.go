package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCompute(t *testing.T) {
	engine := NewEngine(DefaultRates())

	tests := []struct {
		name    string
		req     Request
		want    string
		wantErr string
	}{
		{
			name: "minimum weight has no excess",
			req:  Request{ServiceType: "wash-fold", Weight: d("6")},
			want: "160",
		},
		{
			name: "maximum weight is accepted",
			req:  Request{ServiceType: "wash-fold", Weight: d("8")},
			want: "200",
		},
		{
			name: "fractional excess",
			req:  Request{ServiceType: "wash-fold", Weight: d("6.5")},
			want: "170",
		},
		{
			name: "add-ons on a wash service",
			req: Request{
				ServiceType: "wash-fold",
				Weight:      d("8"),
				AddOns:      []Selection{{Name: "fabcon", Quantity: 1}, {Name: "powder", Quantity: 1}},
			},
			want: "240",
		},
		{
			name: "add-on quantities multiply",
			req: Request{
				ServiceType: "wash",
				Weight:      d("6"),
				AddOns:      []Selection{{Name: "fabcon", Quantity: 3}},
			},
			want: "190",
		},
		{
			name: "add-ons ignored outside wash services",
			req: Request{
				ServiceType: "dry-clean",
				Weight:      d("7"),
				AddOns:      []Selection{{Name: "fabcon", Quantity: 2}},
			},
			want: "270",
		},
		{
			name: "zero quantity contributes nothing",
			req: Request{
				ServiceType: "wash",
				Weight:      d("6"),
				AddOns:      []Selection{{Name: "powder", Quantity: 0}},
			},
			want: "160",
		},
		{
			name: "explicit price overrides everything",
			req:  Request{ServiceType: "unknown", Weight: d("100"), ExplicitPrice: decimalPtr("99.99")},
			want: "99.99",
		},
		{
			name: "explicit price is rounded",
			req:  Request{ServiceType: "wash", Weight: d("6"), ExplicitPrice: decimalPtr("10.005")},
			want: "10.01",
		},
		{
			name:    "below minimum weight",
			req:     Request{ServiceType: "wash", Weight: d("5.99")},
			wantErr: "weight",
		},
		{
			name:    "above maximum weight",
			req:     Request{ServiceType: "wash", Weight: d("8.01")},
			wantErr: "weight",
		},
		{
			name:    "unknown service type",
			req:     Request{ServiceType: "steam", Weight: d("6")},
			wantErr: "service_type",
		},
		{
			name: "unknown add-on",
			req: Request{
				ServiceType: "wash",
				Weight:      d("6"),
				AddOns:      []Selection{{Name: "bleach", Quantity: 1}},
			},
			wantErr: "add_ons",
		},
		{
			name: "negative add-on quantity",
			req: Request{
				ServiceType: "wash",
				Weight:      d("6"),
				AddOns:      []Selection{{Name: "fabcon", Quantity: -1}},
			},
			wantErr: "add_ons",
		},
		{
			name:    "negative explicit price",
			req:     Request{ServiceType: "wash", Weight: d("6"), ExplicitPrice: decimalPtr("-1")},
			wantErr: "price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Price(tt.req)
			if tt.wantErr != "" {
				var perr *Error
				require.ErrorAs(t, err, &perr)
				assert.Equal(t, tt.wantErr, perr.Field)
				return
			}
			require.NoError(t, err)
			assert.True(t, d(tt.want).Equal(got), "expected %s, got %s", tt.want, got)
		})
	}
}

func TestCompute_WeightBandProperty(t *testing.T) {
	engine := NewEngine(DefaultRates())
	rates := engine.Rates()

	for w := rates.MinWeight; w.LessThanOrEqual(rates.MaxWeight); w = w.Add(d("0.25")) {
		got, err := engine.Price(Request{ServiceType: "wash-fold", Weight: w})
		require.NoError(t, err)

		want := rates.Services["wash-fold"].BaseRate.Add(w.Sub(rates.MinWeight).Mul(rates.ExcessPerKg))
		assert.True(t, want.Round(2).Equal(got), "weight %s: expected %s, got %s", w, want, got)
	}
}

func TestCompute_AllServicesGate(t *testing.T) {
	rates := DefaultRates()
	rates.Gate = GateAllServices
	engine := NewEngine(rates)

	got, err := engine.Price(Request{
		ServiceType: "dry-clean",
		Weight:      d("6"),
		AddOns:      []Selection{{Name: "fabcon", Quantity: 2}},
	})
	require.NoError(t, err)
	assert.True(t, d("270").Equal(got))
}

func TestCompute_PresenceMode(t *testing.T) {
	rates := DefaultRates()
	rates.Mode = ModePresence
	engine := NewEngine(rates)

	got, err := engine.Price(Request{
		ServiceType: "wash",
		Weight:      d("6"),
		AddOns:      []Selection{{Name: "fabcon", Quantity: 4}, {Name: "powder", Quantity: 0}},
	})
	require.NoError(t, err)
	assert.True(t, d("170").Equal(got), "presence counts a selected add-on once, got %s", got)
}

func TestCompute_Breakdown(t *testing.T) {
	engine := NewEngine(DefaultRates())

	b, err := engine.Compute(Request{
		ServiceType: "wash",
		Weight:      d("7"),
		AddOns:      []Selection{{Name: "powder", Quantity: 2}},
	})
	require.NoError(t, err)
	assert.False(t, b.Explicit)
	assert.True(t, d("160").Equal(b.Base))
	assert.True(t, d("20").Equal(b.Excess))
	assert.True(t, d("20").Equal(b.AddOns))
	assert.True(t, d("200").Equal(b.Total))
}

func TestServiceTypes(t *testing.T) {
	engine := NewEngine(DefaultRates())
	assert.Equal(t, []string{"dry-clean", "wash", "wash-fold", "wash-iron"}, engine.ServiceTypes())
}

func decimalPtr(s string) *decimal.Decimal {
	v := d(s)
	return &v
}
