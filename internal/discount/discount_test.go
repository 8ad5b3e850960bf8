// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discount

import (
	"math"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/discount-engine/pkg/types"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name         string
		orderTotal   float64
		tier         types.CustomerTier
		wantDiscount float64
		wantTotal    float64
		wantReason   string
	}{
		{
			name:       "standard high value gets bonus only",
			orderTotal: 650, tier: types.TierStandard,
			wantDiscount: 32.50, wantTotal: 617.50,
			wantReason: "5% discount for standard tier + high-value bonus",
		},
		{
			name:       "gold high value",
			orderTotal: 650, tier: types.TierGold,
			wantDiscount: 65.00, wantTotal: 585.00,
			wantReason: "10% discount for gold tier + high-value bonus",
		},
		{
			name:       "platinum high value",
			orderTotal: 650, tier: types.TierPlatinum,
			wantDiscount: 97.50, wantTotal: 552.50,
			wantReason: "15% discount for platinum tier + high-value bonus",
		},
		{
			name:       "standard below threshold",
			orderTotal: 100, tier: types.TierStandard,
			wantDiscount: 0, wantTotal: 100,
			wantReason: "0% discount for standard tier",
		},
		{
			name:       "zero total",
			orderTotal: 0, tier: types.TierPlatinum,
			wantDiscount: 0, wantTotal: 0,
			wantReason: "10% discount for platinum tier",
		},
		{
			name:       "just below threshold",
			orderTotal: 499.99, tier: types.TierGold,
			wantDiscount: 25.00, wantTotal: 474.99,
			wantReason: "5% discount for gold tier",
		},
		{
			name:       "exactly at threshold",
			orderTotal: 500, tier: types.TierStandard,
			wantDiscount: 25.00, wantTotal: 475.00,
			wantReason: "5% discount for standard tier + high-value bonus",
		},
		{
			name:       "cents are rounded",
			orderTotal: 123.45, tier: types.TierPlatinum,
			wantDiscount: 12.34, wantTotal: 111.11,
			wantReason: "10% discount for platinum tier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.orderTotal, tt.tier)
			require.NoError(t, err)
			assert.Equal(t, tt.orderTotal, got.Subtotal)
			assert.Equal(t, tt.wantDiscount, got.Discount)
			assert.Equal(t, tt.wantTotal, got.Total)
			assert.Equal(t, tt.wantReason, got.Reason)
		})
	}
}

func TestEvaluateRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name       string
		orderTotal float64
		tier       types.CustomerTier
	}{
		{"negative gold", -1, types.TierGold},
		{"negative standard", -0.01, types.TierStandard},
		{"negative platinum", -650, types.TierPlatinum},
		{"NaN", math.NaN(), types.TierGold},
		{"infinity", math.Inf(1), types.TierGold},
		{"unknown tier", 100, types.CustomerTier("silver")},
		{"empty tier", 100, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.orderTotal, tt.tier)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrInvalidArgument)
			assert.Equal(t, types.DiscountResult{}, got)
		})
	}
}

// Midpoints are where half-even and half-up disagree.
func TestEvaluateRoundingMidpoints(t *testing.T) {
	tests := []struct {
		name         string
		orderTotal   float64
		tier         types.CustomerTier
		rounding     types.RoundingMode
		wantDiscount float64
		wantTotal    float64
	}{
		{"half-even 0.125 rounds to even", 2.5, types.TierGold, types.RoundHalfEven, 0.12, 2.38},
		{"half-up 0.125 rounds up", 2.5, types.TierGold, types.RoundHalfUp, 0.13, 2.37},
		{"half-even 0.035 rounds to even", 0.7, types.TierGold, types.RoundHalfEven, 0.04, 0.66},
		{"half-up 0.035 rounds up", 0.7, types.TierGold, types.RoundHalfUp, 0.04, 0.66},
		{"half-even platinum 0.125", 1.25, types.TierPlatinum, types.RoundHalfEven, 0.12, 1.13},
		{"half-up platinum 0.125", 1.25, types.TierPlatinum, types.RoundHalfUp, 0.13, 1.12},
		// 0.45 * 0.1 in float64 is 0.045000000000000005; decimal sees 0.045.
		{"half-even decimal midpoint", 0.45, types.TierPlatinum, types.RoundHalfEven, 0.04, 0.41},
		{"half-up decimal midpoint", 0.45, types.TierPlatinum, types.RoundHalfUp, 0.05, 0.40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := types.DefaultPolicyConfig()
			cfg.Rounding = tt.rounding
			p, err := NewPolicy(cfg)
			require.NoError(t, err)

			got, err := p.Evaluate(tt.orderTotal, tt.tier)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDiscount, got.Discount)
			assert.Equal(t, tt.wantTotal, got.Total)
		})
	}
}

func TestEvaluateInvariants(t *testing.T) {
	p := DefaultPolicy()
	quarter := decimal.RequireFromString("0.25")

	for cents := int64(0); cents <= 200000; cents += 137 {
		orderTotal := decimal.New(cents, -2).InexactFloat64()
		for _, tier := range types.Tiers() {
			got, err := p.Evaluate(orderTotal, tier)
			require.NoError(t, err)

			subtotal := decimal.NewFromFloat(got.Subtotal)
			disc := decimal.NewFromFloat(got.Discount)
			total := decimal.NewFromFloat(got.Total)

			require.True(t, disc.GreaterThanOrEqual(decimal.Zero), "discount < 0 for %v %s", orderTotal, tier)
			require.True(t, disc.LessThanOrEqual(subtotal), "discount > subtotal for %v %s", orderTotal, tier)
			require.True(t, disc.LessThanOrEqual(subtotal.Mul(quarter).RoundBank(2)), "cap exceeded for %v %s", orderTotal, tier)
			require.True(t, total.Equal(subtotal.Sub(disc).RoundBank(2)), "total mismatch for %v %s", orderTotal, tier)
		}
	}
}

func TestEvaluateFullRateNeverExceedsSubtotal(t *testing.T) {
	for _, mode := range []types.RoundingMode{types.RoundHalfEven, types.RoundHalfUp} {
		t.Run(string(mode), func(t *testing.T) {
			cfg := types.DefaultPolicyConfig()
			cfg.TierRates[types.TierGold] = 1
			cfg.RateCap = 1
			cfg.Rounding = mode
			p, err := NewPolicy(cfg)
			require.NoError(t, err)

			for mills := int64(0); mills <= 50; mills++ {
				orderTotal := decimal.New(mills, -3).InexactFloat64()
				got, err := p.Evaluate(orderTotal, types.TierGold)
				require.NoError(t, err)

				subtotal := decimal.NewFromFloat(got.Subtotal)
				disc := decimal.NewFromFloat(got.Discount)
				total := decimal.NewFromFloat(got.Total)

				require.True(t, disc.GreaterThanOrEqual(decimal.Zero), "discount < 0 for %v", orderTotal)
				require.True(t, disc.LessThanOrEqual(subtotal), "discount %v > subtotal %v", disc, subtotal)
				require.True(t, total.GreaterThanOrEqual(decimal.Zero), "total %v < 0 for %v", total, orderTotal)
			}
		})
	}
}

func TestEvaluateSubCentAtFullRate(t *testing.T) {
	cfg := types.DefaultPolicyConfig()
	cfg.TierRates[types.TierGold] = 1
	cfg.RateCap = 1
	cfg.Rounding = types.RoundHalfUp
	p, err := NewPolicy(cfg)
	require.NoError(t, err)

	got, err := p.Evaluate(0.005, types.TierGold)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Discount)
	assert.Equal(t, 0.01, got.Total)

	got, err = p.Evaluate(12.34, types.TierGold)
	require.NoError(t, err)
	assert.Equal(t, 12.34, got.Discount)
	assert.Equal(t, 0.0, got.Total)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	for _, tier := range types.Tiers() {
		first, err := Evaluate(777.77, tier)
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			again, err := Evaluate(777.77, tier)
			require.NoError(t, err)
			assert.Equal(t, first, again)
			assert.Equal(t, math.Float64bits(first.Discount), math.Float64bits(again.Discount))
			assert.Equal(t, math.Float64bits(first.Total), math.Float64bits(again.Total))
		}
	}
}

func TestEvaluateConcurrent(t *testing.T) {
	p := DefaultPolicy()
	want, err := p.Evaluate(650, types.TierPlatinum)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]types.DiscountResult, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = p.Evaluate(650, types.TierPlatinum)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestAssess(t *testing.T) {
	o, err := DefaultPolicy().Assess(650, types.TierPlatinum)
	require.NoError(t, err)
	assert.Equal(t, types.TierPlatinum, o.Tier)
	assert.Equal(t, 0.15, o.Rate)
	assert.True(t, o.Bonus)
	assert.False(t, o.Capped)

	o, err = DefaultPolicy().Assess(20, types.TierStandard)
	require.NoError(t, err)
	assert.Equal(t, 0.0, o.Rate)
	assert.False(t, o.Bonus)
}

func TestPolicyCap(t *testing.T) {
	cfg := types.DefaultPolicyConfig()
	cfg.TierRates[types.TierPlatinum] = 0.22
	p, err := NewPolicy(cfg)
	require.NoError(t, err)

	o, err := p.Assess(650, types.TierPlatinum)
	require.NoError(t, err)
	assert.True(t, o.Capped)
	assert.Equal(t, 0.25, o.Rate)
	assert.Equal(t, 162.50, o.Discount)
	assert.Equal(t, 487.50, o.Total)
	// The suffix follows eligibility even though the cap absorbed the bonus.
	assert.Equal(t, "25% discount for platinum tier + high-value bonus", o.Reason)
}

func TestReasonTruncatesPercentage(t *testing.T) {
	cfg := types.DefaultPolicyConfig()
	cfg.TierRates[types.TierGold] = 0.125
	p, err := NewPolicy(cfg)
	require.NoError(t, err)

	got, err := p.Evaluate(100, types.TierGold)
	require.NoError(t, err)
	assert.Equal(t, "12% discount for gold tier", got.Reason)
	assert.Equal(t, 12.50, got.Discount)

	cfg.TierRates[types.TierGold] = 0.29
	p, err = NewPolicy(cfg)
	require.NoError(t, err)
	got, err = p.Evaluate(100, types.TierGold)
	require.NoError(t, err)
	assert.Equal(t, "25% discount for gold tier", got.Reason)

	cfg.RateCap = 0.5
	p, err = NewPolicy(cfg)
	require.NoError(t, err)
	got, err = p.Evaluate(100, types.TierGold)
	require.NoError(t, err)
	assert.Equal(t, "29% discount for gold tier", got.Reason)
}

func TestNewPolicyValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *types.PolicyConfig)
		errMsg string
	}{
		{"missing tier", func(c *types.PolicyConfig) { delete(c.TierRates, types.TierGold) }, "no rate for tier gold"},
		{"unknown tier", func(c *types.PolicyConfig) { c.TierRates["silver"] = 0.02 }, "unknown tier"},
		{"negative rate", func(c *types.PolicyConfig) { c.TierRates[types.TierGold] = -0.05 }, "between 0 and 1"},
		{"rate above one", func(c *types.PolicyConfig) { c.TierRates[types.TierGold] = 1.5 }, "between 0 and 1"},
		{"negative threshold", func(c *types.PolicyConfig) { c.BonusThreshold = -1 }, "bonus threshold"},
		{"negative bonus", func(c *types.PolicyConfig) { c.BonusRate = -0.01 }, "bonus rate"},
		{"cap above one", func(c *types.PolicyConfig) { c.RateCap = 1.01 }, "rate cap"},
		{"NaN cap", func(c *types.PolicyConfig) { c.RateCap = math.NaN() }, "rate cap"},
		{"unknown rounding", func(c *types.PolicyConfig) { c.Rounding = "stochastic" }, "rounding mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := types.DefaultPolicyConfig()
			tt.mutate(&cfg)
			_, err := NewPolicy(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrInvalidArgument)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewPolicyMatchesDefault(t *testing.T) {
	p, err := NewPolicy(types.DefaultPolicyConfig())
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy().Config(), p.Config())
	assert.Equal(t, types.DefaultPolicyConfig(), DefaultPolicy().Config())

	for _, tier := range types.Tiers() {
		for _, total := range []float64{0, 99.99, 500, 650, 12345.67} {
			want, err := DefaultPolicy().Evaluate(total, tier)
			require.NoError(t, err)
			got, err := p.Evaluate(total, tier)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	}
}

func TestNewPolicyDefaultsRounding(t *testing.T) {
	cfg := types.DefaultPolicyConfig()
	cfg.Rounding = ""
	p, err := NewPolicy(cfg)
	require.NoError(t, err)
	assert.Equal(t, types.RoundHalfEven, p.Config().Rounding)
}

func TestZeroPolicyRejectsTiers(t *testing.T) {
	_, err := Policy{}.Evaluate(10, types.TierGold)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}
