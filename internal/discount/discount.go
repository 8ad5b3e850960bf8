// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discount evaluates the order discount policy: a base rate by
// customer tier, a high-value bonus above a threshold, and a hard cap on the
// combined rate.
//
// Evaluation is a pure function of its inputs. A Policy is immutable once
// built and may be shared across goroutines.
package discount

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/pdiddy/discount-engine/pkg/types"
)

const bonusSuffix = " + high-value bonus"

var hundred = decimal.NewFromInt(100)

// Policy holds the rates used to evaluate orders. The zero value has no
// tier rates and rejects every tier; use DefaultPolicy or NewPolicy.
type Policy struct {
	tierRates      map[types.CustomerTier]decimal.Decimal
	bonusThreshold decimal.Decimal
	bonusRate      decimal.Decimal
	rateCap        decimal.Decimal
	rounding       types.RoundingMode
}

// Outcome is a DiscountResult together with the facts behind it.
type Outcome struct {
	types.DiscountResult

	// Tier is the evaluated tier.
	Tier types.CustomerTier `json:"tier" yaml:"tier"`

	// Rate is the effective rate after capping, as a fraction.
	Rate float64 `json:"rate" yaml:"rate"`

	// Bonus reports whether the order met the bonus threshold.
	Bonus bool `json:"bonus" yaml:"bonus"`

	// Capped reports whether the rate cap lowered the combined rate.
	Capped bool `json:"capped" yaml:"capped"`
}

// DefaultPolicy returns the standard policy: standard 0%, gold 5%,
// platinum 10%, +5% at or above 500, capped at 25%, half-even rounding.
func DefaultPolicy() Policy {
	return Policy{
		tierRates: map[types.CustomerTier]decimal.Decimal{
			types.TierStandard: decimal.Zero,
			types.TierGold:     decimal.RequireFromString("0.05"),
			types.TierPlatinum: decimal.RequireFromString("0.10"),
		},
		bonusThreshold: decimal.NewFromInt(500),
		bonusRate:      decimal.RequireFromString("0.05"),
		rateCap:        decimal.RequireFromString("0.25"),
		rounding:       types.RoundHalfEven,
	}
}

// NewPolicy builds a Policy from cfg after validating it. An empty rounding
// mode defaults to half-even.
func NewPolicy(cfg types.PolicyConfig) (Policy, error) {
	if err := ValidateConfig(cfg); err != nil {
		return Policy{}, err
	}

	p := Policy{
		tierRates:      make(map[types.CustomerTier]decimal.Decimal, len(cfg.TierRates)),
		bonusThreshold: decimal.NewFromFloat(cfg.BonusThreshold),
		bonusRate:      decimal.NewFromFloat(cfg.BonusRate),
		rateCap:        decimal.NewFromFloat(cfg.RateCap),
		rounding:       cfg.Rounding,
	}
	if p.rounding == "" {
		p.rounding = types.RoundHalfEven
	}
	for tier, rate := range cfg.TierRates {
		p.tierRates[tier] = decimal.NewFromFloat(rate)
	}
	return p, nil
}

// ValidateConfig checks that cfg describes a usable policy: every defined
// tier has a rate in [0, 1], no unknown tiers, a non-negative threshold and
// bonus, a cap in [0, 1], and a known rounding mode.
func ValidateConfig(cfg types.PolicyConfig) error {
	for tier, rate := range cfg.TierRates {
		if !tier.Valid() {
			return fmt.Errorf("%w: policy has a rate for unknown tier %q", types.ErrInvalidArgument, tier)
		}
		if !isFraction(rate) {
			return fmt.Errorf("%w: rate for tier %s must be between 0 and 1, got %v", types.ErrInvalidArgument, tier, rate)
		}
	}
	for _, tier := range types.Tiers() {
		if _, ok := cfg.TierRates[tier]; !ok {
			return fmt.Errorf("%w: policy has no rate for tier %s", types.ErrInvalidArgument, tier)
		}
	}
	if math.IsNaN(cfg.BonusThreshold) || cfg.BonusThreshold < 0 || math.IsInf(cfg.BonusThreshold, 0) {
		return fmt.Errorf("%w: bonus threshold must be a non-negative number, got %v", types.ErrInvalidArgument, cfg.BonusThreshold)
	}
	if !isFraction(cfg.BonusRate) {
		return fmt.Errorf("%w: bonus rate must be between 0 and 1, got %v", types.ErrInvalidArgument, cfg.BonusRate)
	}
	if !isFraction(cfg.RateCap) {
		return fmt.Errorf("%w: rate cap must be between 0 and 1, got %v", types.ErrInvalidArgument, cfg.RateCap)
	}
	switch cfg.Rounding {
	case "", types.RoundHalfEven, types.RoundHalfUp:
	default:
		return fmt.Errorf("%w: unknown rounding mode %q (want half-even or half-up)", types.ErrInvalidArgument, cfg.Rounding)
	}
	return nil
}

func isFraction(f float64) bool {
	return f >= 0 && f <= 1
}

// Config reports the policy's numbers in configuration form.
func (p Policy) Config() types.PolicyConfig {
	cfg := types.PolicyConfig{
		TierRates:      make(map[types.CustomerTier]float64, len(p.tierRates)),
		BonusThreshold: p.bonusThreshold.InexactFloat64(),
		BonusRate:      p.bonusRate.InexactFloat64(),
		RateCap:        p.rateCap.InexactFloat64(),
		Rounding:       p.rounding,
	}
	for tier, rate := range p.tierRates {
		cfg.TierRates[tier] = rate.InexactFloat64()
	}
	return cfg
}

// Evaluate computes the discount for orderTotal under the default policy.
func Evaluate(orderTotal float64, tier types.CustomerTier) (types.DiscountResult, error) {
	return DefaultPolicy().Evaluate(orderTotal, tier)
}

// Evaluate computes the discount for orderTotal at the given tier. It fails
// with types.ErrInvalidArgument when orderTotal is negative (or not a finite
// number) and when tier is not one of the policy's tiers.
func (p Policy) Evaluate(orderTotal float64, tier types.CustomerTier) (types.DiscountResult, error) {
	o, err := p.Assess(orderTotal, tier)
	if err != nil {
		return types.DiscountResult{}, err
	}
	return o.DiscountResult, nil
}

// Assess is Evaluate with the rate decision attached.
//
// Arithmetic runs in exact decimal starting from the shortest decimal form
// of orderTotal, so an input of 2.675 is rounded as 2.675 rather than as its
// binary approximation.
func (p Policy) Assess(orderTotal float64, tier types.CustomerTier) (Outcome, error) {
	if math.IsNaN(orderTotal) || math.IsInf(orderTotal, 0) {
		return Outcome{}, fmt.Errorf("%w: order total must be a finite number, got %v", types.ErrInvalidArgument, orderTotal)
	}
	if orderTotal < 0 {
		return Outcome{}, fmt.Errorf("%w: order total must be non-negative, got %v", types.ErrInvalidArgument, orderTotal)
	}
	base, ok := p.tierRates[tier]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: unknown customer tier %q", types.ErrInvalidArgument, tier)
	}

	subtotal := decimal.NewFromFloat(orderTotal)

	bonus := subtotal.GreaterThanOrEqual(p.bonusThreshold)
	combined := base
	if bonus {
		combined = combined.Add(p.bonusRate)
	}
	rate := decimal.Min(combined, p.rateCap)

	// Rounding a sub-cent subtotal up must not grant more than the order is worth.
	discount := decimal.Min(p.round(subtotal.Mul(rate)), subtotal.RoundFloor(2))
	total := p.round(subtotal.Sub(discount))

	return Outcome{
		DiscountResult: types.DiscountResult{
			Subtotal: orderTotal,
			Discount: discount.InexactFloat64(),
			Total:    total.InexactFloat64(),
			Reason:   reason(rate, tier, bonus),
		},
		Tier:   tier,
		Rate:   rate.InexactFloat64(),
		Bonus:  bonus,
		Capped: rate.LessThan(combined),
	}, nil
}

func (p Policy) round(d decimal.Decimal) decimal.Decimal {
	if p.rounding == types.RoundHalfUp {
		return d.Round(2)
	}
	return d.RoundBank(2)
}

// reason formats the explanation. The percentage is truncated to an
// integer, and the bonus suffix follows eligibility, not whether the bonus
// survived the cap.
func reason(rate decimal.Decimal, tier types.CustomerTier, bonus bool) string {
	s := fmt.Sprintf("%d%% discount for %s tier", rate.Mul(hundred).IntPart(), tier)
	if bonus {
		s += bonusSuffix
	}
	return s
}
