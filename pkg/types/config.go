// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RoundingMode selects how amounts are rounded to two decimal places.
type RoundingMode string

const (
	// RoundHalfEven rounds exact midpoints to the nearest even cent (banker's rounding).
	RoundHalfEven RoundingMode = "half-even"

	// RoundHalfUp rounds exact midpoints away from zero.
	RoundHalfUp RoundingMode = "half-up"
)

// PolicyConfig holds the numbers behind a discount policy. Rates are
// fractions (0.05 is 5%).
type PolicyConfig struct {
	// TierRates maps each tier to its base rate.
	TierRates map[CustomerTier]float64 `json:"tier_rates" yaml:"tier_rates" mapstructure:"tier_rates"`

	// BonusThreshold is the order total at or above which the bonus rate applies (default 500).
	BonusThreshold float64 `json:"bonus_threshold" yaml:"bonus_threshold" mapstructure:"bonus_threshold"`

	// BonusRate is the high-value bonus added to the base rate (default 0.05).
	BonusRate float64 `json:"bonus_rate" yaml:"bonus_rate" mapstructure:"bonus_rate"`

	// RateCap is the maximum combined rate (default 0.25).
	RateCap float64 `json:"rate_cap" yaml:"rate_cap" mapstructure:"rate_cap"`

	// Rounding selects the midpoint rounding mode (default half-even).
	Rounding RoundingMode `json:"rounding" yaml:"rounding" mapstructure:"rounding"`
}

// DefaultPolicyConfig returns the standard pricing policy: 0/5/10% by tier,
// 5% bonus from 500, capped at 25%, banker's rounding.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		TierRates: map[CustomerTier]float64{
			TierStandard: 0.00,
			TierGold:     0.05,
			TierPlatinum: 0.10,
		},
		BonusThreshold: 500,
		BonusRate:      0.05,
		RateCap:        0.25,
		Rounding:       RoundHalfEven,
	}
}

// LedgerConfig holds settings for the evaluation journal.
type LedgerConfig struct {
	// Dir is the directory holding ledger.db and export files.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// MaxResults is the default number of entries returned by a listing (default 50).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// BatchConfig holds settings for order-file evaluation.
type BatchConfig struct {
	// Workers bounds the number of concurrent evaluations (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	// Level is a zerolog level name: debug, info, warn, error (default warn).
	Level string `json:"level" yaml:"level" mapstructure:"level"`
}

// Config groups all settings read from the config file and environment.
type Config struct {
	Policy PolicyConfig `json:"policy" yaml:"policy" mapstructure:"policy"`
	Ledger LedgerConfig `json:"ledger" yaml:"ledger" mapstructure:"ledger"`
	Batch  BatchConfig  `json:"batch" yaml:"batch" mapstructure:"batch"`
	Log    LogConfig    `json:"log" yaml:"log" mapstructure:"log"`
}
