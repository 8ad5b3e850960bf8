// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

// ErrInvalidArgument is the single error kind of the discount engine. It is
// returned (wrapped) for negative order totals and for tier values that are
// not one of the defined tiers.
var ErrInvalidArgument = errors.New("invalid argument")

// CustomerTier classifies a customer and determines the base discount rate.
type CustomerTier string

const (
	TierStandard CustomerTier = "standard"
	TierGold     CustomerTier = "gold"
	TierPlatinum CustomerTier = "platinum"
)

// Tiers lists every defined tier in ascending order of base rate.
func Tiers() []CustomerTier {
	return []CustomerTier{TierStandard, TierGold, TierPlatinum}
}

// Valid reports whether t is one of the defined tiers.
func (t CustomerTier) Valid() bool {
	switch t {
	case TierStandard, TierGold, TierPlatinum:
		return true
	}
	return false
}

func (t CustomerTier) String() string {
	return string(t)
}

// ParseCustomerTier converts external text into a CustomerTier. Matching is
// case-insensitive and ignores surrounding whitespace; anything else fails
// with ErrInvalidArgument.
func ParseCustomerTier(s string) (CustomerTier, error) {
	t := CustomerTier(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown customer tier %q (want standard, gold, or platinum)", ErrInvalidArgument, s)
	}
	return t, nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so JSON decoding
// rejects unknown tiers.
func (t *CustomerTier) UnmarshalText(text []byte) error {
	parsed, err := ParseCustomerTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler with the same validation as
// UnmarshalText.
func (t *CustomerTier) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: customer tier must be a scalar (line %d)", ErrInvalidArgument, value.Line)
	}
	return t.UnmarshalText([]byte(value.Value))
}

// DiscountResult is the outcome of evaluating one order. Amounts are rounded
// to two decimal places and Total always equals Subtotal - Discount at that
// precision.
type DiscountResult struct {
	// Subtotal is the order total supplied by the caller.
	Subtotal float64 `json:"subtotal" yaml:"subtotal"`

	// Discount is the computed discount amount, between 0 and Subtotal.
	Discount float64 `json:"discount" yaml:"discount"`

	// Total is Subtotal minus Discount.
	Total float64 `json:"total" yaml:"total"`

	// Reason explains the applied rate, e.g. "15% discount for platinum tier + high-value bonus".
	Reason string `json:"reason" yaml:"reason"`
}
