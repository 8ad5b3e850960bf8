// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/discount-engine/internal/discount"
	"github.com/pdiddy/discount-engine/pkg/types"
)

const demoAmount = 650

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Show the discount for one amount at every tier",
	Long: `Demo evaluates the same order total (650 unless --amount is given) for
the standard, gold, and platinum tiers and prints one line per tier.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, _ := cmd.Flags().GetFloat64("amount")
		policy, err := loadPolicy()
		if err != nil {
			return err
		}
		return writeDemo(cmd.OutOrStdout(), policy, amount)
	},
}

func init() {
	demoCmd.Flags().Float64("amount", demoAmount, "order total to evaluate at each tier")

	rootCmd.AddCommand(demoCmd)
}

func writeDemo(w io.Writer, p discount.Policy, amount float64) error {
	for _, tier := range types.Tiers() {
		res, err := p.Evaluate(amount, tier)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Tier=%-9s subtotal=%.2f discount=%.2f total=%.2f reason=%s\n",
			tier, res.Subtotal, res.Discount, res.Total, res.Reason)
	}
	return nil
}
