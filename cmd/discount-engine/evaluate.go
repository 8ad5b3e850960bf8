// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/discount-engine/internal/discount"
	"github.com/pdiddy/discount-engine/internal/ledger"
	"github.com/pdiddy/discount-engine/pkg/types"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <amount>",
	Short: "Evaluate the discount for one order",
	Long: `Evaluate computes the discount, total, and reason for an order total at
a customer tier under the configured policy. Negative totals and unknown
tiers are rejected.

Use --record to store the result in the evaluation journal.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().String("tier", string(types.TierStandard), "customer tier: standard, gold, or platinum")
	evaluateCmd.Flags().String("order", "", "order ID to store with --record")
	evaluateCmd.Flags().Bool("json", false, "output the result as JSON")
	evaluateCmd.Flags().Bool("record", false, "record the result in the evaluation journal")
	addLedgerFlags(evaluateCmd)

	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("%w: amount %q is not a number", types.ErrInvalidArgument, args[0])
	}
	tierFlag, _ := cmd.Flags().GetString("tier")
	tier, err := types.ParseCustomerTier(tierFlag)
	if err != nil {
		return err
	}

	policy, err := loadPolicy()
	if err != nil {
		return err
	}

	outcome, err := policy.Assess(amount, tier)
	if err != nil {
		return err
	}

	record, _ := cmd.Flags().GetBool("record")
	if record {
		orderID, _ := cmd.Flags().GetString("order")
		if err := recordOutcomes(cmd, ledger.NewEntry(orderID, outcome)); err != nil {
			return err
		}
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatEvaluateOutput(cmd.OutOrStdout(), outcome, jsonOutput)
}

func formatEvaluateOutput(w io.Writer, o discount.Outcome, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(o.DiscountResult)
	}

	fmt.Fprintf(w, "tier=%s subtotal=%.2f discount=%.2f total=%.2f reason=%s\n",
		o.Tier, o.Subtotal, o.Discount, o.Total, o.Reason)
	return nil
}
