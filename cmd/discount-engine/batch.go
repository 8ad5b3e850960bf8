// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/discount-engine/internal/ledger"
	"github.com/pdiddy/discount-engine/internal/orderfile"
)

var batchCmd = &cobra.Command{
	Use:   "batch <order-file>",
	Short: "Evaluate every order in a YAML or JSON file",
	Long: `Batch reads an order file (orders: [{id, subtotal, tier}]), evaluates
all orders concurrently under the configured policy, and prints one line
per order plus a summary. Orders that fail evaluation are reported and do
not stop the run, but the command exits non-zero.

Use --out to save results (.json for JSON, anything else for YAML) and
--record to store successful evaluations in the journal.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().Int("workers", 0, "concurrent evaluations (default from batch.workers)")
	batchCmd.Flags().String("out", "", "write results to this file")
	batchCmd.Flags().Bool("record", false, "record successful evaluations in the evaluation journal")
	addLedgerFlags(batchCmd)

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	of, err := orderfile.ReadOrderFile(args[0])
	if err != nil {
		return err
	}

	policy, err := loadPolicy()
	if err != nil {
		return err
	}

	workers, _ := cmd.Flags().GetInt("workers")
	if workers <= 0 {
		workers = viper.GetInt("batch.workers")
	}

	ctx := cmd.Context()
	assessments, err := orderfile.AssessAll(ctx, policy, of.Orders, workers)
	if err != nil {
		return err
	}

	lines, result := orderfile.Report(ctx, assessments, cmd.OutOrStdout())

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := orderfile.WriteResultFile(out, lines, result); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s\n", out)
	}

	if record, _ := cmd.Flags().GetBool("record"); record {
		var entries []ledger.Entry
		for _, a := range assessments {
			if a.Err == nil {
				entries = append(entries, ledger.NewEntry(a.Order.ID, a.Outcome))
			}
		}
		if err := recordOutcomes(cmd, entries...); err != nil {
			return err
		}
	}

	if result.HasFailures() {
		return fmt.Errorf("%d order(s) failed evaluation", result.Failed)
	}
	return nil
}
