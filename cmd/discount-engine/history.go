// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/discount-engine/internal/ledger"
	"github.com/pdiddy/discount-engine/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Review the evaluation journal (list, summary, export)",
	Long: `History reads the local SQLite journal of evaluations recorded with
evaluate --record or batch --record. Use subcommands to list entries,
summarize them by tier, or export them.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded evaluations, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	opts, err := queryOptsFromFlags(cmd)
	if err != nil {
		return err
	}

	store, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatHistoryOutput(cmd.OutOrStdout(), entries, jsonOutput)
}

func formatHistoryOutput(w io.Writer, entries []ledger.Entry, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No evaluations recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-20s  %-12s  %-9s  %10s  %9s  %10s  %s\n",
		"When", "Order", "Tier", "Subtotal", "Discount", "Total", "Reason")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, e := range entries {
		order := e.OrderID
		if len(order) > 12 {
			order = order[:9] + "..."
		}
		fmt.Fprintf(w, "%-20s  %-12s  %-9s  %10.2f  %9.2f  %10.2f  %s\n",
			e.CreatedAt.Format(time.DateTime), order, e.Tier, e.Subtotal, e.Discount, e.Total, e.Reason)
	}

	fmt.Fprintf(w, "\n%d entries\n", len(entries))
	return nil
}

// --- summary subcommand ---

var historySummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Count and total recorded evaluations by tier",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLedger(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		rows, err := store.Summary(cmd.Context())
		if err != nil {
			return err
		}
		return formatSummaryOutput(cmd.OutOrStdout(), rows)
	},
}

func formatSummaryOutput(w io.Writer, rows []ledger.TierSummary) error {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No evaluations recorded.")
		return nil
	}
	fmt.Fprintf(w, "%-9s  %6s  %12s  %12s\n", "Tier", "Count", "Subtotal", "Discount")
	fmt.Fprintln(w, strings.Repeat("-", 45))
	for _, r := range rows {
		fmt.Fprintf(w, "%-9s  %6d  %12.2f  %12.2f\n", r.Tier, r.Count, r.Subtotal, r.Discount)
	}
	return nil
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the journal to YAML or JSON",
	Long: `Export writes the journal (or a filtered subset) to export.yaml or
export.json in the ledger directory. Supports the same filter flags as list.`,
	Args: cobra.NoArgs,
	RunE: runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	opts, err := queryOptsFromFlags(cmd)
	if err != nil {
		return err
	}

	store, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(cmd.Context(), opts)
	case "json":
		path, err = store.ExportJSON(cmd.Context(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

// addLedgerFlags adds --ledger-dir to cmd, overriding ledger.dir.
func addLedgerFlags(cmd *cobra.Command) {
	cmd.Flags().String("ledger-dir", "", "directory holding the evaluation journal (default from ledger.dir)")
}

func ledgerConfig(cmd *cobra.Command) (types.LedgerConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return types.LedgerConfig{}, err
	}
	if dir, _ := cmd.Flags().GetString("ledger-dir"); dir != "" {
		cfg.Ledger.Dir = dir
	}
	return cfg.Ledger, nil
}

func openLedger(cmd *cobra.Command) (*ledger.Store, error) {
	cfg, err := ledgerConfig(cmd)
	if err != nil {
		return nil, err
	}
	return ledger.NewStore(cfg)
}

// recordOutcomes stores entries in the journal selected by cmd's flags.
func recordOutcomes(cmd *cobra.Command, entries ...ledger.Entry) error {
	store, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Record(cmd.Context(), entries...); err != nil {
		return err
	}
	logger.Info().Int("entries", len(entries)).Msg("recorded in journal")
	return nil
}

func queryOptsFromFlags(cmd *cobra.Command) (ledger.QueryOptions, error) {
	var opts ledger.QueryOptions

	if tierFlag, _ := cmd.Flags().GetString("tier"); tierFlag != "" {
		tier, err := types.ParseCustomerTier(tierFlag)
		if err != nil {
			return opts, err
		}
		opts.Tier = tier
	}
	opts.OrderID, _ = cmd.Flags().GetString("order")
	if since, _ := cmd.Flags().GetDuration("since"); since > 0 {
		opts.Since = time.Now().Add(-since)
	}
	opts.MaxResults, _ = cmd.Flags().GetInt("limit")
	if opts.MaxResults <= 0 {
		opts.MaxResults = viper.GetInt("ledger.max_results")
	}
	return opts, nil
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	historyCmd.PersistentFlags().String("ledger-dir", "", "directory holding the evaluation journal (default from ledger.dir)")

	for _, c := range []*cobra.Command{historyListCmd, historyExportCmd} {
		c.Flags().String("tier", "", "filter by tier: standard, gold, platinum")
		c.Flags().String("order", "", "filter by order ID")
		c.Flags().Duration("since", 0, "only entries recorded within this duration (e.g. 24h)")
	}

	historyListCmd.Flags().Int("limit", 0, "maximum entries (0 = use ledger.max_results)")
	historyListCmd.Flags().Bool("json", false, "output entries as JSON")

	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	// Wire subcommands.
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historySummaryCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
