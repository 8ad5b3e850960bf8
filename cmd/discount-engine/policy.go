// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/discount-engine/internal/discount"
	"github.com/pdiddy/discount-engine/pkg/types"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Print the effective discount policy as YAML",
	Long: `Policy prints the discount policy after merging defaults, the config
file, and DISCOUNT_ENGINE_* environment variables. The output can be saved
under the policy: key of discount-engine.yaml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPolicy()
		if err != nil {
			return err
		}
		return writePolicy(cmd.OutOrStdout(), p.Config())
	},
}

var policyValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the effective policy and report the first problem",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := discount.ValidateConfig(cfg.Policy); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "policy ok")
		return nil
	},
}

func writePolicy(w io.Writer, cfg types.PolicyConfig) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding policy: %w", err)
	}
	return enc.Close()
}

func init() {
	policyCmd.AddCommand(policyValidateCmd)

	rootCmd.AddCommand(policyCmd)
}
