// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the discount-engine CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/discount-engine/internal/discount"
	"github.com/pdiddy/discount-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is configured in PersistentPreRunE from --log-level / log.level.
var logger = zerolog.Nop()

// rootCmd is the base command for the discount-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "discount-engine",
	Short: "Evaluate order discounts by customer tier",
	Long: `discount-engine evaluates the order discount policy: a base rate by
customer tier (standard, gold, platinum), a high-value bonus for large
orders, and a cap on the combined rate.

Evaluate single orders, run a file of orders in batch, inspect the active
policy, and review the evaluation journal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := zerolog.ParseLevel(viper.GetString("log.level"))
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", viper.GetString("log.level"), err)
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()

		if f := viper.ConfigFileUsed(); f != "" {
			logger.Info().Str("file", f).Msg("using config file")
		}
		cmd.SetContext(logger.WithContext(cmd.Context()))
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./discount-engine.yaml or ~/.config/discount-engine/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "diagnostic log level: debug, info, warn, error")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	setDefaults()
}

// setDefaults registers every config key so that environment variables
// override them during Unmarshal.
func setDefaults() {
	def := types.DefaultPolicyConfig()
	for tier, rate := range def.TierRates {
		viper.SetDefault("policy.tier_rates."+string(tier), rate)
	}
	viper.SetDefault("policy.bonus_threshold", def.BonusThreshold)
	viper.SetDefault("policy.bonus_rate", def.BonusRate)
	viper.SetDefault("policy.rate_cap", def.RateCap)
	viper.SetDefault("policy.rounding", string(def.Rounding))

	viper.SetDefault("ledger.dir", "ledger")
	viper.SetDefault("ledger.max_results", 50)
	viper.SetDefault("batch.workers", 4)
	viper.SetDefault("log.level", "warn")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("discount-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "discount-engine"))
		}
	}

	viper.SetEnvPrefix("DISCOUNT_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "warning: reading config %s: %v\n", cfgFile, err)
		}
	}
}

// loadConfig decodes the merged config file, environment, and flags.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// loadPolicy builds the discount policy from configuration.
func loadPolicy() (discount.Policy, error) {
	cfg, err := loadConfig()
	if err != nil {
		return discount.Policy{}, err
	}
	p, err := discount.NewPolicy(cfg.Policy)
	if err != nil {
		return discount.Policy{}, fmt.Errorf("policy: %w", err)
	}
	logger.Debug().
		Float64("bonus_threshold", cfg.Policy.BonusThreshold).
		Float64("rate_cap", cfg.Policy.RateCap).
		Str("rounding", string(cfg.Policy.Rounding)).
		Msg("policy loaded")
	return p, nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
