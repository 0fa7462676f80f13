package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/config"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/logger"
)

const (
	version = "1.0.0"

	DEFAULT_PARAMETERS_CONFIG_NAME = "default_clmm_strategy"
)

var (
	configPath string
	logLevel   string
)

// main is the entry point for the decision engine CLI.
func main() {
	rootCmd := &cobra.Command{
		Use:           "clmm",
		Short:         "Concentrated liquidity position decision engine",
		Long:          "Decides whether to rebalance, reduce, close or hold a concentrated liquidity position, and manages its training data and model artifacts.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level (debug|info|warn|error)")

	rootCmd.AddCommand(
		newServeCmd(),
		newDecideCmd(),
		newDatasetCmd(),
		newModelCmd(),
		newParamsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// setup loads .env, the configuration and builds the root logger. Logs go to stderr so
// command output on stdout stays machine readable.
func setup() (*config.Config, zerolog.Logger, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	root := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})
	log.Logger = root
	if envErr != nil {
		root.Debug().Msg(".env file not found. Relying on OS environment variables.")
	}
	return cfg, root, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
