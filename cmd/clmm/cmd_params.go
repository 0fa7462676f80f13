package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/state"
)

func newParamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Manage engine parameter sets stored in PostgreSQL",
	}
	cmd.AddCommand(newParamsPushCmd(), newParamsShowCmd())
	return cmd
}

func newParamsPushCmd() *cobra.Command {
	var (
		name     string
		ver      int
		activate bool
	)

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Store the configured engine parameters as a new version",
		Long: `Store the engine parameters from the configuration under a name and version.

Examples:
  clmm params push --version 3 --activate
  clmm params push --name aggressive --version 1 --config aggressive.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, root, err := setup()
			if err != nil {
				return err
			}
			if !cfg.DB.Enabled {
				return fmt.Errorf("database is not enabled")
			}

			db, err := state.Open(cmd.Context(), cfg.DB)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := state.EnsureSchema(cmd.Context(), db); err != nil {
				return err
			}

			id, err := state.NewParametersStore(db, cfg.DB.QueryTimeout, root).Save(cmd.Context(), cfg.Engine, name, ver, activate)
			if err != nil {
				return err
			}
			root.Info().Int64("id", id).Str("config_name", name).Int("version", ver).Bool("active", activate).Msg("Engine parameters stored")
			return writeJSON(cmd.OutOrStdout(), map[string]any{"id": id, "config_name": name, "version": ver, "active": activate})
		},
	}
	cmd.Flags().StringVar(&name, "name", DEFAULT_PARAMETERS_CONFIG_NAME, "Parameter set name")
	cmd.Flags().IntVar(&ver, "version", 1, "Parameter set version")
	cmd.Flags().BoolVar(&activate, "activate", false, "Make this version the active one")
	return cmd
}

func newParamsShowCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the active engine parameters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, root, err := setup()
			if err != nil {
				return err
			}
			if !cfg.DB.Enabled {
				return fmt.Errorf("database is not enabled")
			}

			db, err := state.Open(cmd.Context(), cfg.DB)
			if err != nil {
				return err
			}
			defer db.Close()

			params, ver, err := state.NewParametersStore(db, cfg.DB.QueryTimeout, root).Active(cmd.Context(), name, cfg.Engine)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{"config_name": name, "version": ver, "parameters": params})
		},
	}
	cmd.Flags().StringVar(&name, "name", DEFAULT_PARAMETERS_CONFIG_NAME, "Parameter set name")
	return cmd
}
