package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/engine"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

func newDecideCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Decide for one or more market snapshots",
		Long: `Read a market snapshot (or a JSON array of snapshots) and print the decisions.

Reads stdin when --file is "-" or omitted. A configured model is used when its artifact exists.

Examples:
  clmm decide --file snapshot.json
  cat snapshots.json | clmm decide`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, root, err := setup()
			if err != nil {
				return err
			}

			states, single, err := readStates(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			est, err := loadEstimator(cfg, root)
			if err != nil {
				return err
			}
			eng, err := engine.NewEngine(engine.Config{Params: cfg.Engine, Logger: root, Estimator: est})
			if err != nil {
				return err
			}

			decisions := eng.DecideBatch(cmd.Context(), states, 0)
			if single {
				return writeJSON(cmd.OutOrStdout(), decisions[0])
			}
			return writeJSON(cmd.OutOrStdout(), decisions)
		},
	}
	cmd.Flags().StringVar(&file, "file", "-", "Snapshot JSON file, or - for stdin")
	return cmd
}

// readStates decodes either a single snapshot object or an array of them. single reports
// which form was read.
func readStates(path string, stdin io.Reader) (states []*types.MarketState, single bool, err error) {
	var raw []byte
	if path == "" || path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read snapshots: %w", err)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, false, fmt.Errorf("no snapshot provided")
	}

	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &states); err != nil {
			return nil, false, fmt.Errorf("failed to decode snapshots: %w", err)
		}
		if len(states) == 0 {
			return nil, false, fmt.Errorf("snapshot array is empty")
		}
		return states, false, nil
	}

	var s types.MarketState
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return []*types.MarketState{&s}, true, nil
}
