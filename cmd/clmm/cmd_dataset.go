package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/dataset"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/features"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/utils"
)

func newDatasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Inspect historical decision datasets",
	}
	cmd.AddCommand(newDatasetValidateCmd(), newDatasetBuildCmd())
	return cmd
}

func newDatasetValidateCmd() *cobra.Command {
	var (
		file       string
		minRecords int
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that an NDJSON dataset is usable for training",
		Long: `Read an NDJSON dataset and report how many records resolve into a snapshot and a label.

Exits non-zero when fewer than --min records are usable.

Examples:
  clmm dataset validate --file history.ndjson
  clmm dataset validate --file history.ndjson --min 200`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, root, err := setup()
			if err != nil {
				return err
			}
			if minRecords <= 0 {
				minRecords = cfg.Engine.MinTrainingSamples
			}

			res, err := dataset.NewReader(root).ReadFile(file)
			if err != nil {
				return err
			}
			rep := dataset.Validate(res, minRecords)

			out := struct {
				dataset.Report
				Labels *dataset.LabelSummary `json:"labels,omitempty"`
			}{Report: rep}
			if len(res.Records) > 0 {
				sum, err := dataset.Summarize(res.Records)
				if err != nil {
					root.Warn().Err(err).Msg("Failed to summarize labels")
				} else {
					out.Labels = &sum
				}
			}

			if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if !rep.Valid {
				return fmt.Errorf("dataset invalid: %s", rep.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "NDJSON dataset path")
	cmd.Flags().IntVar(&minRecords, "min", 0, "Minimum usable records (defaults to min_training_samples)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newDatasetBuildCmd() *cobra.Command {
	var file, out string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Extract labelled feature vectors from a dataset",
		Long: `Read an NDJSON dataset and write one {"features": [...], "label": x} line per usable record.

Examples:
  clmm dataset build --file history.ndjson --out pairs.ndjson`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, root, err := setup()
			if err != nil {
				return err
			}

			pairs, err := loadPairs(file, cfg.Engine, root)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			if err := writePairs(w, pairs); err != nil {
				return err
			}
			root.Info().Int("pairs", len(pairs)).Str("out", out).Msg("Training pairs written")
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "NDJSON dataset path")
	cmd.Flags().StringVar(&out, "out", "-", "Output path, or - for stdout")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// loadPairs reads a dataset and turns every usable record into a training pair.
func loadPairs(path string, params types.EngineParameters, root zerolog.Logger) ([]types.TrainingPair, error) {
	res, err := dataset.NewReader(root).ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		root.Warn().Int("skipped", len(res.Errors)).Int("total", res.Total).Msg("Some dataset lines were skipped")
	}

	ex := features.NewExtractor(utils.NewConverter(params, root), params, root)
	return dataset.BuildPairs(res.Records, ex), nil
}

func writePairs(w io.Writer, pairs []types.TrainingPair) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, p := range pairs {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("failed to write training pair: %w", err)
		}
	}
	return bw.Flush()
}
