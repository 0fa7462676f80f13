package main

import (
	"github.com/spf13/cobra"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/estimator"
)

func newModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Train and verify estimator artifacts",
	}
	cmd.AddCommand(newModelTrainCmd(), newModelSealCmd(), newModelVerifyCmd())
	return cmd
}

func newModelTrainCmd() *cobra.Command {
	var file, out string

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fit a bootstrap ridge ensemble on a dataset",
		Long: `Fit the estimator ensemble on an NDJSON dataset and write the artifact with its checksum.

Examples:
  clmm model train --file history.ndjson --out models/clmm.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, root, err := setup()
			if err != nil {
				return err
			}
			if out == "" {
				out = cfg.Model.Path
			}

			pairs, err := loadPairs(file, cfg.Engine, root)
			if err != nil {
				return err
			}

			model, err := estimator.NewRidgeFitter(cfg.Engine.MinTrainingSamples, root).Fit(cmd.Context(), pairs)
			if err != nil {
				return err
			}
			sum, err := estimator.SaveModel(out, model)
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"path":     out,
				"sha256":   sum,
				"members":  len(model.Members),
				"samples":  model.Samples,
				"features": len(model.FeatureNames),
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "NDJSON dataset path")
	cmd.Flags().StringVar(&out, "out", "", "Artifact path (defaults to model.path)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newModelSealCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "seal",
		Short: "Write the checksum file for an existing artifact",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, root, err := setup()
			if err != nil {
				return err
			}
			if path == "" {
				path = cfg.Model.Path
			}

			sum, err := estimator.Seal(path)
			if err != nil {
				return err
			}
			root.Info().Str("path", path).Str("sha256", sum).Msg("Artifact sealed")
			return writeJSON(cmd.OutOrStdout(), map[string]string{"path": path, "sha256": sum})
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "Artifact path (defaults to model.path)")
	return cmd
}

func newModelVerifyCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify an artifact against its checksum and decode it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, root, err := setup()
			if err != nil {
				return err
			}
			if path == "" {
				path = cfg.Model.Path
			}

			model, err := estimator.LoadModel(path, false, root)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"path":       path,
				"verified":   true,
				"version":    model.Version,
				"members":    len(model.Members),
				"samples":    model.Samples,
				"trained_at": model.TrainedAt,
			})
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "Artifact path (defaults to model.path)")
	return cmd
}
