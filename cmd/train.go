package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/pses/internal/model"
	"github.com/abhisek/pses/internal/ui/theme"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Load the model artifact, training and saving one if absent",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		_, out, err := initClassifier(cmd.Context(), cfg, logger, nil)
		if err != nil {
			return err
		}

		switch out.Source {
		case model.SourceLoaded:
			fmt.Printf("%s %s\n", theme.Title.Render("Loaded"), out.Path)
			fmt.Println(theme.Hint.Render("Artifact already present; run `pses reset --artifact` to retrain."))
		case model.SourceTrained:
			fmt.Printf("%s %s\n", theme.Title.Render("Trained"), out.Path)
			if out.Fit != nil {
				fmt.Printf("  %-12s %d\n", "Samples", cfg.Model.Synth.Samples)
				fmt.Printf("  %-12s %d\n", "Iterations", out.Fit.Iterations)
				fmt.Printf("  %-12s %.6f\n", "Loss", out.Fit.Loss)
				fmt.Printf("  %-12s %t\n", "Converged", out.Fit.Converged)
			}
		}
		fmt.Printf("  %-12s %s\n", "Took", out.Duration.Round(time.Millisecond))
		return nil
	},
}
