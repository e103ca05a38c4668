package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/pses/internal/model"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the model artifact and/or the prediction history",
	Long: "Delete the persisted model artifact (--artifact) so the next start retrains it,\n" +
		"and/or clear all recorded predictions (--history).",
	RunE: func(cmd *cobra.Command, args []string) error {
		resetModel, _ := cmd.Flags().GetBool("artifact")
		resetHistory, _ := cmd.Flags().GetBool("history")
		if !resetModel && !resetHistory {
			return errors.New("nothing to reset: pass --artifact and/or --history")
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		if resetModel {
			if err := removeArtifact(cfg.Model.Path); err != nil {
				return err
			}
		}

		if resetHistory {
			st, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			repo := st.PredictionRepo()
			n, err := repo.Count(cmd.Context())
			if err != nil {
				return fmt.Errorf("count predictions: %w", err)
			}
			if err := repo.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear predictions: %w", err)
			}
			fmt.Printf("Cleared %d predictions.\n", n)
		}
		return nil
	},
}

// removeArtifact deletes the artifact at path after checking that it is a
// regular file.
func removeArtifact(path string) error {
	ok, err := model.Exists(path)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Printf("No model artifact at %s.\n", path)
		return nil
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove model artifact: %w", err)
	}
	fmt.Printf("Removed model artifact %s.\n", path)
	return nil
}

func init() {
	resetCmd.Flags().Bool("artifact", false, "Delete the persisted model artifact")
	resetCmd.Flags().Bool("history", false, "Delete all recorded predictions")
}
