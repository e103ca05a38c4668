package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pses/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent predictions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		userID, _ := cmd.Flags().GetString("user")

		repo := st.PredictionRepo()
		ctx := cmd.Context()

		total, err := repo.Count(ctx)
		if err != nil {
			return fmt.Errorf("count predictions: %w", err)
		}
		events, err := repo.Recent(ctx, store.QueryOpts{Limit: limit, UserID: userID})
		if err != nil {
			return fmt.Errorf("query predictions: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No predictions recorded.")
			return nil
		}

		fmt.Printf("Predictions: %d shown, %d total\n\n", len(events), total)
		fmt.Printf("%-6s %-19s  %-16s %-12s %6s  %6s %7s %7s %3s %3s\n",
			"Seq", "Time", "User", "Level", "Conf", "Score", "Avg", "Std", "Rp", "Df")
		fmt.Println(strings.Repeat("─", 100))

		for _, e := range events {
			user := e.UserID
			if user == "" {
				user = "-"
			}
			if len(user) > 16 {
				user = user[:15] + "…"
			}
			f := e.Features
			fmt.Printf("%-6d %-19s  %-16s %-12s %6.3f  %6.3f %7.2f %7.2f %3.0f %3.0f\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				user,
				e.Level,
				e.Confidence,
				f.Score, f.AvgTime, f.TimeStd, f.Replays, f.Difficulty,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().String("user", "", "Only show predictions for this learner")
	historyCmd.Flags().Int("limit", 20, "Maximum number of predictions to show (0 = all)")
}
