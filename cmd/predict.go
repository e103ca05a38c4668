package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pses/internal/level"
	"github.com/abhisek/pses/internal/scoring"
	"github.com/abhisek/pses/internal/ui/components"
	"github.com/abhisek/pses/internal/ui/theme"
)

const barWidth = 48

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score a single quiz session",
	Example: "  pses predict --score 0.9 --times 10,12 --replays 0 --difficulty 2\n" +
		"  pses predict --score 0.3 --json",
	RunE: func(cmd *cobra.Command, args []string) error {
		score, _ := cmd.Flags().GetFloat64("score")
		times, _ := cmd.Flags().GetFloat64Slice("times")
		replays, _ := cmd.Flags().GetInt("replays")
		difficulty, _ := cmd.Flags().GetInt("difficulty")
		userID, _ := cmd.Flags().GetString("user")
		asJSON, _ := cmd.Flags().GetBool("json")
		record, _ := cmd.Flags().GetBool("record")

		req := scoring.Request{
			UserID:              userID,
			QuizScore:           score,
			TimePerQuestionSec:  times,
			VideoReplays:        replays,
			PerceivedDifficulty: difficulty,
		}
		if req.TimePerQuestionSec == nil {
			req.TimePerQuestionSec = []float64{}
		}
		if err := req.Validate(); err != nil {
			return fmt.Errorf("invalid input: %w", err)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		clf, _, err := initClassifier(cmd.Context(), cfg, logger, nil)
		if err != nil {
			return err
		}

		svcOpts := []scoring.Option{scoring.WithLogger(logger)}
		if record {
			st, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer st.Close()
			svcOpts = append(svcOpts, scoring.WithRecorder(st.PredictionRepo()))
		}

		resp, err := scoring.NewService(clf, svcOpts...).Score(cmd.Context(), req)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}

		fmt.Println(renderPrediction(resp))
		return nil
	},
}

func renderPrediction(resp *scoring.Response) string {
	lvl, _ := level.Parse(resp.Level)

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", theme.Title.Render("Level"), theme.LevelBadge(lvl))
	fmt.Fprintf(&b, "%s\n\n", theme.Hint.Render(fmt.Sprintf("confidence %.3f", resp.Confidence)))

	for _, l := range level.All() {
		if int(l) >= len(resp.Probabilities) {
			break
		}
		bar := components.NewProbabilityBar(l.String(), resp.Probabilities[l], barWidth)
		bar.LabelWidth = len("Intermediate")
		bar.Fill = theme.LevelColor(l)
		b.WriteString(bar.View())
		b.WriteByte('\n')
	}

	f := resp.Features
	b.WriteByte('\n')
	fmt.Fprintf(&b, "%s %.3f   %s %.2fs   %s %.2fs   %s %.0f   %s %.0f",
		theme.Label.Render("score"), f.QuizScore,
		theme.Label.Render("avg"), f.AvgTimeSec,
		theme.Label.Render("std"), f.TimeStdSec,
		theme.Label.Render("replays"), f.VideoReplays,
		theme.Label.Render("difficulty"), f.PerceivedDifficulty,
	)
	return theme.Card.Render(b.String())
}

func init() {
	predictCmd.Flags().Float64("score", 0, "Fraction of questions answered correctly, 0..1")
	predictCmd.Flags().Float64Slice("times", nil, "Seconds spent per question, comma separated")
	predictCmd.Flags().Int("replays", 0, "Number of video replays")
	predictCmd.Flags().Int("difficulty", 3, "Perceived difficulty, 1..5")
	predictCmd.Flags().String("user", "", "Learner ID recorded with the prediction")
	predictCmd.Flags().Bool("json", false, "Print the response as JSON")
	predictCmd.Flags().Bool("record", false, "Append the prediction to the history store")
	_ = predictCmd.MarkFlagRequired("score")
}
