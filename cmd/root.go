package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/pses/internal/config"
	"github.com/abhisek/pses/internal/logging"
	"github.com/abhisek/pses/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "pses",
	Short: "Learner proficiency scoring service",
	Long: "pses predicts a learner's proficiency level (Beginner, Intermediate, Advanced)\n" +
		"from quiz-session signals using a multinomial logistic regression model.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides PSES_CONFIG env var)")
	rootCmd.PersistentFlags().String("model", "", "Path to the model artifact (overrides PSES_MODEL_PATH)")
	rootCmd.PersistentFlags().String("db", "", "Path to the prediction history database (overrides PSES_DB)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves configuration with flags taking the highest priority.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("PSES_CONFIG")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if p, _ := cmd.Flags().GetString("model"); p != "" {
		cfg.Model.Path = p
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Store.Path = p
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the logger for cfg.
func newLogger(cfg config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// resolveDBPath returns the history database path using the configured
// path, then PSES_DB, then the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.Store.Path != "" {
		return cfg.Store.Path, store.EnsureDir(cfg.Store.Path)
	}
	return store.DefaultDBPath()
}

// openHistory opens the prediction history store.
func openHistory(cfg config.Config) (*store.Store, error) {
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}
