package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/pses/internal/metrics"
	"github.com/abhisek/pses/internal/scoring"
	"github.com/abhisek/pses/internal/server"
	"github.com/abhisek/pses/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Initialize the model and serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		m := metrics.New()
		clf, out, err := initClassifier(ctx, cfg, logger, m)
		if err != nil {
			return err
		}
		logger.Info("classifier ready",
			zap.String("source", string(out.Source)),
			zap.String("path", out.Path),
			zap.Duration("took", out.Duration),
		)

		svcOpts := []scoring.Option{
			scoring.WithMetrics(m),
			scoring.WithLogger(logger),
		}

		var history store.PredictionRepo
		if cfg.Store.Enabled {
			st, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer st.Close()
			history = st.PredictionRepo()
			svcOpts = append(svcOpts, scoring.WithRecorder(history))
		}

		gin.SetMode(gin.ReleaseMode)
		srv := server.New(cfg.Server, server.Options{
			Scorer:  scoring.NewService(clf, svcOpts...),
			History: history,
			Metrics: m,
			Logger:  logger,
		})
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides PSES_ADDR)")
}
