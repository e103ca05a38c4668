// Package server exposes the scoring service over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/abhisek/pses/internal/config"
	"github.com/abhisek/pses/internal/metrics"
	"github.com/abhisek/pses/internal/scoring"
	"github.com/abhisek/pses/internal/store"
)

const (
	serviceName     = "pses-ml"
	shutdownTimeout = 10 * time.Second
)

// Options holds the collaborators of a Server. Only Scorer is required.
type Options struct {
	Scorer  *scoring.Service
	History store.PredictionRepo // nil disables the history routes
	Metrics *metrics.Metrics     // nil disables /metrics
	Logger  *zap.Logger
}

// Server is the HTTP front of the scoring service.
type Server struct {
	cfg     config.ServerConfig
	opts    Options
	limiter *rate.Limiter
	engine  *gin.Engine
}

// New builds a Server and its routes.
func New(cfg config.ServerConfig, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &Server{cfg: cfg, opts: opts}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	s.engine = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()

	r.Use(s.recovery())
	r.Use(s.accessLog())
	r.Use(cors.New(s.corsConfig()))

	r.GET("/health", s.health)
	if s.opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.opts.Metrics.Handler()))
	}

	scored := r.Group("/")
	scored.Use(s.rateLimit())
	{
		scored.POST("/predict", s.predict)
		scored.GET("/predictions", s.listPredictions)
		scored.GET("/users/:id/level", s.userLevel)
	}

	return r
}

func (s *Server) corsConfig() cors.Config {
	cc := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	origins := s.cfg.AllowOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	return cc
}

// Run serves HTTP on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.opts.Logger.Info("http server listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.opts.Logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
