package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/pses/internal/scoring"
	"github.com/abhisek/pses/internal/store"
)

const (
	defaultPerceivedDifficulty = 3
	defaultListLimit           = 50
	maxListLimit               = 500

	maxPredictBodyBytes = 1 << 20
)

// predictRequest is the wire form of a scoring request. Pointers
// distinguish absent fields so that defaults can be applied.
type predictRequest struct {
	UserID              string    `json:"userId"`
	QuizScore           *float64  `json:"quizScore"`
	TimePerQuestionSec  []float64 `json:"timePerQuestionSec"`
	VideoReplays        *int      `json:"videoReplays"`
	PerceivedDifficulty *int      `json:"perceivedDifficulty"`
}

func (r predictRequest) toScoring() scoring.Request {
	req := scoring.Request{
		UserID:              r.UserID,
		TimePerQuestionSec:  r.TimePerQuestionSec,
		PerceivedDifficulty: defaultPerceivedDifficulty,
	}
	if r.QuizScore != nil {
		req.QuizScore = *r.QuizScore
	}
	if r.VideoReplays != nil {
		req.VideoReplays = *r.VideoReplays
	}
	if r.PerceivedDifficulty != nil {
		req.PerceivedDifficulty = *r.PerceivedDifficulty
	}
	if req.TimePerQuestionSec == nil {
		req.TimePerQuestionSec = []float64{}
	}
	return req
}

// predictionView is the wire form of a recorded prediction.
type predictionView struct {
	ID         string              `json:"id"`
	Sequence   int64               `json:"sequence"`
	Timestamp  time.Time           `json:"timestamp"`
	UserID     string              `json:"userId,omitempty"`
	Level      string              `json:"level"`
	Confidence float64             `json:"confidence"`
	Features   scoring.FeatureView `json:"features"`
}

func viewOfEvent(ev store.PredictionEvent) predictionView {
	return predictionView{
		ID:         ev.ID,
		Sequence:   ev.Sequence,
		Timestamp:  ev.Timestamp,
		UserID:     ev.UserID,
		Level:      ev.Level.String(),
		Confidence: ev.Confidence,
		Features:   scoring.FeatureViewOf(ev.Features),
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "service": serviceName})
}

func (s *Server) predict(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPredictBodyBytes)
	raw, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			badRequest(c, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		badRequest(c, err)
		return
	}

	if err := validatePredictBody(raw); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			badRequest(c, verr.Err)
			return
		}
		s.internalError(c, err)
		return
	}

	var body predictRequest
	if err := json.Unmarshal(raw, &body); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := s.opts.Scorer.Score(c.Request.Context(), body.toScoring())
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) listPredictions(c *gin.Context) {
	if s.opts.History == nil {
		historyDisabled(c)
		return
	}

	limit := defaultListLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			badRequest(c, errors.New("limit must be a positive integer"))
			return
		}
		limit = min(n, maxListLimit)
	}

	events, err := s.opts.History.Recent(c.Request.Context(), store.QueryOpts{
		Limit:  limit,
		UserID: c.Query("userId"),
	})
	if err != nil {
		s.internalError(c, err)
		return
	}

	views := make([]predictionView, 0, len(events))
	for _, ev := range events {
		views = append(views, viewOfEvent(ev))
	}
	c.JSON(http.StatusOK, gin.H{"predictions": views})
}

func (s *Server) userLevel(c *gin.Context) {
	if s.opts.History == nil {
		historyDisabled(c)
		return
	}

	ev, err := s.opts.History.LatestForUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.internalError(c, err)
		return
	}
	if ev == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no predictions for user"})
		return
	}
	c.JSON(http.StatusOK, viewOfEvent(*ev))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "invalid request",
		"details": err.Error(),
	})
}

func historyDisabled(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": "prediction history is disabled"})
}

func (s *Server) internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	s.opts.Logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
