package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"hospitalhub/internal/metrics"
	"hospitalhub/internal/monitoring"
	"hospitalhub/internal/recommender"

	"github.com/gin-gonic/gin"
)

const generationFailedImpact = "Error occurred. Try again or check logs."

type errorResponse struct {
	Error string `json:"error"`
	recommender.Response
}

func failure(msg, impact string) errorResponse {
	return errorResponse{Error: msg, Response: recommender.EmptyResponse(impact)}
}

// GetRecommendations handles POST /api/ai/recommendations
func (s *Server) GetRecommendations(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()
	hospital := HospitalFrom(c)
	log := s.logger.With().Str("request_id", c.GetString(ctxRequestID)).Str("hospital", hospital).Logger()

	var req recommender.Request
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, failure("invalid request body", "Invalid request body."))
		return
	}

	if len(req.InventoryData) == 0 && s.store != nil {
		records, err := s.store.InventoryRecords(ctx, hospital)
		if err != nil {
			log.Error().Err(err).Msg("failed to load inventory")
			c.JSON(http.StatusInternalServerError, failure("Failed to generate recommendations", generationFailedImpact))
			return
		}
		req.InventoryData = records
	}

	if err := recommender.ValidateInventoryData(req.InventoryData); err != nil {
		c.JSON(http.StatusBadRequest, failure(err.Error(), err.Error()))
		return
	}

	// only default-option requests share cache entries; an explicit
	// useAI:true is the default
	cacheable := (req.Options.UseAI == nil || *req.Options.UseAI) && req.Options.Model == ""
	key := recommender.Fingerprint(hospital, req.InventoryData, req.Filters)

	if cacheable {
		cached, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.metrics.RecordCache(metrics.CacheError)
			log.Warn().Err(err).Msg("recommendation cache read failed")
		case ok:
			s.metrics.RecordCache(metrics.CacheHit)
			log.Debug().Str("key", key).Msg("recommendation cache hit")
			s.recordRun(hospital, cached, true, start)
			c.JSON(http.StatusOK, cached)
			return
		default:
			s.metrics.RecordCache(metrics.CacheMiss)
			log.Debug().Str("key", key).Msg("recommendation cache miss")
		}
	}

	resp := s.engine.Generate(ctx, req)

	if cacheable {
		if err := s.cache.Set(ctx, key, resp); err != nil {
			s.metrics.RecordCache(metrics.CacheError)
			log.Warn().Err(err).Msg("recommendation cache write failed")
		}
	}

	s.recordRun(hospital, resp, false, start)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) recordRun(hospital string, resp recommender.Response, cached bool, start time.Time) {
	s.monitor.RecordRun(hospital, monitoring.Run{
		Recommendations: len(resp.Recommendations),
		HighPriority:    resp.Summary.HighPriority,
		Cached:          cached,
		Duration:        time.Since(start),
	})
}

// GetStatus handles GET /api/ai/status
func (s *Server) GetStatus(c *gin.Context) {
	status := s.monitor.Status(HospitalFrom(c))
	status["model_enabled"] = s.engine.ModelEnabled()
	c.JSON(http.StatusOK, status)
}
