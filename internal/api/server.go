package api

import (
	"context"
	"net/http"
	"time"

	"hospitalhub/internal/cache"
	"hospitalhub/internal/metrics"
	"hospitalhub/internal/monitoring"
	"hospitalhub/internal/recommender"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// InventoryStore loads a hospital's stored inventory as loose records
type InventoryStore interface {
	InventoryRecords(ctx context.Context, hospital string) ([]map[string]any, error)
}

// Generator produces recommendations
type Generator interface {
	Generate(ctx context.Context, req recommender.Request) recommender.Response
	ModelEnabled() bool
}

// Config holds the HTTP surface settings
type Config struct {
	AllowedOrigins []string
	JWTSecret      string
}

// Server is the HospitalHub recommendation API
type Server struct {
	Router  *gin.Engine
	engine  Generator
	store   InventoryStore
	cache   cache.RecommendationCache
	metrics *metrics.Collector
	monitor *monitoring.Monitor
	logger  zerolog.Logger
	cfg     Config
}

// NewServer wires the router. store and rc may be nil.
func NewServer(cfg Config, engine Generator, store InventoryStore, rc cache.RecommendationCache, mc *metrics.Collector, logger zerolog.Logger) *Server {
	if rc == nil {
		rc = cache.NoopCache{}
	}

	router := gin.New()
	router.Use(RequestLogger(logger), Recovery(logger))

	corsConfig := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", HospitalHeader},
		ExposeHeaders:    []string{"Content-Length", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	router.Use(cors.New(corsConfig))

	s := &Server{
		Router:  router,
		engine:  engine,
		store:   store,
		cache:   rc,
		metrics: mc,
		monitor: monitoring.NewMonitor(),
		logger:  logger,
		cfg:     cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "HospitalHub API is running"})
	})

	ai := s.Router.Group("/api/ai", Tenant(s.cfg.JWTSecret))
	{
		ai.POST("/recommendations", s.GetRecommendations)
		ai.GET("/status", s.GetStatus)
	}
}
