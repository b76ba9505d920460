package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agenthands/forcematch/internal/gifts"
	"github.com/agenthands/forcematch/internal/service"
)

const Version = "0.1.0"

type Server struct {
	Matcher     *service.Matcher
	Recommender *gifts.Recommender
	// LLMHealth backs /health/llm; nil reports the model as unavailable.
	LLMHealth   func(ctx context.Context) error
	CORSOrigins []string
	Logger      *log.Logger
}

func NewServer(m *service.Matcher, r *gifts.Recommender, llmHealth func(context.Context) error, corsOrigins []string, logger *log.Logger) *Server {
	return &Server{
		Matcher:     m,
		Recommender: r,
		LLMHealth:   llmHealth,
		CORSOrigins: corsOrigins,
		Logger:      logger,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.Logger), cors(s.CORSOrigins))

	r.GET("/health", s.Health)
	r.GET("/health/llm", s.HealthLLM)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/match", s.Match)
	api.POST("/recommend", s.Recommend)
	api.GET("/constraints", s.Constraints)

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version})
}

func (s *Server) HealthLLM(c *gin.Context) {
	if s.LLMHealth == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "LLM is not configured"})
		return
	}
	if err := s.LLMHealth(c.Request.Context()); err != nil {
		s.Logger.Warn("llm health check failed", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "LLM is unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "llm"})
}

type MatchRequest struct {
	Constraints []string `json:"constraints"`
	Iterations  int      `json:"iterations"`
	Seed        *uint64  `json:"seed"`
	Gifts       bool     `json:"gifts"`
}

func (s *Server) Match(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.Iterations < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "iterations must not be negative"})
		return
	}

	metrics, err := s.Matcher.Run(c.Request.Context(), service.Request{
		Constraints: req.Constraints,
		Iterations:  req.Iterations,
		Seed:        req.Seed,
		Gifts:       req.Gifts,
	})
	if err != nil {
		status := matchErrorStatus(err)
		s.Logger.Error("match failed", "err", err, "status", status)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, metrics)
}

func matchErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrNoData):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrNoParticipants):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type RecommendRequest struct {
	GiverURI    string `json:"giver_uri" binding:"required"`
	ReceiverURI string `json:"receiver_uri" binding:"required"`
}

func (s *Server) Recommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ideas := s.Recommender.Recommend(c.Request.Context(), req.GiverURI, req.ReceiverURI)
	c.JSON(http.StatusOK, gin.H{"recommendations": ideas})
}

func (s *Server) Constraints(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"constraints": s.Matcher.Registry().Names()})
}
