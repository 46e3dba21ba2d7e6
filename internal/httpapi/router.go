package httpapi

import (
	"strings"
	"time"

	"fairness-mcp/internal/analyzer"
	"fairness-mcp/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// maxBodyBytes bounds snapshot uploads.
const maxBodyBytes = 16 << 20

type handler struct {
	cfg      *config.AppConfig
	analyzer *analyzer.Analyzer
	version  string
}

// SetupRouter builds the HTTP API consumed by dashboard front ends.
func SetupRouter(cfg *config.AppConfig, a *analyzer.Analyzer, version string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), cors(cfg.AllowedOrigins))

	h := &handler{cfg: cfg, analyzer: a, version: version}

	api := r.Group("/api/v1")
	{
		api.GET("/health", h.handleHealth)
		api.GET("/fairness/thresholds", h.handleThresholds)
		api.POST("/fairness/report", h.handleReport)
		api.POST("/assignments/:kind", h.handleRecord)
	}

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("HTTP request")
	}
}

// cors allows every origin when allowed is empty or "*", otherwise only the
// comma-separated list.
func cors(allowed string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowed == "" || allowed == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, o := range strings.Split(allowed, ",") {
				if strings.TrimSpace(o) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
