package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/autopo-reorder/internal/api/handlers"
	"github.com/andresuchdata/autopo-reorder/internal/api/middleware"
	"github.com/andresuchdata/autopo-reorder/pkg/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	ReorderService handlers.ReorderService
}

// RouterOptions configures the router. RateLimit applies to /api/v1 in limiter notation
// ("60-M"); empty disables it.
type RouterOptions struct {
	AllowedOrigins []string
	RateLimit      string
	ServerMetrics  *metrics.ServerMetrics
	MetricsHandler http.Handler
}

func NewRouter(services *Services, opts RouterOptions) (*gin.Engine, error) {
	router := gin.New()

	router.Use(middleware.Logger(opts.ServerMetrics))
	router.Use(middleware.Recovery())
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}

	apiGroup := router.Group("/api/v1")
	if opts.RateLimit != "" {
		limit, err := middleware.RateLimit(opts.RateLimit)
		if err != nil {
			return nil, err
		}
		apiGroup.Use(limit)
	}

	if services != nil && services.ReorderService != nil {
		reorderHandler := handlers.NewReorderHandler(services.ReorderService)
		reorderGroup := apiGroup.Group("/reorder")
		{
			reorderGroup.POST("/runs", reorderHandler.CreateRun)
			reorderGroup.GET("/runs", reorderHandler.ListRuns)
			reorderGroup.GET("/runs/:id", reorderHandler.GetRun)
			reorderGroup.GET("/exports", reorderHandler.ListExports)
		}
	}

	return router, nil
}

func corsConfig(allowedOrigins []string) cors.Config {
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	cfg := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			cfg.AllowOrigins = nil
			cfg.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			cfg.AllowOrigins = normalizedOrigins
		}
	}
	return cfg
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
