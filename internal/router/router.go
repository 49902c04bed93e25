package router

import (
	"net/http"

	"github.com/chequeflow/backend/config"
	"github.com/chequeflow/backend/internal/handler"
	"github.com/chequeflow/backend/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Setup(
	cfg *config.Config,
	registry *prometheus.Registry,
	docHandler *handler.DocumentHandler,
	chequeHandler *handler.ChequeHandler,
	queryHandler *handler.QueryHandler,
	verbalizeHandler *handler.VerbalizeHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))
	// /metrics 由 promhttp 自行协商压缩
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	queryLimiter := middleware.NewRateLimiter("query", cfg.RateLimit.QueryRPS, cfg.RateLimit.QueryBurst)

	api := r.Group("/api")
	{
		docHandler.RegisterRoutes(api)
		chequeHandler.RegisterRoutes(api)
		verbalizeHandler.RegisterRoutes(api)
		queryHandler.RegisterRoutes(api, queryLimiter.Middleware())
	}

	return r
}
