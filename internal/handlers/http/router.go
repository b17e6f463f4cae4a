package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"collabcore/internal/core/ports"
	"collabcore/internal/infrastructure/feed"
	"collabcore/internal/infrastructure/middleware"
	"collabcore/internal/infrastructure/monitoring"
	"collabcore/pkg/config"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	Config        *config.Config
	Logger        *zap.SugaredLogger
	Signaling     ports.SignalingRegistry
	ScreenShares  ports.ScreenShareRegistry
	Breakouts     ports.BreakoutOrchestrator
	Whiteboards   ports.WhiteboardLog
	Polling       ports.PollingEngine
	Recordings    ports.RecordingCoordinator
	LiveStreams   ports.LiveStreamCoordinator
	HealthChecker *monitoring.HealthChecker
	Collector     *monitoring.PrometheusCollector
	Feed          *feed.WebSocketFeed
}

// NewRouter builds the gin engine with the full middleware chain and all
// registry routes mounted under /api/v1.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.ErrorHandlerMiddleware(deps.Logger))
	router.Use(middleware.NewHTTPRateLimitMiddleware(deps.Config))
	if deps.Config.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}
	if deps.Collector != nil {
		router.Use(middleware.MetricsMiddleware(deps.Collector))
	}

	router.GET("/health", func(c *gin.Context) {
		status := deps.HealthChecker.CheckAll(c.Request.Context())
		code := http.StatusOK
		if status.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})
	router.GET("/ready", func(c *gin.Context) {
		if deps.HealthChecker.IsReady(c.Request.Context()) {
			c.JSON(http.StatusOK, gin.H{"status": "ready"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
	})

	if deps.Config.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	if deps.Feed != nil {
		router.GET("/ws/feed", deps.Feed.HandleFeed)
	}

	api := router.Group("/api/v1")
	if deps.Config.Auth.Enabled {
		api.Use(middleware.AuthMiddleware(deps.Config.Auth.JWTSecret))
	}

	NewSignalingHandler(deps.Signaling).RegisterRoutes(api)
	NewScreenShareHandler(deps.ScreenShares).RegisterRoutes(api)
	NewBreakoutHandler(deps.Breakouts).RegisterRoutes(api)
	NewWhiteboardHandler(deps.Whiteboards).RegisterRoutes(api)
	NewPollingHandler(deps.Polling).RegisterRoutes(api)
	NewRecordingHandler(deps.Recordings).RegisterRoutes(api)
	NewLiveStreamHandler(deps.LiveStreams).RegisterRoutes(api)

	return router
}
