package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/hanjob/resume-api/config"
	"github.com/hanjob/resume-api/internal/handlers"
	"github.com/hanjob/resume-api/internal/middleware"
	"github.com/hanjob/resume-api/pkg/jwt"
	"github.com/hanjob/resume-api/pkg/metrics"
)

const (
	defaultBodyLimit = 64 * 1024
	uploadRoute      = "/api/v1/resume/attachments"
)

type routerDeps struct {
	cfg               *config.Config
	tokens            *jwt.TokenManager
	cookie            middleware.CookieConfig
	generalLimiter    *middleware.RateLimiter
	uploadLimiter     *middleware.RateLimiter
	healthHandler     *handlers.HealthHandler
	resumeHandler     *handlers.ResumeHandler
	attachmentHandler *handlers.AttachmentHandler
}

func newRouter(d routerDeps) *gin.Engine {
	cfg := d.cfg

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))

	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.InternalTokenHeader, "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true, // draft session cookie
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	api.GET("/healthcheck", d.generalLimiter.Middleware(), d.healthHandler.Healthcheck)
	api.GET("/metrics",
		middleware.InternalTokenMiddleware(cfg.Auth.InternalAPIToken),
		gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	resume := router.Group("/api/v1/resume")
	resume.Use(d.generalLimiter.Middleware())
	resume.Use(middleware.BodySizeLimitMiddleware(defaultBodyLimit, map[string]int64{
		uploadRoute: handlers.MaxUploadRequestSize,
	}))

	resume.GET("/options", d.resumeHandler.GetOptions)
	resume.POST("/sessions", d.resumeHandler.StartSession)

	session := resume.Group("")
	session.Use(middleware.DraftSessionMiddleware(d.tokens, d.cookie))
	session.GET("/session", d.resumeHandler.GetSession)
	session.DELETE("/session", d.resumeHandler.EndSession)
	session.PUT("/fields/:field", d.resumeHandler.UpdateField)
	session.POST("/save", d.resumeHandler.Save)
	session.POST("/submit", d.resumeHandler.Submit)
	session.POST("/attachments", d.uploadLimiter.Middleware(), d.attachmentHandler.Upload)
	session.DELETE("/attachments/:id", d.attachmentHandler.Delete)
	session.POST("/preview/open", d.resumeHandler.OpenPreview)
	session.POST("/preview/close", d.resumeHandler.ClosePreview)
	session.GET("/preview", d.resumeHandler.GetPreview)

	return router
}
