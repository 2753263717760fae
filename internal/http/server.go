package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"signage_server/config"
	"signage_server/internal/assets"
	"signage_server/internal/services"
	"signage_server/pkg/colors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps are the services the HTTP layer routes to
type Deps struct {
	Identity     *services.IdentityService
	Catalog      *services.CatalogService
	Schedules    *services.ScheduleService
	CheckIns     *services.CheckInService
	DeviceTokens *services.DeviceTokenService
	Hub          *Hub
	// Files is set when payloads are kept on local disk and served by this process
	Files *assets.LocalStore
}

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	port   string
	logger *zap.Logger
}

// NewServer creates a new HTTP server instance
func NewServer(cfg config.HTTPConfig, deps Deps, logger *zap.Logger) *Server {
	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Only add the access log middleware if LOG_HTTP is set
	if cfg.LogHTTP {
		router.Use(AccessLogMiddleware(logger))
	}
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "INTERNAL_ERROR",
			"message": "Internal server error",
		})
	}))
	router.Use(CORSMiddleware())
	if cfg.MaxUpload > 0 {
		router.Use(BodyLimitMiddleware(cfg.MaxUpload))
		router.MaxMultipartMemory = min(cfg.MaxUpload, 32<<20)
	}

	SetupRoutes(router, deps, logger)

	return &Server{
		router: router,
		port:   cfg.Port,
		logger: logger,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("HTTP REST API server starting", zap.String("port", s.port))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	colors.PrintShutdown()
	return s.http.Shutdown(ctx)
}

// AccessLogMiddleware writes one structured line per request
func AccessLogMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("http request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("http request", fields...)
		default:
			logger.Info("http request", fields...)
		}
	}
}

// BodyLimitMiddleware caps request bodies at limit bytes
func BodyLimitMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// CORSMiddleware handles Cross-Origin Resource Sharing
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		// Handle preflight requests
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
