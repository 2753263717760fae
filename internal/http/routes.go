package http

import (
	"net/http"
	"strings"

	"signage_server/internal/http/controllers"
	"signage_server/internal/http/middleware"
	"signage_server/pkg/colors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, deps Deps, logger *zap.Logger) {
	authController := controllers.NewAuthController(deps.Identity, logger)
	deviceController := controllers.NewDeviceController(deps.Catalog, deps.CheckIns, deps.DeviceTokens, logger)
	mediaController := controllers.NewMediaController(deps.Catalog)
	playlistController := controllers.NewPlaylistController(deps.Catalog)
	scheduleController := controllers.NewScheduleController(deps.Schedules)
	logController := controllers.NewLogController(deps.CheckIns)
	deviceAPIController := controllers.NewDeviceAPIController(deps.Catalog, deps.CheckIns)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Live check-in feed, authenticated with ?token=
	if deps.Hub != nil {
		router.GET("/ws", deps.Hub.Handler(deps.Identity))
	}

	// API version 1
	v1 := router.Group("/api/v1")
	{
		// Public authentication routes (no middleware)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authController.Register)
			auth.POST("/login", authController.Login)
		}

		// Protected authentication routes (require auth)
		authProtected := v1.Group("/auth")
		authProtected.Use(middleware.AuthMiddleware(deps.Identity))
		{
			authProtected.POST("/logout", authController.Logout)
			authProtected.GET("/me", authController.Me)
		}

		// Device routes (owner only)
		devices := v1.Group("/devices")
		devices.Use(middleware.AuthMiddleware(deps.Identity))
		{
			devices.GET("", deviceController.GetDevices)
			devices.GET("/:id", deviceController.GetDevice)
			devices.POST("", deviceController.CreateDevice)
			devices.PUT("/:id", deviceController.UpdateDevice)
			devices.PATCH("/:id", deviceController.UpdateDevice)
			devices.DELETE("/:id", deviceController.DeleteDevice)
			devices.POST("/:id/check_in", deviceController.CheckIn)
			devices.POST("/:id/token", deviceController.IssueToken)
		}

		// Media routes
		media := v1.Group("/media")
		media.Use(middleware.AuthMiddleware(deps.Identity))
		{
			media.GET("", mediaController.GetMedia)
			media.GET("/:id", mediaController.GetMediaItem)
			media.POST("", mediaController.CreateMedia)
			media.PUT("/:id", mediaController.UpdateMedia)
			media.PATCH("/:id", mediaController.UpdateMedia)
			media.DELETE("/:id", mediaController.DeleteMedia)
		}

		// Playlist routes
		playlists := v1.Group("/playlists")
		playlists.Use(middleware.AuthMiddleware(deps.Identity))
		{
			playlists.GET("", playlistController.GetPlaylists)
			playlists.GET("/:id", playlistController.GetPlaylist)
			playlists.POST("", playlistController.CreatePlaylist)
			playlists.PUT("/:id", playlistController.UpdatePlaylist)
			playlists.PATCH("/:id", playlistController.UpdatePlaylist)
			playlists.DELETE("/:id", playlistController.DeletePlaylist)
			playlists.POST("/:id/add_item", playlistController.AddItem)
			playlists.POST("/:id/remove_item", playlistController.RemoveItem)
		}

		// Schedule routes
		schedules := v1.Group("/schedules")
		schedules.Use(middleware.AuthMiddleware(deps.Identity))
		{
			schedules.GET("", scheduleController.GetSchedules)
			schedules.GET("/:id", scheduleController.GetSchedule)
			schedules.POST("", scheduleController.CreateSchedule)
			schedules.PUT("/:id", scheduleController.UpdateSchedule)
			schedules.DELETE("/:id", scheduleController.DeleteSchedule)
		}

		// Device log routes
		logs := v1.Group("/logs")
		logs.Use(middleware.AuthMiddleware(deps.Identity))
		{
			logs.GET("", logController.GetLogs)
			logs.GET("/export", logController.ExportLogs)
		}

		// Routes called by the devices themselves (device check-in token)
		device := v1.Group("/device")
		device.Use(middleware.DeviceAuthMiddleware(deps.DeviceTokens))
		{
			device.POST("/check_in", deviceAPIController.CheckIn)
			device.POST("/events", deviceAPIController.Event)
			device.PUT("/push_token", deviceAPIController.PushToken)
		}

		if deps.Files != nil {
			fileController := controllers.NewFileController(deps.Files)
			v1.GET("/files/*ref", fileController.ServeFile)
		}
	}
}

// handlerName shortens "pkg/path.(*Controller).Method-fm" to "Controller.Method"
func handlerName(full string) string {
	name := full[strings.LastIndex(full, "/")+1:]
	if dot := strings.Index(name, "."); dot >= 0 {
		name = name[dot+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	return strings.NewReplacer("(*", "", ")", "").Replace(name)
}

// PrintRoutes lists the server's endpoints on the console
func (s *Server) PrintRoutes() {
	colors.PrintSubHeader("Endpoints")
	for _, route := range s.router.Routes() {
		colors.PrintEndpoint(route.Method, route.Path, handlerName(route.Handler))
	}
}
