package handler

import (
	"clearpath-signals/pkg/broadcast"
	"clearpath-signals/service"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	ingest        service.IngestService
	upload        service.UploadService
	simulation    service.SimulationService
	logs          service.LogService
	auth          service.AuthService
	hub           *broadcast.Hub
	maxUploadSize int64
}

type Services struct {
	Ingest     service.IngestService
	Upload     service.UploadService
	Simulation service.SimulationService
	Logs       service.LogService
	Auth       service.AuthService
}

func New(services Services, hub *broadcast.Hub, maxUploadSize int64) *Handler {
	return &Handler{
		ingest:        services.Ingest,
		upload:        services.Upload,
		simulation:    services.Simulation,
		logs:          services.Logs,
		auth:          services.Auth,
		hub:           hub,
		maxUploadSize: maxUploadSize,
	}
}

// Routes mounts every endpoint on r.
func (h *Handler) Routes(r *gin.Engine) {
	r.GET("/ws", h.Subscribe)

	api := r.Group("/api")
	api.POST("/upload-videos", h.OptionalAuth(), h.UploadVideos)

	sim := api.Group("/simulation")
	sim.GET("/status", h.Status)
	sim.POST("/update", h.Update)
	sim.POST("/alert", h.Alert)
	sim.POST("/complete", h.Complete)
	sim.GET("/:sessionId", h.GetSession)
	sim.GET("/:sessionId/alerts", h.SessionAlerts)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.GET("/me", h.RequireAuth(), h.Me)

	logs := api.Group("/logs", h.RequireAuth())
	logs.GET("", h.ListLogs)
	logs.GET("/stats", h.LogStats)
	logs.GET("/sessions", h.LogSessions)
	logs.DELETE("/cleanup", h.CleanupLogs)
}
