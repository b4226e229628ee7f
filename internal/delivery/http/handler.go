package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sunshower1260/VisionAid/internal/delivery/http/middleware"
	"github.com/Sunshower1260/VisionAid/internal/observability"
	"github.com/Sunshower1260/VisionAid/internal/usecase"
	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

// Pinger зависимость, доступность которой отражается в /api/system/health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler HTTP-слой сервиса: подбор волонтеров, вызовы, геопозиция для родственников.
type Handler struct {
	VolunteerService   *usecase.VolunteerService
	HelpRequestService *usecase.HelpRequestService
	FamilyService      *usecase.FamilyService
	DBPinger           Pinger
	RedisPinger        Pinger
	APIKey             string
	Metrics            *observability.Collector
	Logger             *slog.Logger
}

// NewHandler связывает сервисы с маршрутами. Пустой apiKey отключает проверку /api/users.
func NewHandler(vs *usecase.VolunteerService, hs *usecase.HelpRequestService, fs *usecase.FamilyService, db, rds Pinger, apiKey string) *Handler {
	return &Handler{
		VolunteerService:   vs,
		HelpRequestService: hs,
		FamilyService:      fs,
		DBPinger:           db,
		RedisPinger:        rds,
		APIKey:             apiKey,
		Logger:             slog.Default(),
	}
}

// InitRoutes инициализирует роутер Gin и настраивает маршруты API.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(h.Logger))
	if h.Metrics != nil {
		router.Use(h.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}

	router.GET("/api/system/health", h.healthCheck)

	api := router.Group("/api")
	{
		volunteer := api.Group("/volunteer")
		{
			volunteer.POST("/update-location", h.updateLocation)
			volunteer.POST("/request", h.requestVolunteer)
			volunteer.GET("/requests/:volunteerId", h.listHelpRequests)
			volunteer.POST("/accept", h.acceptHelpRequest)
		}

		family := api.Group("/family")
		{
			family.POST("/send-location", h.sendFamilyLocation)
			family.GET("/last-location/:userId", h.lastFamilyLocation)
			family.GET("/list/:userId", h.listFamily)
		}

		users := api.Group("/users")
		// Смена роли доступна только с API-ключом (если он задан)
		users.Use(middleware.AuthMiddleware(h.APIKey))
		{
			users.POST("/update-role", h.updateRole)
		}
	}

	return router
}

// healthCheck отвечает 503 с именем первой недоступной зависимости. Причина пишется только в лог.
func (h *Handler) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	for _, dep := range []struct {
		name   string
		pinger Pinger
	}{{"postgres", h.DBPinger}, {"redis", h.RedisPinger}} {
		if dep.pinger == nil {
			continue
		}
		if err := dep.pinger.Ping(ctx); err != nil {
			h.Logger.WarnContext(ctx, "health check failed", "dependency", dep.name, "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "status": "unavailable", "error": dep.name + " unavailable"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}

// writeError переводит доменную ошибку в HTTP-ответ.
func (h *Handler) writeError(c *gin.Context, err error) {
	var ve *usecase.ValidationError
	switch {
	case errors.As(err, &ve):
		badRequest(c, ve.Msg)
	case errors.Is(err, usecase.ErrNotFound), errors.Is(err, usecase.ErrHelpRequestNotFound), errors.Is(err, usecase.ErrNoSharedLocation):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, usecase.ErrStoreUnavailable):
		h.Logger.ErrorContext(c.Request.Context(), "store failure", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": usecase.ErrStoreUnavailable.Error()})
	default:
		h.Logger.ErrorContext(c.Request.Context(), "unexpected error", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
	}
}
