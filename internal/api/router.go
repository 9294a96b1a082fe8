package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"fitprime-classes/config"
	"fitprime-classes/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
	r.Use(cors.New(corsConfig))

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	// Activities and memberships change rarely; class data is never cached.
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	caching := mw.NewResponseCache(ttl).Handler()

	r.GET("/healthz", h.Health)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/classes", h.GetClasses)
		api.GET("/classes/state", h.GetClassState)
		api.POST("/classes/refresh", h.PostRefresh)
		api.DELETE("/classes/filters", h.ClearFilters)
		api.POST("/classes/:id/reserve", h.ReserveClass)

		api.POST("/reservations/:id/cancel", h.CancelReservation)
		api.GET("/reservations/mine", h.GetMyReservations)

		api.GET("/activities", caching, h.GetActivities)
		api.GET("/memberships", caching, h.GetMemberships)

		api.GET("/session", h.GetSession)
		api.PUT("/session", h.PutSession)
		api.DELETE("/session", h.DeleteSession)
		api.GET("/journal", h.GetJournal)

		api.GET("/contracts/mine", h.GetMyContracts)
		api.POST("/contracts", h.PostContract)
		api.POST("/contracts/:id/pay", h.PayContract)
		api.PATCH("/contracts/:id/cancel", h.CancelContract)

		admin := api.Group("/admin", h.RequireAdmin())
		admin.GET("/classes", h.GetAdminClasses)
		admin.GET("/classes/:id/reservations", h.GetAdminClassReservations)
		admin.GET("/contracts", h.GetAdminContracts)
	}

	return r
}
