// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/AmanS2501/Tech-Alpha-Hack/internal/api/handlers"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/api/middleware"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/engine"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/repository"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Services bundles the collaborators the router needs. Locations is the
// durable fleet store; nil when the server runs registry-only.
type Services struct {
	Engine    *engine.Engine
	Movements repository.MovementRepository
	Locations repository.LocationRepository
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil && services.Engine != nil {
		engineHandler := handlers.NewEngineHandler(services.Engine)
		engineGroup := apiGroup.Group("/engine")
		{
			engineGroup.GET("/report", engineHandler.GetReport)
			engineGroup.POST("/cycle", engineHandler.RunCycle)
			engineGroup.GET("/risks", engineHandler.GetRisks)
			engineGroup.GET("/proposals", engineHandler.GetProposals)
			engineGroup.GET("/predictions/:name", engineHandler.GetPrediction)
		}

		ledgerHandler := handlers.NewLedgerHandler(services.Engine, services.Movements)
		ledgerGroup := apiGroup.Group("/ledger")
		{
			ledgerGroup.POST("/transfers", ledgerHandler.ApplyTransfer)
			ledgerGroup.POST("/consumption", ledgerHandler.ApplyConsumption)
			ledgerGroup.POST("/adjustments", ledgerHandler.ApplyAdjustment)
			ledgerGroup.POST("/production", ledgerHandler.ApplyProduction)
			ledgerGroup.POST("/disposals", ledgerHandler.ApplyDisposal)
			ledgerGroup.GET("/movements", ledgerHandler.GetMovements)
		}

		locationHandler := handlers.NewLocationHandler(services.Engine.Registry(), services.Locations)
		locationGroup := apiGroup.Group("/locations")
		{
			locationGroup.GET("", locationHandler.ListLocations)
			locationGroup.POST("", locationHandler.RegisterLocation)
			locationGroup.GET("/:name", locationHandler.GetLocation)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
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
