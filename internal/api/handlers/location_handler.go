// internal/api/handlers/location_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/AmanS2501/Tech-Alpha-Hack/internal/domain"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/ledger"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type LocationHandler struct {
	registry  *ledger.Registry
	locations repository.LocationRepository
}

// NewLocationHandler builds the fleet handler. locations may be nil when no
// durable store is wired in (the monitor daemon).
func NewLocationHandler(registry *ledger.Registry, locations repository.LocationRepository) *LocationHandler {
	return &LocationHandler{registry: registry, locations: locations}
}

// ListLocations returns the current fleet snapshot.
func (h *LocationHandler) ListLocations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"locations": h.registry.Snapshot()})
}

// GetLocation returns one location with its demand window.
func (h *LocationHandler) GetLocation(c *gin.Context) {
	name := c.Param("name")

	loc, history, err := h.registry.LocationHistory(name)
	if err != nil {
		status, message := mapDomainError(err)
		c.JSON(status, gin.H{"error": message, "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"location":       loc,
		"demand_history": history,
	})
}

type registerRequest struct {
	Name             string `json:"name" binding:"required"`
	Type             string `json:"type" binding:"required"`
	PopulationServed int    `json:"population_served"`
	CurrentStock     int    `json:"current_stock"`
	Threshold        int    `json:"reorder_threshold"`

	DemandHistory []float64 `json:"demand_history"`
}

// RegisterLocation adds a location to the working set.
func (h *LocationHandler) RegisterLocation(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	locType, ok := domain.ParseLocationType(req.Type)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown location type", "details": req.Type})
		return
	}

	loc := domain.Location{
		Name:             req.Name,
		Type:             locType,
		PopulationServed: req.PopulationServed,
		CurrentStock:     req.CurrentStock,
		Threshold:        req.Threshold,
	}

	if err := h.registry.Register(loc, req.DemandHistory); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, domain.ErrDuplicateLocation) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": "registration failed", "details": err.Error()})
		return
	}

	// Persist so the registration survives restarts. The registry already
	// accepted the location, so a store failure is logged, not returned.
	if h.locations != nil {
		ctx := c.Request.Context()
		if err := h.locations.SaveLocation(ctx, loc); err != nil {
			log.Warn().Err(err).Str("location", loc.Name).Msg("location save failed")
		} else {
			for _, consumed := range req.DemandHistory {
				if err := h.locations.AppendDemand(ctx, loc.Name, consumed); err != nil {
					log.Warn().Err(err).Str("location", loc.Name).Msg("demand history save failed")
					break
				}
			}
		}
	}

	c.JSON(http.StatusCreated, loc)
}
