// internal/api/handlers/ledger_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/AmanS2501/Tech-Alpha-Hack/internal/domain"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/engine"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/repository"
	"github.com/gin-gonic/gin"
)

type LedgerHandler struct {
	engine    *engine.Engine
	movements repository.MovementRepository
}

func NewLedgerHandler(eng *engine.Engine, movements repository.MovementRepository) *LedgerHandler {
	return &LedgerHandler{engine: eng, movements: movements}
}

type transferRequest struct {
	From     string `json:"from" binding:"required"`
	To       string `json:"to" binding:"required"`
	Medicine string `json:"medicine"`
	Amount   int    `json:"amount" binding:"required"`
	Actor    string `json:"actor"`
	Reason   string `json:"reason"`
}

type quantityRequest struct {
	Location string `json:"location" binding:"required"`
	Amount   int    `json:"amount"`
	Actor    string `json:"actor"`
}

// ApplyTransfer accepts a transfer proposal and applies it to the ledger.
func (h *LedgerHandler) ApplyTransfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	proposal := domain.TransferProposal{
		From:     req.From,
		To:       req.To,
		Medicine: req.Medicine,
		Amount:   req.Amount,
		Reason:   req.Reason,
	}

	movement, err := h.engine.ApplyProposal(c.Request.Context(), proposal, req.Actor)
	if err != nil {
		status, message := mapDomainError(err)
		c.JSON(status, gin.H{"error": message, "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, movement)
}

// ApplyConsumption records a consumption event at a location.
func (h *LedgerHandler) ApplyConsumption(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	movement, err := h.engine.Ledger().ApplyConsumption(c.Request.Context(), req.Location, req.Amount, req.Actor)
	if err != nil {
		status, message := mapDomainError(err)
		c.JSON(status, gin.H{"error": message, "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, movement)
}

// ApplyAdjustment sets an absolute stock level.
func (h *LedgerHandler) ApplyAdjustment(c *gin.Context) {
	var req struct {
		Location    string `json:"location" binding:"required"`
		NewQuantity int    `json:"new_quantity"`
		Actor       string `json:"actor"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	movement, err := h.engine.Ledger().ApplyAdjustment(c.Request.Context(), req.Location, req.NewQuantity, req.Actor)
	if err != nil {
		status, message := mapDomainError(err)
		c.JSON(status, gin.H{"error": message, "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, movement)
}

// ApplyProduction adds produced stock at a location.
func (h *LedgerHandler) ApplyProduction(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	movement, err := h.engine.Ledger().ApplyProduction(c.Request.Context(), req.Location, req.Amount, req.Actor)
	if err != nil {
		status, message := mapDomainError(err)
		c.JSON(status, gin.H{"error": message, "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, movement)
}

// ApplyDisposal removes expired or damaged stock.
func (h *LedgerHandler) ApplyDisposal(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	movement, err := h.engine.Ledger().ApplyDisposal(c.Request.Context(), req.Location, req.Amount, req.Actor)
	if err != nil {
		status, message := mapDomainError(err)
		c.JSON(status, gin.H{"error": message, "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, movement)
}

// GetMovements lists recent movement records, newest first.
func (h *LedgerHandler) GetMovements(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit <= 0 {
		limit = 10
	}

	movements, err := h.movements.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch movements", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"movements": movements})
}

// mapDomainError translates ledger and forecast sentinels to HTTP codes.
func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnknownLocation):
		return http.StatusNotFound, "unknown location"
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid amount"
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict, "insufficient stock"
	case errors.Is(err, domain.ErrInsufficientData):
		return http.StatusUnprocessableEntity, "insufficient demand data"
	case errors.Is(err, domain.ErrBusy):
		return http.StatusServiceUnavailable, "location busy"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
