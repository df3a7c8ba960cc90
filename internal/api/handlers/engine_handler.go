// internal/api/handlers/engine_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/AmanS2501/Tech-Alpha-Hack/internal/engine"
	"github.com/gin-gonic/gin"
)

type EngineHandler struct {
	engine *engine.Engine
}

func NewEngineHandler(eng *engine.Engine) *EngineHandler {
	return &EngineHandler{engine: eng}
}

// GetReport returns the latest cycle report, running a fresh cycle when
// nothing is cached.
func (h *EngineHandler) GetReport(c *gin.Context) {
	report, err := h.engine.LatestReport(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// RunCycle forces a fresh evaluation cycle.
func (h *EngineHandler) RunCycle(c *gin.Context) {
	report, err := h.engine.RunCycle(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cycle failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetRisks returns the assessment list from the latest report.
func (h *EngineHandler) GetRisks(c *gin.Context) {
	report, err := h.engine.LatestReport(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assessments": report.Assessments})
}

// GetProposals returns the current transfer proposals, optionally capped
// to the top N by the planner's priority ordering.
func (h *EngineHandler) GetProposals(c *gin.Context) {
	report, err := h.engine.LatestReport(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report", "details": err.Error()})
		return
	}

	proposals := report.Proposals
	if top, err := strconv.Atoi(c.Query("top")); err == nil && top > 0 && top < len(proposals) {
		proposals = proposals[:top]
	}

	c.JSON(http.StatusOK, gin.H{"proposals": proposals})
}

// GetPrediction returns the daily demand forecast for one location.
func (h *EngineHandler) GetPrediction(c *gin.Context) {
	name := c.Param("name")

	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	if days <= 0 {
		days = 7
	}

	daily, err := h.engine.Predict(name, days)
	if err != nil {
		status, message := mapDomainError(err)
		c.JSON(status, gin.H{"error": message, "details": err.Error()})
		return
	}

	var total float64
	for _, v := range daily {
		total += v
	}

	c.JSON(http.StatusOK, gin.H{
		"location": name,
		"daily":    daily,
		"total":    total,
	})
}
