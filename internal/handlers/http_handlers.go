package handlers

import (
	"encoding/csv"
	"errors"
	"net/http"
	"time"

	"luckydraw/internal/models"
	"luckydraw/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
)

// HTTPHandler holds the dependencies for the HTTP handlers, like the lottery service.
type HTTPHandler struct {
	service *services.LotteryService
	metrics http.Handler
}

// NewHTTPHandler creates a new HTTPHandler. metrics may be nil.
func NewHTTPHandler(service *services.LotteryService, metrics http.Handler) *HTTPHandler {
	return &HTTPHandler{
		service: service,
		metrics: metrics,
	}
}

// tierView is a tier enriched with its live counts.
type tierView struct {
	models.Tier
	Available int `json:"available"`
	Winners   int `json:"winners"`
}

// RegisterRoutes registers all the application routes.
func (h *HTTPHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/tiers", h.ListTiers)
		api.GET("/tiers/:key/available", h.GetAvailableCount)
		api.GET("/tiers/:key/eligible", h.ListEligible)
		api.POST("/tiers/:key/draw", h.PerformDraw)
		api.GET("/winners", h.ListWinners)
		api.GET("/stats", h.GetStats)
		api.POST("/reset", h.Reset)
	}
	router.GET("/export-results-csv", h.ExportResultsCSV)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics))
	}
}

// writeError maps engine errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrUnknownTier):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrPoolExhausted), errors.Is(err, models.ErrDrawInProgress):
		status = http.StatusConflict
	default:
		logger.Errorf("Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// ListTiers returns every tier with its available and awarded counts.
func (h *HTTPHandler) ListTiers(c *gin.Context) {
	tiers := h.service.Tiers()
	views := make([]tierView, 0, len(tiers))
	for _, t := range tiers {
		available, err := h.service.AvailableCount(t.Key)
		if err != nil {
			writeError(c, err)
			return
		}
		views = append(views, tierView{
			Tier:      t,
			Available: available,
			Winners:   h.service.CountByTier(t.Key),
		})
	}
	c.JSON(http.StatusOK, views)
}

// GetAvailableCount reports how many participants a tier can still draw.
func (h *HTTPHandler) GetAvailableCount(c *gin.Context) {
	key := c.Param("key")
	available, err := h.service.AvailableCount(key)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tier": key, "available": available})
}

// ListEligible previews the participants a draw for the tier would pick from.
// Nothing is drawn or recorded.
func (h *HTTPHandler) ListEligible(c *gin.Context) {
	eligible, err := h.service.GetEligibleParticipants(c.Param("key"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, eligible)
}

// PerformDraw handles the request to draw the winners of a tier.
func (h *HTTPHandler) PerformDraw(c *gin.Context) {
	result, err := h.service.Draw(c.Request.Context(), c.Param("key"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListWinners returns the ledger, most recent first.
func (h *HTTPHandler) ListWinners(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.GetLedgerSnapshot())
}

// GetStats returns the session statistics.
func (h *HTTPHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Stats())
}

// Reset clears the ledger and refills the pools. A failed purge of the
// durable copy is reported but the session is reset regardless.
func (h *HTTPHandler) Reset(c *gin.Context) {
	if err := h.service.Reset(c.Request.Context()); err != nil {
		c.JSON(http.StatusOK, gin.H{"warning": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportResultsCSV handles the request to download the winners as a CSV file.
func (h *HTTPHandler) ExportResultsCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment;filename=lottery_results.csv")

	// Add BOM to ensure UTF-8 compatibility in Excel
	c.Writer.Write([]byte("\xef\xbb\xbf"))

	w := csv.NewWriter(c.Writer)

	if err := w.Write([]string{"Tier", "Prize", "Code", "Name", "Time"}); err != nil {
		logger.Infof("Error writing CSV header: %v", err)
		c.String(http.StatusInternalServerError, "Error writing CSV")
		return
	}

	for _, record := range h.service.GetLedgerSnapshot() {
		row := []string{
			record.TierKey,
			record.TierDisplayName,
			record.Code,
			record.Name,
			record.Timestamp.Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			logger.Infof("Error writing CSV row: %v", err)
			c.String(http.StatusInternalServerError, "Error writing CSV")
			return
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		logger.Infof("Error flushing CSV writer: %v", err)
		c.String(http.StatusInternalServerError, "Error writing CSV")
	}
}
