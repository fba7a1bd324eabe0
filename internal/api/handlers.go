// Package api exposes the reader's operations over HTTP as JSON.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/epubread/epubread/internal/imagestore"
	"github.com/epubread/epubread/internal/settings"
	"github.com/epubread/epubread/internal/storage"
)

// Handler contains all HTTP handlers
type Handler struct {
	store    *storage.Store
	txtStore *storage.TxtStore
	images   *imagestore.Store
	settings *settings.Manager
}

// NewHandler creates a new handler instance
func NewHandler(store *storage.Store, txtStore *storage.TxtStore, images *imagestore.Store, sm *settings.Manager) *Handler {
	return &Handler{
		store:    store,
		txtStore: txtStore,
		images:   images,
		settings: sm,
	}
}

// storeError maps a storage error to the right HTTP response.
func storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, storage.ErrStoreClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database not ready"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Ready reports whether the database connection is open
func (h *Handler) Ready(c *gin.Context) {
	if !h.store.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true})
}

// HealthCheck verifies the database schema is intact
func (h *Handler) HealthCheck(c *gin.Context) {
	report, err := h.store.HealthCheck()
	if err != nil {
		storeError(c, err)
		return
	}

	status := http.StatusOK
	if !report.Healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}

// GetStats returns record counts for the main tables
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.store.GetStats()
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
