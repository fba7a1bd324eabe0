package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/epubread/epubread/internal/settings"
)

// GetSettings returns the stored preferences and resolved paths
func (h *Handler) GetSettings(c *gin.Context) {
	s, err := h.settings.Load()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	paths, err := h.settings.ResolvePaths()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": s, "paths": paths})
}

// SaveSettings persists preferences, migrating databases when the
// database directory changes
func (h *Handler) SaveSettings(c *gin.Context) {
	var s settings.Settings
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid settings payload"})
		return
	}

	migrated, err := h.settings.Save(&s)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true, "migrated": migrated})
}
