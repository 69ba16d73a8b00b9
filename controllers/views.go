package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// GET /api/views/all
func (h *Handler) GetAllViews(c *gin.Context) {
	counts, err := h.views.GetAllCounts(c.Request.Context())
	if err != nil {
		h.logger.Error("fetch all view counts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch all view counts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "views": counts})
}

// GET /api/views/:slug
func (h *Handler) GetViews(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	c.JSON(http.StatusOK, gin.H{"slug": slug, "count": h.views.GetViewCount(c.Request.Context(), slug)})
}

// POST /api/views/:slug
func (h *Handler) IncrementViews(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "slug required"})
		return
	}
	h.views.Increment(slug)
	c.JSON(http.StatusAccepted, gin.H{"success": true})
}
