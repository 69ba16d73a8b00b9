package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio-backend/models"
	"portfolio-backend/services"
)

// GET /api/blogs
// GET /api/blogs?status=draft
// GET /api/blogs?documentId=<id>
func (h *Handler) GetBlogs(c *gin.Context) {
	ctx := c.Request.Context()

	if id := strings.TrimSpace(c.Query("documentId")); id != "" {
		body, err := h.cms.FetchArticleBody(ctx, id)
		if errors.Is(err, services.ErrArticleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Article '" + id + "' not found."})
			return
		}
		if err != nil {
			h.logger.Error("fetch article body", "document_id", id, "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"message": "Failed to fetch article", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"response": gin.H{"data": body}})
		return
	}

	var articles []models.ArticleSummary
	switch status := c.Query("status"); status {
	case "draft":
		articles = h.cms.FetchDraftArticles(ctx)
	case "", "published":
		articles = h.cms.FetchAllArticles(ctx)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unsupported status '" + status + "'."})
		return
	}
	if articles == nil {
		articles = []models.ArticleSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"response": gin.H{"data": articles}})
}

// GET /api/publication
func (h *Handler) GetPublication(c *gin.Context) {
	ctx := c.Request.Context()
	view := h.publisher.Resolve(ctx)

	resp := gin.H{
		"published":  view.Published,
		"comingSoon": view.ComingSoon,
		"views":      nil,
	}
	if counts, err := h.views.GetAllCounts(ctx); err != nil {
		h.logger.Warn("views unavailable for publication", "error", err)
	} else {
		resp["views"] = counts
	}
	c.JSON(http.StatusOK, resp)
}
