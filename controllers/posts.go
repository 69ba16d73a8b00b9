package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio-backend/services"
)

// GET /api/blog-posts
func (h *Handler) ListPosts(c *gin.Context) {
	posts := h.posts.ListPostMeta(c.Request.Context())
	if len(posts) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No posts found or error fetching posts."})
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GET /api/blog-posts/:slug
// A successful read also records a view for the slug in the background.
func (h *Handler) GetPost(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Slug parameter is missing."})
		return
	}

	post, err := h.posts.GetPost(c.Request.Context(), slug)
	switch {
	case errors.Is(err, services.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("Post with slug '%s' not found.", slug)})
		return
	case errors.Is(err, services.ErrArticleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("Data for post with slug '%s' not found.", slug)})
		return
	case err != nil:
		h.logger.Error("fetch post", "slug", slug, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch post", "error": err.Error()})
		return
	}

	h.views.Increment(post.Slug)
	c.JSON(http.StatusOK, post)
}
