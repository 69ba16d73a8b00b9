package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-backend/controllers"
)

func SetupRoutes(router *gin.Engine, h *controllers.Handler, metricsHandler http.Handler) {
	router.GET("/health", h.HealthCheck)
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	api := router.Group("/api")
	{
		api.GET("/blogs", h.GetBlogs)
		api.GET("/publication", h.GetPublication)

		api.GET("/blog-posts", h.ListPosts)
		api.GET("/blog-posts/:slug", h.GetPost)

		api.GET("/views/all", h.GetAllViews)
		api.GET("/views/:slug", h.GetViews)
		api.POST("/views/:slug", h.IncrementViews)
	}
}
