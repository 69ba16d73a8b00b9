package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheckResponse represents the health check response structure
type HealthCheckResponse struct {
	Status string `json:"status"`
	Views  string `json:"views,omitempty"`
}

// HealthCheck reports whether the view store is reachable. The CMS is not
// probed: its failures degrade responses instead of taking the service down.
func (h *Handler) HealthCheck(c *gin.Context) {
	storeStatus := "connected"
	if err := h.views.Ping(c.Request.Context()); err != nil {
		storeStatus = "disconnected"
	}

	status := http.StatusOK
	response := HealthCheckResponse{
		Status: "ok",
		Views:  storeStatus,
	}

	if storeStatus != "connected" {
		status = http.StatusServiceUnavailable
		response.Status = "unavailable"
	}

	c.JSON(status, response)
}
