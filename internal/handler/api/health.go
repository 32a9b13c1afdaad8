package api

import (
	"context"
	"net/http"

	"table-reservation/internal/handler/httperr"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the reservation store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// @Summary Health check
// @Description Check if the service and its store are healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} httperr.Response
// @Router /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Storage unavailable", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}
