package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary      Health check
// @Description  Returns the health status of the service and how many widgets hold live data
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	live := 0
	if h.dashboard != nil {
		for _, st := range h.dashboard.Statuses() {
			if !st.LastSuccess.IsZero() {
				live++
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "live_widgets": live})
}
