package handlers

import (
	"net/http"

	"meetingroom/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last health snapshot.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	state := "ok"
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "health": status})
}
