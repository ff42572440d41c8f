package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/axwise-ai/axpersona/pkg/database"
)

// healthHandler handles GET /health.
func (s *Server) healthHandler(c *gin.Context) {
	payload := gin.H{
		"status": "healthy",
		"model":  s.cfg.GeminiModel,
	}

	if s.dbClient == nil {
		payload["database"] = gin.H{"connected": false, "mode": "degraded"}
		c.JSON(http.StatusOK, payload)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbHealth, err := database.Health(ctx, s.dbClient.DB())
	payload["database"] = dbHealth
	if err != nil {
		payload["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, payload)
		return
	}
	c.JSON(http.StatusOK, payload)
}
