package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// analysisHandler handles POST /analysis?simulation_id=…: it runs the
// analysis sub-pipeline over a completed simulation.
func (s *Server) analysisHandler(c *gin.Context) {
	simulationID := c.Query("simulation_id")
	if simulationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "simulation_id query parameter is required"})
		return
	}

	envelope, _, err := s.analysis.RunForSimulation(c.Request.Context(), simulationID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if envelope.Error != "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": "analysis failed: " + envelope.Error})
		return
	}
	c.JSON(http.StatusOK, envelope)
}
