package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// simulationHandler handles POST /simulations: it runs a simulation
// synchronously and returns the full result.
func (s *Server) simulationHandler(c *gin.Context) {
	var req SimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if err := req.BusinessContext.Validate(); err != nil {
		abortWithError(c, err)
		return
	}
	if len(req.QuestionsData.Stakeholders.All()) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "questions_data must contain at least one stakeholder"})
		return
	}

	userID := c.GetString("user_id")
	result, err := s.simulation.Run(c.Request.Context(), req.BusinessContext, req.QuestionsData, req.Config, userID, nil)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
