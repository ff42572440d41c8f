package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// exportHandler handles POST /exports/persona-dataset.
func (s *Server) exportHandler(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.AnalysisID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "analysis_id is required to export a persona dataset"})
		return
	}
	analysisID, err := strconv.ParseInt(req.AnalysisID, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "analysis_id must be numeric"})
		return
	}

	dataset, err := s.assembler.Assemble(c.Request.Context(), analysisID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dataset)
}
