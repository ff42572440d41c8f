package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/axwise-ai/axpersona/pkg/models"
	"github.com/axwise-ai/axpersona/pkg/services"
)

// createPipelineJobHandler handles POST /pipeline/run-async: it creates a
// background pipeline job and returns immediately with its pending status.
func (s *Server) createPipelineJobHandler(c *gin.Context) {
	var brief models.BusinessContext
	if err := c.ShouldBindJSON(&brief); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	job, err := s.registry.CreateJob(c.Request.Context(), brief)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// getPipelineJobHandler handles GET /pipeline/jobs/:id. The result field is
// present only for completed jobs.
func (s *Server) getPipelineJobHandler(c *gin.Context) {
	job, err := s.registry.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// listPipelineRunsHandler handles GET /pipeline/runs with optional status
// filtering and pagination. The limit is clamped to the service maximum.
func (s *Server) listPipelineRunsHandler(c *gin.Context) {
	limit := services.DefaultRunListLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	offset := 0
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
			return
		}
		offset = n
	}

	status := c.Query("status")
	if status != "" {
		switch models.RunStatus(status) {
		case models.RunPending, models.RunRunning, models.RunCompleted, models.RunPartial, models.RunFailed:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status: " + status})
			return
		}
	}

	list, err := s.registry.ListRuns(c.Request.Context(), status, limit, offset)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// getPipelineRunDetailHandler handles GET /pipeline/runs/:id, returning the
// full record with trace and dataset.
func (s *Server) getPipelineRunDetailHandler(c *gin.Context) {
	detail, err := s.registry.GetRunDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
