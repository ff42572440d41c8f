package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/axwise-ai/axpersona/pkg/analysis"
	"github.com/axwise-ai/axpersona/pkg/llm"
	"github.com/axwise-ai/axpersona/pkg/models"
	"github.com/axwise-ai/axpersona/pkg/services"
)

// abortWithError maps domain errors to HTTP responses.
func abortWithError(c *gin.Context, err error) {
	var fieldErr *models.FieldError
	if errors.As(err, &fieldErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fieldErr.Error()})
		return
	}
	var validErr *services.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validErr.Error()})
		return
	}
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		return
	}
	if errors.Is(err, analysis.ErrNoInterviewContent) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch llm.KindOf(err) {
	case llm.KindMalformedOutput, llm.KindTransport, llm.KindTimeout:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	case llm.KindCancelled:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled"})
		return
	}

	slog.Error("Unexpected handler error", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
