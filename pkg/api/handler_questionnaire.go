package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/axwise-ai/axpersona/pkg/models"
)

// questionnaireHandler handles POST /questionnaires.
func (s *Server) questionnaireHandler(c *gin.Context) {
	var brief models.BusinessContext
	if err := c.ShouldBindJSON(&brief); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if err := brief.Validate(); err != nil {
		abortWithError(c, err)
		return
	}

	questions, err := s.questionnaire.Build(c.Request.Context(), brief)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, QuestionnaireResponse{
		BusinessContext: brief,
		QuestionsData:   *questions,
		Metadata: map[string]any{
			"format_version": "v3",
			"source":         "questionnaire_builder",
		},
	})
}
