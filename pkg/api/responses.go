package api

import "github.com/axwise-ai/axpersona/pkg/models"

// QuestionnaireResponse is the POST /questionnaires payload returned to
// callers.
type QuestionnaireResponse struct {
	BusinessContext models.BusinessContext `json:"business_context"`
	QuestionsData   models.QuestionsData   `json:"questions_data"`
	Metadata        map[string]any         `json:"metadata"`
}
