package api

import "github.com/axwise-ai/axpersona/pkg/models"

// SimulationRequest is the POST /simulations payload.
type SimulationRequest struct {
	QuestionsData   models.QuestionsData    `json:"questions_data"`
	BusinessContext models.BusinessContext  `json:"business_context"`
	Config          models.SimulationConfig `json:"config"`
}

// ExportRequest is the POST /exports/persona-dataset payload.
type ExportRequest struct {
	AnalysisID string `json:"analysis_id"`
}
