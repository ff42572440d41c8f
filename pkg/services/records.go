package services

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// SimulationRow is the simulations table record. Nested structures are
// stored verbatim as JSON.
type SimulationRow struct {
	SimulationID    string         `gorm:"column:simulation_id;primaryKey"`
	UserID          string         `gorm:"column:user_id"`
	Status          string         `gorm:"column:status"`
	BusinessContext datatypes.JSON `gorm:"column:business_context"`
	QuestionsData   datatypes.JSON `gorm:"column:questions_data"`
	Config          datatypes.JSON `gorm:"column:config"`
	Personas        datatypes.JSON `gorm:"column:personas"`
	Interviews      datatypes.JSON `gorm:"column:interviews"`
	Insights        datatypes.JSON `gorm:"column:insights"`
	FormattedData   datatypes.JSON `gorm:"column:formatted_data"`
	CreatedAt       time.Time      `gorm:"column:created_at"`
	CompletedAt     *time.Time     `gorm:"column:completed_at"`
	ErrorMessage    string         `gorm:"column:error_message"`
}

// TableName maps the row to its table.
func (SimulationRow) TableName() string { return "simulations" }

// AnalysisRow is the analysis_results table record. Results holds the
// serialised DetailedAnalysis envelope.
type AnalysisRow struct {
	AnalysisID   int64          `gorm:"column:analysis_id;primaryKey;autoIncrement"`
	SimulationID *string        `gorm:"column:simulation_id"`
	Status       string         `gorm:"column:status"`
	Results      datatypes.JSON `gorm:"column:results"`
	LLMProvider  string         `gorm:"column:llm_provider"`
	LLMModel     string         `gorm:"column:llm_model"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
	ErrorMessage string         `gorm:"column:error_message"`
}

// TableName maps the row to its table.
func (AnalysisRow) TableName() string { return "analysis_results" }

// PipelineRunRow is the pipeline_runs table record.
type PipelineRunRow struct {
	JobID                         string         `gorm:"column:job_id;primaryKey"`
	UserID                        *string        `gorm:"column:user_id"`
	Status                        string         `gorm:"column:status"`
	CreatedAt                     time.Time      `gorm:"column:created_at"`
	StartedAt                     *time.Time     `gorm:"column:started_at"`
	CompletedAt                   *time.Time     `gorm:"column:completed_at"`
	DurationSeconds               *float64       `gorm:"column:duration_seconds"`
	BusinessContext               datatypes.JSON `gorm:"column:business_context"`
	ExecutionTrace                datatypes.JSON `gorm:"column:execution_trace"`
	TotalDurationSeconds          *float64       `gorm:"column:total_duration_seconds"`
	Dataset                       datatypes.JSON `gorm:"column:dataset"`
	QuestionnaireStakeholderCount *int           `gorm:"column:questionnaire_stakeholder_count"`
	SimulationID                  *string        `gorm:"column:simulation_id"`
	AnalysisID                    *int64         `gorm:"column:analysis_id"`
	PersonaCount                  *int           `gorm:"column:persona_count"`
	InterviewCount                *int           `gorm:"column:interview_count"`
	ErrorMessage                  string         `gorm:"column:error_message"`
}

// TableName maps the row to its table.
func (PipelineRunRow) TableName() string { return "pipeline_runs" }

// toJSON marshals v into a JSON column value; nil input yields a null column.
func toJSON(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}

// fromJSON unmarshals a JSON column into out; empty columns are left as the
// zero value.
func fromJSON(data datatypes.JSON, out any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
