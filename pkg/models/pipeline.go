package models

import "time"

// StageStatus is the terminal state of one pipeline stage.
type StageStatus string

// Stage trace states.
const (
	StageCompleted StageStatus = "completed"
	StageFailed    StageStatus = "failed"
	StageSkipped   StageStatus = "skipped"
)

// RunStatus is the lifecycle state of a pipeline run.
type RunStatus string

// Pipeline run states. Completed, partial, and failed are terminal.
const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunPartial   RunStatus = "partial"
	RunFailed    RunStatus = "failed"
)

// IsTerminal reports whether the status can no longer change.
func (s RunStatus) IsTerminal() bool {
	return s == RunCompleted || s == RunPartial || s == RunFailed
}

// Pipeline stage names, in execution order.
const (
	StageQuestionnaire = "questionnaire_generation"
	StageSimulation    = "simulation"
	StageAnalysis      = "analysis"
	StageExport        = "persona_dataset_export"
)

// StageNames lists the four pipeline stages in execution order.
var StageNames = []string{StageQuestionnaire, StageSimulation, StageAnalysis, StageExport}

// StageTrace records the execution of one pipeline stage. One entry is
// appended per stage whether it completed, failed, or was skipped.
type StageTrace struct {
	StageName       string         `json:"stage_name"`
	Status          StageStatus    `json:"status"`
	StartedAt       time.Time      `json:"started_at"`
	CompletedAt     time.Time      `json:"completed_at"`
	DurationSeconds float64        `json:"duration_seconds"`
	Outputs         map[string]any `json:"outputs"`
	Error           string         `json:"error,omitempty"`
}

// ExecutionResult is the envelope returned by the stage orchestrator. The
// trace is always populated; the dataset only when the export stage
// succeeded.
type ExecutionResult struct {
	Dataset              *PersonaDataset `json:"dataset,omitempty"`
	ExecutionTrace       []StageTrace    `json:"execution_trace"`
	TotalDurationSeconds float64         `json:"total_duration_seconds"`
	Status               RunStatus       `json:"status"`
}

// JobStatus is the polling view of a background pipeline job.
type JobStatus struct {
	JobID       string           `json:"job_id"`
	Status      RunStatus        `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	Error       string           `json:"error,omitempty"`
	Result      *ExecutionResult `json:"result,omitempty"`
}

// RunSummary is the list view of a historical pipeline run.
type RunSummary struct {
	JobID           string     `json:"job_id"`
	Status          RunStatus  `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	DurationSeconds *float64   `json:"duration_seconds,omitempty"`

	BusinessIdea   string `json:"business_idea,omitempty"`
	TargetCustomer string `json:"target_customer,omitempty"`
	Industry       string `json:"industry,omitempty"`
	Location       string `json:"location,omitempty"`

	QuestionnaireStakeholderCount *int `json:"questionnaire_stakeholder_count,omitempty"`
	PersonaCount                  *int `json:"persona_count,omitempty"`
	InterviewCount                *int `json:"interview_count,omitempty"`

	Error string `json:"error,omitempty"`
}

// RunDetail is the full view of one pipeline run, including trace and
// dataset.
type RunDetail struct {
	JobID           string     `json:"job_id"`
	Status          RunStatus  `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	DurationSeconds *float64   `json:"duration_seconds,omitempty"`

	BusinessContext      BusinessContext `json:"business_context"`
	ExecutionTrace       []StageTrace    `json:"execution_trace"`
	TotalDurationSeconds *float64        `json:"total_duration_seconds,omitempty"`
	Dataset              *PersonaDataset `json:"dataset,omitempty"`

	QuestionnaireStakeholderCount *int    `json:"questionnaire_stakeholder_count,omitempty"`
	SimulationID                  *string `json:"simulation_id,omitempty"`
	AnalysisID                    *int64  `json:"analysis_id,omitempty"`
	PersonaCount                  *int    `json:"persona_count,omitempty"`
	InterviewCount                *int    `json:"interview_count,omitempty"`

	Error string `json:"error,omitempty"`
}

// RunList is a paginated page of run summaries.
type RunList struct {
	Runs   []RunSummary `json:"runs"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}
