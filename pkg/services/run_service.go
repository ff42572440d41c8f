package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/axwise-ai/axpersona/pkg/models"
)

// Pagination bounds for run listings.
const (
	DefaultRunListLimit = 50
	MaxRunListLimit     = 100
)

// RunService persists pipeline run lifecycle, traces, and results.
type RunService struct {
	db *gorm.DB
}

// NewRunService creates a RunService. A nil db puts the service in degraded
// mode.
func NewRunService(db *gorm.DB) *RunService {
	return &RunService{db: db}
}

// Create inserts a new pipeline run row in pending state.
func (s *RunService) Create(ctx context.Context, jobID string, brief models.BusinessContext, userID *string) error {
	if jobID == "" {
		return NewValidationError("job_id", "required")
	}
	if s.db == nil {
		return ErrStorageUnavailable
	}
	row := PipelineRunRow{
		JobID:           jobID,
		UserID:          userID,
		Status:          string(models.RunPending),
		CreatedAt:       time.Now().UTC(),
		BusinessContext: toJSON(brief),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create pipeline run: %w", err)
	}
	return nil
}

// UpdateStatus transitions a run's lifecycle state. startedAt/completedAt
// are recorded when provided; duration_seconds is derived once both
// timestamps are known.
func (s *RunService) UpdateStatus(ctx context.Context, jobID string, status models.RunStatus, startedAt, completedAt *time.Time, runErr string) error {
	if s.db == nil {
		return ErrStorageUnavailable
	}
	updates := map[string]any{"status": string(status)}
	if startedAt != nil {
		updates["started_at"] = startedAt
	}
	if completedAt != nil {
		updates["completed_at"] = completedAt
	}
	if runErr != "" {
		updates["error_message"] = runErr
	}

	if completedAt != nil {
		var row PipelineRunRow
		err := s.db.WithContext(ctx).First(&row, "job_id = ?", jobID).Error
		if err == nil {
			started := row.StartedAt
			if startedAt != nil {
				started = startedAt
			}
			if started != nil {
				duration := completedAt.Sub(*started).Seconds()
				updates["duration_seconds"] = duration
			}
		}
	}

	err := s.db.WithContext(ctx).
		Model(&PipelineRunRow{}).
		Where("job_id = ?", jobID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("update pipeline run status: %w", err)
	}
	return nil
}

// RunResults carries the orchestrator outputs persisted after a run ends.
type RunResults struct {
	ExecutionTrace                []models.StageTrace
	TotalDurationSeconds          float64
	Dataset                       *models.PersonaDataset
	QuestionnaireStakeholderCount *int
	SimulationID                  *string
	AnalysisID                    *int64
	PersonaCount                  *int
	InterviewCount                *int
}

// UpdateResults stores the trace, dataset, and extracted scalar counts.
func (s *RunService) UpdateResults(ctx context.Context, jobID string, results RunResults) error {
	if s.db == nil {
		return ErrStorageUnavailable
	}
	updates := map[string]any{
		"execution_trace":        toJSON(results.ExecutionTrace),
		"total_duration_seconds": results.TotalDurationSeconds,
	}
	if results.Dataset != nil {
		updates["dataset"] = toJSON(results.Dataset)
	}
	if results.QuestionnaireStakeholderCount != nil {
		updates["questionnaire_stakeholder_count"] = *results.QuestionnaireStakeholderCount
	}
	if results.SimulationID != nil {
		updates["simulation_id"] = *results.SimulationID
	}
	if results.AnalysisID != nil {
		updates["analysis_id"] = *results.AnalysisID
	}
	if results.PersonaCount != nil {
		updates["persona_count"] = *results.PersonaCount
	}
	if results.InterviewCount != nil {
		updates["interview_count"] = *results.InterviewCount
	}

	err := s.db.WithContext(ctx).
		Model(&PipelineRunRow{}).
		Where("job_id = ?", jobID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("update pipeline run results: %w", err)
	}
	return nil
}

// StoredRun is a pipeline run row decoded back into domain types.
type StoredRun struct {
	JobID                         string
	UserID                        *string
	Status                        models.RunStatus
	CreatedAt                     time.Time
	StartedAt                     *time.Time
	CompletedAt                   *time.Time
	DurationSeconds               *float64
	BusinessContext               models.BusinessContext
	ExecutionTrace                []models.StageTrace
	TotalDurationSeconds          *float64
	Dataset                       *models.PersonaDataset
	QuestionnaireStakeholderCount *int
	SimulationID                  *string
	AnalysisID                    *int64
	PersonaCount                  *int
	InterviewCount                *int
	Error                         string
}

// Get loads one pipeline run by job id.
func (s *RunService) Get(ctx context.Context, jobID string) (*StoredRun, error) {
	if s.db == nil {
		return nil, ErrNotFound
	}
	var row PipelineRunRow
	if err := s.db.WithContext(ctx).First(&row, "job_id = ?", jobID).Error; err != nil {
		return nil, readErr(err)
	}
	return decodeRunRow(row)
}

// List returns run rows matching the optional user/status filters, newest
// first. Limit is clamped to [1, MaxRunListLimit].
func (s *RunService) List(ctx context.Context, userID *string, status string, limit, offset int) ([]*StoredRun, error) {
	if s.db == nil {
		return nil, nil
	}
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	q := s.db.WithContext(ctx).Model(&PipelineRunRow{}).Order("created_at DESC")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var rows []PipelineRunRow
	if err := q.Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		if missingTable(err) {
			return nil, nil
		}
		return nil, err
	}

	out := make([]*StoredRun, 0, len(rows))
	for _, row := range rows {
		decoded, err := decodeRunRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, decoded)
	}
	return out, nil
}

// Count returns the number of runs matching the optional filters.
func (s *RunService) Count(ctx context.Context, userID *string, status string) (int, error) {
	if s.db == nil {
		return 0, nil
	}
	q := s.db.WithContext(ctx).Model(&PipelineRunRow{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		if missingTable(err) {
			return 0, nil
		}
		return 0, err
	}
	return int(count), nil
}

// clampLimit applies the listing pagination bounds.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultRunListLimit
	}
	if limit > MaxRunListLimit {
		return MaxRunListLimit
	}
	return limit
}

func decodeRunRow(row PipelineRunRow) (*StoredRun, error) {
	stored := &StoredRun{
		JobID:                         row.JobID,
		UserID:                        row.UserID,
		Status:                        models.RunStatus(row.Status),
		CreatedAt:                     row.CreatedAt,
		StartedAt:                     row.StartedAt,
		CompletedAt:                   row.CompletedAt,
		DurationSeconds:               row.DurationSeconds,
		TotalDurationSeconds:          row.TotalDurationSeconds,
		QuestionnaireStakeholderCount: row.QuestionnaireStakeholderCount,
		SimulationID:                  row.SimulationID,
		AnalysisID:                    row.AnalysisID,
		PersonaCount:                  row.PersonaCount,
		InterviewCount:                row.InterviewCount,
		Error:                         row.ErrorMessage,
	}
	if err := fromJSON(row.BusinessContext, &stored.BusinessContext); err != nil {
		return nil, fmt.Errorf("decode business_context: %w", err)
	}
	if err := fromJSON(row.ExecutionTrace, &stored.ExecutionTrace); err != nil {
		return nil, fmt.Errorf("decode execution_trace: %w", err)
	}
	if len(row.Dataset) > 0 {
		stored.Dataset = &models.PersonaDataset{}
		if err := fromJSON(row.Dataset, stored.Dataset); err != nil {
			return nil, fmt.Errorf("decode dataset: %w", err)
		}
	}
	return stored, nil
}
