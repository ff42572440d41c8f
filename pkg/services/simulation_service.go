package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/axwise-ai/axpersona/pkg/models"
)

// SimulationService persists simulation lifecycle and results.
type SimulationService struct {
	db *gorm.DB
}

// NewSimulationService creates a SimulationService. A nil db puts the
// service in degraded mode: writes are rejected, reads return not-found.
func NewSimulationService(db *gorm.DB) *SimulationService {
	return &SimulationService{db: db}
}

// Create inserts a new simulation row in pending state.
func (s *SimulationService) Create(ctx context.Context, simulationID, userID string, brief models.BusinessContext, questions models.QuestionsData, cfg models.SimulationConfig) error {
	if simulationID == "" {
		return NewValidationError("simulation_id", "required")
	}
	if s.db == nil {
		return ErrStorageUnavailable
	}
	row := SimulationRow{
		SimulationID:    simulationID,
		UserID:          userID,
		Status:          string(models.SimulationPending),
		BusinessContext: toJSON(brief),
		QuestionsData:   toJSON(questions),
		Config:          toJSON(cfg),
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create simulation: %w", err)
	}
	return nil
}

// MarkRunning transitions a simulation to running.
func (s *SimulationService) MarkRunning(ctx context.Context, simulationID string) error {
	if s.db == nil {
		return ErrStorageUnavailable
	}
	err := s.db.WithContext(ctx).
		Model(&SimulationRow{}).
		Where("simulation_id = ?", simulationID).
		Update("status", string(models.SimulationRunning)).Error
	if err != nil {
		return fmt.Errorf("mark simulation running: %w", err)
	}
	return nil
}

// UpdateResults stores the outputs of a completed simulation and marks it
// terminal.
func (s *SimulationService) UpdateResults(ctx context.Context, simulationID string, personas []models.Persona, interviews []models.Interview, insights *models.SimulationInsights, formatted *models.FormattedData) error {
	if s.db == nil {
		return ErrStorageUnavailable
	}
	now := time.Now().UTC()
	updates := map[string]any{
		"status":       string(models.SimulationCompleted),
		"personas":     toJSON(personas),
		"interviews":   toJSON(interviews),
		"completed_at": &now,
	}
	if formatted != nil {
		updates["formatted_data"] = toJSON(formatted)
	}
	if insights != nil {
		updates["insights"] = toJSON(insights)
	}
	err := s.db.WithContext(ctx).
		Model(&SimulationRow{}).
		Where("simulation_id = ?", simulationID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("update simulation results: %w", err)
	}
	return nil
}

// MarkFailed stores the failure reason and marks the simulation terminal.
func (s *SimulationService) MarkFailed(ctx context.Context, simulationID string, cause error) error {
	if s.db == nil {
		return ErrStorageUnavailable
	}
	now := time.Now().UTC()
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	err := s.db.WithContext(ctx).
		Model(&SimulationRow{}).
		Where("simulation_id = ?", simulationID).
		Updates(map[string]any{
			"status":        string(models.SimulationFailed),
			"error_message": msg,
			"completed_at":  &now,
		}).Error
	if err != nil {
		return fmt.Errorf("mark simulation failed: %w", err)
	}
	return nil
}

// StoredSimulation is a simulation row decoded back into domain types.
type StoredSimulation struct {
	SimulationID    string
	UserID          string
	Status          models.SimulationStatus
	BusinessContext models.BusinessContext
	QuestionsData   models.QuestionsData
	Config          models.SimulationConfig
	Personas        []models.Persona
	Interviews      []models.Interview
	Insights        *models.SimulationInsights
	FormattedData   *models.FormattedData
	CreatedAt       time.Time
	CompletedAt     *time.Time
	Error           string
}

// Get loads one simulation by id.
func (s *SimulationService) Get(ctx context.Context, simulationID string) (*StoredSimulation, error) {
	if s.db == nil {
		return nil, ErrNotFound
	}
	var row SimulationRow
	if err := s.db.WithContext(ctx).First(&row, "simulation_id = ?", simulationID).Error; err != nil {
		return nil, readErr(err)
	}
	return decodeSimulationRow(row)
}

// ListCompleted returns all completed simulations, newest first.
func (s *SimulationService) ListCompleted(ctx context.Context) ([]*StoredSimulation, error) {
	if s.db == nil {
		return nil, nil
	}
	var rows []SimulationRow
	err := s.db.WithContext(ctx).
		Where("status = ?", string(models.SimulationCompleted)).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		if missingTable(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]*StoredSimulation, 0, len(rows))
	for _, row := range rows {
		decoded, err := decodeSimulationRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, decoded)
	}
	return out, nil
}

func decodeSimulationRow(row SimulationRow) (*StoredSimulation, error) {
	stored := &StoredSimulation{
		SimulationID: row.SimulationID,
		UserID:       row.UserID,
		Status:       models.SimulationStatus(row.Status),
		CreatedAt:    row.CreatedAt,
		CompletedAt:  row.CompletedAt,
		Error:        row.ErrorMessage,
	}
	if err := fromJSON(row.BusinessContext, &stored.BusinessContext); err != nil {
		return nil, fmt.Errorf("decode business_context: %w", err)
	}
	if err := fromJSON(row.QuestionsData, &stored.QuestionsData); err != nil {
		return nil, fmt.Errorf("decode questions_data: %w", err)
	}
	if err := fromJSON(row.Config, &stored.Config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := fromJSON(row.Personas, &stored.Personas); err != nil {
		return nil, fmt.Errorf("decode personas: %w", err)
	}
	if err := fromJSON(row.Interviews, &stored.Interviews); err != nil {
		return nil, fmt.Errorf("decode interviews: %w", err)
	}
	if len(row.Insights) > 0 {
		stored.Insights = &models.SimulationInsights{}
		if err := fromJSON(row.Insights, stored.Insights); err != nil {
			return nil, fmt.Errorf("decode insights: %w", err)
		}
	}
	if len(row.FormattedData) > 0 {
		stored.FormattedData = &models.FormattedData{}
		if err := fromJSON(row.FormattedData, stored.FormattedData); err != nil {
			return nil, fmt.Errorf("decode formatted_data: %w", err)
		}
	}
	return stored, nil
}
