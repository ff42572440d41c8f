package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/axwise-ai/axpersona/pkg/models"
)

// AnalysisService persists analysis envelopes.
type AnalysisService struct {
	db *gorm.DB
}

// NewAnalysisService creates an AnalysisService. A nil db puts the service
// in degraded mode.
func NewAnalysisService(db *gorm.DB) *AnalysisService {
	return &AnalysisService{db: db}
}

// Insert stores one analysis envelope and returns its surrogate id.
func (s *AnalysisService) Insert(ctx context.Context, envelope *models.DetailedAnalysis, provider, model string) (int64, error) {
	if envelope == nil {
		return 0, NewValidationError("envelope", "required")
	}
	if s.db == nil {
		return 0, ErrStorageUnavailable
	}
	row := AnalysisRow{
		Status:       envelope.Status,
		Results:      toJSON(envelope),
		LLMProvider:  provider,
		LLMModel:     model,
		CreatedAt:    time.Now().UTC(),
		ErrorMessage: envelope.Error,
	}
	if envelope.SimulationID != "" {
		simID := envelope.SimulationID
		row.SimulationID = &simID
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("insert analysis: %w", err)
	}
	return row.AnalysisID, nil
}

// StoredAnalysis is an analysis row decoded back into the envelope.
type StoredAnalysis struct {
	AnalysisID   int64
	SimulationID string
	Status       string
	Envelope     models.DetailedAnalysis
	LLMProvider  string
	LLMModel     string
	CreatedAt    time.Time
	Error        string
}

// Get loads one analysis by id.
func (s *AnalysisService) Get(ctx context.Context, analysisID int64) (*StoredAnalysis, error) {
	if s.db == nil {
		return nil, ErrNotFound
	}
	var row AnalysisRow
	if err := s.db.WithContext(ctx).First(&row, "analysis_id = ?", analysisID).Error; err != nil {
		return nil, readErr(err)
	}

	stored := &StoredAnalysis{
		AnalysisID:  row.AnalysisID,
		Status:      row.Status,
		LLMProvider: row.LLMProvider,
		LLMModel:    row.LLMModel,
		CreatedAt:   row.CreatedAt,
		Error:       row.ErrorMessage,
	}
	if row.SimulationID != nil {
		stored.SimulationID = *row.SimulationID
	}
	if err := fromJSON(row.Results, &stored.Envelope); err != nil {
		return nil, fmt.Errorf("decode analysis envelope: %w", err)
	}
	// The envelope's simulation reference is soft; the column wins when the
	// serialised copy predates it.
	if stored.Envelope.SimulationID == "" {
		stored.Envelope.SimulationID = stored.SimulationID
	}
	return stored, nil
}
