package export

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/axwise-ai/axpersona/pkg/models"
	"github.com/axwise-ai/axpersona/pkg/services"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "axpersona.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&services.SimulationRow{}, &services.AnalysisRow{}, &services.PipelineRunRow{}))
	return db
}

type stubResolver struct {
	sims map[string]*models.SimulationResult
}

func (s *stubResolver) Resolve(_ context.Context, simulationID string) (*models.SimulationResult, error) {
	if sim, ok := s.sims[simulationID]; ok {
		return sim, nil
	}
	return nil, services.ErrNotFound
}

func validRawPersona(name string) models.RawPersona {
	return models.RawPersona{
		Name:              name,
		Description:       "Careful, detail-oriented specialist",
		OverallConfidence: 0.8,
		GoalsAndMotivations: &models.RawTrait{
			Value:      "Wants to shift time from manual review to judgment calls",
			Confidence: 0.9,
			Evidence:   []string{"I want to spend my time on the hard calls, not the paperwork."},
		},
		KeyQuotes: []string{"There is simply zero room for error in my work."},
	}
}

func insertAnalysis(t *testing.T, analyses *services.AnalysisService, envelope *models.DetailedAnalysis) int64 {
	t.Helper()
	id, err := analyses.Insert(context.Background(), envelope, "gemini", "gemini-test")
	require.NoError(t, err)
	return id
}

func simulationWithInterviews(id string, n int) *models.SimulationResult {
	sim := &models.SimulationResult{Success: true, SimulationID: id}
	for i := 0; i < n; i++ {
		personID := id + "-p" + string(rune('0'+i))
		sim.Personas = append(sim.Personas, models.Persona{ID: personID, Name: "Person", StakeholderType: "PM"})
		sim.Interviews = append(sim.Interviews, models.Interview{
			PersonID:        personID,
			StakeholderType: []string{"PM", "Researcher"}[i%2],
		})
	}
	return sim
}

func TestAssembleQuality(t *testing.T) {
	db := openTestDB(t)
	analyses := services.NewAnalysisService(db)

	envelope := &models.DetailedAnalysis{
		SimulationID: "sim-1",
		Status:       models.AnalysisCompleted,
		Personas:     []models.RawPersona{validRawPersona("Anja"), validRawPersona("Ben")},
	}
	analysisID := insertAnalysis(t, analyses, envelope)

	resolver := &stubResolver{sims: map[string]*models.SimulationResult{
		"sim-1": simulationWithInterviews("sim-1", 4),
	}}

	assembler := NewAssembler(analyses, resolver)
	dataset, err := assembler.Assemble(context.Background(), analysisID)
	require.NoError(t, err)

	assert.NotEmpty(t, dataset.ScopeID)
	assert.Len(t, dataset.Personas, 2)
	// A simulation with N interviews yields interview_count = N.
	assert.Equal(t, 4, dataset.Quality.InterviewCount)
	assert.Equal(t, 2, dataset.Quality.StakeholderCoverage)
	assert.InDelta(t, 0.8, dataset.Quality.AvgPersonaQuality, 0.001)
	assert.Len(t, dataset.SimulationPeople, 4)
}

func TestAssemblePrefersEnhancedPersonas(t *testing.T) {
	analyses := services.NewAnalysisService(openTestDB(t))
	envelope := &models.DetailedAnalysis{
		Status:           models.AnalysisCompleted,
		Personas:         []models.RawPersona{validRawPersona("Plain")},
		EnhancedPersonas: []models.RawPersona{validRawPersona("Enhanced")},
	}
	analysisID := insertAnalysis(t, analyses, envelope)

	assembler := NewAssembler(analyses, &stubResolver{})
	dataset, err := assembler.Assemble(context.Background(), analysisID)
	require.NoError(t, err)
	require.Len(t, dataset.Personas, 1)
	assert.Equal(t, "Enhanced", dataset.Personas[0].Name)
}

func TestAssembleSkipsInvalidPersonas(t *testing.T) {
	analyses := services.NewAnalysisService(openTestDB(t))
	envelope := &models.DetailedAnalysis{
		Status: models.AnalysisCompleted,
		Personas: []models.RawPersona{
			validRawPersona("Valid"),
			{Name: "No traits at all"},
		},
	}
	analysisID := insertAnalysis(t, analyses, envelope)

	assembler := NewAssembler(analyses, &stubResolver{})
	dataset, err := assembler.Assemble(context.Background(), analysisID)
	require.NoError(t, err)
	assert.Len(t, dataset.Personas, 1)
}

func TestAssembleToleratesMissingSimulation(t *testing.T) {
	analyses := services.NewAnalysisService(openTestDB(t))
	envelope := &models.DetailedAnalysis{
		SimulationID: "gone",
		Status:       models.AnalysisCompleted,
		Personas:     []models.RawPersona{validRawPersona("Solo")},
	}
	analysisID := insertAnalysis(t, analyses, envelope)

	assembler := NewAssembler(analyses, &stubResolver{})
	dataset, err := assembler.Assemble(context.Background(), analysisID)
	require.NoError(t, err)
	assert.Empty(t, dataset.Interviews)
	assert.Empty(t, dataset.SimulationPeople)
	assert.Equal(t, 0, dataset.Quality.InterviewCount)
}

func TestAssembleUnknownAnalysis(t *testing.T) {
	assembler := NewAssembler(services.NewAnalysisService(openTestDB(t)), &stubResolver{})
	_, err := assembler.Assemble(context.Background(), 4242)
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrNotFound))
}

func TestAssembleMetadataAndEmptyTraits(t *testing.T) {
	analyses := services.NewAnalysisService(openTestDB(t))
	envelope := &models.DetailedAnalysis{
		SimulationID: "sim-m",
		Status:       models.AnalysisCompleted,
		Personas:     []models.RawPersona{validRawPersona("Meta")},
	}
	analysisID := insertAnalysis(t, analyses, envelope)

	resolver := &stubResolver{sims: map[string]*models.SimulationResult{
		"sim-m": simulationWithInterviews("sim-m", 1),
	}}
	dataset, err := NewAssembler(analyses, resolver).Assemble(context.Background(), analysisID)
	require.NoError(t, err)

	persona := dataset.Personas[0]
	assert.Equal(t, analysisID, persona.Metadata["analysis_id"])
	assert.Equal(t, "sim-m", persona.Metadata["simulation_id"])
	assert.Equal(t, "axpersona_pipeline", persona.Metadata["source"])
	// Dropped traits flatten to empty wrappers, never nil.
	assert.NotNil(t, persona.ChallengesAndFrustrations.Evidence)
	assert.Equal(t, 0.7, persona.ChallengesAndFrustrations.Confidence)
}
