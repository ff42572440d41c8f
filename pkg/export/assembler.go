// Package export implements stage 4: assembling an analysis envelope and
// its originating simulation into a persona dataset.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/axwise-ai/axpersona/pkg/analysis"
	"github.com/axwise-ai/axpersona/pkg/models"
	"github.com/axwise-ai/axpersona/pkg/services"
)

// Assembler builds persona datasets from persisted analyses.
type Assembler struct {
	analyses *services.AnalysisService
	sims     analysis.SimulationResolver
}

// NewAssembler wires a dataset assembler.
func NewAssembler(analyses *services.AnalysisService, sims analysis.SimulationResolver) *Assembler {
	return &Assembler{analyses: analyses, sims: sims}
}

// Assemble loads the analysis, recovers the originating simulation when it
// still exists (a missing simulation degrades to empty interviews and
// people), normalises personas, and computes quality metrics.
func (a *Assembler) Assemble(ctx context.Context, analysisID int64) (*models.PersonaDataset, error) {
	stored, err := a.analyses.Get(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	envelope := stored.Envelope
	if envelope.ID == "" {
		envelope.ID = strconv.FormatInt(analysisID, 10)
	}

	var interviews []models.Interview
	var simulationPeople []models.Persona
	simulationID := envelope.SimulationID
	if simulationID != "" {
		sim, err := a.sims.Resolve(ctx, simulationID)
		switch {
		case err == nil:
			interviews = sim.Interviews
			simulationPeople = sim.Personas
		case errors.Is(err, services.ErrNotFound):
			slog.Warn("Simulation referenced by analysis could not be loaded",
				"simulation_id", simulationID, "analysis_id", analysisID)
		default:
			return nil, err
		}
	}

	personas := buildProductionPersonas(personaSource(envelope), analysisID, simulationID)

	description := fmt.Sprintf("Persona dataset generated from analysis %d", analysisID)
	if simulationID != "" {
		description += fmt.Sprintf(" (simulation %s)", simulationID)
	}

	dataset := &models.PersonaDataset{
		ScopeID:          uuid.New().String(),
		ScopeName:        fmt.Sprintf("AxPersona Scope %d", analysisID),
		Description:      description,
		Personas:         personas,
		Interviews:       emptyIfNil(interviews),
		Analysis:         envelope,
		SimulationPeople: emptyIfNil(simulationPeople),
		Quality:          quality(interviews, personas),
	}
	return dataset, nil
}

// personaSource prefers enhanced personas when the analysis produced any.
func personaSource(envelope models.DetailedAnalysis) []models.RawPersona {
	if len(envelope.EnhancedPersonas) > 0 {
		return envelope.EnhancedPersonas
	}
	return envelope.Personas
}

// buildProductionPersonas canonicalises raw personas, silently skipping
// those that fail validation, and adapts survivors to the frontend view.
func buildProductionPersonas(raw []models.RawPersona, analysisID int64, simulationID string) []models.ProductionPersona {
	out := make([]models.ProductionPersona, 0, len(raw))
	for _, rp := range raw {
		canonical, ok := analysis.NormalizePersona(rp)
		if !ok {
			continue
		}

		archetype := canonical.Archetype
		if archetype == "" {
			archetype = "Professional"
		}

		metadata := map[string]any{
			"source":      "axpersona_pipeline",
			"analysis_id": analysisID,
		}
		if simulationID != "" {
			metadata["simulation_id"] = simulationID
		}

		out = append(out, models.ProductionPersona{
			Name:                      canonical.Name,
			Description:               canonical.Description,
			Archetype:                 archetype,
			Demographics:              demographicsTrait(canonical.Demographics),
			GoalsAndMotivations:       flattenTrait(canonical.GoalsAndMotivations),
			ChallengesAndFrustrations: flattenTrait(canonical.ChallengesAndFrustrations),
			KeyQuotes:                 flattenTrait(canonical.KeyQuotes),
			OverallConfidence:         canonical.OverallConfidence,
			Patterns:                  emptyIfNil(canonical.Patterns),
			Metadata:                  metadata,
		})
	}
	slog.Info("Production personas assembled", "survived", len(out), "source", len(raw))
	return out
}

// flattenTrait converts an accepted canonical trait to the frontend wrapper;
// a dropped trait yields an empty wrapper with default confidence.
func flattenTrait(trait *models.PersonaTrait) models.PersonaTrait {
	if trait == nil {
		return models.PersonaTrait{Confidence: 0.7, Evidence: []string{}}
	}
	return *trait
}

// demographicsTrait flattens the structured demographics bundle into one
// frontend trait, combining the routed sub-field evidence.
func demographicsTrait(demo *analysis.StructuredDemographics) models.PersonaTrait {
	if demo == nil {
		return models.PersonaTrait{Confidence: 0.7, Evidence: []string{}}
	}

	value := "Demographics from interview evidence"
	if demo.ProfessionalContext != nil {
		value = demo.ProfessionalContext.Value
	}

	seen := make(map[string]struct{})
	var evidence []string
	for _, trait := range []*models.PersonaTrait{
		demo.ExperienceLevel, demo.Industry, demo.Location, demo.Roles, demo.ProfessionalContext,
	} {
		if trait == nil {
			continue
		}
		for _, item := range trait.Evidence {
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
			evidence = append(evidence, item)
		}
	}
	return models.PersonaTrait{Value: value, Confidence: demo.Confidence, Evidence: evidence}
}

// quality computes the dataset quality metrics.
func quality(interviews []models.Interview, personas []models.ProductionPersona) models.DatasetQuality {
	types := make(map[string]struct{})
	for _, iv := range interviews {
		if iv.StakeholderType != "" {
			types[iv.StakeholderType] = struct{}{}
		}
	}

	avg := 0.0
	if len(personas) > 0 {
		total := 0.0
		for _, p := range personas {
			total += p.OverallConfidence
		}
		avg = total / float64(len(personas))
	}

	return models.DatasetQuality{
		InterviewCount:      len(interviews),
		StakeholderCoverage: len(types),
		AvgPersonaQuality:   avg,
	}
}

func emptyIfNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
