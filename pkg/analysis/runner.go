package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/axwise-ai/axpersona/pkg/models"
	"github.com/axwise-ai/axpersona/pkg/services"
)

// analysisFileName names the synthetic corpus file recorded in envelopes.
const analysisFileName = "simulation_analysis.txt"

// ErrNoInterviewContent is returned when the resolved simulation carries no
// analysable interview text.
var ErrNoInterviewContent = errors.New("simulation contains no interview content to analyse")

// SimulationResolver loads a completed simulation by id. The simulation
// orchestrator satisfies this with its memory-then-repository lookup.
type SimulationResolver interface {
	Resolve(ctx context.Context, simulationID string) (*models.SimulationResult, error)
}

// Runner ties the analysis workflow to simulation resolution and envelope
// persistence.
type Runner struct {
	agent    *Analyzer
	analyses *services.AnalysisService
	sims     SimulationResolver
	provider string
	model    string
}

// NewRunner wires an analysis runner.
func NewRunner(agent *Analyzer, analyses *services.AnalysisService, sims SimulationResolver, provider, model string) *Runner {
	return &Runner{agent: agent, analyses: analyses, sims: sims, provider: provider, model: model}
}

// RunForSimulation resolves the simulation, builds the corpus, runs the
// analysis workflow, and persists the envelope. The numeric analysis id is
// exposed through both the return value and the envelope's ID field.
// Persistence failures degrade the run (logged, id zero) without failing
// an otherwise successful analysis.
func (r *Runner) RunForSimulation(ctx context.Context, simulationID string) (*models.DetailedAnalysis, int64, error) {
	sim, err := r.sims.Resolve(ctx, simulationID)
	if err != nil {
		return nil, 0, err
	}

	corpus := corpusFor(sim)
	if corpus == "" {
		return nil, 0, ErrNoInterviewContent
	}

	envelope, procErr := r.agent.Process(ctx, corpus, simulationID, analysisFileName)

	analysisID, saveErr := r.analyses.Insert(ctx, envelope, r.provider, r.model)
	if saveErr != nil {
		slog.Warn("Could not persist analysis envelope",
			"simulation_id", simulationID, "error", saveErr)
	} else {
		envelope.ID = strconv.FormatInt(analysisID, 10)
	}

	if procErr != nil {
		return envelope, analysisID, procErr
	}
	return envelope, analysisID, nil
}

// corpusFor prefers the simulation's analysis-ready text and falls back to
// rebuilding the transcript from interviews.
func corpusFor(sim *models.SimulationResult) string {
	if sim.Data != nil && strings.TrimSpace(sim.Data.AnalysisReadyText) != "" {
		return sim.Data.AnalysisReadyText
	}
	return transcript(sim.Personas, sim.Interviews)
}

// transcript rebuilds the stakeholder-aware interview transcript when the
// formatted payload is missing.
func transcript(personas []models.Persona, interviews []models.Interview) string {
	nameByID := make(map[string]string, len(personas))
	for _, p := range personas {
		nameByID[p.ID] = p.Name
	}

	var parts []string
	for _, iv := range interviews {
		name := nameByID[iv.PersonID]
		if name == "" {
			name = "Unknown"
		}
		parts = append(parts, fmt.Sprintf("=== Interview with %s (%s) ===", name, iv.StakeholderType))
		parts = append(parts, fmt.Sprintf("Overall Sentiment: %s", iv.OverallSentiment))
		if len(iv.KeyThemes) > 0 {
			parts = append(parts, fmt.Sprintf("Key Themes: %s", strings.Join(iv.KeyThemes, ", ")))
		}
		parts = append(parts, "")
		for i, r := range iv.Responses {
			parts = append(parts, fmt.Sprintf("Q%d: %s", i+1, r.Question))
			parts = append(parts, fmt.Sprintf("A%d: %s", i+1, r.Response))
			parts = append(parts, "")
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
