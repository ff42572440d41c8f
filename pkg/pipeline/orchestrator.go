// Package pipeline implements the four-stage orchestrator that drives
// questionnaire generation, simulation, analysis, and dataset export for
// one run.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/axwise-ai/axpersona/pkg/export"
	"github.com/axwise-ai/axpersona/pkg/models"
	"github.com/axwise-ai/axpersona/pkg/questionnaire"
	"github.com/axwise-ai/axpersona/pkg/simulation"

	analysispkg "github.com/axwise-ai/axpersona/pkg/analysis"
)

// stageOutcome is the result value a stage hands back to the orchestrator:
// either outputs on success or the failure. Stages never panic across this
// boundary.
type stageOutcome struct {
	outputs map[string]any
	err     error
}

// Orchestrator drives the four pipeline stages sequentially, records a
// trace entry per stage, skips downstream stages after an upstream
// failure, and classifies the terminal status.
type Orchestrator struct {
	questionnaire *questionnaire.Builder
	simulation    *simulation.Orchestrator
	analysis      *analysispkg.Runner
	export        *export.Assembler
	simConfig     models.SimulationConfig
}

// New wires a stage orchestrator. simConfig is the configuration applied to
// the simulation stage of every run.
func New(qb *questionnaire.Builder, sim *simulation.Orchestrator, an *analysispkg.Runner, ex *export.Assembler, simConfig models.SimulationConfig) *Orchestrator {
	simConfig.Normalize()
	return &Orchestrator{
		questionnaire: qb,
		simulation:    sim,
		analysis:      an,
		export:        ex,
		simConfig:     simConfig,
	}
}

// Execute runs the pipeline end-to-end. The trace and any dataset are
// returned regardless of terminal status; failures are recorded, never
// re-raised.
func (o *Orchestrator) Execute(ctx context.Context, brief models.BusinessContext, pipelineID string) *models.ExecutionResult {
	log := slog.With("pipeline_id", pipelineID)
	log.Info("Pipeline execution started")
	startedAt := time.Now().UTC()

	var trace []models.StageTrace
	var questions *models.QuestionsData
	var sim *models.SimulationResult
	var analysisEnvelope *models.DetailedAnalysis
	var analysisID int64
	var dataset *models.PersonaDataset

	prevCompleted := func() bool {
		return len(trace) == 0 || trace[len(trace)-1].Status == models.StageCompleted
	}

	runStage := func(name string, ready bool, skipReason string, run func() stageOutcome) {
		stageStart := time.Now().UTC()
		log.Info("Pipeline stage started", "stage", name)

		entry := models.StageTrace{
			StageName: name,
			StartedAt: stageStart,
			Outputs:   map[string]any{},
		}
		if !ready {
			entry.Status = models.StageSkipped
			entry.Error = skipReason
		} else {
			outcome := run()
			if outcome.err != nil {
				entry.Status = models.StageFailed
				entry.Error = outcome.err.Error()
				log.Error("Pipeline stage failed", "stage", name, "error", outcome.err)
			} else {
				entry.Status = models.StageCompleted
				if outcome.outputs != nil {
					entry.Outputs = outcome.outputs
				}
			}
		}
		entry.CompletedAt = time.Now().UTC()
		entry.DurationSeconds = entry.CompletedAt.Sub(entry.StartedAt).Seconds()
		trace = append(trace, entry)
	}

	// Stage 1: questionnaire generation.
	runStage(models.StageQuestionnaire, true, "", func() stageOutcome {
		generated, err := o.questionnaire.Build(ctx, brief)
		if err != nil {
			return stageOutcome{err: err}
		}
		questions = generated
		return stageOutcome{outputs: map[string]any{
			"primary_stakeholder_count":   len(generated.Stakeholders.Primary),
			"secondary_stakeholder_count": len(generated.Stakeholders.Secondary),
			"total_stakeholder_count":     len(generated.Stakeholders.All()),
			"total_question_count":        generated.Stakeholders.TotalQuestions(),
		}}
	})

	// Stage 2: simulation.
	runStage(models.StageSimulation, questions != nil && prevCompleted(),
		"Skipped because questionnaire_generation did not complete.", func() stageOutcome {
			result, err := o.simulation.Run(ctx, brief, *questions, o.simConfig, "", nil)
			if err != nil {
				return stageOutcome{err: err}
			}
			sim = result
			return stageOutcome{outputs: map[string]any{
				"simulation_id":    result.SimulationID,
				"total_personas":   len(result.Personas),
				"total_interviews": len(result.Interviews),
			}}
		})

	// Stage 3: analysis.
	runStage(models.StageAnalysis, sim != nil && prevCompleted(),
		"Skipped because simulation did not complete.", func() stageOutcome {
			envelope, id, err := o.analysis.RunForSimulation(ctx, sim.SimulationID)
			if err != nil {
				return stageOutcome{err: err}
			}
			analysisEnvelope = envelope
			analysisID = id
			return stageOutcome{outputs: map[string]any{
				"analysis_id":   id,
				"persona_count": len(envelope.Personas),
				"theme_count":   len(envelope.Themes),
			}}
		})

	// Stage 4: persona dataset export.
	runStage(models.StageExport, analysisEnvelope != nil && prevCompleted(),
		"Skipped because analysis did not complete.", func() stageOutcome {
			assembled, err := o.export.Assemble(ctx, analysisID)
			if err != nil {
				return stageOutcome{err: err}
			}
			dataset = assembled
			return stageOutcome{outputs: map[string]any{
				"scope_id":        assembled.ScopeID,
				"persona_count":   len(assembled.Personas),
				"interview_count": len(assembled.Interviews),
				"quality":         assembled.Quality,
			}}
		})

	result := &models.ExecutionResult{
		Dataset:              dataset,
		ExecutionTrace:       trace,
		TotalDurationSeconds: time.Since(startedAt).Seconds(),
		Status:               classify(trace, dataset),
	}
	log.Info("Pipeline execution finished",
		"status", result.Status,
		"duration_seconds", result.TotalDurationSeconds)
	return result
}

// classify derives the terminal run status from the trace: completed when
// every stage completed and a dataset exists, partial when some stage
// completed, failed otherwise.
func classify(trace []models.StageTrace, dataset *models.PersonaDataset) models.RunStatus {
	any, all := false, true
	for _, entry := range trace {
		if entry.Status == models.StageCompleted {
			any = true
		} else {
			all = false
		}
	}
	switch {
	case all && dataset != nil:
		return models.RunCompleted
	case any:
		return models.RunPartial
	default:
		return models.RunFailed
	}
}
