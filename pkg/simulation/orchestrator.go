package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/axwise-ai/axpersona/pkg/cache"
	"github.com/axwise-ai/axpersona/pkg/llm"
	"github.com/axwise-ai/axpersona/pkg/models"
	"github.com/axwise-ai/axpersona/pkg/services"
)

// Orchestrator coordinates persona generation, the interview fanout,
// insight generation, data formatting, and persistence for one simulation.
// Completed simulations are kept in memory so the analysis stage can
// resolve them without a database round-trip.
type Orchestrator struct {
	gateway   llm.Gateway
	personas  *PersonaGenerator
	fanout    *Fanout
	formatter Formatter
	sims      *services.SimulationService

	mu        sync.RWMutex
	completed map[string]*models.SimulationResult
}

// NewOrchestrator wires a simulation orchestrator.
func NewOrchestrator(gateway llm.Gateway, ivCache *cache.InterviewCache, sims *services.SimulationService, maxConcurrent int) *Orchestrator {
	return &Orchestrator{
		gateway:   gateway,
		personas:  NewPersonaGenerator(gateway),
		fanout:    NewFanout(gateway, ivCache, maxConcurrent),
		sims:      sims,
		completed: make(map[string]*models.SimulationResult),
	}
}

// Run executes a complete simulation: create the persistent record, generate
// personas, fan out interviews, optionally generate insights, format the
// results, and persist them. Storage failures are logged and degrade the
// run rather than failing it.
func (o *Orchestrator) Run(ctx context.Context, brief models.BusinessContext, questions models.QuestionsData, cfg models.SimulationConfig, userID string, progress ProgressFunc) (*models.SimulationResult, error) {
	cfg.Normalize()
	simulationID := uuid.New().String()
	log := slog.With("simulation_id", simulationID)
	log.Info("Starting simulation",
		"stakeholders", len(questions.Stakeholders.All()),
		"people_per_stakeholder", cfg.PeoplePerStakeholder)

	if err := o.sims.Create(ctx, simulationID, userID, brief, questions, cfg); err != nil {
		log.Warn("Could not persist simulation record", "error", err)
	} else if err := o.sims.MarkRunning(ctx, simulationID); err != nil {
		log.Warn("Could not mark simulation running", "error", err)
	}

	result, err := o.run(ctx, simulationID, brief, questions, cfg, progress)
	if err != nil {
		if markErr := o.sims.MarkFailed(ctx, simulationID, err); markErr != nil {
			log.Warn("Could not mark simulation failed", "error", markErr)
		}
		log.Error("Simulation failed", "error", err)
		return nil, err
	}

	if err := o.sims.UpdateResults(ctx, simulationID, result.Personas, result.Interviews, result.Insights, result.Data); err != nil {
		log.Warn("Could not persist simulation results", "error", err)
	}

	o.mu.Lock()
	o.completed[simulationID] = result
	o.mu.Unlock()

	log.Info("Simulation completed",
		"personas", len(result.Personas), "interviews", len(result.Interviews))
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, simulationID string, brief models.BusinessContext, questions models.QuestionsData, cfg models.SimulationConfig, progress ProgressFunc) (*models.SimulationResult, error) {
	personas, err := o.personas.GenerateAll(ctx, questions.Stakeholders, brief, cfg)
	if err != nil {
		return nil, err
	}
	if len(personas) == 0 {
		return nil, fmt.Errorf("no personas could be generated for any stakeholder")
	}

	interviews, err := o.fanout.SimulateAll(ctx, personas, questions.Stakeholders, brief, cfg, progress)
	if err != nil {
		return nil, err
	}
	if len(interviews) == 0 {
		return nil, fmt.Errorf("no interviews completed for simulation %s", simulationID)
	}

	var insights *models.SimulationInsights
	if cfg.IncludeInsights {
		insights, err = generateInsights(ctx, o.gateway, interviews, brief)
		if err != nil {
			if llm.IsCancelled(err) {
				return nil, err
			}
			slog.Warn("Insight generation failed, continuing without insights",
				"simulation_id", simulationID, "error", err)
			insights = nil
		}
	}

	formatted := o.formatter.Format(personas, interviews, brief, simulationID)

	result := &models.SimulationResult{
		Success:      true,
		Message:      "Simulation completed successfully",
		SimulationID: simulationID,
		Data:         formatted,
		Metadata: map[string]any{
			"total_personas":    len(personas),
			"total_interviews":  len(interviews),
			"simulation_config": cfg,
			"created_at":        time.Now().UTC().Format(time.RFC3339),
		},
		Personas:   personas,
		Interviews: interviews,
		Insights:   insights,
	}
	if insights != nil {
		result.Recommendations = insights.Recommendations
	}
	return result, nil
}

// Completed returns an in-memory completed simulation, if present.
func (o *Orchestrator) Completed(simulationID string) (*models.SimulationResult, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	result, ok := o.completed[simulationID]
	return result, ok
}

// Resolve returns a completed simulation from memory, falling back to the
// repository. Unknown simulations yield services.ErrNotFound.
func (o *Orchestrator) Resolve(ctx context.Context, simulationID string) (*models.SimulationResult, error) {
	if result, ok := o.Completed(simulationID); ok {
		return result, nil
	}

	stored, err := o.sims.Get(ctx, simulationID)
	if err != nil {
		return nil, err
	}

	result := &models.SimulationResult{
		Success:      true,
		Message:      "Simulation loaded from database",
		SimulationID: stored.SimulationID,
		Data:         stored.FormattedData,
		Metadata: map[string]any{
			"total_personas":   len(stored.Personas),
			"total_interviews": len(stored.Interviews),
			"status":           string(stored.Status),
		},
		Personas:   stored.Personas,
		Interviews: stored.Interviews,
		Insights:   stored.Insights,
	}
	return result, nil
}
