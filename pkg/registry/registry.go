// Package registry manages background pipeline jobs: it creates persistent
// run rows, tracks volatile in-memory status for fast polling, supervises
// the background tasks, and serves historical queries from the repository.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/axwise-ai/axpersona/pkg/models"
	"github.com/axwise-ai/axpersona/pkg/pipeline"
	"github.com/axwise-ai/axpersona/pkg/services"
)

// Registry creates and tracks pipeline jobs. The in-memory state is a
// volatile mirror; the repository is authoritative.
type Registry struct {
	runs *services.RunService
	orch *pipeline.Orchestrator

	baseCtx context.Context
	mu      sync.RWMutex
	jobs    map[string]*models.JobStatus
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a Registry. baseCtx bounds the lifetime of all background
// jobs; cancelling it cancels every running pipeline.
func New(baseCtx context.Context, runs *services.RunService, orch *pipeline.Orchestrator) *Registry {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Registry{
		runs:    runs,
		orch:    orch,
		baseCtx: baseCtx,
		jobs:    make(map[string]*models.JobStatus),
		cancels: make(map[string]context.CancelFunc),
	}
}

// CreateJob persists a pending run row and spawns the background pipeline
// task. It returns immediately with the pending job status. Jobs are
// independent; the registry never serializes them.
func (r *Registry) CreateJob(ctx context.Context, brief models.BusinessContext) (*models.JobStatus, error) {
	if err := brief.Validate(); err != nil {
		return nil, err
	}

	jobID := uuid.New().String()
	createdAt := time.Now().UTC()

	if err := r.runs.Create(ctx, jobID, brief, nil); err != nil {
		slog.Warn("Could not persist pipeline run row", "job_id", jobID, "error", err)
	}

	job := &models.JobStatus{
		JobID:     jobID,
		Status:    models.RunPending,
		CreatedAt: createdAt,
	}

	jobCtx, cancel := context.WithCancel(r.baseCtx)

	r.mu.Lock()
	r.jobs[jobID] = job
	r.cancels[jobID] = cancel
	r.mu.Unlock()

	// Snapshot before the task starts so callers always observe pending.
	pending := *job

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.finish(jobID, cancel)
		r.runJob(jobCtx, jobID, brief)
	}()

	slog.Info("Created background pipeline job", "job_id", jobID)
	return &pending, nil
}

// finish removes the supervisor entry for a completed task.
func (r *Registry) finish(jobID string, cancel context.CancelFunc) {
	cancel()
	r.mu.Lock()
	delete(r.cancels, jobID)
	r.mu.Unlock()
}

// runJob executes one pipeline in the background: transition to running,
// invoke the orchestrator, and persist the terminal state. Any failure is
// absorbed and recorded as a failed run.
func (r *Registry) runJob(ctx context.Context, jobID string, brief models.BusinessContext) {
	log := slog.With("job_id", jobID)
	log.Info("Pipeline job started")

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("Pipeline job panicked", "panic", rec)
			r.markFailed(jobID, fmt.Sprintf("internal error: %v", rec))
		}
	}()

	startedAt := time.Now().UTC()
	r.update(jobID, func(job *models.JobStatus) {
		job.Status = models.RunRunning
		job.StartedAt = &startedAt
	})
	if err := r.runs.UpdateStatus(context.Background(), jobID, models.RunRunning, &startedAt, nil, ""); err != nil {
		log.Warn("Could not persist running status", "error", err)
	}

	result := r.orch.Execute(ctx, brief, jobID)
	completedAt := time.Now().UTC()

	if ctx.Err() != nil {
		log.Warn("Pipeline job cancelled")
		r.markFailed(jobID, "pipeline run cancelled")
		return
	}

	r.update(jobID, func(job *models.JobStatus) {
		job.Status = result.Status
		job.CompletedAt = &completedAt
		job.Result = result
	})

	if err := r.runs.UpdateStatus(context.Background(), jobID, result.Status, nil, &completedAt, ""); err != nil {
		log.Warn("Could not persist terminal status", "error", err)
	}
	if err := r.runs.UpdateResults(context.Background(), jobID, extractResults(result)); err != nil {
		log.Warn("Could not persist run results", "error", err)
	}

	log.Info("Pipeline job finished", "status", result.Status)
}

// markFailed records a failed terminal state in memory and storage.
func (r *Registry) markFailed(jobID, message string) {
	completedAt := time.Now().UTC()
	r.update(jobID, func(job *models.JobStatus) {
		job.Status = models.RunFailed
		job.CompletedAt = &completedAt
		job.Error = message
	})
	if err := r.runs.UpdateStatus(context.Background(), jobID, models.RunFailed, nil, &completedAt, message); err != nil {
		slog.Warn("Could not persist failed status", "job_id", jobID, "error", err)
	}
}

// extractResults pulls the scalar counts out of the execution trace for
// quick access on run rows.
func extractResults(result *models.ExecutionResult) services.RunResults {
	out := services.RunResults{
		ExecutionTrace:       result.ExecutionTrace,
		TotalDurationSeconds: result.TotalDurationSeconds,
		Dataset:              result.Dataset,
	}

	for _, stage := range result.ExecutionTrace {
		switch stage.StageName {
		case models.StageQuestionnaire:
			if n, ok := intOutput(stage.Outputs, "total_stakeholder_count"); ok {
				out.QuestionnaireStakeholderCount = &n
			}
		case models.StageSimulation:
			if id, ok := stage.Outputs["simulation_id"].(string); ok && id != "" {
				out.SimulationID = &id
			}
		case models.StageAnalysis:
			if id, ok := int64Output(stage.Outputs, "analysis_id"); ok {
				out.AnalysisID = &id
			}
			if n, ok := intOutput(stage.Outputs, "persona_count"); ok {
				out.PersonaCount = &n
			}
		case models.StageExport:
			if n, ok := intOutput(stage.Outputs, "interview_count"); ok {
				out.InterviewCount = &n
			}
			if out.PersonaCount == nil {
				if n, ok := intOutput(stage.Outputs, "persona_count"); ok {
					out.PersonaCount = &n
				}
			}
		}
	}
	return out
}

// intOutput reads an integer from a stage output map, tolerating the
// float64 shape JSON round-trips produce.
func intOutput(outputs map[string]any, key string) (int, bool) {
	switch v := outputs[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func int64Output(outputs map[string]any, key string) (int64, bool) {
	switch v := outputs[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// update mutates an in-memory job under the lock.
func (r *Registry) update(jobID string, fn func(*models.JobStatus)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[jobID]; ok {
		fn(job)
	}
}

// snapshot returns a copy of an in-memory job.
func (r *Registry) snapshot(jobID string) *models.JobStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return nil
	}
	copied := *job
	return &copied
}

// GetJob returns a job's status, consulting memory first and falling back
// to the repository. A completed historical run with a dataset gets its
// execution result reconstructed.
func (r *Registry) GetJob(ctx context.Context, jobID string) (*models.JobStatus, error) {
	if job := r.snapshot(jobID); job != nil {
		return job, nil
	}

	stored, err := r.runs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}

	job := &models.JobStatus{
		JobID:       stored.JobID,
		Status:      stored.Status,
		CreatedAt:   stored.CreatedAt,
		StartedAt:   stored.StartedAt,
		CompletedAt: stored.CompletedAt,
		Error:       stored.Error,
	}
	if stored.Status == models.RunCompleted && stored.Dataset != nil {
		total := 0.0
		if stored.TotalDurationSeconds != nil {
			total = *stored.TotalDurationSeconds
		}
		job.Result = &models.ExecutionResult{
			Dataset:              stored.Dataset,
			ExecutionTrace:       stored.ExecutionTrace,
			TotalDurationSeconds: total,
			Status:               stored.Status,
		}
	}
	return job, nil
}

// Cancel requests cancellation of a running job. It reports whether the
// job was found in the supervisor.
func (r *Registry) Cancel(jobID string) bool {
	r.mu.RLock()
	cancel, ok := r.cancels[jobID]
	r.mu.RUnlock()
	if ok {
		cancel()
	}
	return ok
}

// ListRuns returns a page of historical run summaries.
func (r *Registry) ListRuns(ctx context.Context, status string, limit, offset int) (*models.RunList, error) {
	if limit <= 0 {
		limit = services.DefaultRunListLimit
	}
	if limit > services.MaxRunListLimit {
		limit = services.MaxRunListLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.runs.List(ctx, nil, status, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := r.runs.Count(ctx, nil, status)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.RunSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, models.RunSummary{
			JobID:                         row.JobID,
			Status:                        row.Status,
			CreatedAt:                     row.CreatedAt,
			StartedAt:                     row.StartedAt,
			CompletedAt:                   row.CompletedAt,
			DurationSeconds:               row.DurationSeconds,
			BusinessIdea:                  row.BusinessContext.BusinessIdea,
			TargetCustomer:                row.BusinessContext.TargetCustomer,
			Industry:                      row.BusinessContext.Industry,
			Location:                      row.BusinessContext.Location,
			QuestionnaireStakeholderCount: row.QuestionnaireStakeholderCount,
			PersonaCount:                  row.PersonaCount,
			InterviewCount:                row.InterviewCount,
			Error:                         row.Error,
		})
	}

	return &models.RunList{Runs: summaries, Total: total, Limit: limit, Offset: offset}, nil
}

// GetRunDetail returns the full record of one run, including trace and
// dataset.
func (r *Registry) GetRunDetail(ctx context.Context, jobID string) (*models.RunDetail, error) {
	stored, err := r.runs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return &models.RunDetail{
		JobID:                         stored.JobID,
		Status:                        stored.Status,
		CreatedAt:                     stored.CreatedAt,
		StartedAt:                     stored.StartedAt,
		CompletedAt:                   stored.CompletedAt,
		DurationSeconds:               stored.DurationSeconds,
		BusinessContext:               stored.BusinessContext,
		ExecutionTrace:                stored.ExecutionTrace,
		TotalDurationSeconds:          stored.TotalDurationSeconds,
		Dataset:                       stored.Dataset,
		QuestionnaireStakeholderCount: stored.QuestionnaireStakeholderCount,
		SimulationID:                  stored.SimulationID,
		AnalysisID:                    stored.AnalysisID,
		PersonaCount:                  stored.PersonaCount,
		InterviewCount:                stored.InterviewCount,
		Error:                         stored.Error,
	}, nil
}

// ActiveJobs returns the ids of jobs currently supervised.
func (r *Registry) ActiveJobs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.cancels))
	for id := range r.cancels {
		ids = append(ids, id)
	}
	return ids
}

// Shutdown waits for in-flight jobs to finish. Callers wanting a prompt
// stop should cancel the base context first.
func (r *Registry) Shutdown() {
	r.wg.Wait()
}
