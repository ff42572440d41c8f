package registry

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/axwise-ai/axpersona/pkg/cache"
	"github.com/axwise-ai/axpersona/pkg/export"
	"github.com/axwise-ai/axpersona/pkg/llm"
	"github.com/axwise-ai/axpersona/pkg/models"
	"github.com/axwise-ai/axpersona/pkg/pipeline"
	"github.com/axwise-ai/axpersona/pkg/questionnaire"
	"github.com/axwise-ai/axpersona/pkg/services"
	"github.com/axwise-ai/axpersona/pkg/simulation"

	analysispkg "github.com/axwise-ai/axpersona/pkg/analysis"
)

var testBrief = models.BusinessContext{
	BusinessIdea:   "AI research automation",
	TargetCustomer: "EU SaaS PMs",
	Problem:        "manual research is slow",
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "axpersona.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&services.SimulationRow{}, &services.AnalysisRow{}, &services.PipelineRunRow{}))
	return db
}

func happyGateway() *llm.MockGateway {
	return llm.NewMockGateway().
		Handle(llm.TaskQuestionnaireBuild, llm.RespondJSON(llm.RawQuestionnaire{
			PrimaryStakeholders: []llm.RawStakeholder{{
				Name:      "Product Manager",
				Questions: llm.QuestionPhases{ProblemDiscovery: []string{"Q1"}},
			}},
			SecondaryStakeholders: []llm.RawStakeholder{{
				Name:      "Researcher",
				Questions: llm.QuestionPhases{ProblemDiscovery: []string{"Q2"}},
			}},
		})).
		Handle(llm.TaskPersonaBatch, llm.RespondJSON(llm.PersonaBatch{People: []models.Persona{
			{Name: "Dana Fox, PM", Age: 34, Background: "SaaS PM"},
		}})).
		Handle(llm.TaskInterviewSimulation, llm.RespondJSON(models.Interview{
			Responses:        []models.InterviewResponse{{Question: "Q1", Response: "An answer.", Sentiment: "neutral"}},
			OverallSentiment: "neutral",
		})).
		Handle(llm.TaskSimulationInsights, llm.RespondJSON(models.SimulationInsights{OverallSentiment: "neutral"})).
		Handle(llm.TaskThemeExtraction, llm.RespondJSON(llm.ThemesResult{Themes: []models.Theme{{Name: "T"}}})).
		Handle(llm.TaskPatternDetection, llm.RespondJSON(llm.PatternsResult{})).
		Handle(llm.TaskStakeholderAnalysis, llm.RespondJSON(llm.StakeholderResult{})).
		Handle(llm.TaskSentimentAnalysis, llm.RespondJSON(llm.SentimentResult{})).
		Handle(llm.TaskPersonaSynthesis, llm.RespondJSON(llm.PersonaSynthesisResult{
			Personas: []models.RawPersona{{
				Name:        "The Overloaded PM",
				Description: "Drowning in manual work",
				GoalsAndMotivations: &models.RawTrait{
					Value:      "Wants research handled end to end",
					Confidence: 0.8,
					Evidence:   []string{"I just want the research to happen without me chasing it."},
				},
			}},
		})).
		Handle(llm.TaskInsightSynthesis, llm.RespondJSON(llm.InsightsResult{}))
}

func newTestRegistry(t *testing.T, db *gorm.DB, gw llm.Gateway) *Registry {
	t.Helper()
	simService := services.NewSimulationService(db)
	analysisService := services.NewAnalysisService(db)
	runService := services.NewRunService(db)

	builder := questionnaire.NewBuilder(gw)
	simOrch := simulation.NewOrchestrator(gw, cache.NewInterviewCache(), simService, 4)
	analyzer := analysispkg.NewAnalyzer(gw)
	runner := analysispkg.NewRunner(analyzer, analysisService, simOrch, "gemini", "gemini-test")
	assembler := export.NewAssembler(analysisService, simOrch)

	cfg := models.SimulationConfig{PeoplePerStakeholder: 1, IncludeInsights: false, Temperature: 0.5}
	orch := pipeline.New(builder, simOrch, runner, assembler, cfg)
	return New(context.Background(), runService, orch)
}

// waitTerminal polls the registry until the job reaches a terminal status.
func waitTerminal(t *testing.T, reg *Registry, jobID string) *models.JobStatus {
	t.Helper()
	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		job, err := reg.GetJob(context.Background(), jobID)
		require.NoError(t, err)
		if job.Status.IsTerminal() {
			return job
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("job did not reach a terminal status in time")
	return nil
}

func TestCreateJobReadAfterWrite(t *testing.T) {
	db := openTestDB(t)
	reg := newTestRegistry(t, db, happyGateway())

	job, err := reg.CreateJob(context.Background(), testBrief)
	require.NoError(t, err)
	require.NotEmpty(t, job.JobID)
	assert.Equal(t, models.RunPending, job.Status)

	// Immediately readable, whatever state the background task is in.
	got, err := reg.GetJob(context.Background(), job.JobID)
	require.NoError(t, err)
	assert.Equal(t, job.JobID, got.JobID)
	assert.Contains(t, []models.RunStatus{
		models.RunPending, models.RunRunning, models.RunCompleted, models.RunPartial, models.RunFailed,
	}, got.Status)

	terminal := waitTerminal(t, reg, job.JobID)
	assert.Equal(t, models.RunCompleted, terminal.Status)
	require.NotNil(t, terminal.Result)
	require.NotNil(t, terminal.Result.Dataset)
	require.NotNil(t, terminal.StartedAt)
	require.NotNil(t, terminal.CompletedAt)
}

func TestCreateJobRejectsInvalidBrief(t *testing.T) {
	reg := newTestRegistry(t, openTestDB(t), happyGateway())
	_, err := reg.CreateJob(context.Background(), models.BusinessContext{})
	require.Error(t, err)

	var fieldErr *models.FieldError
	assert.ErrorAs(t, err, &fieldErr)
}

func TestJobPersistsResultsToRepository(t *testing.T) {
	db := openTestDB(t)
	reg := newTestRegistry(t, db, happyGateway())

	job, err := reg.CreateJob(context.Background(), testBrief)
	require.NoError(t, err)
	waitTerminal(t, reg, job.JobID)
	reg.Shutdown()

	detail, err := reg.GetRunDetail(context.Background(), job.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.RunCompleted, detail.Status)
	assert.Equal(t, testBrief, detail.BusinessContext)
	require.Len(t, detail.ExecutionTrace, 4)
	require.NotNil(t, detail.Dataset)

	// Extracted scalar counts are mirrored onto the row.
	require.NotNil(t, detail.QuestionnaireStakeholderCount)
	assert.Equal(t, 2, *detail.QuestionnaireStakeholderCount)
	require.NotNil(t, detail.SimulationID)
	require.NotNil(t, detail.AnalysisID)
	require.NotNil(t, detail.PersonaCount)
	require.NotNil(t, detail.InterviewCount)
	assert.Equal(t, 2, *detail.InterviewCount)
}

func TestGetJobFallsBackToRepositoryAfterRestart(t *testing.T) {
	db := openTestDB(t)
	reg := newTestRegistry(t, db, happyGateway())

	job, err := reg.CreateJob(context.Background(), testBrief)
	require.NoError(t, err)
	waitTerminal(t, reg, job.JobID)
	reg.Shutdown()

	// A fresh registry simulates a process restart: memory is gone, the
	// repository is authoritative.
	fresh := newTestRegistry(t, db, happyGateway())
	recovered, err := fresh.GetJob(context.Background(), job.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.RunCompleted, recovered.Status)
	require.NotNil(t, recovered.Result, "completed runs with a dataset reconstruct their result")
	require.NotNil(t, recovered.Result.Dataset)
	assert.Len(t, recovered.Result.ExecutionTrace, 4)
}

func TestGetJobUnknown(t *testing.T) {
	reg := newTestRegistry(t, openTestDB(t), happyGateway())
	_, err := reg.GetJob(context.Background(), "nope")
	assert.True(t, errors.Is(err, services.ErrNotFound))
}

func TestFailedPipelineMarksRunFailed(t *testing.T) {
	gw := happyGateway().Handle(llm.TaskQuestionnaireBuild,
		llm.FailWith(llm.KindMalformedOutput, "bad"))
	reg := newTestRegistry(t, openTestDB(t), gw)

	job, err := reg.CreateJob(context.Background(), testBrief)
	require.NoError(t, err)
	terminal := waitTerminal(t, reg, job.JobID)
	assert.Equal(t, models.RunFailed, terminal.Status)

	detail, err := reg.GetRunDetail(context.Background(), job.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.RunFailed, detail.Status)
	require.Len(t, detail.ExecutionTrace, 4)
	assert.Equal(t, models.StageFailed, detail.ExecutionTrace[0].Status)
}

func TestListRunsClampsLimit(t *testing.T) {
	db := openTestDB(t)
	reg := newTestRegistry(t, db, happyGateway())

	list, err := reg.ListRuns(context.Background(), "", 500, 0)
	require.NoError(t, err)
	assert.Equal(t, services.MaxRunListLimit, list.Limit)
	assert.Equal(t, 0, list.Offset)
}

func TestListRunsSummaries(t *testing.T) {
	db := openTestDB(t)
	reg := newTestRegistry(t, db, happyGateway())

	job, err := reg.CreateJob(context.Background(), testBrief)
	require.NoError(t, err)
	waitTerminal(t, reg, job.JobID)
	reg.Shutdown()

	list, err := reg.ListRuns(context.Background(), "completed", 10, 0)
	require.NoError(t, err)
	require.Len(t, list.Runs, 1)
	assert.Equal(t, job.JobID, list.Runs[0].JobID)
	assert.Equal(t, testBrief.BusinessIdea, list.Runs[0].BusinessIdea)
	assert.Equal(t, 1, list.Total)
}

func TestConcurrentJobsAreIndependent(t *testing.T) {
	db := openTestDB(t)
	reg := newTestRegistry(t, db, happyGateway())

	var jobs []*models.JobStatus
	for i := 0; i < 4; i++ {
		job, err := reg.CreateJob(context.Background(), testBrief)
		require.NoError(t, err)
		jobs = append(jobs, job)
	}

	scopes := make(map[string]struct{})
	for _, job := range jobs {
		terminal := waitTerminal(t, reg, job.JobID)
		assert.Equal(t, models.RunCompleted, terminal.Status)
		require.NotNil(t, terminal.Result)
		require.NotNil(t, terminal.Result.Dataset)
		scopes[terminal.Result.Dataset.ScopeID] = struct{}{}
	}
	assert.Len(t, scopes, 4, "each job produces its own dataset")
}

func TestCancelJob(t *testing.T) {
	gw := happyGateway().Handle(llm.TaskInterviewSimulation,
		func(ctx context.Context, kind llm.TaskKind, prompt string, opts llm.CallOptions, out any) error {
			<-ctx.Done()
			return &llm.Error{Kind: llm.KindCancelled, Task: kind, Err: ctx.Err()}
		})
	reg := newTestRegistry(t, openTestDB(t), gw)

	job, err := reg.CreateJob(context.Background(), testBrief)
	require.NoError(t, err)

	// Wait until the job is supervised, then cancel it.
	require.Eventually(t, func() bool {
		return reg.Cancel(job.JobID)
	}, 5*time.Second, 10*time.Millisecond)

	terminal := waitTerminal(t, reg, job.JobID)
	assert.Equal(t, models.RunFailed, terminal.Status)
	assert.Equal(t, "pipeline run cancelled", terminal.Error)
}

func TestCancelUnknownJob(t *testing.T) {
	reg := newTestRegistry(t, openTestDB(t), happyGateway())
	assert.False(t, reg.Cancel("missing"))
}
