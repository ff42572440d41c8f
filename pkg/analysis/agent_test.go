package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axwise-ai/axpersona/pkg/llm"
	"github.com/axwise-ai/axpersona/pkg/models"
)

func fullWorkflowGateway() *llm.MockGateway {
	return llm.NewMockGateway().
		Handle(llm.TaskThemeExtraction, llm.RespondJSON(llm.ThemesResult{
			Themes: []models.Theme{{Name: "Speed", Frequency: 0.8, Statements: []string{"it is too slow for our team"}}},
			EnhancedThemes: []models.Theme{{Name: "Trust", Frequency: 0.5}},
		})).
		Handle(llm.TaskPatternDetection, llm.RespondJSON(llm.PatternsResult{
			Patterns: []models.Pattern{{Type: "Consensus", Description: "Everyone wants speed", Confidence: 0.9}},
		})).
		Handle(llm.TaskStakeholderAnalysis, llm.RespondJSON(llm.StakeholderResult{
			StakeholderIntelligence: &models.StakeholderIntelligence{
				DetectedStakeholders: []models.DetectedStakeholder{{StakeholderID: "pm_1", StakeholderType: "primary_customer"}},
			},
		})).
		Handle(llm.TaskSentimentAnalysis, llm.RespondJSON(llm.SentimentResult{
			SentimentOverview: models.SentimentOverview{Positive: 0.5, Neutral: 0.25, Negative: 0.25},
			SentimentDetails:  []models.SentimentDetail{{Category: "Frustration", Score: -0.6, Statements: []string{"so repetitive"}}},
		})).
		Handle(llm.TaskPersonaSynthesis, llm.RespondJSON(llm.PersonaSynthesisResult{
			Personas: []models.RawPersona{{Name: "Anja, The Analyst", Description: "Accuracy-focused"}},
		})).
		Handle(llm.TaskInsightSynthesis, llm.RespondJSON(llm.InsightsResult{
			Insights: []models.Insight{{Title: "Speed wins deals", Confidence: 0.9}},
		}))
}

func TestProcessRunsAllSubStages(t *testing.T) {
	gw := fullWorkflowGateway()
	analyzer := NewAnalyzer(gw)

	envelope, err := analyzer.Process(context.Background(), "corpus text", "sim-1", "simulation_analysis.txt")
	require.NoError(t, err)

	assert.Equal(t, models.AnalysisCompleted, envelope.Status)
	assert.Equal(t, "sim-1", envelope.SimulationID)
	assert.Len(t, envelope.Themes, 1)
	assert.Len(t, envelope.EnhancedThemes, 1)
	assert.Len(t, envelope.Patterns, 1)
	require.NotNil(t, envelope.StakeholderIntelligence)
	assert.Len(t, envelope.SentimentDetails, 1)
	assert.Len(t, envelope.Personas, 1)
	assert.Len(t, envelope.Insights, 1)

	// One call per sub-stage, in the fixed order.
	kinds := make([]llm.TaskKind, 0, 6)
	for _, call := range gw.Calls() {
		kinds = append(kinds, call.Kind)
	}
	assert.Equal(t, []llm.TaskKind{
		llm.TaskThemeExtraction,
		llm.TaskPatternDetection,
		llm.TaskStakeholderAnalysis,
		llm.TaskSentimentAnalysis,
		llm.TaskPersonaSynthesis,
		llm.TaskInsightSynthesis,
	}, kinds)
}

func TestProcessNormalizesSentiment(t *testing.T) {
	gw := fullWorkflowGateway().Handle(llm.TaskSentimentAnalysis, llm.RespondJSON(llm.SentimentResult{
		SentimentOverview: models.SentimentOverview{Positive: 2, Neutral: 1, Negative: 1},
	}))
	analyzer := NewAnalyzer(gw)

	envelope, err := analyzer.Process(context.Background(), "corpus", "sim-2", "f.txt")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, envelope.SentimentOverview.Sum(), 0.001)
	assert.InDelta(t, 0.5, envelope.SentimentOverview.Positive, 0.001)
}

func TestProcessSubStageMalformedRecoversToEmpty(t *testing.T) {
	gw := fullWorkflowGateway().Handle(llm.TaskPatternDetection,
		llm.FailWith(llm.KindMalformedOutput, "not json"))
	analyzer := NewAnalyzer(gw)

	envelope, err := analyzer.Process(context.Background(), "corpus", "sim-3", "f.txt")
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisCompleted, envelope.Status)
	assert.Empty(t, envelope.Patterns)
	assert.Len(t, envelope.Themes, 1, "other sub-stages still run")
	assert.Len(t, envelope.Insights, 1)
}

func TestProcessTransportErrorFailsWorkflow(t *testing.T) {
	gw := fullWorkflowGateway().Handle(llm.TaskStakeholderAnalysis,
		llm.FailWith(llm.KindTransport, "upstream down"))
	analyzer := NewAnalyzer(gw)

	envelope, err := analyzer.Process(context.Background(), "corpus", "sim-4", "f.txt")
	require.Error(t, err)
	require.NotNil(t, envelope)
	assert.Equal(t, models.AnalysisFailed, envelope.Status)
	assert.NotEmpty(t, envelope.Error)

	// The failing sub-stage halts the workflow: nothing downstream ran.
	assert.Empty(t, gw.CallsFor(llm.TaskSentimentAnalysis))
	assert.Empty(t, gw.CallsFor(llm.TaskInsightSynthesis))
}

func TestProcessEmptySentimentFallsBackToDefault(t *testing.T) {
	gw := fullWorkflowGateway().Handle(llm.TaskSentimentAnalysis,
		llm.FailWith(llm.KindMalformedOutput, "bad"))
	analyzer := NewAnalyzer(gw)

	envelope, err := analyzer.Process(context.Background(), "corpus", "sim-5", "f.txt")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSentimentOverview(), envelope.SentimentOverview)
}

func TestContextAdvance(t *testing.T) {
	actx := &Context{SimulationID: "s"}
	actx.advance(SubStageThemes)
	actx.advance(SubStagePatterns)

	assert.Equal(t, SubStagePatterns, actx.CurrentStage)
	assert.Equal(t, []string{SubStageThemes}, actx.CompletedStages)
	assert.Equal(t, 2, actx.ExchangeCount)
}

func TestInsightPromptSummarisesArtefacts(t *testing.T) {
	gw := fullWorkflowGateway()
	analyzer := NewAnalyzer(gw)

	longCorpus := strings.Repeat("interview text ", 1000)
	_, err := analyzer.Process(context.Background(), longCorpus, "sim-6", "f.txt")
	require.NoError(t, err)

	calls := gw.CallsFor(llm.TaskInsightSynthesis)
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Prompt, "Themes identified: 1")
	assert.Contains(t, calls[0].Prompt, "Stakeholders analyzed: 1")
	assert.Less(t, len(calls[0].Prompt), len(longCorpus), "insight synthesis sees only an excerpt")
}
