// Package analysis implements stage 3: the sequential sub-stage state
// machine that turns an interview corpus into a structured analysis
// envelope.
package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/axwise-ai/axpersona/pkg/llm"
	"github.com/axwise-ai/axpersona/pkg/models"
)

// The six analysis sub-stages, in execution order. Transitions are
// unconditional; states cannot skip or repeat.
const (
	SubStageThemes       = "theme_extraction"
	SubStagePatterns     = "pattern_detection"
	SubStageStakeholders = "stakeholder_analysis"
	SubStageSentiment    = "sentiment_analysis"
	SubStagePersonas     = "persona_generation"
	SubStageInsights     = "insight_synthesis"
)

// Context tracks progress through the sub-stage workflow for introspection.
type Context struct {
	SimulationID    string
	DataSize        int
	CurrentStage    string
	CompletedStages []string
	ExchangeCount   int
}

// advance moves the workflow to the next stage, recording the previous one
// as completed.
func (c *Context) advance(stage string) {
	if c.CurrentStage != "" {
		c.CompletedStages = append(c.CompletedStages, c.CurrentStage)
	}
	c.CurrentStage = stage
	c.ExchangeCount++
}

// Analyzer runs the conversational analysis workflow.
type Analyzer struct {
	gateway llm.Gateway
}

// NewAnalyzer creates an Analyzer over the given gateway.
func NewAnalyzer(gateway llm.Gateway) *Analyzer {
	return &Analyzer{gateway: gateway}
}

// Process runs all six sub-stages over the corpus and assembles the
// envelope. A sub-stage returning malformed or empty output fills its slot
// with an empty collection; only non-malformed gateway errors abort the
// workflow. On abort the returned envelope carries status failed together
// with the error.
func (a *Analyzer) Process(ctx context.Context, corpus, simulationID, fileName string) (*models.DetailedAnalysis, error) {
	actx := &Context{SimulationID: simulationID, DataSize: len(corpus)}
	log := slog.With("simulation_id", simulationID)
	log.Info("Starting analysis workflow", "corpus_size", actx.DataSize)

	envelope := &models.DetailedAnalysis{
		ID:                "analysis_" + simulationID,
		SimulationID:      simulationID,
		Status:            models.AnalysisCompleted,
		CreatedAt:         time.Now().UTC().Format(time.RFC3339),
		FileName:          fileName,
		FileSize:          len(corpus),
		Themes:            []models.Theme{},
		EnhancedThemes:    []models.Theme{},
		Patterns:          []models.Pattern{},
		EnhancedPatterns:  []models.Pattern{},
		SentimentOverview: models.DefaultSentimentOverview(),
		SentimentDetails:  []models.SentimentDetail{},
		Personas:          []models.RawPersona{},
		EnhancedPersonas:  []models.RawPersona{},
		Insights:          []models.Insight{},
		EnhancedInsights:  []models.Insight{},
	}

	fail := func(err error) (*models.DetailedAnalysis, error) {
		log.Error("Analysis workflow failed", "stage", actx.CurrentStage, "error", err)
		envelope.Status = models.AnalysisFailed
		envelope.Error = err.Error()
		return envelope, err
	}

	actx.advance(SubStageThemes)
	themes, err := a.extractThemes(ctx, corpus, actx)
	if err != nil {
		return fail(err)
	}
	envelope.Themes = emptyIfNil(themes.Themes)
	envelope.EnhancedThemes = emptyIfNil(themes.EnhancedThemes)

	actx.advance(SubStagePatterns)
	patterns, err := a.detectPatterns(ctx, corpus)
	if err != nil {
		return fail(err)
	}
	envelope.Patterns = emptyIfNil(patterns.Patterns)
	envelope.EnhancedPatterns = emptyIfNil(patterns.EnhancedPatterns)

	actx.advance(SubStageStakeholders)
	stakeholders, err := a.analyzeStakeholders(ctx, corpus)
	if err != nil {
		return fail(err)
	}
	envelope.StakeholderIntelligence = stakeholders.StakeholderIntelligence

	actx.advance(SubStageSentiment)
	sentiment, err := a.analyzeSentiment(ctx, corpus)
	if err != nil {
		return fail(err)
	}
	sentiment.SentimentOverview.Normalize()
	envelope.SentimentOverview = sentiment.SentimentOverview
	envelope.SentimentDetails = emptyIfNil(sentiment.SentimentDetails)

	actx.advance(SubStagePersonas)
	personas, err := a.generatePersonas(ctx, corpus)
	if err != nil {
		return fail(err)
	}
	envelope.Personas = emptyIfNil(personas.Personas)
	envelope.EnhancedPersonas = emptyIfNil(personas.EnhancedPersonas)

	actx.advance(SubStageInsights)
	insights, err := a.synthesizeInsights(ctx, corpus, envelope)
	if err != nil {
		return fail(err)
	}
	envelope.Insights = emptyIfNil(insights.Insights)
	envelope.EnhancedInsights = emptyIfNil(insights.EnhancedInsights)

	actx.advance("done")

	surviving := 0
	for _, p := range personaSource(envelope) {
		if _, ok := NormalizePersona(p); ok {
			surviving++
		}
	}
	log.Info("Analysis workflow completed",
		"themes", len(envelope.Themes),
		"patterns", len(envelope.Patterns),
		"personas", len(envelope.Personas),
		"surviving_personas", surviving,
		"exchanges", actx.ExchangeCount)
	return envelope, nil
}

// personaSource selects enhanced personas when present, matching the
// export stage's preference.
func personaSource(envelope *models.DetailedAnalysis) []models.RawPersona {
	if len(envelope.EnhancedPersonas) > 0 {
		return envelope.EnhancedPersonas
	}
	return envelope.Personas
}

// recoverable absorbs malformed-output failures, logging them and letting
// the workflow continue with an empty slot.
func recoverable(stage string, err error) error {
	if err == nil {
		return nil
	}
	if llm.IsMalformed(err) {
		slog.Warn("Analysis sub-stage produced malformed output, continuing with empty result",
			"stage", stage, "error", err)
		return nil
	}
	return err
}

func emptyIfNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
