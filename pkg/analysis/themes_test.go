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

func themesOnlyGateway(themes ...models.Theme) *llm.MockGateway {
	return llm.NewMockGateway().
		Handle(llm.TaskThemeExtraction, llm.RespondJSON(llm.ThemesResult{Themes: themes})).
		Handle(llm.TaskPatternDetection, llm.RespondJSON(llm.PatternsResult{})).
		Handle(llm.TaskStakeholderAnalysis, llm.RespondJSON(llm.StakeholderResult{})).
		Handle(llm.TaskSentimentAnalysis, llm.RespondJSON(llm.SentimentResult{})).
		Handle(llm.TaskPersonaSynthesis, llm.RespondJSON(llm.PersonaSynthesisResult{})).
		Handle(llm.TaskInsightSynthesis, llm.RespondJSON(llm.InsightsResult{}))
}

func TestThemeExtractionSinglePassAtBoundary(t *testing.T) {
	gw := themesOnlyGateway(models.Theme{Name: "Boundary"})
	analyzer := NewAnalyzer(gw)

	// Exactly 50,000 characters stays in single-pass mode.
	corpus := strings.Repeat("a", StreamingThreshold)
	envelope, err := analyzer.Process(context.Background(), corpus, "sim-b1", "f.txt")
	require.NoError(t, err)

	assert.Len(t, gw.CallsFor(llm.TaskThemeExtraction), 1)
	assert.Len(t, envelope.Themes, 1)
}

func TestThemeExtractionStreamsAboveThreshold(t *testing.T) {
	gw := themesOnlyGateway(models.Theme{Name: "Windowed", Frequency: 0.4, Statements: []string{"quote"}})
	analyzer := NewAnalyzer(gw)

	// 50,001 characters forces streaming with at least two windows.
	corpus := strings.Repeat("a", StreamingThreshold+1)
	envelope, err := analyzer.Process(context.Background(), corpus, "sim-b2", "f.txt")
	require.NoError(t, err)

	calls := gw.CallsFor(llm.TaskThemeExtraction)
	assert.GreaterOrEqual(t, len(calls), 2)
	// Streaming mode merges by name, so a single theme survives, and no
	// enhanced themes are emitted.
	assert.Len(t, envelope.Themes, 1)
	assert.Empty(t, envelope.EnhancedThemes)
	// Later windows receive the accumulated theme names as context.
	assert.Contains(t, calls[1].Prompt, "Windowed")
}

func TestThemeAccumulatorMerge(t *testing.T) {
	acc := newThemeAccumulator()

	acc.merge([]models.Theme{
		{Name: "Security", Frequency: 0.4, Statements: []string{"s1"}},
		{Name: "Cost", Frequency: 0.2, Statements: []string{"c1"}},
	})
	acc.merge([]models.Theme{
		{Name: "Security", Frequency: 0.7, Statements: []string{"s2"}},
		{Name: "Speed", Frequency: 0.9, Statements: []string{"sp1"}},
	})
	acc.merge([]models.Theme{
		{Name: "Security", Frequency: 0.5, Statements: []string{"s3"}},
	})

	themes := acc.themes()
	require.Len(t, themes, 3)

	// First-seen order is preserved.
	assert.Equal(t, []string{"Security", "Cost", "Speed"}, acc.names())

	security := themes[0]
	assert.Equal(t, []string{"s1", "s2", "s3"}, security.Statements)
	assert.Equal(t, 0.7, security.Frequency, "merge keeps the max frequency")
}

func TestThemeWindowArithmetic(t *testing.T) {
	// Window positions recorded from the prompts.
	var spans []string
	gw := llm.NewMockGateway().
		Handle(llm.TaskThemeExtraction, func(ctx context.Context, kind llm.TaskKind, prompt string, opts llm.CallOptions, out any) error {
			if idx := strings.Index(prompt, "CURRENT DATA WINDOW"); idx >= 0 {
				end := strings.Index(prompt[idx:], ":")
				spans = append(spans, prompt[idx:idx+end])
			}
			return llm.RespondJSON(llm.ThemesResult{})(ctx, kind, prompt, opts, out)
		})

	analyzer := NewAnalyzer(gw)
	corpus := strings.Repeat("x", 90000)
	_, err := analyzer.extractThemesStreaming(context.Background(), corpus)
	require.NoError(t, err)

	// 90k corpus with 50k windows and 10k overlap: windows 0-50000 and
	// 40000-90000.
	require.Len(t, spans, 2)
	assert.Contains(t, spans[0], "(0-50000")
	assert.Contains(t, spans[1], "(40000-90000")
}
