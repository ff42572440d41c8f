package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/axwise-ai/axpersona/pkg/llm"
	"github.com/axwise-ai/axpersona/pkg/models"
)

// Theme extraction mode boundaries. Corpora above StreamingThreshold are
// processed in overlapping windows.
const (
	StreamingThreshold = 50000
	themeWindowSize    = 50000
	themeWindowOverlap = 10000
)

// extractThemes selects single-pass or streaming extraction by corpus size.
func (a *Analyzer) extractThemes(ctx context.Context, corpus string, actx *Context) (llm.ThemesResult, error) {
	if actx.DataSize > StreamingThreshold {
		return a.extractThemesStreaming(ctx, corpus)
	}
	return a.extractThemesSinglePass(ctx, corpus)
}

func (a *Analyzer) extractThemesSinglePass(ctx context.Context, corpus string) (llm.ThemesResult, error) {
	prompt := fmt.Sprintf(`Extract comprehensive themes from the simulation data with stakeholder attribution.

SIMULATION DATA:
%s

REQUIREMENTS:
1. Identify 5-12 key themes with precise stakeholder attribution
2. Extract authentic quotes as statements (never generate fake quotes)
3. Calculate frequency and sentiment scores
4. Provide stakeholder context for each theme

Return a JSON object with "themes" and "enhanced_themes" arrays. Each theme has name,
frequency, sentiment, statements, keywords, definition, and stakeholder_context.`, corpus)

	var result llm.ThemesResult
	err := a.gateway.Invoke(ctx, llm.TaskThemeExtraction, prompt, llm.DefaultOptions(), &result)
	if err := recoverable(SubStageThemes, err); err != nil {
		return llm.ThemesResult{}, err
	}
	return result, nil
}

// extractThemesStreaming slides a window over the corpus, feeding each call
// the accumulated theme names. Streaming mode emits no enhanced themes.
func (a *Analyzer) extractThemesStreaming(ctx context.Context, corpus string) (llm.ThemesResult, error) {
	acc := newThemeAccumulator()

	step := themeWindowSize - themeWindowOverlap
	for start := 0; start < len(corpus); start += step {
		end := start + themeWindowSize
		if end > len(corpus) {
			end = len(corpus)
		}
		window := corpus[start:end]

		prompt := fmt.Sprintf(`Continue theme extraction from the simulation data.

ACCUMULATED THEMES SO FAR: %s

CURRENT DATA WINDOW (%d-%d):
%s

Extract themes from this window and merge with the accumulated themes. Focus on stakeholder
attribution and authentic quote extraction.

Return a JSON object with a "themes" array. Each theme has name, frequency, sentiment,
statements, keywords, definition, and stakeholder_context.`,
			strings.Join(acc.names(), ", "), start, end, window)

		var windowResult llm.ThemesResult
		err := a.gateway.Invoke(ctx, llm.TaskThemeExtraction, prompt, llm.DefaultOptions(), &windowResult)
		if err := recoverable(SubStageThemes, err); err != nil {
			return llm.ThemesResult{}, err
		}
		acc.merge(windowResult.Themes)

		if end == len(corpus) {
			break
		}
	}

	return llm.ThemesResult{Themes: acc.themes(), EnhancedThemes: []models.Theme{}}, nil
}

// themeAccumulator merges window outputs by theme name, preserving first-seen
// order. An existing theme's statements are extended and its frequency takes
// the elementwise max.
type themeAccumulator struct {
	order []string
	byKey map[string]*models.Theme
}

func newThemeAccumulator() *themeAccumulator {
	return &themeAccumulator{byKey: make(map[string]*models.Theme)}
}

func (ta *themeAccumulator) merge(themes []models.Theme) {
	for _, theme := range themes {
		existing, ok := ta.byKey[theme.Name]
		if !ok {
			copied := theme
			ta.byKey[theme.Name] = &copied
			ta.order = append(ta.order, theme.Name)
			continue
		}
		existing.Statements = append(existing.Statements, theme.Statements...)
		if theme.Frequency > existing.Frequency {
			existing.Frequency = theme.Frequency
		}
	}
}

func (ta *themeAccumulator) names() []string {
	return ta.order
}

func (ta *themeAccumulator) themes() []models.Theme {
	out := make([]models.Theme, 0, len(ta.order))
	for _, name := range ta.order {
		out = append(out, *ta.byKey[name])
	}
	return out
}
