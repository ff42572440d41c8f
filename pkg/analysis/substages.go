package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/axwise-ai/axpersona/pkg/llm"
	"github.com/axwise-ai/axpersona/pkg/models"
)

// detectPatterns runs the pattern-detection sub-stage.
func (a *Analyzer) detectPatterns(ctx context.Context, corpus string) (llm.PatternsResult, error) {
	prompt := fmt.Sprintf(`Detect cross-stakeholder patterns and relationships in the simulation data.

SIMULATION DATA:
%s

PATTERN TYPES TO DETECT:
1. Cross-stakeholder consensus areas
2. Conflict zones between stakeholders
3. Influence networks and decision flows
4. Behavioral patterns and trends

Return a JSON object with "patterns" and "enhanced_patterns" arrays. Each pattern has
type, description, evidence (verbatim), confidence, and frequency.`, corpus)

	var result llm.PatternsResult
	err := a.gateway.Invoke(ctx, llm.TaskPatternDetection, prompt, llm.DefaultOptions(), &result)
	if err := recoverable(SubStagePatterns, err); err != nil {
		return llm.PatternsResult{}, err
	}
	return result, nil
}

// analyzeStakeholders runs the stakeholder-analysis sub-stage.
func (a *Analyzer) analyzeStakeholders(ctx context.Context, corpus string) (llm.StakeholderResult, error) {
	prompt := fmt.Sprintf(`Analyze the stakeholders in the simulation data and produce comprehensive stakeholder intelligence.

SIMULATION DATA:
%s

REQUIREMENTS:
1. Detect all stakeholders with demographic profiles
2. Generate individual insights for each stakeholder
3. Score influence metrics (decision_power, technical_influence, budget_influence) in [0,1]
4. Extract authentic evidence quotes, never invented ones
5. Identify consensus areas, conflict zones, and influence networks

Return a JSON object with a "stakeholder_intelligence" object containing detected_stakeholders,
cross_stakeholder_patterns (consensus_areas, conflict_zones, influence_networks), and
multi_stakeholder_summary.`, corpus)

	var result llm.StakeholderResult
	err := a.gateway.Invoke(ctx, llm.TaskStakeholderAnalysis, prompt, llm.DefaultOptions(), &result)
	if err := recoverable(SubStageStakeholders, err); err != nil {
		return llm.StakeholderResult{}, err
	}
	return result, nil
}

// analyzeSentiment runs the sentiment-analysis sub-stage.
func (a *Analyzer) analyzeSentiment(ctx context.Context, corpus string) (llm.SentimentResult, error) {
	prompt := fmt.Sprintf(`Analyze sentiment in the simulation data with detailed categorisation.

SIMULATION DATA:
%s

REQUIREMENTS:
1. Calculate the overall sentiment distribution (positive, neutral, negative) summing to 1.0
2. Identify sentiment categories with scores in [-1, 1]
3. Extract verbatim supporting statements for each category

Return a JSON object with "sentiment_overview" and "sentiment_details".`, corpus)

	var result llm.SentimentResult
	err := a.gateway.Invoke(ctx, llm.TaskSentimentAnalysis, prompt, llm.DefaultOptions(), &result)
	if err := recoverable(SubStageSentiment, err); err != nil {
		return llm.SentimentResult{}, err
	}
	if result.SentimentOverview.Sum() <= 0 {
		result.SentimentOverview = models.DefaultSentimentOverview()
	}
	return result, nil
}

// generatePersonas runs the persona-generation sub-stage.
func (a *Analyzer) generatePersonas(ctx context.Context, corpus string) (llm.PersonaSynthesisResult, error) {
	prompt := fmt.Sprintf(`Generate detailed personas from the simulation data based on stakeholder behavioral patterns.

SIMULATION DATA:
%s

REQUIREMENTS:
1. Create 3-5 primary personas based on stakeholder types
2. Every trait carries a value, a confidence in [0,1], and verbatim evidence quotes
3. Generate enhanced personas for strategic insights

Return a JSON object with "personas" and "enhanced_personas" arrays. Each persona has name,
description, archetype, overall_confidence, and attributed traits: demographics,
goals_and_motivations, skills_and_expertise, workflow_and_environment,
challenges_and_frustrations, needs_and_desires, technology_and_tools,
attitude_towards_research, attitude_towards_ai, plus key_quotes.`, corpus)

	var result llm.PersonaSynthesisResult
	err := a.gateway.Invoke(ctx, llm.TaskPersonaSynthesis, prompt, llm.DefaultOptions(), &result)
	if err := recoverable(SubStagePersonas, err); err != nil {
		return llm.PersonaSynthesisResult{}, err
	}
	return result, nil
}

// synthesizeInsights runs the final sub-stage over the accumulated
// artefacts. Only a corpus excerpt is included; the counts summarise the
// earlier stages.
func (a *Analyzer) synthesizeInsights(ctx context.Context, corpus string, envelope *models.DetailedAnalysis) (llm.InsightsResult, error) {
	detected := 0
	if envelope.StakeholderIntelligence != nil {
		detected = len(envelope.StakeholderIntelligence.DetectedStakeholders)
	}

	excerpt := corpus
	if len(excerpt) > 5000 {
		excerpt = excerpt[:5000] + "..."
	}

	var sb strings.Builder
	sb.WriteString("Synthesize actionable business insights from the analysis results.\n\n")
	sb.WriteString("ANALYSIS RESULTS SUMMARY:\n")
	fmt.Fprintf(&sb, "- Themes identified: %d\n", len(envelope.Themes))
	fmt.Fprintf(&sb, "- Patterns detected: %d\n", len(envelope.Patterns))
	fmt.Fprintf(&sb, "- Stakeholders analyzed: %d\n\n", detected)
	sb.WriteString("SIMULATION DATA (excerpt):\n")
	sb.WriteString(excerpt)
	sb.WriteString(`

REQUIREMENTS:
1. Generate 5-8 actionable business insights
2. Create enhanced insights for strategic recommendations
3. Include confidence scores, supporting evidence, and business impact

Return a JSON object with "insights" and "enhanced_insights" arrays.`)

	var result llm.InsightsResult
	err := a.gateway.Invoke(ctx, llm.TaskInsightSynthesis, sb.String(), llm.DefaultOptions(), &result)
	if err := recoverable(SubStageInsights, err); err != nil {
		return llm.InsightsResult{}, err
	}
	return result, nil
}
