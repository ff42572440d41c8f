// Package questionnaire implements stage 1: turning a business brief into a
// structured stakeholder questionnaire via one LLM call.
package questionnaire

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/axwise-ai/axpersona/pkg/llm"
	"github.com/axwise-ai/axpersona/pkg/models"
)

// Builder generates stakeholder questionnaires.
type Builder struct {
	gateway llm.Gateway
}

// NewBuilder creates a Builder over the given gateway.
func NewBuilder(gateway llm.Gateway) *Builder {
	return &Builder{gateway: gateway}
}

// Build produces a questionnaire for the brief. Malformed LLM output is a
// fatal stage failure; no partial questionnaire is emitted.
func (b *Builder) Build(ctx context.Context, brief models.BusinessContext) (*models.QuestionsData, error) {
	if err := brief.Validate(); err != nil {
		return nil, err
	}

	var raw llm.RawQuestionnaire
	err := b.gateway.Invoke(ctx, llm.TaskQuestionnaireBuild, buildPrompt(brief), llm.DefaultOptions(), &raw)
	if err != nil {
		return nil, fmt.Errorf("questionnaire generation: %w", err)
	}

	data := &models.QuestionsData{
		Stakeholders: models.StakeholderBuckets{
			Primary:   flattenStakeholders(raw.PrimaryStakeholders, "primary"),
			Secondary: flattenStakeholders(raw.SecondaryStakeholders, "secondary"),
		},
		TimeEstimate: raw.TimeEstimate,
	}

	slog.Info("Questionnaire generated",
		"primary", len(data.Stakeholders.Primary),
		"secondary", len(data.Stakeholders.Secondary),
		"questions", data.Stakeholders.TotalQuestions())
	return data, nil
}

// flattenStakeholders merges per-phase questions in fixed phase order,
// skipping blank entries, and assigns bucket-prefixed positional ids.
func flattenStakeholders(raw []llm.RawStakeholder, bucket string) []models.Stakeholder {
	out := make([]models.Stakeholder, 0, len(raw))
	for i, item := range raw {
		questions := make([]string, 0,
			len(item.Questions.ProblemDiscovery)+len(item.Questions.SolutionValidation)+len(item.Questions.FollowUp))
		for _, phase := range [][]string{item.Questions.ProblemDiscovery, item.Questions.SolutionValidation, item.Questions.FollowUp} {
			for _, q := range phase {
				if strings.TrimSpace(q) == "" {
					continue
				}
				questions = append(questions, q)
			}
		}

		position := i
		if item.Index != nil {
			position = *item.Index
		}
		name := item.Name
		if name == "" {
			name = "Unknown stakeholder"
		}
		out = append(out, models.Stakeholder{
			ID:          fmt.Sprintf("%s_%d", bucket, position),
			Name:        name,
			Description: item.Description,
			Questions:   questions,
		})
	}
	return out
}

func buildPrompt(brief models.BusinessContext) string {
	var sb strings.Builder
	sb.WriteString("Design a stakeholder research questionnaire for the following business context.\n\n")
	sb.WriteString("BUSINESS CONTEXT:\n")
	fmt.Fprintf(&sb, "- Business Idea: %s\n", brief.BusinessIdea)
	fmt.Fprintf(&sb, "- Target Customer: %s\n", brief.TargetCustomer)
	fmt.Fprintf(&sb, "- Problem Being Solved: %s\n", brief.Problem)
	if brief.Industry != "" {
		fmt.Fprintf(&sb, "- Industry: %s\n", brief.Industry)
	}
	if brief.Location != "" {
		fmt.Fprintf(&sb, "- Location: %s\n", brief.Location)
	}
	sb.WriteString(`
REQUIREMENTS:
1. Identify 2-3 PRIMARY stakeholders (the people most affected by the problem) and 1-2 SECONDARY stakeholders (influencers, decision makers, adjacent roles).
2. For each stakeholder write questions grouped into three phases: problemDiscovery, solutionValidation, and followUp.
3. Questions must be open-ended, specific to this business context, and free of leading language.
4. Include an estimated total interview time.

Return a JSON object:
{
  "primaryStakeholders": [
    {"index": 0, "name": "Stakeholder Name", "description": "One-line role description",
     "questions": {"problemDiscovery": ["..."], "solutionValidation": ["..."], "followUp": ["..."]}}
  ],
  "secondaryStakeholders": [ ... same shape ... ],
  "timeEstimate": {"totalQuestions": 0, "minutesPerInterview": 0}
}`)
	return sb.String()
}
