package simulation

import (
	"context"
	"fmt"
	"strings"

	"github.com/axwise-ai/axpersona/pkg/llm"
	"github.com/axwise-ai/axpersona/pkg/models"
)

// generateInsights summarises the finished interview cohort in one LLM
// call. Errors are surfaced to the caller, which treats them as non-fatal.
func generateInsights(ctx context.Context, gateway llm.Gateway, interviews []models.Interview, brief models.BusinessContext) (*models.SimulationInsights, error) {
	var sb strings.Builder
	sb.WriteString("Summarise the following simulated stakeholder interviews.\n\n")
	sb.WriteString("BUSINESS CONTEXT:\n")
	fmt.Fprintf(&sb, "- Business Idea: %s\n", brief.BusinessIdea)
	fmt.Fprintf(&sb, "- Target Customer: %s\n", brief.TargetCustomer)
	fmt.Fprintf(&sb, "- Problem: %s\n\n", brief.Problem)
	sb.WriteString("INTERVIEW SUMMARIES:\n")
	for _, iv := range interviews {
		fmt.Fprintf(&sb, "- %s: sentiment=%s themes=%s (%d responses)\n",
			iv.StakeholderType, iv.OverallSentiment, strings.Join(iv.KeyThemes, "/"), len(iv.Responses))
	}
	sb.WriteString(`
Return a JSON object:
{"overall_sentiment": "...", "key_themes": ["..."],
 "stakeholder_priorities": {"Stakeholder Name": ["..."]},
 "potential_risks": ["..."], "opportunities": ["..."], "recommendations": ["..."]}`)

	var insights models.SimulationInsights
	if err := gateway.Invoke(ctx, llm.TaskSimulationInsights, sb.String(), llm.DefaultOptions(), &insights); err != nil {
		return nil, fmt.Errorf("generate simulation insights: %w", err)
	}
	return &insights, nil
}
