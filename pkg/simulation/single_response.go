package simulation

import (
	"context"
	"fmt"
	"strings"

	"github.com/axwise-ai/axpersona/pkg/llm"
	"github.com/axwise-ai/axpersona/pkg/models"
)

// SingleResponse asks one persona a single follow-up question outside the
// regular interview flow. The answer is not cached: follow-ups are
// one-off by nature.
func (f *Fanout) SingleResponse(ctx context.Context, persona models.Persona, question string, cfg models.SimulationConfig) (*llm.SingleResponse, error) {
	if strings.TrimSpace(question) == "" {
		return nil, &models.FieldError{Field: "question", Reason: "required"}
	}

	var sb strings.Builder
	sb.WriteString("Answer one research question as the following persona:\n\n")
	fmt.Fprintf(&sb, "- Name: %s\n", persona.Name)
	fmt.Fprintf(&sb, "- Background: %s\n", persona.Background)
	fmt.Fprintf(&sb, "- Communication Style: %s\n", persona.CommunicationStyle)
	fmt.Fprintf(&sb, "- Stakeholder Type: %s\n\n", persona.StakeholderType)
	fmt.Fprintf(&sb, "QUESTION: %s\n\n", question)
	fmt.Fprintf(&sb, "RESPONSE STYLE: %s\n", cfg.ResponseStyle)
	sb.WriteString(`
Stay completely in character and answer naturally. Return a JSON object:
{"question": "...", "response": "...", "sentiment": "...", "key_insights": ["..."]}`)

	opts := llm.DefaultOptions().WithTemperature(cfg.Temperature)
	var answer llm.SingleResponse
	if err := f.gateway.Invoke(ctx, llm.TaskSingleResponse, sb.String(), opts, &answer); err != nil {
		return nil, fmt.Errorf("single response for %s: %w", persona.Name, err)
	}
	if answer.Question == "" {
		answer.Question = question
	}
	return &answer, nil
}
