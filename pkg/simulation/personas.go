// Package simulation implements stage 2: synthetic persona generation and
// the bounded-concurrency interview fanout.
package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/axwise-ai/axpersona/pkg/llm"
	"github.com/axwise-ai/axpersona/pkg/models"
)

// PersonaGenerator creates synthetic interviewees per stakeholder. Name
// uniqueness is tracked per stakeholder key; different stakeholders may
// reuse names.
type PersonaGenerator struct {
	gateway llm.Gateway

	mu        sync.Mutex
	usedNames map[string]map[string]struct{}
}

// NewPersonaGenerator creates a PersonaGenerator.
func NewPersonaGenerator(gateway llm.Gateway) *PersonaGenerator {
	return &PersonaGenerator{
		gateway:   gateway,
		usedNames: make(map[string]map[string]struct{}),
	}
}

// Reset clears the used-name tracking for a new simulation.
func (g *PersonaGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.usedNames = make(map[string]map[string]struct{})
}

// GenerateAll generates personas for every stakeholder in both buckets.
// A stakeholder whose generation fails is logged and skipped; the cohort
// still carries the other stakeholders' personas.
func (g *PersonaGenerator) GenerateAll(ctx context.Context, buckets models.StakeholderBuckets, brief models.BusinessContext, cfg models.SimulationConfig) ([]models.Persona, error) {
	g.Reset()

	var all []models.Persona
	for _, stakeholder := range buckets.All() {
		if err := ctx.Err(); err != nil {
			return nil, &llm.Error{Kind: llm.KindCancelled, Task: llm.TaskPersonaBatch, Err: err}
		}
		people, err := g.GenerateForStakeholder(ctx, stakeholder, brief, cfg)
		if err != nil {
			if llm.IsCancelled(err) {
				return nil, err
			}
			slog.Error("Persona generation failed for stakeholder",
				"stakeholder", stakeholder.Name, "error", err)
			continue
		}
		all = append(all, people...)
	}

	slog.Info("Persona generation finished", "total", len(all))
	return all, nil
}

// GenerateForStakeholder issues one LLM call requesting the configured
// number of personas for a stakeholder. On malformed output the call is
// retried once with a simplified prompt before failing the stakeholder.
func (g *PersonaGenerator) GenerateForStakeholder(ctx context.Context, stakeholder models.Stakeholder, brief models.BusinessContext, cfg models.SimulationConfig) ([]models.Persona, error) {
	prompt := g.buildPrompt(stakeholder, brief, cfg)

	// Structured generation runs at temperature 0 regardless of the
	// simulation temperature.
	opts := llm.DefaultOptions().WithTemperature(0).WithMaxRetries(0)

	var batch llm.PersonaBatch
	err := g.gateway.Invoke(ctx, llm.TaskPersonaBatch, prompt, opts, &batch)
	if err != nil && llm.IsMalformed(err) {
		slog.Warn("Persona batch was malformed, retrying with simplified prompt",
			"stakeholder", stakeholder.Name)
		batch = llm.PersonaBatch{}
		err = g.gateway.Invoke(ctx, llm.TaskPersonaBatch, simplifiedPrompt(stakeholder, brief, cfg), opts, &batch)
	}
	if err != nil {
		return nil, fmt.Errorf("generate personas for %s: %w", stakeholder.Name, err)
	}

	people := batch.People
	if len(people) == 0 {
		return nil, &llm.Error{Kind: llm.KindMalformedOutput, Task: llm.TaskPersonaBatch,
			Err: fmt.Errorf("batch for %s contained no people", stakeholder.Name)}
	}
	if len(people) != cfg.PeoplePerStakeholder {
		slog.Warn("Persona batch size mismatch",
			"stakeholder", stakeholder.Name,
			"expected", cfg.PeoplePerStakeholder, "got", len(people))
		if len(people) > cfg.PeoplePerStakeholder {
			people = people[:cfg.PeoplePerStakeholder]
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	key := stakeholderKey(stakeholder)
	if g.usedNames[key] == nil {
		g.usedNames[key] = make(map[string]struct{})
	}
	for i := range people {
		people[i].ID = uuid.New().String()
		people[i].StakeholderType = stakeholder.Name
		g.usedNames[key][people[i].Name] = struct{}{}
	}
	return people, nil
}

// namesInUse returns the sorted names already minted for a stakeholder key.
func (g *PersonaGenerator) namesInUse(key string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := make([]string, 0, len(g.usedNames[key]))
	for name := range g.usedNames[key] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func stakeholderKey(s models.Stakeholder) string {
	return s.Name + "_" + s.Description
}

func (g *PersonaGenerator) buildPrompt(stakeholder models.Stakeholder, brief models.BusinessContext, cfg models.SimulationConfig) string {
	preview := stakeholder.Questions
	truncated := false
	if len(preview) > 3 {
		preview = preview[:3]
		truncated = true
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate %d realistic individual people for the following context:\n\n", cfg.PeoplePerStakeholder)
	sb.WriteString("BUSINESS CONTEXT:\n")
	fmt.Fprintf(&sb, "- Business Idea: %s\n", brief.BusinessIdea)
	fmt.Fprintf(&sb, "- Target Customer: %s\n", brief.TargetCustomer)
	fmt.Fprintf(&sb, "- Problem Being Solved: %s\n", brief.Problem)
	if brief.Industry != "" {
		fmt.Fprintf(&sb, "- Industry: %s\n", brief.Industry)
	}
	sb.WriteString("\nSTAKEHOLDER TYPE:\n")
	fmt.Fprintf(&sb, "- Name: %s\n", stakeholder.Name)
	fmt.Fprintf(&sb, "- Description: %s\n", stakeholder.Description)
	fmt.Fprintf(&sb, "- Questions They'll Be Asked: %s", strings.Join(preview, ", "))
	if truncated {
		sb.WriteString("...")
	}
	fmt.Fprintf(&sb, "\n\nSIMULATION STYLE: %s\n", cfg.ResponseStyle)
	sb.WriteString(`
Create diverse individual people that would realistically be in this stakeholder category. Each person should:
1. Have a realistic name, age, and background
2. Include specific motivations related to this business context
3. Have authentic pain points that connect to the problem being solved
4. Display a distinct communication style
5. Include relevant demographic details (job, location, experience, etc.)

CRITICAL REQUIREMENTS:
- Each person must have a UNIQUE name within this stakeholder category only
- Names should reflect the stakeholder's professional context and include position/title
- Format: "FirstName LastName, Position/Title" (e.g., "Sarah Chen, Senior Finance Director")
- Generate individual people, not behavioral patterns or archetypes`)

	if used := g.namesInUse(stakeholderKey(stakeholder)); len(used) > 0 {
		fmt.Fprintf(&sb, "\n\nIMPORTANT: Do NOT use these names (already used for %s): %s",
			stakeholder.Name, strings.Join(used, ", "))
	}
	return sb.String()
}

func simplifiedPrompt(stakeholder models.Stakeholder, brief models.BusinessContext, cfg models.SimulationConfig) string {
	return fmt.Sprintf(`Generate %d realistic individual people for:
Stakeholder: %s
Business: %s
Target Customer: %s
Problem: %s

Keep responses concise and realistic.`,
		cfg.PeoplePerStakeholder, stakeholder.Name, brief.BusinessIdea, brief.TargetCustomer, brief.Problem)
}
