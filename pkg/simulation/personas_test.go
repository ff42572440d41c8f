package simulation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axwise-ai/axpersona/pkg/llm"
	"github.com/axwise-ai/axpersona/pkg/models"
)

var personaTestBrief = models.BusinessContext{
	BusinessIdea:   "AI research automation",
	TargetCustomer: "EU SaaS PMs",
	Problem:        "manual research is slow",
}

func personaBatch(names ...string) llm.PersonaBatch {
	batch := llm.PersonaBatch{}
	for _, name := range names {
		batch.People = append(batch.People, models.Persona{
			Name:               name,
			Age:                35,
			Background:         "Works in SaaS",
			Motivations:        []string{"efficiency"},
			PainPoints:         []string{"slow research"},
			CommunicationStyle: "direct",
		})
	}
	return batch
}

func testStakeholder(id, name string) models.Stakeholder {
	return models.Stakeholder{
		ID:          id,
		Name:        name,
		Description: "description of " + name,
		Questions:   []string{"Q1", "Q2", "Q3", "Q4"},
	}
}

func TestGenerateForStakeholderMintsIDsAndStakeholderType(t *testing.T) {
	cfg := models.SimulationConfig{PeoplePerStakeholder: 2}
	cfg.Normalize()

	gw := llm.NewMockGateway().Handle(llm.TaskPersonaBatch,
		llm.RespondJSON(personaBatch("Alice Reed, PM", "Bob Okafor, PM")))

	gen := NewPersonaGenerator(gw)
	people, err := gen.GenerateForStakeholder(context.Background(), testStakeholder("primary_0", "Product Manager"), personaTestBrief, cfg)
	require.NoError(t, err)
	require.Len(t, people, 2)

	seen := make(map[string]struct{})
	for _, p := range people {
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, "Product Manager", p.StakeholderType)
		_, dup := seen[p.ID]
		assert.False(t, dup, "persona ids must be unique")
		seen[p.ID] = struct{}{}
	}
}

func TestGenerateForStakeholderPassesUsedNames(t *testing.T) {
	cfg := models.SimulationConfig{PeoplePerStakeholder: 1}
	cfg.Normalize()

	gw := llm.NewMockGateway().Handle(llm.TaskPersonaBatch, llm.RespondJSON(personaBatch("Alice Reed, PM")))
	gen := NewPersonaGenerator(gw)

	stakeholder := testStakeholder("primary_0", "Product Manager")
	_, err := gen.GenerateForStakeholder(context.Background(), stakeholder, personaTestBrief, cfg)
	require.NoError(t, err)
	_, err = gen.GenerateForStakeholder(context.Background(), stakeholder, personaTestBrief, cfg)
	require.NoError(t, err)

	calls := gw.CallsFor(llm.TaskPersonaBatch)
	require.Len(t, calls, 2)
	assert.NotContains(t, calls[0].Prompt, "Do NOT use these names")
	assert.Contains(t, calls[1].Prompt, "Alice Reed, PM")
}

func TestGenerateForStakeholderTruncatesOversizedBatch(t *testing.T) {
	cfg := models.SimulationConfig{PeoplePerStakeholder: 2}
	cfg.Normalize()

	gw := llm.NewMockGateway().Handle(llm.TaskPersonaBatch,
		llm.RespondJSON(personaBatch("A", "B", "C", "D")))
	gen := NewPersonaGenerator(gw)

	people, err := gen.GenerateForStakeholder(context.Background(), testStakeholder("primary_0", "PM"), personaTestBrief, cfg)
	require.NoError(t, err)
	assert.Len(t, people, 2)
}

func TestGenerateForStakeholderRetriesWithSimplifiedPrompt(t *testing.T) {
	cfg := models.SimulationConfig{PeoplePerStakeholder: 1}
	cfg.Normalize()

	gw := llm.NewMockGateway().Handle(llm.TaskPersonaBatch,
		llm.FailNTimes(1, llm.KindMalformedOutput, llm.RespondJSON(personaBatch("Cara Lim, PM"))))
	gen := NewPersonaGenerator(gw)

	people, err := gen.GenerateForStakeholder(context.Background(), testStakeholder("primary_0", "PM"), personaTestBrief, cfg)
	require.NoError(t, err)
	require.Len(t, people, 1)

	calls := gw.CallsFor(llm.TaskPersonaBatch)
	require.Len(t, calls, 2)
	assert.True(t, strings.HasPrefix(calls[1].Prompt, "Generate 1 realistic individual people for:"),
		"retry must use the simplified prompt")
}

func TestGenerateAllSkipsFailedStakeholder(t *testing.T) {
	cfg := models.SimulationConfig{PeoplePerStakeholder: 1}
	cfg.Normalize()

	var call int
	gw := llm.NewMockGateway().Handle(llm.TaskPersonaBatch,
		func(ctx context.Context, kind llm.TaskKind, prompt string, opts llm.CallOptions, out any) error {
			call++
			if strings.Contains(prompt, "Broken") {
				return &llm.Error{Kind: llm.KindTransport, Task: kind, Err: context.DeadlineExceeded}
			}
			return llm.RespondJSON(personaBatch("Person"))(ctx, kind, prompt, opts, out)
		})

	buckets := models.StakeholderBuckets{
		Primary:   []models.Stakeholder{testStakeholder("primary_0", "Good"), testStakeholder("primary_1", "Broken")},
		Secondary: []models.Stakeholder{testStakeholder("secondary_0", "Also Good")},
	}

	gen := NewPersonaGenerator(gw)
	people, err := gen.GenerateAll(context.Background(), buckets, personaTestBrief, cfg)
	require.NoError(t, err)
	assert.Len(t, people, 2)
}

func TestGenerateAllHonoursCancellation(t *testing.T) {
	gen := NewPersonaGenerator(llm.NewMockGateway())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := models.SimulationConfig{PeoplePerStakeholder: 1}
	cfg.Normalize()
	buckets := models.StakeholderBuckets{Primary: []models.Stakeholder{testStakeholder("primary_0", "PM")}}

	_, err := gen.GenerateAll(ctx, buckets, personaTestBrief, cfg)
	require.Error(t, err)
	assert.True(t, llm.IsCancelled(err))
}
