package questionnaire

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axwise-ai/axpersona/pkg/llm"
	"github.com/axwise-ai/axpersona/pkg/models"
)

var testBrief = models.BusinessContext{
	BusinessIdea:   "AI research automation",
	TargetCustomer: "EU SaaS PMs",
	Problem:        "manual research is slow",
}

func intPtr(n int) *int { return &n }

func TestBuildFlattensPhasesInOrder(t *testing.T) {
	gw := llm.NewMockGateway().Handle(llm.TaskQuestionnaireBuild, llm.RespondJSON(llm.RawQuestionnaire{
		PrimaryStakeholders: []llm.RawStakeholder{
			{
				Name:        "Product Manager",
				Description: "Owns research backlog",
				Questions: llm.QuestionPhases{
					ProblemDiscovery:   []string{"PD1", "PD2"},
					SolutionValidation: []string{"SV1"},
					FollowUp:           []string{"FU1"},
				},
			},
		},
		SecondaryStakeholders: []llm.RawStakeholder{
			{
				Name:        "Researcher",
				Description: "Runs interviews",
				Questions:   llm.QuestionPhases{ProblemDiscovery: []string{"R1"}},
			},
		},
		TimeEstimate: map[string]any{"totalQuestions": 5},
	}))

	builder := NewBuilder(gw)
	data, err := builder.Build(context.Background(), testBrief)
	require.NoError(t, err)

	require.Len(t, data.Stakeholders.Primary, 1)
	require.Len(t, data.Stakeholders.Secondary, 1)

	pm := data.Stakeholders.Primary[0]
	assert.Equal(t, "primary_0", pm.ID)
	assert.Equal(t, "Product Manager", pm.Name)
	assert.Equal(t, []string{"PD1", "PD2", "SV1", "FU1"}, pm.Questions)

	assert.Equal(t, "secondary_0", data.Stakeholders.Secondary[0].ID)
	assert.NotNil(t, data.TimeEstimate)
}

func TestBuildSkipsBlankQuestions(t *testing.T) {
	gw := llm.NewMockGateway().Handle(llm.TaskQuestionnaireBuild, llm.RespondJSON(llm.RawQuestionnaire{
		PrimaryStakeholders: []llm.RawStakeholder{
			{
				Name: "Customer",
				Questions: llm.QuestionPhases{
					ProblemDiscovery:   []string{"Q1", "   ", ""},
					SolutionValidation: []string{"", "Q2"},
				},
			},
		},
	}))

	builder := NewBuilder(gw)
	data, err := builder.Build(context.Background(), testBrief)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1", "Q2"}, data.Stakeholders.Primary[0].Questions)
}

func TestBuildUsesExplicitIndexForIDs(t *testing.T) {
	gw := llm.NewMockGateway().Handle(llm.TaskQuestionnaireBuild, llm.RespondJSON(llm.RawQuestionnaire{
		PrimaryStakeholders: []llm.RawStakeholder{
			{Index: intPtr(2), Name: "A", Questions: llm.QuestionPhases{ProblemDiscovery: []string{"q"}}},
			{Name: "B", Questions: llm.QuestionPhases{ProblemDiscovery: []string{"q"}}},
		},
	}))

	builder := NewBuilder(gw)
	data, err := builder.Build(context.Background(), testBrief)
	require.NoError(t, err)
	assert.Equal(t, "primary_2", data.Stakeholders.Primary[0].ID)
	assert.Equal(t, "primary_1", data.Stakeholders.Primary[1].ID)
}

func TestBuildDefaultsUnknownStakeholderName(t *testing.T) {
	gw := llm.NewMockGateway().Handle(llm.TaskQuestionnaireBuild, llm.RespondJSON(llm.RawQuestionnaire{
		PrimaryStakeholders: []llm.RawStakeholder{
			{Questions: llm.QuestionPhases{ProblemDiscovery: []string{"q"}}},
		},
	}))

	builder := NewBuilder(gw)
	data, err := builder.Build(context.Background(), testBrief)
	require.NoError(t, err)
	assert.Equal(t, "Unknown stakeholder", data.Stakeholders.Primary[0].Name)
}

func TestBuildMalformedOutputIsFatal(t *testing.T) {
	gw := llm.NewMockGateway().Handle(llm.TaskQuestionnaireBuild,
		llm.FailWith(llm.KindMalformedOutput, "bad json"))

	builder := NewBuilder(gw)
	_, err := builder.Build(context.Background(), testBrief)
	require.Error(t, err)
	assert.True(t, llm.IsMalformed(err))
}

func TestBuildRejectsInvalidBrief(t *testing.T) {
	builder := NewBuilder(llm.NewMockGateway())
	_, err := builder.Build(context.Background(), models.BusinessContext{BusinessIdea: "only idea"})
	require.Error(t, err)

	var fieldErr *models.FieldError
	assert.ErrorAs(t, err, &fieldErr)
}
