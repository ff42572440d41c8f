package simulation

import (
	"fmt"
	"strings"
	"time"

	"github.com/axwise-ai/axpersona/pkg/models"
)

// Formatter packages simulation output into the analysis-ready shape.
type Formatter struct{}

// Format builds the formatted-data payload, including the stakeholder-aware
// transcript consumed by the analysis pipeline.
func (Formatter) Format(personas []models.Persona, interviews []models.Interview, brief models.BusinessContext, simulationID string) *models.FormattedData {
	personaSummaries := make([]models.PersonaSummary, 0, len(personas))
	for _, p := range personas {
		personaSummaries = append(personaSummaries, models.PersonaSummary{
			ID:                 p.ID,
			Name:               p.Name,
			Age:                p.Age,
			StakeholderType:    p.StakeholderType,
			Background:         p.Background,
			CommunicationStyle: p.CommunicationStyle,
		})
	}

	interviewSummaries := make([]models.InterviewSummary, 0, len(interviews))
	for _, iv := range interviews {
		interviewSummaries = append(interviewSummaries, models.InterviewSummary{
			PersonID:         iv.PersonID,
			StakeholderType:  iv.StakeholderType,
			ResponseCount:    len(iv.Responses),
			DurationMinutes:  iv.DurationMinutes,
			OverallSentiment: iv.OverallSentiment,
			KeyThemes:        iv.KeyThemes,
		})
	}

	return &models.FormattedData{
		SimulationID:      simulationID,
		AnalysisReadyText: AnalysisText(personas, interviews),
		Personas:          personaSummaries,
		Interviews:        interviewSummaries,
		Metadata: models.FormatMetadata{
			BusinessIdea:    brief.BusinessIdea,
			TargetCustomer:  brief.TargetCustomer,
			Problem:         brief.Problem,
			TotalPersonas:   len(personas),
			TotalInterviews: len(interviews),
			GeneratedAt:     time.Now().UTC(),
		},
	}
}

// AnalysisText renders the interview corpus as a stakeholder-aware
// transcript.
func AnalysisText(personas []models.Persona, interviews []models.Interview) string {
	nameByID := make(map[string]string, len(personas))
	for _, p := range personas {
		nameByID[p.ID] = p.Name
	}

	var parts []string
	for _, iv := range interviews {
		name := nameByID[iv.PersonID]
		if name == "" {
			name = "Unknown"
		}
		parts = append(parts, fmt.Sprintf("=== Interview with %s (%s) ===", name, iv.StakeholderType))
		parts = append(parts, fmt.Sprintf("Overall Sentiment: %s", iv.OverallSentiment))
		if len(iv.KeyThemes) > 0 {
			parts = append(parts, fmt.Sprintf("Key Themes: %s", strings.Join(iv.KeyThemes, ", ")))
		}
		parts = append(parts, "")
		for i, r := range iv.Responses {
			parts = append(parts, fmt.Sprintf("Q%d: %s", i+1, r.Question))
			parts = append(parts, fmt.Sprintf("A%d: %s", i+1, r.Response))
			parts = append(parts, "")
		}
	}
	return strings.Join(parts, "\n")
}
