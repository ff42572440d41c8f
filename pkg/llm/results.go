package llm

import "github.com/axwise-ai/axpersona/pkg/models"

// QuestionPhases groups a stakeholder's questions by research phase, in the
// order they are flattened by the questionnaire builder.
type QuestionPhases struct {
	ProblemDiscovery   []string `json:"problemDiscovery"`
	SolutionValidation []string `json:"solutionValidation"`
	FollowUp           []string `json:"followUp"`
}

// RawStakeholder is one stakeholder as emitted by the questionnaire-build
// task, before flattening.
type RawStakeholder struct {
	Index       *int           `json:"index,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Questions   QuestionPhases `json:"questions"`
}

// RawQuestionnaire is the questionnaire-build task output.
type RawQuestionnaire struct {
	PrimaryStakeholders   []RawStakeholder `json:"primaryStakeholders"`
	SecondaryStakeholders []RawStakeholder `json:"secondaryStakeholders"`
	TimeEstimate          map[string]any   `json:"timeEstimate,omitempty"`
}

// PersonaBatch is the persona-batch task output.
type PersonaBatch struct {
	People []models.Persona `json:"people"`
}

// ThemesResult is the theme-extraction task output.
type ThemesResult struct {
	Themes         []models.Theme `json:"themes"`
	EnhancedThemes []models.Theme `json:"enhanced_themes"`
}

// PatternsResult is the pattern-detection task output.
type PatternsResult struct {
	Patterns         []models.Pattern `json:"patterns"`
	EnhancedPatterns []models.Pattern `json:"enhanced_patterns"`
}

// StakeholderResult is the stakeholder-analysis task output.
type StakeholderResult struct {
	StakeholderIntelligence *models.StakeholderIntelligence `json:"stakeholder_intelligence"`
}

// SentimentResult is the sentiment-analysis task output.
type SentimentResult struct {
	SentimentOverview models.SentimentOverview `json:"sentiment_overview"`
	SentimentDetails  []models.SentimentDetail `json:"sentiment_details"`
}

// PersonaSynthesisResult is the persona-synthesis task output.
type PersonaSynthesisResult struct {
	Personas         []models.RawPersona `json:"personas"`
	EnhancedPersonas []models.RawPersona `json:"enhanced_personas"`
}

// InsightsResult is the insight-synthesis task output.
type InsightsResult struct {
	Insights         []models.Insight `json:"insights"`
	EnhancedInsights []models.Insight `json:"enhanced_insights"`
}

// SingleResponse is the single-response task output.
type SingleResponse struct {
	Question    string   `json:"question"`
	Response    string   `json:"response"`
	Sentiment   string   `json:"sentiment"`
	KeyInsights []string `json:"key_insights"`
}
