package models

// InterviewResponse is one question/answer exchange within an interview.
type InterviewResponse struct {
	Question          string   `json:"question"`
	Response          string   `json:"response"`
	Sentiment         string   `json:"sentiment"`
	KeyInsights       []string `json:"key_insights"`
	FollowUpQuestions []string `json:"follow_up_questions,omitempty"`
}

// Interview is the simulated Q&A transcript for one persona. Exactly one
// interview exists per persona per simulation run.
type Interview struct {
	PersonID         string              `json:"person_id"`
	StakeholderType  string              `json:"stakeholder_type"`
	Responses        []InterviewResponse `json:"responses"`
	DurationMinutes  int                 `json:"duration_minutes"`
	OverallSentiment string              `json:"overall_sentiment"`
	KeyThemes        []string            `json:"key_themes"`
}
