package models

// Stakeholder is one role in the questionnaire, with its flattened
// question list. The id is bucket-prefixed and positional (e.g. "primary_0").
type Stakeholder struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Questions   []string `json:"questions"`
}

// StakeholderBuckets holds the two ordered stakeholder groups of a
// questionnaire.
type StakeholderBuckets struct {
	Primary   []Stakeholder `json:"primary"`
	Secondary []Stakeholder `json:"secondary"`
}

// All returns primary followed by secondary stakeholders.
func (b StakeholderBuckets) All() []Stakeholder {
	out := make([]Stakeholder, 0, len(b.Primary)+len(b.Secondary))
	out = append(out, b.Primary...)
	out = append(out, b.Secondary...)
	return out
}

// TotalQuestions counts questions across both buckets.
func (b StakeholderBuckets) TotalQuestions() int {
	n := 0
	for _, s := range b.All() {
		n += len(s.Questions)
	}
	return n
}

// QuestionsData is the full stakeholder questionnaire produced by stage 1.
type QuestionsData struct {
	Stakeholders StakeholderBuckets `json:"stakeholders"`
	TimeEstimate map[string]any     `json:"time_estimate,omitempty"`
}
