package models

// DemographicDetails carries the free-form demographic attributes of a
// synthetic interviewee.
type DemographicDetails struct {
	AgeRange           string `json:"age_range,omitempty"`
	IncomeLevel        string `json:"income_level,omitempty"`
	Education          string `json:"education,omitempty"`
	Location           string `json:"location,omitempty"`
	IndustryExperience string `json:"industry_experience,omitempty"`
	CompanySize        string `json:"company_size,omitempty"`
}

// Persona is a synthetic interviewee generated for one stakeholder.
// StakeholderType holds the parent stakeholder's human-readable name,
// not its id.
type Persona struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Age                int                `json:"age"`
	Background         string             `json:"background"`
	Motivations        []string           `json:"motivations"`
	PainPoints         []string           `json:"pain_points"`
	CommunicationStyle string             `json:"communication_style"`
	StakeholderType    string             `json:"stakeholder_type"`
	DemographicDetails DemographicDetails `json:"demographic_details"`
}
