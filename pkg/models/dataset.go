package models

// PersonaTrait is the frontend-facing trait wrapper in the exported dataset.
type PersonaTrait struct {
	Value      string   `json:"value"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence"`
}

// ProductionPersona is one dataset-ready persona assembled from the
// analysis envelope.
type ProductionPersona struct {
	Name                      string         `json:"name"`
	Description               string         `json:"description"`
	Archetype                 string         `json:"archetype"`
	Demographics              PersonaTrait   `json:"demographics"`
	GoalsAndMotivations       PersonaTrait   `json:"goals_and_motivations"`
	ChallengesAndFrustrations PersonaTrait   `json:"challenges_and_frustrations"`
	KeyQuotes                 PersonaTrait   `json:"key_quotes"`
	OverallConfidence         float64        `json:"overall_confidence"`
	Patterns                  []string       `json:"patterns"`
	Metadata                  map[string]any `json:"metadata"`
}

// DatasetQuality carries the quality metrics computed during export.
type DatasetQuality struct {
	InterviewCount      int     `json:"interview_count"`
	StakeholderCoverage int     `json:"stakeholder_coverage"`
	AvgPersonaQuality   float64 `json:"avg_persona_quality"`
}

// PersonaDataset is the stage-4 output consumed by external clients.
type PersonaDataset struct {
	ScopeID          string              `json:"scope_id"`
	ScopeName        string              `json:"scope_name"`
	Description      string              `json:"description"`
	Personas         []ProductionPersona `json:"personas"`
	Interviews       []Interview         `json:"interviews"`
	Analysis         DetailedAnalysis    `json:"analysis"`
	SimulationPeople []Persona           `json:"simulation_people"`
	Quality          DatasetQuality      `json:"quality"`
}
