package models

import "time"

// SimulationDepth selects how thorough the simulated interviews are.
type SimulationDepth string

// Simulation depth values.
const (
	DepthQuick         SimulationDepth = "quick"
	DepthDetailed      SimulationDepth = "detailed"
	DepthComprehensive SimulationDepth = "comprehensive"
)

// ResponseStyle selects the tone of simulated interview answers.
type ResponseStyle string

// Response style values.
const (
	StyleRealistic  ResponseStyle = "realistic"
	StyleOptimistic ResponseStyle = "optimistic"
	StyleCritical   ResponseStyle = "critical"
	StyleMixed      ResponseStyle = "mixed"
)

// SimulationConfig controls a simulation run.
type SimulationConfig struct {
	Depth                SimulationDepth `json:"depth"`
	PeoplePerStakeholder int             `json:"people_per_stakeholder"`
	ResponseStyle        ResponseStyle   `json:"response_style"`
	IncludeInsights      bool            `json:"include_insights"`
	Temperature          float64         `json:"temperature"`
}

// DefaultSimulationConfig returns the configuration used when a request
// carries none.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		Depth:                DepthDetailed,
		PeoplePerStakeholder: 5,
		ResponseStyle:        StyleRealistic,
		IncludeInsights:      true,
		Temperature:          0.7,
	}
}

// Normalize clamps out-of-range values and fills zero values with defaults.
func (c *SimulationConfig) Normalize() {
	if c.Depth == "" {
		c.Depth = DepthDetailed
	}
	if c.ResponseStyle == "" {
		c.ResponseStyle = StyleRealistic
	}
	if c.PeoplePerStakeholder < 1 {
		c.PeoplePerStakeholder = 1
	}
	if c.PeoplePerStakeholder > 10 {
		c.PeoplePerStakeholder = 10
	}
	if c.Temperature < 0 {
		c.Temperature = 0
	}
	if c.Temperature > 1 {
		c.Temperature = 1
	}
}

// SimulationStatus is the lifecycle state of a persisted simulation.
type SimulationStatus string

// Simulation lifecycle states. A simulation is immutable once terminal.
const (
	SimulationPending   SimulationStatus = "pending"
	SimulationRunning   SimulationStatus = "running"
	SimulationCompleted SimulationStatus = "completed"
	SimulationFailed    SimulationStatus = "failed"
)

// SimulationInsights is the optional whole-cohort summary generated after
// all interviews complete.
type SimulationInsights struct {
	OverallSentiment      string              `json:"overall_sentiment"`
	KeyThemes             []string            `json:"key_themes"`
	StakeholderPriorities map[string][]string `json:"stakeholder_priorities"`
	PotentialRisks        []string            `json:"potential_risks"`
	Opportunities         []string            `json:"opportunities"`
	Recommendations       []string            `json:"recommendations"`
}

// PersonaSummary is the compact persona view embedded in formatted data.
type PersonaSummary struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Age                int    `json:"age"`
	StakeholderType    string `json:"stakeholder_type"`
	Background         string `json:"background"`
	CommunicationStyle string `json:"communication_style"`
}

// InterviewSummary is the compact interview view embedded in formatted data.
type InterviewSummary struct {
	PersonID         string   `json:"person_id"`
	StakeholderType  string   `json:"stakeholder_type"`
	ResponseCount    int      `json:"response_count"`
	DurationMinutes  int      `json:"duration_minutes"`
	OverallSentiment string   `json:"overall_sentiment"`
	KeyThemes        []string `json:"key_themes"`
}

// FormatMetadata summarises the simulation inputs inside formatted data.
type FormatMetadata struct {
	BusinessIdea    string    `json:"business_idea"`
	TargetCustomer  string    `json:"target_customer"`
	Problem         string    `json:"problem"`
	TotalPersonas   int       `json:"total_personas"`
	TotalInterviews int       `json:"total_interviews"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// FormattedData is the analysis-ready packaging of a finished simulation.
// AnalysisReadyText is the stakeholder-aware transcript consumed by the
// analysis pipeline.
type FormattedData struct {
	SimulationID      string             `json:"simulation_id"`
	AnalysisReadyText string             `json:"analysis_ready_text"`
	Personas          []PersonaSummary   `json:"personas"`
	Interviews        []InterviewSummary `json:"interviews"`
	Metadata          FormatMetadata     `json:"metadata"`
}

// SimulationResult is the full outcome of one simulation run.
type SimulationResult struct {
	Success         bool                `json:"success"`
	Message         string              `json:"message"`
	SimulationID    string              `json:"simulation_id"`
	Data            *FormattedData      `json:"data,omitempty"`
	Metadata        map[string]any      `json:"metadata,omitempty"`
	Personas        []Persona           `json:"personas"`
	Interviews      []Interview         `json:"interviews"`
	Insights        *SimulationInsights `json:"simulation_insights,omitempty"`
	Recommendations []string            `json:"recommendations,omitempty"`
}
