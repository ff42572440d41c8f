package models

// SentimentOverview is the normalised sentiment distribution over the
// interview corpus. The three shares sum to 1.0.
type SentimentOverview struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// DefaultSentimentOverview is the distribution used when sentiment analysis
// produced nothing usable.
func DefaultSentimentOverview() SentimentOverview {
	return SentimentOverview{Positive: 0.33, Neutral: 0.34, Negative: 0.33}
}

// Sum returns the total of the three shares.
func (o SentimentOverview) Sum() float64 {
	return o.Positive + o.Neutral + o.Negative
}

// Normalize rescales the distribution so the shares sum to 1.0. A zero or
// negative distribution is replaced with the default.
func (o *SentimentOverview) Normalize() {
	sum := o.Sum()
	if sum <= 0 {
		*o = DefaultSentimentOverview()
		return
	}
	o.Positive /= sum
	o.Neutral /= sum
	o.Negative /= sum
}

// StakeholderMention attributes a theme to one stakeholder.
type StakeholderMention struct {
	StakeholderID   string `json:"stakeholder_id"`
	StakeholderType string `json:"stakeholder_type"`
	MentionCount    int    `json:"mention_count"`
	Sentiment       string `json:"sentiment"`
}

// ThemeStakeholderContext records which stakeholders raised a theme.
type ThemeStakeholderContext struct {
	PrimaryMentions            []StakeholderMention `json:"primary_mentions"`
	CrossStakeholderPrevalence float64              `json:"cross_stakeholder_prevalence,omitempty"`
	StakeholderTypesMentioning []string             `json:"stakeholder_types_mentioning,omitempty"`
}

// Theme is one extracted interview theme with verbatim supporting statements.
type Theme struct {
	Name               string                   `json:"name"`
	Frequency          float64                  `json:"frequency"`
	Sentiment          float64                  `json:"sentiment"`
	Statements         []string                 `json:"statements"`
	Keywords           []string                 `json:"keywords,omitempty"`
	Definition         string                   `json:"definition,omitempty"`
	StakeholderContext *ThemeStakeholderContext `json:"stakeholder_context,omitempty"`
}

// Pattern is a cross-stakeholder relationship detected in the corpus.
type Pattern struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Evidence    []string `json:"evidence"`
	Confidence  float64  `json:"confidence"`
	Frequency   float64  `json:"frequency"`
}

// SentimentDetail is one categorised sentiment finding with verbatim
// statements. Score is in [-1, 1].
type SentimentDetail struct {
	Category   string   `json:"category"`
	Score      float64  `json:"score"`
	Statements []string `json:"statements"`
}

// InfluenceMetrics scores a detected stakeholder's weight in [0, 1] per axis.
type InfluenceMetrics struct {
	DecisionPower      float64 `json:"decision_power"`
	TechnicalInfluence float64 `json:"technical_influence"`
	BudgetInfluence    float64 `json:"budget_influence"`
}

// EvidenceBundle groups the verbatim evidence behind a detected stakeholder.
type EvidenceBundle struct {
	QuotesEvidence     []string `json:"quotes_evidence"`
	BehavioralEvidence []string `json:"behavioral_evidence,omitempty"`
}

// DetectedStakeholder is a stakeholder-like entity the analysis identified
// in the corpus (distinct from the questionnaire's stakeholders).
type DetectedStakeholder struct {
	StakeholderID      string            `json:"stakeholder_id"`
	StakeholderType    string            `json:"stakeholder_type"`
	ConfidenceScore    float64           `json:"confidence_score"`
	DemographicProfile map[string]string `json:"demographic_profile,omitempty"`
	IndividualInsights map[string]string `json:"individual_insights,omitempty"`
	InfluenceMetrics   InfluenceMetrics  `json:"influence_metrics"`
	AuthenticEvidence  EvidenceBundle    `json:"authentic_evidence"`
}

// ConsensusArea is a topic multiple stakeholders agree on.
type ConsensusArea struct {
	Topic                     string   `json:"topic"`
	AgreementLevel            float64  `json:"agreement_level"`
	ParticipatingStakeholders []string `json:"participating_stakeholders"`
	SharedInsights            []string `json:"shared_insights,omitempty"`
	BusinessImpact            string   `json:"business_impact,omitempty"`
}

// ConflictZone is a topic stakeholders disagree about.
type ConflictZone struct {
	Topic                   string   `json:"topic"`
	ConflictingStakeholders []string `json:"conflicting_stakeholders"`
	ConflictSeverity        string   `json:"conflict_severity"`
	PotentialResolutions    []string `json:"potential_resolutions,omitempty"`
	BusinessRisk            string   `json:"business_risk,omitempty"`
}

// InfluenceLink is one edge in the influence network between stakeholders.
type InfluenceLink struct {
	Influencer    string   `json:"influencer"`
	Influenced    []string `json:"influenced"`
	InfluenceType string   `json:"influence_type"`
	Strength      float64  `json:"strength"`
	Pathway       string   `json:"pathway,omitempty"`
}

// CrossStakeholderPatterns aggregates consensus, conflict, and influence
// findings.
type CrossStakeholderPatterns struct {
	ConsensusAreas    []ConsensusArea `json:"consensus_areas"`
	ConflictZones     []ConflictZone  `json:"conflict_zones"`
	InfluenceNetworks []InfluenceLink `json:"influence_networks"`
}

// MultiStakeholderSummary is the roll-up across all detected stakeholders.
type MultiStakeholderSummary struct {
	TotalStakeholders             int      `json:"total_stakeholders"`
	ConsensusScore                float64  `json:"consensus_score"`
	ConflictScore                 float64  `json:"conflict_score"`
	KeyInsights                   []string `json:"key_insights,omitempty"`
	ImplementationRecommendations []string `json:"implementation_recommendations,omitempty"`
}

// StakeholderIntelligence is the stakeholder-analysis sub-stage output.
type StakeholderIntelligence struct {
	DetectedStakeholders     []DetectedStakeholder    `json:"detected_stakeholders"`
	CrossStakeholderPatterns CrossStakeholderPatterns `json:"cross_stakeholder_patterns"`
	MultiStakeholderSummary  MultiStakeholderSummary  `json:"multi_stakeholder_summary"`
	ProcessingMetadata       map[string]any           `json:"processing_metadata,omitempty"`
}

// RawTrait is an attributed persona trait as emitted by the persona
// sub-stage: a value, a confidence in [0,1], and verbatim evidence quotes.
type RawTrait struct {
	Value      string   `json:"value"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence"`
}

// RawPersona is an analysis persona before canonical post-processing. The
// trait fields mirror the persona sub-stage output schema.
type RawPersona struct {
	Name                      string    `json:"name"`
	Description               string    `json:"description"`
	Archetype                 string    `json:"archetype,omitempty"`
	OverallConfidence         float64   `json:"overall_confidence,omitempty"`
	Demographics              *RawTrait `json:"demographics,omitempty"`
	GoalsAndMotivations       *RawTrait `json:"goals_and_motivations,omitempty"`
	SkillsAndExpertise        *RawTrait `json:"skills_and_expertise,omitempty"`
	WorkflowAndEnvironment    *RawTrait `json:"workflow_and_environment,omitempty"`
	ChallengesAndFrustrations *RawTrait `json:"challenges_and_frustrations,omitempty"`
	NeedsAndDesires           *RawTrait `json:"needs_and_desires,omitempty"`
	TechnologyAndTools        *RawTrait `json:"technology_and_tools,omitempty"`
	AttitudeTowardsResearch   *RawTrait `json:"attitude_towards_research,omitempty"`
	AttitudeTowardsAI         *RawTrait `json:"attitude_towards_ai,omitempty"`
	KeyQuotes                 []string  `json:"key_quotes,omitempty"`
	Patterns                  []string  `json:"patterns,omitempty"`
}

// Insight is one synthesized business insight.
type Insight struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Confidence     float64  `json:"confidence"`
	Evidence       []string `json:"evidence,omitempty"`
	BusinessImpact string   `json:"business_impact,omitempty"`
}

// Analysis status values.
const (
	AnalysisCompleted = "completed"
	AnalysisFailed    = "failed"
)

// DetailedAnalysis is the full analysis envelope persisted per analysis row
// and returned by the analysis endpoint.
type DetailedAnalysis struct {
	ID                      string                   `json:"id"`
	SimulationID            string                   `json:"simulation_id,omitempty"`
	Status                  string                   `json:"status"`
	CreatedAt               string                   `json:"created_at"`
	FileName                string                   `json:"file_name"`
	FileSize                int                      `json:"file_size"`
	Themes                  []Theme                  `json:"themes"`
	EnhancedThemes          []Theme                  `json:"enhanced_themes"`
	Patterns                []Pattern                `json:"patterns"`
	EnhancedPatterns        []Pattern                `json:"enhanced_patterns"`
	SentimentOverview       SentimentOverview        `json:"sentiment_overview"`
	SentimentDetails        []SentimentDetail        `json:"sentiment_details"`
	Personas                []RawPersona             `json:"personas"`
	EnhancedPersonas        []RawPersona             `json:"enhanced_personas"`
	Insights                []Insight                `json:"insights"`
	EnhancedInsights        []Insight                `json:"enhanced_insights"`
	StakeholderIntelligence *StakeholderIntelligence `json:"stakeholder_intelligence,omitempty"`
	Error                   string                   `json:"error,omitempty"`
}
