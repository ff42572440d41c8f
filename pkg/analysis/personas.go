package analysis

import (
	"log/slog"
	"strings"

	"github.com/axwise-ai/axpersona/pkg/models"
)

// Trait acceptance thresholds for persona post-processing.
const (
	minTraitValueLen      = 10
	substantialEvidenceLen = 20
	maxEvidencePerTrait   = 5
	defaultConfidence     = 0.7
)

// genericPlaceholders are value fragments that mark a trait as filler
// rather than evidence-backed content. Matching traits are dropped.
var genericPlaceholders = []string{
	"domain-specific",
	"professional",
	"technology and tools",
	"work environment",
	"collaboration approach",
	"analysis approach",
	"professional challenges",
	"professional responsibilities",
	"tools and methods",
	"professional role",
	"professional growth",
	"efficiency and professional",
	"values data-driven",
	"open to technological",
}

// inferencePhrases mark evidence items as derived rather than verbatim.
var inferencePhrases = []string{
	"inferred from",
	"based on statements",
	"derived from",
	"extracted from",
	"representative statements",
}

// StructuredDemographics is the decomposed demographics bundle: each
// sub-field is an accepted trait routed from the raw evidence.
type StructuredDemographics struct {
	ExperienceLevel     *models.PersonaTrait `json:"experience_level,omitempty"`
	Industry            *models.PersonaTrait `json:"industry,omitempty"`
	Location            *models.PersonaTrait `json:"location,omitempty"`
	ProfessionalContext *models.PersonaTrait `json:"professional_context,omitempty"`
	Roles               *models.PersonaTrait `json:"roles,omitempty"`
	Confidence          float64              `json:"confidence"`
}

// CanonicalPersona is the post-processed persona: every surviving trait is
// validated and evidence-backed; rejected traits are dropped, not defaulted.
type CanonicalPersona struct {
	Name                      string                  `json:"name"`
	Description               string                  `json:"description"`
	Archetype                 string                  `json:"archetype"`
	Demographics              *StructuredDemographics `json:"demographics,omitempty"`
	GoalsAndMotivations       *models.PersonaTrait    `json:"goals_and_motivations,omitempty"`
	SkillsAndExpertise        *models.PersonaTrait    `json:"skills_and_expertise,omitempty"`
	WorkflowAndEnvironment    *models.PersonaTrait    `json:"workflow_and_environment,omitempty"`
	ChallengesAndFrustrations *models.PersonaTrait    `json:"challenges_and_frustrations,omitempty"`
	NeedsAndDesires           *models.PersonaTrait    `json:"needs_and_desires,omitempty"`
	TechnologyAndTools        *models.PersonaTrait    `json:"technology_and_tools,omitempty"`
	AttitudeTowardsResearch   *models.PersonaTrait    `json:"attitude_towards_research,omitempty"`
	AttitudeTowardsAI         *models.PersonaTrait    `json:"attitude_towards_ai,omitempty"`
	KeyQuotes                 *models.PersonaTrait    `json:"key_quotes,omitempty"`
	OverallConfidence         float64                 `json:"overall_confidence"`
	Patterns                  []string                `json:"patterns,omitempty"`
}

// NormalizePersona maps a raw analysis persona onto the canonical schema.
// The second return value is false when the persona fails validation (no
// name, or no surviving trait) and should be skipped.
func NormalizePersona(raw models.RawPersona) (*CanonicalPersona, bool) {
	if strings.TrimSpace(raw.Name) == "" {
		return nil, false
	}

	confidence := raw.OverallConfidence
	if confidence <= 0 || confidence > 1 {
		confidence = defaultConfidence
	}

	description := raw.Description
	if description == "" {
		description = raw.Name
	}

	persona := &CanonicalPersona{
		Name:                      raw.Name,
		Description:               description,
		Archetype:                 raw.Archetype,
		Demographics:              decomposeDemographics(raw.Demographics, confidence),
		GoalsAndMotivations:       NormalizeTrait(raw.GoalsAndMotivations),
		SkillsAndExpertise:        NormalizeTrait(raw.SkillsAndExpertise),
		WorkflowAndEnvironment:    NormalizeTrait(raw.WorkflowAndEnvironment),
		ChallengesAndFrustrations: NormalizeTrait(raw.ChallengesAndFrustrations),
		NeedsAndDesires:           NormalizeTrait(raw.NeedsAndDesires),
		TechnologyAndTools:        NormalizeTrait(raw.TechnologyAndTools),
		AttitudeTowardsResearch:   NormalizeTrait(raw.AttitudeTowardsResearch),
		AttitudeTowardsAI:         NormalizeTrait(raw.AttitudeTowardsAI),
		KeyQuotes:                 keyQuotesTrait(raw),
		OverallConfidence:         confidence,
		Patterns:                  raw.Patterns,
	}

	if !persona.hasAnyTrait() {
		slog.Debug("Persona rejected by post-processing", "name", raw.Name)
		return nil, false
	}
	return persona, true
}

func (p *CanonicalPersona) hasAnyTrait() bool {
	return p.Demographics != nil ||
		p.GoalsAndMotivations != nil ||
		p.SkillsAndExpertise != nil ||
		p.WorkflowAndEnvironment != nil ||
		p.ChallengesAndFrustrations != nil ||
		p.NeedsAndDesires != nil ||
		p.TechnologyAndTools != nil ||
		p.AttitudeTowardsResearch != nil ||
		p.AttitudeTowardsAI != nil ||
		p.KeyQuotes != nil
}

// NormalizeTrait wraps a raw trait into the canonical form. A trait is
// accepted iff its value is at least 10 characters, does not match the
// generic-placeholder blacklist, and retains at least one substantial
// (>= 20 character) verbatim evidence item. Rejected traits return nil.
func NormalizeTrait(raw *models.RawTrait) *models.PersonaTrait {
	if raw == nil {
		return nil
	}
	value := strings.TrimSpace(raw.Value)
	if len(value) < minTraitValueLen {
		return nil
	}
	lower := strings.ToLower(value)
	for _, pattern := range genericPlaceholders {
		if strings.Contains(lower, pattern) {
			slog.Debug("Trait rejected as generic placeholder", "value", truncate(value, 50))
			return nil
		}
	}

	evidence := filterEvidence(raw.Evidence)
	if len(evidence) == 0 {
		return nil
	}

	confidence := raw.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = defaultConfidence
	}
	return &models.PersonaTrait{Value: value, Confidence: confidence, Evidence: evidence}
}

// filterEvidence keeps substantial verbatim items, dropping inference
// phrasing, and caps the list.
func filterEvidence(items []string) []string {
	var out []string
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if len(trimmed) < substantialEvidenceLen {
			continue
		}
		lower := strings.ToLower(trimmed)
		derived := false
		for _, phrase := range inferencePhrases {
			if strings.Contains(lower, phrase) {
				derived = true
				break
			}
		}
		if derived {
			continue
		}
		out = append(out, trimmed)
		if len(out) == maxEvidencePerTrait {
			break
		}
	}
	return out
}

// Keyword routes for demographic decomposition.
var (
	experienceKeywords = []string{"years", "experience", "working", "been in"}
	industryKeywords   = []string{"company", "industry", "sector", "business", "tech", "technology"}
	locationKeywords   = []string{"based", "located", "city", "area", "live", "office"}
	roleKeywords       = []string{"role", "position", "job", "title", "manager", "developer", "analyst"}
)

// decomposeDemographics routes each evidence item by keyword into
// structured sub-fields. The bundle is accepted only when at least two
// sub-fields materialise from at least two evidence items.
func decomposeDemographics(raw *models.RawTrait, fallbackConfidence float64) *StructuredDemographics {
	if raw == nil {
		return nil
	}
	evidence := filterEvidence(raw.Evidence)
	if len(evidence) < 2 {
		return nil
	}

	confidence := raw.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = fallbackConfidence
	}

	demo := &StructuredDemographics{Confidence: confidence}
	fields := 0

	if routed := routeEvidence(evidence, experienceKeywords); len(routed) > 0 {
		demo.ExperienceLevel = &models.PersonaTrait{
			Value: "Experience mentioned in context", Confidence: confidence, Evidence: routed}
		fields++
	}
	if routed := routeEvidence(evidence, industryKeywords); len(routed) > 0 {
		demo.Industry = &models.PersonaTrait{
			Value: "Industry context from interview", Confidence: confidence, Evidence: routed}
		fields++
	}
	if routed := routeEvidence(evidence, locationKeywords); len(routed) > 0 {
		demo.Location = &models.PersonaTrait{
			Value: "Location mentioned in interview", Confidence: confidence, Evidence: routed}
		fields++
	}
	if routed := routeEvidence(evidence, roleKeywords); len(routed) > 0 {
		demo.Roles = &models.PersonaTrait{
			Value: "Role context from interview", Confidence: confidence, Evidence: routed}
		fields++
	}
	if value := strings.TrimSpace(raw.Value); len(value) > substantialEvidenceLen {
		capped := evidence
		if len(capped) > 3 {
			capped = capped[:3]
		}
		demo.ProfessionalContext = &models.PersonaTrait{
			Value: value, Confidence: confidence, Evidence: capped}
		fields++
	}

	if fields < 2 {
		return nil
	}
	return demo
}

// routeEvidence returns up to two evidence items containing any keyword.
func routeEvidence(evidence, keywords []string) []string {
	var out []string
	for _, item := range evidence {
		lower := strings.ToLower(item)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				out = append(out, item)
				break
			}
		}
		if len(out) == 2 {
			break
		}
	}
	return out
}

// keyQuotesTrait builds the key-quotes trait from the raw quote list,
// falling back to quotes gathered from the other trait fields.
func keyQuotesTrait(raw models.RawPersona) *models.PersonaTrait {
	quotes := filterEvidence(raw.KeyQuotes)
	if len(quotes) > 0 {
		return &models.PersonaTrait{
			Value:      "Representative quotes from the interview",
			Confidence: 0.9,
			Evidence:   quotes,
		}
	}

	var gathered []string
	for _, trait := range []*models.RawTrait{
		raw.Demographics, raw.GoalsAndMotivations, raw.SkillsAndExpertise,
		raw.ChallengesAndFrustrations, raw.NeedsAndDesires,
	} {
		if trait != nil {
			gathered = append(gathered, trait.Evidence...)
		}
	}
	gathered = filterEvidence(gathered)
	if len(gathered) == 0 {
		return nil
	}
	return &models.PersonaTrait{
		Value:      "Quotes extracted from other fields",
		Confidence: defaultConfidence,
		Evidence:   gathered,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
