package llm

import "fmt"

// TaskKind selects one entry of the fixed gateway task catalogue. The
// gateway dispatches on this closed enumeration; each kind has a declared
// output type documented on its constant.
type TaskKind string

// The task catalogue. Output types live in results.go unless noted.
const (
	// TaskQuestionnaireBuild produces a RawQuestionnaire.
	TaskQuestionnaireBuild TaskKind = "questionnaire_build"
	// TaskPersonaBatch produces a PersonaBatch.
	TaskPersonaBatch TaskKind = "persona_batch"
	// TaskInterviewSimulation produces a models.Interview.
	TaskInterviewSimulation TaskKind = "interview_simulation"
	// TaskThemeExtraction produces a ThemesResult.
	TaskThemeExtraction TaskKind = "theme_extraction"
	// TaskPatternDetection produces a PatternsResult.
	TaskPatternDetection TaskKind = "pattern_detection"
	// TaskStakeholderAnalysis produces a StakeholderResult.
	TaskStakeholderAnalysis TaskKind = "stakeholder_analysis"
	// TaskSentimentAnalysis produces a SentimentResult.
	TaskSentimentAnalysis TaskKind = "sentiment_analysis"
	// TaskPersonaSynthesis produces a PersonaSynthesisResult.
	TaskPersonaSynthesis TaskKind = "persona_synthesis"
	// TaskInsightSynthesis produces an InsightsResult.
	TaskInsightSynthesis TaskKind = "insight_synthesis"
	// TaskSimulationInsights produces a models.SimulationInsights.
	TaskSimulationInsights TaskKind = "simulation_insights"
	// TaskSingleResponse produces a SingleResponse.
	TaskSingleResponse TaskKind = "single_response"
)

// taskSpec holds per-kind invocation defaults.
type taskSpec struct {
	system      string
	temperature float64
}

var catalogue = map[TaskKind]taskSpec{
	TaskQuestionnaireBuild: {
		system: "You design stakeholder research questionnaires. Given a business brief, " +
			"identify primary and secondary stakeholders and write interview questions for each, " +
			"grouped into problem-discovery, solution-validation, and follow-up phases. " +
			"Always answer with a single JSON object containing primaryStakeholders, " +
			"secondaryStakeholders, and timeEstimate.",
		temperature: 0.4,
	},
	TaskPersonaBatch: {
		system: "You are an expert persona generator for customer research simulations. " +
			"Create realistic, diverse people grounded in real demographics, with specific " +
			"motivations and pain points relevant to the business context. Avoid stereotypes. " +
			"Always answer with a JSON object containing a people array.",
		temperature: 0.0,
	},
	TaskInterviewSimulation: {
		system: "You are an expert interview simulator that generates realistic customer " +
			"interview responses. Stay completely in character as the given persona, include " +
			"natural human elements, vary response lengths, and show genuine emotions. " +
			"For each response identify sentiment, key insights, and natural follow-up questions. " +
			"Always answer with a complete interview JSON object.",
		temperature: 0.7,
	},
	TaskThemeExtraction: {
		system: "You extract interview themes with stakeholder attribution and verbatim " +
			"supporting statements. Always answer with a JSON object containing themes and " +
			"enhanced_themes arrays.",
		temperature: 0.3,
	},
	TaskPatternDetection: {
		system: "You detect cross-stakeholder patterns and relationships: consensus areas, " +
			"conflict zones, influence networks, and behavioral trends. Always answer with a " +
			"JSON object containing patterns and enhanced_patterns arrays.",
		temperature: 0.3,
	},
	TaskStakeholderAnalysis: {
		system: "You analyze stakeholders and produce stakeholder intelligence: detected " +
			"stakeholders with demographic profiles, influence metrics, and authentic evidence; " +
			"cross-stakeholder patterns; and a multi-stakeholder summary. Always answer with a " +
			"JSON object containing stakeholder_intelligence.",
		temperature: 0.3,
	},
	TaskSentimentAnalysis: {
		system: "You analyze sentiment distribution and categorised sentiment details with " +
			"verbatim statements. Always answer with a JSON object containing sentiment_overview " +
			"and sentiment_details.",
		temperature: 0.2,
	},
	TaskPersonaSynthesis: {
		system: "You generate personas and enhanced personas from interview data. Every trait " +
			"carries a value, a confidence score, and verbatim evidence quotes extracted from the " +
			"source data, never invented. Always answer with a JSON object containing personas " +
			"and enhanced_personas arrays.",
		temperature: 0.4,
	},
	TaskInsightSynthesis: {
		system: "You synthesize actionable business insights and enhanced insights from " +
			"analysis artefacts, each with confidence, evidence, and business impact. Always " +
			"answer with a JSON object containing insights and enhanced_insights arrays.",
		temperature: 0.4,
	},
	TaskSimulationInsights: {
		system: "You summarise a set of simulated stakeholder interviews into overall sentiment, " +
			"key themes, stakeholder priorities, risks, opportunities, and recommendations. " +
			"Always answer with a single JSON object.",
		temperature: 0.4,
	},
	TaskSingleResponse: {
		system: "You answer one research question as a specific persona, staying completely in " +
			"character. Always answer with a JSON object containing question, response, sentiment, " +
			"and key_insights.",
		temperature: 0.7,
	},
}

// specFor resolves the catalogue entry for kind.
func specFor(kind TaskKind) (taskSpec, error) {
	spec, ok := catalogue[kind]
	if !ok {
		return taskSpec{}, fmt.Errorf("unknown task kind %q", kind)
	}
	return spec, nil
}
