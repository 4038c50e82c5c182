package analyze

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/launchradar/launchradar/internal/model"
)

// Topic heuristics for the deterministic fallback. Tech-heavy products are
// harder to replicate; consumer topics signal broader demand.
var (
	techTopics     = []string{"Developer Tools", "Artificial Intelligence", "API"}
	consumerTopics = []string{"Productivity", "User Experience", "Social Media"}
)

const (
	fallbackViability  = 65
	fallbackConfidence = 25
	placeholder        = "Requires AI analysis"
)

// buildFallbackPayload constructs a complete, schema-valid payload from
// local heuristics only. Every section is populated with explicit
// low-confidence placeholders; nothing is left absent.
func buildFallbackPayload(product *model.ProductRecord) model.AnalysisPayload {
	techHeavy := containsAnyTopic(product.Topics, techTopics)
	consumer := containsAnyTopic(product.Topics, consumerTopics)

	feasibility := 85
	if techHeavy {
		feasibility = 60
	}
	desirability := 70
	if consumer {
		desirability = 90
	}
	overall := int(math.Round(float64(feasibility+desirability+fallbackViability) / 3))

	feasibilityNote := "Standard tech stack. Core features can be replicated using off-the-shelf components and modern frameworks."
	if techHeavy {
		feasibilityNote = fmt.Sprintf("High technical complexity due to reliance on %s. Replication will require significant R&D.",
			strings.Join(product.Topics, ", "))
	}
	desirabilityNote := "Niche market appeal. Requires deliberate positioning to resonate with the target segment."
	if consumer {
		desirabilityNote = "Strong demand signal for productivity and UX-focused tools in the target market."
	}

	return model.AnalysisPayload{
		Scores: model.Scores{
			Feasibility:  feasibility,
			Desirability: desirability,
			Viability:    fallbackViability,
			Overall:      overall,
		},
		Summary: fmt.Sprintf("(Fallback Analysis) Heuristic assessment of %s: feasibility %d, desirability %d, viability %d. %s %s",
			product.Name, feasibility, desirability, fallbackViability, feasibilityNote, desirabilityNote),
		ProblemAnalysis: model.ProblemAnalysis{
			CoreProblem:      firstNonEmpty(product.Tagline, placeholder),
			WhoExperiencesIt: placeholder,
			WhyNow:           placeholder,
			SeverityScore:    3,
			MarketGap:        placeholder,
		},
		TargetMarket: model.TargetMarket{
			PrimaryNiche:          firstNonEmpty(strings.Join(product.Topics, ", "), placeholder),
			SegmentSize:           placeholder,
			WhyThisSegment:        placeholder,
			EconomicBuyer:         placeholder,
			EndUser:               placeholder,
			UrgencyScore:          3,
			WillingnessToPayScore: 3,
		},
		Competition: model.Competition{
			CompetitionLevel:    model.RiskMedium,
			SimilarProducts:     []model.SimilarProduct{},
			DirectCompetitors:   []string{},
			IndirectCompetitors: []string{},
			Alternatives:        []string{},
			CompetitiveGap:      placeholder,
			CopyRisk:            model.RiskMedium,
		},
		TechnicalFeasibility: model.TechnicalFeasibility{
			EngineeringComplexity: 3,
			EstimatedDevTime:      placeholder,
			RequiredComponents: model.RequiredComponents{
				Frontend:       placeholder,
				Backend:        placeholder,
				Database:       placeholder,
				AI:             placeholder,
				Infrastructure: placeholder,
				Integrations:   []string{},
			},
			DataSources:        []string{},
			IntegrationRisk:    model.RiskMedium,
			PrimaryRisks:       []string{placeholder},
			RegulatoryConcerns: []string{},
		},
		GTMStrategy: model.GTMStrategy{
			TimeToGTM:            placeholder,
			SimplicityScore:      3,
			DistributionChannels: []string{},
			AcquisitionPathway:   []string{},
			TimeToFirstRevenue:   placeholder,
		},
		BusinessModel: model.BusinessModel{
			PricingModel:        placeholder,
			PricingTiers:        []model.PricingTier{},
			MarginPotential:     placeholder,
			AutomationPotential: model.RiskMedium,
			MonetizationRisks:   []string{placeholder},
		},
		Risks: model.Risks{
			Market:       model.RiskItem{Score: 3, Notes: placeholder},
			Execution:    model.RiskItem{Score: 3, Notes: placeholder},
			Reliability:  model.RiskItem{Score: 3, Notes: placeholder},
			Legal:        model.RiskItem{Score: 3, Notes: placeholder},
			AIDependency: model.RiskItem{Score: 3, Notes: placeholder},
		},
		BuildPath: model.BuildPath{
			MVPScope:      []string{placeholder},
			DeferToV2:     []string{},
			WeeklyRoadmap: []model.WeeklyMilestone{},
			AgentRecommendations: model.AgentRecommendations{
				UseAgentsFor:     []string{},
				HumanJudgmentFor: []string{placeholder},
			},
		},
		Recommendation: model.Recommendation{
			Verdict:        model.VerdictPark,
			Confidence:     fallbackConfidence,
			Rationale:      "Reasoning model unavailable; heuristic scores only. Re-run the analysis before acting on this verdict.",
			PreRevenueKPIs: []model.PreRevenueKPI{},
			NextSteps:      []string{"Re-run analysis once the reasoning model is reachable"},
		},
		MarkdownReport: fmt.Sprintf("# %s (Fallback Analysis)\n\nHeuristic scores: feasibility %d, desirability %d, viability %d, overall %d.\n\n%s\n\n%s\n",
			product.Name, feasibility, desirability, fallbackViability, overall, feasibilityNote, desirabilityNote),
	}
}

func containsAnyTopic(topics, wanted []string) bool {
	for _, t := range topics {
		if slices.Contains(wanted, t) {
			return true
		}
	}
	return false
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}
