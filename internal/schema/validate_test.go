package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchradar/launchradar/internal/model"
)

func validPayload() model.AnalysisPayload {
	return model.AnalysisPayload{
		Scores:  model.Scores{Feasibility: 70, Desirability: 80, Viability: 65, Overall: 72},
		Summary: "A focused CRM for freelancers with a credible wedge.",
		ProblemAnalysis: model.ProblemAnalysis{
			CoreProblem:      "Freelancers lose track of client follow-ups.",
			WhoExperiencesIt: "Solo freelancers and two-person studios.",
			WhyNow:           "Remote client work keeps growing.",
			SeverityScore:    4,
			MarketGap:        "Incumbent CRMs are team-priced and team-shaped.",
		},
		TargetMarket: model.TargetMarket{
			PrimaryNiche:          "Freelance designers",
			SegmentSize:           "~2M in the US and EU",
			WhyThisSegment:        "High churn pain, low tool satisfaction.",
			EconomicBuyer:         "The freelancer",
			EndUser:               "The freelancer",
			UrgencyScore:          3,
			WillingnessToPayScore: 4,
		},
		Competition: model.Competition{
			CompetitionLevel: model.RiskMedium,
			SimilarProducts: []model.SimilarProduct{
				{Name: "Bonsai", Description: "Freelance suite", Differentiator: "Narrower, cheaper"},
			},
			DirectCompetitors:   []string{"Bonsai"},
			IndirectCompetitors: []string{"Notion"},
			Alternatives:        []string{"Spreadsheets"},
			CompetitiveGap:      "No follow-up-first workflow exists.",
			CopyRisk:            model.RiskHigh,
		},
		TechnicalFeasibility: model.TechnicalFeasibility{
			EngineeringComplexity: 2,
			EstimatedDevTime:      "4-6 weeks",
			RequiredComponents: model.RequiredComponents{
				Frontend:       "SPA",
				Backend:        "Monolith API",
				Database:       "Postgres",
				AI:             "None required for MVP",
				Infrastructure: "Single VPS",
				Integrations:   []string{"Stripe"},
			},
			DataSources:        []string{"User-entered"},
			IntegrationRisk:    model.RiskLow,
			PrimaryRisks:       []string{"Email deliverability"},
			RegulatoryConcerns: []string{"GDPR"},
		},
		GTMStrategy: model.GTMStrategy{
			TimeToGTM:            "6 weeks",
			SimplicityScore:      4,
			DistributionChannels: []string{"Freelance communities"},
			AcquisitionPathway:   []string{"Content", "Referrals"},
			TimeToFirstRevenue:   "2 months",
		},
		BusinessModel: model.BusinessModel{
			PricingModel: "subscription",
			PricingTiers: []model.PricingTier{
				{Name: "Solo", Price: 12, Currency: "USD", BillingPeriod: "month",
					TargetCustomer: "Freelancers", KeyFeatures: []string{"Follow-up queue"}},
			},
			MarginPotential:     "High",
			AutomationPotential: model.RiskHigh,
			MonetizationRisks:   []string{"Price sensitivity"},
		},
		Risks: model.Risks{
			Market:       model.RiskItem{Score: 2, Notes: "Proven demand"},
			Execution:    model.RiskItem{Score: 2, Notes: "Small surface"},
			Reliability:  model.RiskItem{Score: 1, Notes: "CRUD app"},
			Legal:        model.RiskItem{Score: 1, Notes: "Standard terms"},
			AIDependency: model.RiskItem{Score: 1, Notes: "None"},
		},
		BuildPath: model.BuildPath{
			MVPScope:  []string{"Contacts", "Follow-up queue"},
			DeferToV2: []string{"Invoicing"},
			WeeklyRoadmap: []model.WeeklyMilestone{
				{Week: 1, Milestones: []string{"Schema and auth"}},
			},
			AgentRecommendations: model.AgentRecommendations{
				UseAgentsFor:     []string{"CRUD scaffolding"},
				HumanJudgmentFor: []string{"Pricing"},
			},
		},
		Recommendation: model.Recommendation{
			Verdict:        model.VerdictBuild,
			Confidence:     78,
			Rationale:      "Narrow wedge, fast path to revenue.",
			PreRevenueKPIs: []model.PreRevenueKPI{{Timeframe: "30 days", Metric: "20 active users"}},
			NextSteps:      []string{"Landing page"},
		},
		MarkdownReport: "# FlowBase\n\nViability report.",
	}
}

func marshalPayload(t *testing.T) string {
	t.Helper()
	raw, err := json.Marshal(validPayload())
	require.NoError(t, err)
	return string(raw)
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding prose", "Here is the analysis:\n{\"a\":1}\nHope that helps!", `{"a":1}`},
		{"fence and prose", "```json\nSure:\n{\"a\":1}\n```", `{"a":1}`},
		{"no json", "no object here", "no object here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSON(tt.in))
		})
	}
}

func TestParsePayload_Valid(t *testing.T) {
	payload, err := ParsePayload(marshalPayload(t))
	require.NoError(t, err)
	assert.Equal(t, 72, payload.Scores.Overall)
	assert.Equal(t, model.VerdictBuild, payload.Recommendation.Verdict)
}

func TestParsePayload_Fenced(t *testing.T) {
	payload, err := ParsePayload("```json\n" + marshalPayload(t) + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "A focused CRM for freelancers with a credible wedge.", payload.Summary)
}

func TestParsePayload_Rejections(t *testing.T) {
	base := validPayload()

	mutate := func(t *testing.T, fn func(m map[string]any)) string {
		t.Helper()
		raw, err := json.Marshal(base)
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))
		fn(m)
		out, err := json.Marshal(m)
		require.NoError(t, err)
		return string(out)
	}

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not json", "the model refused to answer"},
		{"truncated", marshalPayload(t)[:50]},
		{"score out of range", mutate(t, func(m map[string]any) {
			m["scores"].(map[string]any)["overall"] = 250
		})},
		{"severity above five", mutate(t, func(m map[string]any) {
			m["problemAnalysis"].(map[string]any)["severityScore"] = 9
		})},
		{"bad verdict", mutate(t, func(m map[string]any) {
			m["recommendation"].(map[string]any)["verdict"] = "MAYBE"
		})},
		{"bad risk level", mutate(t, func(m map[string]any) {
			m["competition"].(map[string]any)["competitionLevel"] = "Extreme"
		})},
		{"bad billing period", mutate(t, func(m map[string]any) {
			tiers := m["businessModel"].(map[string]any)["pricingTiers"].([]any)
			tiers[0].(map[string]any)["billingPeriod"] = "weekly"
		})},
		{"missing section", mutate(t, func(m map[string]any) {
			delete(m, "risks")
		})},
		{"empty summary", mutate(t, func(m map[string]any) {
			m["summary"] = ""
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePayload(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestValidateRecord(t *testing.T) {
	rec := &model.AnalysisRecord{
		ID:              "3f1b2c2e-6f6c-4ed0-9e4e-5a1b6c7d8e9f",
		ProductSlug:     "flowbase",
		SourceURL:       "https://betalist.com/startups/flowbase",
		Source:          model.SourceBetalist,
		Product:         model.ProductRecord{Name: "FlowBase"},
		AnalysisPayload: validPayload(),
		Metadata: model.AnalysisMetadata{
			SchemaVersion: Version,
			ModelUsed:     "deepseek-reasoner",
			AnalyzedAt:    "2026-09-01T12:00:00Z",
			AnalyzedBy:    "launchradar",
		},
		CreatedAt: "2026-09-01T12:00:00Z",
		UpdatedAt: "2026-09-01T12:00:00Z",
		Status:    model.StatusCompleted,
	}
	require.NoError(t, ValidateRecord(rec))

	rec.Status = "done"
	assert.Error(t, ValidateRecord(rec))

	rec.Status = model.StatusCompleted
	rec.ProductSlug = ""
	assert.Error(t, ValidateRecord(rec))

	assert.Error(t, ValidateRecord(nil))
}
