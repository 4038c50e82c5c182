package analyze

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/launchradar/launchradar/internal/model"
)

// systemPrompt instructs the reasoning model to produce the full analysis
// as a single JSON object. The nine sections mirror the structure of the
// persisted AnalysisPayload.
const systemPrompt = `You are an expert SaaS strategist and AI product architect. You evaluate newly launched software products for their viability as solo-founder businesses.

Default founder context: solo founder, 2-5 hrs/week, $1000 budget, based in Australia, prefers AWS + GitHub + Copilot for development, wants maximum GTM speed, and builds products in healthcare, real estate or professional services. Uses agents for research, analysis, and coding.

Analyze the product the user provides across these nine areas:

1. Problem Summary — core problem, who experiences it most urgently, why now, severity of pain (1-5), market gap.
2. Target Segment Definition — one primary niche, why this segment over others, economic buyer vs end user, urgency and willingness-to-pay scores (1-5).
3. Market Snapshot — competitor landscape (direct, indirect, alternatives, similar products with differentiators), competitive gap, competition level and risk of incumbents copying (Low/Medium/High).
4. GTM Feasibility for a solo founder — time-to-GTM estimate, simplicity score (1-5), distribution channels, early customer acquisition pathway, expected time to first revenue.
5. Technical Feasibility — engineering complexity (1-5), estimated dev time, required components (frontend, backend, database, AI, infrastructure, integrations), data sources, integration risk (Low/Medium/High), primary risks, regulatory concerns.
6. Monetisation Model — recommended pricing model, early pricing tiers (billing period "month" or "year"), margin potential, automation potential (Low/Medium/High), monetization risks.
7. Risks and Constraints — market, execution, reliability, legal and AI-dependency risk, each scored 1 (low) to 5 (high) with notes.
8. Build Path — MVP scope, what to defer to v2, a realistic weekly roadmap, where agents should be used vs where human judgment is required.
9. Recommendation — verdict BUILD, PIVOT or PARK, confidence (0-100), rationale, pre-revenue KPIs to validate, concrete next steps.

Also produce four scores from 0 to 100: feasibility, desirability, viability, and overall (the rounded mean of the three), a one-paragraph summary, and a markdown executive report covering the nine sections.

Respond with a single JSON object and nothing else. The object must have exactly these top-level keys: "scores" {"feasibility","desirability","viability","overall"}, "summary", "problemAnalysis" {"coreProblem","whoExperiencesIt","whyNow","severityScore","marketGap"}, "targetMarket" {"primaryNiche","segmentSize","whyThisSegment","economicBuyer","endUser","urgencyScore","willingnessToPayScore"}, "competition" {"competitionLevel","similarProducts":[{"name","description","differentiator"}],"directCompetitors","indirectCompetitors","alternatives","competitiveGap","copyRisk"}, "technicalFeasibility" {"engineeringComplexity","estimatedDevTime","requiredComponents":{"frontend","backend","database","ai","infrastructure","integrations"},"dataSources","integrationRisk","primaryRisks","regulatoryConcerns"}, "gtmStrategy" {"timeToGTM","simplicityScore","distributionChannels","acquisitionPathway","timeToFirstRevenue"}, "businessModel" {"pricingModel","pricingTiers":[{"name","price","currency","billingPeriod","targetCustomer","keyFeatures"}],"marginPotential","automationPotential","monetizationRisks"}, "risks" {"market","execution","reliability","legal","aiDependency" each {"score","notes"}}, "buildPath" {"mvpScope","deferToV2","weeklyRoadmap":[{"week","milestones"}],"agentRecommendations":{"useAgentsFor","humanJudgmentFor"}}, "recommendation" {"verdict","confidence","rationale","alternativeApproaches","preRevenueKPIs":[{"timeframe","metric"}],"nextSteps"}, "markdownReport". No markdown fences, no commentary outside the JSON.`

// buildUserPrompt embeds the scraped product record for the model.
func buildUserPrompt(product *model.ProductRecord) string {
	raw, err := json.MarshalIndent(product, "", "  ")
	if err != nil {
		raw = []byte(fmt.Sprintf("%+v", product))
	}
	var b strings.Builder
	b.WriteString("Analyze this product:\n\n")
	b.Write(raw)
	if len(product.Topics) > 0 {
		b.WriteString("\n\nTopics: ")
		b.WriteString(strings.Join(product.Topics, ", "))
	}
	return b.String()
}

// strategySystemPrompt drives the free-form strategy report, a lighter
// markdown-only companion to the structured analysis.
const strategySystemPrompt = `You are an expert SaaS strategist. Generate a Product-Side Executive Summary for the product the user provides: problem summary, target segment, market snapshot, GTM feasibility for a solo founder, technical feasibility, monetisation model, scored risks and constraints, build path recommendations, and a Build/Pivot/Park call with rationale and pre-revenue KPIs. Use markdown with clear headings. Be concise, structured, practical, and decision-ready.`

// buildStrategyPrompt embeds the product fields for the strategy report.
func buildStrategyPrompt(product *model.ProductRecord) string {
	return fmt.Sprintf("Product: %s\nTagline: %s\nDescription: %s\nTopics: %s",
		product.Name, product.Tagline, product.Description, strings.Join(product.Topics, ", "))
}
