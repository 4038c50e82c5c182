package model

import "time"

// AnalysisStatus represents the lifecycle state of an analysis record.
type AnalysisStatus string

const (
	StatusCompleted AnalysisStatus = "completed"
	StatusFailed    AnalysisStatus = "failed"
	StatusPending   AnalysisStatus = "pending"
)

// Verdict is the go/no-go recommendation for a product.
type Verdict string

const (
	VerdictBuild Verdict = "BUILD"
	VerdictPivot Verdict = "PIVOT"
	VerdictPark  Verdict = "PARK"
)

// RiskLevel is a coarse Low/Medium/High rating used across several sections.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Scores holds the four top-level viability scores, each 0-100.
type Scores struct {
	Feasibility  int `json:"feasibility"`
	Desirability int `json:"desirability"`
	Viability    int `json:"viability"`
	Overall      int `json:"overall"`
}

// ProblemAnalysis describes the core problem the product addresses.
type ProblemAnalysis struct {
	CoreProblem      string `json:"coreProblem"`
	WhoExperiencesIt string `json:"whoExperiencesIt"`
	WhyNow           string `json:"whyNow"`
	SeverityScore    int    `json:"severityScore"` // 1-5
	MarketGap        string `json:"marketGap"`
}

// TargetMarket defines the primary segment and its buying dynamics.
type TargetMarket struct {
	PrimaryNiche          string `json:"primaryNiche"`
	SegmentSize           string `json:"segmentSize"`
	WhyThisSegment        string `json:"whyThisSegment"`
	EconomicBuyer         string `json:"economicBuyer"`
	EndUser               string `json:"endUser"`
	UrgencyScore          int    `json:"urgencyScore"`          // 1-5
	WillingnessToPayScore int    `json:"willingnessToPayScore"` // 1-5
}

// SimilarProduct is one named competitor with its differentiator.
type SimilarProduct struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Differentiator string `json:"differentiator"`
}

// Competition maps the competitive landscape.
type Competition struct {
	CompetitionLevel    RiskLevel        `json:"competitionLevel"`
	SimilarProducts     []SimilarProduct `json:"similarProducts"`
	DirectCompetitors   []string         `json:"directCompetitors"`
	IndirectCompetitors []string         `json:"indirectCompetitors"`
	Alternatives        []string         `json:"alternatives"`
	CompetitiveGap      string           `json:"competitiveGap"`
	CopyRisk            RiskLevel        `json:"copyRisk"`
}

// RequiredComponents enumerates the technical building blocks.
type RequiredComponents struct {
	Frontend       string   `json:"frontend"`
	Backend        string   `json:"backend"`
	Database       string   `json:"database"`
	AI             string   `json:"ai"`
	Infrastructure string   `json:"infrastructure"`
	Integrations   []string `json:"integrations"`
}

// TechnicalFeasibility assesses engineering effort and integration risk.
type TechnicalFeasibility struct {
	EngineeringComplexity int                `json:"engineeringComplexity"` // 1-5
	EstimatedDevTime      string             `json:"estimatedDevTime"`
	RequiredComponents    RequiredComponents `json:"requiredComponents"`
	DataSources           []string           `json:"dataSources"`
	IntegrationRisk       RiskLevel          `json:"integrationRisk"`
	PrimaryRisks          []string           `json:"primaryRisks"`
	RegulatoryConcerns    []string           `json:"regulatoryConcerns"`
}

// GTMStrategy covers go-to-market feasibility for a solo founder.
type GTMStrategy struct {
	TimeToGTM            string   `json:"timeToGTM"`
	SimplicityScore      int      `json:"simplicityScore"` // 1-5
	DistributionChannels []string `json:"distributionChannels"`
	AcquisitionPathway   []string `json:"acquisitionPathway"`
	TimeToFirstRevenue   string   `json:"timeToFirstRevenue"`
}

// PricingTier is one proposed pricing tier.
type PricingTier struct {
	Name           string   `json:"name"`
	Price          float64  `json:"price"`
	Currency       string   `json:"currency"`
	BillingPeriod  string   `json:"billingPeriod"` // "month" or "year"
	TargetCustomer string   `json:"targetCustomer"`
	KeyFeatures    []string `json:"keyFeatures"`
}

// BusinessModel covers monetisation.
type BusinessModel struct {
	PricingModel        string        `json:"pricingModel"`
	PricingTiers        []PricingTier `json:"pricingTiers"`
	MarginPotential     string        `json:"marginPotential"`
	AutomationPotential RiskLevel     `json:"automationPotential"`
	MonetizationRisks   []string      `json:"monetizationRisks"`
}

// RiskItem is a single scored risk axis.
type RiskItem struct {
	Score int    `json:"score"` // 1-5
	Notes string `json:"notes"`
}

// Risks is the five-axis risk assessment.
type Risks struct {
	Market       RiskItem `json:"market"`
	Execution    RiskItem `json:"execution"`
	Reliability  RiskItem `json:"reliability"`
	Legal        RiskItem `json:"legal"`
	AIDependency RiskItem `json:"aiDependency"`
}

// WeeklyMilestone is one week of the build roadmap.
type WeeklyMilestone struct {
	Week       int      `json:"week"`
	Milestones []string `json:"milestones"`
}

// AgentRecommendations splits work between agents and human judgment.
type AgentRecommendations struct {
	UseAgentsFor     []string `json:"useAgentsFor"`
	HumanJudgmentFor []string `json:"humanJudgmentFor"`
}

// BuildPath describes what to build first and what to defer.
type BuildPath struct {
	MVPScope             []string             `json:"mvpScope"`
	DeferToV2            []string             `json:"deferToV2"`
	WeeklyRoadmap        []WeeklyMilestone    `json:"weeklyRoadmap"`
	AgentRecommendations AgentRecommendations `json:"agentRecommendations"`
}

// PreRevenueKPI is a validation metric to hit before revenue.
type PreRevenueKPI struct {
	Timeframe string `json:"timeframe"`
	Metric    string `json:"metric"`
}

// Recommendation is the final verdict with its rationale.
type Recommendation struct {
	Verdict               Verdict         `json:"verdict"`
	Confidence            int             `json:"confidence"` // 0-100
	Rationale             string          `json:"rationale"`
	AlternativeApproaches []string        `json:"alternativeApproaches,omitempty"`
	PreRevenueKPIs        []PreRevenueKPI `json:"preRevenueKPIs"`
	NextSteps             []string        `json:"nextSteps"`
}

// TokenUsage tracks reasoning-model token consumption for one analysis.
type TokenUsage struct {
	PromptTokens     int     `json:"promptTokens"`
	CompletionTokens int     `json:"completionTokens"`
	TotalTokens      int     `json:"totalTokens"`
	EstimatedCostUSD float64 `json:"estimatedCostUSD"`
}

// AnalysisMetadata records how and when an analysis was produced.
type AnalysisMetadata struct {
	SchemaVersion    string      `json:"schemaVersion"`
	ModelUsed        string      `json:"modelUsed"`
	AnalyzedAt       string      `json:"analyzedAt"`
	AnalyzedBy       string      `json:"analyzedBy"`
	ProcessingTimeMs int64       `json:"processingTimeMs"`
	TokenUsage       *TokenUsage `json:"tokenUsage,omitempty"`
	Reasoning        string      `json:"reasoning,omitempty"`
}

// AnalysisPayload is the analytical content the reasoning model must
// produce: scores plus every structured section. The orchestrator wraps it
// with identity and metadata to form a full AnalysisRecord.
type AnalysisPayload struct {
	Scores               Scores               `json:"scores"`
	Summary              string               `json:"summary"`
	ProblemAnalysis      ProblemAnalysis      `json:"problemAnalysis"`
	TargetMarket         TargetMarket         `json:"targetMarket"`
	Competition          Competition          `json:"competition"`
	TechnicalFeasibility TechnicalFeasibility `json:"technicalFeasibility"`
	GTMStrategy          GTMStrategy          `json:"gtmStrategy"`
	BusinessModel        BusinessModel        `json:"businessModel"`
	Risks                Risks                `json:"risks"`
	BuildPath            BuildPath            `json:"buildPath"`
	Recommendation       Recommendation       `json:"recommendation"`
	MarkdownReport       string               `json:"markdownReport"`
}

// AnalysisRecord is the persisted unit of work: an AnalysisPayload wrapped
// with the product snapshot, identity, status and metadata. Records are
// append-only per slug; the store serves the newest completed one.
type AnalysisRecord struct {
	ID           string           `json:"id"`
	ProductSlug  string           `json:"productSlug"`
	SourceURL    string           `json:"sourceUrl"`
	Source       Source           `json:"source"`
	Product      ProductRecord    `json:"product"`
	AnalysisPayload
	Metadata     AnalysisMetadata `json:"metadata"`
	CreatedAt    string           `json:"createdAt"`
	UpdatedAt    string           `json:"updatedAt"`
	Status       AnalysisStatus   `json:"status"`
	ErrorMessage string           `json:"errorMessage,omitempty"`
}

// CreatedAtTime parses CreatedAt; zero time when unparsable.
func (r *AnalysisRecord) CreatedAtTime() time.Time {
	t, err := time.Parse(time.RFC3339, r.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}
