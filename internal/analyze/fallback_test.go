package analyze

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchradar/launchradar/internal/model"
	"github.com/launchradar/launchradar/internal/schema"
)

func TestBuildFallbackPayload_Heuristics(t *testing.T) {
	tests := []struct {
		name             string
		topics           []string
		wantFeasibility  int
		wantDesirability int
	}{
		{"no topics", nil, 85, 70},
		{"tech heavy", []string{"Developer Tools"}, 60, 70},
		{"ai product", []string{"Artificial Intelligence"}, 60, 70},
		{"consumer", []string{"Productivity"}, 85, 90},
		{"tech and consumer", []string{"API", "Social Media"}, 60, 90},
		{"unknown topics", []string{"Fintech", "Health"}, 85, 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := buildFallbackPayload(&model.ProductRecord{Name: "Widget", Topics: tt.topics})
			assert.Equal(t, tt.wantFeasibility, p.Scores.Feasibility)
			assert.Equal(t, tt.wantDesirability, p.Scores.Desirability)
			assert.Equal(t, fallbackViability, p.Scores.Viability)
		})
	}
}

func TestBuildFallbackPayload_OverallIsRoundedMean(t *testing.T) {
	// 85 + 70 + 65 = 220, mean 73.33 rounds to 73.
	p := buildFallbackPayload(&model.ProductRecord{Name: "Widget"})
	assert.Equal(t, 73, p.Scores.Overall)

	// 60 + 90 + 65 = 215, mean 71.67 rounds to 72.
	p = buildFallbackPayload(&model.ProductRecord{Name: "Widget", Topics: []string{"API", "Productivity"}})
	assert.Equal(t, 72, p.Scores.Overall)
}

func TestBuildFallbackPayload_MarkedAsFallback(t *testing.T) {
	p := buildFallbackPayload(&model.ProductRecord{Name: "Widget"})
	assert.Contains(t, p.Summary, "(Fallback Analysis)")
	assert.Contains(t, p.MarkdownReport, "(Fallback Analysis)")
	assert.Equal(t, model.VerdictPark, p.Recommendation.Verdict)
	assert.Equal(t, fallbackConfidence, p.Recommendation.Confidence)
}

func TestBuildFallbackPayload_UsesTaglineAsCoreProblem(t *testing.T) {
	p := buildFallbackPayload(&model.ProductRecord{Name: "Widget", Tagline: "CRM for plumbers"})
	assert.Equal(t, "CRM for plumbers", p.ProblemAnalysis.CoreProblem)

	p = buildFallbackPayload(&model.ProductRecord{Name: "Widget"})
	assert.Equal(t, placeholder, p.ProblemAnalysis.CoreProblem)
}

func TestBuildFallbackPayload_IsSchemaValid(t *testing.T) {
	product := &model.ProductRecord{
		Name:    "Widget",
		Tagline: "CRM for plumbers",
		Topics:  []string{"Productivity"},
	}
	now := time.Now().UTC().Format(time.RFC3339)
	rec := &model.AnalysisRecord{
		ID:          "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		ProductSlug: "widget",
		SourceURL:   "https://betalist.com/startups/widget",
		Source:      model.SourceBetalist,
		Product:     *product,
		Metadata: model.AnalysisMetadata{
			SchemaVersion: schema.Version,
			ModelUsed:     "fallback-heuristic",
			AnalyzedAt:    now,
			AnalyzedBy:    "launchradar",
		},
		CreatedAt: now,
		UpdatedAt: now,
		Status:    model.StatusFailed,
	}
	rec.AnalysisPayload = buildFallbackPayload(product)

	require.NoError(t, schema.ValidateRecord(rec))
}
