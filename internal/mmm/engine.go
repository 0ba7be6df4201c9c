// Package mmm defines the marketing mix modeling engine collaborator.
// The engine is opaque to this service: it is called with tenant-scoped
// data and returns attribution results. The real engine runs elsewhere;
// StubEngine produces deterministic placeholder output.
package mmm

import "context"

// RunParams are the caller-supplied parameters for a model run.
type RunParams struct {
	DateFrom string   `json:"date_from,omitempty"`
	DateTo   string   `json:"date_to,omitempty"`
	Channels []string `json:"channels,omitempty"`
}

// ChannelAttribution is one channel's share of modeled outcomes.
type ChannelAttribution struct {
	Channel      string   `json:"channel"`
	Contribution float64  `json:"contribution"`
	ROI          *float64 `json:"roi"`
}

// Accuracy summarizes model fit.
type Accuracy struct {
	RSquared float64 `json:"r_squared"`
	MAPE     float64 `json:"mape"`
}

// Results is the output of a completed model run.
type Results struct {
	ChannelAttribution []ChannelAttribution `json:"channel_attribution"`
	ModelAccuracy      Accuracy             `json:"model_accuracy"`
}

// Recommendation is a spend reallocation suggestion derived from the
// latest model run.
type Recommendation struct {
	CurrentSpend        map[string]float64 `json:"current_spend"`
	RecommendedSpend    map[string]float64 `json:"recommended_spend"`
	ExpectedImprovement map[string]float64 `json:"expected_improvement"`
	Rationale           []string           `json:"recommendation_rationale"`
}

// Engine runs marketing mix models over a tenant's data.
type Engine interface {
	Run(ctx context.Context, tenantID string, params RunParams) error
	Results(ctx context.Context, tenantID string) (*Results, error)
	Recommendations(ctx context.Context, tenantID string) (*Recommendation, error)
}
