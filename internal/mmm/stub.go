package mmm

import "context"

func roiPtr(v float64) *float64 { return &v }

// StubEngine returns canned attribution output until the real modeling
// service is wired in. Tenant scoping still applies: callers only reach
// it through tenant-guarded handlers.
type StubEngine struct{}

// NewStubEngine creates the placeholder engine.
func NewStubEngine() *StubEngine {
	return &StubEngine{}
}

func (e *StubEngine) Run(_ context.Context, _ string, _ RunParams) error {
	return nil
}

func (e *StubEngine) Results(_ context.Context, _ string) (*Results, error) {
	return &Results{
		ChannelAttribution: []ChannelAttribution{
			{Channel: "Facebook", Contribution: 25.3, ROI: roiPtr(2.8)},
			{Channel: "Google", Contribution: 42.1, ROI: roiPtr(4.2)},
			{Channel: "TV", Contribution: 18.7, ROI: roiPtr(1.5)},
			{Channel: "Base", Contribution: 13.9},
		},
		ModelAccuracy: Accuracy{RSquared: 0.87, MAPE: 8.2},
	}, nil
}

func (e *StubEngine) Recommendations(_ context.Context, _ string) (*Recommendation, error) {
	return &Recommendation{
		CurrentSpend: map[string]float64{
			"Facebook": 5000,
			"Google":   8000,
			"TV":       15000,
		},
		RecommendedSpend: map[string]float64{
			"Facebook": 6500,
			"Google":   12000,
			"TV":       9500,
		},
		ExpectedImprovement: map[string]float64{
			"sales_lift":      18.3,
			"roi_improvement": 22.5,
		},
		Rationale: []string{
			"Google shows highest ROI, recommend increasing spend by 50%",
			"TV shows lowest ROI, recommend decreasing spend by 37%",
			"Facebook shows moderate ROI, recommend increasing spend by 30%",
		},
	}, nil
}
