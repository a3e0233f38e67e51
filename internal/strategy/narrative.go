package strategy

import (
	"context"

	"homeworth/server/internal/models"
)

// Narrative re-synthesizes the heuristic's signals with an extra explanatory
// insight. It stands in for any strategy that narrates the same numbers
// without materially changing them.
type Narrative struct {
	inner Heuristic
}

func NewNarrative() *Narrative {
	return &Narrative{}
}

func (n *Narrative) Predict(ctx context.Context, features models.FeatureRecord) (*models.ValuationEstimate, error) {
	estimate, err := n.inner.Predict(ctx, features)
	if err != nil {
		return nil, err
	}
	estimate.Insights = append(estimate.Insights,
		"Synthesis: combined comps, trend, and locality signals to adjust the estimate.")
	return estimate, nil
}
