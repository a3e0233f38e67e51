package strategy

import (
	"context"
	"encoding/json"
	"math"
	"os"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"homeworth/server/internal/models"
	"homeworth/server/internal/seed"
)

// regressionArtifact is the trained model file: a linear model over the fixed
// six-feature vector. Feature order here must match the training pipeline.
type regressionArtifact struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// Regression invokes a pre-trained model loaded from a JSON artifact.
// Construction fails when the artifact is missing or malformed; the caller
// decides whether to substitute the heuristic instead.
type Regression struct {
	artifact regressionArtifact
}

const regressionFeatures = 6

// NewRegression loads the model artifact at path.
func NewRegression(path string) (*Regression, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "strategy: read model artifact")
	}
	var artifact regressionArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, eris.Wrap(err, "strategy: parse model artifact")
	}
	if len(artifact.Weights) != regressionFeatures {
		return nil, eris.Errorf("strategy: model artifact has %d weights, want %d", len(artifact.Weights), regressionFeatures)
	}
	return &Regression{artifact: artifact}, nil
}

// NewRegressionOrHeuristic loads the model artifact at path and substitutes
// the heuristic when the artifact is missing or malformed. A broken artifact
// must not take the service down.
func NewRegressionOrHeuristic(path string, logger *logrus.Logger) Strategy {
	regression, err := NewRegression(path)
	if err != nil {
		logger.WithError(err).Warn("Failed to load regression model, falling back to heuristic")
		return Heuristic{}
	}
	logger.WithField("path", path).Info("Using regression valuation strategy")
	return regression
}

// vector converts the feature record into the fixed order the model was
// trained against.
func (r *Regression) vector(features models.FeatureRecord) [regressionFeatures]float64 {
	return [regressionFeatures]float64{
		features.TrendMoMPct,
		float64(features.CompsAvgPrice),
		float64(features.CompsCount),
		features.BedsMedian,
		features.BathsMedian,
		features.SqftMedian,
	}
}

func (r *Regression) Predict(_ context.Context, features models.FeatureRecord) (*models.ValuationEstimate, error) {
	x := r.vector(features)
	y := r.artifact.Bias
	for i, w := range r.artifact.Weights {
		y += w * x[i]
	}
	if math.IsNaN(y) || math.IsInf(y, 0) || y <= 0 {
		return nil, &Error{Reason: "regression produced a non-positive valuation"}
	}

	base := int(y)
	confidence := 70 + int(math.Min(15, math.Max(0, float64(features.CompsCount))))
	if confidence > 95 {
		confidence = 95
	}

	return &models.ValuationEstimate{
		Base:        base,
		Low:         int(y * 0.92),
		High:        int(y * 1.08),
		Confidence:  confidence,
		TrendMoMPct: math.Round(features.TrendMoMPct*10) / 10,
		Comps:       features.CompsCount,
		Insights:    features.Insights,
		Sparkline:   seed.Sparkline(seed.FNV1a32(features.AddressNorm)),
		Factors: map[string]float64{
			"comps_weight":    0.40,
			"trend_weight":    0.25,
			"locality_weight": 0.20,
			"property_weight": 0.15,
		},
	}, nil
}
