package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeworth/server/internal/models"
)

func sampleFeatures() models.FeatureRecord {
	return models.FeatureRecord{
		AddressNorm:   "330 main st vancouver",
		Lat:           49.27,
		Lon:           -123.10,
		AreaName:      "Downtown",
		City:          "Vancouver",
		Province:      "BC",
		TrendMoMPct:   1.4,
		CompsCount:    5,
		CompsAvgPrice: 920000,
		BedsMedian:    3,
		BathsMedian:   2,
		SqftMedian:    1400,
		SignalQuality: 22,
		Insights:      []string{"5 comparable sale(s) within ~2km in the last 90 days."},
	}
}

func assertBandInvariant(t *testing.T, e *models.ValuationEstimate) {
	t.Helper()
	assert.LessOrEqual(t, e.Low, e.Base)
	assert.LessOrEqual(t, e.Base, e.High)
	assert.GreaterOrEqual(t, e.Confidence, 0)
	assert.LessOrEqual(t, e.Confidence, 100)
}

func TestHeuristicDeterministic(t *testing.T) {
	h := Heuristic{}
	features := sampleFeatures()

	a, err := h.Predict(context.Background(), features)
	require.NoError(t, err)
	b, err := h.Predict(context.Background(), features)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assertBandInvariant(t, a)
	assert.Len(t, a.Sparkline, 12)
}

func TestHeuristicConfidenceRange(t *testing.T) {
	h := Heuristic{}

	low := sampleFeatures()
	low.SignalQuality = 0
	high := sampleFeatures()
	high.SignalQuality = 99 // clamped to 30

	a, _ := h.Predict(context.Background(), low)
	b, _ := h.Predict(context.Background(), high)
	assert.Equal(t, 60, a.Confidence)
	assert.Equal(t, 90, b.Confidence)
}

func TestHeuristicNoComps(t *testing.T) {
	h := Heuristic{}
	features := sampleFeatures()
	features.CompsCount = 0
	features.CompsAvgPrice = 0
	features.Insights = nil

	estimate, err := h.Predict(context.Background(), features)
	require.NoError(t, err)
	assertBandInvariant(t, estimate)
	assert.Equal(t, []string{"Limited recent comps in radius."}, estimate.Insights)
}

func writeArtifact(t *testing.T, artifact any) string {
	t.Helper()
	data, err := json.Marshal(artifact)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "estimator.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestRegressionPredict(t *testing.T) {
	path := writeArtifact(t, regressionArtifact{
		Weights: []float64{1200, 0.8, 4000, 15000, 9000, 120},
		Bias:    50000,
	})
	r, err := NewRegression(path)
	require.NoError(t, err)

	estimate, err := r.Predict(context.Background(), sampleFeatures())
	require.NoError(t, err)
	assertBandInvariant(t, estimate)
	assert.InDelta(t, 0.92, float64(estimate.Low)/float64(estimate.Base), 0.001)
	assert.InDelta(t, 1.08, float64(estimate.High)/float64(estimate.Base), 0.001)
	assert.LessOrEqual(t, estimate.Confidence, 95)
}

func TestRegressionArtifactErrors(t *testing.T) {
	_, err := NewRegression(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0644))
	_, err = NewRegression(bad)
	assert.Error(t, err)

	short := writeArtifact(t, regressionArtifact{Weights: []float64{1, 2}, Bias: 0})
	_, err = NewRegression(short)
	assert.Error(t, err)
}

func TestRegressionFallbackToHeuristic(t *testing.T) {
	logger := logrus.New()
	s := NewRegressionOrHeuristic(filepath.Join(t.TempDir(), "missing.json"), logger)
	features := sampleFeatures()

	got, err := s.Predict(context.Background(), features)
	require.NoError(t, err)
	want, err := Heuristic{}.Predict(context.Background(), features)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	good := writeArtifact(t, regressionArtifact{
		Weights: []float64{1200, 0.8, 4000, 15000, 9000, 120},
		Bias:    50000,
	})
	s = NewRegressionOrHeuristic(good, logger)
	assert.IsType(t, &Regression{}, s)
}

func TestRegressionNonPositiveOutput(t *testing.T) {
	path := writeArtifact(t, regressionArtifact{
		Weights: []float64{0, 0, 0, 0, 0, 0},
		Bias:    -10,
	})
	r, err := NewRegression(path)
	require.NoError(t, err)

	_, err = r.Predict(context.Background(), sampleFeatures())
	var strategyErr *Error
	assert.ErrorAs(t, err, &strategyErr)
}

func TestNarrativeAppendsInsight(t *testing.T) {
	n := NewNarrative()
	h := Heuristic{}
	features := sampleFeatures()

	base, err := h.Predict(context.Background(), features)
	require.NoError(t, err)
	narrated, err := n.Predict(context.Background(), features)
	require.NoError(t, err)

	assert.Equal(t, base.Base, narrated.Base, "numbers are unchanged")
	assert.Len(t, narrated.Insights, len(base.Insights)+1)
}

type stubLLM struct {
	reply string
	err   error
}

func (s stubLLM) Complete(_ context.Context, _, _ string) (string, error) {
	return s.reply, s.err
}

func TestHostedPredict(t *testing.T) {
	reply := `{"base":900000,"low":828000,"high":972000,"confidence":82,"trend_mom_pct":1.4,` +
		`"comps":5,"insights":["steady market"],"sparkline":[50,51,52,53,54,55,56,57,58,59,60,61],` +
		`"factors":{"comps_weight":0.4}}`
	h := NewHosted(stubLLM{reply: reply})

	estimate, err := h.Predict(context.Background(), sampleFeatures())
	require.NoError(t, err)
	assertBandInvariant(t, estimate)
	assert.Equal(t, 900000, estimate.Base)
	assert.Equal(t, 5, estimate.Comps)
}

func TestHostedMissingKeys(t *testing.T) {
	h := NewHosted(stubLLM{reply: `{"base":900000,"low":828000,"high":972000}`})

	_, err := h.Predict(context.Background(), sampleFeatures())
	var strategyErr *Error
	require.ErrorAs(t, err, &strategyErr)
	assert.Contains(t, strategyErr.MissingKeys, "confidence")
	assert.Contains(t, strategyErr.MissingKeys, "factors")
	assert.Contains(t, err.Error(), "confidence")
}

func TestHostedUnparsableReply(t *testing.T) {
	h := NewHosted(stubLLM{reply: "I cannot price this property."})

	_, err := h.Predict(context.Background(), sampleFeatures())
	var strategyErr *Error
	assert.ErrorAs(t, err, &strategyErr)
}

func TestHostedCallFailure(t *testing.T) {
	h := NewHosted(stubLLM{err: errors.New("credentials rejected")})

	_, err := h.Predict(context.Background(), sampleFeatures())
	var strategyErr *Error
	assert.ErrorAs(t, err, &strategyErr)
}

func TestHostedFencedReply(t *testing.T) {
	reply := "```json\n{\"base\":700000,\"low\":650000,\"high\":760000,\"confidence\":75,\"trend_mom_pct\":0.0," +
		"\"comps\":3,\"insights\":[],\"sparkline\":[50,50,50,50,50,50,50,50,50,50,50,50],\"factors\":{}}\n```"
	h := NewHosted(stubLLM{reply: reply})

	estimate, err := h.Predict(context.Background(), sampleFeatures())
	require.NoError(t, err)
	assert.Equal(t, 700000, estimate.Base)
}
