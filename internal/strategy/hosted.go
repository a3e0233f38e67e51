package strategy

import (
	"context"
	"encoding/json"
	"strings"

	"homeworth/server/internal/llm"
	"homeworth/server/internal/models"
)

const hostedSystem = "You are a real estate valuation model. Respond only with valid JSON."

// hostedKeys are the fields a hosted reply must carry. Anything missing makes
// the whole estimate unusable.
var hostedKeys = []string{
	"base", "low", "high", "confidence", "trend_mom_pct",
	"comps", "insights", "sparkline", "factors",
}

// Hosted delegates the estimate to a remote interpreter: it serializes the
// feature record into a prompt, demands the exact estimate schema back, and
// validates every required key before trusting the numbers.
type Hosted struct {
	client llm.Client
}

func NewHosted(client llm.Client) *Hosted {
	return &Hosted{client: client}
}

func (h *Hosted) Predict(ctx context.Context, features models.FeatureRecord) (*models.ValuationEstimate, error) {
	featureJSON, err := json.Marshal(features)
	if err != nil {
		return nil, &Error{Reason: "encode features: " + err.Error()}
	}

	var prompt strings.Builder
	prompt.WriteString("Estimate the market value of a property from these signals. ")
	prompt.WriteString("Respond ONLY with a JSON object containing the keys ")
	prompt.WriteString(strings.Join(hostedKeys, ", "))
	prompt.WriteString(". base, low and high are integer currency amounts with low <= base <= high; ")
	prompt.WriteString("confidence is an integer 0-100; sparkline is 12 integers 0-100; ")
	prompt.WriteString("factors maps factor names to float weights.")
	if features.PropertyType != "" {
		prompt.WriteString(" The property type is " + features.PropertyType + ".")
	}
	prompt.WriteString(" Features: ")
	prompt.Write(featureJSON)

	reply, err := h.client.Complete(ctx, hostedSystem, prompt.String())
	if err != nil {
		return nil, &Error{Reason: "interpreter call failed: " + err.Error()}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(extractJSONObject(reply)), &raw); err != nil {
		return nil, &Error{Reason: "unparsable interpreter response"}
	}

	var missing []string
	for _, key := range hostedKeys {
		if _, ok := raw[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &Error{Reason: "incomplete interpreter response", MissingKeys: missing}
	}

	var estimate models.ValuationEstimate
	if err := json.Unmarshal([]byte(extractJSONObject(reply)), &estimate); err != nil {
		return nil, &Error{Reason: "interpreter response does not match the estimate schema"}
	}
	return &estimate, nil
}

// extractJSONObject pulls the first JSON object out of a reply, tolerating
// prose or fencing around it.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
