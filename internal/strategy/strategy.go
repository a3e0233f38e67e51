// Package strategy holds the polymorphic valuation estimators. Every variant
// consumes the same feature record and returns the same estimate schema; the
// orchestrator never inspects which one is active.
package strategy

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"homeworth/server/internal/models"
)

// Strategy produces a structured estimate from a synthesized feature record.
type Strategy interface {
	Predict(ctx context.Context, features models.FeatureRecord) (*models.ValuationEstimate, error)
}

// Error reports malformed or incomplete model output. A half-formed estimate
// must never reach the caller, so the pipeline surfaces this instead of
// patching the gaps.
type Error struct {
	Reason      string
	MissingKeys []string
}

func (e *Error) Error() string {
	if len(e.MissingKeys) > 0 {
		keys := append([]string(nil), e.MissingKeys...)
		sort.Strings(keys)
		return fmt.Sprintf("strategy: %s: missing keys [%s]", e.Reason, strings.Join(keys, ", "))
	}
	return "strategy: " + e.Reason
}
