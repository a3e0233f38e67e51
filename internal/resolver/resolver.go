// Package resolver disambiguates a raw address string into canonical
// candidates. Local pattern rules run first; an external interpreter is the
// fallback for anything they do not match.
package resolver

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"homeworth/server/internal/llm"
	"homeworth/server/internal/models"
)

var (
	// "2, 330 Main St" — a leading bare number before a comma is a unit designator.
	leadingUnitRe = regexp.MustCompile(`^(\d+),\s*(.+)$`)

	// "unit 4", "apt. 12B", "suite 300", "#5" and similar embedded tokens.
	unitTokenRe = regexp.MustCompile(`(?i)\b(?:unit|apt|apartment|suite)\.?\s*#?\s*[\w-]+|#[\w-]+`)

	commaArtifactRe = regexp.MustCompile(`\s*,\s*,+`)
	danglingSepRe   = regexp.MustCompile(`^[\s,]+|[\s,]+$`)
)

const interpreterSystem = "You interpret free-text property addresses. Respond only with valid JSON."

// Resolver produces address candidates for the orchestrator's single-shot
// disambiguation gate.
type Resolver struct {
	interpreter llm.Client
	logger      *logrus.Logger
}

// New creates a resolver. The interpreter may be nil; resolution then falls
// back to the raw input when no local rule matches.
func New(interpreter llm.Client, logger *logrus.Logger) *Resolver {
	return &Resolver{interpreter: interpreter, logger: logger}
}

// Resolve returns at least one candidate. Local unit-number rules yield a
// single full-confidence candidate typed as a condo; otherwise the external
// interpreter is consulted, and any interpreter failure degrades to the raw
// input at full confidence.
func (r *Resolver) Resolve(ctx context.Context, raw string) []models.AddressCandidate {
	raw = strings.TrimSpace(raw)

	if m := leadingUnitRe.FindStringSubmatch(raw); m != nil {
		return []models.AddressCandidate{{
			Address:      strings.TrimSpace(m[2]),
			Confidence:   1.0,
			PropertyType: "condo",
		}}
	}

	if unitTokenRe.MatchString(raw) {
		stripped := unitTokenRe.ReplaceAllString(raw, "")
		return []models.AddressCandidate{{
			Address:      collapseArtifacts(stripped),
			Confidence:   1.0,
			PropertyType: "condo",
		}}
	}

	return r.interpret(ctx, raw)
}

func (r *Resolver) interpret(ctx context.Context, raw string) []models.AddressCandidate {
	fallback := []models.AddressCandidate{{Address: raw, Confidence: 1.0}}
	if r.interpreter == nil {
		return fallback
	}

	prompt := `Interpret this property address and list the possible canonical readings as a JSON array of {"address": string, "confidence": number between 0 and 1}. Address: ` + raw

	reply, err := r.interpreter.Complete(ctx, interpreterSystem, prompt)
	if err != nil {
		r.logger.WithError(err).Warn("Address interpreter failed, using raw address")
		return fallback
	}

	var candidates []models.AddressCandidate
	if err := json.Unmarshal([]byte(extractJSONArray(reply)), &candidates); err != nil {
		r.logger.WithError(err).Warn("Address interpreter returned malformed JSON, using raw address")
		return fallback
	}
	if len(candidates) == 0 {
		return fallback
	}
	return candidates
}

// collapseArtifacts cleans the whitespace and comma debris left after
// stripping a unit token mid-string.
func collapseArtifacts(s string) string {
	s = commaArtifactRe.ReplaceAllString(s, ",")
	s = danglingSepRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ,", ",")
	return strings.Join(strings.Fields(s), " ")
}

// extractJSONArray pulls the first JSON array out of an interpreter reply,
// tolerating prose around it.
func extractJSONArray(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
