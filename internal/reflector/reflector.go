package reflector

import (
	"context"
	"fmt"
	"strings"

	"github.com/koda-agent/koda/pkg/ktypes"
)

// Completer sends a single prompt to a model and returns its raw completion,
// generalizing the original's duck-typed llm.complete/llm.chat into an
// explicit Go function type (spec §9: "model adapter as structural type").
type Completer func(ctx context.Context, prompt string) (string, error)

// Reflector runs the two-pass review described in spec §4.5. A nil Complete
// makes it static-only, matching the original's self.llm = None path.
type Reflector struct {
	Complete Completer
}

// New constructs a Reflector. Pass a nil complete for a static-analysis-only
// reviewer.
func New(complete Completer) *Reflector {
	return &Reflector{Complete: complete}
}

// Reflect analyzes source (optionally informed by a prior ValidationReport)
// and returns a ReflectionResult. It never errors: model failures collapse
// into the result per spec §4.5's failure semantics.
func (r *Reflector) Reflect(ctx context.Context, source string, validation *ktypes.ValidationReport) ktypes.ReflectionResult {
	if strings.TrimSpace(source) == "" {
		return ktypes.ReflectionResult{
			HasIssues:   true,
			Issues:      []string{"no code artifacts generated"},
			Suggestions: []string{"generate code first"},
			Confidence:  1.0,
		}
	}

	autoIssues := staticAnalysis(source)

	feedback := modelFeedback{Confidence: 0.5}
	if r.Complete != nil {
		raw, err := r.Complete(ctx, buildReviewPrompt(source, validation))
		if err != nil {
			return ktypes.ReflectionResult{
				HasIssues:  true,
				Issues:     []string{fmt.Sprintf("reflection failed: %v", err)},
				Confidence: 0.0,
			}
		}
		feedback = parseReviewResponse(raw)
	}

	allIssues := dedupe(append(append([]string{}, autoIssues...), feedback.Issues...))

	var improvedCode *string
	if len(allIssues) > 0 && feedback.CanFix && r.Complete != nil {
		fixed, err := r.Complete(ctx, buildRepairPrompt(source, allIssues, feedback.Suggestions))
		if err == nil {
			cleaned := cleanFence(fixed)
			improvedCode = &cleaned
		}
	}

	return ktypes.ReflectionResult{
		HasIssues:    len(allIssues) > 0,
		Issues:       allIssues,
		Suggestions:  feedback.Suggestions,
		Confidence:   feedback.Confidence,
		ImprovedCode: improvedCode,
	}
}

// dedupe removes repeated entries while preserving first-seen order (the
// original's list(set(...)) merge, made deterministic).
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	return out
}
