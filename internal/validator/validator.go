package validator

import (
	"go/parser"
	"go/token"

	"github.com/koda-agent/koda/pkg/ktypes"
)

// checkPassed reports whether a check counts toward the "passed" numerator
// of the score formula: info and pass outcomes do, warning and error do not.
func checkPassed(c ktypes.Check) bool {
	return c.Outcome == ktypes.OutcomeInfo || c.Outcome == ktypes.OutcomePass
}

// Validate runs the fixed five-check pipeline against source and scores it
// per spec §4.4's contract. It never errors: a source that fails to parse
// produces a failed report with a single syntax error check rather than a Go
// error, since the report itself is the result type here.
func Validate(source string) ktypes.ValidationReport {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "main.go", source, parser.ParseComments)
	if err != nil {
		syntax := ktypes.Check{Name: "syntax", Outcome: ktypes.OutcomeError, Message: err.Error()}
		checks := []ktypes.Check{syntax}
		errs := []string{syntax.Message}
		return ktypes.ValidationReport{
			Passed:   false,
			Checks:   checks,
			Errors:   errs,
			Warnings: nil,
			Score:    calculateScore(checks, errs, nil),
		}
	}

	checks := []ktypes.Check{
		{Name: "syntax", Outcome: ktypes.OutcomeInfo, Message: "OK"},
		checkStructure(file),
		checkImports(file),
		checkErrorHandling(file),
		checkDocumentation(file),
	}

	var errs, warnings []string
	for _, c := range checks {
		switch c.Outcome {
		case ktypes.OutcomeError:
			errs = append(errs, c.Message)
		case ktypes.OutcomeWarning:
			warnings = append(warnings, c.Message)
		}
	}

	return ktypes.ValidationReport{
		Passed:   len(errs) == 0,
		Checks:   checks,
		Errors:   errs,
		Warnings: warnings,
		Score:    calculateScore(checks, errs, warnings),
	}
}

// calculateScore implements spec §4.4's scoring contract exactly: start at
// 100 * (passed/total), subtract 20 per error and 5 per warning, clamp to
// [0, 100].
func calculateScore(checks []ktypes.Check, errs, warnings []string) float64 {
	if len(checks) == 0 {
		return 0
	}

	passed := 0
	for _, c := range checks {
		if checkPassed(c) {
			passed++
		}
	}

	score := (float64(passed) / float64(len(checks))) * 100
	score -= float64(len(errs)) * 20
	score -= float64(len(warnings)) * 5

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
