package reflector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/koda-agent/koda/pkg/ktypes"
)

// modelFeedback is the parsed shape of a model review reply, before being
// merged with the static pass's issues.
type modelFeedback struct {
	Issues      []string
	Suggestions []string
	CanFix      bool
	Confidence  float64
}

// buildReviewPrompt mirrors Reflector._llm_analysis's prompt construction.
func buildReviewPrompt(source string, validation *ktypes.ValidationReport) string {
	var validationInfo string
	if validation != nil {
		validationInfo = fmt.Sprintf(`
Validation results:
- Passed: %t
- Score: %.0f/100
- Errors: %v
- Warnings: %v
`, validation.Passed, validation.Score, validation.Errors, validation.Warnings)
	}

	return fmt.Sprintf(`You are a senior code reviewer. Analyze this Go code critically:

`+"```go\n%s\n```"+`

%s

Provide your analysis in this exact format:

ISSUES:
- List specific code issues (if any)
- Focus on: logic errors, security issues, performance problems, maintainability
- Be specific and actionable

SUGGESTIONS:
- List improvement suggestions
- Include best practices
- Suggest refactoring opportunities

CAN_FIX: [yes/no] (can the issues be automatically fixed?)

CONFIDENCE: [0.0-1.0] (how confident are you in your assessment?)

Be thorough but concise.`, source, validationInfo)
}

// parseReviewResponse parses a model reply under the ISSUES:/SUGGESTIONS:/
// CAN_FIX:/CONFIDENCE: grammar, mirroring _parse_llm_response line for line.
// Any parse anomaly degrades gracefully to whatever was collected so far --
// this function never errors.
func parseReviewResponse(response string) modelFeedback {
	feedback := modelFeedback{Confidence: 0.5}

	var currentSection string
	for _, rawLine := range strings.Split(response, "\n") {
		line := strings.TrimSpace(rawLine)

		switch {
		case strings.HasPrefix(line, "ISSUES:"):
			currentSection = "issues"
			continue
		case strings.HasPrefix(line, "SUGGESTIONS:"):
			currentSection = "suggestions"
			continue
		case strings.HasPrefix(line, "CAN_FIX:"):
			feedback.CanFix = strings.Contains(strings.ToLower(line), "yes")
			currentSection = ""
			continue
		case strings.HasPrefix(line, "CONFIDENCE:"):
			if parts := strings.SplitN(line, ":", 2); len(parts) == 2 {
				fields := strings.Fields(strings.TrimSpace(parts[1]))
				if len(fields) > 0 {
					if v, err := strconv.ParseFloat(fields[0], 64); err == nil {
						feedback.Confidence = v
					}
				}
			}
			currentSection = ""
			continue
		}

		switch {
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			item := strings.TrimSpace(line[2:])
			if item == "" {
				continue
			}
			switch currentSection {
			case "issues":
				feedback.Issues = append(feedback.Issues, item)
			case "suggestions":
				feedback.Suggestions = append(feedback.Suggestions, item)
			}
		case line != "" && currentSection != "" && !strings.HasSuffix(line, ":"):
			switch currentSection {
			case "issues":
				feedback.Issues = append(feedback.Issues, line)
			case "suggestions":
				feedback.Suggestions = append(feedback.Suggestions, line)
			}
		}
	}

	return feedback
}

// buildRepairPrompt mirrors Reflector._generate_fix's prompt construction.
func buildRepairPrompt(source string, issues, suggestions []string) string {
	var issueLines, suggestionLines strings.Builder
	for _, i := range issues {
		fmt.Fprintf(&issueLines, "- %s\n", i)
	}
	for _, s := range suggestions {
		fmt.Fprintf(&suggestionLines, "- %s\n", s)
	}

	return fmt.Sprintf(`Fix the following Go code based on the identified issues:

Original code:
`+"```go\n%s\n```"+`

Issues to fix:
%s
Suggestions:
%s
Requirements:
1. Fix ALL the issues listed above
2. Maintain the original functionality
3. Follow idiomatic Go
4. Add proper error handling
5. Add doc comments where missing

Return ONLY the fixed code, no explanations:
`, source, issueLines.String(), suggestionLines.String())
}

// cleanFence strips a surrounding ```go ... ``` (or bare ```) code fence from
// a model reply, mirroring the stripping the original applies in
// _generate_fix before returning improved_code.
func cleanFence(code string) string {
	code = strings.TrimSpace(code)
	for _, fence := range []string{"```go", "```"} {
		code = strings.TrimPrefix(code, fence)
	}
	code = strings.TrimSuffix(code, "```")
	return strings.TrimSpace(code)
}
