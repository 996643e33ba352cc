package reflector_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/koda-agent/koda/internal/reflector"
	"github.com/koda-agent/koda/pkg/ktypes"
)

const tidySource = `
package main

import "fmt"

// greet prints a friendly greeting.
func greet(name string) error {
	if name == "" {
		return fmt.Errorf("empty name")
	}
	fmt.Println("hello", name)
	return nil
}
`

const messySource = `
package main

func doIt() {
	x := "this is a very long constant string literal value"
	println(x)
}
`

func TestReflect_EmptySourceIsAlwaysAnIssue(t *testing.T) {
	r := reflector.New(nil)
	result := r.Reflect(context.Background(), "", nil)
	require.True(t, result.HasIssues)
	require.Equal(t, 1.0, result.Confidence)
}

func TestReflect_StaticOnly_TidySourceHasFewerIssuesThanMessy(t *testing.T) {
	r := reflector.New(nil)
	tidy := r.Reflect(context.Background(), tidySource, nil)
	messy := r.Reflect(context.Background(), messySource, nil)

	require.False(t, tidy.HasIssues)
	require.True(t, messy.HasIssues)
	require.Greater(t, len(messy.Issues), len(tidy.Issues))
}

func TestReflect_ModelFailureCollapsesGracefully(t *testing.T) {
	r := reflector.New(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("provider unreachable")
	})

	result := r.Reflect(context.Background(), messySource, nil)
	require.True(t, result.HasIssues)
	require.Equal(t, 0.0, result.Confidence)
	require.Len(t, result.Issues, 1)
	require.Contains(t, result.Issues[0], "reflection failed")
}

func TestReflect_ParsesModelGrammarAndRepairsWhenCanFix(t *testing.T) {
	calls := 0
	r := reflector.New(func(ctx context.Context, prompt string) (string, error) {
		calls++
		if calls == 1 {
			return `ISSUES:
- variable name x is not descriptive
- missing error handling

SUGGESTIONS:
- rename x to message
* add error return

CAN_FIX: yes

CONFIDENCE: 0.87
`, nil
		}
		return "```go\npackage main\n\nfunc doIt() {}\n```", nil
	})

	validation := &ktypes.ValidationReport{Passed: false, Score: 40, Errors: []string{"no error handling"}}
	result := r.Reflect(context.Background(), messySource, validation)

	require.True(t, result.HasIssues)
	require.Contains(t, result.Issues, "variable name x is not descriptive")
	require.Contains(t, result.Suggestions, "rename x to message")
	require.InDelta(t, 0.87, result.Confidence, 0.0001)
	require.NotNil(t, result.ImprovedCode)
	require.NotContains(t, *result.ImprovedCode, "```")
	require.Equal(t, 2, calls)
}

func TestReflect_DoesNotRepairWhenCanFixIsNo(t *testing.T) {
	r := reflector.New(func(ctx context.Context, prompt string) (string, error) {
		return `ISSUES:
- something is off

CAN_FIX: no

CONFIDENCE: 0.3
`, nil
	})

	result := r.Reflect(context.Background(), messySource, nil)
	require.True(t, result.HasIssues)
	require.Nil(t, result.ImprovedCode)
}
