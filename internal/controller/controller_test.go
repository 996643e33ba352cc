package controller_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/koda-agent/koda/internal/controller"
	"github.com/koda-agent/koda/internal/prompt"
	"github.com/koda-agent/koda/internal/reflector"
	"github.com/koda-agent/koda/internal/tree"
	"github.com/koda-agent/koda/pkg/ktypes"
)

const goodSource = `
package main

import "fmt"

// greet prints a friendly greeting.
func greet(name string) error {
	if name == "" {
		err := fmt.Errorf("empty name")
		if err != nil {
			return err
		}
	}
	fmt.Println("hello", name)
	return nil
}
`

// missingDocSource scores 75 (4/5 checks pass, documentation warns): it has
// structure, imports, and error handling but no doc comment.
const missingDocSource = `
package main

import "fmt"

func run() error {
	_, err := fmt.Println("x")
	if err != nil {
		return err
	}
	return nil
}
`

// fixedSource is missingDocSource with a doc comment added, scoring 100.
const fixedSource = `
package main

import "fmt"

// run prints x and reports any write error.
func run() error {
	_, err := fmt.Println("x")
	if err != nil {
		return err
	}
	return nil
}
`

func alwaysReturns(source string) controller.Completer {
	return func(ctx context.Context, prompt string) (string, error) {
		return source, nil
	}
}

func TestRun_S1_HappyPathAcceptsOnFirstIteration(t *testing.T) {
	session := tree.NewSession("task")
	c := controller.New(session, alwaysReturns(goodSource), nil, prompt.New(prompt.Options{}), controller.Config{})

	result := c.Run(context.Background(), ktypes.Task{Description: "write a greeter", MaxIterations: 3})

	require.True(t, result.Success)
	require.Equal(t, 1, result.Iterations)
	require.GreaterOrEqual(t, result.ValidationScore, 80.0)

	node, err := session.Node(result.NodeID)
	require.NoError(t, err)
	require.Equal(t, ktypes.StatusSuccess, node.Status)
}

func TestRun_S2_RepairViaReflectionAppliesImprovedCodeInLoop(t *testing.T) {
	session := tree.NewSession("task")

	reflectCalls := 0
	reflectComplete := func(ctx context.Context, p string) (string, error) {
		reflectCalls++
		if reflectCalls == 1 {
			return "ISSUES:\n- Missing documentation\nSUGGESTIONS:\n- Add a doc comment\nCAN_FIX: yes\nCONFIDENCE: 0.9", nil
		}
		return "```go\n" + fixedSource + "\n```", nil
	}
	refl := reflector.New(reflectComplete)

	c := controller.New(session, alwaysReturns(missingDocSource), refl, prompt.New(prompt.Options{}), controller.Config{})
	result := c.Run(context.Background(), ktypes.Task{Description: "write run()", MaxIterations: 2})

	require.True(t, result.Success)
	require.Equal(t, 1, result.Iterations)
	require.Equal(t, 100.0, result.ValidationScore)
	require.Contains(t, result.Source, "// run prints x")
}

func TestRun_S3_IterationExhaustionOnEmptySource(t *testing.T) {
	session := tree.NewSession("task")
	c := controller.New(session, alwaysReturns(""), nil, prompt.New(prompt.Options{}), controller.Config{})

	result := c.Run(context.Background(), ktypes.Task{Description: "impossible task", MaxIterations: 2})

	require.False(t, result.Success)
	require.Equal(t, 2, result.Iterations)
	require.NotEmpty(t, result.Error)
	require.GreaterOrEqual(t, result.ValidationScore, 0.0)

	var foundBranch bool
	for _, n := range session.GetAllBranches() {
		if n.Name == "fix-iter1" {
			foundBranch = true
		}
	}
	require.True(t, foundBranch)

	node, err := session.Node(result.NodeID)
	require.NoError(t, err)
	require.NotEqual(t, ktypes.StatusSuccess, node.Status)
}

func TestRun_BestScoreNeverRegressesAcrossIterations(t *testing.T) {
	session := tree.NewSession("task")

	calls := 0
	declining := func(ctx context.Context, p string) (string, error) {
		calls++
		if calls == 1 {
			return missingDocSource, nil // scores 75
		}
		return "package main\n", nil // scores lower than 75
	}

	c := controller.New(session, declining, nil, prompt.New(prompt.Options{}), controller.Config{})
	result := c.Run(context.Background(), ktypes.Task{Description: "t", MaxIterations: 2})

	require.False(t, result.Success)
	require.GreaterOrEqual(t, result.ValidationScore, 75.0)
}

func TestRun_ModelFailureIsAbsorbedAsRepairAttempt(t *testing.T) {
	session := tree.NewSession("task")

	calls := 0
	flaky := func(ctx context.Context, p string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("rate limited")
		}
		return goodSource, nil
	}

	c := controller.New(session, flaky, nil, prompt.New(prompt.Options{}), controller.Config{})
	result := c.Run(context.Background(), ktypes.Task{Description: "t", MaxIterations: 3})

	require.True(t, result.Success)
	require.Empty(t, result.Error)
}

func TestRun_CancelledContextShortCircuitsAndPreservesBest(t *testing.T) {
	session := tree.NewSession("task")
	c := controller.New(session, alwaysReturns(goodSource), nil, prompt.New(prompt.Options{}), controller.Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := c.Run(ctx, ktypes.Task{Description: "t", MaxIterations: 3})
	require.False(t, result.Success)
	require.Contains(t, result.Error, "cancelled")
	require.Equal(t, 0, result.Iterations)
}

func TestRun_IterationBudgetNeverExceedsThreeTimesMaxIterations(t *testing.T) {
	session := tree.NewSession("task")

	modelCalls := 0
	reflectCalls := 0
	generate := func(ctx context.Context, p string) (string, error) {
		modelCalls++
		return missingDocSource, nil // always 75: passes, so it is reflected; reflect always finds issues
	}
	reflectFn := func(ctx context.Context, p string) (string, error) {
		reflectCalls++
		return "ISSUES:\n- still missing something\nCAN_FIX: no\nCONFIDENCE: 0.5", nil
	}
	refl := reflector.New(reflectFn)

	maxIter := 3
	c := controller.New(session, generate, refl, prompt.New(prompt.Options{}), controller.Config{})
	result := c.Run(context.Background(), ktypes.Task{Description: "t", MaxIterations: maxIter})

	require.False(t, result.Success)
	require.LessOrEqual(t, modelCalls+reflectCalls, 3*maxIter)
}

func TestRun_DoomLoopShortCircuitsBeforeExhaustingBudget(t *testing.T) {
	session := tree.NewSession("task")
	c := controller.New(session, alwaysReturns(""), nil, prompt.New(prompt.Options{}), controller.Config{})

	result := c.Run(context.Background(), ktypes.Task{Description: "same task every time", MaxIterations: 10})

	require.False(t, result.Success)
	require.Contains(t, result.Error, "doom loop")
	require.Less(t, result.Iterations, 10)
}

func TestRun_RespectsDeadlineMidLoop(t *testing.T) {
	session := tree.NewSession("task")
	slow := func(ctx context.Context, p string) (string, error) {
		time.Sleep(5 * time.Millisecond)
		return missingDocSource, nil
	}
	c := controller.New(session, slow, nil, prompt.New(prompt.Options{}), controller.Config{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	result := c.Run(ctx, ktypes.Task{Description: "t", MaxIterations: 5})
	require.False(t, result.Success)
}
