package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/koda-agent/koda/internal/kerr"
	"github.com/koda-agent/koda/internal/prompt"
	"github.com/koda-agent/koda/internal/reflector"
	"github.com/koda-agent/koda/internal/tree"
	"github.com/koda-agent/koda/internal/validator"
	"github.com/koda-agent/koda/pkg/ktypes"
)

// MainArtifact is the conventional artifact key the validator/reflector
// treat as the task's output, per the glossary's "Main artifact" entry.
const MainArtifact = "main.py"

// DefaultAcceptanceThreshold is spec §4.7's default configuration value for
// T.
const DefaultAcceptanceThreshold = 80.0

// Completer sends a prompt to a model and returns its completion. Matches
// internal/extension.Completer and internal/reflector.Completer's shape so a
// *modeladapter.ModelAdapter's Complete method value satisfies it directly.
type Completer func(ctx context.Context, prompt string) (string, error)

// Config holds the Iteration Controller's tunables.
type Config struct {
	// AcceptanceThreshold is T; zero means DefaultAcceptanceThreshold.
	AcceptanceThreshold float64
	// DisableBranching turns off the "fix-iterN" branching policy (spec
	// §4.7 branches by default after every non-accepted iteration except
	// the last); named
	// as a negative flag so the zero value keeps branching on.
	DisableBranching bool
}

// Controller drives one tree.Session through tasks.
type Controller struct {
	cfg      Config
	session  *tree.Session
	complete Completer
	reflect  *reflector.Reflector
	composer *prompt.Composer
}

// New constructs a Controller over session. complete is required; reflect
// may be nil (the controller then accepts on validator pass alone, per
// §4.7's "[REFLECT] (if model)" branch). composer may be nil, in which case
// a minimal default composer is used.
func New(session *tree.Session, complete Completer, reflect *reflector.Reflector, composer *prompt.Composer, cfg Config) *Controller {
	if cfg.AcceptanceThreshold == 0 {
		cfg.AcceptanceThreshold = DefaultAcceptanceThreshold
	}
	if composer == nil {
		composer = prompt.New(prompt.Options{})
	}
	return &Controller{cfg: cfg, session: session, complete: complete, reflect: reflect, composer: composer}
}

// Run executes one task against the controller's current session cursor,
// implementing spec §4.7's state machine end to end. It never panics or
// returns a Go error past this point: every outcome, including cancellation
// and model failure, is folded into the returned TaskResult, per §7's "the
// core never raises past its public entry point."
func (c *Controller) Run(ctx context.Context, task ktypes.Task) ktypes.TaskResult {
	maxIter := task.MaxIterations
	if maxIter <= 0 {
		maxIter = 3
	}

	nodeID := c.session.CurrentNode().ID
	bestScore := 0.0
	bestSource := ""
	var lastReflection *ktypes.ReflectionResult
	var repairContext string
	doom := newDoomLoopDetector()

	for iteration := 1; iteration <= maxIter; iteration++ {
		if ctx.Err() != nil {
			return c.cancelledResult(bestSource, bestScore, iteration-1)
		}

		userPrompt := prompt.ComposeUserPrompt(task.Description, iteration)
		if repairContext != "" {
			userPrompt = fmt.Sprintf("%s\n\nPrevious attempt's validation issues: %s", userPrompt, repairContext)
		}
		fullPrompt := c.composer.Build() + "\n\n" + userPrompt

		source, genErr := c.generateWithRetry(ctx, fullPrompt)
		if genErr != nil {
			if ctx.Err() != nil {
				return c.cancelledResult(bestSource, bestScore, iteration-1)
			}
			source = ""
			repairContext = fmt.Sprintf("model call failed: %v", genErr)
		}

		if ctx.Err() != nil {
			return c.cancelledResult(bestSource, bestScore, iteration-1)
		}

		report := validator.Validate(source)
		if report.Score > bestScore || bestSource == "" {
			bestScore = report.Score
			bestSource = source
		}

		accepted := report.Passed && report.Score >= c.cfg.AcceptanceThreshold

		if accepted && c.reflect == nil {
			return c.finalize(nodeID, source, bestSource, bestScore, iteration, nil, true, "")
		}

		// A passing report is reviewed even below the threshold, so the
		// reviewer's improved code can still succeed within this iteration.
		if report.Passed && c.reflect != nil {
			result := c.reflect.Reflect(ctx, source, &report)
			lastReflection = &result
			if accepted && !result.HasIssues {
				return c.finalize(nodeID, source, source, report.Score, iteration, lastReflection, true, "")
			}

			if result.ImprovedCode != nil {
				improved := *result.ImprovedCode
				improvedReport := validator.Validate(improved)
				if improvedReport.Score > bestScore {
					bestScore = improvedReport.Score
					bestSource = improved
				}
				if improvedReport.Passed && improvedReport.Score >= c.cfg.AcceptanceThreshold {
					return c.finalize(nodeID, improved, improved, improvedReport.Score, iteration, lastReflection, true, "")
				}
			}
			repairContext = joinIssues(result.Issues)
		} else {
			repairContext = joinIssues(report.Errors)
		}

		// The iteration-numbered hint in fullPrompt differs every time, so the
		// fingerprint uses the task and the repair context instead.
		if doom.check(task.Description+"\n"+repairContext, source) {
			return c.finalize(nodeID, bestSource, bestSource, bestScore, iteration, lastReflection, false, "doom loop detected: repeated identical generation")
		}

		if iteration < maxIter && !c.cfg.DisableBranching {
			child, err := c.session.CreateBranch(fmt.Sprintf("fix-iter%d", iteration), "repair attempt", nodeID)
			if err == nil {
				nodeID = child.ID
				_, _, _ = c.session.Checkout(nodeID)
			}
		}
	}

	return c.finalize(nodeID, bestSource, bestSource, bestScore, maxIter, lastReflection, false, kerr.ErrIterationExhausted.Error())
}

// finalize writes terminalSource onto the terminal node, marks it
// SUCCESS/FAILED, and returns the public TaskResult.
func (c *Controller) finalize(nodeID, terminalSource, bestSource string, bestScore float64, iterations int, reflection *ktypes.ReflectionResult, success bool, errMsg string) ktypes.TaskResult {
	node, err := c.session.Node(nodeID)
	if err == nil {
		if node.Artifacts == nil {
			node.Artifacts = map[string]string{}
		}
		node.Artifacts[MainArtifact] = terminalSource
		now := time.Now().UTC().Format(time.RFC3339)
		node.CompletedAt = &now
		if success {
			node.Status = ktypes.StatusSuccess
		} else {
			node.Status = ktypes.StatusFailed
		}
	}

	return ktypes.TaskResult{
		Success:         success,
		Source:          bestSource,
		Iterations:      iterations,
		ValidationScore: bestScore,
		Reflection:      reflection,
		NodeID:          nodeID,
		SessionID:       c.session.ID(),
		Error:           errMsg,
	}
}

func (c *Controller) cancelledResult(bestSource string, bestScore float64, iterations int) ktypes.TaskResult {
	return ktypes.TaskResult{
		Success:         false,
		Source:          bestSource,
		Iterations:      iterations,
		ValidationScore: bestScore,
		NodeID:          c.session.CurrentNode().ID,
		SessionID:       c.session.ID(),
		Error:           kerr.ErrCancelled.Error(),
	}
}

// generateWithRetry wraps complete with cenkalti/backoff exponential
// backoff + jitter, grounded on the teacher's session/loop.go
// newRetryBackoff but scaled down for a single blocking generate call
// rather than a whole streaming chat turn (spec §4.7's "[ADDED] Retry
// grounding").
func (c *Controller) generateWithRetry(ctx context.Context, fullPrompt string) (string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = time.Minute
	b.RandomizationFactor = 0.5
	b.Multiplier = 2.0

	bo := backoff.WithContext(backoff.WithMaxRetries(b, 3), ctx)

	var out string
	operation := func() error {
		res, err := c.complete(ctx, fullPrompt)
		if err != nil {
			return fmt.Errorf("%w: %v", kerr.ErrModelFailed, err)
		}
		out = res
		return nil
	}

	if err := backoff.Retry(operation, bo); err != nil {
		return "", err
	}
	return out, nil
}

func joinIssues(issues []string) string {
	out := ""
	for i, issue := range issues {
		if i > 0 {
			out += "; "
		}
		out += issue
	}
	return out
}
