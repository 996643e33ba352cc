package toolio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/koda-agent/koda/internal/kerr"
)

// Bash timeout/output bounds, grounded on the teacher's tool.BashTool
// constants.
const (
	DefaultBashTimeout = 120 * time.Second
	MaxBashTimeout     = 10 * time.Minute
	MaxOutputLength    = 30000
	killTimeout        = 200 * time.Millisecond
)

// BashInput is the bash adapter's argument shape.
type BashInput struct {
	Command     string `json:"command"`
	Timeout     int    `json:"timeout,omitempty"` // milliseconds
	Description string `json:"description,omitempty"`
	Dir         string `json:"dir,omitempty"`
}

// BashTool executes a shell command, adapted from the teacher's
// tool.BashTool but using mvdan.cc/sh/v3's pure-Go POSIX interpreter instead
// of shelling out to os/exec against the host shell. This keeps execution
// portable (no dependency on which shell the host has installed) while
// still giving the Iteration Controller process-group-aware cancellation:
// interp.DefaultExecHandler kills a running external command's process
// group when the context passed to Run is cancelled or times out.
type BashTool struct{}

func NewBashTool() *BashTool { return &BashTool{} }

func (t *BashTool) Execute(ctx context.Context, input json.RawMessage) (*Result, error) {
	var params BashInput
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("%w: invalid bash input: %v", kerr.ErrToolFailed, err)
	}
	if strings.TrimSpace(params.Command) == "" {
		return nil, fmt.Errorf("%w: command is required", kerr.ErrToolFailed)
	}

	timeout := DefaultBashTimeout
	if params.Timeout > 0 {
		timeout = time.Duration(params.Timeout) * time.Millisecond
		if timeout > MaxBashTimeout {
			timeout = MaxBashTimeout
		}
	}

	file, err := syntax.NewParser().Parse(strings.NewReader(params.Command), "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerr.ErrToolFailed, err)
	}

	var out bytes.Buffer
	opts := []interp.RunnerOption{
		interp.StdIO(nil, &out, &out),
		interp.ExecHandler(interp.DefaultExecHandler(killTimeout)),
	}
	if params.Dir != "" {
		opts = append(opts, interp.Dir(params.Dir))
	}
	runner, err := interp.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerr.ErrToolFailed, err)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	runErr := runner.Run(runCtx, file)
	timedOut := runCtx.Err() == context.DeadlineExceeded

	output := out.String()
	if len(output) > MaxOutputLength {
		output = output[:MaxOutputLength] + "\n\n(Output truncated)"
	}
	if timedOut {
		output += fmt.Sprintf("\n\n(Command timed out after %v)", timeout)
	}

	exitCode := 0
	var status interp.ExitStatus
	switch {
	case errors.As(runErr, &status):
		exitCode = int(status)
	case runErr != nil && !timedOut:
		output += fmt.Sprintf("\n\nError: %v", runErr)
		exitCode = 1
	}

	title := params.Description
	if title == "" {
		title = "Run command"
	}

	return &Result{
		Title:  title,
		Output: output,
		Metadata: map[string]any{
			"exit":        exitCode,
			"description": params.Description,
			"timed_out":   timedOut,
		},
	}, nil
}
