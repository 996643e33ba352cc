package toolio

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/koda-agent/koda/internal/kerr"
)

// WriteInput is the write adapter's argument shape.
type WriteInput struct {
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
}

// WriteTool creates or overwrites a file, adapted from the teacher's
// tool.WriteTool with event-bus publishing dropped (spec §9: no global event
// bus in the core).
type WriteTool struct{}

func NewWriteTool() *WriteTool { return &WriteTool{} }

func (t *WriteTool) Execute(ctx context.Context, input json.RawMessage) (*Result, error) {
	var params WriteInput
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("%w: invalid write input: %v", kerr.ErrToolFailed, err)
	}
	if params.FilePath == "" {
		return nil, fmt.Errorf("%w: file_path is required", kerr.ErrToolFailed)
	}

	if dir := filepath.Dir(params.FilePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %v", kerr.ErrToolFailed, err)
		}
	}
	if err := os.WriteFile(params.FilePath, []byte(params.Content), 0o644); err != nil {
		return nil, fmt.Errorf("%w: %v", kerr.ErrToolFailed, err)
	}
	formatIfGo(ctx, params.FilePath)

	return &Result{
		Title:  fmt.Sprintf("Wrote %s", filepath.Base(params.FilePath)),
		Output: fmt.Sprintf("Wrote %d bytes to %s", len(params.Content), params.FilePath),
		Metadata: map[string]any{
			"file":  params.FilePath,
			"bytes": len(params.Content),
		},
	}, nil
}
