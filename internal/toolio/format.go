package toolio

import (
	"context"
	"os/exec"
	"path/filepath"
)

// formatIfGo shells out to gofmt -w after a successful write/edit, adapted
// from the teacher's internal/formatter.Manager (extension-keyed registry of
// external formatter commands run after a file write). That registry's
// multi-language, user-configurable surface has no home in a system whose
// generated artifacts are always Go source (see DESIGN.md's "internal/toolio's
// formatter wiring" entry) — what's kept is its core idiom, shelling
// out to an external formatter binary after a write, narrowed to the one
// formatter this module ever needs.
//
// Formatting failures are deliberately swallowed: an unformatted-but-valid
// write must never fail the tool call over a cosmetic pass.
func formatIfGo(ctx context.Context, path string) {
	if filepath.Ext(path) != ".go" {
		return
	}
	_ = exec.CommandContext(ctx, "gofmt", "-w", path).Run()
}
