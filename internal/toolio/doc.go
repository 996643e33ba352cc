// Package toolio provides the concrete read/write/edit/bash implementations
// for SPEC_FULL.md §4.8/§6's tool surface: each adapter exposes
// Execute(ctx, json.RawMessage) (*Result, error).
//
// Each adapter is grounded on the teacher's internal/tool/{read,write,edit,
// bash}.go, with two deliberate departures:
//
//   - Eino's tool-calling schema wrapper (einoToolWrapper, EinoTool()) is
//     dropped. The Iteration Controller calls these adapters directly as part
//     of its own generate/validate loop, not through a model-facing
//     tool-call round trip, so there is nothing for a schema wrapper to
//     serve here.
//   - The teacher's internal/event publishing (event.Publish(event.Event{
//     Type: event.FileEdited, ...}) on every write/edit) is dropped. Spec §9
//     rules out a global, cross-cutting event bus as part of the core; a
//     caller that wants to know a file changed gets that from the Result
//     this package already returns, not from a side-channel bus.
//
// read uses internal/truncate (the Content Truncator, spec §4.1) for its
// output shaping instead of the teacher's ad hoc per-call line-truncation-
// and-footer logic, so the same truncation semantics and continuation
// offsets apply whether a caller is reading a file or reading truncated tool
// output.
package toolio
