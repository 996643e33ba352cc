// Package controller implements the Iteration Controller (spec §4.7): the
// bounded generate → validate → reflect → repair state machine that is the
// core's capstone. It owns the session cursor on the tree.Session it is
// given, drives internal/validator and internal/reflector, composes prompts
// via internal/prompt, and applies the branching policy (opening a
// "fix-iterN" child on every non-accepted iteration but the last).
//
// Grounded on original_source/koda/core/controller.py's V2 controller (the
// source's own V1/V2 split is resolved per SPEC_FULL.md §9 as a thin
// compatibility note, not a second implementation: this package only
// implements V2's loop). Retry and doom-loop detection are adapted from the
// teacher's session/loop.go (newRetryBackoff) and internal/permission/
// doom_loop.go (DoomLoopDetector) respectively — both ported into this
// package rather than imported, since the teacher's versions are wired to
// its own chat-turn/tool-call model, not this core's single-shot
// generate/reflect calls.
package controller
