// Package reflector implements the Reflective Reviewer (spec §4.5): a
// two-pass analyzer combining static go/ast heuristics with an optional
// model-driven review and repair pass.
//
// Grounded on original_source/koda/core/reflector.py's Reflector. The
// static pass is translated check-for-check from _static_analysis (structure,
// error handling, documentation, long functions, magic strings) onto go/ast;
// the model pass's prompt and the strict ISSUES:/SUGGESTIONS:/CAN_FIX:/
// CONFIDENCE: response grammar are translated line-for-line from
// _llm_analysis/_parse_llm_response, and _generate_fix grounds the repair
// call. github.com/bmatcuk/doublestar/v4 strengthens the magic-string
// heuristic's path-literal exclusion beyond the original's plain prefix
// check (see static.go).
package reflector
