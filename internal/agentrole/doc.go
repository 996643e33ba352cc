// Package agentrole supplies SPEC_FULL.md §9's "agent role/tool-gating"
// addition: a small AgentRole type (name, allowed tool-name patterns, model
// reference) that decides which of the core's tool adapters are "in the
// selected set" for a given task — a notion the Prompt Composer (§4.6) and
// Iteration Controller (§4.7) both need but spec.md leaves abstract.
//
// Grounded on the teacher's internal/agent.Agent: its Tools map[string]bool
// plus wildcard matching (matchWildcard, exact/prefix/suffix/doublestar),
// trimmed of the permission-action fields (Edit/Bash/WebFetch/ExternalDir/
// DoomLoop actions) this module's autonomous controller has no interactive
// operator to consult — see internal/toolio's DESIGN.md entry for the same
// reasoning applied to the bash adapter.
package agentrole
