package agentrole

import (
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ModelRef names the model a role should run against, mirroring the
// teacher's agent.ModelRef.
type ModelRef struct {
	ProviderID string `json:"provider_id"`
	ModelID    string `json:"model_id"`
}

// AgentRole gates which tool adapters a task running under it may use.
// Tools maps a tool-name pattern ("*", "read", "fix*"...) to whether
// matching tools are enabled; after an exact match fails, patterns are tried
// longest first (ties in lexical order), so "fix*" wins over "*".
type AgentRole struct {
	Name  string
	Tools map[string]bool
	Model *ModelRef
}

// New constructs a role. A nil or empty tools map enables every tool, the
// same "default: enabled" fallback the teacher's ToolEnabled uses.
func New(name string, tools map[string]bool, model *ModelRef) *AgentRole {
	return &AgentRole{Name: name, Tools: tools, Model: model}
}

// ToolEnabled reports whether toolID is usable under this role.
func (r *AgentRole) ToolEnabled(toolID string) bool {
	if enabled, ok := r.Tools[toolID]; ok {
		return enabled
	}
	patterns := make([]string, 0, len(r.Tools))
	for pattern := range r.Tools {
		patterns = append(patterns, pattern)
	}
	sort.Slice(patterns, func(i, j int) bool {
		if len(patterns[i]) != len(patterns[j]) {
			return len(patterns[i]) > len(patterns[j])
		}
		return patterns[i] < patterns[j]
	})
	for _, pattern := range patterns {
		if matchWildcard(pattern, toolID) {
			return r.Tools[pattern]
		}
	}
	return true
}

// SelectedTools filters candidates down to the ones this role enables,
// preserving candidate order. This is the set the Prompt Composer's
// Options.SelectedTools should be built from for a task running under role
// r.
func (r *AgentRole) SelectedTools(candidates []string) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if r.ToolEnabled(c) {
			out = append(out, c)
		}
	}
	return out
}

// matchWildcard mirrors the teacher's agent.matchWildcard: a direct port of
// its exact/prefix*/*suffix/doublestar-glob ladder.
func matchWildcard(pattern, s string) bool {
	if pattern == "*" {
		return true
	}
	if strings.Contains(pattern, "**") {
		matched, _ := doublestar.Match(pattern, s)
		return matched
	}
	if strings.HasSuffix(pattern, "*") && !strings.HasPrefix(pattern, "*") {
		return strings.HasPrefix(s, strings.TrimSuffix(pattern, "*"))
	}
	if strings.HasPrefix(pattern, "*") && !strings.HasSuffix(pattern, "*") {
		return strings.HasSuffix(s, strings.TrimPrefix(pattern, "*"))
	}
	if strings.Contains(pattern, "*") {
		matched, _ := doublestar.Match(pattern, s)
		return matched
	}
	return pattern == s
}

// BuiltInRoles returns the core's two default roles: an unrestricted "coder"
// role (every tool enabled, used by the Iteration Controller's GENERATE/
// REPAIR_WITH_CONTEXT states) and a "reviewer" role (read and bash enabled,
// write/edit disabled, used when a task only needs inspection), adapted from the
// teacher's BuiltInAgents' "build" and "plan" entries.
func BuiltInRoles() map[string]*AgentRole {
	return map[string]*AgentRole{
		"coder": New("coder", map[string]bool{"*": true}, nil),
		"reviewer": New("reviewer", map[string]bool{
			"read":  true,
			"bash":  true,
			"edit":  false,
			"write": false,
		}, nil),
	}
}
