package agentrole_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/koda-agent/koda/internal/agentrole"
)

func TestToolEnabled_ExactMatchWins(t *testing.T) {
	r := agentrole.New("x", map[string]bool{"edit": false, "*": true}, nil)
	require.False(t, r.ToolEnabled("edit"))
	require.True(t, r.ToolEnabled("bash"))
}

func TestToolEnabled_DefaultsEnabledWithNoPatterns(t *testing.T) {
	r := agentrole.New("x", nil, nil)
	require.True(t, r.ToolEnabled("anything"))
}

func TestToolEnabled_PrefixWildcard(t *testing.T) {
	r := agentrole.New("x", map[string]bool{"fix*": true, "*": false}, nil)
	require.True(t, r.ToolEnabled("fix-iter1"))
	require.False(t, r.ToolEnabled("generate"))
}

func TestToolEnabled_DoublestarGlob(t *testing.T) {
	r := agentrole.New("x", map[string]bool{"**/write": false, "**": true}, nil)
	require.False(t, r.ToolEnabled("tool/write"))
}

func TestSelectedTools_FiltersPreservingOrder(t *testing.T) {
	r := agentrole.New("reviewer", map[string]bool{"read": true, "bash": true, "edit": false, "write": false}, nil)
	got := r.SelectedTools([]string{"read", "edit", "write", "bash"})
	require.Equal(t, []string{"read", "bash"}, got)
}

func TestBuiltInRoles_CoderEnablesEverythingReviewerIsReadOnly(t *testing.T) {
	roles := agentrole.BuiltInRoles()
	require.True(t, roles["coder"].ToolEnabled("write"))
	require.False(t, roles["reviewer"].ToolEnabled("write"))
	require.True(t, roles["reviewer"].ToolEnabled("read"))
}
