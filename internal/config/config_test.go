package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/koda-agent/koda/internal/config"
)

func TestLoad_ProjectOverridesGlobalDefaults(t *testing.T) {
	dir := t.TempDir()
	projectCfgDir := filepath.Join(dir, ".koda")
	require.NoError(t, os.MkdirAll(projectCfgDir, 0755))

	content := []byte(`{
		// project override
		"model": "claude-opus",
		"agent": {
			"enable_self_extension": true,
			"auto_create_missing_tools": false,
			"enable_branches": true,
			"max_branches": 5,
			"enable_validation": true,
			"enable_reflection": true,
			"max_iterations": 5,
			"validation_score_threshold": 90,
			"verbose": true
		}
	}`)
	require.NoError(t, os.WriteFile(filepath.Join(projectCfgDir, "koda.jsonc"), content, 0644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	require.Equal(t, "claude-opus", cfg.Model)
	require.Equal(t, 5, cfg.Agent.MaxIterations)
	require.Equal(t, 90.0, cfg.Agent.ValidationScoreThreshold)
}

func TestLoad_EnvOverridesAPIKeyOnlyWhenUnset(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "from-env")

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Provider["anthropic"].APIKey)
}

func TestLoad_DefaultsWhenNoConfigFilesPresent(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Agent.MaxIterations)
	require.Equal(t, 80.0, cfg.Agent.ValidationScoreThreshold)
	require.True(t, cfg.Agent.EnableBranches)
}
