// Package config loads koda's configuration, merging (in priority order)
// global config, project config, then environment variable overrides.
//
// Grounded on internal/config/config.go from the teacher repo: same
// global-then-project-then-env merge order and the same JSONC-tolerant file
// loading, but adapted to koda's own config shape (provider credentials plus
// the Iteration Controller's AgentConfig knobs) and using
// github.com/tidwall/jsonc to strip comments instead of the teacher's
// hand-rolled regex pass — jsonc is already a dependency the teacher carries
// but does not use for this.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// ProviderConfig holds credentials for one model provider.
type ProviderConfig struct {
	APIKey  string `json:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
}

// AgentConfig mirrors spec's Iteration Controller configuration knobs
// (adapted from original_source/koda/core/agent_v2.py's AgentConfig
// dataclass).
type AgentConfig struct {
	EnableSelfExtension      bool    `json:"enable_self_extension"`
	AutoCreateMissingTools   bool    `json:"auto_create_missing_tools"`
	EnableBranches           bool    `json:"enable_branches"`
	MaxBranches              int     `json:"max_branches"`
	EnableValidation         bool    `json:"enable_validation"`
	EnableReflection         bool    `json:"enable_reflection"`
	MaxIterations            int     `json:"max_iterations"`
	ValidationScoreThreshold float64 `json:"validation_score_threshold"`
	Verbose                  bool    `json:"verbose"`
}

// DefaultAgentConfig mirrors agent_v2.py's dataclass field defaults.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		EnableSelfExtension:      true,
		AutoCreateMissingTools:   false,
		EnableBranches:           true,
		MaxBranches:              10,
		EnableValidation:         true,
		EnableReflection:         true,
		MaxIterations:            3,
		ValidationScoreThreshold: 80.0,
		Verbose:                  false,
	}
}

// Config is koda's root configuration document.
type Config struct {
	Model      string                    `json:"model,omitempty"`
	SmallModel string                    `json:"small_model,omitempty"`
	Provider   map[string]ProviderConfig `json:"provider,omitempty"`
	Agent      AgentConfig               `json:"agent"`
}

// Load merges global (~/.config/koda/koda.json[c]), project
// (<directory>/.koda/koda.json[c]), then environment variable overrides.
func Load(directory string) (*Config, error) {
	cfg := &Config{
		Provider: make(map[string]ProviderConfig),
		Agent:    DefaultAgentConfig(),
	}

	globalDir := GlobalConfigDir()
	loadFile(filepath.Join(globalDir, "koda.json"), cfg)
	loadFile(filepath.Join(globalDir, "koda.jsonc"), cfg)

	if directory != "" {
		projectDir := filepath.Join(directory, ".koda")
		loadFile(filepath.Join(projectDir, "koda.json"), cfg)
		loadFile(filepath.Join(projectDir, "koda.jsonc"), cfg)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// GlobalConfigDir returns ~/.config/koda, falling back to the current
// directory if the user's home cannot be determined.
func GlobalConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/koda"
	}
	return filepath.Join(home, ".config", "koda")
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	clean := jsonc.ToJSON(raw)

	var fileCfg Config
	if err := json.Unmarshal(clean, &fileCfg); err != nil {
		return err
	}
	merge(cfg, &fileCfg)
	return nil
}

func merge(target, source *Config) {
	if source.Model != "" {
		target.Model = source.Model
	}
	if source.SmallModel != "" {
		target.SmallModel = source.SmallModel
	}
	if source.Provider != nil {
		if target.Provider == nil {
			target.Provider = make(map[string]ProviderConfig)
		}
		for k, v := range source.Provider {
			target.Provider[k] = v
		}
	}
	// Agent knobs: zero-value source fields are indistinguishable from
	// "unset" here (the source config type has no pointer fields), so a
	// project file that sets only one knob still overwrites the rest with
	// its (possibly default) values -- callers wanting partial overrides
	// should set the full agent block.
	if source.Agent != (AgentConfig{}) {
		target.Agent = source.Agent
	}
}

func applyEnvOverrides(cfg *Config) {
	providerEnvMap := map[string]string{
		"anthropic": "ANTHROPIC_API_KEY",
		"openai":    "OPENAI_API_KEY",
		"google":    "GOOGLE_API_KEY",
	}

	for provider, envVar := range providerEnvMap {
		if apiKey := os.Getenv(envVar); apiKey != "" {
			if cfg.Provider == nil {
				cfg.Provider = make(map[string]ProviderConfig)
			}
			p := cfg.Provider[provider]
			if p.APIKey == "" {
				p.APIKey = apiKey
				cfg.Provider[provider] = p
			}
		}
	}

	if model := os.Getenv("KODA_MODEL"); model != "" {
		cfg.Model = model
	}
	if smallModel := os.Getenv("KODA_SMALL_MODEL"); smallModel != "" {
		cfg.SmallModel = smallModel
	}
}

// Save writes the configuration as indented JSON, creating parent
// directories as needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
