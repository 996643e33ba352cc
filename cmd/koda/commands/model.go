package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/koda-agent/koda/internal/config"
	"github.com/koda-agent/koda/internal/controller"
	"github.com/koda-agent/koda/internal/modeladapter"
)

// buildCompleter resolves cfg.Model ("provider/model", e.g.
// "anthropic/claude-sonnet-4-20250514") into a controller.Completer,
// grounded on the teacher's provider.InitializeProviders dispatch but
// narrowed to the two eino-backed adapters internal/modeladapter ships.
func buildCompleter(ctx context.Context, cfg *config.Config) (controller.Completer, error) {
	providerID, modelID := splitModel(cfg.Model)
	providerCfg := cfg.Provider[providerID]

	switch providerID {
	case "", "anthropic":
		adapter, err := modeladapter.NewClaudeAdapter(ctx, modeladapter.ClaudeConfig{
			APIKey:  providerCfg.APIKey,
			BaseURL: providerCfg.BaseURL,
			Model:   modelID,
		})
		if err != nil {
			return nil, err
		}
		return adapter.Complete, nil
	case "openai":
		adapter, err := modeladapter.NewOpenAIAdapter(ctx, modeladapter.OpenAIConfig{
			APIKey:  providerCfg.APIKey,
			BaseURL: providerCfg.BaseURL,
			Model:   modelID,
		})
		if err != nil {
			return nil, err
		}
		return adapter.Complete, nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want anthropic or openai)", providerID)
	}
}

func splitModel(model string) (providerID, modelID string) {
	parts := strings.SplitN(model, "/", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return "", model
}
