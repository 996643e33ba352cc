package modeladapter

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/koda-agent/koda/internal/kerr"
	"github.com/koda-agent/koda/pkg/ktypes"
)

// ClaudeConfig configures a Claude-backed chat adapter, a trimmed form of
// the teacher's provider.AnthropicConfig (bedrock/thinking knobs dropped:
// out of scope for the core's blocking Complete/Chat use).
type ClaudeConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// NewClaudeAdapter constructs a ModelAdapter backed by Anthropic's Claude via
// Eino, grounded on the teacher's internal/provider.NewAnthropicProvider.
func NewClaudeAdapter(ctx context.Context, cfg ClaudeConfig) (*ModelAdapter, error) {
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-20250514"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}

	einoCfg := &claude.Config{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
	}
	if cfg.BaseURL != "" {
		einoCfg.BaseURL = &cfg.BaseURL
	}

	chatModel, err := claude.NewChatModel(ctx, einoCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerr.ErrModelFailed, err)
	}

	return NewChatAdapter(einoChatFn(chatModel)), nil
}

// OpenAIConfig configures an OpenAI-compatible chat adapter.
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// NewOpenAIAdapter constructs a ModelAdapter backed by an OpenAI-compatible
// chat model via Eino, grounded on the teacher's
// internal/provider.NewOpenAIProvider.
func NewOpenAIAdapter(ctx context.Context, cfg OpenAIConfig) (*ModelAdapter, error) {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	einoCfg := &openai.ChatModelConfig{
		APIKey:              cfg.APIKey,
		Model:               cfg.Model,
		MaxCompletionTokens: &maxTokens,
	}
	if cfg.BaseURL != "" {
		einoCfg.BaseURL = cfg.BaseURL
	}

	chatModel, err := openai.NewChatModel(ctx, einoCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerr.ErrModelFailed, err)
	}

	return NewChatAdapter(einoChatFn(chatModel)), nil
}

// einoChatFn adapts an Eino ToolCallingChatModel's blocking Generate call
// into this package's ChatFn shape.
func einoChatFn(chatModel einomodel.ToolCallingChatModel) ChatFn {
	return func(ctx context.Context, messages []ktypes.Message) (ktypes.Message, error) {
		reply, err := chatModel.Generate(ctx, toEinoMessages(messages))
		if err != nil {
			return ktypes.Message{}, err
		}
		return ktypes.Message{Role: "assistant", Content: reply.Content}, nil
	}
}

func toEinoMessages(messages []ktypes.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(messages))
	for _, m := range messages {
		role := schema.User
		switch m.Role {
		case "system":
			role = schema.System
		case "assistant":
			role = schema.Assistant
		case "tool":
			role = schema.Tool
		}
		out = append(out, &schema.Message{Role: role, Content: m.Content})
	}
	return out
}
