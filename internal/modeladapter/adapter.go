package modeladapter

import (
	"context"
	"fmt"

	"github.com/koda-agent/koda/internal/kerr"
	"github.com/koda-agent/koda/pkg/ktypes"
)

// Kind distinguishes which underlying shape a ModelAdapter was constructed
// from.
type Kind int

const (
	// KindCompletion wraps a single prompt-in, text-out function.
	KindCompletion Kind = iota
	// KindChat wraps a multi-message conversational function.
	KindChat
)

// CompletionFn sends one prompt to a model and returns its raw completion.
type CompletionFn func(ctx context.Context, prompt string) (string, error)

// ChatFn sends a message history to a model and returns its reply.
type ChatFn func(ctx context.Context, messages []ktypes.Message) (ktypes.Message, error)

// ModelAdapter is the Go sum type realizing spec §4.8's duck-typed model
// client contract: constructed once via NewCompletionAdapter or
// NewChatAdapter, it exposes Complete uniformly regardless of kind.
type ModelAdapter struct {
	kind       Kind
	completion CompletionFn
	chat       ChatFn
}

// NewCompletionAdapter wraps a single-shot completion function.
func NewCompletionAdapter(fn CompletionFn) *ModelAdapter {
	return &ModelAdapter{kind: KindCompletion, completion: fn}
}

// NewChatAdapter wraps a conversational chat function, adapted for
// single-prompt use by Complete via a one-message user turn.
func NewChatAdapter(fn ChatFn) *ModelAdapter {
	return &ModelAdapter{kind: KindChat, chat: fn}
}

// Kind reports which shape this adapter was constructed from.
func (m *ModelAdapter) Kind() Kind { return m.kind }

// Complete sends prompt to the underlying model and returns its text
// reply, regardless of whether the adapter was built as a completion or
// chat model. Its signature matches internal/extension.Completer and
// internal/reflector.Completer so a *ModelAdapter's Complete method value can
// be passed directly to either package.
func (m *ModelAdapter) Complete(ctx context.Context, prompt string) (string, error) {
	switch m.kind {
	case KindCompletion:
		out, err := m.completion(ctx, prompt)
		if err != nil {
			return "", fmt.Errorf("%w: %v", kerr.ErrModelFailed, err)
		}
		return out, nil
	case KindChat:
		reply, err := m.chat(ctx, []ktypes.Message{{Role: "user", Content: prompt}})
		if err != nil {
			return "", fmt.Errorf("%w: %v", kerr.ErrModelFailed, err)
		}
		return reply.Content, nil
	default:
		return "", fmt.Errorf("%w: unrecognized model adapter kind", kerr.ErrModelFailed)
	}
}

// Chat sends a full message history to the underlying model. Chat-kind
// adapters receive every message; completion-kind adapters send only the
// last message's content as the prompt, whatever its role.
func (m *ModelAdapter) Chat(ctx context.Context, messages []ktypes.Message) (ktypes.Message, error) {
	switch m.kind {
	case KindChat:
		reply, err := m.chat(ctx, messages)
		if err != nil {
			return ktypes.Message{}, fmt.Errorf("%w: %v", kerr.ErrModelFailed, err)
		}
		return reply, nil
	case KindCompletion:
		prompt := ""
		if len(messages) > 0 {
			prompt = messages[len(messages)-1].Content
		}
		text, err := m.Complete(ctx, prompt)
		if err != nil {
			return ktypes.Message{}, err
		}
		return ktypes.Message{Role: "assistant", Content: text}, nil
	default:
		return ktypes.Message{}, fmt.Errorf("%w: unrecognized model adapter kind", kerr.ErrModelFailed)
	}
}
