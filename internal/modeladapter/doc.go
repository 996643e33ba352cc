// Package modeladapter implements spec §4.8's Model adapter contract as an
// explicit Go sum type, plus concrete Eino-backed constructors for Claude and
// OpenAI-compatible chat models.
//
// The original's model clients are duck-typed: callers probe for a
// `.complete` or `.chat` attribute at the call site (reflector.py's
// _llm_analysis, extension_engine.py's generate_extension). Go has no
// attribute probing, and a two-method interface where only one method is
// ever valid per instance invites a caller to call the wrong one. Per
// SPEC_FULL.md §9, ModelAdapter is instead a concrete struct constructed via
// one of two functions (NewCompletionAdapter / NewChatAdapter) that fixes its
// kind at construction and exposes a single Complete method every caller in
// the core (internal/extension, internal/reflector, internal/controller)
// can use uniformly, regardless of which underlying shape backs it.
//
// The Eino wiring here (github.com/cloudwego/eino-ext/components/model/
// claude and .../openai) is grounded on the teacher's internal/provider
// package, adapted from its streaming, tool-calling Provider interface down
// to the single blocking Generate call this core's Complete needs.
package modeladapter
