// Package extension implements the Extension Engine (spec §4.3): model-driven
// tool synthesis, load, hot reload, execution, and versioned improvement.
//
// Grounded on original_source/koda/core/extension_engine.py's ExtensionEngine
// and SelfExtendingAgent. The original dynamically compiles and imports
// Python source at runtime and finds a usable tool class by a `*Tool`
// name-suffix heuristic (duck typing over sys.modules). Neither translates to
// Go: Go has no supported unload-and-recompile story (plugin.Open builds a
// .so that can never be closed or reloaded, and is not portable across
// platforms), and Go has no runtime type enumeration to replicate the
// suffix-scan. Per SPEC_FULL.md §4.3/§9, extensions here are instead Lua
// chunks run on an embedded github.com/yuin/gopher-lua state: a chunk is
// valid when it is syntactically well-formed Lua exposing a global `execute`
// function of shape `function execute(args_json) -> result_json, err`. This
// keeps the "agent writes its own tools at runtime" capability the spec
// requires while giving load/hot_reload/execute well-defined, restartable Go
// semantics instead of irreversible process-level state.
package extension
