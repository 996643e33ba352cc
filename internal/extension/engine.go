package extension

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/fsnotify/fsnotify"
	"github.com/oklog/ulid/v2"

	"github.com/koda-agent/koda/internal/kerr"
	"github.com/koda-agent/koda/pkg/ktypes"
)

// Completer sends a single prompt to a model and returns its raw completion.
// It generalizes the original's llm_client.complete(prompt) duck-typed
// parameter into an explicit Go function type so the Extension Engine does
// not need to depend on internal/modeladapter.
type Completer func(ctx context.Context, prompt string) (string, error)

// Tool is a loaded, callable extension. Execute receives and returns
// arbitrary JSON, matching spec §6's adapter contract.
type Tool interface {
	Execute(ctx context.Context, args json.RawMessage) (json.RawMessage, error)
}

// loadedTool adapts a registered extension's source into the Tool interface.
type loadedTool struct {
	engine *Engine
	name   string
}

func (t loadedTool) Execute(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	return t.engine.Execute(ctx, t.name, args)
}

// Engine manages dynamically generated Lua tool extensions: their source,
// on-disk persistence under dir, and hot reload on external edits.
//
// Grounded on extension_engine.py's ExtensionEngine. The zero value is not
// usable; construct with New.
type Engine struct {
	mu         sync.RWMutex
	dir        string
	extensions map[string]*ktypes.ExtensionInfo

	watcher *fsnotify.Watcher
}

// New constructs an Engine backed by dir, creating it if necessary.
func New(dir string) (*Engine, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", kerr.ErrPersistenceFailed, err)
	}
	return &Engine{
		dir:        dir,
		extensions: make(map[string]*ktypes.ExtensionInfo),
	}, nil
}

func (e *Engine) path(name string) string {
	return filepath.Join(e.dir, name+".lua")
}

// Generate asks complete for a new extension's Lua source from a name,
// description and a list of free-text requirements, validates its syntax,
// and returns the (not-yet-loaded) ExtensionInfo. Mirrors
// ExtensionEngine.generate_extension.
func (e *Engine) Generate(ctx context.Context, name, description string, requirements []string, complete Completer) (*ktypes.ExtensionInfo, error) {
	raw, err := complete(ctx, buildGeneratePrompt(name, description, requirements))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerr.ErrModelFailed, err)
	}

	source := cleanCode(raw)
	if err := ValidateSyntax(source); err != nil {
		return nil, err
	}

	return &ktypes.ExtensionInfo{
		Name:         name,
		Description:  description,
		Source:       source,
		Version:      "1.0.0",
		Author:       "koda-agent",
		Dependencies: requirements,
		GenerationID: ulid.Make().String(),
	}, nil
}

// Load validates info's source, writes it to disk, and registers it,
// overwriting any prior registration of the same name. Mirrors
// ExtensionEngine.load_extension, minus the Python module-cache bookkeeping
// that Go's lack of a reloadable import system makes moot.
func (e *Engine) Load(info *ktypes.ExtensionInfo) error {
	if err := ValidateSyntax(info.Source); err != nil {
		return err
	}

	if err := os.WriteFile(e.path(info.Name), []byte(info.Source), 0o644); err != nil {
		return fmt.Errorf("%w: %v", kerr.ErrPersistenceFailed, err)
	}

	e.mu.Lock()
	e.extensions[info.Name] = info
	e.mu.Unlock()
	return nil
}

// HotReload re-reads name's source from disk and, if it still parses,
// replaces the in-memory copy. Mirrors ExtensionEngine.hot_reload.
func (e *Engine) HotReload(name string) error {
	e.mu.RLock()
	info, ok := e.extensions[name]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", kerr.ErrExtensionNotFound, name)
	}

	data, err := os.ReadFile(e.path(name))
	if err != nil {
		return fmt.Errorf("%w: %v", kerr.ErrExtensionLoadFailed, err)
	}

	source := string(data)
	if err := ValidateSyntax(source); err != nil {
		return err
	}

	e.mu.Lock()
	info.Source = source
	e.mu.Unlock()
	return nil
}

// Watch starts an fsnotify watcher on the engine's extension directory and
// calls onReload (if non-nil) each time a registered extension's .lua file
// changes on disk, after attempting a HotReload. It runs until ctx is
// cancelled or Close is called.
func (e *Engine) Watch(ctx context.Context, onReload func(name string, err error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %v", kerr.ErrPersistenceFailed, err)
	}
	if err := w.Add(e.dir); err != nil {
		w.Close()
		return fmt.Errorf("%w: %v", kerr.ErrPersistenceFailed, err)
	}

	e.mu.Lock()
	e.watcher = w
	e.mu.Unlock()

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 || filepath.Ext(ev.Name) != ".lua" {
					continue
				}
				name := strings.TrimSuffix(filepath.Base(ev.Name), ".lua")
				reloadErr := e.HotReload(name)
				if onReload != nil {
					onReload(name, reloadErr)
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}

// Close stops the hot-reload watcher, if one was started.
func (e *Engine) Close() error {
	e.mu.RLock()
	w := e.watcher
	e.mu.RUnlock()
	if w == nil {
		return nil
	}
	return w.Close()
}

// Execute runs name's execute(args) entry point. Mirrors
// ExtensionEngine.execute_extension, minus the Python method-name parameter
// (the Tool interface is single-method by design, per SPEC_FULL.md §9).
func (e *Engine) Execute(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	e.mu.RLock()
	info, ok := e.extensions[name]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", kerr.ErrExtensionNotFound, name)
	}
	return runLua(info.Source, args)
}

// ToolFor returns a Tool bound to a registered extension name, for callers
// that want the typed interface rather than calling Execute by name.
func (e *Engine) ToolFor(name string) (Tool, error) {
	e.mu.RLock()
	_, ok := e.extensions[name]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", kerr.ErrExtensionNotFound, name)
	}
	return loadedTool{engine: e, name: name}, nil
}

// Register adds or overwrites extension metadata without touching disk,
// for extensions whose source already lives at e.path(info.Name) (e.g.
// restored from a TreeSession). Mirrors ExtensionEngine.register_extension.
func (e *Engine) Register(info *ktypes.ExtensionInfo) {
	e.mu.Lock()
	e.extensions[info.Name] = info
	e.mu.Unlock()
}

// Get returns a registered extension's info.
func (e *Engine) Get(name string) (*ktypes.ExtensionInfo, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	info, ok := e.extensions[name]
	return info, ok
}

// List returns all registered extension names.
func (e *Engine) List() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.extensions))
	for name := range e.extensions {
		names = append(names, name)
	}
	return names
}

// Delete unregisters name and removes its source file. Mirrors
// ExtensionEngine.delete_extension.
func (e *Engine) Delete(name string) error {
	e.mu.Lock()
	_, ok := e.extensions[name]
	if ok {
		delete(e.extensions, name)
	}
	e.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", kerr.ErrExtensionNotFound, name)
	}

	if err := os.Remove(e.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", kerr.ErrPersistenceFailed, err)
	}
	return nil
}

// ImproveTool asks complete to revise name's existing source given a
// free-text improvement request, bumps its patch version with semver, and
// loads the result under the same name. Mirrors
// SelfExtendingAgent.improve_tool.
func (e *Engine) ImproveTool(ctx context.Context, name, improvement string, complete Completer) (*ktypes.ExtensionInfo, error) {
	e.mu.RLock()
	old, ok := e.extensions[name]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", kerr.ErrExtensionNotFound, name)
	}

	raw, err := complete(ctx, buildImprovePrompt(old.Source, improvement))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerr.ErrModelFailed, err)
	}

	source := cleanCode(raw)
	if err := ValidateSyntax(source); err != nil {
		return nil, err
	}

	nextVersion := bumpPatch(old.Version)
	improved := &ktypes.ExtensionInfo{
		Name:         name,
		Description:  old.Description,
		Source:       source,
		Version:      nextVersion,
		Author:       old.Author,
		Dependencies: old.Dependencies,
		GenerationID: ulid.Make().String(),
	}
	if err := e.Load(improved); err != nil {
		return nil, err
	}
	return improved, nil
}

// bumpPatch increments version's patch component, falling back to 1.0.1 if
// version does not parse as semver (e.g. a hand-set placeholder).
func bumpPatch(version string) string {
	v, err := semver.NewVersion(version)
	if err != nil {
		return "1.0.1"
	}
	next := v.IncPatch()
	return next.String()
}
