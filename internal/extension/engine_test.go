package extension_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/koda-agent/koda/internal/extension"
	"github.com/koda-agent/koda/internal/kerr"
	"github.com/koda-agent/koda/pkg/ktypes"
)

const echoExtension = `
function execute(args_json)
  return args_json, ""
end
`

const failingExtension = `
function execute(args_json)
  return "", "boom"
end
`

func TestValidateSyntax(t *testing.T) {
	require.NoError(t, extension.ValidateSyntax(echoExtension))
	require.Error(t, extension.ValidateSyntax("this is not lua }{"))
}

func TestLoadAndExecute_RoundTrip(t *testing.T) {
	eng, err := extension.New(t.TempDir())
	require.NoError(t, err)

	info := &ktypes.ExtensionInfo{Name: "echo", Description: "echoes its input", Source: echoExtension, Version: "1.0.0"}
	require.NoError(t, eng.Load(info))

	out, err := eng.Execute(context.Background(), "echo", json.RawMessage(`{"a":1}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"a":1}`, string(out))
}

func TestExecute_UnknownExtension(t *testing.T) {
	eng, err := extension.New(t.TempDir())
	require.NoError(t, err)

	_, err = eng.Execute(context.Background(), "nope", nil)
	require.True(t, errors.Is(err, kerr.ErrExtensionNotFound))
}

func TestExecute_ExtensionReportedError(t *testing.T) {
	eng, err := extension.New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, eng.Load(&ktypes.ExtensionInfo{Name: "fails", Source: failingExtension}))

	_, err = eng.Execute(context.Background(), "fails", json.RawMessage(`{}`))
	require.True(t, errors.Is(err, kerr.ErrToolFailed))
}

func TestLoad_RejectsInvalidSyntax(t *testing.T) {
	eng, err := extension.New(t.TempDir())
	require.NoError(t, err)

	err = eng.Load(&ktypes.ExtensionInfo{Name: "broken", Source: "function execute( return end"})
	require.True(t, errors.Is(err, kerr.ErrInvalidSource))
}

func TestHotReload_PicksUpExternalEdit(t *testing.T) {
	dir := t.TempDir()
	eng, err := extension.New(dir)
	require.NoError(t, err)

	require.NoError(t, eng.Load(&ktypes.ExtensionInfo{Name: "echo", Source: echoExtension}))

	edited := `
function execute(args_json)
  return "{\"edited\":true}", ""
end
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "echo.lua"), []byte(edited), 0o644))
	require.NoError(t, eng.HotReload("echo"))

	out, err := eng.Execute(context.Background(), "echo", json.RawMessage(`{}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"edited":true}`, string(out))
}

func TestHotReload_UnknownExtension(t *testing.T) {
	eng, err := extension.New(t.TempDir())
	require.NoError(t, err)

	err = eng.HotReload("never-loaded")
	require.True(t, errors.Is(err, kerr.ErrExtensionNotFound))
}

func TestWatch_TriggersOnExternalEdit(t *testing.T) {
	dir := t.TempDir()
	eng, err := extension.New(dir)
	require.NoError(t, err)
	require.NoError(t, eng.Load(&ktypes.ExtensionInfo{Name: "echo", Source: echoExtension}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer eng.Close()

	reloaded := make(chan error, 1)
	require.NoError(t, eng.Watch(ctx, func(name string, err error) {
		if name == "echo" {
			reloaded <- err
		}
	}))

	edited := `
function execute(args_json)
  return "{\"edited\":true}", ""
end
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "echo.lua"), []byte(edited), 0o644))

	select {
	case err := <-reloaded:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for hot reload notification")
	}

	out, err := eng.Execute(context.Background(), "echo", json.RawMessage(`{}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"edited":true}`, string(out))
}

func TestGenerate_UsesCompleterAndCleansFence(t *testing.T) {
	eng, err := extension.New(t.TempDir())
	require.NoError(t, err)

	complete := func(ctx context.Context, prompt string) (string, error) {
		require.Contains(t, prompt, "greeter")
		return "```lua\n" + echoExtension + "\n```", nil
	}

	info, err := eng.Generate(context.Background(), "greeter", "says hello", []string{"must be polite"}, complete)
	require.NoError(t, err)
	require.Equal(t, "greeter", info.Name)
	require.NotContains(t, info.Source, "```")
	require.NotEmpty(t, info.GenerationID)

	require.NoError(t, eng.Load(info))
	out, err := eng.Execute(context.Background(), "greeter", json.RawMessage(`{"hi":true}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"hi":true}`, string(out))
}

func TestGenerate_PropagatesModelFailure(t *testing.T) {
	eng, err := extension.New(t.TempDir())
	require.NoError(t, err)

	complete := func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("network down")
	}

	_, err = eng.Generate(context.Background(), "x", "y", nil, complete)
	require.True(t, errors.Is(err, kerr.ErrModelFailed))
}

func TestImproveTool_BumpsPatchVersion(t *testing.T) {
	eng, err := extension.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, eng.Load(&ktypes.ExtensionInfo{Name: "echo", Source: echoExtension, Version: "1.2.3"}))

	complete := func(ctx context.Context, prompt string) (string, error) {
		require.Contains(t, prompt, "be faster")
		return echoExtension, nil
	}

	improved, err := eng.ImproveTool(context.Background(), "echo", "be faster", complete)
	require.NoError(t, err)
	require.Equal(t, "1.2.4", improved.Version)
	require.NotEmpty(t, improved.GenerationID)

	got, ok := eng.Get("echo")
	require.True(t, ok)
	require.Equal(t, "1.2.4", got.Version)
	require.Equal(t, improved.GenerationID, got.GenerationID)
}

func TestImproveTool_UnknownExtension(t *testing.T) {
	eng, err := extension.New(t.TempDir())
	require.NoError(t, err)

	_, err = eng.ImproveTool(context.Background(), "nope", "x", func(ctx context.Context, prompt string) (string, error) {
		return echoExtension, nil
	})
	require.True(t, errors.Is(err, kerr.ErrExtensionNotFound))
}

func TestDelete_RemovesRegistrationAndFile(t *testing.T) {
	dir := t.TempDir()
	eng, err := extension.New(dir)
	require.NoError(t, err)
	require.NoError(t, eng.Load(&ktypes.ExtensionInfo{Name: "echo", Source: echoExtension}))

	require.NoError(t, eng.Delete("echo"))
	_, ok := eng.Get("echo")
	require.False(t, ok)

	_, statErr := os.Stat(filepath.Join(dir, "echo.lua"))
	require.True(t, os.IsNotExist(statErr))

	err = eng.Delete("echo")
	require.True(t, errors.Is(err, kerr.ErrExtensionNotFound))
}

func TestToolFor_WrapsExecute(t *testing.T) {
	eng, err := extension.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, eng.Load(&ktypes.ExtensionInfo{Name: "echo", Source: echoExtension}))

	tool, err := eng.ToolFor("echo")
	require.NoError(t, err)

	out, err := tool.Execute(context.Background(), json.RawMessage(`{"x":2}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"x":2}`, string(out))
}

func TestList_ReturnsAllRegisteredNames(t *testing.T) {
	eng, err := extension.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, eng.Load(&ktypes.ExtensionInfo{Name: "a", Source: echoExtension}))
	require.NoError(t, eng.Load(&ktypes.ExtensionInfo{Name: "b", Source: echoExtension}))

	require.ElementsMatch(t, []string{"a", "b"}, eng.List())
}
