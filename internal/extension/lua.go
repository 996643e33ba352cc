package extension

import (
	"encoding/json"
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/koda-agent/koda/internal/kerr"
)

// ValidateSyntax reports whether source compiles as Lua, without executing
// it. This is the Go-native analogue of the original's ast.parse syntax
// check (extension_engine.py's _validate_syntax).
func ValidateSyntax(source string) error {
	L := lua.NewState()
	defer L.Close()
	if _, err := L.LoadString(source); err != nil {
		return fmt.Errorf("%w: %v", kerr.ErrInvalidSource, err)
	}
	return nil
}

// cleanCode strips a surrounding markdown code fence, matching the
// original's _clean_code (adapted for ```lua fences instead of ```python).
func cleanCode(code string) string {
	code = strings.TrimSpace(code)
	for _, fence := range []string{"```lua", "```"} {
		code = strings.TrimPrefix(code, fence)
	}
	code = strings.TrimSuffix(code, "```")
	return strings.TrimSpace(code)
}

// runLua loads source fresh into its own *lua.LState and calls its global
// execute(args_json) function, expecting two return values: a JSON string
// result and an error string (empty on success). A new state per call keeps
// extension execution free of shared global mutation between calls.
func runLua(source string, args json.RawMessage) (json.RawMessage, error) {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoString(source); err != nil {
		return nil, fmt.Errorf("%w: %v", kerr.ErrExtensionLoadFailed, err)
	}

	fn := L.GetGlobal("execute")
	if fn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%w: extension does not define a global execute(args_json) function", kerr.ErrExtensionLoadFailed)
	}

	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    2,
		Protect: true,
	}, lua.LString(string(args))); err != nil {
		return nil, fmt.Errorf("%w: %v", kerr.ErrToolFailed, err)
	}

	errVal := L.Get(-1)
	resultVal := L.Get(-2)
	L.Pop(2)

	if s, ok := errVal.(lua.LString); ok && string(s) != "" {
		return nil, fmt.Errorf("%w: %s", kerr.ErrToolFailed, string(s))
	}

	resultStr, ok := resultVal.(lua.LString)
	if !ok {
		return nil, fmt.Errorf("%w: execute() must return its result as a JSON-encoded string", kerr.ErrToolFailed)
	}

	return json.RawMessage(string(resultStr)), nil
}
