package extension

import (
	"fmt"
	"strings"
)

// buildGeneratePrompt asks the model for a Lua extension chunk, adapted from
// extension_engine.py's generate_extension prompt (Python class -> Lua
// execute function, per the Go/Lua tool contract this package implements).
func buildGeneratePrompt(name, description string, requirements []string) string {
	var reqs strings.Builder
	for _, r := range requirements {
		fmt.Fprintf(&reqs, "- %s\n", r)
	}

	return fmt.Sprintf(`Write a Lua tool extension for the koda agent framework.

Tool name: %s
Description: %s

Requirements:
%s
The chunk must:
1. Define a single global function: function execute(args_json) ... end
2. args_json is a JSON-encoded string; no JSON library is loaded, so parse it with string functions if you need structured input.
3. Return exactly two values: a JSON-encoded string result, and an error string ("" on success).
4. Use only the Lua standard library; no external modules are available.

Example shape:

function execute(args_json)
  local ok, result = pcall(function()
    return "{\"success\":true}"
  end)
  if not ok then
    return "", tostring(result)
  end
  return result, ""
end

Write the complete Lua chunk:
`, name, description, reqs.String())
}

// buildImprovePrompt asks the model to revise an existing extension's source
// given a natural-language improvement request, adapted from
// SelfExtendingAgent.improve_tool's prompt.
func buildImprovePrompt(currentSource, improvement string) string {
	return fmt.Sprintf(`Improve this Lua tool extension:

Current source:
%s

Improvement needed: %s

The revised chunk must still define exactly one global execute(args_json)
function returning (result_json, err_string), per the original contract.
Provide the complete improved Lua chunk:
`, currentSource, improvement)
}
