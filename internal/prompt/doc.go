// Package prompt implements the Prompt Composer (spec §4.6): assembles the
// Iteration Controller's system prompt from a base description, the
// selected tool set, rule-derived per-tool guidelines, optional framework
// docs/context files/skills, and environment info, plus a per-iteration user
// prompt hint.
//
// Grounded on original_source/koda/core/system_prompt.py's
// SystemPromptBuilder/SystemPromptOptions, translated section-for-section;
// the tool catalogue and guideline rules are carried over with their Python
// tool names ("read"/"write"/"edit"/"bash"/"grep"/"find"/"ls") since those
// name the adapters spec §4.8 itself enumerates.
package prompt
