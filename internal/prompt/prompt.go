package prompt

import (
	"fmt"
	"strings"
	"time"
)

// Skill is a usage-when-gated instruction block injected into the system
// prompt when relevant.
type Skill struct {
	Name        string
	Description string
	Content     string
}

// ContextFile is a project file (e.g. AGENTS.md) injected verbatim as
// context.
type ContextFile struct {
	Path    string
	Content string
}

// Options configures one Composer. The zero value builds the default prompt
// with the default tool set.
type Options struct {
	// CustomPrompt, if non-empty, replaces the default body entirely; it
	// still receives context files and environment/append text, and skills
	// when "read" is among the selected tools.
	CustomPrompt string

	SelectedTools []string
	AppendPrompt  string
	ContextFiles  []ContextFile
	Skills        []Skill
	Cwd           string
	DocsPath      string
}

var defaultTools = []string{"read", "bash", "edit", "write"}

var toolDescriptions = map[string]string{
	"read":  "Read the contents of a file. Supports text files. Use offset/limit to read partial content.",
	"write": "Write content to a file. Creates the file if it doesn't exist, overwrites if it does. Automatically creates parent directories.",
	"edit":  "Edit a file by replacing exact text. The old text must match exactly (including whitespace and indentation). Use this for precise, surgical edits.",
	"bash":  "Execute shell commands in the current working directory. Use for file operations, running scripts, installing packages, etc.",
	"grep":  "Search file contents for patterns using regular expressions. Respects .gitignore.",
	"find":  "Find files by name pattern. Respects .gitignore.",
	"ls":    "List directory contents.",
}

// Composer builds a system prompt from Options, per spec §4.6.
type Composer struct {
	Options Options
	now     func() time.Time
}

// New constructs a Composer. now defaults to time.Now; tests may override it
// via NewWithClock.
func New(opts Options) *Composer {
	return &Composer{Options: opts, now: time.Now}
}

// NewWithClock is New with an injectable clock, for deterministic tests of
// the environment section.
func NewWithClock(opts Options, now func() time.Time) *Composer {
	return &Composer{Options: opts, now: now}
}

func (c *Composer) tools() []string {
	if len(c.Options.SelectedTools) > 0 {
		return c.Options.SelectedTools
	}
	return defaultTools
}

// Build assembles the complete system prompt.
func (c *Composer) Build() string {
	if c.Options.CustomPrompt != "" {
		return c.buildCustom()
	}
	return c.buildDefault()
}

func (c *Composer) buildDefault() string {
	parts := []string{
		baseDescription,
		c.toolsSection(),
		c.guidelinesSection(),
	}

	if c.Options.DocsPath != "" {
		parts = append(parts, c.docsSection())
	}
	if len(c.Options.ContextFiles) > 0 {
		parts = append(parts, c.contextSection())
	}
	if len(c.Options.Skills) > 0 {
		parts = append(parts, c.skillsSection())
	}

	parts = append(parts, c.environmentSection())

	if c.Options.AppendPrompt != "" {
		parts = append(parts, c.Options.AppendPrompt)
	}

	return strings.Join(parts, "\n\n")
}

func (c *Composer) buildCustom() string {
	var b strings.Builder
	b.WriteString(c.Options.CustomPrompt)

	if len(c.Options.ContextFiles) > 0 {
		b.WriteString("\n\n# Project Context\n\n")
		for _, cf := range c.Options.ContextFiles {
			fmt.Fprintf(&b, "## %s\n\n%s\n\n", cf.Path, cf.Content)
		}
	}

	if len(c.Options.Skills) > 0 && containsTool(c.tools(), "read") {
		b.WriteString(c.skillsSection())
	}

	fmt.Fprintf(&b, "\n\nCurrent date and time: %s", c.formattedDatetime())
	fmt.Fprintf(&b, "\nCurrent working directory: %s", c.cwd())

	if c.Options.AppendPrompt != "" {
		fmt.Fprintf(&b, "\n\n%s", c.Options.AppendPrompt)
	}

	return b.String()
}

const baseDescription = `You are an expert coding assistant operating inside Koda, an autonomous coding agent framework. You help users by reading files, executing commands, editing code, writing new files, and generating tools.

Your core philosophy: "If you need a capability, don't ask for it - write code to achieve it." You can extend yourself by writing new tools and extensions.`

func (c *Composer) toolsSection() string {
	lines := []string{"Available tools:"}
	for _, t := range c.tools() {
		desc, ok := toolDescriptions[t]
		if !ok {
			desc = fmt.Sprintf("Tool: %s", t)
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", t, desc))
	}
	lines = append(lines, "", "You may also have access to custom tools depending on the project.")
	return strings.Join(lines, "\n")
}

func (c *Composer) guidelinesSection() string {
	tools := c.tools()
	hasBash := containsTool(tools, "bash")
	hasGrep := containsTool(tools, "grep")
	hasFind := containsTool(tools, "find")
	hasLs := containsTool(tools, "ls")
	hasRead := containsTool(tools, "read")
	hasEdit := containsTool(tools, "edit")
	hasWrite := containsTool(tools, "write")

	var guidelines []string

	switch {
	case hasBash && !(hasGrep || hasFind || hasLs):
		guidelines = append(guidelines, "Use bash for file operations like ls, grep, find")
	case hasBash && (hasGrep || hasFind || hasLs):
		guidelines = append(guidelines, "Prefer grep/find/ls tools over bash for file exploration (faster, respects .gitignore)")
	}

	if hasRead && hasEdit {
		guidelines = append(guidelines, "Use read to examine files before editing. You must use this tool instead of cat or sed.")
	}
	if hasEdit {
		guidelines = append(guidelines, "Use edit for precise changes (old text must match exactly including whitespace)")
	}
	if hasWrite {
		guidelines = append(guidelines, "Use write only for new files or complete rewrites")
	}
	if hasEdit || hasWrite {
		guidelines = append(guidelines, "When summarizing your actions, output plain text directly - do NOT use cat or bash to display what you did")
	}

	guidelines = append(guidelines,
		"Be concise in your responses",
		"Show file paths clearly when working with files",
		"Think step by step, but keep the thought process internal",
		"If you need a tool that doesn't exist, consider writing it yourself",
	)

	lines := []string{"Guidelines:"}
	for _, g := range guidelines {
		lines = append(lines, fmt.Sprintf("- %s", g))
	}
	return strings.Join(lines, "\n")
}

func (c *Composer) docsSection() string {
	docsPath := c.Options.DocsPath
	if docsPath == "" {
		docsPath = "./docs"
	}
	return fmt.Sprintf(`Koda documentation (read only when the user asks about Koda itself, extensions, or framework internals):
- Main documentation: %s/README.md
- API reference: %s/API.md
- Architecture: %s/ARCHITECTURE.md
- Tutorial: %s/TUTORIAL.md

When working on Koda topics, read the docs and follow cross-references before implementing.`, docsPath, docsPath, docsPath, docsPath)
}

func (c *Composer) contextSection() string {
	lines := []string{"# Project Context", "", "Project-specific instructions and guidelines:", ""}
	for _, cf := range c.Options.ContextFiles {
		lines = append(lines, fmt.Sprintf("## %s", cf.Path), "", cf.Content, "")
	}
	return strings.Join(lines, "\n")
}

func (c *Composer) skillsSection() string {
	lines := []string{"# Skills", "", "When relevant, follow these skill instructions:", ""}
	for _, s := range c.Options.Skills {
		lines = append(lines, fmt.Sprintf("## %s", s.Name), "", fmt.Sprintf("Use when: %s", s.Description), "", s.Content, "")
	}
	return strings.Join(lines, "\n")
}

func (c *Composer) environmentSection() string {
	return fmt.Sprintf("Current date and time: %s\nCurrent working directory: %s", c.formattedDatetime(), c.cwd())
}

func (c *Composer) formattedDatetime() string {
	return c.now().Format("Monday, January 2, 2006 at 03:04:05 PM MST")
}

func (c *Composer) cwd() string {
	if c.Options.Cwd != "" {
		return c.Options.Cwd
	}
	return "."
}

func containsTool(tools []string, name string) bool {
	for _, t := range tools {
		if t == name {
			return true
		}
	}
	return false
}

// ComposeUserPrompt builds the per-iteration user prompt: the task
// description unchanged on the first iteration, with a hint about prior
// failed attempts appended from the second iteration onward (spec §4.6).
func ComposeUserPrompt(task string, iteration int) string {
	if iteration < 2 {
		return task
	}
	return fmt.Sprintf("%s\n\nNote: this is iteration %d, previous attempts had issues.", task, iteration)
}
