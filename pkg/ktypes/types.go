// Package ktypes holds the data model shared across the core: the Tree
// Session Store, the Extension Engine, the Validator/Reflector pipeline, and
// the Iteration Controller all operate on these same types rather than each
// declaring their own copies (the original Python source duplicates
// ValidationReport/CodeArtifact/ExecutionResult between validator.py and
// reflector.py; this package exists precisely to avoid that).
package ktypes

import "time"

// NodeStatus is the lifecycle state of a SessionNode. A node transitions
// ACTIVE -> {SUCCESS, FAILED, MERGED, ABANDONED} exactly once.
type NodeStatus string

const (
	StatusActive    NodeStatus = "active"
	StatusSuccess   NodeStatus = "success"
	StatusFailed    NodeStatus = "failed"
	StatusMerged    NodeStatus = "merged"
	StatusAbandoned NodeStatus = "abandoned"
)

// Terminal reports whether the status is one from which a node must not be
// re-checked-out (spec §3 invariant iv).
func (s NodeStatus) Terminal() bool {
	return s == StatusMerged || s == StatusAbandoned
}

// Sigil is the single uppercase letter used by the tree visualization.
func (s NodeStatus) Sigil() string {
	if s == "" {
		return "?"
	}
	return string(s[0]-'a'+'A')
}

// SessionNode is one snapshot in a TreeSession's history.
type SessionNode struct {
	ID          string         `json:"id"`
	ParentID    *string        `json:"parent_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Artifacts   map[string]string `json:"artifacts"`
	Messages    []map[string]any  `json:"messages"`
	Status      NodeStatus     `json:"status"`
	CreatedAt   string         `json:"created_at"`
	CompletedAt *string        `json:"completed_at"`
	Metadata    map[string]any `json:"metadata"`
	Children    []string       `json:"children"`
}

// CloneForBranch returns a new node parented at n, with artifacts and
// messages copied by value (spec §4.2: "clones the parent's artifacts and
// message log by value, not reference").
func (n *SessionNode) CloneForBranch(newID, name, description string) *SessionNode {
	parent := n.ID
	artifacts := make(map[string]string, len(n.Artifacts))
	for k, v := range n.Artifacts {
		artifacts[k] = v
	}
	messages := make([]map[string]any, len(n.Messages))
	copy(messages, n.Messages)
	return &SessionNode{
		ID:          newID,
		ParentID:    &parent,
		Name:        name,
		Description: description,
		Artifacts:   artifacts,
		Messages:    messages,
		Status:      StatusActive,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Metadata:    map[string]any{},
		Children:    []string{},
	}
}

// TreeSession is the git-like versioned node graph persisted per workspace.
//
// JSON field names follow spec §6's literal session-file example
// (root_node_id / current_node_id), which is the format test suites assert
// against; §4.2's prose uses the shorter root_id/current_id spelling for the
// same fields — this module treats §6's wire example as authoritative.
type TreeSession struct {
	SessionID     string                  `json:"session_id"`
	RootNodeID    string                  `json:"root_node_id"`
	CurrentNodeID string                  `json:"current_node_id"`
	Nodes         map[string]*SessionNode `json:"nodes"`
	Extensions    map[string]string       `json:"extensions"`
	CreatedAt     string                  `json:"created_at"`
}

// ExtensionInfo describes a dynamically synthesized tool extension.
type ExtensionInfo struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Source       string   `json:"source"`
	Version      string   `json:"version"`
	Author       string   `json:"author"`
	Dependencies []string `json:"dependencies"`
	// GenerationID opaquely identifies this particular generate/improve pass,
	// distinct from Version (a human-facing semver the caller can bump or
	// pin). Lexically sortable so a history of a name's generations orders
	// itself by creation time.
	GenerationID string `json:"generation_id"`
}

// CheckOutcome is the result kind of a single Static Validator check.
type CheckOutcome string

const (
	OutcomeInfo    CheckOutcome = "info"
	OutcomeWarning CheckOutcome = "warning"
	OutcomeError   CheckOutcome = "error"
	OutcomePass    CheckOutcome = "pass"
)

// Check is one named outcome produced by a Static Validator pass.
type Check struct {
	Name     string         `json:"name"`
	Outcome  CheckOutcome   `json:"outcome"`
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ValidationReport is the Static Validator's output for one artifact.
type ValidationReport struct {
	Passed   bool     `json:"passed"`
	Checks   []Check  `json:"checks"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Score    float64  `json:"score"`
}

// ReflectionResult is the Reflective Reviewer's output.
type ReflectionResult struct {
	HasIssues    bool     `json:"has_issues"`
	Issues       []string `json:"issues"`
	Suggestions  []string `json:"suggestions"`
	Confidence   float64  `json:"confidence"`
	ImprovedCode *string  `json:"improved_code,omitempty"`
}

// Task is the immutable unit of work submitted to the Iteration Controller.
type Task struct {
	Description   string            `json:"description"`
	Requirements  []string          `json:"requirements"`
	Constraints   []string          `json:"constraints"`
	Context       map[string]string `json:"context"`
	MaxIterations int               `json:"max_iterations"`
}

// TaskResult is the Iteration Controller's public, always-returned result.
type TaskResult struct {
	Success         bool              `json:"success"`
	Source          string            `json:"source"`
	Iterations      int               `json:"iterations"`
	ValidationScore float64           `json:"validation_score"`
	Reflection      *ReflectionResult `json:"reflection,omitempty"`
	NodeID          string            `json:"node_id"`
	SessionID       string            `json:"session_id"`
	Error           string            `json:"error,omitempty"`
}

// TruncatedBy names which end of the text a TruncationResult was produced
// from.
type TruncatedBy string

const (
	TruncatedHead TruncatedBy = "head"
	TruncatedTail TruncatedBy = "tail"
)

// TruncationResult is the Content Truncator's output.
type TruncationResult struct {
	Content               string      `json:"content"`
	Truncated             bool        `json:"truncated"`
	TruncatedBy           TruncatedBy `json:"truncated_by,omitempty"`
	TotalLines            int         `json:"total_lines"`
	OutputLines           int         `json:"output_lines"`
	TotalBytes            int         `json:"total_bytes"`
	OutputBytes           int         `json:"output_bytes"`
	NextOffset            int         `json:"next_offset"`
	FirstLineExceedsLimit bool        `json:"first_line_exceeds_limit"`
	LastLinePartial       bool        `json:"last_line_partial"`
}

// Message is one entry of a chat-style conversation, used by the Chat variant
// of the ModelAdapter sum type (spec §9: "Model adapter as structural type").
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
