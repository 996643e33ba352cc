// Package tree implements the Tree Session Store (spec §4.2): a git-like
// versioned node graph with branch/checkout/merge/abandon semantics,
// persisted as a single JSON document per session.
//
// Grounded on original_source/koda/core/tree_session.py's TreeSession and
// SessionNode classes, with persistence mechanics (atomic write, per-file
// locking) adapted from the teacher's internal/storage/storage.go.
package tree

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/koda-agent/koda/internal/kerr"
	"github.com/koda-agent/koda/internal/storage"
	"github.com/koda-agent/koda/pkg/ktypes"
)

// NewID returns an 8-character truncation of a v4 random hex identifier, per
// spec §6.
func NewID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// Session wraps a ktypes.TreeSession with its mutating operations. The zero
// value is not usable; construct with NewSession or Load.
type Session struct {
	tree *ktypes.TreeSession
}

// NewSession creates a fresh TreeSession with a root SessionNode in ACTIVE
// state and the cursor set to the root (spec §4.2 create_session).
func NewSession(rootName string) *Session {
	now := time.Now().UTC().Format(time.RFC3339)
	rootID := NewID()
	root := &ktypes.SessionNode{
		ID:          rootID,
		ParentID:    nil,
		Name:        rootName,
		Description: "Root session",
		Artifacts:   map[string]string{},
		Messages:    []map[string]any{},
		Status:      ktypes.StatusActive,
		CreatedAt:   now,
		Metadata:    map[string]any{},
		Children:    []string{},
	}
	return &Session{
		tree: &ktypes.TreeSession{
			SessionID:     NewID(),
			RootNodeID:    rootID,
			CurrentNodeID: rootID,
			Nodes:         map[string]*ktypes.SessionNode{rootID: root},
			Extensions:    map[string]string{},
			CreatedAt:     now,
		},
	}
}

// FromTree wraps an already-constructed (e.g. freshly deserialized)
// ktypes.TreeSession.
func FromTree(t *ktypes.TreeSession) *Session { return &Session{tree: t} }

// Tree returns the underlying serializable structure.
func (s *Session) Tree() *ktypes.TreeSession { return s.tree }

func (s *Session) ID() string { return s.tree.SessionID }

// Node looks up a node by ID.
func (s *Session) Node(id string) (*ktypes.SessionNode, error) {
	n, ok := s.tree.Nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", kerr.ErrUnknownNode, id)
	}
	return n, nil
}

// CurrentNode returns the node at the cursor.
func (s *Session) CurrentNode() *ktypes.SessionNode {
	return s.tree.Nodes[s.tree.CurrentNodeID]
}

// CreateBranch clones fromNodeID's (or the cursor's) artifacts and message
// log by value into a new child node in ACTIVE status, appended to the
// parent's children. The cursor is NOT advanced (spec §4.2).
func (s *Session) CreateBranch(name, description, fromNodeID string) (*ktypes.SessionNode, error) {
	parentID := fromNodeID
	if parentID == "" {
		parentID = s.tree.CurrentNodeID
	}
	parent, ok := s.tree.Nodes[parentID]
	if !ok {
		return nil, fmt.Errorf("%w: parent %s", kerr.ErrUnknownNode, parentID)
	}

	child := parent.CloneForBranch(NewID(), name, description)
	s.tree.Nodes[child.ID] = child
	parent.Children = append(parent.Children, child.ID)
	return child, nil
}

// Checkout moves the cursor to nodeID. Spec §4.2: "No status restriction in
// principle, but callers are expected not to check out terminal nodes" --
// this is enforced as a log-and-allow, not a hard error, matching the
// original_source's checkout (which has no restriction at all) while still
// surfacing the expectation to callers via the returned bool.
func (s *Session) Checkout(nodeID string) (node *ktypes.SessionNode, wasTerminal bool, err error) {
	n, ok := s.tree.Nodes[nodeID]
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", kerr.ErrUnknownNode, nodeID)
	}
	s.tree.CurrentNodeID = nodeID
	return n, n.Status.Terminal(), nil
}

// Merge copies from.Artifacts over into.Artifacts (source overrides on key
// collision), marks from MERGED, and records merged_to in its metadata.
// into defaults to the cursor. The target's message log is untouched.
func (s *Session) Merge(fromID, intoID string) (*ktypes.SessionNode, error) {
	if intoID == "" {
		intoID = s.tree.CurrentNodeID
	}
	from, ok := s.tree.Nodes[fromID]
	if !ok {
		return nil, fmt.Errorf("%w: from %s", kerr.ErrUnknownNode, fromID)
	}
	into, ok := s.tree.Nodes[intoID]
	if !ok {
		return nil, fmt.Errorf("%w: into %s", kerr.ErrUnknownNode, intoID)
	}

	for k, v := range from.Artifacts {
		into.Artifacts[k] = v
	}
	from.Status = ktypes.StatusMerged
	if from.Metadata == nil {
		from.Metadata = map[string]any{}
	}
	from.Metadata["merged_to"] = intoID
	return into, nil
}

// Abandon marks nodeID ABANDONED. Idempotent; children are untouched.
func (s *Session) Abandon(nodeID string) error {
	n, ok := s.tree.Nodes[nodeID]
	if !ok {
		return fmt.Errorf("%w: %s", kerr.ErrUnknownNode, nodeID)
	}
	n.Status = ktypes.StatusAbandoned
	return nil
}

// RegisterExtension adds or overwrites a session-scoped extension source.
func (s *Session) RegisterExtension(name, source string) {
	s.tree.Extensions[name] = source
}

// GetExtension returns a registered extension's source, if any.
func (s *Session) GetExtension(name string) (string, bool) {
	src, ok := s.tree.Extensions[name]
	return src, ok
}

// ListExtensions returns all registered extension names.
func (s *Session) ListExtensions() []string {
	names := make([]string, 0, len(s.tree.Extensions))
	for name := range s.tree.Extensions {
		names = append(names, name)
	}
	return names
}

// GetPathToRoot returns the root-to-node path for nodeID (or the cursor if
// empty).
func (s *Session) GetPathToRoot(nodeID string) []*ktypes.SessionNode {
	id := nodeID
	if id == "" {
		id = s.tree.CurrentNodeID
	}
	var path []*ktypes.SessionNode
	for id != "" {
		n, ok := s.tree.Nodes[id]
		if !ok {
			break
		}
		path = append(path, n)
		if n.ParentID == nil {
			break
		}
		id = *n.ParentID
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// GetAllBranches returns every non-root node.
func (s *Session) GetAllBranches() []*ktypes.SessionNode {
	var out []*ktypes.SessionNode
	for _, n := range s.tree.Nodes {
		if n.ParentID != nil {
			out = append(out, n)
		}
	}
	return out
}

// Visualize renders the tree with a status sigil per node and a cursor
// marker, in the style of git log --graph (spec §4.2 get_tree_visualization,
// grounded on tree_session.py's print_node).
func (s *Session) Visualize() string {
	var lines []string

	root, ok := s.tree.Nodes[s.tree.RootNodeID]
	if !ok {
		return ""
	}
	lines = append(lines, fmt.Sprintf("[%s] %s", root.Status.Sigil(), root.Name))

	var walk func(nodeID, prefix string, isLast bool)
	walk = func(nodeID, prefix string, isLast bool) {
		n, ok := s.tree.Nodes[nodeID]
		if !ok {
			return
		}
		marker := " "
		if nodeID == s.tree.CurrentNodeID {
			marker = "*"
		}
		connector := "├── "
		if isLast {
			connector = "└── "
		}
		desc := n.Description
		if len(desc) > 30 {
			desc = desc[:30]
		}
		lines = append(lines, fmt.Sprintf("%s%s%s[%s] %s: %s", prefix, marker, connector, n.Status.Sigil(), n.Name, desc))

		childPrefix := prefix + "│   "
		if isLast {
			childPrefix = prefix + "    "
		}
		for i, childID := range n.Children {
			walk(childID, childPrefix, i == len(n.Children)-1)
		}
	}

	for i, childID := range root.Children {
		walk(childID, "", i == len(root.Children)-1)
	}

	return strings.Join(lines, "\n")
}

// Save persists the session as a single JSON document under store, keyed by
// session ID.
func (s *Session) Save(ctx context.Context, store *storage.Storage) error {
	if err := store.Put(ctx, s.tree.SessionID, s.tree); err != nil {
		return fmt.Errorf("%w: %v", kerr.ErrPersistenceFailed, err)
	}
	return nil
}

// LoadSession loads a session by ID from store.
func LoadSession(ctx context.Context, store *storage.Storage, sessionID string) (*Session, error) {
	var t ktypes.TreeSession
	if err := store.Get(ctx, sessionID, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", kerr.ErrPersistenceFailed, err)
	}
	return &Session{tree: &t}, nil
}
