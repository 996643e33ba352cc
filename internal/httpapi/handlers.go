package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/koda-agent/koda/internal/agentrole"
	"github.com/koda-agent/koda/internal/controller"
	"github.com/koda-agent/koda/internal/kerr"
	"github.com/koda-agent/koda/internal/prompt"
	"github.com/koda-agent/koda/internal/tree"
	"github.com/koda-agent/koda/pkg/ktypes"
)

// candidateTools is the fixed universe internal/toolio adapts; a role's
// SelectedTools filters this list down per spec §4.6's "tools in the
// selected set."
var candidateTools = []string{"read", "write", "edit", "bash"}

// sessionSummary is the GET /sessions/{id} response body.
type sessionSummary struct {
	ID         string   `json:"id"`
	Cursor     string   `json:"cursor"`
	NodeCount  int      `json:"node_count"`
	Extensions []string `json:"extensions"`
}

// getSession handles GET /sessions/{id}.
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r, chi.URLParam(r, "sessionID"))
	if err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionSummary{
		ID:         sess.ID(),
		Cursor:     sess.CurrentNode().ID,
		NodeCount:  len(sess.Tree().Nodes),
		Extensions: sess.ListExtensions(),
	})
}

// getSessionTree handles GET /sessions/{id}/tree.
func (s *Server) getSessionTree(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r, chi.URLParam(r, "sessionID"))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeText(w, http.StatusOK, sess.Visualize())
}

// createTaskRequest is the POST /tasks body.
type createTaskRequest struct {
	SessionID string      `json:"session_id"`
	Task      ktypes.Task `json:"task"`
	// Role selects which internal/agentrole.AgentRole's tool set gates the
	// composer's tool section for this task; empty uses the server's
	// composer, or the "coder" role when the server has none.
	Role string `json:"role,omitempty"`
}

// createTask handles POST /tasks: submits task against session_id and runs
// the controller to completion synchronously, per SPEC_FULL.md §6.
func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "session_id is required")
		return
	}
	if req.Task.Description == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "task.description is required")
		return
	}

	sess, err := s.loadSession(r, req.SessionID)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	composer := s.composer
	if roleName := req.Role; roleName != "" || composer == nil {
		if roleName == "" {
			roleName = "coder"
		}
		role, ok := agentrole.BuiltInRoles()[roleName]
		if !ok {
			writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "unknown role: "+roleName)
			return
		}
		composer = prompt.New(prompt.Options{SelectedTools: role.SelectedTools(candidateTools)})
	}

	ctrl := controller.New(sess, s.complete, s.reflect, composer, s.ctrlCfg)
	result := ctrl.Run(r.Context(), req.Task)

	if err := sess.Save(r.Context(), s.manager.Store()); err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, "task completed but session save failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) loadSession(r *http.Request, sessionID string) (*tree.Session, error) {
	return s.manager.LoadSession(r.Context(), sessionID)
}

func writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, kerr.ErrUnknownNode) || errors.Is(err, kerr.ErrPersistenceFailed) {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
}
