package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/koda-agent/koda/internal/controller"
	"github.com/koda-agent/koda/internal/httpapi"
	"github.com/koda-agent/koda/internal/tree"
	"github.com/koda-agent/koda/pkg/ktypes"
)

const goodSource = `
package main

import "fmt"

// greet prints a friendly greeting.
func greet(name string) error {
	if name == "" {
		err := fmt.Errorf("empty name")
		if err != nil {
			return err
		}
	}
	fmt.Println("hello", name)
	return nil
}
`

func alwaysReturns(source string) controller.Completer {
	return func(ctx context.Context, prompt string) (string, error) {
		return source, nil
	}
}

func newTestServer(t *testing.T, complete controller.Completer) (*httpapi.Server, *tree.Manager, string) {
	t.Helper()
	manager := tree.NewManager(t.TempDir())
	sess := manager.CreateSession("test")
	require.NoError(t, manager.SaveCurrent(context.Background()))

	srv := httpapi.New(httpapi.DefaultConfig(), manager, complete, nil, nil, controller.Config{})
	return srv, manager, sess.ID()
}

func TestGetSession_ReturnsSummary(t *testing.T) {
	srv, _, sessionID := newTestServer(t, alwaysReturns(goodSource))

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+sessionID, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Equal(t, sessionID, body["id"])
	require.Equal(t, float64(1), body["node_count"])
}

func TestGetSession_UnknownIDReturns404(t *testing.T) {
	srv, _, _ := newTestServer(t, alwaysReturns(goodSource))

	req := httptest.NewRequest(http.MethodGet, "/sessions/does-not-exist", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSessionTree_ReturnsPlainText(t *testing.T) {
	srv, _, sessionID := newTestServer(t, alwaysReturns(goodSource))

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+sessionID+"/tree", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	require.NotEmpty(t, w.Body.String())
}

func TestCreateTask_RunsControllerAndReturnsResult(t *testing.T) {
	srv, manager, sessionID := newTestServer(t, alwaysReturns(goodSource))

	body, _ := json.Marshal(map[string]any{
		"session_id": sessionID,
		"task":       ktypes.Task{Description: "write a greeter", MaxIterations: 2},
	})
	req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result ktypes.TaskResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	require.True(t, result.Success)

	reloaded, err := manager.LoadSession(context.Background(), sessionID)
	require.NoError(t, err)
	node, err := reloaded.Node(result.NodeID)
	require.NoError(t, err)
	require.Equal(t, ktypes.StatusSuccess, node.Status)
}

func TestCreateTask_WithUnknownRoleReturns400(t *testing.T) {
	srv, _, sessionID := newTestServer(t, alwaysReturns(goodSource))

	body, _ := json.Marshal(map[string]any{
		"session_id": sessionID,
		"task":       ktypes.Task{Description: "write something"},
		"role":       "nonexistent",
	})
	req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTask_MissingDescriptionReturns400(t *testing.T) {
	srv, _, sessionID := newTestServer(t, alwaysReturns(goodSource))

	body, _ := json.Marshal(map[string]any{"session_id": sessionID, "task": ktypes.Task{}})
	req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
