package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgate/agentgate/internal/authz"
	"github.com/agentgate/agentgate/internal/config"
	"github.com/agentgate/agentgate/internal/event"
	"github.com/agentgate/agentgate/internal/permission"
	"github.com/agentgate/agentgate/internal/relation"
)

func newTestServer(t *testing.T, appConfig *config.Config) (*Server, *relation.Store) {
	t.Helper()
	store, err := relation.Open(filepath.Join(t.TempDir(), "relations.db"))
	require.NoError(t, err)

	bus := event.NewBus()
	t.Cleanup(func() { bus.Close() })

	enforcer := permission.NewEnforcer(authz.NewEngine(store), appConfig, bus)
	return New(DefaultConfig(), appConfig, store, enforcer, bus), store
}

func doJSON(t *testing.T, srv *Server, method, path, agentID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if agentID != "" {
		req.Header.Set(agentHeader, agentID)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCheckBashEndpoint(t *testing.T) {
	srv, store := newTestServer(t, nil)
	require.NoError(t, store.Grant(context.Background(), relation.Ref{
		SubjectType: relation.TypeAgent,
		SubjectID:   "a1",
		Relation:    relation.RelExecute,
		ObjectType:  relation.TypeExecutable,
		ObjectID:    "git",
	}, relation.SourceManual))

	rec := doJSON(t, srv, http.MethodPost, "/check/bash", "a1", `{"command":"git status"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp CheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Allowed)

	rec = doJSON(t, srv, http.MethodPost, "/check/bash", "a1", `{"command":"npm install"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Allowed)
	assert.Equal(t, []string{"npm"}, resp.BlockedExecutables)
}

func TestCheckBashEndpointValidation(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/check/bash", "a1", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/check/bash", "a1", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckToolEndpoint(t *testing.T) {
	srv, store := newTestServer(t, nil)
	require.NoError(t, store.Grant(context.Background(), relation.Ref{
		SubjectType: relation.TypeAgent,
		SubjectID:   "a1",
		Relation:    relation.RelUse,
		ObjectType:  relation.TypeTool,
		ObjectID:    "search",
	}, relation.SourceManual))

	rec := doJSON(t, srv, http.MethodPost, "/check/tool", "a1", `{"tool":"search"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp CheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Allowed)

	rec = doJSON(t, srv, http.MethodPost, "/check/tool", "a1", `{"tool":"browser"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Allowed)
	assert.Contains(t, resp.Reason, "browser")
}

func TestHookEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/hook", "a1",
		`{"tool_name":"browser","tool_input":{}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"permissionDecision":"deny"`)
	assert.Contains(t, rec.Body.String(), `"hookEventName":"PreToolUse"`)

	// Trusted operator (no agent header) is always allowed.
	rec = doJSON(t, srv, http.MethodPost, "/hook", "",
		`{"tool_name":"browser","tool_input":{}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}

func TestRelationLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/relations", "",
		`{"subjectId":"a1","relation":"use","objectType":"tool","objectId":"search"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/relations?subjectId=a1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listResp struct {
		Relations []relation.Tuple `json:"relations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.Len(t, listResp.Relations, 1)
	assert.Equal(t, "search", listResp.Relations[0].ObjectID)
	assert.Equal(t, relation.SourceManual, listResp.Relations[0].Source)

	rec = doJSON(t, srv, http.MethodDelete, "/relations", "",
		`{"subjectId":"a1","relation":"use","objectType":"tool","objectId":"search"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/relations", "",
		`{"subjectId":"a1","relation":"use","objectType":"tool","objectId":"search"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGrantRejectsInvalidPattern(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/relations", "",
		`{"subjectId":"a1","relation":"use","objectType":"tool","objectId":"a*b"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_PATTERN")
}

func TestSyncEndpoint(t *testing.T) {
	cfg := &config.Config{
		SuperAgent: "boss",
		Agents: map[string]config.AgentConfig{
			"a1": {Tools: []string{"search"}},
		},
	}
	srv, store := newTestServer(t, cfg)

	rec := doJSON(t, srv, http.MethodPost, "/relations/sync", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Cleared int64 `json:"cleared"`
		Granted int   `json:"granted"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Granted)

	tuples, err := store.List(context.Background(), relation.Filter{SubjectID: "boss"})
	require.NoError(t, err)
	require.Len(t, tuples, 1)
	assert.Equal(t, relation.SourceConfig, tuples[0].Source)
}
