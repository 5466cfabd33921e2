package server

import (
	"encoding/json"
	"net/http"

	"github.com/agentgate/agentgate/internal/hook"
	"github.com/agentgate/agentgate/internal/permission"
)

// CheckBashRequest asks whether a shell command may run.
type CheckBashRequest struct {
	SessionKey  string `json:"sessionKey,omitempty"`
	SessionName string `json:"sessionName,omitempty"`
	Command     string `json:"command"`
}

// CheckToolRequest asks whether a tool may be invoked.
type CheckToolRequest struct {
	SessionKey string `json:"sessionKey,omitempty"`
	Tool       string `json:"tool"`
}

// CheckResponse is the decision payload for the /check endpoints.
type CheckResponse struct {
	Allowed            bool     `json:"allowed"`
	Reason             string   `json:"reason,omitempty"`
	BlockedExecutables []string `json:"blockedExecutables,omitempty"`
}

// health responds with a liveness marker.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// checkBash decides a shell command for the calling agent.
func (s *Server) checkBash(w http.ResponseWriter, r *http.Request) {
	var req CheckBashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Command == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "command is required")
		return
	}

	scope := permission.ScopeContext{
		AgentID:     r.Header.Get(agentHeader),
		SessionKey:  req.SessionKey,
		SessionName: req.SessionName,
	}
	decision, err := s.enforcer.CheckBash(r.Context(), scope, req.Command)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, CheckResponse{
		Allowed:            decision.Allowed,
		Reason:             decision.Reason,
		BlockedExecutables: decision.BlockedExecutables,
	})
}

// checkTool decides a tool invocation for the calling agent.
func (s *Server) checkTool(w http.ResponseWriter, r *http.Request) {
	var req CheckToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Tool == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "tool is required")
		return
	}

	scope := permission.ScopeContext{
		AgentID:    r.Header.Get(agentHeader),
		SessionKey: req.SessionKey,
	}
	decision, err := s.enforcer.CheckToolUse(r.Context(), scope, req.Tool)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, CheckResponse{
		Allowed: decision.Allowed,
		Reason:  decision.Reason,
	})
}

// hookDecision evaluates a pre-tool-use hook payload. The request body
// and the response are the hook wire contract; the agent id rides the
// same header as the /check endpoints.
func (s *Server) hookDecision(w http.ResponseWriter, r *http.Request) {
	h := hook.NewHandler(s.enforcer, r.Header.Get(agentHeader))
	w.Header().Set("Content-Type", "application/json")
	if err := h.Run(r.Context(), r.Body, w); err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
	}
}
