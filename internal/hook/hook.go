// Package hook implements the pre-tool-use hook boundary. A coding
// agent invokes `agentgate hook` before every tool call, feeding the
// call description on stdin; the decision comes back on stdout.
//
// The output shape is a compatibility contract with the calling agent
// and must be preserved exactly. An allow is an empty object; a deny is
//
//	{"hookSpecificOutput":{"hookEventName":"PreToolUse","permissionDecision":"deny","permissionDecisionReason":"..."}}
package hook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/agentgate/agentgate/internal/logging"
	"github.com/agentgate/agentgate/internal/permission"
)

const (
	eventPreToolUse = "PreToolUse"
	decisionDeny    = "deny"
)

// Input is the payload the calling agent writes on stdin.
type Input struct {
	SessionID string          `json:"session_id,omitempty"`
	ToolName  string          `json:"tool_name"`
	ToolInput json.RawMessage `json:"tool_input,omitempty"`
}

// Output is the hook response. A zero Output marshals to {} which the
// caller treats as an allow.
type Output struct {
	HookSpecificOutput *SpecificOutput `json:"hookSpecificOutput,omitempty"`
}

// SpecificOutput carries the deny decision.
type SpecificOutput struct {
	HookEventName            string `json:"hookEventName"`
	PermissionDecision       string `json:"permissionDecision"`
	PermissionDecisionReason string `json:"permissionDecisionReason"`
}

// bashToolNames are the tool names whose input carries a shell command.
var bashToolNames = map[string]bool{
	"bash":  true,
	"Bash":  true,
	"shell": true,
	"exec":  true,
}

// Handler evaluates hook inputs against the scope enforcer.
type Handler struct {
	enforcer *permission.Enforcer
	agentID  string
}

// NewHandler creates a hook handler acting for the given agent. An
// empty agentID is the trusted operator and every call is allowed.
func NewHandler(enforcer *permission.Enforcer, agentID string) *Handler {
	return &Handler{enforcer: enforcer, agentID: agentID}
}

// Decide evaluates one hook input. A decode or enforcement error is a
// denial with the error folded into the reason, never an allow.
func (h *Handler) Decide(ctx context.Context, in Input) Output {
	scope := permission.ScopeContext{AgentID: h.agentID, SessionKey: in.SessionID}

	var (
		decision permission.Decision
		err      error
	)
	if bashToolNames[in.ToolName] {
		command, cmdErr := commandFromToolInput(in.ToolInput)
		if cmdErr != nil {
			return deny("invalid tool input: " + cmdErr.Error())
		}
		decision, err = h.enforcer.CheckBash(ctx, scope, command)
	} else {
		decision, err = h.enforcer.CheckToolUse(ctx, scope, in.ToolName)
	}
	if err != nil {
		logging.Component("hook").Error().Err(err).Str("tool", in.ToolName).Msg("check failed")
		return deny(decision.Reason)
	}
	if !decision.Allowed {
		return deny(decision.Reason)
	}
	return Output{}
}

// Run reads one hook input from r and writes the decision to w. Any
// failure to decode the input results in a deny on stdout, not an
// error exit, so a confused caller still gets a parseable refusal.
func (h *Handler) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	var in Input
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return json.NewEncoder(w).Encode(deny("invalid hook input: " + err.Error()))
	}
	return json.NewEncoder(w).Encode(h.Decide(ctx, in))
}

func deny(reason string) Output {
	return Output{HookSpecificOutput: &SpecificOutput{
		HookEventName:            eventPreToolUse,
		PermissionDecision:       decisionDeny,
		PermissionDecisionReason: reason,
	}}
}

// commandFromToolInput pulls the shell command out of a bash tool
// input. A missing or non-string command fails closed.
func commandFromToolInput(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("missing tool input")
	}
	var payload struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", err
	}
	if payload.Command == "" {
		return "", fmt.Errorf("missing command")
	}
	return payload.Command, nil
}
