package permission

import (
	"context"
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/agentgate/agentgate/internal/authz"
	"github.com/agentgate/agentgate/internal/config"
	"github.com/agentgate/agentgate/internal/event"
	"github.com/agentgate/agentgate/internal/logging"
	"github.com/agentgate/agentgate/internal/relation"
)

// ScopeContext is the caller identity snapshot for one check. It is
// reconstructed from the ambient execution context on every check and
// never cached across calls. An empty AgentID is the trusted operator.
type ScopeContext struct {
	AgentID     string `json:"agentId,omitempty"`
	SessionKey  string `json:"sessionKey,omitempty"`
	SessionName string `json:"sessionName,omitempty"`
}

// ScopeTag names a privileged-action category.
type ScopeTag string

const (
	ScopeSessionAccess   ScopeTag = "session.access"
	ScopeSessionModify   ScopeTag = "session.modify"
	ScopeContactRead     ScopeTag = "contact.read"
	ScopeContactWrite    ScopeTag = "contact.write"
	ScopeAgentVisibility ScopeTag = "agent.see"
	ScopeToolUse         ScopeTag = "tool.use"
)

// Enforcer is the orchestration layer combining the dangerous-pattern
// detector and command parser for shell commands, and the authorization
// engine for every other privileged action.
type Enforcer struct {
	engine *authz.Engine
	bus    *event.Bus

	mu  sync.RWMutex
	cfg *config.Config
}

// NewEnforcer creates an enforcer. A nil bus publishes denial audits to
// the global event bus.
func NewEnforcer(engine *authz.Engine, cfg *config.Config, bus *event.Bus) *Enforcer {
	return &Enforcer{engine: engine, cfg: cfg, bus: bus}
}

// UpdateConfig swaps the policy configuration, used by config
// hot-reload. In-flight checks keep the config they started with.
func (e *Enforcer) UpdateConfig(cfg *config.Config) {
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
}

func (e *Enforcer) agentBash(agentID string) *config.BashConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg.AgentBash(agentID)
}

// audit emits a denial event. The decision is already finalized when
// this is dispatched; emission is fire-and-forget and never gates the
// decision.
func (e *Enforcer) audit(agentID, objectType, objectID, reason, command string) {
	ev := event.Event{
		Type: event.AuthzDenied,
		Data: event.AuthzDeniedData{
			ID:      ulid.Make().String(),
			AgentID: agentID,
			Denied:  objectType + ":" + objectID,
			Reason:  reason,
			Command: command,
		},
	}
	if e.bus != nil {
		e.bus.Publish(ev)
		return
	}
	event.Publish(ev)
}

// deny finalizes a denial decision and dispatches its audit.
func (e *Enforcer) deny(scope ScopeContext, objectType, objectID, reason, command string) Decision {
	d := Deny(reason)
	e.audit(scope.AgentID, objectType, objectID, reason, command)
	return d
}

// CheckBash decides whether the agent may run a shell command.
//
// Precedence between the two bash-enforcement paths: the relation-based
// check wins whenever the agent holds at least one execute-over-
// executable tuple; the legacy per-agent config is a fallback only when
// no such relations exist. The dangerous-pattern detector and the
// unconditional block set apply on the relation path regardless of any
// grant.
func (e *Enforcer) CheckBash(ctx context.Context, scope ScopeContext, command string) (Decision, error) {
	if scope.AgentID == "" {
		return Allow(), nil
	}

	hasGrants, err := e.engine.HasAnyExecutableGrant(ctx, scope.AgentID)
	if err != nil {
		return Deny("relation lookup failed"), err
	}
	if !hasGrants {
		d := CheckBashPermission(command, e.agentBash(scope.AgentID))
		if !d.Allowed {
			e.audit(scope.AgentID, relation.TypeExecutable, "bash", d.Reason, command)
		}
		return d, nil
	}

	if res := CheckDangerousPatterns(command); !res.Safe {
		return e.deny(scope, relation.TypeExecutable, "bash", res.Reason, command), nil
	}

	executables, err := ParseBashCommand(command)
	if err != nil {
		return e.deny(scope, relation.TypeExecutable, "bash",
			"command could not be safely parsed: "+err.Error(), command), nil
	}

	var blocked []blockedExec
	for _, exe := range executables {
		if cause := BlockedCause(exe); cause != "" {
			blocked = append(blocked, blockedExec{name: exe, cause: cause})
			continue
		}
		ok, err := e.engine.AgentCan(ctx, scope.AgentID, relation.RelExecute, relation.TypeExecutable, exe)
		if err != nil {
			return Deny("relation lookup failed"), err
		}
		if !ok {
			blocked = append(blocked, blockedExec{name: exe, cause: "no execute grant"})
		}
	}

	if len(blocked) > 0 {
		d := denyExecutables(blocked)
		e.audit(scope.AgentID, relation.TypeExecutable, "bash", d.Reason, command)
		return d, nil
	}
	return Allow(), nil
}

// CheckToolUse decides whether the agent may invoke a tool.
func (e *Enforcer) CheckToolUse(ctx context.Context, scope ScopeContext, toolName string) (Decision, error) {
	ok, err := e.engine.AgentCan(ctx, scope.AgentID, relation.RelUse, relation.TypeTool, toolName)
	if err != nil {
		return Deny("relation lookup failed"), err
	}
	if !ok {
		reason := fmt.Sprintf("agent %q has no use grant for tool %q", scope.AgentID, toolName)
		return e.deny(scope, relation.TypeTool, toolName, reason, ""), nil
	}
	return Allow(), nil
}

// CheckSessionAccess decides whether the agent may read a session. An
// agent always reaches its own session.
func (e *Enforcer) CheckSessionAccess(ctx context.Context, scope ScopeContext, sessionKey string) (Decision, error) {
	return e.checkSession(ctx, scope, sessionKey, relation.RelAccess)
}

// CheckSessionModify decides whether the agent may modify a session.
func (e *Enforcer) CheckSessionModify(ctx context.Context, scope ScopeContext, sessionKey string) (Decision, error) {
	return e.checkSession(ctx, scope, sessionKey, relation.RelModify)
}

func (e *Enforcer) checkSession(ctx context.Context, scope ScopeContext, sessionKey, rel string) (Decision, error) {
	if scope.AgentID == "" {
		return Allow(), nil
	}
	// Self-access shortcut from the scope context.
	if sessionKey != "" && (sessionKey == scope.SessionKey || sessionKey == scope.SessionName) {
		return Allow(), nil
	}
	ok, err := e.engine.AgentCan(ctx, scope.AgentID, rel, relation.TypeSession, sessionKey)
	if err != nil {
		return Deny("relation lookup failed"), err
	}
	if !ok {
		reason := fmt.Sprintf("agent %q has no %s grant for session %q", scope.AgentID, rel, sessionKey)
		return e.deny(scope, relation.TypeSession, sessionKey, reason, ""), nil
	}
	return Allow(), nil
}

// CheckContactRead decides contact visibility.
func (e *Enforcer) CheckContactRead(ctx context.Context, scope ScopeContext, contactID string) (Decision, error) {
	return e.checkContact(ctx, scope, contactID, relation.RelRead)
}

// CheckContactWrite decides contact mutation rights.
func (e *Enforcer) CheckContactWrite(ctx context.Context, scope ScopeContext, contactID string) (Decision, error) {
	return e.checkContact(ctx, scope, contactID, relation.RelWrite)
}

func (e *Enforcer) checkContact(ctx context.Context, scope ScopeContext, contactID, rel string) (Decision, error) {
	ok, err := e.engine.AgentCan(ctx, scope.AgentID, rel, relation.TypeContact, contactID)
	if err != nil {
		return Deny("relation lookup failed"), err
	}
	if !ok {
		reason := fmt.Sprintf("agent %q has no %s grant for contact %q", scope.AgentID, rel, contactID)
		return e.deny(scope, relation.TypeContact, contactID, reason, ""), nil
	}
	return Allow(), nil
}

// CheckAgentVisibility decides whether the agent may see another agent.
func (e *Enforcer) CheckAgentVisibility(ctx context.Context, scope ScopeContext, otherAgentID string) (Decision, error) {
	if scope.AgentID == "" || scope.AgentID == otherAgentID {
		return Allow(), nil
	}
	ok, err := e.engine.AgentCan(ctx, scope.AgentID, relation.RelSee, relation.TypeAgent, otherAgentID)
	if err != nil {
		return Deny("relation lookup failed"), err
	}
	if !ok {
		reason := fmt.Sprintf("agent %q may not see agent %q", scope.AgentID, otherAgentID)
		return e.deny(scope, relation.TypeAgent, otherAgentID, reason, ""), nil
	}
	return Allow(), nil
}

// CheckOwnedResource decides access to an ownership-scoped resource
// (cron jobs, triggers, outbound campaigns). Access requires exact
// agent-id ownership or superadmin — never pattern matching.
func (e *Enforcer) CheckOwnedResource(ctx context.Context, scope ScopeContext, kind, ownerID string) (Decision, error) {
	if scope.AgentID == "" || scope.AgentID == ownerID {
		return Allow(), nil
	}
	super, err := e.engine.IsSuperadmin(ctx, scope.AgentID)
	if err != nil {
		return Deny("relation lookup failed"), err
	}
	if !super {
		reason := fmt.Sprintf("agent %q does not own %s resource of %q", scope.AgentID, kind, ownerID)
		return e.deny(scope, kind, ownerID, reason, ""), nil
	}
	return Allow(), nil
}

// CheckCommandScope gates an administrative CLI command. The check is
// execute over group:<group>, with a finer group:<group>_<sub> tuple
// consulted when the coarse check fails. The dispatcher must surface
// errorMessage verbatim on denial and must not run the command body.
// Any lookup error is reported as a denial.
func (e *Enforcer) CheckCommandScope(ctx context.Context, agentID, group, sub string) (allowed bool, errorMessage string) {
	ok, err := e.engine.AgentCan(ctx, agentID, relation.RelExecute, relation.TypeGroup, group)
	if err != nil {
		logging.Component("enforcer").Error().Err(err).Str("group", group).Msg("command scope lookup failed")
		return false, "authorization check failed; command denied"
	}
	if !ok && sub != "" {
		ok, err = e.engine.AgentCan(ctx, agentID, relation.RelExecute, relation.TypeGroup, group+"_"+sub)
		if err != nil {
			logging.Component("enforcer").Error().Err(err).Str("group", group).Msg("command scope lookup failed")
			return false, "authorization check failed; command denied"
		}
	}
	if !ok {
		msg := fmt.Sprintf("agent %q is not permitted to run %s commands", agentID, group)
		e.audit(agentID, relation.TypeGroup, group, msg, "")
		return false, msg
	}
	return true, ""
}

// CheckScope dispatches a check by scope tag. An unrecognized tag is a
// hard deny: a privileged-action category not yet wired into the
// enforcer must default to denial, not silent allowance. It is logged as
// a configuration defect rather than a security event.
func (e *Enforcer) CheckScope(ctx context.Context, tag ScopeTag, scope ScopeContext, target string) (Decision, error) {
	switch tag {
	case ScopeSessionAccess:
		return e.CheckSessionAccess(ctx, scope, target)
	case ScopeSessionModify:
		return e.CheckSessionModify(ctx, scope, target)
	case ScopeContactRead:
		return e.CheckContactRead(ctx, scope, target)
	case ScopeContactWrite:
		return e.CheckContactWrite(ctx, scope, target)
	case ScopeAgentVisibility:
		return e.CheckAgentVisibility(ctx, scope, target)
	case ScopeToolUse:
		return e.CheckToolUse(ctx, scope, target)
	default:
		logging.Component("enforcer").Error().
			Str("scope", string(tag)).
			Msg("unrecognized scope category; denying")
		return Deny(fmt.Sprintf("unrecognized scope category %q", tag)), nil
	}
}
