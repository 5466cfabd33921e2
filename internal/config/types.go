// Package config loads the per-agent authorization policy and process settings.
package config

// BashMode selects how the legacy per-agent bash policy is enforced.
type BashMode string

const (
	// BashBypass disables bash enforcement for the agent entirely.
	BashBypass BashMode = "bypass"
	// BashAllowlist denies any executable absent from the configured list.
	BashAllowlist BashMode = "allowlist"
	// BashDenylist denies any executable present in the configured list.
	BashDenylist BashMode = "denylist"
)

// BashConfig is the legacy per-agent bash policy. It coexists with the
// relation store as an alternate enforcement path; the relation-based
// check takes precedence when the agent has executable relations.
type BashConfig struct {
	Mode      BashMode `json:"mode"`
	Allowlist []string `json:"allowlist,omitempty"`
	Denylist  []string `json:"denylist,omitempty"`
}

// AgentConfig is the authorization policy for a single agent. Config sync
// translates these fields into relation tuples (source=config).
type AgentConfig struct {
	// Tools the agent may invoke ("use" over tool:<name>). Supports
	// trailing-* prefix patterns and the "*" wildcard.
	Tools []string `json:"tools,omitempty"`
	// Executables the agent may run ("execute" over executable:<name>).
	Executables []string `json:"executables,omitempty"`
	// Sessions the agent may read ("access" over session:<pattern>).
	Sessions []string `json:"sessions,omitempty"`
	// SessionsWrite lists sessions the agent may modify ("modify").
	SessionsWrite []string `json:"sessionsWrite,omitempty"`
	// Contacts the agent may read ("read" over contact:<pattern>).
	Contacts []string `json:"contacts,omitempty"`
	// ContactsWrite lists contacts the agent may mutate ("write").
	ContactsWrite []string `json:"contactsWrite,omitempty"`
	// Agents visible to this agent ("see" over agent:<id>).
	Agents []string `json:"agents,omitempty"`
	// CommandGroups of administrative CLI commands the agent may run
	// ("execute" over group:<name> or group:<name>_<sub>).
	CommandGroups []string `json:"commandGroups,omitempty"`
	// Bash is the legacy bash policy for this agent.
	Bash *BashConfig `json:"bash,omitempty"`
}

// Config is the root policy document.
type Config struct {
	// SuperAgent receives "admin" over system:* on sync.
	SuperAgent string                 `json:"superAgent,omitempty"`
	Agents     map[string]AgentConfig `json:"agents,omitempty"`
}

// AgentBash returns the legacy bash policy for an agent, or nil when the
// agent is unknown or carries no bash policy.
func (c *Config) AgentBash(agentID string) *BashConfig {
	if c == nil {
		return nil
	}
	agent, ok := c.Agents[agentID]
	if !ok {
		return nil
	}
	return agent.Bash
}
