// Package permission is the command-safety and scope-enforcement layer
// of AgentGate. Every privileged action an agent attempts — running a
// shell command, invoking a tool, reading another session, touching a
// contact, or executing an administrative CLI command — is decided here.
//
// # Components
//
// ## Dangerous-Pattern Detector
//
// CheckDangerousPatterns classifies raw command text before any parsing.
// It detects command and backtick substitution, process substitution,
// here-documents, and pipelines feeding a shell or a general-purpose
// interpreter. A hit is final: no executable-level check runs afterward.
//
//	res := CheckDangerousPatterns("echo $(whoami)")
//	// res.Safe == false, res.Reason mentions command substitution
//
// ## Command Parser
//
// ParseBashCommand decomposes a command line into the bare names of the
// executables it would run, walking the bash grammar so quoting and
// operators are handled exactly:
//
//	execs, err := ParseBashCommand("git status && npm install")
//	// execs == []string{"git", "npm"}
//
// sudo is never transparently skipped — both sudo and the wrapped
// command are recorded. Any parse failure must be treated as a denial
// by callers.
//
// ## Bash Permission Checker
//
// CheckBashPermission applies the legacy per-agent allow/deny-list
// policy. Executables in the unconditional block set (shell
// reinvocation, eval, exec, source) are denied regardless of any
// configuration; mode bypass opts an agent out of enforcement entirely.
//
// ## Scope Enforcer
//
// Enforcer combines the detector and parser for shell commands and
// consults the authorization engine for everything else. Every check is
// a pure context-in/decision-out function over a ScopeContext rebuilt
// per invocation; no state is carried between checks, so a revoked
// grant takes effect on the very next check. Unrecognized scope
// categories are denied, not ignored.
//
// # Denial audits
//
// Each denial emits an authz.denied event on the audit bus after the
// decision is finalized. Emission is fire-and-forget and never gates or
// delays the decision.
package permission
