package permission

import (
	"fmt"
	"strings"
)

// Decision is the single decision contract exposed to callers. A denial
// always carries a human-readable reason; bash denials additionally name
// every blocked executable.
type Decision struct {
	Allowed            bool     `json:"allowed"`
	Reason             string   `json:"reason,omitempty"`
	BlockedExecutables []string `json:"blockedExecutables,omitempty"`
}

// Allow returns an allowing decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a denying decision with the given reason.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// DeniedError is returned where callers need a denial as an error, such
// as the CLI dispatcher refusing to run a command body.
type DeniedError struct {
	AgentID string
	Denied  string // "<objectType>:<objectId>"
	Message string
}

func (e *DeniedError) Error() string {
	return e.Message
}

// IsDeniedError checks if an error is a permission denial.
func IsDeniedError(err error) bool {
	_, ok := err.(*DeniedError)
	return ok
}

// blockedExec pairs an executable with the specific cause it was blocked.
type blockedExec struct {
	name  string
	cause string
}

// denyExecutables aggregates every blocked executable and its cause into
// one decision, never just the first.
func denyExecutables(blocked []blockedExec) Decision {
	names := make([]string, 0, len(blocked))
	parts := make([]string, 0, len(blocked))
	for _, b := range blocked {
		names = append(names, b.name)
		parts = append(parts, fmt.Sprintf("%s (%s)", b.name, b.cause))
	}
	return Decision{
		Allowed:            false,
		Reason:             "blocked executables: " + strings.Join(parts, "; "),
		BlockedExecutables: names,
	}
}
