package permission

import (
	"slices"

	"github.com/agentgate/agentgate/internal/config"
)

// unconditionalBlock maps executables that are denied regardless of any
// grant or configuration to the cause of the block. Shell reinvocation
// and dynamic evaluation would let a command smuggle arbitrary code past
// the executable-level checks.
var unconditionalBlock = map[string]string{
	"bash":   "shell reinvocation",
	"sh":     "shell reinvocation",
	"zsh":    "shell reinvocation",
	"dash":   "shell reinvocation",
	"ksh":    "shell reinvocation",
	"fish":   "shell reinvocation",
	"csh":    "shell reinvocation",
	"tcsh":   "shell reinvocation",
	"eval":   "dynamic evaluation",
	"exec":   "process replacement",
	"source": "script sourcing",
	".":      "script sourcing",
}

// BlockedCause returns the cause an executable is unconditionally
// blocked, or "" when it is not.
func BlockedCause(executable string) string {
	return unconditionalBlock[executable]
}

// CheckBashPermission enforces the legacy per-agent bash policy over one
// command line. Nil config or mode bypass allows unconditionally — the
// explicit opt-out of enforcement for a given agent. Otherwise the
// dangerous-pattern detector runs first and its denial is final, then
// the parser (failure denies), then every discovered executable is
// checked: the unconditional block set wins over any configuration, and
// the mode-specific list applies after it.
func CheckBashPermission(command string, cfg *config.BashConfig) Decision {
	if cfg == nil || cfg.Mode == "" || cfg.Mode == config.BashBypass {
		return Allow()
	}

	if res := CheckDangerousPatterns(command); !res.Safe {
		return Deny(res.Reason)
	}

	executables, err := ParseBashCommand(command)
	if err != nil {
		return Deny("command could not be safely parsed: " + err.Error())
	}

	var blocked []blockedExec
	for _, exe := range executables {
		if cause := BlockedCause(exe); cause != "" {
			blocked = append(blocked, blockedExec{name: exe, cause: cause})
			continue
		}
		switch cfg.Mode {
		case config.BashAllowlist:
			if !slices.Contains(cfg.Allowlist, exe) {
				blocked = append(blocked, blockedExec{name: exe, cause: "not in allowlist"})
			}
		case config.BashDenylist:
			if slices.Contains(cfg.Denylist, exe) {
				blocked = append(blocked, blockedExec{name: exe, cause: "in denylist"})
			}
		}
	}

	if len(blocked) > 0 {
		return denyExecutables(blocked)
	}
	return Allow()
}
