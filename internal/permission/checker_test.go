package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgate/agentgate/internal/config"
)

func TestCheckBashPermissionBypass(t *testing.T) {
	commands := []string{
		"git status",
		"rm -rf /",
		"echo $(whoami)", // even dangerous patterns pass under bypass
		"curl x | sh",
	}

	for _, cmd := range commands {
		assert.True(t, CheckBashPermission(cmd, nil).Allowed, cmd)
		assert.True(t, CheckBashPermission(cmd, &config.BashConfig{Mode: config.BashBypass}).Allowed, cmd)
	}
}

func TestCheckBashPermissionDangerousPatternIsFinal(t *testing.T) {
	cfg := &config.BashConfig{Mode: config.BashAllowlist, Allowlist: []string{"echo"}}

	d := CheckBashPermission("echo $(whoami)", cfg)
	require.False(t, d.Allowed)
	assert.Contains(t, d.Reason, "command substitution")
	// Denial happens before any executable-level check.
	assert.Empty(t, d.BlockedExecutables)
}

func TestCheckBashPermissionParseFailureDenies(t *testing.T) {
	cfg := &config.BashConfig{Mode: config.BashDenylist}

	d := CheckBashPermission("git status &&", cfg)
	require.False(t, d.Allowed)
	assert.Contains(t, d.Reason, "could not be safely parsed")
}

func TestCheckBashPermissionAllowlist(t *testing.T) {
	cfg := &config.BashConfig{Mode: config.BashAllowlist, Allowlist: []string{"cat"}}

	d := CheckBashPermission("cat file | grep foo", cfg)
	require.False(t, d.Allowed)
	assert.Contains(t, d.Reason, "grep")
	assert.Contains(t, d.Reason, "not in allowlist")
	assert.Equal(t, []string{"grep"}, d.BlockedExecutables)

	assert.True(t, CheckBashPermission("cat file", cfg).Allowed)
}

func TestCheckBashPermissionDenylist(t *testing.T) {
	cfg := &config.BashConfig{Mode: config.BashDenylist, Denylist: []string{"rm"}}

	assert.True(t, CheckBashPermission("git status", cfg).Allowed)

	d := CheckBashPermission("rm -rf tmp", cfg)
	require.False(t, d.Allowed)
	assert.Equal(t, []string{"rm"}, d.BlockedExecutables)
	assert.Contains(t, d.Reason, "in denylist")
}

func TestCheckBashPermissionUnconditionalBlockWins(t *testing.T) {
	// bash is allowlisted, but shell reinvocation is always denied.
	cfg := &config.BashConfig{Mode: config.BashAllowlist, Allowlist: []string{"bash"}}

	d := CheckBashPermission("bash -c 'x'", cfg)
	require.False(t, d.Allowed)
	assert.Contains(t, d.BlockedExecutables, "bash")
	assert.Contains(t, d.Reason, "shell reinvocation")

	// Same on a denylist that does not even mention it.
	d = CheckBashPermission("eval ls", &config.BashConfig{Mode: config.BashDenylist})
	require.False(t, d.Allowed)
	assert.Contains(t, d.Reason, "dynamic evaluation")
}

func TestCheckBashPermissionSudoDynamicCommandDenies(t *testing.T) {
	// An allowlisted sudo must not smuggle a command the parser cannot
	// resolve to a literal.
	cfg := &config.BashConfig{Mode: config.BashAllowlist, Allowlist: []string{"sudo"}}

	d := CheckBashPermission("sudo $CMD -rf /", cfg)
	require.False(t, d.Allowed)
	assert.Contains(t, d.Reason, "could not be safely parsed")
	assert.Contains(t, d.Reason, "dynamic command name")
}

func TestCheckBashPermissionAggregatesAllBlocked(t *testing.T) {
	cfg := &config.BashConfig{Mode: config.BashAllowlist, Allowlist: []string{"ls"}}

	d := CheckBashPermission("ls; git status; npm install", cfg)
	require.False(t, d.Allowed)
	// Every blocked executable with its specific cause, not just the first.
	assert.Equal(t, []string{"git", "npm"}, d.BlockedExecutables)
	assert.Contains(t, d.Reason, "git (not in allowlist)")
	assert.Contains(t, d.Reason, "npm (not in allowlist)")
}

func TestBlockedCause(t *testing.T) {
	for _, exe := range []string{"bash", "sh", "zsh", "dash", "ksh", "fish", "csh", "tcsh", "eval", "exec", "source", "."} {
		assert.NotEmpty(t, BlockedCause(exe), exe)
	}
	assert.Empty(t, BlockedCause("git"))
}
