package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProjectConfig(t *testing.T) {
	dir := t.TempDir()
	content := `{
		// super-agent gets admin over system:*
		"superAgent": "main",
		"agents": {
			"main": {"tools": ["*"]},
			"helper": {
				"tools": ["browser", "search-*"],
				"bash": {"mode": "allowlist", "allowlist": ["git", "ls"]}
			}
		}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "agentgate.jsonc"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "main", cfg.SuperAgent)
	require.Contains(t, cfg.Agents, "helper")
	assert.Equal(t, []string{"browser", "search-*"}, cfg.Agents["helper"].Tools)

	bash := cfg.AgentBash("helper")
	require.NotNil(t, bash)
	assert.Equal(t, BashAllowlist, bash.Mode)
	assert.Equal(t, []string{"git", "ls"}, bash.Allowlist)
}

func TestLoadInlineContentOverrides(t *testing.T) {
	dir := t.TempDir()
	base := `{"superAgent": "main", "agents": {"main": {}}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "agentgate.json"), []byte(base), 0o644))

	t.Setenv("AGENTGATE_CONFIG_CONTENT", `{"superAgent": "root"}`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "root", cfg.SuperAgent)
	assert.Contains(t, cfg.Agents, "main")
}

func TestLoadEnvInterpolation(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AGENTGATE_TEST_SUPER", "boss")
	content := `{"superAgent": "{env:AGENTGATE_TEST_SUPER}"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "agentgate.json"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "boss", cfg.SuperAgent)
}

func TestAgentBashUnknownAgent(t *testing.T) {
	cfg := &Config{Agents: map[string]AgentConfig{}}
	assert.Nil(t, cfg.AgentBash("nobody"))

	var nilCfg *Config
	assert.Nil(t, nilCfg.AgentBash("anyone"))
}
