package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"

	"github.com/tidwall/jsonc"
)

// Load loads the policy from multiple sources (priority order):
// 1. Global config (~/.agentgate/)
// 2. Project config (<directory>/.agentgate/ or <directory>/agentgate.json)
// 3. AGENTGATE_CONFIG file
// 4. AGENTGATE_CONFIG_CONTENT inline JSON
func Load(directory string) (*Config, error) {
	config := &Config{
		Agents: make(map[string]AgentConfig),
	}

	// Track loaded files to avoid duplicates.
	loaded := make(map[string]bool)

	loadOnce := func(path string) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return
		}
		if loaded[absPath] {
			return
		}
		if loadFile(path, config) == nil {
			loaded[absPath] = true
		}
	}

	// 1. Global config.
	if home := os.Getenv("HOME"); home != "" {
		globalDir := filepath.Join(home, ".agentgate")
		loadOnce(filepath.Join(globalDir, "agentgate.json"))
		loadOnce(filepath.Join(globalDir, "agentgate.jsonc"))
	}

	// 2. Project config.
	if directory != "" {
		loadOnce(filepath.Join(directory, "agentgate.json"))
		loadOnce(filepath.Join(directory, "agentgate.jsonc"))
		projectDir := filepath.Join(directory, ".agentgate")
		loadOnce(filepath.Join(projectDir, "agentgate.json"))
		loadOnce(filepath.Join(projectDir, "agentgate.jsonc"))
	}

	// 3. AGENTGATE_CONFIG file override.
	if configPath := os.Getenv("AGENTGATE_CONFIG"); configPath != "" {
		loadOnce(configPath)
	}

	// 4. AGENTGATE_CONFIG_CONTENT inline JSON.
	if content := os.Getenv("AGENTGATE_CONFIG_CONTENT"); content != "" {
		var inline Config
		if err := json.Unmarshal(jsonc.ToJSON([]byte(content)), &inline); err == nil {
			merge(config, &inline)
		}
	}

	return config, nil
}

// loadFile loads a single JSONC policy file into config.
func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err // File doesn't exist, skip.
	}

	// Strip JSONC comments, then resolve {env:VAR} placeholders.
	data = interpolate(jsonc.ToJSON(data))

	var fileConfig Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return err
	}

	merge(config, &fileConfig)
	return nil
}

var envPattern = regexp.MustCompile(`\{env:([^}]+)\}`)

// interpolate processes {env:VAR} placeholders.
func interpolate(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := envPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(varName)))
	})
}

// merge merges source into target. Later sources win per agent.
func merge(target, source *Config) {
	if source.SuperAgent != "" {
		target.SuperAgent = source.SuperAgent
	}
	if source.Agents != nil {
		if target.Agents == nil {
			target.Agents = make(map[string]AgentConfig)
		}
		for id, agent := range source.Agents {
			target.Agents[id] = agent
		}
	}
}

// Save writes the policy to a file.
func Save(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
