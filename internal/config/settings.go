package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Settings holds process-level configuration taken from the environment.
// Policy (who may do what) lives in Config; Settings covers where the
// relation database lives and how the process behaves.
type Settings struct {
	// DBPath is the sqlite database holding relation tuples.
	DBPath string `envconfig:"DB_PATH" default:"agentgate.db"`
	// LogLevel is the minimum log level (DEBUG|INFO|WARN|ERROR).
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`
	// Listen is the address of the decision HTTP API.
	Listen string `envconfig:"LISTEN" default:"127.0.0.1:8089"`
	// AgentID identifies the calling agent for CLI scope checks.
	// Empty means the trusted operator, which is never restricted.
	AgentID string `envconfig:"AGENT_ID"`
	// AuditDrainTimeout bounds how long process exit waits for
	// in-flight audit emissions.
	AuditDrainTimeout time.Duration `envconfig:"AUDIT_DRAIN_TIMEOUT" default:"2s"`
}

// LoadSettings reads settings from the environment, honoring a .env file
// when present.
func LoadSettings() (Settings, error) {
	_ = godotenv.Load()

	var s Settings
	if err := envconfig.Process("agentgate", &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
