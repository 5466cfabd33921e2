package commands

import (
	"context"
	"os"

	"github.com/agentgate/agentgate/internal/authz"
	"github.com/agentgate/agentgate/internal/config"
	"github.com/agentgate/agentgate/internal/event"
	"github.com/agentgate/agentgate/internal/logging"
	"github.com/agentgate/agentgate/internal/permission"
	"github.com/agentgate/agentgate/internal/relation"
)

// app bundles the wired subsystems every command needs.
type app struct {
	settings config.Settings
	config   *config.Config
	store    *relation.Store
	engine   *authz.Engine
	enforcer *permission.Enforcer
	bus      *event.Bus
}

// newApp loads settings and policy configuration, opens the relation
// store and wires the enforcer.
func newApp() (*app, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}

	level := settings.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	logging.Init(logging.Config{Level: logging.ParseLevel(level)})

	workDir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(workDir)
	if err != nil {
		return nil, err
	}

	store, err := relation.Open(settings.DBPath)
	if err != nil {
		return nil, err
	}

	engine := authz.NewEngine(store)
	bus := event.NewBus()

	return &app{
		settings: settings,
		config:   cfg,
		store:    store,
		engine:   engine,
		enforcer: permission.NewEnforcer(engine, cfg, bus),
		bus:      bus,
	}, nil
}

// drain waits for in-flight audit emissions before the process exits.
func (a *app) drain() {
	if !a.bus.Drain(a.settings.AuditDrainTimeout) {
		logging.Warn().Msg("audit drain timed out; some denial events were dropped")
	}
}

// requireScope gates an administrative command on the calling agent's
// command-group relations. The returned error message is surfaced to
// the user verbatim and the command body must not run.
func (a *app) requireScope(ctx context.Context, group, sub string) error {
	allowed, msg := a.enforcer.CheckCommandScope(ctx, a.settings.AgentID, group, sub)
	if allowed {
		return nil
	}
	return &permission.DeniedError{
		AgentID: a.settings.AgentID,
		Denied:  relation.TypeGroup + ":" + group,
		Message: msg,
	}
}
