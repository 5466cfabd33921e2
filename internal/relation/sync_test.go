package relation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgate/agentgate/internal/config"
)

func syncConfig() *config.Config {
	return &config.Config{
		SuperAgent: "main",
		Agents: map[string]config.AgentConfig{
			"main": {},
			"helper": {
				Tools:       []string{"browser", "search-*"},
				Executables: []string{"git", "ls"},
				Sessions:    []string{"helper-*"},
				Contacts:    []string{"*"},
			},
		},
	}
}

func TestDeriveTuples(t *testing.T) {
	refs := DeriveTuples(syncConfig())

	assert.Contains(t, refs, Ref{TypeAgent, "main", RelAdmin, TypeSystem, Wildcard})
	assert.Contains(t, refs, Ref{TypeAgent, "helper", RelUse, TypeTool, "browser"})
	assert.Contains(t, refs, Ref{TypeAgent, "helper", RelUse, TypeTool, "search-*"})
	assert.Contains(t, refs, Ref{TypeAgent, "helper", RelExecute, TypeExecutable, "git"})
	assert.Contains(t, refs, Ref{TypeAgent, "helper", RelAccess, TypeSession, "helper-*"})
	assert.Contains(t, refs, Ref{TypeAgent, "helper", RelRead, TypeContact, Wildcard})
	assert.Len(t, refs, 7)
}

func TestSyncFromConfigReplacesConfigTuples(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	// A stale config tuple and a manual tuple.
	require.NoError(t, store.Grant(ctx, agentRef("old", RelUse, TypeTool, "legacy"), SourceConfig))
	require.NoError(t, store.Grant(ctx, agentRef("keep", RelUse, TypeTool, "manual"), SourceManual))

	result, err := store.SyncFromConfig(ctx, syncConfig())
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Cleared)
	assert.Equal(t, 7, result.Granted)

	// Stale config tuple is gone, manual tuple survives.
	has, err := store.HasRelation(ctx, agentRef("old", RelUse, TypeTool, "legacy"))
	require.NoError(t, err)
	assert.False(t, has)

	has, err = store.HasRelation(ctx, agentRef("keep", RelUse, TypeTool, "manual"))
	require.NoError(t, err)
	assert.True(t, has)
}

func TestSyncFromConfigIsIdempotent(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Grant(ctx, agentRef("keep", RelUse, TypeTool, "manual"), SourceManual))

	_, err := store.SyncFromConfig(ctx, syncConfig())
	require.NoError(t, err)
	first, err := store.List(ctx, Filter{})
	require.NoError(t, err)

	_, err = store.SyncFromConfig(ctx, syncConfig())
	require.NoError(t, err)
	second, err := store.List(ctx, Filter{})
	require.NoError(t, err)

	// Same config tuple set and manual tuple set; no duplication, no drift.
	require.Equal(t, len(first), len(second))
	toRefs := func(tuples []Tuple) map[Ref]string {
		m := make(map[Ref]string, len(tuples))
		for _, tp := range tuples {
			m[Ref{tp.SubjectType, tp.SubjectID, tp.Relation, tp.ObjectType, tp.ObjectID}] = tp.Source
		}
		return m
	}
	assert.Equal(t, toRefs(first), toRefs(second))
}

func TestSyncFromConfigRejectsBadPattern(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	cfg := &config.Config{
		Agents: map[string]config.AgentConfig{
			"bad": {Tools: []string{"*leading"}},
		},
	}
	_, err := store.SyncFromConfig(ctx, cfg)
	require.ErrorIs(t, err, ErrInvalidPattern)
}
