// Package authz resolves permission queries against the relation store.
package authz

import (
	"context"
	"strings"

	"github.com/agentgate/agentgate/internal/relation"
)

// Engine answers "can subject do relation over object" by expanding
// wildcard and prefix grants stored as relation tuples.
type Engine struct {
	store *relation.Store
}

// NewEngine creates an engine over the given store.
func NewEngine(store *relation.Store) *Engine {
	return &Engine{store: store}
}

// Can reports whether the subject holds the relation over the object.
//
// Resolution order, first success wins:
//  1. superadmin shortcut: (subject, "admin", system:*) grants everything
//  2. exact tuple match
//  3. object wildcard: objectId "*"
//  4. prefix pattern: stored "<p>*" where the requested id starts with <p>
//
// Matching never crosses relation or objectType boundaries, and stored
// patterns only expand specific requests: a requested id that is itself
// "*" or a pattern is never granted by step 4.
func (e *Engine) Can(ctx context.Context, subjectType, subjectID, rel, objectType, objectID string) (bool, error) {
	// 1. Superadmin shortcut.
	ok, err := e.store.HasRelation(ctx, relation.Ref{
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Relation:    relation.RelAdmin,
		ObjectType:  relation.TypeSystem,
		ObjectID:    relation.Wildcard,
	})
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	// 2. Exact match.
	ok, err = e.store.HasRelation(ctx, relation.Ref{
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Relation:    rel,
		ObjectType:  objectType,
		ObjectID:    objectID,
	})
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	// 3. Object wildcard.
	if objectID != relation.Wildcard {
		ok, err = e.store.HasRelation(ctx, relation.Ref{
			SubjectType: subjectType,
			SubjectID:   subjectID,
			Relation:    rel,
			ObjectType:  objectType,
			ObjectID:    relation.Wildcard,
		})
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}

	// 4. Prefix patterns. Patterns expand specific requests only; a
	// requested id that is itself a wildcard or pattern never matches.
	if strings.Contains(objectID, relation.Wildcard) {
		return false, nil
	}
	tuples, err := e.store.List(ctx, relation.Filter{
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Relation:    rel,
		ObjectType:  objectType,
	})
	if err != nil {
		return false, err
	}
	for _, t := range tuples {
		if len(t.ObjectID) < 2 || !strings.HasSuffix(t.ObjectID, relation.Wildcard) {
			continue
		}
		prefix := strings.TrimSuffix(t.ObjectID, relation.Wildcard)
		if strings.HasPrefix(objectID, prefix) {
			return true, nil
		}
	}
	return false, nil
}

// AgentCan is Can for agent subjects. An empty agentID means the caller
// is the trusted operator and is allowed unconditionally; that is the
// boundary between human CLI operation and agent-driven operation.
func (e *Engine) AgentCan(ctx context.Context, agentID, rel, objectType, objectID string) (bool, error) {
	if agentID == "" {
		return true, nil
	}
	return e.Can(ctx, relation.TypeAgent, agentID, rel, objectType, objectID)
}

// IsSuperadmin reports whether the agent holds admin over system:*.
func (e *Engine) IsSuperadmin(ctx context.Context, agentID string) (bool, error) {
	if agentID == "" {
		return true, nil
	}
	return e.store.HasRelation(ctx, relation.Ref{
		SubjectType: relation.TypeAgent,
		SubjectID:   agentID,
		Relation:    relation.RelAdmin,
		ObjectType:  relation.TypeSystem,
		ObjectID:    relation.Wildcard,
	})
}

// HasAnyExecutableGrant reports whether the agent has at least one
// execute-over-executable tuple. Used to pick between the relation-based
// bash path and the legacy per-agent config path.
func (e *Engine) HasAnyExecutableGrant(ctx context.Context, agentID string) (bool, error) {
	tuples, err := e.store.List(ctx, relation.Filter{
		SubjectType: relation.TypeAgent,
		SubjectID:   agentID,
		Relation:    relation.RelExecute,
		ObjectType:  relation.TypeExecutable,
	})
	if err != nil {
		return false, err
	}
	return len(tuples) > 0, nil
}
