package relation

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agentgate/agentgate/internal/config"
	"github.com/agentgate/agentgate/internal/logging"
)

// SyncResult reports what a config sync did.
type SyncResult struct {
	Cleared int64
	Granted int
}

// SyncFromConfig replaces all source=config tuples with the set derived
// from the current agent configuration. The delete and regrant happen in
// one transaction so a crash or concurrent read never observes a
// permission gap. Overlapping syncs are serialized.
func (s *Store) SyncFromConfig(ctx context.Context, cfg *config.Config) (SyncResult, error) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	derived := DeriveTuples(cfg)
	for _, ref := range derived {
		if err := ValidateObjectID(ref.ObjectID); err != nil {
			return SyncResult{}, fmt.Errorf("config sync: %w", err)
		}
	}

	var result SyncResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("source = ?", SourceConfig).Delete(&Tuple{})
		if res.Error != nil {
			return res.Error
		}
		result.Cleared = res.RowsAffected

		for _, ref := range derived {
			t := Tuple{
				SubjectType: ref.SubjectType,
				SubjectID:   ref.SubjectID,
				Relation:    ref.Relation,
				ObjectType:  ref.ObjectType,
				ObjectID:    ref.ObjectID,
				Source:      SourceConfig,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "subject_type"}, {Name: "subject_id"},
					{Name: "relation"}, {Name: "object_type"}, {Name: "object_id"},
				},
				DoUpdates: clause.AssignmentColumns([]string{"source"}),
			}).Create(&t).Error
			if err != nil {
				return err
			}
		}
		result.Granted = len(derived)
		return nil
	})
	if err != nil {
		return SyncResult{}, fmt.Errorf("config sync: %w", err)
	}

	logging.Component("relation").Info().
		Int64("cleared", result.Cleared).
		Int("granted", result.Granted).
		Msg("synced relations from config")

	return result, nil
}

// DeriveTuples translates the agent configuration into relation tuples.
func DeriveTuples(cfg *config.Config) []Ref {
	if cfg == nil {
		return nil
	}

	var refs []Ref
	add := func(agentID, rel, objectType, objectID string) {
		refs = append(refs, Ref{
			SubjectType: TypeAgent,
			SubjectID:   agentID,
			Relation:    rel,
			ObjectType:  objectType,
			ObjectID:    objectID,
		})
	}

	if cfg.SuperAgent != "" {
		add(cfg.SuperAgent, RelAdmin, TypeSystem, Wildcard)
	}

	for agentID, agent := range cfg.Agents {
		for _, tool := range agent.Tools {
			add(agentID, RelUse, TypeTool, tool)
		}
		for _, exe := range agent.Executables {
			add(agentID, RelExecute, TypeExecutable, exe)
		}
		for _, session := range agent.Sessions {
			add(agentID, RelAccess, TypeSession, session)
		}
		for _, session := range agent.SessionsWrite {
			add(agentID, RelModify, TypeSession, session)
		}
		for _, contact := range agent.Contacts {
			add(agentID, RelRead, TypeContact, contact)
		}
		for _, contact := range agent.ContactsWrite {
			add(agentID, RelWrite, TypeContact, contact)
		}
		for _, other := range agent.Agents {
			add(agentID, RelSee, TypeAgent, other)
		}
		for _, group := range agent.CommandGroups {
			add(agentID, RelExecute, TypeGroup, group)
		}
	}

	return refs
}
