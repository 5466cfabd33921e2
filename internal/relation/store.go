package relation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// ErrInvalidPattern is returned when a grant carries an ill-formed
// wildcard objectId. This is a caller bug surfaced to the writer, not a
// security decision.
var ErrInvalidPattern = errors.New("invalid object pattern")

// Store persists relation tuples in sqlite via gorm.
type Store struct {
	db *gorm.DB

	// syncMu serializes SyncFromConfig so overlapping syncs cannot
	// interleave deletes and regrants.
	syncMu sync.Mutex
}

// Open opens (or creates) the tuple database at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open relation store: %w", err)
	}
	return New(db)
}

// New wraps an existing gorm DB and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Tuple{}); err != nil {
		return nil, fmt.Errorf("migrate relation store: %w", err)
	}
	return &Store{db: db}, nil
}

// ValidateObjectID enforces the wildcard invariant: objectId is either a
// plain identifier, the literal "*", or a prefix pattern with exactly one
// "*" as the final rune.
func ValidateObjectID(objectID string) error {
	if objectID == "" {
		return fmt.Errorf("%w: empty object id", ErrInvalidPattern)
	}
	n := strings.Count(objectID, Wildcard)
	switch {
	case n == 0:
		return nil
	case n > 1:
		return fmt.Errorf("%w: %q has multiple wildcards", ErrInvalidPattern, objectID)
	case !strings.HasSuffix(objectID, Wildcard):
		return fmt.Errorf("%w: %q may only end with a wildcard", ErrInvalidPattern, objectID)
	}
	return nil
}

// Grant upserts a tuple. Granting an existing tuple updates its source.
func (s *Store) Grant(ctx context.Context, ref Ref, source string) error {
	if err := ValidateObjectID(ref.ObjectID); err != nil {
		return err
	}

	t := Tuple{
		SubjectType: ref.SubjectType,
		SubjectID:   ref.SubjectID,
		Relation:    ref.Relation,
		ObjectType:  ref.ObjectType,
		ObjectID:    ref.ObjectID,
		Source:      source,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "subject_type"}, {Name: "subject_id"},
			{Name: "relation"}, {Name: "object_type"}, {Name: "object_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"source"}),
	}).Create(&t).Error
	if err != nil {
		return fmt.Errorf("grant tuple: %w", err)
	}
	return nil
}

// Revoke removes one tuple. Returns true iff a row was removed.
func (s *Store) Revoke(ctx context.Context, ref Ref) (bool, error) {
	res := whereRef(s.db.WithContext(ctx), ref).Delete(&Tuple{})
	if res.Error != nil {
		return false, fmt.Errorf("revoke tuple: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// HasRelation reports whether the exact tuple exists. No wildcard or
// pattern expansion happens here.
func (s *Store) HasRelation(ctx context.Context, ref Ref) (bool, error) {
	var count int64
	err := whereRef(s.db.WithContext(ctx).Model(&Tuple{}), ref).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("lookup tuple: %w", err)
	}
	return count > 0, nil
}

// List returns all tuples matching the filter, ordered by internal id so
// results are deterministic.
func (s *Store) List(ctx context.Context, filter Filter) ([]Tuple, error) {
	var tuples []Tuple
	err := applyFilter(s.db.WithContext(ctx), filter).
		Order("id").
		Find(&tuples).Error
	if err != nil {
		return nil, fmt.Errorf("list tuples: %w", err)
	}
	return tuples, nil
}

// Clear removes all tuples matching the filter and returns the count removed.
func (s *Store) Clear(ctx context.Context, filter ClearFilter) (int64, error) {
	query := s.db.WithContext(ctx).Model(&Tuple{})
	if filter.SubjectType != "" {
		query = query.Where("subject_type = ?", filter.SubjectType)
	}
	if filter.SubjectID != "" {
		query = query.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	res := query.Where("1 = 1").Delete(&Tuple{})
	if res.Error != nil {
		return 0, fmt.Errorf("clear tuples: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// whereRef matches exactly one tuple by its five key fields. Unlike
// struct-based conditions this never skips empty fields.
func whereRef(query *gorm.DB, ref Ref) *gorm.DB {
	return query.Where(
		"subject_type = ? AND subject_id = ? AND relation = ? AND object_type = ? AND object_id = ?",
		ref.SubjectType, ref.SubjectID, ref.Relation, ref.ObjectType, ref.ObjectID,
	)
}

// applyFilter adds WHERE clauses for the set key fields.
func applyFilter(query *gorm.DB, filter Filter) *gorm.DB {
	if filter.SubjectType != "" {
		query = query.Where("subject_type = ?", filter.SubjectType)
	}
	if filter.SubjectID != "" {
		query = query.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.Relation != "" {
		query = query.Where("relation = ?", filter.Relation)
	}
	if filter.ObjectType != "" {
		query = query.Where("object_type = ?", filter.ObjectType)
	}
	if filter.ObjectID != "" {
		query = query.Where("object_id = ?", filter.ObjectID)
	}
	return query
}
