// Package relation persists permission tuples: "(subject) has (relation)
// over (object)". The store does exact-match lookups and filtered scans
// only; wildcard and prefix expansion belongs to the authz engine.
package relation

import "time"

// Tuple source values. Config tuples are regenerated idempotently on sync;
// manual tuples are never auto-deleted.
const (
	SourceConfig = "config"
	SourceManual = "manual"
)

// Well-known relations.
const (
	RelAdmin   = "admin"
	RelUse     = "use"
	RelExecute = "execute"
	RelAccess  = "access"
	RelModify  = "modify"
	RelRead    = "read"
	RelWrite   = "write"
	RelSee     = "see"
)

// Well-known object types.
const (
	TypeAgent      = "agent"
	TypeSystem     = "system"
	TypeTool       = "tool"
	TypeExecutable = "executable"
	TypeSession    = "session"
	TypeContact    = "contact"
	TypeGroup      = "group"
)

// Wildcard is the objectId matching any object of a type+relation.
const Wildcard = "*"

// Tuple is one stored permission fact. The table carries a composite
// unique index over the five key fields for point lookups, and an index
// on (relation, object_type) for prefix-pattern scans.
type Tuple struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	SubjectType string `gorm:"size:64;uniqueIndex:idx_tuple,priority:1" json:"subjectType"`
	SubjectID   string `gorm:"size:255;uniqueIndex:idx_tuple,priority:2" json:"subjectId"`
	Relation    string `gorm:"size:64;uniqueIndex:idx_tuple,priority:3;index:idx_scan,priority:1" json:"relation"`
	ObjectType  string `gorm:"size:64;uniqueIndex:idx_tuple,priority:4;index:idx_scan,priority:2" json:"objectType"`
	ObjectID    string `gorm:"size:255;uniqueIndex:idx_tuple,priority:5" json:"objectId"`
	Source      string `gorm:"size:16" json:"source"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName returns the table name for GORM.
func (Tuple) TableName() string {
	return "relation_tuples"
}

// Ref names one tuple by its five key fields.
type Ref struct {
	SubjectType string `json:"subjectType"`
	SubjectID   string `json:"subjectId"`
	Relation    string `json:"relation"`
	ObjectType  string `json:"objectType"`
	ObjectID    string `json:"objectId"`
}

// Filter selects tuples by any subset of the five key fields.
// Empty fields match everything.
type Filter struct {
	SubjectType string `json:"subjectType,omitempty"`
	SubjectID   string `json:"subjectId,omitempty"`
	Relation    string `json:"relation,omitempty"`
	ObjectType  string `json:"objectType,omitempty"`
	ObjectID    string `json:"objectId,omitempty"`
}

// ClearFilter selects tuples for bulk removal.
type ClearFilter struct {
	SubjectType string `json:"subjectType,omitempty"`
	SubjectID   string `json:"subjectId,omitempty"`
	Source      string `json:"source,omitempty"`
}
