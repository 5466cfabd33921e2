package event

// AuthzDeniedData is the data for authz.denied events, the audit payload
// emitted after a denial decision has been finalized.
type AuthzDeniedData struct {
	ID      string `json:"id"`
	AgentID string `json:"agentId,omitempty"`
	Denied  string `json:"denied"` // "<objectType>:<objectId>"
	Reason  string `json:"reason"`
	Command string `json:"command,omitempty"`
}

// RelationsSyncedData is the data for relations.synced events.
type RelationsSyncedData struct {
	Granted int `json:"granted"`
	Cleared int `json:"cleared"`
}

// RelationChangedData is the data for relation.granted and relation.revoked events.
type RelationChangedData struct {
	SubjectType string `json:"subjectType"`
	SubjectID   string `json:"subjectId"`
	Relation    string `json:"relation"`
	ObjectType  string `json:"objectType"`
	ObjectID    string `json:"objectId"`
	Source      string `json:"source,omitempty"`
}
