package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agentgate/agentgate/internal/event"
	"github.com/agentgate/agentgate/internal/relation"
)

// GrantRequest adds one manual tuple.
type GrantRequest struct {
	relation.Ref
}

// listRelations returns tuples matching the query-string filter.
func (s *Server) listRelations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := relation.Filter{
		SubjectType: q.Get("subjectType"),
		SubjectID:   q.Get("subjectId"),
		Relation:    q.Get("relation"),
		ObjectType:  q.Get("objectType"),
		ObjectID:    q.Get("objectId"),
	}

	tuples, err := s.store.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	if tuples == nil {
		tuples = []relation.Tuple{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"relations": tuples})
}

// grantRelation upserts a manual tuple.
func (s *Server) grantRelation(w http.ResponseWriter, r *http.Request) {
	var req GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body: "+err.Error())
		return
	}
	if req.SubjectID == "" || req.Relation == "" || req.ObjectType == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "subjectId, relation and objectType are required")
		return
	}
	if req.SubjectType == "" {
		req.SubjectType = relation.TypeAgent
	}

	if err := s.store.Grant(r.Context(), req.Ref, relation.SourceManual); err != nil {
		if errors.Is(err, relation.ErrInvalidPattern) {
			writeError(w, http.StatusBadRequest, ErrCodeInvalidPattern, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	s.bus.Publish(event.Event{Type: event.RelationGranted, Data: changedData(req.Ref, relation.SourceManual)})
	writeSuccess(w)
}

// revokeRelation removes one tuple.
func (s *Server) revokeRelation(w http.ResponseWriter, r *http.Request) {
	var ref relation.Ref
	if err := json.NewDecoder(r.Body).Decode(&ref); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body: "+err.Error())
		return
	}
	if ref.SubjectType == "" {
		ref.SubjectType = relation.TypeAgent
	}

	removed, err := s.store.Revoke(r.Context(), ref)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "no such relation")
		return
	}
	s.bus.Publish(event.Event{Type: event.RelationRevoked, Data: changedData(ref, "")})
	writeSuccess(w)
}

// syncRelations regenerates config-sourced tuples from the loaded
// agent configuration.
func (s *Server) syncRelations(w http.ResponseWriter, r *http.Request) {
	result, err := s.store.SyncFromConfig(r.Context(), s.appConfig)
	if err != nil {
		if errors.Is(err, relation.ErrInvalidPattern) {
			writeError(w, http.StatusBadRequest, ErrCodeInvalidPattern, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	s.bus.Publish(event.Event{Type: event.RelationsSynced, Data: event.RelationsSyncedData{
		Granted: result.Granted,
		Cleared: int(result.Cleared),
	}})
	writeJSON(w, http.StatusOK, map[string]any{
		"cleared": result.Cleared,
		"granted": result.Granted,
	})
}

// changedData builds the audit payload for a relation change.
func changedData(ref relation.Ref, source string) event.RelationChangedData {
	return event.RelationChangedData{
		SubjectType: ref.SubjectType,
		SubjectID:   ref.SubjectID,
		Relation:    ref.Relation,
		ObjectType:  ref.ObjectType,
		ObjectID:    ref.ObjectID,
		Source:      source,
	}
}
