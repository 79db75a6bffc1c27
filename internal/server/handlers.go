package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/evidence-engine/internal/evidence"
	"github.com/jonathan/evidence-engine/internal/pipeline"
	"github.com/jonathan/evidence-engine/internal/types"
)

// EvidenceIDHeader carries the stored run ID on POST /evidence responses.
const EvidenceIDHeader = "X-Evidence-Id"

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (types.EvidenceRequest, bool) {
	var req types.EvidenceRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return req, false
	}
	return req, true
}

// handleCreateEvidence runs the pipeline and returns the scored document.
func (s *Server) handleCreateEvidence(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	doc, err := s.engine.RunWithProgress(r.Context(), req, nil)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	if id, saved := s.save(r, &req, doc); saved {
		w.Header().Set(EvidenceIDHeader, id.String())
	}
	s.jsonResponse(w, http.StatusOK, doc)
}

// handleStreamEvidence runs the pipeline, streaming progress events followed by
// the scored document.
func (s *Server) handleStreamEvidence(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	doc, err := s.engine.RunWithProgress(r.Context(), req, func(ev pipeline.ProgressEvent) {
		if err := sse.WriteEvent("progress", map[string]string{"state": string(ev.State), "message": ev.Message}); err != nil {
			log.Printf("[SERVER] failed to write progress event: %v", err)
		}
	})
	if err != nil {
		sse.WriteError(err.Error())
		return
	}

	if id, saved := s.save(r, &req, doc); saved {
		sse.WriteEvent("saved", map[string]string{"id": id.String()}) //nolint:errcheck
	}
	sse.WriteEvent("evidence", doc) //nolint:errcheck
}

// save persists a run when a store is configured. Failures are logged; the
// caller still gets its document.
func (s *Server) save(r *http.Request, req *types.EvidenceRequest, doc *evidence.Scored) (uuid.UUID, bool) {
	if s.store == nil {
		return uuid.Nil, false
	}
	id, err := s.store.SaveEvidence(r.Context(), req, doc)
	if err != nil {
		log.Printf("[SERVER] failed to save evidence: %v", err)
		return uuid.Nil, false
	}
	return id, true
}

// storedID checks that storage is enabled and parses the {id} path value.
func (s *Server) storedID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if s.store == nil {
		s.errorResponse(w, HTTPStatus(ErrStorageDisabled), ErrStorageDisabled.Error())
		return uuid.Nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		verr := &ErrValidation{Field: "id", Message: "must be a UUID"}
		s.errorResponse(w, HTTPStatus(verr), verr.Error())
		return uuid.Nil, false
	}
	return id, true
}

// handleGetEvidence returns a stored evidence document.
func (s *Server) handleGetEvidence(w http.ResponseWriter, r *http.Request) {
	id, ok := s.storedID(w, r)
	if !ok {
		return
	}

	stored, err := s.store.GetEvidence(r.Context(), id)
	if err != nil {
		log.Printf("[SERVER] failed to get evidence %s: %v", id, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get evidence")
		return
	}
	if stored == nil {
		nf := &ErrNotFound{ID: id.String()}
		s.errorResponse(w, HTTPStatus(nf), nf.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, stored)
}

// handleDeleteEvidence removes a stored run.
func (s *Server) handleDeleteEvidence(w http.ResponseWriter, r *http.Request) {
	id, ok := s.storedID(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteEvidence(r.Context(), id); err != nil {
		log.Printf("[SERVER] failed to delete evidence %s: %v", id, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to delete evidence")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListEvidence lists recent stored runs.
func (s *Server) handleListEvidence(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, HTTPStatus(ErrStorageDisabled), ErrStorageDisabled.Error())
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			verr := &ErrValidation{Field: "limit", Message: "must be a non-negative integer"}
			s.errorResponse(w, HTTPStatus(verr), verr.Error())
			return
		}
		limit = n
	}

	runs, err := s.store.ListEvidence(r.Context(), limit)
	if err != nil {
		log.Printf("[SERVER] failed to list evidence: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list evidence")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"storage": s.store != nil,
	})
}
