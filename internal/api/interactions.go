package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/alexanderramin/dealnotes/internal/app"
	"github.com/go-chi/chi/v5"
)

type ingestRequest struct {
	Text      string     `json:"text"`
	Timestamp *time.Time `json:"timestamp"`
}

// ingest answers 201 on full success and 207 when the interaction was saved
// but its followup could not be produced.
func (s *Server) ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in := app.IngestRequest{ClientID: chi.URLParam(r, "clientID"), RawText: req.Text}
	if req.Timestamp != nil {
		in.Timestamp = req.Timestamp.UTC()
	}
	res, err := s.deps.Ingest.Ingest(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, ingestStatus(res), newIngestView(res))
}

func (s *Server) reextract(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Ingest.Reextract(r.Context(), chi.URLParam(r, "interactionID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, ingestStatus(res), newIngestView(res))
}

func ingestStatus(res *app.IngestResult) int {
	if res.Partial() {
		return http.StatusMultiStatus
	}
	return http.StatusCreated
}

func (s *Server) timeline(w http.ResponseWriter, r *http.Request) {
	entries, err := s.deps.History.Timeline(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newTimelineView(entries))
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.History.Stats(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newStatsView(st))
}

func (s *Server) getInteraction(w http.ResponseWriter, r *http.Request) {
	rec, err := s.deps.History.Interaction(r.Context(), chi.URLParam(r, "interactionID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newInteractionView(rec))
}

func (s *Server) getFollowup(w http.ResponseWriter, r *http.Request) {
	fc, err := s.deps.History.Followup(r.Context(), chi.URLParam(r, "interactionID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newFollowupView(fc))
}

func (s *Server) regenerateFollowup(w http.ResponseWriter, r *http.Request) {
	fc, err := s.deps.Ingest.RegenerateFollowup(r.Context(), chi.URLParam(r, "interactionID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newFollowupView(fc))
}

// due lists followups falling within ?days= (default 7) of today.
func (s *Server) due(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "days must be a non-negative integer")
			return
		}
		days = n
	}
	recs, err := s.deps.History.Due(r.Context(), time.Now().UTC().AddDate(0, 0, days))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]interactionView, 0, len(recs))
	for i := range recs {
		out = append(out, newInteractionView(&recs[i]))
	}
	respondJSON(w, http.StatusOK, out)
}
