package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/alexanderramin/dealnotes/internal/domain"
	"github.com/go-chi/chi/v5"
)

type createClientRequest struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Force   bool   `json:"force"`
}

// updateClientRequest leaves fields that are absent unchanged.
type updateClientRequest struct {
	Name    *string `json:"name"`
	Company *string `json:"company"`
	Email   *string `json:"email"`
}

func (s *Server) createClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c := &domain.Client{Name: req.Name, Company: req.Company, Email: req.Email}
	if err := s.deps.Clients.Create(r.Context(), c, req.Force); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newClientView(c))
}

func (s *Server) listClients(w http.ResponseWriter, r *http.Request) {
	includeInactive, err := boolParam(r, "include_inactive")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var clients []*domain.Client
	if q := r.URL.Query().Get("q"); q != "" {
		clients, err = s.deps.Clients.Search(r.Context(), q, includeInactive)
	} else {
		clients, err = s.deps.Clients.List(r.Context(), includeInactive)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out := make([]clientView, 0, len(clients))
	for _, c := range clients {
		out = append(out, newClientView(c))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) getClient(w http.ResponseWriter, r *http.Request) {
	c, err := s.deps.Clients.GetByID(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newClientView(c))
}

func (s *Server) updateClient(w http.ResponseWriter, r *http.Request) {
	var req updateClientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := s.deps.Clients.GetByID(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Company != nil {
		c.Company = *req.Company
	}
	if req.Email != nil {
		c.Email = *req.Email
	}
	if err := s.deps.Clients.Update(r.Context(), c); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newClientView(c))
}

// deleteClient deactivates by default; ?hard=true removes the client and
// its whole history.
func (s *Server) deleteClient(w http.ResponseWriter, r *http.Request) {
	hard, err := boolParam(r, "hard")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "clientID")
	if hard {
		err = s.deps.Clients.Delete(r.Context(), id)
	} else {
		err = s.deps.Clients.Deactivate(r.Context(), id)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) restoreClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "clientID")
	if err := s.deps.Clients.Restore(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.deps.Clients.GetByID(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newClientView(c))
}

func boolParam(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false", name)
	}
	return b, nil
}
