package api

import (
	"net/http"

	"github.com/alexanderramin/dealnotes/internal/importer"
)

type importView struct {
	Clients      int               `json:"clients"`
	Interactions int               `json:"interactions"`
	Refs         map[string]string `json:"refs"`
}

func (s *Server) importClients(w http.ResponseWriter, r *http.Request) {
	var file importer.ImportFile
	if err := decodeJSON(w, r, &file); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := s.deps.Import.Import(r.Context(), &file)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, importView{
		Clients:      res.Clients,
		Interactions: res.Interactions,
		Refs:         res.Refs,
	})
}
