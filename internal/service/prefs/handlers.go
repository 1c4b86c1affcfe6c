package prefs

import (
	"encoding/json"
	"net/http"
	"strconv"

	svcErr "github.com/myanmatch/backend/internal/errors"
)

func (s *Service) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || id == 0 {
		svcErr.WriteError(w, svcErr.InvalidArgument("user_id must be a valid uint64"))
		return
	}

	prefs, err := s.Get(r.Context(), id)
	if err != nil {
		svcErr.WriteError(w, err)
		return
	}
	svcErr.WriteJSON(w, http.StatusOK, prefs)
}

func (s *Service) handleSave(w http.ResponseWriter, r *http.Request) {
	var in Preferences
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		svcErr.WriteError(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	saved, err := s.Save(r.Context(), in)
	if err != nil {
		svcErr.WriteError(w, err)
		return
	}
	svcErr.WriteJSON(w, http.StatusOK, saved)
}
