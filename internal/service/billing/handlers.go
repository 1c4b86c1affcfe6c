package billing

import (
	"encoding/json"
	"net/http"
	"strconv"

	svcErr "github.com/myanmatch/backend/internal/errors"
)

type purchaseRequest struct {
	UserID uint64 `json:"user_id"`
	Plan   string `json:"plan"`
}

func (s *Service) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.WriteError(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	result, err := s.Purchase(r.Context(), req.UserID, req.Plan)
	if err != nil {
		svcErr.WriteError(w, err)
		return
	}
	svcErr.WriteJSON(w, http.StatusOK, result)
}

func (s *Service) handleMe(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || id == 0 {
		svcErr.WriteError(w, svcErr.InvalidArgument("user_id must be a valid uint64"))
		return
	}

	snap, err := s.Me(r.Context(), id)
	if err != nil {
		svcErr.WriteError(w, err)
		return
	}
	svcErr.WriteJSON(w, http.StatusOK, snap)
}
