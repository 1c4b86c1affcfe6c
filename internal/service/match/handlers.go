package match

import (
	"encoding/json"
	"net/http"
	"strconv"

	svcErr "github.com/myanmatch/backend/internal/errors"
)

type putLikeRequest struct {
	UserID   uint64 `json:"user_id"`
	ToUserID uint64 `json:"to_user_id"`
	Type     string `json:"type"`
	Comment  string `json:"comment"`
}

type putLikeResponse struct {
	Mutual bool `json:"mutual"`
}

type skipLikeRequest struct {
	UserID     uint64 `json:"user_id"`
	FromUserID uint64 `json:"from_user_id"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

func (s *Service) handleListMatches(w http.ResponseWriter, r *http.Request) {
	viewerID, err := viewerFromQuery(r)
	if err != nil {
		svcErr.WriteError(w, err)
		return
	}

	s.appCtx.Logger.Debug("ListMatches called", "viewer", viewerID)

	list, err := s.ListMatches(r.Context(), viewerID)
	if err != nil {
		s.appCtx.Logger.Error("ListMatches failed", "viewer", viewerID, "err", err)
		svcErr.WriteError(w, err)
		return
	}
	svcErr.WriteJSON(w, http.StatusOK, list)
}

func (s *Service) handleListIncoming(w http.ResponseWriter, r *http.Request) {
	viewerID, err := viewerFromQuery(r)
	if err != nil {
		svcErr.WriteError(w, err)
		return
	}

	var token *string
	if t := r.URL.Query().Get("pagination_token"); t != "" {
		token = &t
	}

	list, err := s.ListIncoming(r.Context(), viewerID, token)
	if err != nil {
		s.appCtx.Logger.Error("ListIncoming failed", "viewer", viewerID, "err", err)
		svcErr.WriteError(w, err)
		return
	}
	svcErr.WriteJSON(w, http.StatusOK, list)
}

func (s *Service) handleCountIncoming(w http.ResponseWriter, r *http.Request) {
	viewerID, err := viewerFromQuery(r)
	if err != nil {
		svcErr.WriteError(w, err)
		return
	}

	count, err := s.CountIncoming(r.Context(), viewerID)
	if err != nil {
		svcErr.WriteError(w, err)
		return
	}
	svcErr.WriteJSON(w, http.StatusOK, countResponse{Count: count})
}

func (s *Service) handlePutLike(w http.ResponseWriter, r *http.Request) {
	var req putLikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.WriteError(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	mutual, err := s.PutLike(r.Context(), req.UserID, req.ToUserID, req.Type, req.Comment)
	if err != nil {
		svcErr.WriteError(w, err)
		return
	}
	svcErr.WriteJSON(w, http.StatusOK, putLikeResponse{Mutual: mutual})
}

func (s *Service) handleSkipLike(w http.ResponseWriter, r *http.Request) {
	var req skipLikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.WriteError(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	if err := s.SkipLike(r.Context(), req.UserID, req.FromUserID); err != nil {
		svcErr.WriteError(w, err)
		return
	}
	svcErr.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func viewerFromQuery(r *http.Request) (uint64, error) {
	raw := r.URL.Query().Get("user_id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.InvalidArgument("user_id must be a valid uint64")
	}
	return id, nil
}
