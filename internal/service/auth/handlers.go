package auth

import (
	"encoding/json"
	"net/http"

	svcErr "github.com/myanmatch/backend/internal/errors"
)

type sendOTPRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email   string `json:"email"`
	OTPCode string `json:"otp_code"`
}

type resetRequest struct {
	Email       string `json:"email"`
	OTPCode     string `json:"otp_code"`
	NewPassword string `json:"new_password"`
}

func (s *Service) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.WriteError(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	if err := s.SendOTP(r.Context(), req.Email); err != nil {
		svcErr.WriteError(w, err)
		return
	}
	svcErr.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Service) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.WriteError(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	if err := s.VerifyOTP(r.Context(), req.Email, req.OTPCode); err != nil {
		svcErr.WriteError(w, err)
		return
	}
	svcErr.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Service) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.WriteError(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	if err := s.Reset(r.Context(), req.Email, req.OTPCode, req.NewPassword); err != nil {
		svcErr.WriteError(w, err)
		return
	}
	svcErr.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
