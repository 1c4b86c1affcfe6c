package auth

import (
	"github.com/go-chi/chi/v5"

	"github.com/myanmatch/backend/internal/app"
)

// Registrar ties the auth service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the auth service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the forgot-password endpoints to the router
func (r *Registrar) Register(router chi.Router) {
	service := NewService(r.appCtx)

	router.Post("/auth/forgot-password/send-otp", service.handleSendOTP)
	router.Post("/auth/forgot-password/verify-otp", service.handleVerifyOTP)
	router.Post("/auth/forgot-password/reset", service.handleReset)
}
