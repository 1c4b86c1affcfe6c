package billing

import (
	"github.com/go-chi/chi/v5"

	"github.com/myanmatch/backend/internal/app"
	"github.com/myanmatch/backend/internal/config"
)

// Registrar ties the billing service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
	cfg    *config.Config
}

// NewRegistrar creates a new Registrar for the billing service
func NewRegistrar(appCtx *app.AppContext, cfg *config.Config) *Registrar {
	return &Registrar{appCtx: appCtx, cfg: cfg}
}

// Register attaches the billing endpoints to the router
func (r *Registrar) Register(router chi.Router) {
	service := NewService(r.appCtx, r.cfg)

	router.Post("/billing/purchase", service.handlePurchase)
	router.Get("/billing/me", service.handleMe)
}
