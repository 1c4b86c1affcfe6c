package prefs

import (
	"github.com/go-chi/chi/v5"

	"github.com/myanmatch/backend/internal/app"
)

// Registrar ties the preferences service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the preferences service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the preference endpoints to the router
func (r *Registrar) Register(router chi.Router) {
	service := NewService(r.appCtx)

	router.Get("/preferences", service.handleGet)
	router.Put("/preferences", service.handleSave)
}
