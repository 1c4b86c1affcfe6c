package match

import (
	"github.com/go-chi/chi/v5"

	"github.com/myanmatch/backend/internal/app"
)

// Registrar ties the match service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the match service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the match endpoints to the router
func (r *Registrar) Register(router chi.Router) {
	service := NewService(r.appCtx)

	router.Get("/matches", service.handleListMatches)
	router.Get("/likes/incoming", service.handleListIncoming)
	router.Get("/likes/count", service.handleCountIncoming)
	router.Post("/likes", service.handlePutLike)
	router.Post("/likes/skip", service.handleSkipLike)
}
