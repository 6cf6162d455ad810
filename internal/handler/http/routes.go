package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const modelPath = "/system/models/{collection}/{id}"

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/system/health", h.health)
		r.Get("/system/version", h.getServerVersion)
		r.Post("/system/auth/token", h.issueToken)
	})

	// bearer token required when a sign key is configured
	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Post("/system/autoupdate", h.autoupdate)

		r.With(withGZip).Get(modelPath, h.getModel)
		r.With(withGZip).Put(modelPath, h.putModel)
		r.Delete(modelPath, h.deleteModel)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
