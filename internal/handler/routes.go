package handler

import (
	"github.com/go-chi/chi/v5"
)

// Mount registers the page, fragment and JSON routes on r.
func Mount(r chi.Router, ui *UIHandler, api *APIHandler) {
	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware)

		r.Get("/", ui.Page)
		r.Post("/ui/predict", ui.Predict)
		r.Post("/ui/compare", ui.Compare)
		r.Post("/ui/upload", ui.Upload)
		r.Post("/ui/classify", ui.Classify)
		r.Get("/ui/state", ui.State)
		r.Post("/ui/teardown", ui.Teardown)
		r.Get("/ui/charts/{name}.png", ui.Chart)
	})
	r.Get("/previews/{id}", ui.Preview)

	r.Route("/api", func(r chi.Router) {
		r.Post("/predict", api.Predict)
		r.Post("/compare", api.Compare)
		r.Get("/health", api.Health)
	})
}
