package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes groups the handlers mounted on the router.
type Routes struct {
	Root    *Handler
	Health  *HealthHandler
	Metrics *MetricsHandler
	Users   *UserHandler
	Items   *ItemHandler
	Reports *ReportHandler

	// APIMiddleware wraps every /api/v1 route.
	APIMiddleware []func(http.Handler) http.Handler
}

// Register mounts every route on r.
func (rt Routes) Register(r chi.Router) {
	r.Get("/", rt.Root.Root)
	r.Get("/health", rt.Root.Health)
	r.Get("/openapi.yaml", rt.Root.OpenAPI)
	r.Get("/healthz", rt.Health.Healthz)
	r.Get("/readyz", rt.Health.Readyz)
	if rt.Metrics != nil {
		r.Get("/metrics", rt.Metrics.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.APIMiddleware...)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", rt.Users.List)
			r.Post("/", rt.Users.Create)
			r.Get("/{user_id}", rt.Users.Get)
			r.Put("/{user_id}", rt.Users.Update)
			r.Delete("/{user_id}", rt.Users.Delete)
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", rt.Items.List)
			r.Post("/", rt.Items.Create)
			r.Get("/user/{user_id}", rt.Items.ListByOwner)
			r.Get("/{item_id}", rt.Items.Get)
			r.Put("/{item_id}", rt.Items.Update)
			r.Delete("/{item_id}", rt.Items.Delete)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/users-summary", rt.Reports.UsersSummary)
			r.Get("/items-summary", rt.Reports.ItemsSummary)
			r.Get("/user/{user_id}", rt.Reports.UserDetail)
			r.Get("/system-overview", rt.Reports.SystemOverview)
			r.Get("/items-by-price-range", rt.Reports.ItemsByPriceRange)
		})
	})

	r.NotFound(rt.Root.NotFound)
	r.MethodNotAllowed(rt.Root.MethodNotAllowed)
}
