package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/asapfoodtrailer/dealerd/internal/catalog"
	"github.com/asapfoodtrailer/dealerd/internal/images"
)

// RouterOptions carries the collaborators and auth settings for the API
// router.
type RouterOptions struct {
	Service      *catalog.Service
	Processor    *images.Processor
	AuthEnabled  bool
	Token        string
	AdminEmail   string
	AdminPass    string
	BusinessCity string
	// SSEHandler, if non-nil, is mounted at GET /events.
	SSEHandler http.Handler
	// MaxUploadBytes bounds a single uploaded image.
	MaxUploadBytes int64
}

// NewRouter creates a chi router with all API routes mounted. The public
// group runs behind the page-view tracker; the admin group behind Bearer
// token auth.
func NewRouter(opts RouterOptions) chi.Router {
	h := NewHandler(opts.Service)
	uh := NewUploadHandler(opts.Processor, opts.MaxUploadBytes)

	r := chi.NewRouter()

	// Public catalog surface, tracked.
	r.Group(func(r chi.Router) {
		r.Use(TrackMiddleware(opts.Service, opts.BusinessCity))

		r.Get("/vehicles", h.ListVehicles)
		r.Get("/vehicles/{id}", h.GetVehicle)
		r.Get("/catalog/{category}/{slug}", h.CatalogPage)
		r.Get("/featured", h.Featured)
		r.Get("/fleet-stats", h.FleetStats)
		r.Get("/testimonials", h.Testimonials)
		r.Post("/leads", h.CreateLead)
	})

	r.Post("/auth/login", h.Login(opts.AdminEmail, opts.AdminPass, opts.Token))

	// Admin surface. The SSE feed lives here too: live updates drive the
	// admin dashboard, and keeping it out of the tracked group stops it
	// from polluting analytics.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(opts.AuthEnabled, opts.Token))

		r.Post("/vehicles", h.CreateVehicle)
		r.Put("/vehicles/{id}", h.UpdateVehicle)
		r.Delete("/vehicles/{id}", h.DeleteVehicle)
		r.Get("/leads", h.ListLeads)
		r.Get("/analytics/dashboard", h.Dashboard)
		r.Post("/uploads", uh.Upload)
		if opts.SSEHandler != nil {
			r.Get("/events", opts.SSEHandler.ServeHTTP)
		}
	})

	return r
}
