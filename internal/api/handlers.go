package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/asapfoodtrailer/dealerd/internal/apperr"
	"github.com/asapfoodtrailer/dealerd/internal/catalog"
	"github.com/asapfoodtrailer/dealerd/internal/store"
)

// Handler holds API route handlers.
type Handler struct {
	svc *catalog.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{svc: svc}
}

// writeErr maps domain errors onto HTTP statuses.
func writeErr(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, apperr.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// listFilters parses the vehicle list query predicates.
func listFilters(r *http.Request) *store.Filters {
	q := r.URL.Query()
	f := &store.Filters{
		Category:  q.Get("category"),
		Condition: q.Get("condition"),
		Usage:     q.Get("usage"),
		Status:    q.Get("status"),
		Search:    q.Get("search"),
	}
	if v, err := strconv.Atoi(q.Get("min_price")); err == nil {
		f.MinPrice = &v
	}
	if v, err := strconv.Atoi(q.Get("max_price")); err == nil {
		f.MaxPrice = &v
	}
	return f
}

// ListVehicles handles GET /api/vehicles.
//
//	@Summary		List vehicles with optional filters
//	@Tags			vehicles
//	@Produce		json
//	@Param			category	query		string	false	"truck or trailer"
//	@Param			condition	query		string	false	"new or used"
//	@Param			usage		query		string	false	"sale or rent"
//	@Param			status		query		string	false	"available, rented or sold"
//	@Param			min_price	query		int		false	"Inclusive lower price bound"
//	@Param			max_price	query		int		false	"Inclusive upper price bound"
//	@Param			search		query		string	false	"Substring match on title or description"
//	@Success		200			{object}	VehicleListResponse
//	@Router			/vehicles [get]
func (h *Handler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.svc.ListVehicles(r.Context(), listFilters(r))
	if err != nil {
		writeErr(w, err, "list vehicles")
		return
	}
	writeJSON(w, http.StatusOK, VehicleListResponse{Vehicles: vehicles, Total: len(vehicles)})
}

// GetVehicle handles GET /api/vehicles/{id}.
//
//	@Summary		Get a vehicle by id
//	@Tags			vehicles
//	@Produce		json
//	@Param			id	path		string	true	"Vehicle id"
//	@Success		200	{object}	models.Vehicle
//	@Failure		404	{object}	errResponse
//	@Router			/vehicles/{id} [get]
func (h *Handler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.GetVehicle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err, "get vehicle")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// CatalogPage handles GET /api/catalog/{category}/{slug}: the public detail
// page lookup. A hit bumps the vehicle's view counter.
//
//	@Summary		Resolve a catalog page by category and slug
//	@Tags			vehicles
//	@Produce		json
//	@Param			category	path		string	true	"trucks or trailers"
//	@Param			slug		path		string	true	"Vehicle slug"
//	@Success		200			{object}	models.Vehicle
//	@Failure		404			{object}	errResponse
//	@Router			/catalog/{category}/{slug} [get]
func (h *Handler) CatalogPage(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSuffix(chi.URLParam(r, "category"), "s")
	v, err := h.svc.GetBySlug(r.Context(), category, chi.URLParam(r, "slug"))
	if err != nil {
		writeErr(w, err, "catalog page")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// CreateVehicle handles POST /api/vehicles.
//
//	@Summary		Create a listing
//	@Tags			vehicles
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateVehicleRequest	true	"Listing to create"
//	@Success		201		{object}	models.Vehicle
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/vehicles [post]
func (h *Handler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.svc.CreateVehicle(r.Context(), req.Vehicle())
	if err != nil {
		writeErr(w, err, "create vehicle")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateVehicle handles PUT /api/vehicles/{id}.
//
//	@Summary		Partially update a listing
//	@Tags			vehicles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Vehicle id"
//	@Param			body	body		UpdateVehicleRequest	true	"Fields to change"
//	@Success		200		{object}	models.Vehicle
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/vehicles/{id} [put]
func (h *Handler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var patch UpdateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := ValidatePatch(patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.svc.UpdateVehicle(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeErr(w, err, "update vehicle")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteVehicle handles DELETE /api/vehicles/{id}.
//
//	@Summary		Delete a listing
//	@Tags			vehicles
//	@Param			id	path	string	true	"Vehicle id"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/vehicles/{id} [delete]
func (h *Handler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteVehicle(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err, "delete vehicle")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Featured handles GET /api/featured.
//
//	@Summary		List featured available vehicles
//	@Tags			vehicles
//	@Produce		json
//	@Success		200	{object}	VehicleListResponse
//	@Router			/featured [get]
func (h *Handler) Featured(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 6
	}
	vehicles, err := h.svc.FeaturedVehicles(r.Context(), limit)
	if err != nil {
		writeErr(w, err, "featured vehicles")
		return
	}
	writeJSON(w, http.StatusOK, VehicleListResponse{Vehicles: vehicles, Total: len(vehicles)})
}

// FleetStats handles GET /api/fleet-stats.
//
//	@Summary		Fleet status counters
//	@Tags			vehicles
//	@Produce		json
//	@Success		200	{object}	models.FleetStats
//	@Router			/fleet-stats [get]
func (h *Handler) FleetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.FleetStats(r.Context())
	if err != nil {
		writeErr(w, err, "fleet stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Testimonials handles GET /api/testimonials.
//
//	@Summary		List testimonials
//	@Tags			testimonials
//	@Produce		json
//	@Success		200	{array}	models.Testimonial
//	@Router			/testimonials [get]
func (h *Handler) Testimonials(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListTestimonials(r.Context())
	if err != nil {
		writeErr(w, err, "testimonials")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateLead handles POST /api/leads.
//
//	@Summary		Submit a quote request
//	@Tags			leads
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateLeadRequest	true	"Lead to submit"
//	@Success		201		{object}	models.Lead
//	@Failure		400		{object}	errResponse
//	@Router			/leads [post]
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.svc.CreateLead(r.Context(), req.Lead())
	if err != nil {
		writeErr(w, err, "create lead")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListLeads handles GET /api/leads.
//
//	@Summary		List leads, newest first
//	@Tags			leads
//	@Produce		json
//	@Success		200	{object}	LeadListResponse
//	@Security		BearerAuth
//	@Router			/leads [get]
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.svc.ListLeads(r.Context())
	if err != nil {
		writeErr(w, err, "list leads")
		return
	}
	writeJSON(w, http.StatusOK, LeadListResponse{Leads: leads, Total: len(leads)})
}

// Dashboard handles GET /api/analytics/dashboard.
//
//	@Summary		Admin analytics dashboard
//	@Tags			analytics
//	@Produce		json
//	@Param			days	query		int	false	"Aggregation window in days (default 30)"
//	@Success		200		{object}	catalog.Dashboard
//	@Security		BearerAuth
//	@Router			/analytics/dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	d, err := h.svc.Dashboard(r.Context(), days)
	if err != nil {
		writeErr(w, err, "dashboard")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Login handles POST /api/auth/login.
//
//	@Summary		Exchange admin credentials for a bearer token
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	LoginResponse
//	@Failure		401		{object}	errResponse
//	@Router			/auth/login [post]
func (h *Handler) Login(adminEmail, adminPassword, token string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Email != adminEmail || req.Password != adminPassword {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeJSON(w, http.StatusOK, LoginResponse{Token: token})
	}
}
