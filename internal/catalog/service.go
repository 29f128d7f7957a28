// Package catalog implements the dealership domain service: inventory
// lifecycle, lead intake, page-view tracking, and the analytics dashboard.
// It owns the side effects around the persistence layer (slug assignment,
// live-event publishing, lead notifications) so HTTP handlers stay thin.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/asapfoodtrailer/dealerd/internal/analytics"
	"github.com/asapfoodtrailer/dealerd/internal/apperr"
	"github.com/asapfoodtrailer/dealerd/internal/models"
	"github.com/asapfoodtrailer/dealerd/internal/store"
)

// Publisher receives live inventory and lead events. *sse.Broker satisfies it.
type Publisher interface {
	PublishVehicleEvent(kind, id string)
	PublishLead(id string)
}

// Notifier sends lead notifications. *mailer.Mailer satisfies it.
type Notifier interface {
	Notify(lead *models.Lead)
}

// Dashboard is the admin analytics payload: traffic aggregates plus the
// inventory and lead context shown alongside them.
type Dashboard struct {
	Analytics   *analytics.Summary `json:"analytics"`
	FleetStats  models.FleetStats  `json:"fleet_stats"`
	MostViewed  []models.Vehicle   `json:"most_viewed"`
	RecentLeads []models.Lead      `json:"recent_leads"`
	TotalLeads  int                `json:"total_leads"`
}

// Service wires the store to the delivery-side collaborators.
type Service struct {
	store    store.Store
	events   Publisher
	notifier Notifier
	logger   *slog.Logger
}

// NewService creates the domain service. events and notifier may be nil when
// the corresponding side effect is not wired (tests, MCP mode).
func NewService(st store.Store, events Publisher, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{store: st, events: events, notifier: notifier, logger: logger}
}

// ListVehicles returns inventory matching the filters.
func (s *Service) ListVehicles(ctx context.Context, f *store.Filters) ([]models.Vehicle, error) {
	return s.store.ListVehicles(ctx, f)
}

// GetVehicle returns one vehicle by id.
func (s *Service) GetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	return s.store.GetVehicle(ctx, id)
}

// GetBySlug resolves a public catalog page: the slug must exist and belong to
// the requested category. The view counter is bumped best-effort; a failed
// increment never fails the page.
func (s *Service) GetBySlug(ctx context.Context, category, slug string) (*models.Vehicle, error) {
	v, err := s.store.GetVehicleBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if category != "" && v.Category != category {
		return nil, apperr.ErrNotFound
	}
	if err := s.store.IncrementViews(ctx, v.ID); err != nil {
		s.logger.Warn("view increment failed",
			slog.String("vehicle_id", v.ID),
			slog.String("error", err.Error()))
	} else {
		v.Views++
	}
	return v, nil
}

// CreateVehicle validates nothing beyond what the handler already checked; it
// fills derived fields (slug, primary image, default status) and publishes
// the inventory event.
func (s *Service) CreateVehicle(ctx context.Context, v models.Vehicle) (*models.Vehicle, error) {
	if v.Slug == "" {
		v.Slug = models.Slugify(v.Title)
	}
	if v.Status == "" {
		v.Status = models.StatusAvailable
	}
	if v.ImageURL == "" {
		v.ImageURL = primaryImage(v.Images)
	}

	created, err := s.store.CreateVehicle(ctx, v)
	if err != nil {
		return nil, err
	}
	if s.events != nil {
		s.events.PublishVehicleEvent("created", created.ID)
	}
	s.logger.Info("vehicle created",
		slog.String("id", created.ID),
		slog.String("slug", created.Slug))
	return created, nil
}

// UpdateVehicle applies a partial update. A title change without an explicit
// slug regenerates the slug, and an images change without an explicit primary
// image reselects it.
func (s *Service) UpdateVehicle(ctx context.Context, id string, patch models.VehiclePatch) (*models.Vehicle, error) {
	if patch.Title != nil && patch.Slug == nil {
		slug := models.Slugify(*patch.Title)
		patch.Slug = &slug
	}
	if patch.Images != nil && patch.ImageURL == nil {
		img := primaryImage(*patch.Images)
		patch.ImageURL = &img
	}

	updated, err := s.store.UpdateVehicle(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if s.events != nil {
		s.events.PublishVehicleEvent("updated", updated.ID)
	}
	return updated, nil
}

// DeleteVehicle removes a vehicle; missing ids surface as ErrNotFound.
func (s *Service) DeleteVehicle(ctx context.Context, id string) error {
	ok, err := s.store.DeleteVehicle(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}
	if s.events != nil {
		s.events.PublishVehicleEvent("deleted", id)
	}
	s.logger.Info("vehicle deleted", slog.String("id", id))
	return nil
}

// FeaturedVehicles returns the homepage carousel entries.
func (s *Service) FeaturedVehicles(ctx context.Context, limit int) ([]models.Vehicle, error) {
	return s.store.FeaturedVehicles(ctx, limit)
}

// FleetStats returns the per-status fleet counters.
func (s *Service) FleetStats(ctx context.Context) (models.FleetStats, error) {
	return s.store.FleetStats(ctx)
}

// ListTestimonials returns the stored testimonials verbatim.
func (s *Service) ListTestimonials(ctx context.Context) ([]models.Testimonial, error) {
	return s.store.ListTestimonials(ctx)
}

// CreateLead stores the lead, then fires the notification email and the live
// event. Both side effects are best-effort: the lead is already durable.
func (s *Service) CreateLead(ctx context.Context, l models.Lead) (*models.Lead, error) {
	created, err := s.store.CreateLead(ctx, l)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.Notify(created)
	}
	if s.events != nil {
		s.events.PublishLead(created.ID)
	}
	s.logger.Info("lead created",
		slog.String("id", created.ID),
		slog.String("email", created.Email))
	return created, nil
}

// ListLeads returns all leads, newest first.
func (s *Service) ListLeads(ctx context.Context) ([]models.Lead, error) {
	return s.store.ListLeads(ctx)
}

// RecordPageView appends a traffic event. It never returns an error: tracking
// must not affect the request being tracked.
func (s *Service) RecordPageView(ctx context.Context, e models.Event) {
	if _, err := s.store.RecordEvent(ctx, e); err != nil {
		s.logger.Warn("page view not recorded",
			slog.String("path", e.PagePath),
			slog.String("error", err.Error()))
	}
}

// Dashboard assembles the admin analytics view over the given day window.
func (s *Service) Dashboard(ctx context.Context, days int) (*Dashboard, error) {
	if days <= 0 {
		days = analytics.DefaultWindowDays
	}

	events, err := s.store.ListEvents(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("dashboard events: %w", err)
	}
	summary := analytics.Aggregate(events, nowUTC(), days)

	stats, err := s.store.FleetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard fleet stats: %w", err)
	}

	mostViewed, err := s.store.MostViewed(ctx, 5)
	if err != nil {
		return nil, fmt.Errorf("dashboard most viewed: %w", err)
	}

	leads, err := s.store.ListLeads(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard leads: %w", err)
	}
	recent := leads
	if len(recent) > 5 {
		recent = recent[:5]
	}

	return &Dashboard{
		Analytics:   summary,
		FleetStats:  stats,
		MostViewed:  mostViewed,
		RecentLeads: recent,
		TotalLeads:  len(leads),
	}, nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// primaryImage picks the listing's primary image: the large variant when the
// upload pipeline produced one, otherwise the first image.
func primaryImage(images []string) string {
	for _, img := range images {
		if strings.Contains(img, "_large") {
			return img
		}
	}
	if len(images) > 0 {
		return images[0]
	}
	return ""
}
