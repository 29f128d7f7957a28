// Package store implements the persistence façade: one interface over a
// flat-file document store and a managed MongoDB backend, selected once at
// startup. Business logic never branches on the storage mode; the branch
// lives in New only.
package store

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/asapfoodtrailer/dealerd/internal/models"
)

// Storage modes.
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

// Store is the uniform CRUD/query interface over both backends. Single-record
// reads return apperr.ErrNotFound for missing ids; callers map that to 404.
type Store interface {
	// ListVehicles returns vehicles matching every supplied filter (AND
	// semantics), in the backend's natural order. A nil filter set means
	// the full unfiltered list.
	ListVehicles(ctx context.Context, f *Filters) ([]models.Vehicle, error)
	GetVehicle(ctx context.Context, id string) (*models.Vehicle, error)
	// GetVehicleBySlug returns the first match in backend-natural order.
	// Slug uniqueness is not enforced, so collisions resolve first-wins.
	GetVehicleBySlug(ctx context.Context, slug string) (*models.Vehicle, error)
	// CreateVehicle assigns id, creation timestamp, and a zero view count.
	// Field shapes are not validated here; callers pre-validate.
	CreateVehicle(ctx context.Context, v models.Vehicle) (*models.Vehicle, error)
	// UpdateVehicle shallow-merges the non-nil patch fields onto the record.
	UpdateVehicle(ctx context.Context, id string, patch models.VehiclePatch) (*models.Vehicle, error)
	// DeleteVehicle reports whether a record existed and was removed.
	DeleteVehicle(ctx context.Context, id string) (bool, error)
	// IncrementViews bumps the view counter. Missing ids are a no-op.
	// Not atomic across processes on the flat-file backend; last write wins.
	IncrementViews(ctx context.Context, id string) error
	// FleetStats counts vehicles per status by full scan; no incremental
	// counters are maintained.
	FleetStats(ctx context.Context) (models.FleetStats, error)
	// FeaturedVehicles returns up to limit vehicles with featured=true and
	// status=available, in backend-natural order.
	FeaturedVehicles(ctx context.Context, limit int) ([]models.Vehicle, error)
	// MostViewed returns up to limit vehicles sorted by descending view
	// count; ties keep their original relative order.
	MostViewed(ctx context.Context, limit int) ([]models.Vehicle, error)

	// CreateLead assigns id and creation timestamp and appends the lead.
	CreateLead(ctx context.Context, l models.Lead) (*models.Lead, error)
	// ListLeads returns leads newest-first on both backends.
	ListLeads(ctx context.Context) ([]models.Lead, error)

	// RecordEvent assigns id and timestamp and appends the event. The
	// flat-file backend caps the retained log at the most recent 10000.
	RecordEvent(ctx context.Context, e models.Event) (*models.Event, error)
	// ListEvents returns events from the last sinceDays days on both
	// backends; sinceDays <= 0 means no window. Events whose stored
	// timestamp does not parse are always returned, so the aggregator
	// sees them.
	ListEvents(ctx context.Context, sinceDays int) ([]models.Event, error)

	ListTestimonials(ctx context.Context) ([]models.Testimonial, error)

	Close(ctx context.Context) error
}

// Options configures the store factory.
type Options struct {
	Mode          string
	DataFile      string
	MongoURI      string
	MongoDatabase string
}

// New selects a backend by mode. A failed remote initialization demotes the
// process to local mode with a warning instead of failing startup: the façade
// must never refuse to start because a remote credential was missing.
func New(ctx context.Context, opts Options, logger *slog.Logger) (Store, error) {
	if opts.Mode == ModeRemote {
		s, err := NewMongo(ctx, opts.MongoURI, opts.MongoDatabase)
		if err == nil {
			return s, nil
		}
		logger.Warn("remote store init failed, falling back to local mode",
			slog.String("error", err.Error()))
	}
	return NewFile(opts.DataFile), nil
}

// Filters groups the optional vehicle list predicates. Zero values mean no
// constraint; MinPrice/MaxPrice are inclusive integer bounds.
type Filters struct {
	Category  string
	Condition string
	Usage     string
	Status    string
	MinPrice  *int
	MaxPrice  *int
	Search    string
}

// Match reports whether v satisfies every supplied predicate.
func (f *Filters) Match(v *models.Vehicle) bool {
	if f == nil {
		return true
	}
	if f.Category != "" && v.Category != f.Category {
		return false
	}
	if f.Condition != "" && v.Condition != f.Condition {
		return false
	}
	if f.Usage != "" && v.Usage != f.Usage {
		return false
	}
	if f.Status != "" && v.Status != f.Status {
		return false
	}
	if f.MinPrice != nil && v.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && v.Price > *f.MaxPrice {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(v.Title), q) &&
			!strings.Contains(strings.ToLower(v.Description), q) {
			return false
		}
	}
	return true
}

// ParseEventTime parses a stored event timestamp: RFC 3339 first, then the
// timezone-less ISO forms (T or space separated, or date only) interpreted
// as UTC.
func ParseEventTime(ts string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t, nil
	}
	var (
		t   time.Time
		err error
	)
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err = time.Parse(layout, ts); err == nil {
			return t, nil
		}
	}
	return t, err
}

// eventsSince applies the day-window uniformly for both backends. Events with
// unparseable timestamps pass through: dropping them here would silently
// change the aggregator's total-view count.
func eventsSince(events []models.Event, now time.Time, days int) []models.Event {
	if days <= 0 {
		return events
	}
	cutoff := now.AddDate(0, 0, -days)
	out := make([]models.Event, 0, len(events))
	for _, ev := range events {
		t, err := ParseEventTime(ev.Timestamp)
		if err != nil || !t.Before(cutoff) {
			out = append(out, ev)
		}
	}
	return out
}

// sortLeadsNewestFirst normalizes lead order across backends.
func sortLeadsNewestFirst(leads []models.Lead) {
	sort.SliceStable(leads, func(i, j int) bool {
		return leads[i].CreatedAt.After(leads[j].CreatedAt)
	})
}

func countStats(vehicles []models.Vehicle) models.FleetStats {
	stats := models.FleetStats{Total: len(vehicles)}
	for _, v := range vehicles {
		switch v.Status {
		case models.StatusAvailable:
			stats.Available++
		case models.StatusRented:
			stats.Rented++
		case models.StatusSold:
			stats.Sold++
		}
	}
	return stats
}

func newID() string {
	return uuid.NewString()
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
