package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/asapfoodtrailer/dealerd/internal/apperr"
	"github.com/asapfoodtrailer/dealerd/internal/models"
)

// maxStoredEvents caps the flat-file analytics log; the oldest events beyond
// the cap are silently dropped.
const maxStoredEvents = 10000

// document is the persisted flat-file layout: a single JSON document with
// four top-level arrays. External tooling depends on this exact shape.
type document struct {
	Vehicles     []models.Vehicle     `json:"vehicles"`
	Leads        []models.Lead        `json:"leads"`
	Analytics    []models.Event       `json:"analytics"`
	Testimonials []models.Testimonial `json:"testimonials"`
}

// FileStore implements Store over a single JSON file. The file is loaded
// lazily on first access and cached for the process lifetime; every mutation
// rewrites the whole file atomically (tmp → fsync → rename). Concurrent
// processes sharing the file are not coordinated: last writer wins, and
// interleaved view increments can be lost. That is an accepted limitation.
type FileStore struct {
	path string

	mu   sync.Mutex
	data *document // nil until first access
}

// NewFile creates a FileStore backed by path. The file is not touched until
// the first operation.
func NewFile(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Reload drops the in-memory cache so the next access re-reads the file.
func (s *FileStore) Reload() {
	s.mu.Lock()
	s.data = nil
	s.mu.Unlock()
}

// load returns the cached document, reading the file on first access.
// Callers must hold mu. A missing file yields an empty document.
func (s *FileStore) load() (*document, error) {
	if s.data != nil {
		return s.data, nil
	}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.data = &document{}
		return s.data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", s.path, err)
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("store: parse %s: %w", s.path, err)
	}
	s.data = &doc
	return s.data, nil
}

// save serializes the whole document and replaces the file atomically.
// Callers must hold mu. Write failures propagate to the calling operation;
// there is no retry.
func (s *FileStore) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".dealerd-tmp-*")
	if err != nil {
		return fmt.Errorf("store: create temp: %w", err)
	}
	tmpName := tmp.Name()
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()
	if _, err := tmp.Write(raw); err != nil {
		return fmt.Errorf("store: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("store: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("store: rename: %w", err)
	}
	success = true
	return nil
}

func (s *FileStore) ListVehicles(_ context.Context, f *Filters) ([]models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]models.Vehicle, 0, len(doc.Vehicles))
	for _, v := range doc.Vehicles {
		if f.Match(&v) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *FileStore) GetVehicle(_ context.Context, id string) (*models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range doc.Vehicles {
		if doc.Vehicles[i].ID == id {
			v := doc.Vehicles[i]
			return &v, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *FileStore) GetVehicleBySlug(_ context.Context, slug string) (*models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range doc.Vehicles {
		if doc.Vehicles[i].Slug == slug {
			v := doc.Vehicles[i]
			return &v, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *FileStore) CreateVehicle(_ context.Context, v models.Vehicle) (*models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	v.ID = newID()
	v.CreatedAt = nowUTC()
	v.Views = 0
	doc.Vehicles = append(doc.Vehicles, v)
	if err := s.save(); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *FileStore) UpdateVehicle(_ context.Context, id string, patch models.VehiclePatch) (*models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range doc.Vehicles {
		if doc.Vehicles[i].ID == id {
			patch.Apply(&doc.Vehicles[i])
			if err := s.save(); err != nil {
				return nil, err
			}
			v := doc.Vehicles[i]
			return &v, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *FileStore) DeleteVehicle(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return false, err
	}
	for i := range doc.Vehicles {
		if doc.Vehicles[i].ID == id {
			doc.Vehicles = append(doc.Vehicles[:i], doc.Vehicles[i+1:]...)
			if err := s.save(); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func (s *FileStore) IncrementViews(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	for i := range doc.Vehicles {
		if doc.Vehicles[i].ID == id {
			doc.Vehicles[i].Views++
			return s.save()
		}
	}
	return nil
}

func (s *FileStore) FleetStats(_ context.Context) (models.FleetStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return models.FleetStats{}, err
	}
	return countStats(doc.Vehicles), nil
}

func (s *FileStore) FeaturedVehicles(_ context.Context, limit int) ([]models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]models.Vehicle, 0, limit)
	for _, v := range doc.Vehicles {
		if v.Featured && v.Status == models.StatusAvailable {
			out = append(out, v)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *FileStore) MostViewed(_ context.Context, limit int) ([]models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]models.Vehicle, len(doc.Vehicles))
	copy(out, doc.Vehicles)
	// Stable so ties keep their insertion order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Views > out[j].Views
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *FileStore) CreateLead(_ context.Context, l models.Lead) (*models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	l.ID = newID()
	l.CreatedAt = nowUTC()
	doc.Leads = append(doc.Leads, l)
	if err := s.save(); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *FileStore) ListLeads(_ context.Context) ([]models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]models.Lead, len(doc.Leads))
	copy(out, doc.Leads)
	sortLeadsNewestFirst(out)
	return out, nil
}

func (s *FileStore) RecordEvent(_ context.Context, e models.Event) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	e.ID = newID()
	e.Timestamp = nowUTC().Format(time.RFC3339Nano)
	doc.Analytics = append(doc.Analytics, e)
	if n := len(doc.Analytics); n > maxStoredEvents {
		doc.Analytics = doc.Analytics[n-maxStoredEvents:]
	}
	if err := s.save(); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *FileStore) ListEvents(_ context.Context, sinceDays int) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return eventsSince(doc.Analytics, nowUTC(), sinceDays), nil
}

func (s *FileStore) ListTestimonials(_ context.Context) ([]models.Testimonial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]models.Testimonial, len(doc.Testimonials))
	copy(out, doc.Testimonials)
	return out, nil
}

func (s *FileStore) Close(context.Context) error {
	return nil
}
