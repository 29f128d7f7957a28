package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/asapfoodtrailer/dealerd/internal/apperr"
	"github.com/asapfoodtrailer/dealerd/internal/models"
)

// Collection names in the remote database.
const (
	colVehicles     = "vehicles"
	colLeads        = "leads"
	colAnalytics    = "analytics"
	colTestimonials = "testimonials"
)

// MongoStore implements Store over a managed MongoDB database. Every write is
// a single per-document operation; no batching, no transactions. Driver
// errors propagate to the caller unchanged apart from wrapping.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongo connects to uri and pings the server so a bad credential fails
// fast enough for the factory's local-mode fallback.
func NewMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, fmt.Errorf("store: mongo uri is empty")
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("store: mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("store: mongo ping: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(database)}, nil
}

func (s *MongoStore) vehicles() *mongo.Collection {
	return s.db.Collection(colVehicles)
}

// ListVehicles pushes the exact-match predicates into the query and applies
// the full predicate set in memory afterwards, so price bounds and substring
// search behave identically to the flat-file backend.
func (s *MongoStore) ListVehicles(ctx context.Context, f *Filters) ([]models.Vehicle, error) {
	query := bson.M{}
	if f != nil {
		if f.Category != "" {
			query["category"] = f.Category
		}
		if f.Condition != "" {
			query["condition"] = f.Condition
		}
		if f.Usage != "" {
			query["usage"] = f.Usage
		}
		if f.Status != "" {
			query["status"] = f.Status
		}
	}
	cur, err := s.vehicles().Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: list vehicles: %w", err)
	}
	var all []models.Vehicle
	if err := cur.All(ctx, &all); err != nil {
		return nil, fmt.Errorf("store: decode vehicles: %w", err)
	}
	out := make([]models.Vehicle, 0, len(all))
	for _, v := range all {
		if f.Match(&v) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *MongoStore) GetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	var v models.Vehicle
	err := s.vehicles().FindOne(ctx, bson.M{"_id": id}).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get vehicle: %w", err)
	}
	return &v, nil
}

func (s *MongoStore) GetVehicleBySlug(ctx context.Context, slug string) (*models.Vehicle, error) {
	var v models.Vehicle
	err := s.vehicles().FindOne(ctx, bson.M{"slug": slug}).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get vehicle by slug: %w", err)
	}
	return &v, nil
}

func (s *MongoStore) CreateVehicle(ctx context.Context, v models.Vehicle) (*models.Vehicle, error) {
	v.ID = newID()
	v.CreatedAt = nowUTC()
	v.Views = 0
	if _, err := s.vehicles().InsertOne(ctx, v); err != nil {
		return nil, fmt.Errorf("store: create vehicle: %w", err)
	}
	return &v, nil
}

func (s *MongoStore) UpdateVehicle(ctx context.Context, id string, patch models.VehiclePatch) (*models.Vehicle, error) {
	set := patchSet(patch)
	if len(set) == 0 {
		return s.GetVehicle(ctx, id)
	}
	var v models.Vehicle
	err := s.vehicles().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: update vehicle: %w", err)
	}
	return &v, nil
}

func (s *MongoStore) DeleteVehicle(ctx context.Context, id string) (bool, error) {
	res, err := s.vehicles().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("store: delete vehicle: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (s *MongoStore) IncrementViews(ctx context.Context, id string) error {
	_, err := s.vehicles().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return fmt.Errorf("store: increment views: %w", err)
	}
	return nil
}

// FleetStats counts by full scan, matching the flat-file backend rather than
// relying on server-side aggregation.
func (s *MongoStore) FleetStats(ctx context.Context) (models.FleetStats, error) {
	all, err := s.ListVehicles(ctx, nil)
	if err != nil {
		return models.FleetStats{}, err
	}
	return countStats(all), nil
}

func (s *MongoStore) FeaturedVehicles(ctx context.Context, limit int) ([]models.Vehicle, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.vehicles().Find(ctx, bson.M{
		"featured": true,
		"status":   models.StatusAvailable,
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("store: featured vehicles: %w", err)
	}
	var out []models.Vehicle
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("store: decode featured: %w", err)
	}
	return out, nil
}

func (s *MongoStore) MostViewed(ctx context.Context, limit int) ([]models.Vehicle, error) {
	opts := options.Find().SetSort(bson.D{{Key: "views", Value: -1}, {Key: "created_at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.vehicles().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("store: most viewed: %w", err)
	}
	var out []models.Vehicle
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("store: decode most viewed: %w", err)
	}
	return out, nil
}

func (s *MongoStore) CreateLead(ctx context.Context, l models.Lead) (*models.Lead, error) {
	l.ID = newID()
	l.CreatedAt = nowUTC()
	if _, err := s.db.Collection(colLeads).InsertOne(ctx, l); err != nil {
		return nil, fmt.Errorf("store: create lead: %w", err)
	}
	return &l, nil
}

func (s *MongoStore) ListLeads(ctx context.Context) ([]models.Lead, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.db.Collection(colLeads).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("store: list leads: %w", err)
	}
	var out []models.Lead
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("store: decode leads: %w", err)
	}
	sortLeadsNewestFirst(out)
	return out, nil
}

func (s *MongoStore) RecordEvent(ctx context.Context, e models.Event) (*models.Event, error) {
	e.ID = newID()
	e.Timestamp = nowUTC().Format(time.RFC3339Nano)
	if _, err := s.db.Collection(colAnalytics).InsertOne(ctx, e); err != nil {
		return nil, fmt.Errorf("store: record event: %w", err)
	}
	return &e, nil
}

// ListEvents fetches the log and applies the shared day-window filter in
// memory. Filtering ISO strings server-side would drop events whose
// timestamps do not parse, which the aggregator needs to see.
func (s *MongoStore) ListEvents(ctx context.Context, sinceDays int) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := s.db.Collection(colAnalytics).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("store: list events: %w", err)
	}
	var out []models.Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("store: decode events: %w", err)
	}
	return eventsSince(out, nowUTC(), sinceDays), nil
}

func (s *MongoStore) ListTestimonials(ctx context.Context) ([]models.Testimonial, error) {
	cur, err := s.db.Collection(colTestimonials).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("store: list testimonials: %w", err)
	}
	var out []models.Testimonial
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("store: decode testimonials: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// patchSet builds the $set document from the non-nil patch fields.
func patchSet(p models.VehiclePatch) bson.M {
	set := bson.M{}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Slug != nil {
		set["slug"] = *p.Slug
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Condition != nil {
		set["condition"] = *p.Condition
	}
	if p.Usage != nil {
		set["usage"] = *p.Usage
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.Featured != nil {
		set["featured"] = *p.Featured
	}
	if p.Specs != nil {
		set["specs"] = *p.Specs
	}
	if p.ImageURL != nil {
		set["image_url"] = *p.ImageURL
	}
	if p.Images != nil {
		set["images"] = *p.Images
	}
	return set
}
