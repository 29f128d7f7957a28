// Package models defines the domain types for the dealership platform.
package models

import (
	"strings"
	"time"
)

// Vehicle categories.
const (
	CategoryTruck   = "truck"
	CategoryTrailer = "trailer"
)

// Vehicle conditions.
const (
	ConditionNew  = "new"
	ConditionUsed = "used"
)

// Vehicle usages.
const (
	UsageSale = "sale"
	UsageRent = "rent"
)

// Vehicle statuses.
const (
	StatusAvailable = "available"
	StatusRented    = "rented"
	StatusSold      = "sold"
)

// Specs holds the nested specification block of a vehicle.
type Specs struct {
	Length     string   `json:"length" bson:"length"`
	Width      string   `json:"width" bson:"width"`
	Height     string   `json:"height" bson:"height"`
	Voltage    string   `json:"voltage" bson:"voltage"`
	Gas        string   `json:"gas" bson:"gas"`
	Plumbing   string   `json:"plumbing" bson:"plumbing"`
	Generator  string   `json:"generator" bson:"generator"`
	HoodSystem string   `json:"hood_system" bson:"hood_system"`
	Equipment  []string `json:"equipment" bson:"equipment"`
}

// Vehicle is a truck or trailer listing. The ID is assigned once at creation
// and never reassigned. Slug uniqueness is not enforced; two vehicles may
// share a slug and lookups resolve to the first match in store order.
type Vehicle struct {
	ID          string    `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Slug        string    `json:"slug" bson:"slug"`
	Description string    `json:"description" bson:"description"`
	Price       int       `json:"price" bson:"price"`
	Category    string    `json:"category" bson:"category"`
	Condition   string    `json:"condition" bson:"condition"`
	Usage       string    `json:"usage" bson:"usage"`
	Status      string    `json:"status" bson:"status"`
	Featured    bool      `json:"featured" bson:"featured"`
	Specs       Specs     `json:"specs" bson:"specs"`
	ImageURL    string    `json:"image_url" bson:"image_url"`
	Images      []string  `json:"images" bson:"images"`
	Views       int       `json:"views" bson:"views"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// VehiclePatch carries a partial update. Nil fields are left untouched
// (shallow merge onto the stored record).
type VehiclePatch struct {
	Title       *string   `json:"title,omitempty" bson:"title,omitempty"`
	Slug        *string   `json:"slug,omitempty" bson:"slug,omitempty"`
	Description *string   `json:"description,omitempty" bson:"description,omitempty"`
	Price       *int      `json:"price,omitempty" bson:"price,omitempty"`
	Category    *string   `json:"category,omitempty" bson:"category,omitempty"`
	Condition   *string   `json:"condition,omitempty" bson:"condition,omitempty"`
	Usage       *string   `json:"usage,omitempty" bson:"usage,omitempty"`
	Status      *string   `json:"status,omitempty" bson:"status,omitempty"`
	Featured    *bool     `json:"featured,omitempty" bson:"featured,omitempty"`
	Specs       *Specs    `json:"specs,omitempty" bson:"specs,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty" bson:"image_url,omitempty"`
	Images      *[]string `json:"images,omitempty" bson:"images,omitempty"`
}

// Apply merges the non-nil patch fields onto v.
func (p VehiclePatch) Apply(v *Vehicle) {
	if p.Title != nil {
		v.Title = *p.Title
	}
	if p.Slug != nil {
		v.Slug = *p.Slug
	}
	if p.Description != nil {
		v.Description = *p.Description
	}
	if p.Price != nil {
		v.Price = *p.Price
	}
	if p.Category != nil {
		v.Category = *p.Category
	}
	if p.Condition != nil {
		v.Condition = *p.Condition
	}
	if p.Usage != nil {
		v.Usage = *p.Usage
	}
	if p.Status != nil {
		v.Status = *p.Status
	}
	if p.Featured != nil {
		v.Featured = *p.Featured
	}
	if p.Specs != nil {
		v.Specs = *p.Specs
	}
	if p.ImageURL != nil {
		v.ImageURL = *p.ImageURL
	}
	if p.Images != nil {
		v.Images = *p.Images
	}
}

// FleetStats holds fleet status counters.
type FleetStats struct {
	Total     int `json:"total" bson:"total"`
	Available int `json:"available" bson:"available"`
	Rented    int `json:"rented" bson:"rented"`
	Sold      int `json:"sold" bson:"sold"`
}

// Slugify derives a URL slug from a title: lowercase, spaces to hyphens,
// everything except letters, digits and hyphens removed.
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = strings.ReplaceAll(s, " ", "-")
	var b strings.Builder
	for _, r := range s {
		if r == '-' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
