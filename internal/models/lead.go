package models

import "time"

// Lead is a contact/quote request. Leads are append-only: the core never
// updates or deletes them. VehicleID is optional and is not checked against
// the vehicle collection.
type Lead struct {
	ID           string    `json:"id" bson:"_id"`
	CustomerName string    `json:"customer_name" bson:"customer_name"`
	Email        string    `json:"email" bson:"email"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	VehicleID    string    `json:"vehicle_id,omitempty" bson:"vehicle_id,omitempty"`
	Message      string    `json:"message" bson:"message"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// Event is one recorded page view. Timestamp is kept as the raw ISO-8601
// string it was recorded with; the analytics aggregator parses it and
// silently skips events whose timestamp does not parse.
type Event struct {
	ID         string `json:"id" bson:"_id"`
	PagePath   string `json:"page_path" bson:"page_path"`
	DeviceType string `json:"device_type" bson:"device_type"`
	Source     string `json:"source" bson:"source"`
	City       string `json:"location_city" bson:"location_city"`
	Timestamp  string `json:"timestamp" bson:"timestamp"`
}

// Testimonial is an opaque pass-through record; the core only reads it.
type Testimonial map[string]any
