package seo

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/asapfoodtrailer/dealerd/internal/models"
)

func testGenerator() *Generator {
	return New(Business{
		Name:    "ASAP Food Trailer",
		Phone:   "+1-713-555-0101",
		Email:   "sales@asapfoodtrailer.com",
		City:    "Houston",
		Address: "100 Commerce St",
		BaseURL: "https://asapfoodtrailer.com/",
	})
}

func testVehicle() *models.Vehicle {
	return &models.Vehicle{
		ID:          "v1",
		Title:       "16ft Concession Trailer",
		Slug:        "16ft-concession-trailer",
		Category:    models.CategoryTrailer,
		Price:       24500,
		Status:      models.StatusAvailable,
		Description: "Fully equipped 16ft concession trailer.",
		ImageURL:    "/uploads/abc_large.jpg",
		CreatedAt:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestVehicleURL(t *testing.T) {
	g := testGenerator()
	got := g.VehicleURL(testVehicle())
	want := "https://asapfoodtrailer.com/trailers/16ft-concession-trailer"
	if got != want {
		t.Errorf("VehicleURL = %q, want %q", got, want)
	}
}

func TestProductJSONLD(t *testing.T) {
	g := testGenerator()
	ld := g.ProductJSONLD(testVehicle())

	if ld["@type"] != "Product" {
		t.Errorf("@type = %v", ld["@type"])
	}
	if ld["image"] != "https://asapfoodtrailer.com/uploads/abc_large.jpg" {
		t.Errorf("image = %v, want absolute URL", ld["image"])
	}
	offers, ok := ld["offers"].(map[string]any)
	if !ok {
		t.Fatalf("offers missing")
	}
	if offers["price"] != 24500 {
		t.Errorf("price = %v", offers["price"])
	}
	if offers["availability"] != "https://schema.org/InStock" {
		t.Errorf("availability = %v", offers["availability"])
	}
}

func TestProductJSONLD_SoldOutOfStock(t *testing.T) {
	v := testVehicle()
	v.Status = models.StatusSold
	ld := testGenerator().ProductJSONLD(v)
	offers := ld["offers"].(map[string]any)
	if offers["availability"] != "https://schema.org/OutOfStock" {
		t.Errorf("availability = %v, want OutOfStock", offers["availability"])
	}
}

func TestBusinessJSONLD(t *testing.T) {
	ld := testGenerator().BusinessJSONLD()
	if ld["@type"] != "AutoDealer" {
		t.Errorf("@type = %v", ld["@type"])
	}
	addr, ok := ld["address"].(map[string]any)
	if !ok || addr["addressLocality"] != "Houston" {
		t.Errorf("address = %v", ld["address"])
	}
	if _, ok := ld["sameAs"]; ok {
		t.Error("sameAs present without a WhatsApp number")
	}
}

func TestBusinessJSONLD_WhatsAppLink(t *testing.T) {
	g := New(Business{
		Name:     "ASAP Food Trailer",
		WhatsApp: "+1 (713) 555-0101",
		BaseURL:  "https://asapfoodtrailer.com",
	})
	ld := g.BusinessJSONLD()
	links, ok := ld["sameAs"].([]string)
	if !ok || len(links) != 1 || links[0] != "https://wa.me/17135550101" {
		t.Errorf("sameAs = %v", ld["sameAs"])
	}
}

func TestPageMeta(t *testing.T) {
	g := testGenerator()

	home := g.PageMeta("/")
	if home.Title != "ASAP Food Trailer" {
		t.Errorf("home title = %q", home.Title)
	}

	trucks := g.PageMeta("/trucks")
	if !strings.Contains(trucks.Title, "Trucks") {
		t.Errorf("trucks title = %q", trucks.Title)
	}
	if trucks.Canonical != "https://asapfoodtrailer.com/trucks" {
		t.Errorf("canonical = %q", trucks.Canonical)
	}
}

func TestVehicleMeta_TruncatesDescription(t *testing.T) {
	v := testVehicle()
	v.Description = strings.Repeat("x", 300)
	m := testGenerator().VehicleMeta(v)
	if len(m.Description) != 155 || !strings.HasSuffix(m.Description, "...") {
		t.Errorf("description len = %d, %q", len(m.Description), m.Description[len(m.Description)-5:])
	}
}

func TestVehicleMeta_TruncatesOnRuneBoundary(t *testing.T) {
	v := testVehicle()
	v.Description = strings.Repeat("ñ", 300)
	m := testGenerator().VehicleMeta(v)
	if !utf8.ValidString(m.Description) {
		t.Fatalf("description is not valid UTF-8: %q", m.Description)
	}
	if got := utf8.RuneCountInString(m.Description); got != 155 {
		t.Errorf("description runes = %d, want 155", got)
	}
	if !strings.HasSuffix(m.Description, "...") {
		t.Errorf("description = %q, want ... suffix", m.Description)
	}
}

func TestSitemap(t *testing.T) {
	g := testGenerator()
	out, err := g.Sitemap([]*models.Vehicle{testVehicle()}, time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Sitemap: %v", err)
	}
	s := string(out)

	if !strings.HasPrefix(s, "<?xml") {
		t.Errorf("missing xml header")
	}
	for _, want := range []string{
		"<loc>https://asapfoodtrailer.com/</loc>",
		"<loc>https://asapfoodtrailer.com/trucks</loc>",
		"<loc>https://asapfoodtrailer.com/trailers/16ft-concession-trailer</loc>",
		"<lastmod>2026-08-01</lastmod>",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("sitemap missing %q", want)
		}
	}
}

func TestRobots(t *testing.T) {
	s := string(testGenerator().Robots())
	if !strings.Contains(s, "Disallow: /api/") {
		t.Errorf("robots missing api disallow: %q", s)
	}
	if !strings.Contains(s, "Sitemap: https://asapfoodtrailer.com/sitemap.xml") {
		t.Errorf("robots missing sitemap line: %q", s)
	}
}
