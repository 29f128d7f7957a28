// Package seo renders the structured-data and crawler artifacts for the
// public site: JSON-LD blocks, per-page meta tags, the XML sitemap and
// robots.txt.
package seo

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/asapfoodtrailer/dealerd/internal/models"
)

// Business holds the dealership identity stamped into structured data.
type Business struct {
	Name     string
	Phone    string
	Email    string
	City     string
	Address  string
	WhatsApp string
	BaseURL  string
}

// Meta is the per-page head metadata.
type Meta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Canonical   string `json:"canonical"`
	OGImage     string `json:"og_image,omitempty"`
}

// Generator renders SEO artifacts for one business.
type Generator struct {
	biz Business
}

// New creates a Generator. BaseURL is normalized to have no trailing slash.
func New(biz Business) *Generator {
	biz.BaseURL = strings.TrimRight(biz.BaseURL, "/")
	return &Generator{biz: biz}
}

// BusinessJSONLD returns the LocalBusiness structured-data block.
func (g *Generator) BusinessJSONLD() map[string]any {
	ld := map[string]any{
		"@context":  "https://schema.org",
		"@type":     "AutoDealer",
		"name":      g.biz.Name,
		"telephone": g.biz.Phone,
		"email":     g.biz.Email,
		"url":       g.biz.BaseURL,
		"address": map[string]any{
			"@type":           "PostalAddress",
			"streetAddress":   g.biz.Address,
			"addressLocality": g.biz.City,
		},
	}
	if g.biz.WhatsApp != "" {
		ld["sameAs"] = []string{"https://wa.me/" + digitsOnly(g.biz.WhatsApp)}
	}
	return ld
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ProductJSONLD returns the Product structured-data block for a vehicle page.
func (g *Generator) ProductJSONLD(v *models.Vehicle) map[string]any {
	availability := "https://schema.org/InStock"
	if v.Status != models.StatusAvailable {
		availability = "https://schema.org/OutOfStock"
	}

	ld := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Product",
		"name":        v.Title,
		"description": v.Description,
		"url":         g.VehicleURL(v),
		"offers": map[string]any{
			"@type":         "Offer",
			"price":         v.Price,
			"priceCurrency": "USD",
			"availability":  availability,
			"seller": map[string]any{
				"@type": "AutoDealer",
				"name":  g.biz.Name,
			},
		},
	}
	if v.ImageURL != "" {
		ld["image"] = g.absolute(v.ImageURL)
	}
	return ld
}

// PageMeta returns head metadata for a static page path.
func (g *Generator) PageMeta(path string) Meta {
	title := g.biz.Name
	desc := fmt.Sprintf("%s in %s. Trucks and trailers for sale and rent.", g.biz.Name, g.biz.City)

	switch strings.Trim(path, "/") {
	case "trucks":
		title = "Trucks for Sale & Rent | " + g.biz.Name
		desc = fmt.Sprintf("Browse food trucks available from %s in %s.", g.biz.Name, g.biz.City)
	case "trailers":
		title = "Trailers for Sale & Rent | " + g.biz.Name
		desc = fmt.Sprintf("Browse food trailers available from %s in %s.", g.biz.Name, g.biz.City)
	case "contact":
		title = "Contact Us | " + g.biz.Name
		desc = fmt.Sprintf("Get in touch with %s at %s.", g.biz.Name, g.biz.Phone)
	}

	return Meta{
		Title:       title,
		Description: desc,
		Canonical:   g.biz.BaseURL + "/" + strings.TrimLeft(path, "/"),
	}
}

// VehicleMeta returns head metadata for a vehicle detail page.
func (g *Generator) VehicleMeta(v *models.Vehicle) Meta {
	desc := v.Description
	if r := []rune(desc); len(r) > 155 {
		desc = string(r[:152]) + "..."
	}
	return Meta{
		Title:       fmt.Sprintf("%s | %s", v.Title, g.biz.Name),
		Description: desc,
		Canonical:   g.VehicleURL(v),
		OGImage:     g.absolute(v.ImageURL),
	}
}

// VehicleURL returns the canonical absolute URL of a vehicle page.
func (g *Generator) VehicleURL(v *models.Vehicle) string {
	return fmt.Sprintf("%s/%ss/%s", g.biz.BaseURL, v.Category, v.Slug)
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap renders the XML sitemap covering the static pages and every
// vehicle detail page.
func (g *Generator) Sitemap(vehicles []*models.Vehicle, now time.Time) ([]byte, error) {
	today := now.UTC().Format("2006-01-02")

	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, page := range []struct {
		path     string
		priority float64
	}{
		{"/", 1.0},
		{"/trucks", 0.9},
		{"/trailers", 0.9},
		{"/contact", 0.7},
	} {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        g.biz.BaseURL + page.path,
			LastMod:    today,
			ChangeFreq: "weekly",
			Priority:   page.priority,
		})
	}

	for _, v := range vehicles {
		u := sitemapURL{
			Loc:        g.VehicleURL(v),
			ChangeFreq: "weekly",
			Priority:   0.8,
		}
		if !v.CreatedAt.IsZero() {
			u.LastMod = v.CreatedAt.UTC().Format("2006-01-02")
		}
		set.URLs = append(set.URLs, u)
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sitemap: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// Robots renders robots.txt, pointing crawlers at the sitemap and keeping
// them out of the API and admin surfaces.
func (g *Generator) Robots() []byte {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /api/\n")
	b.WriteString("Disallow: /admin\n")
	fmt.Fprintf(&b, "\nSitemap: %s/sitemap.xml\n", g.biz.BaseURL)
	return []byte(b.String())
}

func (g *Generator) absolute(u string) string {
	if u == "" || strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return g.biz.BaseURL + u
}

// MarshalJSONLD serializes a structured-data block for embedding in a page.
func MarshalJSONLD(block map[string]any) ([]byte, error) {
	return json.Marshal(block)
}
