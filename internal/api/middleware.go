// Package api implements the dealership REST API using chi.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/asapfoodtrailer/dealerd/internal/models"
)

// AuthMiddleware returns middleware that validates a Bearer token.
// If enabled is false, all requests pass through (disabled mode).
// If enabled is true, requests must carry a valid "Authorization: Bearer <token>" header.
func AuthMiddleware(enabled bool, token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != token {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// recorder is the page-view sink the tracking middleware writes into.
// *catalog.Service satisfies it.
type recorder interface {
	RecordPageView(ctx context.Context, e models.Event)
}

// TrackMiddleware records one traffic event per successfully served public
// request (2xx responses only, so rejected submissions and 404s stay out of
// the stats). It runs after the handler and never affects the response; the
// device type comes from the User-Agent, the source from the Referer, and
// the city is the configured business location (no geo lookup is performed).
func TrackMiddleware(rec recorder, city string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if ww.Status() < http.StatusOK || ww.Status() >= http.StatusMultipleChoices {
				return
			}
			rec.RecordPageView(r.Context(), models.Event{
				PagePath:   r.URL.Path,
				DeviceType: deviceType(r.UserAgent()),
				Source:     trafficSource(r.Referer()),
				City:       city,
			})
		})
	}
}

func deviceType(userAgent string) string {
	if strings.Contains(userAgent, "Mobile") {
		return "mobile"
	}
	return "desktop"
}

func trafficSource(referer string) string {
	referer = strings.ToLower(referer)
	switch {
	case referer == "":
		return "direct"
	case strings.Contains(referer, "google"):
		return "google"
	case strings.Contains(referer, "facebook"):
		return "facebook"
	default:
		return "referral"
	}
}
