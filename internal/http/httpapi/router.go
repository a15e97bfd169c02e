// Package httpapi wires the chi router: middleware chain, the transient
// cache and exposé routes, static file serving for cached images, and the
// DB-backed routes when a database is configured.
package httpapi

import (
	stdhttp "net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"server/internal/http/handlers"
	"server/internal/middleware"
)

func NewRouter(app *handlers.App) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(app.Logger))
	r.Use(middleware.CORS(app.Config.AllowedOrigins))

	r.Get("/healthz", app.Health)

	r.Route("/api/cache", func(r chi.Router) {
		r.Post("/property-data", app.CachePropertyData)
		r.Get("/property-data/{id}", app.GetCachedPropertyData)
		r.Put("/property-data/{id}", app.UpdateCachedPropertyData)
		r.Post("/property-images/{id}", app.CachePropertyImages)
		r.Get("/property-images/{id}", app.GetCachedPropertyImages)
		r.Get("/property-images/{id}/archive", app.ArchiveCachedPropertyImages)
		r.Post("/sweep", app.SweepCache)
	})

	r.Route("/api/expose", func(r chi.Router) {
		r.With(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute)).
			Post("/generate/{propertyId}", app.GenerateExpose)
		r.Get("/status/{exposeId}", app.GetExposeStatus)
		r.Get("/preview/{exposeId}", app.GetExposePreview)
		r.Delete("/{exposeId}", app.DeleteExpose)
	})

	// Cached images are served straight from the cache directory under the
	// same prefix their record URLs carry.
	prefix := strings.TrimRight(app.Config.CacheBaseURL, "/") + "/"
	fileServer := stdhttp.StripPrefix(prefix, stdhttp.FileServer(stdhttp.Dir(app.Config.CacheDir)))
	r.Get(prefix+"*", func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
		fileServer.ServeHTTP(w, req)
	})

	if app.Users != nil {
		r.Route("/api/auth", func(r chi.Router) {
			r.Post("/register", app.Register)
			r.Post("/login", app.Login)
		})
	}

	if app.Properties != nil {
		r.Route("/api/properties", func(r chi.Router) {
			r.Use(middleware.AuthJWT(app.Config.JWTSecret))
			r.Post("/", app.CreateProperty)
			r.Get("/", app.ListProperties)
			r.Get("/{id}", app.GetProperty)
			r.Put("/{id}", app.UpdateProperty)
			r.Delete("/{id}", app.DeleteProperty)
		})
	}

	return r
}
