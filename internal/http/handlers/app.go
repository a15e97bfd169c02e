// Package handlers implements the HTTP surface: the transient cache and
// exposé endpoints around the generation pipeline, plus the durable property
// CRUD and auth glue.
package handlers

import (
	"encoding/json"
	"net/http"

	"server/internal/cache"
	"server/internal/domain"
	"server/internal/expose"
	"server/internal/infra"
)

// App is the handler container holding every collaborator the routes need.
// Properties and Users are nil when no database is configured; the router
// skips mounting their routes in that case.
type App struct {
	Store      *cache.Store
	Ingestor   *cache.Ingestor
	Sweeper    *cache.Sweeper
	Manager    *expose.Manager
	Properties domain.PropertyRepository
	Users      domain.UserRepository
	Config     *infra.Config
	Logger     infra.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]string{"detail": message})
}
