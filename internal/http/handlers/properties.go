package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"server/internal/domain"
)

// CreateProperty persists a durable property listing.
func (a *App) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var p domain.Property
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	p.ID = uuid.NewString()
	if err := a.Properties.Create(r.Context(), &p); err != nil {
		a.Logger.Error().Err(err).Msg("properties: create failed")
		a.error(w, http.StatusBadRequest, "failed to create property")
		return
	}
	a.json(w, http.StatusCreated, p)
}

// ListProperties returns durable listings with skip/limit pagination.
func (a *App) ListProperties(w http.ResponseWriter, r *http.Request) {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := a.Properties.List(r.Context(), skip, limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("properties: list failed")
		a.error(w, http.StatusInternalServerError, "failed to list properties")
		return
	}
	if items == nil {
		items = []domain.Property{}
	}
	a.json(w, http.StatusOK, items)
}

// GetProperty returns one durable listing.
func (a *App) GetProperty(w http.ResponseWriter, r *http.Request) {
	p, err := a.Properties.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "Property not found")
			return
		}
		a.Logger.Error().Err(err).Msg("properties: get failed")
		a.error(w, http.StatusInternalServerError, "failed to load property")
		return
	}
	a.json(w, http.StatusOK, p)
}

// UpdateProperty overwrites a durable listing.
func (a *App) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	var p domain.Property
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	p.ID = chi.URLParam(r, "id")
	if err := a.Properties.Update(r.Context(), &p); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "Property not found")
			return
		}
		a.Logger.Error().Err(err).Msg("properties: update failed")
		a.error(w, http.StatusInternalServerError, "failed to update property")
		return
	}
	a.json(w, http.StatusOK, p)
}

// DeleteProperty removes a durable listing.
func (a *App) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	if err := a.Properties.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "Property not found")
			return
		}
		a.Logger.Error().Err(err).Msg("properties: delete failed")
		a.error(w, http.StatusInternalServerError, "failed to delete property")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"message": "Property deleted successfully"})
}
