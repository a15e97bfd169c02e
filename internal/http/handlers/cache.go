package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"server/internal/cache"
	"server/internal/domain"
	"server/pkg/zip"
)

const maxUploadMemory = 32 << 20 // 32 MiB

// CachePropertyData stages a freeform property bundle and returns its id.
func (a *App) CachePropertyData(w http.ResponseWriter, r *http.Request) {
	var bundle domain.PropertyBundle
	if err := json.NewDecoder(r.Body).Decode(&bundle); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	id := a.Store.PutDraft(bundle)
	a.json(w, http.StatusCreated, map[string]string{
		"id":      id,
		"message": "Property data cached successfully",
	})
}

// GetCachedPropertyData returns a staged bundle.
func (a *App) GetCachedPropertyData(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	bundle, err := a.Store.GetDraft(id)
	if err != nil {
		a.error(w, http.StatusNotFound, "Property data not found in cache")
		return
	}
	a.json(w, http.StatusOK, bundle)
}

// UpdateCachedPropertyData overwrites a staged bundle in full.
func (a *App) UpdateCachedPropertyData(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var bundle domain.PropertyBundle
	if err := json.NewDecoder(r.Body).Decode(&bundle); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := a.Store.ReplaceDraft(id, bundle); err != nil {
		a.error(w, http.StatusNotFound, "Property data not found in cache")
		return
	}
	a.json(w, http.StatusOK, map[string]string{
		"id":      id,
		"message": "Property data updated successfully",
	})
}

// CachePropertyImages ingests a multipart batch of images for a staged
// draft. Labels (form field "labels", repeated) align with files by index.
func (a *App) CachePropertyImages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		a.error(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	files := r.MultipartForm.File["images"]
	labels := r.MultipartForm.Value["labels"]

	uploads := make([]cache.Upload, 0, len(files))
	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			a.Logger.Error().Err(err).Str("filename", header.Filename).Msg("upload: cannot open part, skipping")
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			a.Logger.Error().Err(err).Str("filename", header.Filename).Msg("upload: cannot read part, skipping")
			continue
		}
		uploads = append(uploads, cache.Upload{Filename: header.Filename, Data: data})
	}

	records, err := a.Ingestor.Ingest(id, uploads, labels)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "Property data not found in cache")
			return
		}
		a.error(w, http.StatusInternalServerError, "failed to cache property images")
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"images":  records,
		"message": fmt.Sprintf("Successfully cached %d images", len(records)),
	})
}

// GetCachedPropertyImages lists the cached image records of a draft. An
// unknown draft yields an empty list, not an error.
func (a *App) GetCachedPropertyImages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a.json(w, http.StatusOK, map[string]any{
		"images": a.Store.GetImages(id),
	})
}

// ArchiveCachedPropertyImages streams the draft's cached images as a zip.
func (a *App) ArchiveCachedPropertyImages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	records := a.Store.GetImages(id)
	if len(records) == 0 {
		a.error(w, http.StatusNotFound, "no cached images for this property")
		return
	}

	files := make([]zip.File, 0, len(records))
	for _, rec := range records {
		data, err := os.ReadFile(filepath.Join(a.Ingestor.Dir(), rec.Filename))
		if err != nil {
			a.Logger.Error().Err(err).Str("filename", rec.Filename).Msg("archive: cannot read cached file, skipping")
			continue
		}
		files = append(files, zip.File{Name: rec.Filename, Data: data})
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=property-%s.zip", id))
	_, _ = w.Write(zip.Archive(files))
}

// SweepCache reconciles the image directory against the cache records,
// optionally scoped to one draft via the "property_id" query parameter.
func (a *App) SweepCache(w http.ResponseWriter, r *http.Request) {
	report := a.Sweeper.Sweep(r.URL.Query().Get("property_id"))
	a.json(w, http.StatusOK, report)
}
