package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
)

// GenerateExpose starts a background generation run for the given draft and
// returns the job id immediately. Any previous generation session is
// discarded first.
func (a *App) GenerateExpose(w http.ResponseWriter, r *http.Request) {
	draftID := chi.URLParam(r, "propertyId")
	job := a.Manager.StartGeneration(draftID)
	a.json(w, http.StatusCreated, map[string]any{
		"exposeId": job.ID,
		"status":   string(job.Status),
		"message":  "Expose generation started",
	})
}

// GetExposeStatus returns the job record for polling.
func (a *App) GetExposeStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "exposeId")
	job, err := a.Manager.GetStatus(id)
	if err != nil {
		a.error(w, http.StatusNotFound, "Expose not found")
		return
	}
	a.json(w, http.StatusOK, job)
}

// GetExposePreview returns the projected preview document for a completed
// job. A job that is missing or not yet completed is reported as not found.
func (a *App) GetExposePreview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "exposeId")
	preview, err := a.Manager.Preview(id)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotReady) {
			a.error(w, http.StatusNotFound, "Expose preview not found")
			return
		}
		a.error(w, http.StatusNotFound, "Expose not found")
		return
	}
	a.json(w, http.StatusOK, preview)
}

// DeleteExpose removes the job record. Idempotent; unknown ids succeed. The
// background execution, if still running, is not cancelled.
func (a *App) DeleteExpose(w http.ResponseWriter, r *http.Request) {
	a.Manager.Delete(chi.URLParam(r, "exposeId"))
	a.json(w, http.StatusOK, map[string]string{
		"message": "Expose deleted successfully",
	})
}
