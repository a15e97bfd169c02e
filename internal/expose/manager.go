// Package expose drives exposé generation: a keyed collection of background
// jobs, each walking a fixed step sequence, plus the preview projection over
// the staged draft data and a completed job.
package expose

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"server/internal/cache"
	"server/internal/domain"
	"server/internal/imaging"
	"server/internal/infra"
	"server/internal/providers/describe"
)

const defaultStepDelay = 2 * time.Second

// Options configures a Manager.
type Options struct {
	// CacheDir is where the ingestor wrote the draft's image files.
	CacheDir string
	// StepDelay paces the executor between steps. Zero means 2s.
	StepDelay time.Duration
	// Imaging controls the optimize step.
	Imaging imaging.Options
	Logger  infra.Logger
}

// Manager owns the generation job collection and the background executions
// mutating it. The process supports one generation lineage at a time:
// starting a new generation cancels and discards every prior job, while the
// staged draft and image data stay untouched.
type Manager struct {
	store     *cache.Store
	describer describe.Describer
	cacheDir  string
	stepDelay time.Duration
	imgOpts   imaging.Options
	logger    infra.Logger
	steps     []step

	mu      sync.Mutex
	jobs    map[string]*domain.ExposeJob
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager wires a Manager over the staging store and a text describer.
func NewManager(store *cache.Store, describer describe.Describer, opts Options) *Manager {
	if opts.StepDelay <= 0 {
		opts.StepDelay = defaultStepDelay
	}
	if opts.Imaging == (imaging.Options{}) {
		opts.Imaging = imaging.DefaultOptions()
	}
	m := &Manager{
		store:     store,
		describer: describer,
		cacheDir:  opts.CacheDir,
		stepDelay: opts.StepDelay,
		imgOpts:   opts.Imaging,
		logger:    opts.Logger,
		jobs:      make(map[string]*domain.ExposeJob),
		cancels:   make(map[string]context.CancelFunc),
	}
	m.steps = m.buildSteps()
	return m
}

// StartGeneration clears the whole job collection, cancelling any execution
// still in flight, and schedules a fresh job for the given draft. The draft
// is not required to be staged yet; the pipeline defaults missing data. The
// clear-then-create sequence is serialized internally, but callers wanting
// exclusivity across sessions must serialize their own requests.
func (m *Manager) StartGeneration(draftID string) *domain.ExposeJob {
	m.mu.Lock()
	for id, cancel := range m.cancels {
		cancel()
		delete(m.cancels, id)
	}
	m.jobs = make(map[string]*domain.ExposeJob)

	job := &domain.ExposeJob{
		ID:         uuid.NewString(),
		PropertyID: draftID,
		Status:     domain.JobStatusPending,
		Progress:   0,
		CreatedAt:  time.Now().UTC(),
	}
	m.jobs[job.ID] = job

	ctx, cancel := context.WithCancel(context.Background())
	m.cancels[job.ID] = cancel
	m.mu.Unlock()

	m.logger.Info().Str("job_id", job.ID).Str("draft_id", draftID).Msg("expose: generation started, previous session cleared")

	// Snapshot before the executor starts mutating the record.
	snapshot := job.Clone()
	m.wg.Add(1)
	go m.run(ctx, job.ID, draftID)
	return snapshot
}

// GetStatus returns a copy of the job record.
func (m *Manager) GetStatus(jobID string) (*domain.ExposeJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return job.Clone(), nil
}

// Delete removes the job record. Absent ids are not an error. Deletion does
// not cancel a running execution: per the resurrection rule in applyJob, a
// still-running executor re-creates its record on the next progress write.
func (m *Manager) Delete(jobID string) {
	m.mu.Lock()
	delete(m.jobs, jobID)
	m.mu.Unlock()
}

// Preview builds the read-optimized document projection for a completed job.
// It is recomputed from current store and job state on every call.
func (m *Manager) Preview(jobID string) (*Preview, error) {
	job, err := m.GetStatus(jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobStatusCompleted {
		return nil, domain.ErrJobNotReady
	}
	bundle, err := m.store.GetDraft(job.PropertyID)
	if err != nil {
		bundle = domain.PropertyBundle{}
	}
	return BuildPreview(job, bundle, m.store.GetImages(job.PropertyID)), nil
}

// Close cancels every in-flight execution and waits for them to exit. Used
// on shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	for id, cancel := range m.cancels {
		cancel()
		delete(m.cancels, id)
	}
	m.mu.Unlock()
	m.wg.Wait()
}

// run walks the step table for one job. Cancellation (a newer generation
// cleared this lineage, or shutdown) is honored between steps; step errors
// end the job in the failed state with the record retained for inspection.
func (m *Manager) run(ctx context.Context, jobID, draftID string) {
	defer m.wg.Done()
	defer m.releaseCancel(jobID)

	st := &runState{jobID: jobID, draftID: draftID}
	for i, s := range m.steps {
		if i > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(m.stepDelay):
			}
		}
		if ctx.Err() != nil {
			return
		}
		if s.run != nil {
			if err := s.run(ctx, st); err != nil {
				if ctx.Err() != nil {
					return
				}
				m.logger.Error().Err(err).Str("job_id", jobID).Str("step", s.name).Msg("expose: generation failed")
				m.applyJob(jobID, draftID, func(j *domain.ExposeJob) {
					j.Status = domain.JobStatusFailed
					j.Progress = 0
				})
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
		m.applyJob(jobID, draftID, func(j *domain.ExposeJob) {
			if j.Status == domain.JobStatusPending {
				j.Status = domain.JobStatusProcessing
			}
			if s.target > j.Progress {
				j.Progress = s.target
			}
		})
		m.logger.Info().Str("job_id", jobID).Str("step", s.name).Int("progress", s.target).Msg("expose: step completed")
	}

	now := time.Now().UTC()
	m.applyJob(jobID, draftID, func(j *domain.ExposeJob) {
		j.Status = domain.JobStatusCompleted
		j.Progress = 100
		j.CompletedAt = &now
		j.PDFURL = "/api/expose/download/" + jobID
		if st.text != nil {
			j.GeneratedDescription = st.text.Description
			j.GeneratedLocation = st.text.LocationDescription
		}
	})
	m.logger.Info().Str("job_id", jobID).Msg("expose: generation completed")
}

// applyJob mutates the job record under the collection lock. If the record
// was deleted out from under a live execution it is re-created first, so
// progress writes are never lost; this can resurrect an explicitly deleted
// job, which is the documented trade-off of Delete not cancelling.
func (m *Manager) applyJob(jobID, draftID string, mutate func(*domain.ExposeJob)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		job = &domain.ExposeJob{
			ID:         jobID,
			PropertyID: draftID,
			Status:     domain.JobStatusPending,
			CreatedAt:  time.Now().UTC(),
		}
		m.jobs[jobID] = job
		m.logger.Warn().Str("job_id", jobID).Msg("expose: job record missing, re-created by executor")
	}
	mutate(job)
}

func (m *Manager) releaseCancel(jobID string) {
	m.mu.Lock()
	if cancel, ok := m.cancels[jobID]; ok {
		cancel()
		delete(m.cancels, jobID)
	}
	m.mu.Unlock()
}
