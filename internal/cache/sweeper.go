package cache

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"server/internal/domain"
	"server/internal/infra"
)

// Sweeper reconciles the image cache directory against the store's records:
// files without a record are deleted, records whose backing file is gone are
// dropped. Individual failures are logged and never abort the sweep.
type Sweeper struct {
	store  *Store
	dir    string
	logger infra.Logger
}

// SweepReport summarizes one reconciliation pass.
type SweepReport struct {
	Scanned        int `json:"scanned"`
	RemovedFiles   int `json:"removedFiles"`
	RemovedRecords int `json:"removedRecords"`
	Failures       int `json:"failures"`
}

// NewSweeper creates a sweeper over the given store and cache directory.
func NewSweeper(store *Store, dir string, logger infra.Logger) *Sweeper {
	return &Sweeper{store: store, dir: dir, logger: logger}
}

// Sweep runs one reconciliation pass. When draftID is non-empty only that
// draft's files (identified by the filename prefix) and records are touched.
// A missing cache directory is treated as an empty one.
func (s *Sweeper) Sweep(draftID string) SweepReport {
	var report SweepReport

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error().Err(err).Str("dir", s.dir).Msg("sweep: cannot list cache dir")
			report.Failures++
		}
		return report
	}

	referenced := s.store.ImageFilenames(draftID)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if draftID != "" && !strings.HasPrefix(name, draftID+"_") {
			continue
		}
		report.Scanned++
		if _, ok := referenced[name]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			s.logger.Error().Err(err).Str("filename", name).Msg("sweep: delete failed")
			report.Failures++
			continue
		}
		report.RemovedFiles++
		s.logger.Info().Str("filename", name).Msg("sweep: deleted orphaned image")
	}

	removed := s.store.PruneImages(draftID, func(rec domain.CachedImage) bool {
		_, err := os.Stat(filepath.Join(s.dir, rec.Filename))
		return err == nil
	})
	report.RemovedRecords = len(removed)
	for _, rec := range removed {
		s.logger.Info().Str("filename", rec.Filename).Str("draft_id", rec.PropertyID).Msg("sweep: dropped record without file")
	}
	return report
}

// SweepExpired deletes cache files older than maxAge regardless of records.
// Used by the maintenance CLI to reclaim disk from long-dead sessions, where
// no in-memory record set exists to reconcile against.
func (s *Sweeper) SweepExpired(maxAge time.Duration) SweepReport {
	var report SweepReport

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error().Err(err).Str("dir", s.dir).Msg("sweep: cannot list cache dir")
			report.Failures++
		}
		return report
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		report.Scanned++
		info, err := entry.Info()
		if err != nil {
			report.Failures++
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			s.logger.Error().Err(err).Str("filename", entry.Name()).Msg("sweep: delete failed")
			report.Failures++
			continue
		}
		report.RemovedFiles++
		s.logger.Info().Str("filename", entry.Name()).Msg("sweep: deleted expired image")
	}
	return report
}
