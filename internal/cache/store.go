// Package cache holds the transient staging area for property drafts and
// their uploaded images. Everything here lives in process memory only; a
// restart drops the session, which is the intended lifecycle.
package cache

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"server/internal/domain"
)

// Store owns the two keyed collections of the staging area: draft bundles
// and cached image records. Each collection is guarded by its own mutex so a
// write to one never blocks readers of the other. Callers always receive
// copies, never aliases into the maps.
type Store struct {
	draftsMu sync.RWMutex
	drafts   map[string]domain.PropertyBundle

	imagesMu sync.RWMutex
	images   map[string][]domain.CachedImage
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		drafts: make(map[string]domain.PropertyBundle),
		images: make(map[string][]domain.CachedImage),
	}
}

// PutDraft stages a new draft bundle and returns its generated id. Every call
// creates a fresh entity; callers overwrite by staging again and using the
// new id.
func (s *Store) PutDraft(bundle domain.PropertyBundle) string {
	id := uuid.NewString()
	now := time.Now().UTC()
	stored := bundle.Clone()
	stored["id"] = id
	stored["created_at"] = now.Format(time.RFC3339)
	stored["updated_at"] = now.Format(time.RFC3339)

	s.draftsMu.Lock()
	s.drafts[id] = stored
	s.draftsMu.Unlock()
	return id
}

// ReplaceDraft overwrites the full bundle of an existing draft, refreshing
// updated_at. Partial patches are not supported.
func (s *Store) ReplaceDraft(id string, bundle domain.PropertyBundle) error {
	s.draftsMu.Lock()
	defer s.draftsMu.Unlock()
	prev, ok := s.drafts[id]
	if !ok {
		return domain.ErrNotFound
	}
	stored := bundle.Clone()
	stored["id"] = id
	stored["created_at"] = prev["created_at"]
	stored["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	s.drafts[id] = stored
	return nil
}

// GetDraft returns a copy of the staged bundle.
func (s *Store) GetDraft(id string) (domain.PropertyBundle, error) {
	s.draftsMu.RLock()
	bundle, ok := s.drafts[id]
	s.draftsMu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return bundle.Clone(), nil
}

// HasDraft reports whether a draft with the given id is staged.
func (s *Store) HasDraft(id string) bool {
	s.draftsMu.RLock()
	defer s.draftsMu.RUnlock()
	_, ok := s.drafts[id]
	return ok
}

// PutImages appends image records to a draft's list. The whole call fails
// with ErrNotFound when the draft is not staged; insertion order is
// preserved across calls.
func (s *Store) PutImages(draftID string, records []domain.CachedImage) error {
	if !s.HasDraft(draftID) {
		return domain.ErrNotFound
	}
	s.imagesMu.Lock()
	s.images[draftID] = append(s.images[draftID], records...)
	s.imagesMu.Unlock()
	return nil
}

// GetImages returns the draft's image records in insertion order. An unknown
// draft or a draft without uploads yields an empty slice, never an error.
func (s *Store) GetImages(draftID string) []domain.CachedImage {
	s.imagesMu.RLock()
	defer s.imagesMu.RUnlock()
	return append([]domain.CachedImage{}, s.images[draftID]...)
}

// ImageCount returns how many images have been ingested for the draft over
// its whole upload history.
func (s *Store) ImageCount(draftID string) int {
	s.imagesMu.RLock()
	defer s.imagesMu.RUnlock()
	return len(s.images[draftID])
}

// ImageFilenames returns the set of filenames referenced by image records,
// scoped to one draft when draftID is non-empty.
func (s *Store) ImageFilenames(draftID string) map[string]struct{} {
	s.imagesMu.RLock()
	defer s.imagesMu.RUnlock()
	out := make(map[string]struct{})
	for id, records := range s.images {
		if draftID != "" && id != draftID {
			continue
		}
		for _, rec := range records {
			out[rec.Filename] = struct{}{}
		}
	}
	return out
}

// PruneImages drops image records that the keep predicate rejects, scoped to
// one draft when draftID is non-empty. It returns the removed records.
func (s *Store) PruneImages(draftID string, keep func(domain.CachedImage) bool) []domain.CachedImage {
	s.imagesMu.Lock()
	defer s.imagesMu.Unlock()
	var removed []domain.CachedImage
	for id, records := range s.images {
		if draftID != "" && id != draftID {
			continue
		}
		kept := records[:0]
		for _, rec := range records {
			if keep(rec) {
				kept = append(kept, rec)
			} else {
				removed = append(removed, rec)
			}
		}
		s.images[id] = kept
	}
	return removed
}
