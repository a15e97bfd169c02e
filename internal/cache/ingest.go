package cache

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/infra"
)

const defaultExtension = "jpg"

// Upload is one image payload handed to the ingestor.
type Upload struct {
	Filename string
	Data     []byte
}

// Ingestor persists uploaded image bytes under the cache directory and
// records them in the store. File writes are best effort per item; a failed
// write skips that item without aborting the batch.
type Ingestor struct {
	store   *Store
	dir     string
	baseURL string
	logger  infra.Logger
}

// NewIngestor creates an ingestor writing files into dir and deriving record
// URLs from baseURL (e.g. "/static/cache").
func NewIngestor(store *Store, dir, baseURL string, logger infra.Logger) *Ingestor {
	return &Ingestor{
		store:   store,
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Ingest stores a batch of uploads for the given draft. The draft must
// already be staged; otherwise the whole call fails before any file write.
// Labels align with uploads by index; uploads beyond the label list get no
// label. The first image ever ingested for the draft is flagged primary,
// regardless of which batch it arrives in. Returns the successfully
// persisted subset.
func (ing *Ingestor) Ingest(draftID string, uploads []Upload, labels []string) ([]domain.CachedImage, error) {
	if !ing.store.HasDraft(draftID) {
		return nil, domain.ErrNotFound
	}
	if err := os.MkdirAll(ing.dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache dir: %w", err)
	}

	seq := ing.store.ImageCount(draftID)
	records := make([]domain.CachedImage, 0, len(uploads))
	for i, up := range uploads {
		filename := ing.buildFilename(draftID, seq+len(records), up.Filename)
		target := filepath.Join(ing.dir, filename)
		if err := os.WriteFile(target, up.Data, 0o644); err != nil {
			ing.logger.Error().Err(err).Str("filename", filename).Msg("cache: image write failed, skipping")
			continue
		}

		rec := domain.CachedImage{
			ID:         uuid.NewString(),
			PropertyID: draftID,
			Filename:   filename,
			URL:        ing.baseURL + "/" + filename,
			Alt:        altText(up.Filename),
			IsPrimary:  seq+len(records) == 0,
			CreatedAt:  time.Now().UTC(),
		}
		if i < len(labels) {
			rec.Category = labels[i]
		}
		records = append(records, rec)
		ing.logger.Debug().Str("draft_id", draftID).Str("filename", filename).Msg("cache: image saved")
	}

	if err := ing.store.PutImages(draftID, records); err != nil {
		return nil, err
	}
	return records, nil
}

// Dir returns the cache directory the ingestor writes into.
func (ing *Ingestor) Dir() string {
	return ing.dir
}

// buildFilename derives a process-unique target name of the form
// {draftId}_{sequence}_{random8}.{ext}.
func (ing *Ingestor) buildFilename(draftID string, seq int, original string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(original)), ".")
	if ext == "" {
		ext = defaultExtension
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%d_%s.%s", draftID, seq, suffix, ext)
}

// altText falls back to the upload's name stem so the preview always has
// something to render.
func altText(original string) string {
	if original == "" {
		return "image"
	}
	base := path.Base(original)
	if idx := strings.LastIndex(base, "."); idx > 0 {
		return base[:idx]
	}
	return base
}
