package expose

import (
	"context"
	"os"
	"path/filepath"

	"server/internal/domain"
	"server/internal/imaging"
	"server/internal/providers/describe"
)

// step is one entry of the fixed generation sequence. target is the
// cumulative progress value reached once the step finishes; run does the
// step's work and may be nil for steps whose work is pure pacing.
type step struct {
	name   string
	target int
	run    func(ctx context.Context, st *runState) error
}

// runState is the scratch space a single execution threads through its
// steps.
type runState struct {
	jobID   string
	draftID string
	bundle  domain.PropertyBundle
	images  []domain.CachedImage
	text    *describe.Result
}

// buildSteps returns the ordered step table. Keeping it as data makes the
// sequence testable and extensible without touching the executor loop.
func (m *Manager) buildSteps() []step {
	return []step{
		{name: "enter processing", target: 10},
		{name: "analyze property data", target: 20, run: m.stepAnalyze},
		{name: "optimize image quality", target: 40, run: m.stepOptimize},
		{name: "generate description text", target: 60, run: m.stepDescribe},
		{name: "apply presentation template", target: 80},
		{name: "render final document", target: 100},
	}
}

// stepAnalyze snapshots the draft and its images. A missing draft is not an
// error: the preview projection defaults every field, matching the rest of
// the pipeline's permissive posture.
func (m *Manager) stepAnalyze(ctx context.Context, st *runState) error {
	bundle, err := m.store.GetDraft(st.draftID)
	if err != nil {
		m.logger.Warn().Str("draft_id", st.draftID).Msg("expose: draft not staged, generating with defaults")
		bundle = domain.PropertyBundle{}
	}
	st.bundle = bundle
	st.images = m.store.GetImages(st.draftID)
	return nil
}

// stepOptimize re-encodes each cached image in place. Per-file failures are
// logged and skipped; the batch never aborts for one bad file.
func (m *Manager) stepOptimize(ctx context.Context, st *runState) error {
	for _, img := range st.images {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(m.cacheDir, img.Filename)
		data, err := os.ReadFile(path)
		if err != nil {
			m.logger.Error().Err(err).Str("filename", img.Filename).Msg("expose: read image for optimize failed, skipping")
			continue
		}
		optimized, err := imaging.Optimize(data, m.imgOpts)
		if err != nil {
			m.logger.Error().Err(err).Str("filename", img.Filename).Msg("expose: optimize failed, keeping original")
			continue
		}
		if err := os.WriteFile(path, optimized, 0o644); err != nil {
			m.logger.Error().Err(err).Str("filename", img.Filename).Msg("expose: write optimized image failed")
		}
	}
	return nil
}

// stepDescribe asks the text collaborator for the exposé prose. Upstream
// failure degrades to the static templates; the job never fails here.
func (m *Manager) stepDescribe(ctx context.Context, st *runState) error {
	res, err := m.describer.Describe(ctx, st.bundle)
	if err != nil {
		m.logger.Warn().Err(err).Str("job_id", st.jobID).Msg("expose: describer failed, using static templates")
		res, _ = describe.NewStaticDescriber().Describe(ctx, st.bundle)
	}
	st.text = res
	return nil
}
