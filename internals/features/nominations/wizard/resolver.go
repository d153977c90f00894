package wizard

import (
	"context"

	"github.com/google/uuid"

	"pahla_backend/internals/features/nominations/model"
	"pahla_backend/internals/logger"
)

// ResumableFinder returns only draft or incomplete nominations.
type ResumableFinder interface {
	FindResumable(ctx context.Context, id uuid.UUID) (*model.NominationModel, error)
}

// Resolver reopens a nomination from a continuation link.
type Resolver struct {
	Store ResumableFinder
}

// Resume loads id into c and positions it after the last contiguous section.
// It reports whether the nomination was loaded; otherwise c is reset with a notice.
func (r *Resolver) Resume(ctx context.Context, c *Context, id uuid.UUID) bool {
	row, err := r.Store.FindResumable(ctx, id)
	var secs model.Sections
	if err == nil {
		secs, err = row.DecodeSections()
	}
	if err != nil {
		logger.With("wizard").Info().Err(err).Str("nomination_id", id.String()).Msg("continuation link rejected")
		c.failLoad()
		return false
	}

	c.bind(id, secs)
	c.SetCurrentStep(ResumeStep(secs))
	return true
}

// ResumeStep is the step after the last section filled contiguously from A.
func ResumeStep(secs model.Sections) int {
	return clampStep(secs.ContiguousPrefix() + 1)
}
