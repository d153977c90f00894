package wizard

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"pahla_backend/internals/features/nominations/model"
	"pahla_backend/internals/logger"
)

const (
	FirstStep = 1
	LastStep  = 5
)

// State is a snapshot of one wizard session.
type State struct {
	NominationID *uuid.UUID     `json:"nomination_id"`
	CurrentStep  int            `json:"current_step"`
	Sections     model.Sections `json:"sections"`
	IsSubmitting bool           `json:"is_submitting"`
	IsLoading    bool           `json:"is_loading"`
	Submitted    bool           `json:"submitted"`
	UploaderID   string         `json:"uploader_id"`
	Notice       string         `json:"notice,omitempty"`
}

func (s State) clone() State {
	out := s
	out.Sections = s.Sections.Clone()
	if s.NominationID != nil {
		id := *s.NominationID
		out.NominationID = &id
	}
	return out
}

// Loader fetches a nomination for edit mode.
type Loader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.NominationModel, error)
}

// Context is the state container behind one wizard session.
type Context struct {
	mu sync.Mutex
	st State
}

func NewContext(uploaderID string) *Context {
	return &Context{st: State{CurrentStep: FirstStep, UploaderID: uploaderID}}
}

// RestoreContext rebuilds a Context from a stored snapshot.
func RestoreContext(st State) *Context {
	st = st.clone()
	st.CurrentStep = clampStep(st.CurrentStep)
	st.IsSubmitting = false
	st.IsLoading = false
	return &Context{st: st}
}

func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.clone()
}

func (c *Context) SetCurrentStep(n int) {
	c.mu.Lock()
	c.st.CurrentStep = clampStep(n)
	c.mu.Unlock()
}

// UpdateSectionData replaces one section wholesale.
func (c *Context) UpdateSectionData(sec model.Section) {
	if sec == nil {
		return
	}
	c.mu.Lock()
	c.st.Sections.Set(sec)
	c.mu.Unlock()
}

func (c *Context) SetNominationID(id uuid.UUID) {
	c.mu.Lock()
	c.st.NominationID = &id
	c.mu.Unlock()
}

// ResetNomination starts a blank nomination; the uploader identity is kept.
func (c *Context) ResetNomination() {
	c.mu.Lock()
	c.st = State{CurrentStep: FirstStep, UploaderID: c.st.UploaderID}
	c.mu.Unlock()
}

// Load binds the session to an existing nomination. It is a no-op when id is
// already bound. Failures reset the session and set a notice.
func (c *Context) Load(ctx context.Context, id uuid.UUID, loader Loader) {
	c.mu.Lock()
	if c.st.NominationID != nil && *c.st.NominationID == id {
		c.mu.Unlock()
		return
	}
	c.st.IsLoading = true
	c.mu.Unlock()

	row, err := loader.FindByID(ctx, id)
	var secs model.Sections
	if err == nil {
		secs, err = row.DecodeSections()
	}

	if err != nil {
		logger.With("wizard").Warn().Err(err).Str("nomination_id", id.String()).Msg("load nomination")
		c.failLoad()
		return
	}
	c.bind(id, secs)
}

// bind replaces the session contents with a loaded nomination.
func (c *Context) bind(id uuid.UUID, secs model.Sections) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.NominationID = &id
	c.st.Sections = secs.Clone()
	c.st.Submitted = false
	c.st.Notice = ""
	c.st.IsLoading = false
}

func (c *Context) failLoad() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st = State{CurrentStep: FirstStep, UploaderID: c.st.UploaderID, Notice: LoadFailedNotice}
}

func (c *Context) beginSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.st.IsSubmitting {
		return false
	}
	c.st.IsSubmitting = true
	return true
}

func (c *Context) endSubmit() {
	c.mu.Lock()
	c.st.IsSubmitting = false
	c.mu.Unlock()
}

func (c *Context) markSubmitted() {
	c.mu.Lock()
	c.st.Submitted = true
	c.mu.Unlock()
}

func clampStep(n int) int {
	if n < FirstStep {
		return FirstStep
	}
	if n > LastStep {
		return LastStep
	}
	return n
}
