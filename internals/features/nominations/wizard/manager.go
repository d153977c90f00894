package wizard

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"pahla_backend/internals/features/nominations/model"
	"pahla_backend/internals/logger"
)

// StartRequest opens a session, optionally on an existing nomination.
// ContinueID wins over EditID when both are set. EditID only opens rows
// of any status when Reviewer is set; otherwise it is a continuation link.
type StartRequest struct {
	ContinueID *uuid.UUID
	EditID     *uuid.UUID
	UploaderID string
	Reviewer   bool
}

// Manager serves wizard sessions: it restores the Context for a session id,
// runs one operation under a per-session lock and saves the result.
type Manager struct {
	Steps    []StepController
	Resolver *Resolver
	Loader   Loader
	Catalog  CatalogSource
	Sessions SessionStore

	mu     sync.Mutex
	active map[string]struct{} // sessions with an operation in flight
}

func NewManager(d *Deps, sessions SessionStore) *Manager {
	return &Manager{
		Steps:    NewSteps(d),
		Resolver: &Resolver{Store: d.Store},
		Loader:   d.Store,
		Catalog:  d.Catalog,
		Sessions: sessions,
	}
}

func (m *Manager) Start(ctx context.Context, req StartRequest) (string, State, error) {
	uploader := req.UploaderID
	if uploader == "" {
		uploader = uuid.NewString()
	}
	c := NewContext(uploader)

	switch {
	case req.ContinueID != nil:
		m.Resolver.Resume(ctx, c, *req.ContinueID)
	case req.EditID != nil && req.Reviewer:
		c.Load(ctx, *req.EditID, m.Loader)
	case req.EditID != nil:
		m.Resolver.Resume(ctx, c, *req.EditID)
	}

	sid := uuid.NewString()
	st := c.State()
	if err := m.Sessions.Save(ctx, sid, st); err != nil {
		return "", State{}, err
	}
	logger.With("wizard").Debug().Str("session", sid).Bool("bound", st.NominationID != nil).Msg("session started")
	return sid, st, nil
}

func (m *Manager) Get(ctx context.Context, sid string) (State, error) {
	return m.Sessions.Load(ctx, sid)
}

// Defaults returns the form defaults for step as currently held by the session.
func (m *Manager) Defaults(ctx context.Context, sid string, step int) (model.Section, State, error) {
	ctrl, err := m.step(step)
	if err != nil {
		return nil, State{}, err
	}
	st, err := m.Sessions.Load(ctx, sid)
	if err != nil {
		return nil, State{}, err
	}
	return ctrl.Defaults(RestoreContext(st)), st, nil
}

// Submit runs step's controller. Only the current step may be submitted.
func (m *Manager) Submit(ctx context.Context, sid string, step int, payload []byte) (*StepResult, State, error) {
	ctrl, err := m.step(step)
	if err != nil {
		return nil, State{}, err
	}

	var res *StepResult
	st, err := m.withSession(ctx, sid, func(c *Context) (bool, error) {
		cur := c.State()
		if cur.Submitted {
			return false, ErrAlreadySubmitted
		}
		if cur.CurrentStep != step {
			return false, ErrWrongStep
		}
		var err error
		res, err = ctrl.Submit(ctx, c, payload)
		return err == nil, err
	})
	return res, st, err
}

func (m *Manager) Back(ctx context.Context, sid string) (State, error) {
	return m.withSession(ctx, sid, func(c *Context) (bool, error) {
		Back(c)
		return true, nil
	})
}

func (m *Manager) Reset(ctx context.Context, sid string) (State, error) {
	return m.withSession(ctx, sid, func(c *Context) (bool, error) {
		c.ResetNomination()
		return true, nil
	})
}

// SelectCategory reconciles a B form after a category change. Nothing is saved.
func (m *Manager) SelectCategory(ctx context.Context, sid string, form model.SectionB) (model.SectionB, error) {
	if _, err := m.Sessions.Load(ctx, sid); err != nil {
		return form, err
	}
	return SelectCategory(ctx, m.Catalog, form)
}

func (m *Manager) step(n int) (StepController, error) {
	if n < FirstStep || n > len(m.Steps) {
		return nil, ErrUnknownStep
	}
	return m.Steps[n-1], nil
}

// withSession marks the session busy, restores the Context, runs fn and
// saves the Context when fn asks for it. A session already in use yields ErrBusy.
func (m *Manager) withSession(ctx context.Context, sid string, fn func(c *Context) (bool, error)) (State, error) {
	if !m.acquire(sid) {
		return State{}, ErrBusy
	}
	defer m.release(sid)

	st, err := m.Sessions.Load(ctx, sid)
	if err != nil {
		return State{}, err
	}
	c := RestoreContext(st)

	save, err := fn(c)
	if save {
		if serr := m.Sessions.Save(ctx, sid, c.State()); serr != nil {
			return st, serr
		}
	}
	if err != nil {
		return st, err
	}
	return c.State(), nil
}

// acquire marks sid busy. The set only holds sessions mid-operation, so
// expired sessions leave nothing behind.
func (m *Manager) acquire(sid string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.active[sid]; busy {
		return false
	}
	if m.active == nil {
		m.active = make(map[string]struct{})
	}
	m.active[sid] = struct{}{}
	return true
}

func (m *Manager) release(sid string) {
	m.mu.Lock()
	delete(m.active, sid)
	m.mu.Unlock()
}
