package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pahla_backend/internals/features/nominations/model"
)

func newTestManager(t *testing.T) (*Manager, *fixture) {
	t.Helper()
	f := newFixture(t)
	return NewManager(f.deps, NewMemorySessionStore(time.Hour)), f
}

func TestManagerWalksTheWizard(t *testing.T) {
	m, f := newTestManager(t)
	ctx := context.Background()

	sid, st, err := m.Start(ctx, StartRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, st.CurrentStep)
	assert.NotEmpty(t, st.UploaderID)

	for i, p := range payloads {
		_, _, err := m.Submit(ctx, sid, i+1, []byte(p))
		require.NoError(t, err, "step %d", i+1)
	}

	st, err = m.Get(ctx, sid)
	require.NoError(t, err)
	assert.True(t, st.Submitted)
	row, err := f.store.FindByID(ctx, *st.NominationID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSubmitted, row.Status)

	_, _, err = m.Submit(ctx, sid, 5, []byte(payloadE))
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestManagerRejectsOutOfOrderSteps(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	sid, _, err := m.Start(ctx, StartRequest{})
	require.NoError(t, err)

	_, _, err = m.Submit(ctx, sid, 3, []byte(payloadC))
	assert.ErrorIs(t, err, ErrWrongStep)
	_, _, err = m.Submit(ctx, sid, 6, nil)
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func TestManagerValidationErrorKeepsSession(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	sid, _, err := m.Start(ctx, StartRequest{})
	require.NoError(t, err)

	_, st, err := m.Submit(ctx, sid, 1, []byte(`{}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, st.CurrentStep)
	assert.Nil(t, st.NominationID)
}

func TestManagerContinueLink(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	sid, _, err := m.Start(ctx, StartRequest{})
	require.NoError(t, err)
	_, _, err = m.Submit(ctx, sid, 1, []byte(payloadA))
	require.NoError(t, err)
	st, err := m.Get(ctx, sid)
	require.NoError(t, err)
	id := *st.NominationID

	_, resumed, err := m.Start(ctx, StartRequest{ContinueID: &id})
	require.NoError(t, err)
	require.NotNil(t, resumed.NominationID)
	assert.Equal(t, id, *resumed.NominationID)
	assert.Equal(t, 2, resumed.CurrentStep)

	missing := uuid.New()
	_, fresh, err := m.Start(ctx, StartRequest{ContinueID: &missing})
	require.NoError(t, err)
	assert.Nil(t, fresh.NominationID)
	assert.Equal(t, LoadFailedNotice, fresh.Notice)

}

func TestManagerEditLinkRespectsStatus(t *testing.T) {
	m, f := newTestManager(t)
	ctx := context.Background()

	for _, status := range []model.NominationStatus{model.StatusSubmitted, model.StatusApproved, model.StatusRejected} {
		id := f.seedRow(t, status, model.SectionA{NomineeFullName: "Closed"})
		_, st, err := m.Start(ctx, StartRequest{EditID: &id})
		require.NoError(t, err, status)
		assert.Nil(t, st.NominationID, status)
		assert.Nil(t, st.Sections.A, status)
		assert.Equal(t, LoadFailedNotice, st.Notice, status)
	}

	draft := f.seedRow(t, model.StatusDraft, model.SectionA{NomineeFullName: "Open"})
	_, st, err := m.Start(ctx, StartRequest{EditID: &draft})
	require.NoError(t, err)
	require.NotNil(t, st.NominationID)
	assert.Equal(t, draft, *st.NominationID)
	assert.Equal(t, 2, st.CurrentStep)

	approved := f.seedRow(t, model.StatusApproved, model.SectionA{NomineeFullName: "Edit Me"})
	_, st, err = m.Start(ctx, StartRequest{EditID: &approved, Reviewer: true})
	require.NoError(t, err)
	require.NotNil(t, st.Sections.A)
	assert.Equal(t, "Edit Me", st.Sections.A.NomineeFullName)
}

func TestManagerBackAndReset(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	sid, _, err := m.Start(ctx, StartRequest{UploaderID: "user-7"})
	require.NoError(t, err)
	_, _, err = m.Submit(ctx, sid, 1, []byte(payloadA))
	require.NoError(t, err)

	st, err := m.Back(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, 1, st.CurrentStep)

	st, err = m.Reset(ctx, sid)
	require.NoError(t, err)
	assert.Nil(t, st.NominationID)
	assert.True(t, st.Sections.Empty())
	assert.Equal(t, "user-7", st.UploaderID)

	again, err := m.Reset(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, st, again)
}

func TestManagerBusySession(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	sid, _, err := m.Start(ctx, StartRequest{})
	require.NoError(t, err)

	require.True(t, m.acquire(sid))
	_, _, err = m.Submit(ctx, sid, 1, []byte(payloadA))
	assert.ErrorIs(t, err, ErrBusy)
	m.release(sid)

	_, _, err = m.Submit(ctx, sid, 1, []byte(payloadA))
	assert.NoError(t, err)
}

func TestManagerDropsSessionMarksWhenDone(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		sid, _, err := m.Start(ctx, StartRequest{})
		require.NoError(t, err)
		_, _, err = m.Submit(ctx, sid, 1, []byte(payloadA))
		require.NoError(t, err)
		_, err = m.Back(ctx, sid)
		require.NoError(t, err)
		_, err = m.Reset(ctx, sid)
		require.NoError(t, err)
	}

	_, err := m.Back(ctx, "expired-session")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.active)
}

func TestManagerUnknownSession(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Back(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerSelectCategory(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	sid, _, err := m.Start(ctx, StartRequest{})
	require.NoError(t, err)

	form, err := m.SelectCategory(ctx, sid, model.SectionB{
		AwardCategory: "youth_gender_equality", SpecificAward: "african_humanitarian_hero",
	})
	require.NoError(t, err)
	assert.Empty(t, form.SpecificAward)
}

func TestMemorySessionStoreRoundTrip(t *testing.T) {
	s := NewMemorySessionStore(time.Minute)
	ctx := context.Background()
	id := uuid.New()
	st := State{NominationID: &id, CurrentStep: 3, Sections: model.Sections{C: &model.SectionC{MediaLinks: []string{"https://x.example"}}}}

	require.NoError(t, s.Save(ctx, "sid", st))
	st.Sections.C.MediaLinks[0] = "changed"

	got, err := s.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, 3, got.CurrentStep)
	assert.Equal(t, "https://x.example", got.Sections.C.MediaLinks[0])

	require.NoError(t, s.Delete(ctx, "sid"))
	_, err = s.Load(ctx, "sid")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
