package wizard

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pahla_backend/internals/features/nominations/model"
	"pahla_backend/internals/features/nominations/repository"
)

func TestStepACreatesDraft(t *testing.T) {
	f := newFixture(t)
	c := NewContext("u")

	res, err := f.steps[0].Submit(context.Background(), c, []byte(payloadA))
	require.NoError(t, err)
	assert.Equal(t, 2, res.NextStep)

	st := c.State()
	require.NotNil(t, st.NominationID)
	assert.Equal(t, res.NominationID, *st.NominationID)
	assert.Equal(t, 2, st.CurrentStep)
	require.NotNil(t, st.Sections.A)
	assert.Equal(t, "GH", st.Sections.A.NomineeNationality)

	row, err := f.store.FindByID(context.Background(), res.NominationID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, row.Status)
	assert.Equal(t, "Jane Doe", row.NomineeName)
	require.NotNil(t, row.NomineeEmail)
	assert.Equal(t, "jane@example.org", *row.NomineeEmail)
	require.NotNil(t, row.NominatorEmail)
	assert.Equal(t, "quick@example.org", *row.NominatorEmail)
}

func TestInvalidStepDoesNotPersistOrAdvance(t *testing.T) {
	f := newFixture(t)
	c := NewContext("u")
	f.submitThrough(t, c, 2)
	before := c.State()

	_, err := f.steps[2].Submit(context.Background(), c, []byte(`{"justification": ""}`))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 3, verr.Step)
	assert.Contains(t, verr.Fields, "justification")

	assert.Equal(t, before, c.State())
	row, err := f.store.FindByID(context.Background(), *before.NominationID)
	require.NoError(t, err)
	secs, err := row.DecodeSections()
	require.NoError(t, err)
	assert.Nil(t, secs.C)
}

func TestInvalidSectionLeavesOtherSectionsIntact(t *testing.T) {
	f := newFixture(t)
	c := NewContext("u")
	f.submitThrough(t, c, 2)
	id := *c.State().NominationID

	// back to A with a broken payload
	c.SetCurrentStep(1)
	_, err := f.steps[0].Submit(context.Background(), c, []byte(`{"nominee_full_name": ""}`))
	require.Error(t, err)

	row, err := f.store.FindByID(context.Background(), id)
	require.NoError(t, err)
	secs, err := row.DecodeSections()
	require.NoError(t, err)
	require.NotNil(t, secs.A)
	require.NotNil(t, secs.B)
	assert.Equal(t, "Jane Doe", secs.A.NomineeFullName)
	assert.Equal(t, "african_humanitarian_hero", secs.B.SpecificAward)
}

func TestMalformedJSONIsAValidationError(t *testing.T) {
	f := newFixture(t)
	_, err := f.steps[0].Submit(context.Background(), NewContext("u"), []byte(`{"nominee_full_name":`))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "_")
}

func TestLaterStepsNeedANomination(t *testing.T) {
	f := newFixture(t)
	c := NewContext("u")
	c.SetCurrentStep(3)
	_, err := f.steps[2].Submit(context.Background(), c, []byte(payloadC))
	assert.ErrorIs(t, err, ErrNoNomination)
	assert.Equal(t, 3, c.State().CurrentStep)
}

func TestStepBRejectsAwardOutsideCategory(t *testing.T) {
	f := newFixture(t)
	c := NewContext("u")
	f.submitThrough(t, c, 1)

	_, err := f.steps[1].Submit(context.Background(), c,
		[]byte(`{"award_category": "youth_gender_equality", "specific_award": "african_humanitarian_hero"}`))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "specific_award")
}

func TestFullWizardSubmitsNomination(t *testing.T) {
	f := newFixture(t)
	c := NewContext("u")
	f.submitThrough(t, c, 5)

	st := c.State()
	assert.Equal(t, 5, st.CurrentStep)
	assert.True(t, st.Submitted)
	for _, k := range model.SectionKeys {
		assert.True(t, st.Sections.Has(k), "section %s", k)
	}

	ctx := context.Background()
	row, err := f.store.FindByID(ctx, *st.NominationID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSubmitted, row.Status)
	assert.Equal(t, "Jane Doe", row.NomineeName)
	require.NotNil(t, row.SubmittedAt)
	assert.True(t, row.SubmittedAt.Equal(f.frozen))
	require.NotNil(t, row.AwardCategoryID)
	assert.Equal(t, "leadership_legacy", *row.AwardCategoryID)
	require.NotNil(t, row.NominatorEmail)
	assert.Equal(t, "john@example.org", *row.NominatorEmail, "D overrides the quick-contact email")
	secs, err := row.DecodeSections()
	require.NoError(t, err)
	for _, k := range model.SectionKeys {
		assert.True(t, secs.Has(k), "form_section_%s", strings.ToLower(string(k)))
	}

	hist, err := f.store.History(ctx, row.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, model.StatusDraft, hist[0].OldStatus)
	assert.Equal(t, model.StatusSubmitted, hist[0].NewStatus)

	sent := f.mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"john@example.org"}, sent[0].To)
	assert.Contains(t, sent[0].HTML, "Jane Doe")
	assert.Contains(t, sent[0].HTML, "Leadership")
}

func TestStepAAfterDKeepsNominatorFields(t *testing.T) {
	f := newFixture(t)
	c := NewContext("u")
	f.submitThrough(t, c, 4)

	c.SetCurrentStep(1)
	_, err := f.steps[0].Submit(context.Background(), c, []byte(payloadA))
	require.NoError(t, err)

	row, err := f.store.FindByID(context.Background(), *c.State().NominationID)
	require.NoError(t, err)
	require.NotNil(t, row.NominatorEmail)
	assert.Equal(t, "john@example.org", *row.NominatorEmail)
	require.NotNil(t, row.AwardCategoryID)
	assert.Equal(t, "leadership_legacy", *row.AwardCategoryID)
}

func TestPersistenceFailureKeepsContext(t *testing.T) {
	f := newFixture(t)
	c := NewContext("u")
	f.submitThrough(t, c, 1)
	before := c.State()

	f.deps.Store = &flakyStore{NominationStore: f.store, failUpdate: errors.New("db down")}
	_, err := f.steps[1].Submit(context.Background(), c, []byte(payloadB))
	require.Error(t, err)
	assert.Equal(t, before, c.State())
}

func TestCancelledAfterCommitLeavesContextAlone(t *testing.T) {
	f := newFixture(t)
	c := NewContext("u")
	f.submitThrough(t, c, 1)
	before := c.State()

	ctx, cancel := context.WithCancel(context.Background())
	f.deps.Store = &flakyStore{NominationStore: f.store, onUpdate: cancel}

	_, err := f.steps[1].Submit(ctx, c, []byte(payloadB))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, before, c.State())

	// the write itself stands
	row, err := f.store.FindByID(context.Background(), *before.NominationID)
	require.NoError(t, err)
	assert.NotEmpty(t, row.FormSectionB)
}

func TestSubmitWhileBusy(t *testing.T) {
	f := newFixture(t)
	c := NewContext("u")
	require.True(t, c.beginSubmit())

	_, err := f.steps[0].Submit(context.Background(), c, []byte(payloadA))
	assert.ErrorIs(t, err, ErrBusy)

	c.endSubmit()
	_, err = f.steps[0].Submit(context.Background(), c, []byte(payloadA))
	assert.NoError(t, err)
}

func TestStepERejectedAfterApproval(t *testing.T) {
	f := newFixture(t)
	c := NewContext("u")
	f.submitThrough(t, c, 4)
	id := *c.State().NominationID

	_, _, err := f.store.ChangeStatus(context.Background(), repository.ChangeStatusInput{
		ID: id, To: model.StatusApproved, ChangedBy: "admin",
	})
	require.NoError(t, err)

	_, err = f.steps[4].Submit(context.Background(), c, []byte(payloadE))
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.False(t, c.State().Submitted)
}

func TestDefaultsFollowContext(t *testing.T) {
	f := newFixture(t)
	c := NewContext("u")

	d := f.steps[3].Defaults(c).(model.SectionD)
	assert.Empty(t, d.NominatorEmail)

	f.submitThrough(t, c, 1)
	d = f.steps[3].Defaults(c).(model.SectionD)
	assert.Equal(t, "quick@example.org", d.NominatorEmail)

	a := f.steps[0].Defaults(c).(model.SectionA)
	assert.Equal(t, "Jane Doe", a.NomineeFullName)
}

func TestSelectCategoryClearsForeignAward(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	form, err := SelectCategory(ctx, f.deps.Catalog, model.SectionB{
		AwardCategory: "leadership_legacy", SpecificAward: "african_humanitarian_hero",
	})
	require.NoError(t, err)
	assert.Equal(t, "african_humanitarian_hero", form.SpecificAward)

	form.AwardCategory = "youth_gender_equality"
	form, err = SelectCategory(ctx, f.deps.Catalog, form)
	require.NoError(t, err)
	assert.Equal(t, "youth_gender_equality", form.AwardCategory)
	assert.Empty(t, form.SpecificAward)
}
