package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"pahla_backend/internals/databases/dbtest"
	catService "pahla_backend/internals/features/awards/categories/service"
	"pahla_backend/internals/features/nominations/model"
	"pahla_backend/internals/features/nominations/repository"
	"pahla_backend/internals/helpers/mailer"
)

const (
	payloadA = `{
		"nominee_full_name": "Jane Doe",
		"nominee_nationality": "gh",
		"nominee_country_of_residence": "KE",
		"nominee_title_position": "Founder",
		"nominee_email": "Jane@Example.org",
		"nominee_phone": "+233 24 123 4567",
		"nominee_type": "individual",
		"summary_of_achievement": "Built clinics across the Sahel.",
		"nominator_full_name": "Quick Contact",
		"nominator_email": "quick@example.org"
	}`
	payloadB = `{"award_category": "leadership_legacy", "specific_award": "african_humanitarian_hero"}`
	payloadC = `{"justification": "Two decades of relief work.", "media_links": ["https://example.org/story"]}`
	payloadD = `{
		"nominator_full_name": "John Smith",
		"nominator_relationship_to_nominee": "Colleague",
		"nominator_email": "john@example.org",
		"nominator_phone": "+44 20 7946 0958",
		"nominator_reason": "She changed thousands of lives."
	}`
	payloadE = `{"confirm_accuracy": true, "nominator_signature": "John Smith"}`
)

var payloads = []string{payloadA, payloadB, payloadC, payloadD, payloadE}

type fixture struct {
	store  *repository.GormNominationStore
	deps   *Deps
	mail   *mailer.Recorder
	steps  []StepController
	frozen time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.OpenWithCatalog(t)
	store := repository.NewNominationStore(db)
	rec := &mailer.Recorder{}
	frozen := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	d := &Deps{
		Store:    store,
		Catalog:  catService.NewCategoryService(db),
		Mailer:   rec,
		Renderer: mailer.NewRenderer(),
		SiteURL:  "https://pahla.test",
		Now:      func() time.Time { return frozen },
	}
	return &fixture{store: store, deps: d, mail: rec, steps: NewSteps(d), frozen: frozen}
}

// submitThrough submits steps 1..n with valid payloads.
func (f *fixture) submitThrough(t *testing.T, c *Context, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := f.steps[i].Submit(context.Background(), c, []byte(payloads[i]))
		require.NoError(t, err, "step %d", i+1)
	}
}

// seedRow stores a nomination with the given sections present.
func (f *fixture) seedRow(t *testing.T, status model.NominationStatus, secs ...model.Section) uuid.UUID {
	t.Helper()
	row := &model.NominationModel{NomineeName: "Seeded", Status: status}
	for _, s := range secs {
		raw, err := model.EncodeSection(s)
		require.NoError(t, err)
		*row.Column(s.Key()) = raw
	}
	require.NoError(t, f.store.Create(context.Background(), row))
	return row.ID
}

// flakyStore fails or cancels on UpdateColumns.
type flakyStore struct {
	repository.NominationStore
	failUpdate error
	onUpdate   func()
}

func (s *flakyStore) UpdateColumns(ctx context.Context, id uuid.UUID, cols map[string]any) error {
	if s.failUpdate != nil {
		return s.failUpdate
	}
	err := s.NominationStore.UpdateColumns(ctx, id, cols)
	if s.onUpdate != nil {
		s.onUpdate()
	}
	return err
}
