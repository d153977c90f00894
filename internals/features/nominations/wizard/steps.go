package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	catService "pahla_backend/internals/features/awards/categories/service"
	"pahla_backend/internals/features/nominations/model"
	"pahla_backend/internals/features/nominations/repository"
	"pahla_backend/internals/features/nominations/validation"
	"pahla_backend/internals/helpers/mailer"
	"pahla_backend/internals/logger"
)

// CatalogSource yields the current award catalogue.
type CatalogSource interface {
	Catalog(ctx context.Context) (*catService.Catalog, error)
}

// StepResult describes a successful step submission.
type StepResult struct {
	Step         int                    `json:"step"`
	NextStep     int                    `json:"next_step"`
	NominationID uuid.UUID              `json:"nomination_id"`
	Submitted    bool                   `json:"submitted"`
	Nomination   *model.NominationModel `json:"nomination,omitempty"`
}

// StepController validates and persists one wizard section.
type StepController interface {
	Number() int
	Defaults(c *Context) model.Section
	Submit(ctx context.Context, c *Context, payload []byte) (*StepResult, error)
}

// Deps are shared by every step controller.
type Deps struct {
	Store    repository.NominationStore
	Catalog  CatalogSource
	Mailer   mailer.Mailer
	Renderer *mailer.Renderer
	SiteURL  string
	Now      func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now().UTC()
}

// NewSteps returns the controllers for steps 1..5 in order.
func NewSteps(d *Deps) []StepController {
	return []StepController{&StepA{d}, &StepB{d}, &StepC{d}, &StepD{d}, &StepE{d}}
}

// Back moves one step down; step 1 stays on 1.
func Back(c *Context) {
	c.SetCurrentStep(c.State().CurrentStep - 1)
}

type persistFunc func(ctx context.Context, st State, sec model.Section) (*model.NominationModel, error)

// run is the shared submit sequence: validate, persist, then update the
// Context only if the caller is still waiting.
func run(ctx context.Context, c *Context, step int, sec model.Section, errs validation.FieldErrors, persist persistFunc) (*StepResult, error) {
	if !c.beginSubmit() {
		return nil, ErrBusy
	}
	defer c.endSubmit()

	if !errs.Empty() {
		return nil, &ValidationError{Step: step, Fields: errs}
	}

	st := c.State()
	row, err := persist(ctx, st, sec)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("step %d abandoned after save: %w", step, ctx.Err())
	}

	c.UpdateSectionData(sec)
	c.SetNominationID(row.ID)
	next := step + 1
	if step == LastStep {
		next = LastStep
		c.markSubmitted()
	}
	c.SetCurrentStep(next)

	return &StepResult{
		Step:         step,
		NextStep:     clampStep(next),
		NominationID: row.ID,
		Submitted:    step == LastStep,
		Nomination:   row,
	}, nil
}

func decode(step int, payload []byte, v any) error {
	if len(strings.TrimSpace(string(payload))) == 0 {
		payload = []byte("{}")
	}
	if err := sonic.Unmarshal(payload, v); err != nil {
		return &ValidationError{Step: step, Fields: validation.FieldErrors{"_": {"request body is not valid JSON"}}}
	}
	return nil
}

func boundID(st State) (uuid.UUID, error) {
	if st.NominationID == nil {
		return uuid.Nil, ErrNoNomination
	}
	return *st.NominationID, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// updateAndFetch writes cols to a bound nomination and re-reads it.
func (d *Deps) updateAndFetch(ctx context.Context, id uuid.UUID, cols map[string]any) (*model.NominationModel, error) {
	if err := d.Store.UpdateColumns(ctx, id, cols); err != nil {
		return nil, fmt.Errorf("save nomination %s: %w", id, err)
	}
	return d.Store.FindByID(ctx, id)
}

/* ===============================
   A: nominee information
=================================*/

type StepA struct{ d *Deps }

func (s *StepA) Number() int { return 1 }

func (s *StepA) Defaults(c *Context) model.Section {
	if st := c.State(); st.Sections.A != nil {
		return *st.Sections.A
	}
	return model.SectionA{}
}

func (s *StepA) Submit(ctx context.Context, c *Context, payload []byte) (*StepResult, error) {
	var in model.SectionA
	if err := decode(1, payload, &in); err != nil {
		return nil, err
	}
	sec, errs := validation.ValidateA(in)
	return run(ctx, c, 1, sec, errs, s.persist)
}

func (s *StepA) persist(ctx context.Context, st State, sec model.Section) (*model.NominationModel, error) {
	a := sec.(model.SectionA)
	raw, err := model.EncodeSection(a)
	if err != nil {
		return nil, err
	}

	cols := map[string]any{
		"form_section_a":         raw,
		"nominee_name":           a.NomineeFullName,
		"nominee_email":          optional(a.NomineeEmail),
		"nominee_type":           optional(a.NomineeType),
		"summary_of_achievement": optional(a.SummaryOfAchievement),
	}
	// quick-contact fields only stand in until D exists
	if st.Sections.D == nil {
		cols["nominator_name"] = optional(a.NominatorFullName)
		cols["nominator_email"] = optional(a.NominatorEmail)
	}
	if b := st.Sections.B; b != nil {
		cols["award_category_id"] = optional(b.AwardCategory)
		cols["specific_award"] = optional(b.SpecificAward)
	}

	if st.NominationID != nil {
		return s.d.updateAndFetch(ctx, *st.NominationID, cols)
	}

	row := &model.NominationModel{
		NomineeName:          a.NomineeFullName,
		NomineeEmail:         optional(a.NomineeEmail),
		NomineeType:          optional(a.NomineeType),
		SummaryOfAchievement: optional(a.SummaryOfAchievement),
		NominatorName:        optional(a.NominatorFullName),
		NominatorEmail:       optional(a.NominatorEmail),
		Status:               model.StatusDraft,
		FormSectionA:         raw,
	}
	updates := make([]string, 0, len(cols))
	for k := range cols {
		updates = append(updates, k)
	}
	out, err := s.d.Store.Upsert(ctx, row, updates)
	if err != nil {
		return nil, fmt.Errorf("create nomination: %w", err)
	}
	logger.With("wizard").Info().Str("nomination_id", out.ID.String()).Msg("draft created")
	return out, nil
}

/* ===============================
   B: award category
=================================*/

type StepB struct{ d *Deps }

func (s *StepB) Number() int { return 2 }

func (s *StepB) Defaults(c *Context) model.Section {
	if st := c.State(); st.Sections.B != nil {
		return *st.Sections.B
	}
	return model.SectionB{}
}

func (s *StepB) Submit(ctx context.Context, c *Context, payload []byte) (*StepResult, error) {
	var in model.SectionB
	if err := decode(2, payload, &in); err != nil {
		return nil, err
	}
	cat, err := s.d.Catalog.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load award catalog: %w", err)
	}
	sec, errs := validation.ValidateB(cat, in)
	return run(ctx, c, 2, sec, errs, s.persist)
}

func (s *StepB) persist(ctx context.Context, st State, sec model.Section) (*model.NominationModel, error) {
	id, err := boundID(st)
	if err != nil {
		return nil, err
	}
	b := sec.(model.SectionB)
	raw, err := model.EncodeSection(b)
	if err != nil {
		return nil, err
	}
	return s.d.updateAndFetch(ctx, id, map[string]any{
		"form_section_b":    raw,
		"award_category_id": b.AwardCategory,
		"specific_award":    b.SpecificAward,
	})
}

// SelectCategory applies the category cascade to a B form: an award the new
// category does not offer is cleared.
func SelectCategory(ctx context.Context, src CatalogSource, form model.SectionB) (model.SectionB, error) {
	cat, err := src.Catalog(ctx)
	if err != nil {
		return form, err
	}
	form.AwardCategory = strings.TrimSpace(form.AwardCategory)
	form.SpecificAward = validation.ReconcileAward(cat, form.AwardCategory, strings.TrimSpace(form.SpecificAward))
	return form, nil
}

/* ===============================
   C: justification
=================================*/

type StepC struct{ d *Deps }

func (s *StepC) Number() int { return 3 }

func (s *StepC) Defaults(c *Context) model.Section {
	if st := c.State(); st.Sections.C != nil {
		return *st.Sections.C
	}
	return model.SectionC{MediaLinks: []string{}}
}

func (s *StepC) Submit(ctx context.Context, c *Context, payload []byte) (*StepResult, error) {
	var in model.SectionC
	if err := decode(3, payload, &in); err != nil {
		return nil, err
	}
	sec, errs := validation.ValidateC(in)
	return run(ctx, c, 3, sec, errs, s.persist)
}

func (s *StepC) persist(ctx context.Context, st State, sec model.Section) (*model.NominationModel, error) {
	id, err := boundID(st)
	if err != nil {
		return nil, err
	}
	raw, err := model.EncodeSection(sec)
	if err != nil {
		return nil, err
	}
	return s.d.updateAndFetch(ctx, id, map[string]any{"form_section_c": raw})
}

/* ===============================
   D: nominator information
=================================*/

type StepD struct{ d *Deps }

func (s *StepD) Number() int { return 4 }

func (s *StepD) Defaults(c *Context) model.Section {
	st := c.State()
	if st.Sections.D != nil {
		return *st.Sections.D
	}
	// carry the quick-contact fields from A forward
	var out model.SectionD
	if a := st.Sections.A; a != nil {
		out.NominatorFullName = a.NominatorFullName
		out.NominatorEmail = a.NominatorEmail
	}
	return out
}

func (s *StepD) Submit(ctx context.Context, c *Context, payload []byte) (*StepResult, error) {
	var in model.SectionD
	if err := decode(4, payload, &in); err != nil {
		return nil, err
	}
	sec, errs := validation.ValidateD(in)
	return run(ctx, c, 4, sec, errs, s.persist)
}

func (s *StepD) persist(ctx context.Context, st State, sec model.Section) (*model.NominationModel, error) {
	id, err := boundID(st)
	if err != nil {
		return nil, err
	}
	d := sec.(model.SectionD)
	raw, err := model.EncodeSection(d)
	if err != nil {
		return nil, err
	}
	return s.d.updateAndFetch(ctx, id, map[string]any{
		"form_section_d":  raw,
		"nominator_name":  d.NominatorFullName,
		"nominator_email": d.NominatorEmail,
	})
}

/* ===============================
   E: confirmation and submit
=================================*/

type StepE struct{ d *Deps }

func (s *StepE) Number() int { return 5 }

func (s *StepE) Defaults(c *Context) model.Section {
	st := c.State()
	if st.Sections.E != nil {
		return *st.Sections.E
	}
	var out model.SectionE
	if d := st.Sections.D; d != nil {
		out.NominatorSignature = d.NominatorFullName
	}
	return out
}

func (s *StepE) Submit(ctx context.Context, c *Context, payload []byte) (*StepResult, error) {
	var in model.SectionE
	if err := decode(5, payload, &in); err != nil {
		return nil, err
	}
	sec, errs := validation.ValidateE(in)
	if errs.Empty() && sec.ConfirmedAt == "" {
		sec.ConfirmedAt = s.d.now().Format(time.RFC3339)
	}
	res, err := run(ctx, c, 5, sec, errs, s.persist)
	if err != nil {
		return nil, err
	}
	s.sendConfirmation(ctx, res.Nomination)
	return res, nil
}

func (s *StepE) persist(ctx context.Context, st State, sec model.Section) (*model.NominationModel, error) {
	id, err := boundID(st)
	if err != nil {
		return nil, err
	}
	raw, err := model.EncodeSection(sec)
	if err != nil {
		return nil, err
	}
	row, _, err := s.d.Store.ChangeStatus(ctx, repository.ChangeStatusInput{
		ID: id,
		From: []model.NominationStatus{
			model.StatusDraft, model.StatusIncomplete, model.StatusSubmitted,
		},
		To:        model.StatusSubmitted,
		ChangedBy: model.ChangedByNominator,
		Extra: map[string]any{
			"form_section_e": raw,
			"submitted_at":   s.d.now(),
		},
	})
	var conflict *repository.StatusConflictError
	if errors.As(err, &conflict) {
		return nil, fmt.Errorf("%w (status %s)", ErrAlreadySubmitted, conflict.Current)
	}
	if err != nil {
		return nil, fmt.Errorf("submit nomination %s: %w", id, err)
	}
	return row, nil
}

// sendConfirmation is best effort; failures are only logged.
func (s *StepE) sendConfirmation(ctx context.Context, row *model.NominationModel) {
	log := logger.With("wizard")
	if s.d.Mailer == nil || row == nil || row.NominatorEmail == nil || *row.NominatorEmail == "" {
		return
	}
	renderer := s.d.Renderer
	if renderer == nil {
		renderer = mailer.NewRenderer()
	}

	data := mailer.ConfirmationData{
		NomineeName:  row.NomineeName,
		NominationID: row.ID.String(),
		SiteURL:      s.d.SiteURL,
	}
	if row.NominatorName != nil {
		data.NominatorName = *row.NominatorName
	}
	if row.SpecificAward != nil {
		data.SpecificAward = *row.SpecificAward
	}
	if row.AwardCategoryID != nil {
		data.AwardCategory = *row.AwardCategoryID
		if cat, err := s.d.Catalog.Catalog(ctx); err == nil {
			if c, ok := cat.Lookup(*row.AwardCategoryID); ok {
				data.AwardCategory = c.AwardCategoryTitle
			}
		}
	}
	if row.SubmittedAt != nil {
		data.SubmittedAt = row.SubmittedAt.UTC().Format("2 January 2006")
	}

	html, err := renderer.Render(mailer.TemplateNominationConfirmation, data)
	if err != nil {
		log.Error().Err(err).Msg("render confirmation email")
		return
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 20*time.Second)
	defer cancel()
	err = s.d.Mailer.Send(sendCtx, mailer.Message{
		To:      []string{*row.NominatorEmail},
		Subject: "Your PAHLA nomination for " + row.NomineeName + " was received",
		HTML:    html,
	})
	if err != nil {
		log.Warn().Err(err).Str("nomination_id", row.ID.String()).Msg("confirmation email not sent")
	}
}
