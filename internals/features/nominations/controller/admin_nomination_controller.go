package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"pahla_backend/internals/features/nominations/dto"
	"pahla_backend/internals/features/nominations/reminders"
	"pahla_backend/internals/features/nominations/repository"
	"pahla_backend/internals/features/nominations/review"
	"pahla_backend/internals/features/nominations/wizard"
	helper "pahla_backend/internals/helpers"
	"pahla_backend/internals/logger"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

type AdminNominationController struct {
	Service  *review.Service
	Wizard   *wizard.Manager
	Validate *validator.Validate
}

func NewAdminNominationController(svc *review.Service, w *wizard.Manager) *AdminNominationController {
	return &AdminNominationController{Service: svc, Wizard: w, Validate: validator.New()}
}

// GET /api/a/nominations?status=&date_from=&date_to=&q=&page=&per_page=
func (ctl *AdminNominationController) List(c *fiber.Ctx) error {
	var q dto.ListNominationsQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	if err := ctl.Validate.Struct(q); err != nil {
		return helper.ValidationError(c, err)
	}

	pg := helper.ResolvePaging(c, defaultPerPage, maxPerPage)
	f := review.Filter{
		Status:  q.Status,
		From:    parseDay(q.DateFrom),
		To:      parseDay(q.DateTo),
		Query:   q.Q,
		Page:    pg.Page,
		PerPage: pg.PerPage,
	}

	rows, total, err := ctl.Service.List(c.UserContext(), f)
	if err != nil {
		return reviewError(c, err)
	}

	pagination := helper.BuildPaginationFromPage(total, pg.Page, pg.PerPage)
	msg := "ok"
	if total == 0 {
		msg = review.EmptyListMessage(q.Status)
	}
	return helper.JsonList(c, msg, dto.FromNominations(rows), &pagination)
}

// GET /api/a/nominations/:id
func (ctl *AdminNominationController) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id", "nomination id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	detail, err := ctl.Service.Get(c.UserContext(), id)
	if err != nil {
		return reviewError(c, err)
	}
	return helper.JsonOK(c, "ok", detail)
}

// GET /api/a/nominations/:id/history
func (ctl *AdminNominationController) History(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id", "nomination id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	rows, err := ctl.Service.History(c.UserContext(), id)
	if err != nil {
		return reviewError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// PATCH /api/a/nominations/:id/status
func (ctl *AdminNominationController) ChangeStatus(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id", "nomination id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	adminID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.StatusChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Action = strings.ToLower(strings.TrimSpace(req.Action))
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	row, err := ctl.Service.Transition(c.UserContext(), id, review.Action(req.Action), adminID.String(), req.Notes)
	if err != nil {
		return reviewError(c, err)
	}
	return helper.JsonOK(c, "status updated", dto.FromNomination(*row))
}

// POST /api/a/nominations/:id/edit-session
// Opens a wizard session on a nomination of any status for corrections.
func (ctl *AdminNominationController) OpenEditSession(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id", "nomination id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	adminID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	sid, st, err := ctl.Wizard.Start(c.UserContext(), wizard.StartRequest{
		EditID:     &id,
		UploaderID: adminID.String(),
		Reviewer:   true,
	})
	if err != nil {
		return wizardError(c, err)
	}
	if st.NominationID == nil {
		return helper.JsonError(c, fiber.StatusNotFound, "nomination not found")
	}
	return helper.JsonCreated(c, "edit session started", dto.WizardSessionResponse{SessionID: sid, State: st})
}

// DELETE /api/a/nominations/documents/:doc_id?confirm=true
func (ctl *AdminNominationController) DeleteDocument(c *fiber.Ctx) error {
	docID, err := helper.ParseUUIDParam(c, "doc_id", "document id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := ctl.Service.DeleteDocument(c.UserContext(), docID, c.QueryBool("confirm", false)); err != nil {
		return attachmentError(c, err)
	}
	return helper.JsonDeleted(c, "document deleted", fiber.Map{"id": docID})
}

// POST /api/a/nominations/reminders
func (ctl *AdminNominationController) SendReminders(c *fiber.Ctx) error {
	var req dto.ReminderRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	res, err := ctl.Service.SendReminders(c.UserContext(), reminders.Request{
		NominationID: req.NominationID,
		SendToAll:    req.SendToAll,
		SiteURL:      req.SiteURL,
	})
	if err != nil {
		return reviewError(c, err)
	}
	return helper.JsonOK(c, "reminders processed", res)
}

func parseDay(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}

func reviewError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "nomination not found")
	case errors.Is(err, review.ErrInvalidTransition):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, review.ErrUnknownAction),
		errors.Is(err, review.ErrInvalidStatus),
		errors.Is(err, review.ErrInvalidRange),
		errors.Is(err, reminders.ErrNoTarget):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	logger.With("review").Error().Err(err).Str("reqid", reqID(c)).Msg("review request failed")
	return helper.JsonError(c, fiber.StatusInternalServerError, "request failed, please try again")
}
