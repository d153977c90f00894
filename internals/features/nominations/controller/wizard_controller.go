package controller

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"pahla_backend/internals/constants"
	"pahla_backend/internals/features/nominations/attachments"
	"pahla_backend/internals/features/nominations/dto"
	"pahla_backend/internals/features/nominations/model"
	"pahla_backend/internals/features/nominations/repository"
	"pahla_backend/internals/features/nominations/wizard"
	helper "pahla_backend/internals/helpers"
	"pahla_backend/internals/logger"
)

type WizardController struct {
	Wizard      *wizard.Manager
	Attachments *attachments.Manager
}

func NewWizardController(w *wizard.Manager, a *attachments.Manager) *WizardController {
	return &WizardController{Wizard: w, Attachments: a}
}

// POST /api/public/nomination-wizard[?continue=<id>|?edit=<id>]
// Both links only reopen draft or incomplete nominations.
func (ctl *WizardController) Start(c *fiber.Ctx) error {
	var req wizard.StartRequest
	if id, ok := queryUUID(c, "continue"); ok {
		req.ContinueID = &id
	} else if id, ok := queryUUID(c, "edit"); ok {
		req.EditID = &id
	}
	if uid, ok := c.Locals("user_id").(string); ok {
		req.UploaderID = uid
	}

	sid, st, err := ctl.Wizard.Start(c.UserContext(), req)
	if err != nil {
		return wizardError(c, err)
	}
	return helper.JsonCreated(c, "nomination session started", dto.WizardSessionResponse{SessionID: sid, State: st})
}

// GET /api/public/nomination-wizard/:sid
func (ctl *WizardController) Get(c *fiber.Ctx) error {
	st, err := ctl.Wizard.Get(c.UserContext(), c.Params("sid"))
	if err != nil {
		return wizardError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.WizardSessionResponse{SessionID: c.Params("sid"), State: st})
}

// GET /api/public/nomination-wizard/:sid/steps/:step
func (ctl *WizardController) StepForm(c *fiber.Ctx) error {
	step, err := c.ParamsInt("step")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "step must be a number from 1 to 5")
	}
	form, st, err := ctl.Wizard.Defaults(c.UserContext(), c.Params("sid"), step)
	if err != nil {
		return wizardError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.StepFormResponse{Step: step, Form: form, State: st})
}

// POST /api/public/nomination-wizard/:sid/steps/:step
func (ctl *WizardController) SubmitStep(c *fiber.Ctx) error {
	step, err := c.ParamsInt("step")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "step must be a number from 1 to 5")
	}
	res, st, err := ctl.Wizard.Submit(c.UserContext(), c.Params("sid"), step, c.Body())
	if err != nil {
		return wizardError(c, err)
	}
	msg := "section saved"
	if res.Submitted {
		msg = "nomination submitted"
	}
	return helper.JsonOK(c, msg, dto.StepSubmitResponse{Result: res, State: st})
}

// POST /api/public/nomination-wizard/:sid/back
func (ctl *WizardController) Back(c *fiber.Ctx) error {
	st, err := ctl.Wizard.Back(c.UserContext(), c.Params("sid"))
	if err != nil {
		return wizardError(c, err)
	}
	return helper.JsonOK(c, "ok", st)
}

// POST /api/public/nomination-wizard/:sid/reset
func (ctl *WizardController) Reset(c *fiber.Ctx) error {
	st, err := ctl.Wizard.Reset(c.UserContext(), c.Params("sid"))
	if err != nil {
		return wizardError(c, err)
	}
	return helper.JsonOK(c, "new nomination started", st)
}

// POST /api/public/nomination-wizard/:sid/category
func (ctl *WizardController) SelectCategory(c *fiber.Ctx) error {
	var form model.SectionB
	if err := c.BodyParser(&form); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	out, err := ctl.Wizard.SelectCategory(c.UserContext(), c.Params("sid"), form)
	if err != nil {
		return wizardError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

/* ===============================
   Documents
=================================*/

// GET /api/public/nomination-wizard/:sid/documents?file_type=
func (ctl *WizardController) ListDocuments(c *fiber.Ctx) error {
	st, err := ctl.Wizard.Get(c.UserContext(), c.Params("sid"))
	if err != nil {
		return wizardError(c, err)
	}
	if st.NominationID == nil {
		return helper.JsonOK(c, "ok", dto.DocumentListResponse{Documents: []attachments.Document{}})
	}

	ft := model.FileType(strings.TrimSpace(c.Query("file_type")))
	docs, err := ctl.Attachments.List(c.UserContext(), *st.NominationID, st.UploaderID, ft)
	if err != nil {
		return attachmentError(c, err)
	}
	left, err := ctl.Attachments.Remaining(c.UserContext(), *st.NominationID)
	if err != nil {
		return attachmentError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.DocumentListResponse{Documents: docs, Remaining: left})
}

// POST /api/public/nomination-wizard/:sid/documents (multipart: file_type, files[])
func (ctl *WizardController) UploadDocuments(c *fiber.Ctx) error {
	st, err := ctl.Wizard.Get(c.UserContext(), c.Params("sid"))
	if err != nil {
		return wizardError(c, err)
	}
	if st.NominationID == nil {
		return attachmentError(c, attachments.ErrMissingNomination)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "use multipart/form-data")
	}
	headers := append(form.File["files"], form.File["file"]...)
	if len(headers) == 0 {
		return attachmentError(c, attachments.ErrMissingFile)
	}

	base := attachments.UploadRequest{
		NominationID: *st.NominationID,
		UploaderID:   st.UploaderID,
		FileType:     model.FileType(strings.TrimSpace(c.FormValue("file_type"))),
	}

	files := make([]attachments.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "could not read "+fh.Filename)
		}
		defer f.Close()
		files = append(files, attachments.File{FileName: fh.Filename, ContentType: contentType(fh), Body: f})
	}

	if len(files) == 1 {
		req := base
		req.FileName, req.ContentType, req.Body = files[0].FileName, files[0].ContentType, files[0].Body
		doc, err := ctl.Attachments.Upload(c.UserContext(), req)
		if err != nil {
			return attachmentError(c, err)
		}
		return helper.JsonCreated(c, "document uploaded", doc)
	}

	results, err := ctl.Attachments.UploadBatch(c.UserContext(), base, files)
	if err != nil {
		return attachmentError(c, err)
	}
	return helper.JsonMultiStatus(c, "documents processed", results)
}

// DELETE /api/public/nomination-wizard/:sid/documents/:doc_id?confirm=true
func (ctl *WizardController) DeleteDocument(c *fiber.Ctx) error {
	st, err := ctl.Wizard.Get(c.UserContext(), c.Params("sid"))
	if err != nil {
		return wizardError(c, err)
	}
	docID, err := helper.ParseUUIDParam(c, "doc_id", "document id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	err = ctl.Attachments.Delete(c.UserContext(), attachments.DeleteRequest{
		DocumentID: docID,
		UploaderID: st.UploaderID,
		Confirmed:  c.QueryBool("confirm", false),
	})
	if err != nil {
		return attachmentError(c, err)
	}
	return helper.JsonDeleted(c, "document deleted", fiber.Map{"id": docID})
}

/* ===============================
   Helpers
=================================*/

func queryUUID(c *fiber.Ctx, key string) (uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		// unparseable ids still go through the loader so the user gets the notice
		return uuid.Nil, true
	}
	return id, true
}

func contentType(fh *multipart.FileHeader) string {
	ct := strings.TrimSpace(fh.Header.Get(fiber.HeaderContentType))
	if ct == "" || ct == fiber.MIMEOctetStream {
		return constants.ContentTypeFromExt(fh.Filename)
	}
	return ct
}

func wizardError(c *fiber.Ctx, err error) error {
	var verr *wizard.ValidationError
	switch {
	case errors.As(err, &verr):
		return helper.JsonValidationError(c, verr.Fields)
	case errors.Is(err, wizard.ErrSessionNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, wizard.ErrUnknownStep):
		return helper.JsonError(c, fiber.StatusNotFound, "step must be a number from 1 to 5")
	case errors.Is(err, wizard.ErrBusy),
		errors.Is(err, wizard.ErrWrongStep),
		errors.Is(err, wizard.ErrNoNomination),
		errors.Is(err, wizard.ErrAlreadySubmitted):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "nomination not found")
	case errors.Is(err, context.Canceled):
		return helper.JsonError(c, fiber.StatusRequestTimeout, "request cancelled")
	}
	logger.With("wizard").Error().Err(err).Str("reqid", reqID(c)).Msg("wizard request failed")
	return helper.JsonError(c, fiber.StatusInternalServerError, "we could not save your nomination, please try again")
}

func attachmentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, attachments.ErrAttachmentLimit):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, attachments.ErrConfirmationRequired),
		errors.Is(err, attachments.ErrMissingNomination),
		errors.Is(err, attachments.ErrMissingUploader),
		errors.Is(err, attachments.ErrInvalidFileType),
		errors.Is(err, attachments.ErrMissingFile):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "document not found")
	case errors.Is(err, attachments.ErrBlobStore):
		logger.With("attachments").Error().Err(err).Str("reqid", reqID(c)).Msg("blob store")
		return helper.JsonError(c, fiber.StatusBadGateway, "document storage is unavailable, please try again")
	}
	logger.With("attachments").Error().Err(err).Str("reqid", reqID(c)).Msg("attachment request failed")
	return helper.JsonError(c, fiber.StatusInternalServerError, "document request failed")
}

func reqID(c *fiber.Ctx) string {
	if v, ok := c.Locals("reqid").(string); ok {
		return v
	}
	return ""
}
