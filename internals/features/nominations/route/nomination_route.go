package route

import (
	"github.com/gofiber/fiber/v2"

	"pahla_backend/internals/features/nominations/attachments"
	"pahla_backend/internals/features/nominations/controller"
	"pahla_backend/internals/features/nominations/review"
	"pahla_backend/internals/features/nominations/wizard"
	"pahla_backend/internals/middlewares"
)

func NominationPublicRoutes(public fiber.Router, w *wizard.Manager, att *attachments.Manager) {
	ctl := controller.NewWizardController(w, att)

	g := public.Group("/nomination-wizard")
	g.Post("/", middlewares.WizardStartRateLimiter(), ctl.Start)
	g.Get("/:sid", ctl.Get)
	g.Post("/:sid/back", ctl.Back)
	g.Post("/:sid/reset", ctl.Reset)
	g.Post("/:sid/category", ctl.SelectCategory)
	g.Get("/:sid/steps/:step", ctl.StepForm)
	g.Post("/:sid/steps/:step", ctl.SubmitStep)

	docs := g.Group("/:sid/documents")
	docs.Get("/", ctl.ListDocuments)
	docs.Post("/", middlewares.UploadRateLimiter(), ctl.UploadDocuments)
	docs.Delete("/:doc_id", ctl.DeleteDocument)
}

func NominationAdminRoutes(admin fiber.Router, svc *review.Service, w *wizard.Manager) {
	ctl := controller.NewAdminNominationController(svc, w)

	g := admin.Group("/nominations")
	g.Get("/", ctl.List)
	g.Post("/reminders", ctl.SendReminders)
	g.Delete("/documents/:doc_id", ctl.DeleteDocument)
	g.Get("/:id", ctl.Get)
	g.Get("/:id/history", ctl.History)
	g.Patch("/:id/status", ctl.ChangeStatus)
	g.Post("/:id/edit-session", ctl.OpenEditSession)
}
