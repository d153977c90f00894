package bootstrap

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"pahla_backend/internals/configs"
	catService "pahla_backend/internals/features/awards/categories/service"
	"pahla_backend/internals/features/nominations/attachments"
	"pahla_backend/internals/features/nominations/reminders"
	"pahla_backend/internals/features/nominations/repository"
	"pahla_backend/internals/features/nominations/review"
	"pahla_backend/internals/features/nominations/wizard"
	authService "pahla_backend/internals/features/users/auth/service"
	"pahla_backend/internals/helpers/mailer"
	"pahla_backend/internals/helpers/storage"
)

// Infra holds the external adapters the services run against.
type Infra struct {
	Blobs    storage.BlobStore
	Mailer   mailer.Mailer
	Sessions wizard.SessionStore
}

// NewInfra builds the adapters selected by cfg.
func NewInfra(cfg *configs.Config) (Infra, error) {
	blobs, err := storage.New(cfg.Storage)
	if err != nil {
		return Infra{}, fmt.Errorf("blob store: %w", err)
	}
	sessions, err := wizard.NewSessionStore(cfg.Sessions)
	if err != nil {
		return Infra{}, fmt.Errorf("session store: %w", err)
	}
	return Infra{Blobs: blobs, Mailer: mailer.New(cfg.SMTP), Sessions: sessions}, nil
}

type Services struct {
	Auth        *authService.AuthService
	Categories  *catService.CategoryService
	Wizard      *wizard.Manager
	Attachments *attachments.Manager
	Reminders   *reminders.Dispatcher
	Review      *review.Service
}

func Build(db *gorm.DB, cfg *configs.Config, in Infra) *Services {
	noms := repository.NewNominationStore(db)
	cats := catService.NewCategoryService(db)
	renderer := mailer.NewRenderer()

	att := attachments.NewManager(repository.NewDocumentStore(db), in.Blobs)
	att.Prefix = cfg.Storage.Prefix
	att.ConvertPhotos = cfg.Storage.WebPEnabled
	att.WebP = storage.WebPOptions{MaxW: cfg.Storage.WebPMaxW, MaxH: cfg.Storage.WebPMaxH, Quality: cfg.Storage.WebPQuality}

	disp := &reminders.Dispatcher{
		Store:       noms,
		Mailer:      in.Mailer,
		Renderer:    renderer,
		SiteURL:     cfg.SiteURL,
		Concurrency: cfg.ReminderConcurrency,
	}

	mgr := wizard.NewManager(&wizard.Deps{
		Store:    noms,
		Catalog:  cats,
		Mailer:   in.Mailer,
		Renderer: renderer,
		SiteURL:  cfg.SiteURL,
	}, in.Sessions)

	return &Services{
		Auth:        authService.NewAuthService(db, cfg.JWTSecret, cfg.JWTTTL),
		Categories:  cats,
		Wizard:      mgr,
		Attachments: att,
		Reminders:   disp,
		Review:      &review.Service{Store: noms, Attachments: att, Reminders: disp},
	}
}

// ReminderTimeout bounds one scheduled reminder run.
const ReminderTimeout = 10 * time.Minute
