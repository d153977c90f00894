package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"sync"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	TemplateReminder               = "reminder"
	TemplateNominationConfirmation = "nomination_confirmation"
)

// ReminderData feeds the "reminder" template.
type ReminderData struct {
	NominatorName string
	NomineeName   string
	ContinueURL   string
	SiteURL       string
}

// ConfirmationData feeds the "nomination_confirmation" template.
type ConfirmationData struct {
	NominatorName string
	NomineeName   string
	AwardCategory string
	SpecificAward string
	NominationID  string
	SubmittedAt   string
	SiteURL       string
}

// Renderer renders the embedded email templates with the fiber html engine.
type Renderer struct {
	once   sync.Once
	engine *html.Engine
	err    error
}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) load() error {
	r.once.Do(func() {
		sub, err := fs.Sub(templateFS, "templates")
		if err != nil {
			r.err = err
			return
		}
		r.engine = html.NewFileSystem(http.FS(sub), ".html")
		r.err = r.engine.Load()
	})
	return r.err
}

func (r *Renderer) Render(name string, data any) (string, error) {
	if err := r.load(); err != nil {
		return "", fmt.Errorf("load email templates: %w", err)
	}
	var buf bytes.Buffer
	if err := r.engine.Render(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
