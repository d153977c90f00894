package route

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pahla_backend/internals/databases/dbtest"
	catService "pahla_backend/internals/features/awards/categories/service"
	"pahla_backend/internals/features/nominations/attachments"
	"pahla_backend/internals/features/nominations/reminders"
	"pahla_backend/internals/features/nominations/repository"
	"pahla_backend/internals/features/nominations/review"
	"pahla_backend/internals/features/nominations/wizard"
	"pahla_backend/internals/helpers/mailer"
	"pahla_backend/internals/helpers/storage"
)

const stepA = `{
	"nominee_full_name": "Amina Bello",
	"nominee_nationality": "NG",
	"nominee_country_of_residence": "NG",
	"nominee_title_position": "Director",
	"nominee_email": "amina@example.org",
	"nominee_phone": "+234 803 123 4567",
	"nominee_type": "individual",
	"summary_of_achievement": "Runs flood relief in the Niger delta.",
	"nominator_full_name": "Ade Obi",
	"nominator_email": "ade@example.org"
}`

type envelope struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	ErrorCode  string              `json:"error_code"`
	Errors     map[string][]string `json:"errors"`
	Data       json.RawMessage     `json:"data"`
	Pagination struct {
		Total int64 `json:"total"`
	} `json:"pagination"`
}

type harness struct {
	app   *fiber.App
	blobs *storage.MockBlobStore
	mail  *mailer.Recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := dbtest.OpenWithCatalog(t)
	store := repository.NewNominationStore(db)
	rec := &mailer.Recorder{}
	renderer := mailer.NewRenderer()

	mgr := wizard.NewManager(&wizard.Deps{
		Store:    store,
		Catalog:  catService.NewCategoryService(db),
		Mailer:   rec,
		Renderer: renderer,
		SiteURL:  "https://pahla.test",
	}, wizard.NewMemorySessionStore(time.Hour))

	blobs := storage.NewMockBlobStore()
	att := attachments.NewManager(repository.NewDocumentStore(db), blobs)
	svc := &review.Service{
		Store:       store,
		Attachments: att,
		Reminders:   &reminders.Dispatcher{Store: store, Mailer: rec, Renderer: renderer, SiteURL: "https://pahla.test"},
	}

	app := fiber.New()
	NominationPublicRoutes(app.Group("/api/public"), mgr, att)
	admin := app.Group("/api/a", func(c *fiber.Ctx) error {
		c.Locals("user_id", "7d9f3f0e-4a4c-4b4b-9f5e-2f5b2b7c1a10")
		c.Locals("userRole", "admin")
		return c.Next()
	})
	NominationAdminRoutes(admin, svc, mgr)
	return &harness{app: app, blobs: blobs, mail: rec}
}

func (h *harness) do(t *testing.T, method, path, contentType string, body io.Reader) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func (h *harness) jsonReq(t *testing.T, method, path, body string) (int, envelope) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	return h.do(t, method, path, fiber.MIMEApplicationJSON, r)
}

func (h *harness) start(t *testing.T) string {
	t.Helper()
	code, env := h.jsonReq(t, http.MethodPost, "/api/public/nomination-wizard", "")
	require.Equal(t, http.StatusCreated, code)
	var out struct {
		SessionID string       `json:"session_id"`
		State     wizard.State `json:"state"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.SessionID)
	assert.Equal(t, 1, out.State.CurrentStep)
	return out.SessionID
}

func multipartBody(t *testing.T, fileType string, names ...string) (string, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	require.NoError(t, w.WriteField("file_type", fileType))
	for _, n := range names {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="files"; filename="`+n+`"`)
		hdr.Set("Content-Type", "application/pdf")
		part, err := w.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 " + n))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return w.FormDataContentType(), buf
}

func TestWizardHTTPFlow(t *testing.T) {
	h := newHarness(t)
	sid := h.start(t)
	base := "/api/public/nomination-wizard/" + sid

	code, env := h.jsonReq(t, http.MethodPost, base+"/steps/2", `{}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CONFLICT", env.ErrorCode)

	code, env = h.jsonReq(t, http.MethodPost, base+"/steps/1", `{"nominee_full_name": ""}`)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.NotEmpty(t, env.Errors)

	code, env = h.jsonReq(t, http.MethodPost, base+"/steps/9", `{}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = h.jsonReq(t, http.MethodPost, base+"/steps/1", stepA)
	require.Equal(t, http.StatusOK, code, env.Message)
	var saved struct {
		Result wizard.StepResult `json:"result"`
		State  wizard.State      `json:"state"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &saved))
	assert.NotEqual(t, uuid.Nil, saved.Result.NominationID)
	assert.Equal(t, 2, saved.State.CurrentStep)

	code, env = h.jsonReq(t, http.MethodGet, base+"/steps/1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "Amina Bello")

	code, _ = h.jsonReq(t, http.MethodPost, base+"/back", "")
	require.Equal(t, http.StatusOK, code)
	code, env = h.jsonReq(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"current_step":1`)
}

func TestWizardUnknownSession(t *testing.T) {
	h := newHarness(t)
	code, env := h.jsonReq(t, http.MethodGet, "/api/public/nomination-wizard/missing", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
}

func TestWizardDocumentsHTTP(t *testing.T) {
	h := newHarness(t)
	sid := h.start(t)
	base := "/api/public/nomination-wizard/" + sid

	ct, body := multipartBody(t, "cv_resume", "cv.pdf")
	code, env := h.do(t, http.MethodPost, base+"/documents", ct, body)
	assert.Equal(t, http.StatusBadRequest, code, "no nomination bound yet")
	assert.Equal(t, attachments.ErrMissingNomination.Error(), env.Message)

	code, _ = h.jsonReq(t, http.MethodPost, base+"/steps/1", stepA)
	require.Equal(t, http.StatusOK, code)

	ct, body = multipartBody(t, "cv_resume", "cv.pdf")
	code, env = h.do(t, http.MethodPost, base+"/documents", ct, body)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var doc attachments.Document
	require.NoError(t, json.Unmarshal(env.Data, &doc))
	assert.True(t, h.blobs.Has(doc.StoragePath))

	ct, body = multipartBody(t, "photo_media", "a.pdf", "b.pdf")
	code, env = h.do(t, http.MethodPost, base+"/documents", ct, body)
	require.Equal(t, http.StatusMultiStatus, code)
	var results []attachments.UploadResult
	require.NoError(t, json.Unmarshal(env.Data, &results))
	assert.Len(t, results, 2)

	ct, body = multipartBody(t, "cv_resume", "second.pdf")
	code, _ = h.do(t, http.MethodPost, base+"/documents", ct, body)
	assert.Equal(t, http.StatusConflict, code)

	code, env = h.jsonReq(t, http.MethodGet, base+"/documents", "")
	require.Equal(t, http.StatusOK, code)
	var list struct {
		Documents []attachments.Document `json:"documents"`
		Remaining map[string]int         `json:"remaining"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list.Documents, 3)
	assert.Equal(t, 0, list.Remaining["cv_resume"])
	assert.Equal(t, 1, list.Remaining["photo_media"])

	code, _ = h.jsonReq(t, http.MethodDelete, base+"/documents/"+doc.ID.String(), "")
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = h.jsonReq(t, http.MethodDelete, base+"/documents/"+doc.ID.String()+"?confirm=true", "")
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, h.blobs.Has(doc.StoragePath))
}

func TestAdminNominationsHTTP(t *testing.T) {
	h := newHarness(t)
	sid := h.start(t)
	code, env := h.jsonReq(t, http.MethodPost, "/api/public/nomination-wizard/"+sid+"/steps/1", stepA)
	require.Equal(t, http.StatusOK, code)
	var saved struct {
		Result wizard.StepResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &saved))
	id := saved.Result.NominationID.String()

	code, env = h.jsonReq(t, http.MethodGet, "/api/a/nominations?status=draft", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, env.Pagination.Total)

	code, env = h.jsonReq(t, http.MethodGet, "/api/a/nominations?status=submitted", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "No submitted nominations found", env.Message)
	assert.EqualValues(t, 0, env.Pagination.Total)

	code, _ = h.jsonReq(t, http.MethodGet, "/api/a/nominations?status=bogus", "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = h.jsonReq(t, http.MethodGet, "/api/a/nominations?date_from=2025-02-01&date_to=2025-01-01", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.jsonReq(t, http.MethodPatch, "/api/a/nominations/"+id+"/status", `{"action":"approve"}`)
	assert.Equal(t, http.StatusConflict, code)

	code, env = h.jsonReq(t, http.MethodPatch, "/api/a/nominations/"+id+"/status", `{"action":"mark_incomplete","notes":"needs a CV"}`)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Contains(t, string(env.Data), `"status":"incomplete"`)

	code, env = h.jsonReq(t, http.MethodGet, "/api/a/nominations/"+id+"/history", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "needs a CV")

	code, env = h.jsonReq(t, http.MethodGet, "/api/a/nominations/"+id, "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "Amina Bello")

	code, _ = h.jsonReq(t, http.MethodGet, "/api/a/nominations/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = h.jsonReq(t, http.MethodPost, "/api/a/nominations/reminders", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = h.jsonReq(t, http.MethodPost, "/api/a/nominations/reminders", `{"send_to_all":true}`)
	require.Equal(t, http.StatusOK, code)
	var res reminders.Result
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 1, res.SuccessCount)
	require.Len(t, h.mail.Sent(), 1)
	assert.Equal(t, []string{"ade@example.org"}, h.mail.Sent()[0].To)
}

func TestEditLinkCannotReopenClosedNomination(t *testing.T) {
	h := newHarness(t)
	sid := h.start(t)
	code, env := h.jsonReq(t, http.MethodPost, "/api/public/nomination-wizard/"+sid+"/steps/1", stepA)
	require.Equal(t, http.StatusOK, code)
	var saved struct {
		Result wizard.StepResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &saved))
	id := saved.Result.NominationID.String()

	code, _ = h.jsonReq(t, http.MethodPatch, "/api/a/nominations/"+id+"/status", `{"action":"complete"}`)
	require.Equal(t, http.StatusOK, code)
	code, _ = h.jsonReq(t, http.MethodPatch, "/api/a/nominations/"+id+"/status", `{"action":"approve"}`)
	require.Equal(t, http.StatusOK, code)

	for _, link := range []string{"?edit=", "?continue="} {
		code, env = h.jsonReq(t, http.MethodPost, "/api/public/nomination-wizard"+link+id, "")
		require.Equal(t, http.StatusCreated, code)
		var out struct {
			SessionID string       `json:"session_id"`
			State     wizard.State `json:"state"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &out))
		assert.Nil(t, out.State.NominationID, link)
		assert.Nil(t, out.State.Sections.A, link)
		assert.Equal(t, wizard.LoadFailedNotice, out.State.Notice, link)
		assert.NotContains(t, string(env.Data), "amina@example.org", link)

		// a fresh session writes a new row, never the approved one
		code, env = h.jsonReq(t, http.MethodPost, "/api/public/nomination-wizard/"+out.SessionID+"/steps/1",
			strings.Replace(stepA, "Amina Bello", "Other Name", 1))
		require.Equal(t, http.StatusOK, code)
		var again struct {
			Result wizard.StepResult `json:"result"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &again))
		assert.NotEqual(t, id, again.Result.NominationID.String())
	}

	code, env = h.jsonReq(t, http.MethodGet, "/api/a/nominations/"+id, "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "Amina Bello")
	assert.NotContains(t, string(env.Data), "Other Name")
	assert.Contains(t, string(env.Data), `"status":"approved"`)
}

func TestAdminEditSession(t *testing.T) {
	h := newHarness(t)
	sid := h.start(t)
	code, env := h.jsonReq(t, http.MethodPost, "/api/public/nomination-wizard/"+sid+"/steps/1", stepA)
	require.Equal(t, http.StatusOK, code)
	var saved struct {
		Result wizard.StepResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &saved))
	id := saved.Result.NominationID.String()

	code, _ = h.jsonReq(t, http.MethodPatch, "/api/a/nominations/"+id+"/status", `{"action":"complete"}`)
	require.Equal(t, http.StatusOK, code)

	code, env = h.jsonReq(t, http.MethodPost, "/api/a/nominations/"+id+"/edit-session", "")
	require.Equal(t, http.StatusCreated, code, env.Message)
	var out struct {
		SessionID string       `json:"session_id"`
		State     wizard.State `json:"state"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotNil(t, out.State.NominationID)
	assert.Equal(t, id, out.State.NominationID.String())
	require.NotNil(t, out.State.Sections.A)
	assert.Equal(t, "Amina Bello", out.State.Sections.A.NomineeFullName)

	code, _ = h.jsonReq(t, http.MethodPost, "/api/a/nominations/"+uuid.NewString()+"/edit-session", "")
	assert.Equal(t, http.StatusNotFound, code)
}
