package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pahla_backend/internals/configs"
)

func TestJoinKey(t *testing.T) {
	assert.Equal(t, "nominations/u/n/cv_resume/1_a.pdf", JoinKey("", "nominations", "u", "n", "cv_resume", "1_a.pdf"))
	assert.Equal(t, "uploads/a/b", JoinKey("/uploads/", " a ", "", "/b/"))
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(configs.StorageConfig{Provider: "ftp"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

type recordedRequest struct {
	method, path, auth, contentType string
	body                            string
}

func newSupabaseServer(t *testing.T, deleteStatus int) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{
			method:      r.Method,
			path:        r.URL.EscapedPath(),
			auth:        r.Header.Get("Authorization"),
			contentType: r.Header.Get("Content-Type"),
			body:        string(b),
		})
		mu.Unlock()
		if r.Method == http.MethodDelete {
			w.WriteHeader(deleteStatus)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"Key":"ok"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func TestSupabaseStorePutAndRemove(t *testing.T) {
	srv, reqs := newSupabaseServer(t, http.StatusOK)

	s, err := NewSupabaseStore(configs.StorageConfig{
		SupabaseURL:    srv.URL,
		SupabaseKey:    "service-key",
		SupabaseBucket: "docs",
	})
	require.NoError(t, err)
	s.WithHTTPClient(srv.Client())

	key, err := s.Put(context.Background(), "nominations/u/n/cv_resume/1_my cv.pdf", strings.NewReader("pdf"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "nominations/u/n/cv_resume/1_my cv.pdf", key)

	require.NoError(t, s.Remove(context.Background(), []string{key}))

	require.Len(t, *reqs, 2)
	put := (*reqs)[0]
	assert.Equal(t, http.MethodPut, put.method)
	assert.Equal(t, "/storage/v1/object/docs/nominations/u/n/cv_resume/1_my%20cv.pdf", put.path)
	assert.Equal(t, "Bearer service-key", put.auth)
	assert.Equal(t, "application/pdf", put.contentType)
	assert.Equal(t, "pdf", put.body)
	assert.Equal(t, http.MethodDelete, (*reqs)[1].method)

	assert.Equal(t, srv.URL+"/storage/v1/object/public/docs/a/b.png", s.PublicURL("a/b.png"))
}

func TestSupabaseStoreRemoveFailure(t *testing.T) {
	srv, _ := newSupabaseServer(t, http.StatusInternalServerError)
	s, err := NewSupabaseStore(configs.StorageConfig{SupabaseURL: srv.URL, SupabaseKey: "k", SupabaseBucket: "docs"})
	require.NoError(t, err)
	s.WithHTTPClient(srv.Client())

	err = s.Remove(context.Background(), []string{"a/b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestSupabaseStoreRequiresCredentials(t *testing.T) {
	_, err := NewSupabaseStore(configs.StorageConfig{SupabaseURL: "http://x"})
	assert.Error(t, err)
}

func TestConvertToWebPFitsAndEncodes(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 200))
	for x := 0; x < 400; x++ {
		for y := 0; y < 200; y++ {
			src.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var in bytes.Buffer
	require.NoError(t, png.Encode(&in, src))

	out, err := ConvertToWebP(&in, WebPOptions{MaxW: 100, MaxH: 100, Quality: 70})
	require.NoError(t, err)

	img, err := webp.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestConvertToWebPRejectsGarbage(t *testing.T) {
	_, err := ConvertToWebP(strings.NewReader("not an image"), DefaultWebPOptions())
	assert.Error(t, err)

	_, err = ConvertToWebP(strings.NewReader(""), DefaultWebPOptions())
	assert.Error(t, err)
}

func TestIsConvertibleImage(t *testing.T) {
	assert.True(t, IsConvertibleImage("image/jpeg", "a.bin"))
	assert.True(t, IsConvertibleImage("", "photo.PNG"))
	assert.False(t, IsConvertibleImage("video/mp4", "clip.mp4"))
	assert.Equal(t, "photo.webp", WebPFileName("photo.jpg"))
}

func TestMockBlobStore(t *testing.T) {
	m := NewMockBlobStore()
	_, err := m.Put(context.Background(), "a/b", strings.NewReader("x"), "text/plain")
	require.NoError(t, err)
	assert.True(t, m.Has("a/b"))
	assert.Equal(t, 1, m.PutCalls())
	require.NoError(t, m.Remove(context.Background(), []string{"a/b"}))
	assert.False(t, m.Has("a/b"))
}
