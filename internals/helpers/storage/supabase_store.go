package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"pahla_backend/internals/configs"
)

// SupabaseStore talks to the Supabase Storage REST API with the service-role key.
type SupabaseStore struct {
	baseURL string
	key     string
	bucket  string
	prefix  string
	client  *http.Client
}

func NewSupabaseStore(cfg configs.StorageConfig) (*SupabaseStore, error) {
	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" || cfg.SupabaseBucket == "" {
		return nil, errors.New("storage: SUPABASE_PROJECT_URL, SUPABASE_SERVICE_ROLE_KEY and SUPABASE_BUCKET are required")
	}
	return &SupabaseStore{
		baseURL: strings.TrimRight(cfg.SupabaseURL, "/"),
		key:     cfg.SupabaseKey,
		bucket:  cfg.SupabaseBucket,
		prefix:  cfg.Prefix,
		client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// WithHTTPClient swaps the transport; used by tests against httptest servers.
func (s *SupabaseStore) WithHTTPClient(c *http.Client) *SupabaseStore {
	s.client = c
	return s
}

func (s *SupabaseStore) objectURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, escapeKey(key))
}

func (s *SupabaseStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	key = JoinKey(s.prefix, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.objectURL(key), r)
	if err != nil {
		return "", errors.Wrap(err, "supabase: build upload request")
	}
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "supabase: upload")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", errors.Errorf("supabase: upload status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return key, nil
}

func (s *SupabaseStore) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, escapeKey(key))
}

// Remove deletes objects one by one; the first failure is returned.
func (s *SupabaseStore) Remove(ctx context.Context, keys []string) error {
	for _, key := range keys {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.objectURL(key), nil)
		if err != nil {
			return errors.Wrap(err, "supabase: build delete request")
		}
		req.Header.Set("Authorization", "Bearer "+s.key)

		resp, err := s.client.Do(req)
		if err != nil {
			return errors.Wrapf(err, "supabase: delete %s", key)
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()
		if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
			return errors.Errorf("supabase: delete %s status %d: %s", key, resp.StatusCode, strings.TrimSpace(string(body)))
		}
	}
	return nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
