package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/pkg/errors"

	"pahla_backend/internals/configs"
)

// BlobStore is the object store behind nomination attachments.
// Paths are opaque keys; every upload uses a fresh key, overwrites are never relied upon.
type BlobStore interface {
	Put(ctx context.Context, path string, r io.Reader, contentType string) (string, error)
	PublicURL(path string) string
	Remove(ctx context.Context, paths []string) error
}

var ErrUnknownProvider = errors.New("storage: unknown provider")

// New picks the provider named by STORAGE_PROVIDER.
func New(cfg configs.StorageConfig) (BlobStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "supabase":
		return NewSupabaseStore(cfg)
	case "oss":
		return NewOSSStore(cfg)
	case "s3":
		return NewS3Store(cfg)
	default:
		return nil, errors.Wrapf(ErrUnknownProvider, "%q", cfg.Provider)
	}
}

// JoinKey joins non-empty key parts with "/" and applies an optional prefix.
func JoinKey(prefix string, parts ...string) string {
	clean := make([]string, 0, len(parts)+1)
	if p := strings.Trim(prefix, "/"); p != "" {
		clean = append(clean, p)
	}
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), "/")
		if p != "" {
			clean = append(clean, p)
		}
	}
	return path.Join(clean...)
}
