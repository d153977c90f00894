package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"

	"pahla_backend/internals/configs"
	"pahla_backend/internals/logger"
)

type OSSStore struct {
	bucket     *oss.Bucket
	endpoint   string
	bucketName string
	publicBase string
	prefix     string
}

func NewOSSStore(cfg configs.StorageConfig) (*OSSStore, error) {
	if cfg.OSSEndpoint == "" || cfg.OSSAccessKey == "" || cfg.OSSSecretKey == "" || cfg.OSSBucket == "" {
		return nil, errors.New("storage: missing ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")
	}

	var (
		client *oss.Client
		err    error
	)
	if cfg.OSSSecurityToken != "" {
		client, err = oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey, oss.SecurityToken(cfg.OSSSecurityToken))
	} else {
		client, err = oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	}
	if err != nil {
		return nil, errors.Wrap(err, "oss.New")
	}

	bkt, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, errors.Wrap(err, "oss: client.Bucket")
	}

	log := logger.With("storage")
	if loc, err := client.GetBucketLocation(cfg.OSSBucket); err != nil {
		if se, ok := err.(oss.ServiceError); ok && se.StatusCode == 403 && se.Code == "AccessDenied" {
			log.Warn().Str("bucket", cfg.OSSBucket).Msg("oss: skipping location check (AccessDenied)")
		} else {
			return nil, errors.Wrap(err, "oss: verify bucket")
		}
	} else {
		log.Info().Str("bucket", cfg.OSSBucket).Str("location", loc).Msg("oss bucket ready")
	}

	return &OSSStore{
		bucket:     bkt,
		endpoint:   cfg.OSSEndpoint,
		bucketName: cfg.OSSBucket,
		publicBase: strings.TrimRight(cfg.OSSPublicBase, "/"),
		prefix:     cfg.Prefix,
	}, nil
}

func (s *OSSStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	key = JoinKey(s.prefix, key)
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	}
	if err := s.bucket.PutObject(key, r, opts...); err != nil {
		return "", errors.Wrapf(err, "oss: put %s", key)
	}
	return key, nil
}

func (s *OSSStore) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	if s.publicBase != "" {
		return s.publicBase + "/" + key
	}
	end := strings.TrimPrefix(strings.TrimPrefix(s.endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.bucketName, end, key)
}

func (s *OSSStore) Remove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	res, err := s.bucket.DeleteObjects(keys, oss.WithContext(ctx))
	if err != nil {
		return errors.Wrap(err, "oss: delete objects")
	}
	if len(res.DeletedObjects) < len(keys) {
		logger.With("storage").Warn().
			Int("requested", len(keys)).
			Int("deleted", len(res.DeletedObjects)).
			Msg("oss: some keys were not reported deleted")
	}
	return nil
}
