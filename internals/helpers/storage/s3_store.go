package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"

	"pahla_backend/internals/configs"
)

type S3Store struct {
	client     *s3.S3
	bucket     string
	endpoint   string
	publicBase string
	prefix     string
}

func NewS3Store(cfg configs.StorageConfig) (*S3Store, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("storage: S3_BUCKET is required")
	}
	awsCfg := &aws.Config{
		Region:           aws.String(cfg.S3Region),
		DisableSSL:       aws.Bool(!cfg.S3UseSSL),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.S3AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, "")
	}
	if cfg.S3Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.S3Endpoint)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, errors.Wrap(err, "s3: new session")
	}
	return &S3Store{
		client:     s3.New(sess),
		bucket:     cfg.S3Bucket,
		endpoint:   strings.TrimRight(cfg.S3Endpoint, "/"),
		publicBase: strings.TrimRight(cfg.S3PublicURL, "/"),
		prefix:     cfg.Prefix,
	}, nil
}

func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	key = JoinKey(s.prefix, key)

	// PutObject needs a seekable body for signing.
	body, ok := r.(io.ReadSeeker)
	if !ok {
		buf, err := io.ReadAll(r)
		if err != nil {
			return "", errors.Wrap(err, "s3: read body")
		}
		body = bytes.NewReader(buf)
	}

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrapf(err, "s3: put %s", key)
	}
	return key, nil
}

func (s *S3Store) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	if s.publicBase != "" {
		return s.publicBase + "/" + key
	}
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}

func (s *S3Store) Remove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	objs := make([]*s3.ObjectIdentifier, 0, len(keys))
	for _, k := range keys {
		objs = append(objs, &s3.ObjectIdentifier{Key: aws.String(k)})
	}
	out, err := s.client.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &s3.Delete{Objects: objs, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return errors.Wrap(err, "s3: delete objects")
	}
	if len(out.Errors) > 0 {
		e := out.Errors[0]
		return errors.Errorf("s3: delete %s: %s", aws.StringValue(e.Key), aws.StringValue(e.Message))
	}
	return nil
}
