// Package s3 provides an S3-compatible bucket backend for docsgate.
// It works with AWS S3, Cloudflare R2, MinIO and other services that speak
// the S3 GetObject API.
package s3

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/sagarc03/docsgate"
)

// Config holds connection settings for an S3-compatible bucket.
type Config struct {
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`
	// Endpoint overrides the AWS endpoint, e.g. an R2 or MinIO URL.
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	// UsePathStyle addresses the bucket as a path segment instead of a
	// subdomain. Most non-AWS services need it.
	UsePathStyle bool `mapstructure:"use_path_style"`
	// Prefix is prepended to every key, allowing several sites per bucket.
	Prefix string `mapstructure:"prefix"`
}

// Store reads objects from an S3 bucket.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewStore creates a Store from cfg. Static credentials are used when both
// keys are set; otherwise the default AWS credential chain applies.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("new s3 store: %w: bucket cannot be empty", docsgate.ErrInvalidInput)
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return New(client, cfg.Bucket, cfg.Prefix), nil
}

// New creates a Store around an existing client.
func New(client *s3.Client, bucket, prefix string) *Store {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Store{
		client: client,
		bucket: bucket,
		prefix: strings.TrimPrefix(prefix, "/"),
	}
}

// Get fetches the object at key. Returns docsgate.ErrNotFound for missing
// keys.
func (s *Store) Get(ctx context.Context, key string) (docsgate.Object, error) {
	if err := ctx.Err(); err != nil {
		return docsgate.Object{}, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
	})
	if err != nil {
		if isNotFound(err) {
			return docsgate.Object{}, docsgate.ErrNotFound
		}
		return docsgate.Object{}, fmt.Errorf("get object %s: %w", key, err)
	}

	slog.Debug("s3 get object", "bucket", s.bucket, "key", s.prefix+key)

	meta := docsgate.Metadata{
		ContentType:        aws.ToString(out.ContentType),
		ContentLanguage:    aws.ToString(out.ContentLanguage),
		ContentDisposition: aws.ToString(out.ContentDisposition),
		ContentEncoding:    aws.ToString(out.ContentEncoding),
		CacheControl:       aws.ToString(out.CacheControl),
		ETag:               aws.ToString(out.ETag),
		Size:               aws.ToInt64(out.ContentLength),
	}
	if out.LastModified != nil {
		meta.LastModified = out.LastModified.UTC()
	}

	return docsgate.Object{
		Key:      key,
		Body:     out.Body,
		Metadata: meta,
	}, nil
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchBucket" {
		return false
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode() == http.StatusNotFound
	}

	return false
}
