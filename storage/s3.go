package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures an S3Store. Endpoint is set for S3 compatible servers
// such as MinIO or LocalStack.
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	Prefix    string
	PublicURL string
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads images to a bucket.
type S3Store struct {
	client objectPutter
	opts   S3Options
}

// NewS3Store loads AWS credentials from the environment and builds a path-style client.
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return newS3Store(client, opts), nil
}

func newS3Store(client objectPutter, opts S3Options) *S3Store {
	return &S3Store{client: client, opts: opts}
}

func (s *S3Store) key(name string) string {
	prefix := strings.Trim(s.opts.Prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// URL returns the public URL of key.
func (s *S3Store) URL(key string) string {
	switch {
	case s.opts.PublicURL != "":
		return joinURL(s.opts.PublicURL, key)
	case s.opts.Endpoint != "":
		return joinURL(s.opts.Endpoint, s.opts.Bucket+"/"+key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.opts.Bucket, s.opts.Region, key)
	}
}

// Save uploads body under a random key below Prefix.
func (s *S3Store) Save(ctx context.Context, contentType string, body io.Reader, size int64) (string, error) {
	name, err := newObjectName(contentType)
	if err != nil {
		return "", err
	}
	key := s.key(name)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.opts.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.URL(key), nil
}
