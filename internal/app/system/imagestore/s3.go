package imagestore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the subset of the S3 client the store uses.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config configures an S3 store.
type S3Config struct {
	Region  string
	Bucket  string
	Prefix  string // key prefix inside the bucket, e.g. "media/"
	BaseURL string // public URL for the bucket or its CDN; derived when empty
}

// S3 stores images in a bucket.
type S3 struct {
	client s3API
	cfg    S3Config
}

// NewS3 builds an S3 store using the default AWS credential chain.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("imagestore: load aws config: %w", err)
	}
	return newS3(s3.NewFromConfig(awsCfg), cfg), nil
}

func newS3(client s3API, cfg S3Config) *S3 {
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &S3{client: client, cfg: cfg}
}

func (s *S3) objectKey(key string) string {
	return s.cfg.Prefix + key
}

func (s *S3) Put(ctx context.Context, key string, r io.Reader, opts *PutOptions) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.objectKey(key)),
		Body:   r,
	}
	if opts != nil && opts.ContentType != "" {
		in.ContentType = aws.String(opts.ContentType)
	}
	_, err = s.client.PutObject(ctx, in)
	return err
}

func (s *S3) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	return err
}

func (s *S3) URL(key string) string {
	return s.cfg.BaseURL + "/" + s.objectKey(key)
}
