package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

const defaultS3Region = "us-east-1"

// s3API is the part of *s3.Client used here.
type s3API interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Client stores files as objects in one bucket under a key prefix.
//
// The URL form is s3://bucket/prefix?region=eu-central-1&endpoint=http://minio:9000.
// Username and password become static access keys; when both are empty the
// default AWS credential chain is used. Setting endpoint switches to
// path-style addressing for MinIO and similar servers.
type S3Client struct {
	api    s3API
	bucket string
	prefix string
}

func NewS3Client(ctx context.Context, u *url.URL, opts Options) (*S3Client, error) {
	bucket := u.Host
	if bucket == "" {
		return nil, fmt.Errorf("s3 url %q: bucket is missing", u.Redacted())
	}

	q := u.Query()
	region := q.Get("region")
	if region == "" {
		region = defaultS3Region
	}
	endpoint := q.Get("endpoint")

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if opts.Timeout > 0 {
		loadOpts = append(loadOpts, config.WithHTTPClient(awshttp.NewBuildableClient().WithTimeout(opts.Timeout)))
	}
	if opts.Username != "" || opts.Password != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.Username, opts.Password, "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	api := s3.NewFromConfig(cfg, func(o *s3.Options) {
		// The scheduler retries failed syncs.
		o.RetryMaxAttempts = 1
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Client(api, bucket, u.Path), nil
}

func newS3Client(api s3API, bucket, prefix string) *S3Client {
	return &S3Client{api: api, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (c *S3Client) key(p string) string {
	return strings.TrimPrefix(path.Join(c.prefix, strings.Trim(p, "/")), "/")
}

func (c *S3Client) Ping(ctx context.Context) error {
	_, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
	return mapS3Error("HeadBucket", c.bucket, err)
}

func (c *S3Client) Exists(ctx context.Context, p string) (bool, error) {
	key := c.key(p)
	_, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(c.bucket), Key: aws.String(key)})
	if err == nil {
		return true, nil
	}
	mapped := mapS3Error("HeadObject", key, err)
	if errors.Is(mapped, ErrNotFound) {
		return false, nil
	}
	return false, mapped
}

// EnsureDir is a no-op: object stores have no directories.
func (c *S3Client) EnsureDir(context.Context, string) error {
	return nil
}

func (c *S3Client) Upload(ctx context.Context, p string, data []byte) error {
	key := c.key(p)
	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	return mapS3Error("PutObject", key, err)
}

func (c *S3Client) Download(ctx context.Context, p string) ([]byte, error) {
	key := c.key(p)
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(c.bucket), Key: aws.String(key)})
	if err != nil {
		return nil, mapS3Error("GetObject", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, mapS3Error("GetObject", key, err)
	}
	return data, nil
}

func (c *S3Client) Close() error {
	return nil
}

func mapS3Error(op, key string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var (
		notFound *types.NotFound
		noKey    *types.NoSuchKey
		noBucket *types.NoSuchBucket
	)
	switch {
	case errors.As(err, &notFound), errors.As(err, &noKey):
		return remoteErr(op, key, ErrNotFound, "remote object not found", err)
	case errors.As(err, &noBucket):
		return remoteErr(op, key, ErrNotFound, "bucket does not exist", err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return remoteErr(op, key, ErrUnauthorized, "object storage rejected the credentials", err)
		case "NoSuchKey", "NotFound":
			return remoteErr(op, key, ErrNotFound, "remote object not found", err)
		case "NoSuchBucket":
			return remoteErr(op, key, ErrNotFound, "bucket does not exist", err)
		}
	}

	var re *awshttp.ResponseError
	if errors.As(err, &re) {
		msg, kind := mapStatus(re.HTTPStatusCode())
		return remoteErr(op, key, kind, msg, err)
	}
	return remoteErr(op, key, ErrUnavailable, "object storage unreachable", err)
}
