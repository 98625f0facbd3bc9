package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a remote file store holding the backup document.
// Paths are slash-separated and relative to the store root.
type Client interface {
	// Ping checks that the store is reachable with the given credentials.
	Ping(ctx context.Context) error
	// Exists reports whether a file or directory exists at path.
	Exists(ctx context.Context, path string) (bool, error)
	// EnsureDir creates path and its parents when missing.
	EnsureDir(ctx context.Context, path string) error
	// Upload stores data at path, replacing any previous content.
	Upload(ctx context.Context, path string, data []byte) error
	// Download returns the content at path, or ErrNotFound.
	Download(ctx context.Context, path string) ([]byte, error)
	Close() error
}

// Options configure a Client.
type Options struct {
	URL      string
	Username string
	Password string

	// Timeout bounds a single request. Zero means DefaultTimeout.
	Timeout time.Duration

	// HTTPClient overrides the transport of the WebDAV client.
	HTTPClient *http.Client
}

const DefaultTimeout = 30 * time.Second

// Factory creates a Client. New is the production implementation.
type Factory func(ctx context.Context, opts Options) (Client, error)

// WithDefaultTimeout wraps f so Options.Timeout defaults to d.
func WithDefaultTimeout(f Factory, d time.Duration) Factory {
	return func(ctx context.Context, opts Options) (Client, error) {
		if opts.Timeout == 0 {
			opts.Timeout = d
		}
		return f(ctx, opts)
	}
}

// New picks an implementation by URL scheme:
//
//	http, https           WebDAV
//	s3                    S3-compatible object storage
//	postgres, postgresql  PostgreSQL table
func New(ctx context.Context, opts Options) (Client, error) {
	u, err := url.Parse(strings.TrimSpace(opts.URL))
	if err != nil {
		// url.Error repeats the raw URL, password included.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return NewWebDAVClient(u, opts), nil
	case "s3":
		return NewS3Client(ctx, u, opts)
	case "postgres", "postgresql":
		return NewPostgresClient(ctx, u, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}
