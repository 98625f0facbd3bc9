// Package client holds the remote side of menuroll sync and the local
// database bootstrap.
//
// A Client stores and fetches the single backup document. New picks the
// implementation from the server URL scheme: WebDAV for http and https,
// S3-compatible storage for s3, and a PostgreSQL table for postgres.
//
// Failures are reported as *RemoteError values that match one of the
// sentinels (ErrUnavailable, ErrUnauthorized, ErrNotFound, ErrConflict)
// with errors.Is. Context cancellation is returned as is.
//
// InitDatabase opens the local SQLite file and RunMigrations brings its
// schema up to date.
package client
