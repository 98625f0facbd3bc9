package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const createRemoteFiles = `CREATE TABLE IF NOT EXISTS remote_files (
	path       TEXT PRIMARY KEY,
	body       BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresClient keeps files as rows of the remote_files table. It suits
// setups that already run a shared PostgreSQL and no file server.
type PostgresClient struct {
	db *sql.DB
	// timeout bounds each statement. Zero means no limit.
	timeout time.Duration
}

// NewPostgresClient connects with the pgx driver and creates the table when
// missing. Username and password fill the URL user info when it has none.
func NewPostgresClient(ctx context.Context, u *url.URL, opts Options) (*PostgresClient, error) {
	db, err := sql.Open("pgx", postgresDSN(u, opts))
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	c := newPostgresClient(db, opts.Timeout)
	if err := c.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// postgresDSN adds the credentials and a connect_timeout, in whole
// seconds, unless the URL already sets them.
func postgresDSN(u *url.URL, opts Options) string {
	dsn := *u
	if dsn.User == nil && opts.Username != "" {
		dsn.User = url.UserPassword(opts.Username, opts.Password)
	}
	if opts.Timeout > 0 {
		q := dsn.Query()
		if q.Get("connect_timeout") == "" {
			secs := max(1, int(math.Ceil(opts.Timeout.Seconds())))
			q.Set("connect_timeout", strconv.Itoa(secs))
			dsn.RawQuery = q.Encode()
		}
	}
	return dsn.String()
}

func newPostgresClient(db *sql.DB, timeout time.Duration) *PostgresClient {
	return &PostgresClient{db: db, timeout: timeout}
}

func (c *PostgresClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *PostgresClient) init(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	if _, err := c.db.ExecContext(ctx, createRemoteFiles); err != nil {
		return mapPgError("init", "remote_files", err)
	}
	return nil
}

func cleanPath(p string) string {
	return "/" + strings.Trim(p, "/")
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return mapPgError("ping", "", c.db.PingContext(ctx))
}

func (c *PostgresClient) Exists(ctx context.Context, p string) (bool, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	p = cleanPath(p)
	var ok bool
	err := c.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM remote_files WHERE path = $1 OR path LIKE $2)`,
		p, p+"/%").Scan(&ok)
	if err != nil {
		return false, mapPgError("exists", p, err)
	}
	return ok, nil
}

// EnsureDir is a no-op: paths are plain keys.
func (c *PostgresClient) EnsureDir(context.Context, string) error {
	return nil
}

func (c *PostgresClient) Upload(ctx context.Context, p string, data []byte) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	p = cleanPath(p)
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO remote_files (path, body, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (path) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`,
		p, data)
	return mapPgError("upload", p, err)
}

func (c *PostgresClient) Download(ctx context.Context, p string) ([]byte, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	p = cleanPath(p)
	var body []byte
	err := c.db.QueryRowContext(ctx, `SELECT body FROM remote_files WHERE path = $1`, p).Scan(&body)
	if err != nil {
		return nil, mapPgError("download", p, err)
	}
	return body, nil
}

func (c *PostgresClient) Close() error {
	return c.db.Close()
}

func mapPgError(op, p string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return remoteErr(op, p, ErrUnavailable, "database did not answer in time", err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return remoteErr(op, p, ErrNotFound, "remote file not found", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		// invalid_authorization_specification, invalid_password
		case pgErr.Code == "28000" || pgErr.Code == "28P01":
			return remoteErr(op, p, ErrUnauthorized, "database rejected the credentials", err)
		// insufficient_privilege
		case pgErr.Code == "42501":
			return remoteErr(op, p, ErrUnauthorized, "access denied by database", err)
		default:
			return remoteErr(op, p, ErrUnavailable, "database error: "+pgErr.Message, err)
		}
	}
	return remoteErr(op, p, ErrUnavailable, "database unreachable", err)
}
