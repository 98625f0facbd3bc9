package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/netx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/webdav"
)

const (
	davUser = "alice"
	davPass = "secret"
)

// newDAVServer serves an in-memory WebDAV tree under /dav behind basic auth.
func newDAVServer(t *testing.T) *httptest.Server {
	t.Helper()
	h := &webdav.Handler{
		Prefix:     "/dav",
		FileSystem: webdav.NewMemFS(),
		LockSystem: webdav.NewMemLS(),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != davUser || p != davPass {
			w.Header().Set("WWW-Authenticate", `Basic realm="dav"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		h.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newDAVClient(t *testing.T, srv *httptest.Server, user, pass string) *WebDAVClient {
	t.Helper()
	u, err := url.Parse(srv.URL + "/dav/")
	require.NoError(t, err)
	c := NewWebDAVClient(u, Options{Username: user, Password: pass, Timeout: 5 * time.Second})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestWebDAV_RoundTrip(t *testing.T) {
	srv := newDAVServer(t)
	c := newDAVClient(t, srv, davUser, davPass)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	ok, err := c.Exists(ctx, "/menuroll/sub")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.EnsureDir(ctx, "/menuroll/sub"))
	require.NoError(t, c.EnsureDir(ctx, "/menuroll/sub"), "second call is a no-op")

	ok, err = c.Exists(ctx, "/menuroll/sub")
	require.NoError(t, err)
	assert.True(t, ok)

	body := []byte(`{"formatVersion":2}`)
	require.NoError(t, c.Upload(ctx, "/menuroll/sub/menuroll_backup.json", body))
	require.NoError(t, c.Upload(ctx, "/menuroll/sub/menuroll_backup.json", append(body, '\n')))

	got, err := c.Download(ctx, "/menuroll/sub/menuroll_backup.json")
	require.NoError(t, err)
	assert.Equal(t, append(body, '\n'), got)

	ok, err = c.Exists(ctx, "/menuroll/sub/menuroll_backup.json")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWebDAV_DownloadMissing(t *testing.T) {
	srv := newDAVServer(t)
	c := newDAVClient(t, srv, davUser, davPass)

	_, err := c.Download(context.Background(), "/nope.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var re *RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.MethodGet, re.Op)
}

func TestWebDAV_WrongPassword(t *testing.T) {
	srv := newDAVServer(t)
	c := newDAVClient(t, srv, davUser, "wrong")
	ctx := context.Background()

	err := c.Ping(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "authentication failed")

	_, err = c.Exists(ctx, "/x")
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.ErrorIs(t, c.Upload(ctx, "/x", []byte("x")), ErrUnauthorized)
}

func TestWebDAV_ServerDown(t *testing.T) {
	srv := newDAVServer(t)
	c := newDAVClient(t, srv, davUser, davPass)
	srv.Close()

	err := c.Ping(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "server unreachable")
}

func TestWebDAV_CancelledContextPassesThrough(t *testing.T) {
	srv := newDAVServer(t)
	c := newDAVClient(t, srv, davUser, davPass)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Ping(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWebDAV_SendsExpectedRequests(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path+" depth="+r.Header.Get("Depth"))
		switch r.Method {
		case methodPropfind:
			w.WriteHeader(http.StatusNotFound)
		case methodMkcol:
			w.WriteHeader(http.StatusCreated)
		}
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL + "/root")
	require.NoError(t, err)
	c := NewWebDAVClient(u, Options{Timeout: time.Second})

	require.NoError(t, c.EnsureDir(context.Background(), "a/b"))
	assert.Equal(t, []string{
		"PROPFIND /root/a depth=0",
		"MKCOL /root/a depth=",
		"PROPFIND /root/a/b depth=0",
		"MKCOL /root/a/b depth=",
	}, seen)
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusInternalServerError, ErrUnavailable},
		{http.StatusBadGateway, ErrUnavailable},
		{http.StatusInsufficientStorage, ErrUnavailable},
		{http.StatusTeapot, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			msg, kind := mapStatus(tt.code)
			assert.Equal(t, tt.want, kind)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError("GET", "/x", nil))

	err := mapError("PUT", "/x", &netx.StatusError{Code: 409, Status: "409 Conflict"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "remote parent folder is missing: 409 Conflict (PUT /x)", err.Error())

	err = mapError("GET", "/x", context.DeadlineExceeded)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
