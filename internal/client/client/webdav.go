package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/menuroll/internal/netx"
)

const methodPropfind = "PROPFIND"
const methodMkcol = "MKCOL"

// propfindBody asks only for the resource type.
const propfindBody = `<?xml version="1.0" encoding="utf-8"?>
<d:propfind xmlns:d="DAV:"><d:prop><d:resourcetype/></d:prop></d:propfind>`

// WebDAVClient talks to a WebDAV server with basic auth.
type WebDAVClient struct {
	base     *url.URL
	username string
	password string
	http     *http.Client
}

func NewWebDAVClient(base *url.URL, opts Options) *WebDAVClient {
	hc := opts.HTTPClient
	if hc == nil {
		hc = netx.NewHTTPClient(opts.Timeout)
	}
	b := *base
	b.Path = strings.TrimSuffix(b.Path, "/")
	return &WebDAVClient{
		base:     &b,
		username: opts.Username,
		password: opts.Password,
		http:     hc,
	}
}

func (c *WebDAVClient) url(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return c.base.String() + "/"
	}
	return c.base.JoinPath(strings.Split(p, "/")...).String()
}

func (c *WebDAVClient) do(ctx context.Context, method, p string, body []byte, header map[string]string) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(p), r)
	if err != nil {
		return nil, err
	}
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, mapError(method, p, err)
	}
	return resp, nil
}

func (c *WebDAVClient) propfind(ctx context.Context, p string) (*http.Response, error) {
	return c.do(ctx, methodPropfind, p, []byte(propfindBody), map[string]string{
		"Depth":        "0",
		"Content-Type": "application/xml; charset=utf-8",
	})
}

func (c *WebDAVClient) Ping(ctx context.Context) error {
	resp, err := c.propfind(ctx, "")
	if err != nil {
		return err
	}
	defer netx.DrainClose(resp)
	return mapError(methodPropfind, "/", netx.CheckStatus(resp, http.StatusMultiStatus, http.StatusOK))
}

func (c *WebDAVClient) Exists(ctx context.Context, p string) (bool, error) {
	resp, err := c.propfind(ctx, p)
	if err != nil {
		return false, err
	}
	defer netx.DrainClose(resp)

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if err := netx.CheckStatus(resp, http.StatusMultiStatus, http.StatusOK); err != nil {
		return false, mapError(methodPropfind, p, err)
	}
	return true, nil
}

// EnsureDir issues MKCOL for every missing segment of p, parent first.
func (c *WebDAVClient) EnsureDir(ctx context.Context, p string) error {
	var cur string
	for _, seg := range strings.Split(strings.Trim(p, "/"), "/") {
		if seg == "" {
			continue
		}
		cur += "/" + seg

		ok, err := c.Exists(ctx, cur)
		if err != nil {
			return err
		}
		if ok {
			continue
		}

		resp, err := c.do(ctx, methodMkcol, cur, nil, nil)
		if err != nil {
			return err
		}
		// 405: created concurrently by someone else.
		err = netx.CheckStatus(resp, http.StatusCreated, http.StatusOK, http.StatusMethodNotAllowed)
		netx.DrainClose(resp)
		if err != nil {
			return mapError(methodMkcol, cur, err)
		}
	}
	return nil
}

func (c *WebDAVClient) Upload(ctx context.Context, p string, data []byte) error {
	resp, err := c.do(ctx, http.MethodPut, p, data, map[string]string{
		"Content-Type": "application/octet-stream",
	})
	if err != nil {
		return err
	}
	defer netx.DrainClose(resp)
	return mapError(http.MethodPut, p, netx.CheckStatus(resp, http.StatusOK, http.StatusCreated, http.StatusNoContent))
}

func (c *WebDAVClient) Download(ctx context.Context, p string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, p, nil, nil)
	if err != nil {
		return nil, err
	}
	defer netx.DrainClose(resp)

	if err := netx.CheckStatus(resp, http.StatusOK); err != nil {
		return nil, mapError(http.MethodGet, p, err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, mapError(http.MethodGet, p, err)
	}
	return data, nil
}

func (c *WebDAVClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// mapStatus translates an HTTP status into a sentinel and a message a user
// can act on.
func mapStatus(code int) (msg string, kind error) {
	switch {
	case code == http.StatusUnauthorized:
		return "authentication failed, check username and password", ErrUnauthorized
	case code == http.StatusForbidden:
		return "access denied by server", ErrUnauthorized
	case code == http.StatusNotFound:
		return "remote path not found", ErrNotFound
	case code == http.StatusConflict:
		return "remote parent folder is missing", ErrConflict
	case code == http.StatusInsufficientStorage:
		return "remote storage is full", ErrUnavailable
	case code >= 500:
		return "server error, try again later", ErrUnavailable
	default:
		return "unexpected server response", ErrUnavailable
	}
}

// mapError converts a transport or status error into a *RemoteError.
// Context cancellation is passed through unchanged.
func mapError(op, p string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var se *netx.StatusError
	if errors.As(err, &se) {
		msg, kind := mapStatus(se.Code)
		return remoteErr(op, p, kind, msg+": "+se.Status, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return remoteErr(op, p, ErrUnavailable, "server did not respond in time", err)
	}
	return remoteErr(op, p, ErrUnavailable, "server unreachable", err)
}
