// Package netx has HTTP helpers shared by the remote storage clients.
package netx

import (
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"
)

// maxErrorBody caps how much of an error response body is kept.
const maxErrorBody = 512

// StatusError is an unexpected HTTP response status.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: %s; body: %s", e.Method, e.URL, e.Status, e.Body)
}

// NewHTTPClient returns a client with the given overall request timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// CheckStatus returns nil when resp.StatusCode is one of ok, and a
// *StatusError otherwise. The response body is not closed.
func CheckStatus(resp *http.Response, ok ...int) error {
	if slices.Contains(ok, resp.StatusCode) {
		return nil
	}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	e := &StatusError{
		Code:   resp.StatusCode,
		Status: resp.Status,
		Body:   string(b),
	}
	if resp.Request != nil {
		e.Method = resp.Request.Method
		e.URL = resp.Request.URL.Redacted()
	}
	return e
}

// DrainClose reads what is left of the body and closes it so the underlying
// connection can be reused.
func DrainClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
