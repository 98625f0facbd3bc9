package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable           = errors.New("server unavailable")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrNotFound              = errors.New("remote file not found")
	ErrConflict              = errors.New("remote conflict")
	ErrUnsupportedScheme     = errors.New("unsupported server url scheme")
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)

// RemoteError is a failed remote operation. It matches its Kind sentinel
// and its Cause with errors.Is.
type RemoteError struct {
	Op      string
	Path    string
	Kind    error
	Message string
	Cause   error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s (%s %s)", e.Message, e.Op, e.Path)
}

func (e *RemoteError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func remoteErr(op, path string, kind error, msg string, cause error) error {
	return &RemoteError{Op: op, Path: path, Kind: kind, Message: msg, Cause: cause}
}
