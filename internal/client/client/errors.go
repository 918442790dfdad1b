package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable means the backend could not be reached at all.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized is a 401 from an authenticated endpoint.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMissingTicketFields means the ticket response lacked a write or
	// public URL.
	ErrMissingTicketFields = errors.New("upload ticket is missing required fields")
)

// LoginError is returned by every failed login. Message is what the user
// should see.
type LoginError struct {
	Message string
	Err     error
}

func (e *LoginError) Error() string { return e.Message }
func (e *LoginError) Unwrap() error { return e.Err }

// SessionExpiredError reports that the server rejected the stored token and
// the session has been cleared.
type SessionExpiredError struct {
	Path string
	Err  error
}

func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("session expired (%s)", e.Path)
}

func (e *SessionExpiredError) Unwrap() error {
	if e.Err == nil {
		return ErrUnauthorized
	}
	return e.Err
}

// TicketError means no upload slot could be obtained.
type TicketError struct {
	Extension string
	Date      string
	Err       error
}

func (e *TicketError) Error() string {
	return fmt.Sprintf("failed to get upload ticket (ext=%s, date=%s): %v", e.Extension, e.Date, e.Err)
}

func (e *TicketError) Unwrap() error { return e.Err }

// UnresolvableSourceError means an indirect handle did not map to a local
// file.
type UnresolvableSourceError struct {
	SourceURI string
	Err       error
}

func (e *UnresolvableSourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot resolve %s: %v", e.SourceURI, e.Err)
	}
	return fmt.Sprintf("cannot resolve %s", e.SourceURI)
}

func (e *UnresolvableSourceError) Unwrap() error { return e.Err }

// TransferError is a failed PUT of file bytes. StatusCode is zero when the
// request never got a response.
type TransferError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransferError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transfer failed with status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("transfer failed: %v", e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }
