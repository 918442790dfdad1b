package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/cofit/cofitcli/internal/client/client"
)

// APIError is a non-2xx answer. Message and Errors are taken from the JSON
// body when present; Errors keeps whatever shape the server used.
type APIError struct {
	StatusCode int
	Message    string
	Errors     json.RawMessage
	Body       string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.ErrorsText()
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, msg)
}

// Unwrap lets errors.Is(err, client.ErrUnauthorized) match a 401.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return client.ErrUnauthorized
	}
	return nil
}

// Temporary reports whether retrying the same request may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// ErrorsText flattens the errors field: a string is used as is, a list is
// joined, an object becomes "field: msg" pairs in key order.
func (e *APIError) ErrorsText() string {
	if len(e.Errors) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(e.Errors, &v); err != nil {
		return ""
	}
	return flatten(v)
}

func flatten(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			if s := flatten(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := flatten(x[k]); s != "" {
				parts = append(parts, k+": "+s)
			}
		}
		return strings.Join(parts, "; ")
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

type errorBody struct {
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Body: strings.TrimSpace(string(body))}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		e.Message = eb.Message
		if string(eb.Errors) != "null" {
			e.Errors = eb.Errors
		}
	}
	return e
}

// UserMessage picks the text shown for a failed call: the server message,
// then its validation errors, then fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if s := apiErr.ErrorsText(); s != "" {
			return s
		}
	}
	return fallback
}
