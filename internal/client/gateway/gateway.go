// Package gateway is the HTTP middleware every authenticated call goes
// through. It attaches the current bearer token and turns a 401 on a
// non-login endpoint into a session invalidation.
package gateway

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/cofit/cofitcli/internal/common"
	"github.com/cofit/cofitcli/internal/logging"
)

// Session is what the gateway needs from the session store.
type Session interface {
	AccessToken() string
	Invalidate(ctx context.Context, reason string)
}

// loginPaths are the endpoints whose 401 means "wrong credentials", not
// "expired token".
var loginPaths = []string{
	"/sign_in",
	"/register_mobile_with_code",
	"/mobile_sms_code",
}

// IsLoginPath reports whether path belongs to one of the login endpoints.
func IsLoginPath(path string) bool {
	for _, p := range loginPaths {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// Transport is an http.RoundTripper decorator.
type Transport struct {
	base   http.RoundTripper
	logger logging.Logger

	mu      sync.RWMutex
	session Session
}

// New wraps base, or http.DefaultTransport when base is nil. The session is
// bound later with Bind because the session store itself talks to the API
// through this transport.
func New(base http.RoundTripper, logger logging.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{base: base, logger: logger}
}

func (t *Transport) Bind(s Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.session = s
}

func (t *Transport) bound() Session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.session
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	session := t.bound()

	if session != nil && req.Header.Get(common.AuthorizationHeaderName) == "" {
		if token := session.AccessToken(); token != "" {
			req = req.Clone(req.Context())
			req.Header.Set(common.AuthorizationHeaderName, common.BearerValue(token))
		}
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && session != nil && !IsLoginPath(req.URL.Path) {
		t.logger.Warn(req.Context(), "unauthorized response, invalidating session",
			"method", req.Method, "path", req.URL.Path)
		// the caller may already be cancelling; the logout must still land
		session.Invalidate(context.WithoutCancel(req.Context()), "401 from "+req.URL.Path)
	}

	return resp, nil
}

// Client returns an *http.Client using t.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}
