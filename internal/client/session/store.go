// Package session owns the authentication state of the client: who is
// logged in, with which token, and how that survives a restart.
//
// A Store is the only writer of that state. Screens and commands read it
// through Snapshot or Subscribe and change it through the transition
// methods (Rehydrate, LoginWithPhone, LoginWithEmail, Logout, Invalidate).
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cofit/cofitcli/internal/client/api"
	"github.com/cofit/cofitcli/internal/client/client"
	"github.com/cofit/cofitcli/internal/client/models"
	"github.com/cofit/cofitcli/internal/client/repositories/kv"
	"github.com/cofit/cofitcli/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// Persisted keys. All four are removed together on logout.
const (
	KeyToken        = "@auth:token"
	KeyRefreshToken = "@auth:refreshToken"
	KeyUser         = "@auth:user"
	KeyRole         = "@auth:role"
)

// DefaultLoginFailure is shown when the server gives no usable reason.
const DefaultLoginFailure = "login failed"

var allKeys = []string{KeyToken, KeyUser, KeyRole, KeyRefreshToken}

var errIncompleteLoginResponse = errors.New("login response is missing the token or user id")

// AuthAPI is the part of the backend the store logs in against.
type AuthAPI interface {
	SendSMSCode(ctx context.Context, mobile string) (*api.SendSMSCodeResponse, error)
	RegisterMobileWithCode(ctx context.Context, mobile, code string) (*api.RegisterMobileResponse, error)
	SignInWithEmail(ctx context.Context, email, password string) (*api.SignInResponse, error)
}

type Option func(*Store)

// WithLoginFailureMessage replaces DefaultLoginFailure.
func WithLoginFailureMessage(msg string) Option {
	return func(s *Store) { s.fallback = msg }
}

// WithLoginMethod sets the initial login method.
func WithLoginMethod(m models.LoginMethod) Option {
	return func(s *Store) { s.state.LoginMethod = m }
}

type Store struct {
	repo     kv.Repository
	auth     AuthAPI
	logger   logging.Logger
	fallback string

	mu        sync.Mutex
	state     models.Session
	listeners map[int]func(models.Session)
	nextID    int
}

// NewStore returns an anonymous store. Call Rehydrate once before using it.
func NewStore(repo kv.Repository, auth AuthAPI, logger logging.Logger, opts ...Option) *Store {
	s := &Store{
		repo:      repo,
		auth:      auth,
		logger:    logger.With("component", "session"),
		fallback:  DefaultLoginFailure,
		state:     anonymous(models.LoginMethodPhone),
		listeners: make(map[int]func(models.Session)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func anonymous(method models.LoginMethod) models.Session {
	return models.Session{LoginMethod: method}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AccessToken
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsAuthenticated()
}

// Subscribe registers fn to receive every new state. Listeners run on the
// goroutine that made the change, outside the store lock.
func (s *Store) Subscribe(fn func(models.Session)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// update applies fn under the lock and notifies listeners afterwards.
func (s *Store) update(fn func(st *models.Session)) models.Session {
	s.mu.Lock()
	fn(&s.state)
	snap := s.state.Clone()
	ls := make([]func(models.Session), 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.mu.Unlock()

	for _, l := range ls {
		l(snap.Clone())
	}
	return snap
}

// Rehydrate restores the session persisted by an earlier run. It succeeds
// only when both the token and a decodable user are stored; any other
// outcome, including a storage error, leaves the store anonymous.
func (s *Store) Rehydrate(ctx context.Context) models.Session {
	s.update(func(st *models.Session) { st.IsLoading = true })

	restored, err := s.readPersisted(ctx)
	if err != nil {
		s.logger.Warn(ctx, "failed to restore session", "error", err)
	}

	return s.update(func(st *models.Session) {
		method := st.LoginMethod
		if restored == nil {
			*st = anonymous(method)
			return
		}
		*st = *restored
		st.LoginMethod = method
	})
}

func (s *Store) readPersisted(ctx context.Context) (*models.Session, error) {
	values := make(map[string][]byte, len(allKeys))
	for _, k := range allKeys {
		v, err := s.repo.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		values[k] = v
	}

	token := string(values[KeyToken])
	if token == "" || len(values[KeyUser]) == 0 {
		return nil, nil
	}

	var user models.User
	if err := json.Unmarshal(values[KeyUser], &user); err != nil {
		return nil, fmt.Errorf("failed to decode stored user: %w", err)
	}

	role := models.ParseRole(string(values[KeyRole]))
	if user.Role == "" {
		user.Role = role
	}

	return &models.Session{
		User:           &user,
		AccessToken:    token,
		RefreshToken:   string(values[KeyRefreshToken]),
		Role:           role,
		TokenExpiresAt: tokenExpiry(token),
	}, nil
}

// SendVerificationCode asks the backend to text a login code to phone.
func (s *Store) SendVerificationCode(ctx context.Context, phone string) error {
	if _, err := s.auth.SendSMSCode(ctx, phone); err != nil {
		s.logger.Warn(ctx, "failed to send verification code", "error", err)
		return err
	}
	return nil
}

// LoginWithPhone signs in with a texted code. Failures come back as
// *client.LoginError and are also left in the state's Error field.
func (s *Store) LoginWithPhone(ctx context.Context, phone, code string) (models.Session, error) {
	s.ClearError()

	resp, err := s.auth.RegisterMobileWithCode(ctx, phone, code)
	if err != nil {
		return s.loginFailed(ctx, models.LoginMethodPhone, err)
	}
	if resp.AccessToken == "" || resp.PQLoginInfo == nil || resp.PQLoginInfo.Data.CofitUID == "" {
		return s.loginFailed(ctx, models.LoginMethodPhone, errIncompleteLoginResponse)
	}

	user := &models.User{
		ID:                 resp.PQLoginInfo.Data.CofitUID,
		Name:               models.DisplayName(resp.NickName, resp.LastName, resp.FirstName),
		Phone:              resp.PQLoginInfo.Data.Mobile,
		Role:               models.RoleClient,
		FirstName:          resp.FirstName,
		LastName:           resp.LastName,
		NickName:           resp.NickName,
		AvatarThumbnailURL: resp.AvatarThumbnailURL,
	}
	return s.completeLogin(ctx, models.LoginMethodPhone, user, resp.AccessToken)
}

// LoginWithEmail signs in with email and password. The endpoint returns no
// numeric id, so the nick name stands in as the user id.
func (s *Store) LoginWithEmail(ctx context.Context, email, password string) (models.Session, error) {
	s.ClearError()

	resp, err := s.auth.SignInWithEmail(ctx, email, password)
	if err != nil {
		return s.loginFailed(ctx, models.LoginMethodEmail, err)
	}
	if resp.AccessToken == "" {
		return s.loginFailed(ctx, models.LoginMethodEmail, errIncompleteLoginResponse)
	}

	var first string
	if resp.FirstName != nil {
		first = *resp.FirstName
	}
	user := &models.User{
		ID:                 resp.NickName,
		Name:               models.DisplayName(resp.NickName, resp.LastName, first),
		Email:              email,
		Role:               models.RoleClient,
		FirstName:          first,
		LastName:           resp.LastName,
		NickName:           resp.NickName,
		AvatarThumbnailURL: resp.AvatarThumbnailURL,
	}
	return s.completeLogin(ctx, models.LoginMethodEmail, user, resp.AccessToken)
}

func (s *Store) completeLogin(ctx context.Context, method models.LoginMethod, user *models.User, token string) (models.Session, error) {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return s.loginFailed(ctx, method, err)
	}

	// the login endpoints issue no refresh token, so a stored one belongs to
	// whoever was signed in before
	err = s.repo.Apply(ctx, []kv.Entry{
		{Key: KeyToken, Value: []byte(token)},
		{Key: KeyUser, Value: userJSON},
		{Key: KeyRole, Value: []byte(models.RoleClient)},
	}, []string{KeyRefreshToken})
	if err != nil {
		return s.loginFailed(ctx, method, fmt.Errorf("failed to persist session: %w", err))
	}

	s.logger.Info(ctx, "logged in", "method", method, "user", user.ID)

	snap := s.update(func(st *models.Session) {
		st.User = user
		st.AccessToken = token
		st.RefreshToken = ""
		st.Role = models.RoleClient
		st.Error = ""
		st.TokenExpiresAt = tokenExpiry(token)
	})
	return snap, nil
}

func (s *Store) loginFailed(ctx context.Context, method models.LoginMethod, err error) (models.Session, error) {
	msg := api.UserMessage(err, s.fallback)
	s.logger.Warn(ctx, "login failed", "method", method, "error", err)

	snap := s.update(func(st *models.Session) { st.Error = msg })
	return snap, &client.LoginError{Message: msg, Err: err}
}

// Logout clears the in-memory session first and then the persisted keys.
// A storage error is returned but the store stays anonymous regardless.
func (s *Store) Logout(ctx context.Context) error {
	s.update(func(st *models.Session) { *st = anonymous(st.LoginMethod) })

	if err := s.repo.DeleteMany(ctx, allKeys...); err != nil {
		s.logger.Error(ctx, "failed to clear persisted session", "error", err)
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}
	s.logger.Info(ctx, "logged out")
	return nil
}

// Invalidate is called when the server rejects the stored token.
func (s *Store) Invalidate(ctx context.Context, reason string) {
	s.logger.Warn(ctx, "session expired", "reason", reason)
	_ = s.Logout(ctx)
}

func (s *Store) SetLoginMethod(m models.LoginMethod) {
	s.update(func(st *models.Session) { st.LoginMethod = m })
}

func (s *Store) ClearError() {
	s.update(func(st *models.Session) { st.Error = "" })
}

// SetCredentials installs a session obtained elsewhere, e.g. handed over by
// another client. An empty refresh token removes any stored one.
func (s *Store) SetCredentials(ctx context.Context, user models.User, token, refreshToken string) error {
	if token == "" {
		return errors.New("access token is required")
	}
	if user.Role == "" {
		user.Role = models.RoleClient
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		return err
	}

	entries := []kv.Entry{
		{Key: KeyToken, Value: []byte(token)},
		{Key: KeyUser, Value: userJSON},
		{Key: KeyRole, Value: []byte(user.Role)},
	}
	var removals []string
	if refreshToken != "" {
		entries = append(entries, kv.Entry{Key: KeyRefreshToken, Value: []byte(refreshToken)})
	} else {
		removals = append(removals, KeyRefreshToken)
	}
	if err := s.repo.Apply(ctx, entries, removals); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.update(func(st *models.Session) {
		st.User = &user
		st.AccessToken = token
		st.RefreshToken = refreshToken
		st.Role = user.Role
		st.IsLoading = false
		st.TokenExpiresAt = tokenExpiry(token)
	})
	return nil
}

// tokenExpiry reads the exp claim without verifying the signature; the
// client has no key to verify with and only uses it for display.
func tokenExpiry(token string) *time.Time {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}
	t := claims.ExpiresAt.Time
	return &t
}
