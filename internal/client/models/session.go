// Package models defines the client-side data shapes shared by the session
// store, the API client and the upload pipeline.
package models

import (
	"strings"
	"time"
)

// Role is the kind of account a user holds.
type Role string

const (
	RoleCoach  Role = "coach"
	RoleClient Role = "client"
)

// ParseRole accepts the persisted role string. Unknown or empty values map
// to RoleClient.
func ParseRole(s string) Role {
	if Role(strings.TrimSpace(s)) == RoleCoach {
		return RoleCoach
	}
	return RoleClient
}

// LoginMethod selects which login form the user is shown.
type LoginMethod string

const (
	LoginMethodPhone LoginMethod = "phone"
	LoginMethodEmail LoginMethod = "email"
)

// ParseLoginMethod returns false for values other than phone and email.
func ParseLoginMethod(s string) (LoginMethod, bool) {
	switch LoginMethod(strings.ToLower(strings.TrimSpace(s))) {
	case LoginMethodPhone:
		return LoginMethodPhone, true
	case LoginMethodEmail:
		return LoginMethodEmail, true
	}
	return "", false
}

// User is the profile persisted under @auth:user.
type User struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Phone              string `json:"phone,omitempty"`
	Email              string `json:"email,omitempty"`
	Avatar             string `json:"avatar,omitempty"`
	Role               Role   `json:"role"`
	FirstName          string `json:"first_name,omitempty"`
	LastName           string `json:"last_name,omitempty"`
	NickName           string `json:"nick_name,omitempty"`
	AvatarThumbnailURL string `json:"avatar_thumbnail_url,omitempty"`
}

// DisplayName picks the first non-empty of nick, last and first name.
func DisplayName(nick, last, first string) string {
	for _, s := range []string{nick, last, first} {
		if s != "" {
			return s
		}
	}
	return ""
}

// Session is a point-in-time copy of the authentication state. An empty
// token means "no token".
type Session struct {
	User         *User
	AccessToken  string
	RefreshToken string
	Role         Role
	LoginMethod  LoginMethod
	IsLoading    bool
	Error        string

	// TokenExpiresAt is the exp claim when the access token is a JWT.
	TokenExpiresAt *time.Time
}

// IsAuthenticated holds exactly when both a token and a user are present.
func (s Session) IsAuthenticated() bool {
	return s.AccessToken != "" && s.User != nil
}

// Clone returns a copy that shares no pointers with s.
func (s Session) Clone() Session {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	if s.TokenExpiresAt != nil {
		t := *s.TokenExpiresAt
		out.TokenExpiresAt = &t
	}
	return out
}
