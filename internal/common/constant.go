// Package common contains header constants and small helpers shared by the
// API client, the auth gateway and the storage layer.
package common

const (
	// AuthorizationHeaderName carries the bearer token on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPlaceholder is sent by the login endpoints, which are called
	// before any token exists. Its presence stops the gateway from injecting
	// a stored token.
	BearerPlaceholder = "Bearer"

	// TokenHeaderName is an extra, always empty, header the login endpoints
	// expect.
	TokenHeaderName = "token"

	AcceptHeaderValue = "application/json, text/plain, */*"
	JSONContentType   = "application/json"
	DefaultMimeType   = "image/jpeg"
)

// BearerValue formats a token for the Authorization header.
func BearerValue(token string) string {
	return BearerPlaceholder + " " + token
}
