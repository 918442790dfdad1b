package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/cofit/cofitcli/internal/client/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPIError_ParsesBody(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantMsg    string
		wantErrors string
	}{
		{name: "message", body: `{"message":"驗證碼錯誤"}`, wantMsg: "驗證碼錯誤"},
		{name: "errors string", body: `{"errors":"code expired"}`, wantErrors: "code expired"},
		{name: "errors list", body: `{"errors":["too short","no digits"]}`, wantErrors: "too short; no digits"},
		{name: "errors map", body: `{"errors":{"mobile":["invalid"],"code":"required"}}`, wantErrors: "code: required; mobile: invalid"},
		{name: "errors null", body: `{"errors":null}`},
		{name: "not json", body: `<html>502</html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newAPIError(http.StatusUnprocessableEntity, []byte(tt.body))
			assert.Equal(t, tt.wantMsg, e.Message)
			assert.Equal(t, tt.wantErrors, e.ErrorsText())
		})
	}
}

func TestAPIError_ErrorText(t *testing.T) {
	assert.Equal(t, "api error 422: bad", (&APIError{StatusCode: 422, Message: "bad"}).Error())
	assert.Equal(t, "api error 500: Internal Server Error", (&APIError{StatusCode: 500}).Error())
	assert.Equal(t, "api error 400: x", newAPIError(400, []byte(`{"errors":["x"]}`)).Error())
}

func TestAPIError_Temporary(t *testing.T) {
	assert.True(t, (&APIError{StatusCode: 503}).Temporary())
	assert.True(t, (&APIError{StatusCode: 429}).Temporary())
	assert.False(t, (&APIError{StatusCode: 404}).Temporary())
	assert.False(t, (&APIError{StatusCode: 401}).Temporary())
}

func TestAPIError_401UnwrapsToUnauthorized(t *testing.T) {
	require.ErrorIs(t, &APIError{StatusCode: 401}, client.ErrUnauthorized)
	assert.False(t, errors.Is(&APIError{StatusCode: 403}, client.ErrUnauthorized))
}

func TestUserMessage_Priority(t *testing.T) {
	both := fmt.Errorf("wrapped: %w", newAPIError(422, []byte(`{"message":"m","errors":["e"]}`)))
	assert.Equal(t, "m", UserMessage(both, "fallback"))

	onlyErrors := newAPIError(422, []byte(`{"errors":{"code":"wrong"}}`))
	assert.Equal(t, "code: wrong", UserMessage(onlyErrors, "fallback"))

	assert.Equal(t, "fallback", UserMessage(newAPIError(500, nil), "fallback"))
	assert.Equal(t, "fallback", UserMessage(client.ErrUnavailable, "fallback"))
}
