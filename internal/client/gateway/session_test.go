package gateway_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cofit/cofitcli/internal/client/api"
	"github.com/cofit/cofitcli/internal/client/client"
	"github.com/cofit/cofitcli/internal/client/gateway"
	"github.com/cofit/cofitcli/internal/client/repositories/kv"
	"github.com/cofit/cofitcli/internal/client/session"
	"github.com/cofit/cofitcli/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const phoneLoginBody = `{
	"access_token": "T",
	"last_name": "Lin",
	"pq_login_info": {"data": {"cofit_uid": "u-42", "mobile": "0912345678"}}
}`

// TestGateway_SessionStoreOverHTTP runs the real gateway, API client and
// session store against one backend.
func TestGateway_SessionStoreOverHTTP(t *testing.T) {
	var mu sync.Mutex
	var meAuth string

	mux := http.NewServeMux()
	mux.HandleFunc("/v4/clients/register_mobile_with_code", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, phoneLoginBody)
	})
	mux.HandleFunc("/v4/clients/mobile_sms_code", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"too many requests"}`)
	})
	mux.HandleFunc("/v4/clients/me", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		meAuth = r.Header.Get("Authorization")
		mu.Unlock()
		w.WriteHeader(http.StatusUnauthorized)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	ctx := context.Background()
	repo := kv.NewMemoryRepository()
	gw := gateway.New(nil, logging.Nop())
	c, err := api.New(ts.URL, gw.Client(), "", logging.Nop())
	require.NoError(t, err)
	store := session.NewStore(repo, c, logging.Nop())
	gw.Bind(store)
	store.Rehydrate(ctx)

	snap, err := store.LoginWithPhone(ctx, "0912345678", "1234")
	require.NoError(t, err)
	require.True(t, snap.IsAuthenticated())
	assert.Equal(t, "u-42", snap.User.ID)
	assert.ElementsMatch(t, []string{session.KeyRole, session.KeyToken, session.KeyUser}, repo.Keys())

	// a 401 from the code endpoint means bad input, not an expired token
	err = store.SendVerificationCode(ctx, "0912345678")
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.True(t, store.IsAuthenticated())
	assert.Len(t, repo.Keys(), 3)

	_, err = c.Get(ctx, "/v4/clients/me")
	var expired *client.SessionExpiredError
	require.ErrorAs(t, err, &expired)

	mu.Lock()
	assert.Equal(t, "Bearer T", meAuth)
	mu.Unlock()
	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, store.AccessToken())
	assert.Empty(t, repo.Keys())
}
