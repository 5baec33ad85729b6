package client

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/siwe-auth/adapters/nonce"
	"github.com/layer-3/siwe-auth/adapters/store"
	"github.com/layer-3/siwe-auth/adapters/tokenizer"
	"github.com/layer-3/siwe-auth/internal/eth"
	"github.com/layer-3/siwe-auth/service"
	transport "github.com/layer-3/siwe-auth/transport/http"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// startServer runs the auth API on a loopback listener and binds it to the
// listener's own address, as a deployment binds to its public URL.
func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewUnstartedServer(nil)
	host := srv.Listener.Addr().String()

	tok, err := tokenizer.NewJWTTokenizer([]byte(strings.Repeat("k", tokenizer.MinSecretLength)), "http://"+host)
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	nonces := nonce.NewMemoryStore(time.Minute)
	adjudicator := service.NewAdjudicator(nonces, service.Binding{
		Domain:    host,
		Origin:    "http://" + host,
		MaxAge:    10 * time.Minute,
		ClockSkew: time.Minute,
	})
	sessions := service.NewSessionManager(tok, store.NewMemoryStore(), time.Hour)
	authService := service.NewAuthService(nonces, adjudicator, sessions, nil, nil, log)

	srv.Config.Handler = transport.SetupRouter(authService, transport.RouterOptions{Log: log})
	srv.Start()
	t.Cleanup(srv.Close)

	return srv
}

func TestAPISignIn(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()

	api, err := NewAPI(srv.URL, nil)
	require.NoError(t, err)

	wallet, err := eth.GenerateKeySigner()
	require.NoError(t, err)

	info, err := api.SignIn(ctx, wallet, 1, "Sign in to the test server.")
	require.NoError(t, err)
	require.Equal(t, wallet.Address().Hex(), info.Address)
	require.Equal(t, uint64(1), info.ChainID)
	require.True(t, info.ExpiresAt.After(time.Now()))

	status, err := api.Session(ctx, info.Token)
	require.NoError(t, err)
	require.Equal(t, StatusAuthenticated, status.Status)
	require.Equal(t, info.Address, status.Address)

	t.Run("watcher signs out through the api", func(t *testing.T) {
		state := NewSessionState()
		state.Set(info.Token, info.Address, info.ChainID)

		log, _ := test.NewNullLogger()
		w := NewWatcher(state, api, nil, log)
		require.True(t, w.Observe(WalletState{Connected: false}))
		w.Wait()

		status, err := api.Session(ctx, info.Token)
		require.NoError(t, err)
		require.Equal(t, StatusUnauthenticated, status.Status)
	})

	t.Run("signing in again", func(t *testing.T) {
		again, err := api.SignIn(ctx, wallet, 10, "")
		require.NoError(t, err)
		require.NotEqual(t, info.Token, again.Token)
		require.Equal(t, uint64(10), again.ChainID)
	})
}

func TestAPIRejected(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()

	api, err := NewAPI(srv.URL, nil)
	require.NoError(t, err)

	wallet, err := eth.GenerateKeySigner()
	require.NoError(t, err)
	impostor, err := eth.GenerateKeySigner()
	require.NoError(t, err)

	nonceValue, err := api.Nonce(ctx)
	require.NoError(t, err)

	text, err := api.Message(wallet.Address(), 1, nonceValue, "").Build()
	require.NoError(t, err)
	signature, err := impostor.SignMessage(text)
	require.NoError(t, err)

	_, err = api.Authorize(ctx, text, signature)
	require.ErrorIs(t, err, ErrAuthenticationFailed)

	t.Run("foreign domain", func(t *testing.T) {
		nonceValue, err := api.Nonce(ctx)
		require.NoError(t, err)

		msg := api.Message(wallet.Address(), 1, nonceValue, "")
		msg.Domain = "evil.example"
		text, err := msg.Build()
		require.NoError(t, err)
		signature, err := wallet.SignMessage(text)
		require.NoError(t, err)

		_, err = api.Authorize(ctx, text, signature)
		require.ErrorIs(t, err, ErrAuthenticationFailed)
	})
}

func TestNewAPIInvalidURL(t *testing.T) {
	_, err := NewAPI("localhost", nil)
	require.Error(t, err)
}
