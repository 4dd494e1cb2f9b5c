package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mesagoo-console/internal/common/errors"
)

func TestLogin_Success(t *testing.T) {
	var gotAuthHeader string
	var hasAuthHeader bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		_, hasAuthHeader = r.Header["Authorization"]
		gotAuthHeader = r.Header.Get("Authorization")

		var creds LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "ada@example.com", creds.Email)
		assert.Equal(t, "s3cret", creds.Password)

		w.Write([]byte(`{
			"data": {
				"token": "fresh-token",
				"user": {"id": 7, "name": "Ada", "email": "ada@example.com", "role": "admin"}
			}
		}`))
	}))
	defer server.Close()

	client, store := newTestClient(t, server.URL, "")
	ctx := context.Background()

	auth, err := client.Login(ctx, "ada@example.com", "s3cret")
	require.NoError(t, err)

	// Login establishes the token; it must not carry one itself.
	assert.False(t, hasAuthHeader, "login sent an Authorization header: %q", gotAuthHeader)

	assert.Equal(t, "fresh-token", auth.Token)
	require.NotNil(t, auth.User)
	assert.Equal(t, "Ada", auth.User.Name)

	// Token and profile are persisted for subsequent calls.
	assert.True(t, store.IsAuthenticated(ctx))
	user := store.CurrentUser(ctx)
	require.NotNil(t, user)
	assert.Equal(t, int64(7), user.ID)

	settings, err := store.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", settings.BearerToken)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message": "invalid email or password"}`))
	}))
	defer server.Close()

	client, store := newTestClient(t, server.URL, "")
	ctx := context.Background()

	_, err := client.Login(ctx, "ada@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRequestFailed))
	assert.Contains(t, err.Error(), "invalid email or password")

	// A failed login leaves the store untouched.
	assert.False(t, store.IsAuthenticated(ctx))
	assert.Nil(t, store.CurrentUser(ctx))
}

func TestLogout_LocalOnly(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	client, store := newTestClient(t, server.URL, "tok")
	ctx := context.Background()

	require.NoError(t, client.Logout(ctx))

	assert.Equal(t, 0, requests, "logout must not touch the network")
	assert.False(t, client.IsAuthenticated(ctx))
	assert.Nil(t, client.CurrentUser(ctx))

	settings, err := store.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, server.URL, settings.BaseURL)
}
