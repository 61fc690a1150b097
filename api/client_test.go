package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-session-client/api"
	"github.com/jrsteele09/go-session-client/internal/config"
	clienterrors "github.com/jrsteele09/go-session-client/internal/errors"
)

type testConfig struct {
	config.EnvVars
	baseURL string
}

func (c testConfig) GetBaseURL() string { return c.baseURL }

func newClient(baseURL string) *api.Client {
	return api.New(
		testConfig{baseURL: baseURL},
		&http.Client{Timeout: 5 * time.Second},
		api.WithRetry(time.Millisecond, 2),
	)
}

func TestLoginDecodesTokenPairAndUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login/", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "jdoe", payload["username"])
		require.Equal(t, "password123", payload["password"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"access": "access-1",
			"refresh": "refresh-1",
			"user": {"id": 1, "username": "jdoe", "email": "j@example.com", "first_name": "John", "last_name": "Doe", "is_staff": false}
		}`))
	}))
	defer server.Close()

	result, err := newClient(server.URL).Login(context.Background(), "jdoe", "password123")
	require.NoError(t, err)

	require.Equal(t, "access-1", result.AccessToken)
	require.Equal(t, "refresh-1", result.RefreshToken)
	require.Equal(t, "John Doe", result.User.DisplayName())
	require.True(t, result.User.IsActive)
}

func TestLoginRejectionCarriesServerDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "No active account found with the given credentials"}`))
	}))
	defer server.Close()

	_, err := newClient(server.URL).Login(context.Background(), "jdoe", "wrong")
	require.Error(t, err)

	var apiErr *clienterrors.APIError
	require.True(t, clienterrors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "No active account found with the given credentials", apiErr.Message)
}

func TestRefreshDecodesRotatedToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/token/refresh/", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "refresh-1", payload["refresh"])

		w.Write([]byte(`{"access": "access-2", "refresh": "refresh-2"}`))
	}))
	defer server.Close()

	result, err := newClient(server.URL).Refresh(context.Background(), "refresh-1")
	require.NoError(t, err)
	require.Equal(t, "access-2", result.AccessToken)
	require.Equal(t, "refresh-2", result.RefreshToken)
}

func TestRefreshWithoutRotationLeavesRefreshEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access": "access-2"}`))
	}))
	defer server.Close()

	result, err := newClient(server.URL).Refresh(context.Background(), "refresh-1")
	require.NoError(t, err)
	require.Empty(t, result.RefreshToken)
}

func TestFetchMenuDecodesEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/menu/", r.URL.Path)
		w.Write([]byte(`[
			{"id": 1, "name": "Dashboard", "path": "/dashboard", "icon": "home", "order": 1},
			{"id": 2, "name": "Settings", "path": "/settings", "icon": "gear", "order": 2}
		]`))
	}))
	defer server.Close()

	entries, err := newClient(server.URL).FetchMenu(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "/dashboard", entries[0].Path)
	require.Equal(t, "gear", entries[1].Icon)
}

func TestFetchProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/me/", r.URL.Path)
		w.Write([]byte(`{"id": 1, "username": "jdoe", "first_name": "John", "last_name": "Doe", "is_active": true}`))
	}))
	defer server.Close()

	profile, err := newClient(server.URL).FetchProfile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "John Doe", profile.DisplayName())
	require.True(t, profile.IsActive)
}

func TestTransportFailureMapsToNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	_, err := newClient(server.URL).FetchMenu(context.Background())
	require.Error(t, err)
	require.True(t, clienterrors.Is(err, clienterrors.ErrNetwork))
}

func TestHTTPErrorStatusIsNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newClient(server.URL).FetchMenu(context.Background())
	require.Error(t, err)
	require.Equal(t, 1, calls)

	var apiErr *clienterrors.APIError
	require.True(t, clienterrors.As(err, &apiErr))
	require.Equal(t, http.StatusInternalServerError, apiErr.Status)
}
