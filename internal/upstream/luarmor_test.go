package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateKeyForwardsPayloadAndAuth(t *testing.T) {
	var gotAuth string
	var gotPayload MintPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"message":"created","user_key":"KEY123"}`))
	}))
	defer srv.Close()

	client := NewLuarmorClient(srv.URL, "secret-token", 5*time.Second)

	days := 7
	result, uerr := client.CreateKey(context.Background(), MintPayload{
		DiscordID: "123456789012345678",
		KeyDays:   &days,
	})

	require.Nil(t, uerr)
	assert.Equal(t, "secret-token", gotAuth)
	assert.Equal(t, "123456789012345678", gotPayload.DiscordID)
	require.NotNil(t, gotPayload.KeyDays)
	assert.Equal(t, 7, *gotPayload.KeyDays)
	assert.Equal(t, "KEY123", result.UserKey)
	assert.True(t, result.Success)
}

func TestCreateKeyRewritesProvider500(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"stacktrace: secret internals"}`))
	}))
	defer srv.Close()

	client := NewLuarmorClient(srv.URL, "secret", 5*time.Second)
	_, uerr := client.CreateKey(context.Background(), MintPayload{DiscordID: "1"})

	require.NotNil(t, uerr)
	assert.Equal(t, http.StatusInternalServerError, uerr.StatusCode)
	assert.Equal(t, "Internal error, please try again", uerr.Message)
	assert.NotContains(t, uerr.Message, "stacktrace")
}

func TestCreateKeyProviderRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewLuarmorClient(srv.URL, "secret", 5*time.Second)
	_, uerr := client.CreateKey(context.Background(), MintPayload{DiscordID: "1"})

	require.NotNil(t, uerr)
	assert.Equal(t, http.StatusTooManyRequests, uerr.StatusCode)
	assert.Equal(t, "Service is rate limited. Please try again later.", uerr.Message)
}

func TestCreateKeyHTMLResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<!DOCTYPE html><html><body>Cloudflare error</body></html>"))
	}))
	defer srv.Close()

	client := NewLuarmorClient(srv.URL, "secret", 5*time.Second)
	_, uerr := client.CreateKey(context.Background(), MintPayload{DiscordID: "1"})

	require.NotNil(t, uerr)
	assert.Equal(t, KindMalformed, uerr.Kind)
	assert.Equal(t, "License service returned an error page", uerr.Message)
}

func TestCreateKeyConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	client := NewLuarmorClient(srv.URL, "secret", time.Second)
	_, uerr := client.CreateKey(context.Background(), MintPayload{DiscordID: "1"})

	require.NotNil(t, uerr)
	assert.Equal(t, KindTransport, uerr.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, uerr.StatusCode)
}

func TestGetUserReturnsDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "KEY123", r.URL.Query().Get("user_key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"users":[{"user_key":"KEY123","status":"active","last_reset":100,"auth_expire":200,"total_executions":42}]}`))
	}))
	defer srv.Close()

	client := NewLuarmorClient(srv.URL, "secret", 5*time.Second)
	details, uerr := client.GetUser(context.Background(), "KEY123")

	require.Nil(t, uerr)
	assert.Equal(t, "KEY123", details.UserKey)
	assert.Equal(t, "active", details.Status)
	assert.Equal(t, int64(42), details.TotalExecutions)
}

func TestGetUserUnknownKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"users":[]}`))
	}))
	defer srv.Close()

	client := NewLuarmorClient(srv.URL, "secret", 5*time.Second)
	_, uerr := client.GetUser(context.Background(), "missing")

	require.NotNil(t, uerr)
	assert.Equal(t, http.StatusNotFound, uerr.StatusCode)
}

func TestResetHWIDProviderLevelFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false,"message":"key is on cooldown"}`))
	}))
	defer srv.Close()

	client := NewLuarmorClient(srv.URL, "secret", 5*time.Second)
	result, uerr := client.ResetHWID(context.Background(), "KEY123", false)

	// Transport succeeded but the provider refused; the caller must not
	// consume a reset token in this case.
	require.Nil(t, uerr)
	assert.False(t, result.Success)
	assert.Equal(t, "key is on cooldown", result.Message)
}
