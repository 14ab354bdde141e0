package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	assert.Nil(t, NewClient("", "key"), "empty base URL disables the client")
	assert.Nil(t, NewClient("   ", "key"))

	c := NewClient("https://verify.example.com/", "key")
	require.NotNil(t, c)
	assert.Equal(t, "https://verify.example.com", c.BaseURL, "trailing slash trimmed")
}

func TestClientIsHuman(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/verify", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("account") {
		case "alice":
			_, _ = w.Write([]byte(`{"account":"alice","human":true}`))
		case "bot":
			_, _ = w.Write([]byte(`{"account":"bot","human":false}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"unknown account"}`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	require.NotNil(t, c)
	ctx := context.Background()

	human, err := c.IsHuman(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, human)

	human, err = c.IsHuman(ctx, "bot")
	require.NoError(t, err)
	assert.False(t, human)

	// Non-2xx surfaces as HTTPError with the body attached
	_, err = c.IsHuman(ctx, "nobody")
	require.Error(t, err)
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Contains(t, httpErr.Error(), "unknown account")

	// Blank account is rejected client-side
	_, err = c.IsHuman(ctx, "  ")
	assert.Error(t, err)
}

func TestClientIsHumanMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.IsHuman(context.Background(), "alice")
	assert.Error(t, err)
}
