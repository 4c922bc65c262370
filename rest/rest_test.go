package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/context"
)

func testClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	return &Client{HTTP: server.Client(), BaseURL: server.URL, Token: "secret"}, server
}

func TestClientSetsHeaders(t *testing.T) {
	var got *http.Request
	c, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(r.Context())
		w.Write([]byte(`{}`))
	})
	defer server.Close()

	_, err := c.Post(context.Background(), "/channels/1/messages", &Request{
		Body:   map[string]any{"content": "hi"},
		Reason: "because",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bot secret", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "because", got.Header.Get("X-Audit-Log-Reason"))
}

func TestClientNoAuth(t *testing.T) {
	var got *http.Request
	c, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(r.Context())
		w.Write([]byte(`{}`))
	})
	defer server.Close()

	_, err := c.Get(context.Background(), "/gateway", &Request{NoAuth: true})
	require.NoError(t, err)
	assert.Empty(t, got.Header.Get("Authorization"))
}

func TestClientQueryEncoding(t *testing.T) {
	var got *http.Request
	c, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(r.Context())
		w.Write([]byte(`[]`))
	})
	defer server.Close()

	query := url.Values{}
	query.Set("limit", "50")
	_, err := c.Get(context.Background(), "/channels/1/messages", &Request{Query: query})
	require.NoError(t, err)
	assert.Equal(t, "50", got.URL.Query().Get("limit"))
}

func TestClientAPIError(t *testing.T) {
	c, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{"code": 50013, "message": "Missing Permissions"})
	})
	defer server.Close()

	_, err := c.Delete(context.Background(), "/guilds/1", nil)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, 50013, apiErr.Code)
	assert.Equal(t, "Missing Permissions", apiErr.Message)
}

func TestClientEmptyBody(t *testing.T) {
	c, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	defer server.Close()

	raw, err := c.Put(context.Background(), "/channels/1/pins/2", nil)
	require.NoError(t, err)
	assert.Nil(t, raw)
}
