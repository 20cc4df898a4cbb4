package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	coreErrors "github.com/angelospk/subsubs/pkg/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type queryParams struct {
	Query     string `url:"query"`
	Languages string `url:"languages,omitempty"`
}

func TestGet_SetsHeadersAndQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/subtitles", r.URL.Path)
		assert.Equal(t, "Inception", r.URL.Query().Get("query"))
		assert.False(t, r.URL.Query().Has("languages"))
		assert.Equal(t, "key", r.Header.Get("Api-Key"))
		assert.Equal(t, "agent/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	c := New(server.URL+"/api/v1/", "key", "agent/1.0", server.Client())
	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.Get(context.Background(), "/subtitles", queryParams{Query: "Inception"}, &out))
	assert.True(t, out.OK)
}

func TestPost_SendsBearerWhenTokenSet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer jwt", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := New(server.URL, "key", "agent", server.Client())
	c.SetAuthToken("jwt")
	require.NoError(t, c.Post(context.Background(), "/download", map[string]int{"file_id": 1}, nil))
}

func TestMissingCredential_NoNetworkCall(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	c := New(server.URL, "  ", "agent", server.Client())
	err := c.Get(context.Background(), "/subtitles", nil, nil)

	var cfgErr *coreErrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, CredentialSetting, cfgErr.Setting)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestErrorStatus_SurfacesMessage(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"message field", `{"message": "You have downloaded your allowed 5 subtitles"}`, "You have downloaded your allowed 5 subtitles"},
		{"errors array", `{"errors": ["Invalid file_id"], "status": 400}`, "Invalid file_id"},
		{"plain text", `Service Unavailable`, ""},
		{"html page", "<html><head><title>502 Bad\n  Gateway</title></head><body>cloudflare</body></html>", "502 Bad Gateway"},
		{"html without title", `<html><body>oops</body></html>`, ""},
		{"empty", ``, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotAcceptable)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			c := New(server.URL, "key", "agent", server.Client())
			err := c.Post(context.Background(), "/download", map[string]int{"file_id": 1}, nil)

			upErr, ok := coreErrors.AsUpstream(err)
			require.True(t, ok, "expected UpstreamError, got %T", err)
			assert.Equal(t, http.StatusNotAcceptable, upErr.Status)
			assert.Equal(t, tc.expected, upErr.Message)
		})
	}
}

func TestTransportFailure_IsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := New(url, "key", "agent", nil)
	err := c.Get(context.Background(), "/subtitles", nil, nil)
	assert.True(t, coreErrors.IsUnavailable(err), "expected unavailable, got %v", err)

	_, err = c.GetRaw(context.Background(), url+"/file.srt", 1024)
	assert.True(t, coreErrors.IsUnavailable(err), "expected unavailable, got %v", err)
}

func TestGetRaw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Api-Key"), "signed links must not receive the API key")
		switch r.URL.Path {
		case "/ok.srt":
			_, _ = w.Write([]byte("1\n00:00:01,000 --> 00:00:02,000\nHello\n"))
		case "/big.srt":
			_, _ = w.Write(make([]byte, 64))
		default:
			w.WriteHeader(http.StatusGone)
		}
	}))
	defer server.Close()

	c := New("https://api.invalid", "key", "agent", server.Client())
	ctx := context.Background()

	data, err := c.GetRaw(ctx, server.URL+"/ok.srt", 1024)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Hello")

	_, err = c.GetRaw(ctx, server.URL+"/big.srt", 16)
	upErr, ok := coreErrors.AsUpstream(err)
	require.True(t, ok)
	assert.Contains(t, upErr.Message, "exceeds 16 bytes")

	_, err = c.GetRaw(ctx, server.URL+"/expired.srt", 1024)
	upErr, ok = coreErrors.AsUpstream(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusGone, upErr.Status)
}

func TestMalformedSuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	c := New(server.URL, "key", "agent", server.Client())
	var out map[string]interface{}
	err := c.Get(context.Background(), "/subtitles", nil, &out)

	upErr, ok := coreErrors.AsUpstream(err)
	require.True(t, ok)
	assert.Contains(t, upErr.Message, "malformed response body")
}
