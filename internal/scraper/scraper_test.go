package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"brandforge/internal/config"
	"brandforge/internal/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"example.com", "https://example.com"},
		{"  example.com  ", "https://example.com"},
		{"https://example.com", "https://example.com"},
		{"http://example.com", "http://example.com"},
		{"www.example.com/path", "https://www.example.com/path"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeURL(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeURLPrependsSchemeExactlyOnce(t *testing.T) {
	out := NormalizeURL(NormalizeURL("example.com"))
	assert.Equal(t, "https://example.com", out)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := config.ScraperConfig{BaseURL: srv.URL, WaitMS: 1500, Timeout: timeout}
	return NewClient(cfg, "test-key", zap.NewNop())
}

func TestExtractSendsSchemaAndParams(t *testing.T) {
	var query map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = map[string]string{
			"api_key":          r.URL.Query().Get("api_key"),
			"url":              r.URL.Query().Get("url"),
			"render_js":        r.URL.Query().Get("render_js"),
			"premium_proxy":    r.URL.Query().Get("premium_proxy"),
			"wait":             r.URL.Query().Get("wait"),
			"ai_extract_rules": r.URL.Query().Get("ai_extract_rules"),
		}
		w.Write([]byte(`{}`))
	}, time.Second)

	_, err := c.Extract(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, "test-key", query["api_key"])
	assert.Equal(t, "https://example.com", query["url"])
	assert.Equal(t, "true", query["render_js"])
	assert.Equal(t, "true", query["premium_proxy"])
	assert.Equal(t, "1500", query["wait"])

	var rules map[string]any
	require.NoError(t, json.Unmarshal([]byte(query["ai_extract_rules"]), &rules))
	for _, field := range []string{"projectName", "tagline", "industry", "concept", "colors", "fonts", "aesthetic", "values", "tone", "images"} {
		assert.Contains(t, rules, field)
	}
	colors, ok := rules["colors"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "list", colors["type"])
	assert.Contains(t, colors, "output")
}

func TestExtractDeserializesProfile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"projectName":"Acme","colors":[{"hex_code":"#112233"}]}`))
	}, time.Second)

	profile, err := c.Extract(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "Acme", profile.Name)
	require.Len(t, profile.Colors, 1)
	assert.Equal(t, "#112233", profile.Colors[0].HexCode)
}

func TestExtractUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}, time.Second)

	_, err := c.Extract(context.Background(), "https://example.com")
	require.Error(t, err)

	var se *provider.StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, provider.UpstreamError, se.Kind)
}

func TestExtractMalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>definitely not json`))
	}, time.Second)

	_, err := c.Extract(context.Background(), "https://example.com")
	require.Error(t, err)

	var se *provider.StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, provider.MalformedResponse, se.Kind)
}

func TestExtractTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{}`))
	}, 30*time.Millisecond)

	_, err := c.Extract(context.Background(), "https://example.com")
	require.Error(t, err)

	var se *provider.StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, provider.Timeout, se.Kind)
}
