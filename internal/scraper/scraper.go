// Package scraper wraps the ScrapingBee structured-extraction API to pull
// a BrandProfile out of a target website.
package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"brandforge/internal/config"
	"brandforge/internal/models"
	"brandforge/internal/provider"

	"go.uber.org/zap"
)

const stageName = "dna_extraction"

// extractionRules is the schema sent to the provider: field name to
// natural-language description, with list fields carrying an explicit
// output shape. Keys match the BrandProfile JSON tags.
var extractionRules = map[string]any{
	"projectName": "Brand Name",
	"tagline":     "Tagline",
	"industry":    "Industry",
	"concept":     "Concept Summary (Max 25 words)",
	"colors": map[string]any{
		"description": "Hex colors of the brand palette",
		"type":        "list",
		"output":      map[string]string{"hex_code": "#Hex"},
	},
	"fonts": map[string]any{
		"description": "Fonts used on the site",
		"type":        "list",
		"output":      map[string]string{"name": "Font name", "usage": "Heading or body"},
	},
	"aesthetic": map[string]any{
		"description": "Aesthetic adjectives",
		"type":        "list",
		"output":      map[string]string{"keyword": "Adjective"},
	},
	"values": map[string]any{
		"description": "Brand values",
		"type":        "list",
		"output":      map[string]string{"value": "ValueName"},
	},
	"tone": map[string]any{
		"description": "Tone of voice keywords",
		"type":        "list",
		"output":      map[string]string{"keyword": "Adjective"},
	},
	"images": map[string]any{
		"description": "Representative images",
		"type":        "list",
		"output":      map[string]string{"src": "Absolute URL", "alt": "Alt text"},
	},
}

type Client struct {
	cfg    config.ScraperConfig
	apiKey string
	http   *http.Client
	logger *zap.Logger
}

func NewClient(cfg config.ScraperConfig, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		apiKey: apiKey,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.Named("scraper"),
	}
}

// NormalizeURL prepends https:// when the raw input carries no scheme.
// This is the only input validation the pipeline performs.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + raw
}

// Extract issues one synchronous extraction call and deserializes the
// response into a BrandProfile. All failure causes collapse into a
// StageError; callers only branch on worked/failed.
func (c *Client) Extract(ctx context.Context, target string) (*models.BrandProfile, error) {
	rules, err := json.Marshal(extractionRules)
	if err != nil {
		return nil, provider.NewStageError(stageName, provider.MalformedResponse, err)
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("url", target)
	params.Set("render_js", "true")
	params.Set("premium_proxy", "true")
	params.Set("wait", strconv.Itoa(c.cfg.WaitMS))
	params.Set("ai_extract_rules", string(rules))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, provider.NewStageError(stageName, provider.UpstreamError, err)
	}

	c.logger.Info("extracting brand DNA", zap.String("url", target))
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		kind := provider.UpstreamError
		if isTimeout(err) {
			kind = provider.Timeout
		}
		c.logger.Warn("extraction request failed", zap.String("url", target), zap.Error(err))
		return nil, provider.NewStageError(stageName, kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Warn("extraction returned non-success status",
			zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return nil, provider.NewStageError(stageName, provider.UpstreamError,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var profile models.BrandProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, provider.NewStageError(stageName, provider.MalformedResponse,
			fmt.Errorf("failed to decode extraction response: %w", err))
	}

	c.logger.Info("brand DNA extracted",
		zap.String("brand", profile.Name),
		zap.Int("colors", len(profile.Colors)),
		zap.Int("images", len(profile.Images)),
		zap.Duration("took", time.Since(start)))
	return &profile, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
