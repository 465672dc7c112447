// Package strategist wraps the Gemini API to turn a BrandProfile into a
// fixed-size list of campaign concepts.
package strategist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"brandforge/internal/config"
	"brandforge/internal/models"
	"brandforge/internal/provider"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const stageName = "campaign_strategy"

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	count  int
	logger *zap.Logger
}

func NewGeminiClient(ctx context.Context, apiKey string, cfg config.StrategyConfig, logger *zap.Logger) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(0.7)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(4096)
	model.ResponseMIMEType = "application/json"

	count := cfg.CampaignCount
	if count <= 0 {
		count = 3
	}

	return &GeminiClient{
		client: client,
		model:  model,
		count:  count,
		logger: logger.Named("strategist"),
	}, nil
}

func (g *GeminiClient) Close() {
	g.client.Close()
}

// Strategize requests campaign concepts for the given profile. Any
// failure, including a decodable but empty list, yields an error and no
// concepts: the caller treats "no campaigns" as the uniform failure
// signal. Results vary between calls; the orchestrator caches the first
// non-empty list and never re-invokes automatically.
func (g *GeminiClient) Strategize(ctx context.Context, profile *models.BrandProfile) ([]models.CampaignConcept, error) {
	prompt := g.buildPrompt(profile)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		g.logger.Warn("generation request failed", zap.Error(err))
		return nil, provider.NewStageError(stageName, provider.UpstreamError, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, provider.NewStageError(stageName, provider.MalformedResponse,
			fmt.Errorf("no content generated"))
	}

	text := partText(resp.Candidates[0].Content.Parts[0])

	campaigns, err := ParseCampaigns(text)
	if err != nil {
		g.logger.Warn("failed to parse campaign response", zap.Error(err))
		return nil, provider.NewStageError(stageName, provider.MalformedResponse, err)
	}

	g.logger.Info("campaign concepts generated", zap.Int("count", len(campaigns)))
	return campaigns, nil
}

func partText(part genai.Part) string {
	if txt, ok := part.(genai.Text); ok {
		return string(txt)
	}
	return fmt.Sprintf("%v", part)
}

// campaignEnvelope matches the requested output shape. Some responses
// wrap the list, some return it bare; both are accepted.
type campaignEnvelope struct {
	Campaigns []models.CampaignConcept `json:"campaigns"`
}

// ParseCampaigns decodes a model response into campaign concepts,
// tolerating markdown code fences and the top-level wrapper key. It is
// all-or-nothing: a response that decodes but violates the contract
// (empty list, duplicate or non-positive ids) is an error.
func ParseCampaigns(text string) ([]models.CampaignConcept, error) {
	text = StripCodeFences(text)

	var campaigns []models.CampaignConcept
	var envelope campaignEnvelope
	if err := json.Unmarshal([]byte(text), &envelope); err == nil && len(envelope.Campaigns) > 0 {
		campaigns = envelope.Campaigns
	} else if err := json.Unmarshal([]byte(text), &campaigns); err != nil {
		return nil, fmt.Errorf("response is not valid campaign JSON: %w", err)
	}

	if len(campaigns) == 0 {
		return nil, fmt.Errorf("response contained no campaigns")
	}

	seen := make(map[int]bool, len(campaigns))
	for _, c := range campaigns {
		if c.ID <= 0 {
			return nil, fmt.Errorf("campaign %q has invalid id %d", c.Title, c.ID)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("duplicate campaign id %d", c.ID)
		}
		seen[c.ID] = true
	}
	return campaigns, nil
}

// StripCodeFences removes a surrounding markdown code fence, with or
// without a language tag, from a model response.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		first := strings.TrimSpace(text[:idx])
		if len(first) <= 8 {
			text = text[idx+1:]
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func (g *GeminiClient) buildPrompt(profile *models.BrandProfile) string {
	dna, _ := json.Marshal(profile)

	return fmt.Sprintf(`Role: Luxury Brand Strategist.
Brand DNA: %s

Task: Create %d distinct, high-end social media campaign angles for this brand.

Output strictly as JSON with this shape:
{
  "campaigns": [
    {
      "id": 1,
      "title": "Campaign Title (Short & Impactful)",
      "strategy": "One sentence explaining the strategic angle.",
      "visual_prompt": "Commercial photography description: Subject, Lighting, Composition, Textures. High fidelity."
    }
  ]
}

Ids must be sequential starting at 1. Return only the JSON document.`, string(dna), g.count)
}
