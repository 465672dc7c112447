package strategist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wrappedResponse = `{
  "campaigns": [
    {"id": 1, "title": "Heritage", "strategy": "Lean on provenance.", "visual_prompt": "atelier scene"},
    {"id": 2, "title": "Icons", "strategy": "Spotlight the hero product.", "visual_prompt": "hero product on stone"},
    {"id": 3, "title": "Night", "strategy": "Own the evening.", "visual_prompt": "city at dusk"}
  ]
}`

func TestParseCampaignsWrapperKey(t *testing.T) {
	campaigns, err := ParseCampaigns(wrappedResponse)
	require.NoError(t, err)
	require.Len(t, campaigns, 3)
	assert.Equal(t, 1, campaigns[0].ID)
	assert.Equal(t, "Heritage", campaigns[0].Title)
	assert.Equal(t, "atelier scene", campaigns[0].VisualPrompt.String())
}

func TestParseCampaignsBareArray(t *testing.T) {
	campaigns, err := ParseCampaigns(`[{"id":1,"title":"Solo","strategy":"s","visual_prompt":"p"}]`)
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	assert.Equal(t, "Solo", campaigns[0].Title)
}

func TestParseCampaignsStripsFences(t *testing.T) {
	campaigns, err := ParseCampaigns("```json\n" + wrappedResponse + "\n```")
	require.NoError(t, err)
	assert.Len(t, campaigns, 3)
}

func TestParseCampaignsFlattensNestedPrompt(t *testing.T) {
	payload := `{"campaigns":[{"id":1,"title":"T","strategy":"s",
		"visual_prompt":{"subject":"a perfume bottle","lighting":"backlit","composition":"centered","textures":"frosted glass"}}]}`
	campaigns, err := ParseCampaigns(payload)
	require.NoError(t, err)
	assert.Equal(t, "a perfume bottle, backlit, centered, frosted glass", campaigns[0].VisualPrompt.String())
}

func TestParseCampaignsAllOrNothing(t *testing.T) {
	cases := map[string]string{
		"not json":        "I could not produce campaigns this time.",
		"empty wrapper":   `{"campaigns": []}`,
		"empty array":     `[]`,
		"zero id":         `{"campaigns":[{"id":0,"title":"T","strategy":"s","visual_prompt":"p"}]}`,
		"negative id":     `{"campaigns":[{"id":-2,"title":"T","strategy":"s","visual_prompt":"p"}]}`,
		"duplicate ids":   `{"campaigns":[{"id":1,"title":"A","strategy":"s","visual_prompt":"p"},{"id":1,"title":"B","strategy":"s","visual_prompt":"p"}]}`,
		"wrapper not obj": `{"campaigns": "three great ideas"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			campaigns, err := ParseCampaigns(payload)
			require.Error(t, err)
			assert.Empty(t, campaigns)
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"padded", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripCodeFences(tc.in))
		})
	}
}
