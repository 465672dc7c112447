package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisualPromptFlatString(t *testing.T) {
	var c CampaignConcept
	err := json.Unmarshal([]byte(`{"id":1,"title":"T","strategy":"S","visual_prompt":"  a glass bottle on marble  "}`), &c)
	require.NoError(t, err)
	assert.Equal(t, "a glass bottle on marble", c.VisualPrompt.String())
}

func TestVisualPromptNestedFacets(t *testing.T) {
	payload := `{"id":2,"title":"T","strategy":"S","visual_prompt":{
		"composition":"rule of thirds",
		"subject":"a silk scarf",
		"lighting":"golden hour",
		"textures":"soft fabric"
	}}`
	var c CampaignConcept
	require.NoError(t, json.Unmarshal([]byte(payload), &c))
	assert.Equal(t, "a silk scarf, golden hour, rule of thirds, soft fabric", c.VisualPrompt.String())
}

func TestVisualPromptNestedWithUnknownFacets(t *testing.T) {
	payload := `{"visual_prompt":{"subject":"a watch","mood":"calm","atmosphere":"misty"}}`
	var c CampaignConcept
	require.NoError(t, json.Unmarshal([]byte(payload), &c))
	// Known facets lead, unknown ones follow in key order.
	assert.Equal(t, "a watch, misty, calm", c.VisualPrompt.String())
}

func TestVisualPromptNestedSkipsEmptyFacets(t *testing.T) {
	payload := `{"visual_prompt":{"subject":"a chair","lighting":"","composition":"   "}}`
	var c CampaignConcept
	require.NoError(t, json.Unmarshal([]byte(payload), &c))
	assert.Equal(t, "a chair", c.VisualPrompt.String())
}

func TestBrandProfileSparseResponse(t *testing.T) {
	var p BrandProfile
	err := json.Unmarshal([]byte(`{"projectName":"Acme","colors":[{"hex_code":"#112233"}]}`), &p)
	require.NoError(t, err)
	assert.Equal(t, "Acme", p.Name)
	require.Len(t, p.Colors, 1)
	assert.Equal(t, "#112233", p.Colors[0].HexCode)
	assert.Empty(t, p.Tagline)
	assert.Empty(t, p.Fonts)
	assert.Empty(t, p.Images)
}

func TestRenderedVisualAvailable(t *testing.T) {
	assert.False(t, (*RenderedVisual)(nil).Available())
	assert.False(t, (&RenderedVisual{}).Available())
	assert.False(t, (&RenderedVisual{Err: "safety"}).Available())
	assert.False(t, (&RenderedVisual{Data: []byte("x"), Err: "partial"}).Available())
	assert.True(t, (&RenderedVisual{Data: []byte("x"), MIME: "image/png"}).Available())
}
