package models

import (
	"encoding/json"
	"sort"
	"strings"
)

// BrandProfile is the structured identity extracted from a website.
// Field names mirror the extraction schema sent to the scraping provider,
// so the provider response deserializes directly into it. Absent fields
// stay zero-valued; display code supplies defaults.
type BrandProfile struct {
	Name      string         `json:"projectName"`
	Tagline   string         `json:"tagline"`
	Industry  string         `json:"industry"`
	Concept   string         `json:"concept"`
	Colors    []BrandColor   `json:"colors"`
	Fonts     []BrandFont    `json:"fonts"`
	Aesthetic []BrandKeyword `json:"aesthetic"`
	Values    []BrandValue   `json:"values"`
	Tone      []BrandKeyword `json:"tone"`
	Images    []BrandImage   `json:"images"`
}

type BrandColor struct {
	HexCode string `json:"hex_code"`
}

type BrandFont struct {
	Name  string `json:"name"`
	Usage string `json:"usage"`
}

type BrandKeyword struct {
	Keyword string `json:"keyword"`
}

type BrandValue struct {
	Value string `json:"value"`
}

type BrandImage struct {
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

// CampaignConcept is one AI-proposed campaign angle paired with the
// instruction handed to the visual renderer.
type CampaignConcept struct {
	ID           int          `json:"id"`
	Title        string       `json:"title"`
	Strategy     string       `json:"strategy"`
	VisualPrompt VisualPrompt `json:"visual_prompt"`
}

// VisualPrompt is the canonical flat prompt string. Some model responses
// nest it as an object with named facets (subject, lighting, composition,
// textures); unmarshalling flattens that variant so storage and the
// renderer only ever see one string.
type VisualPrompt string

// Facet order used when flattening a nested prompt object. Facets outside
// this list are appended afterwards in key order.
var promptFacetOrder = []string{"subject", "lighting", "composition", "textures"}

func (v *VisualPrompt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = VisualPrompt(strings.TrimSpace(s))
		return nil
	}

	var facets map[string]string
	if err := json.Unmarshal(data, &facets); err != nil {
		return err
	}

	var parts []string
	seen := make(map[string]bool, len(facets))
	for _, key := range promptFacetOrder {
		if val := strings.TrimSpace(facets[key]); val != "" {
			parts = append(parts, val)
			seen[key] = true
		}
	}
	rest := make([]string, 0, len(facets))
	for key := range facets {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		if val := strings.TrimSpace(facets[key]); val != "" {
			parts = append(parts, val)
		}
	}

	*v = VisualPrompt(strings.Join(parts, ", "))
	return nil
}

func (v VisualPrompt) String() string { return string(v) }

// AspectRatio selects the output shape of a rendered visual.
type AspectRatio string

const (
	AspectPortrait  AspectRatio = "4:5"
	AspectSquare    AspectRatio = "1:1"
	AspectLandscape AspectRatio = "16:9"
)

// RenderedVisual is the terminal value for one artifact slot. A failed
// generation is a normal outcome: Data stays nil and Err carries the
// reason, displayed as an "unavailable" placeholder.
type RenderedVisual struct {
	Data []byte `json:"-"`
	MIME string `json:"mime"`
	Err  string `json:"error,omitempty"`
}

// Available reports whether the slot holds displayable bytes.
func (r *RenderedVisual) Available() bool {
	return r != nil && len(r.Data) > 0 && r.Err == ""
}
