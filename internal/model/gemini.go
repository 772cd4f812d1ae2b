package model

import "encoding/json"

// GeminiModel describes a model offered to the client.
type GeminiModel struct {
	ID             string `json:"id"`
	DisplayName    string `json:"displayName"`
	SupportsVision bool   `json:"supportsVision"`
	IsRecommended  bool   `json:"isRecommended,omitempty"`
}

// GenerationConfig mirrors the upstream generationConfig object.
type GenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
	TopK            *int     `json:"topK,omitempty"`
}

// ProxyRequest is the body accepted by the generateContent passthrough.
// Contents is forwarded untouched.
type ProxyRequest struct {
	Contents         []json.RawMessage `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}
