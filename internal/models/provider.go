package models

import "strings"

// ModelCapabilities describes what a model can be asked to do.
type ModelCapabilities struct {
	Chat            bool `json:"chat"`
	ImageGeneration bool `json:"imageGeneration"`
}

// Model represents a single language model offered by a provider.
// Provider is a back-reference by id, never an owning pointer.
type Model struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Provider           string            `json:"provider"`
	Capabilities       ModelCapabilities `json:"capabilities"`
	MaxTokens          *int              `json:"maxTokens,omitempty"`
	Temperature        *float64          `json:"temperature,omitempty"`
	ContextLength      *int              `json:"contextLength,omitempty"`
	DefaultTemperature *float64          `json:"defaultTemperature,omitempty"`
}

// Provider is a vendor entry from the preset catalogue.
type Provider struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	DefaultAPIBase  string  `json:"defaultApiBase,omitempty"`
	SupportedModels []Model `json:"supportedModels"`
	DefaultModel    string  `json:"defaultModel,omitempty"`
}

// ProviderConfig is a provider the user has configured with credentials.
type ProviderConfig struct {
	Provider
	APIKey  string `json:"apiKey"`
	APIBase string `json:"apiBase,omitempty"`
}

// ResolvedAPIBase returns the user override when set, otherwise the preset
// default. An empty result means the vendor client default.
func (p ProviderConfig) ResolvedAPIBase() string {
	if base := strings.TrimSpace(p.APIBase); base != "" {
		return base
	}
	return strings.TrimSpace(p.DefaultAPIBase)
}

// FindModel looks a model up by id.
func (p ProviderConfig) FindModel(modelID string) (*Model, bool) {
	for i := range p.SupportedModels {
		if p.SupportedModels[i].ID == modelID {
			return &p.SupportedModels[i], true
		}
	}
	return nil, false
}

// FirstModelID returns the id of the first supported model, or "".
func (p ProviderConfig) FirstModelID() string {
	if len(p.SupportedModels) == 0 {
		return ""
	}
	return p.SupportedModels[0].ID
}

// Clone returns a copy that does not share the model slice.
func (p ProviderConfig) Clone() ProviderConfig {
	out := p
	out.SupportedModels = make([]Model, len(p.SupportedModels))
	copy(out.SupportedModels, p.SupportedModels)
	return out
}

// ImageGenerationRequest asks a provider for N images from a prompt.
type ImageGenerationRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
	N      int    `json:"n"`
}

// GeneratedImage is one image produced by a provider.
type GeneratedImage struct {
	URL string `json:"url"`
}
