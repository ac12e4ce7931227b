// Package providers holds configuration shared by concrete Provider
// implementations and the HTTP error mapping they all use.
package providers

import "time"

// BaseProviderConfig carries the fields every provider needs. Embed it
// so each provider config gets APIKey, BaseURL, Model and Timeout
// without redefining them.
type BaseProviderConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// GeminiConfig configures the Google Gemini provider.
type GeminiConfig struct {
	BaseProviderConfig `yaml:",inline"`
}
