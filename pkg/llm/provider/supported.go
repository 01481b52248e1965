package provider

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm/provider/anthropic"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm/provider/echo"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm/provider/gemini"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm/provider/openai"
)

// Supported provider type constants
const (
	Echo      = "echo"
	OpenAI    = "openai"
	Anthropic = "anthropic"
	Gemini    = "gemini"
)

// SupportedProviders returns the list of all supported provider type names.
func SupportedProviders() []string {
	return []string{Echo, OpenAI, Anthropic, Gemini}
}

// Options configures a provider created with New.
type Options struct {
	Type    string
	BaseURL string
	APIKey  string

	// HTTPClient overrides the SDK's default client. Optional.
	HTTPClient *http.Client
}

// New creates a Provider for the given options.
// Returns an error if the provider type is not recognized.
func New(ctx context.Context, opts Options) (Provider, error) {
	switch opts.Type {
	case Echo:
		return echo.New(), nil
	case OpenAI:
		return openai.New(openai.Options{
			BaseURL:    opts.BaseURL,
			APIKey:     opts.APIKey,
			HTTPClient: opts.HTTPClient,
		}), nil
	case Anthropic:
		return anthropic.New(anthropic.Options{
			BaseURL:    opts.BaseURL,
			APIKey:     opts.APIKey,
			HTTPClient: opts.HTTPClient,
		}), nil
	case Gemini:
		return gemini.New(ctx, gemini.Options{
			BaseURL:    opts.BaseURL,
			APIKey:     opts.APIKey,
			HTTPClient: opts.HTTPClient,
		})
	default:
		return nil, fmt.Errorf("unknown provider type: %q (supported: %v)", opts.Type, SupportedProviders())
	}
}
