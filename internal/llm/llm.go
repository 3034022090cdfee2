// Package llm wraps the hosted completion APIs behind a single opaque
// capability so the pipeline stages never talk to a provider SDK directly.
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// Request is one blocking prompt/response round trip. Schema, when set, asks
// the provider for JSON conforming to it.
type Request struct {
	System string
	Prompt string
	Schema map[string]any
}

// Completer is the single capability the pipeline depends on.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// RateLimitError signals an HTTP 429 from the provider; it is propagated to the
// caller unchanged.
type RateLimitError struct {
	Provider Provider
	Err      error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited: %v", e.Provider, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// Config selects and authenticates a provider.
type Config struct {
	Provider Provider
	APIKey   string
	Model    string
	BaseURL  string // OpenAI-compatible endpoints only
}

// New builds a Completer for the configured provider.
func New(cfg Config) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}
	switch cfg.Provider {
	case ProviderAnthropic, "":
		return newAnthropic(cfg), nil
	case ProviderOpenAI:
		return newOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q (supported: anthropic, openai)", cfg.Provider)
	}
}

// SchemaFor reflects a JSON schema from a response struct.
func SchemaFor(v any) map[string]any {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	s := r.Reflect(v)
	b, _ := json.Marshal(s)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}
