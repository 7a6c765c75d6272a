// Package adapters maps a connection config onto the provider adapter that
// speaks its wire format.
package adapters

import (
	"github.com/leofalp/chatbridge/providers/ai"
	"github.com/leofalp/chatbridge/providers/ai/anthropic"
	"github.com/leofalp/chatbridge/providers/ai/lmstudio"
	"github.com/leofalp/chatbridge/providers/ai/ollama"
	"github.com/leofalp/chatbridge/providers/ai/openai"
)

// New validates cfg and returns a fresh adapter for its provider. A provider
// switch always goes through New; adapters are never reconfigured in place.
func New(cfg ai.ConnectionConfig) (ai.Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case ai.ProviderLMStudio:
		return lmstudio.New(cfg), nil
	case ai.ProviderClaude:
		return anthropic.New(cfg), nil
	case ai.ProviderOpenAI:
		return openai.New(cfg), nil
	default:
		return ollama.New(cfg), nil
	}
}
