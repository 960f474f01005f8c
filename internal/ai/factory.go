package ai

import (
	"context"
	"fmt"

	"github.com/kiranshivaraju/meeteo/internal/ai/anthropic"
	"github.com/kiranshivaraju/meeteo/internal/ai/gemini"
	"github.com/kiranshivaraju/meeteo/internal/ai/ollama"
	"github.com/kiranshivaraju/meeteo/internal/config"
	"github.com/kiranshivaraju/meeteo/pkg/models"
)

// NewProvider constructs the configured language-model provider, guarded by
// the inference timeout. Called once at server startup.
func NewProvider(ctx context.Context, cfg config.AIConfig) (models.AIProvider, error) {
	var p models.AIProvider
	switch cfg.Provider {
	case "anthropic":
		p = anthropic.NewProvider(cfg.Anthropic)
	case "gemini":
		gp, err := gemini.NewProvider(ctx, cfg.Gemini)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		p = gp
	case "ollama":
		p = ollama.NewProvider(cfg.Ollama)
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of anthropic, gemini, ollama", cfg.Provider)
	}
	return Guard(p, cfg.InferenceTimeout), nil
}
