// Package outfit asks a language model for six weather-appropriate clothing
// recommendations.
package outfit

import (
	"context"
	"fmt"
	"strings"

	"github.com/kiranshivaraju/meeteo/internal/ai"
	"github.com/kiranshivaraju/meeteo/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

const maxReplyTokens = 1024

const suggestionPrompt = `You are a practical stylist. Current weather: %.0f°F (feels like %.0f°F), %s, humidity %.0f%%.

Recommend one clothing item for each category below that suits these conditions. Keep each recommendation to a short product-style description (for example "waterproof leather ankle boots").

Respond ONLY with a JSON object in exactly this format:
{"footwear": string, "top": string, "bottom": string, "accessories": string, "wildcard1": string, "wildcard2": string}

wildcard1 is a weather-specific bonus item; wildcard2 is a style boost.`

// replySchema requires all six slots as non-blank strings. Extra keys are ignored.
var replySchema = gojsonschema.NewGoLoader(map[string]any{
	"type":     "object",
	"required": slotNames(),
	"properties": func() map[string]any {
		props := make(map[string]any, len(models.Slots))
		for _, s := range models.Slots {
			props[string(s)] = map[string]any{"type": "string", "pattern": `\S`}
		}
		return props
	}(),
})

func slotNames() []any {
	names := make([]any, len(models.Slots))
	for i, s := range models.Slots {
		names[i] = string(s)
	}
	return names
}

// Generator asks the language model for one garment per clothing slot.
type Generator struct {
	provider models.AIProvider
}

func NewGenerator(provider models.AIProvider) *Generator {
	return &Generator{provider: provider}
}

// Suggest returns a description for every slot. A reply missing any slot,
// or carrying a non-string or blank value, fails with ai.ErrInvalidResponse.
func (g *Generator) Suggest(ctx context.Context, w models.WeatherSnapshot) (models.ClothingDescription, error) {
	reply, err := g.provider.Complete(ctx, models.CompletionRequest{
		Prompt:    BuildPrompt(w),
		MaxTokens: maxReplyTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("suggest clothing: %w", err)
	}
	return ParseReply(reply)
}

// BuildPrompt renders the suggestion prompt for w.
func BuildPrompt(w models.WeatherSnapshot) string {
	return fmt.Sprintf(suggestionPrompt, w.Temp, w.FeelsLike, w.Description, w.Humidity)
}

// ParseReply validates a model reply and converts it to a ClothingDescription.
func ParseReply(reply string) (models.ClothingDescription, error) {
	var doc map[string]any
	if err := ai.DecodeJSON(reply, &doc); err != nil {
		return nil, fmt.Errorf("suggest clothing: %w", err)
	}

	result, err := gojsonschema.Validate(replySchema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("suggest clothing: %w: %v", ai.ErrInvalidResponse, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, fmt.Errorf("suggest clothing: %w: %s", ai.ErrInvalidResponse, strings.Join(errs, "; "))
	}

	out := make(models.ClothingDescription, len(models.Slots))
	for _, s := range models.Slots {
		out[s] = strings.TrimSpace(doc[string(s)].(string))
	}
	return out, nil
}
