// Package location turns a free-text place description into coordinates
// using a language model.
package location

import (
	"context"
	"fmt"
	"strings"

	"github.com/kiranshivaraju/meeteo/internal/ai"
	"github.com/kiranshivaraju/meeteo/pkg/models"
)

const maxReplyTokens = 256

const placePrompt = `Identify the place described below. Respond ONLY with a JSON object in the format {"place_name": string, "lat": number, "lon": number}. If multiple valid interpretations exist, choose the most likely one.

Example input: "often world champs and home of the school that's better than yale"
Example output: {"place_name": "Cambridge, MA", "lat": 42.3736, "lon": -71.1097}

Input: %s`

const cityPrompt = `Extract the intended US city and state from this description. Respond ONLY with a JSON object in the format {"city": string, "state": string}. If multiple valid interpretations exist, choose the most likely one.

Example input: "often world champs and home of the school that's better than yale"
Example output: {"city": "Cambridge", "state": "MA"}

Input: %s`

// Resolver asks the language model where a description refers to.
// There is no retry and no fallback: a bad reply fails the request.
type Resolver struct {
	provider models.AIProvider
}

func NewResolver(provider models.AIProvider) *Resolver {
	return &Resolver{provider: provider}
}

// placeReply uses pointers so a missing coordinate is distinguishable from 0.
type placeReply struct {
	PlaceName string   `json:"place_name"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
}

// Resolve returns the most likely place for message. Replies that are not a
// JSON object with place_name, lat and lon fail with ai.ErrInvalidResponse.
func (r *Resolver) Resolve(ctx context.Context, message string) (models.LocationGuess, error) {
	reply, err := r.provider.Complete(ctx, models.CompletionRequest{
		Prompt:    fmt.Sprintf(placePrompt, message),
		MaxTokens: maxReplyTokens,
	})
	if err != nil {
		return models.LocationGuess{}, fmt.Errorf("resolve location: %w", err)
	}

	var parsed placeReply
	if err := ai.DecodeJSON(reply, &parsed); err != nil {
		return models.LocationGuess{}, fmt.Errorf("resolve location: %w", err)
	}
	if strings.TrimSpace(parsed.PlaceName) == "" || parsed.Lat == nil || parsed.Lon == nil {
		return models.LocationGuess{}, fmt.Errorf("resolve location: %w: reply missing place_name, lat or lon", ai.ErrInvalidResponse)
	}

	return models.LocationGuess{
		PlaceName: parsed.PlaceName,
		Lat:       *parsed.Lat,
		Lon:       *parsed.Lon,
	}, nil
}

// ResolveCity returns the most likely US city and state for message.
func (r *Resolver) ResolveCity(ctx context.Context, message string) (models.CityGuess, error) {
	reply, err := r.provider.Complete(ctx, models.CompletionRequest{
		Prompt:    fmt.Sprintf(cityPrompt, message),
		MaxTokens: maxReplyTokens,
	})
	if err != nil {
		return models.CityGuess{}, fmt.Errorf("resolve city: %w", err)
	}

	var parsed models.CityGuess
	if err := ai.DecodeJSON(reply, &parsed); err != nil {
		return models.CityGuess{}, fmt.Errorf("resolve city: %w", err)
	}
	if parsed.City == "" || parsed.State == "" {
		return models.CityGuess{}, fmt.Errorf("resolve city: %w: reply missing city or state", ai.ErrInvalidResponse)
	}
	return parsed, nil
}
