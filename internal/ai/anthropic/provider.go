package anthropic

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/kiranshivaraju/meeteo/internal/config"
	"github.com/kiranshivaraju/meeteo/pkg/models"
	anthropicsdk "github.com/liushuangls/go-anthropic/v2"
)

// Provider implements models.AIProvider using the Anthropic Messages API.
type Provider struct {
	client *anthropicsdk.Client
	model  string
}

func NewProvider(cfg config.AnthropicConfig) *Provider {
	var opts []anthropicsdk.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, anthropicsdk.WithBaseURL(cfg.BaseURL))
	}
	return &Provider{
		client: anthropicsdk.NewClient(cfg.APIKey, opts...),
		model:  cfg.Model,
	}
}

func (p *Provider) Name() string { return "anthropic" }

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	resp, err := p.client.CreateMessages(ctx, anthropicsdk.MessagesRequest{
		Model:     anthropicsdk.Model(p.model),
		MaxTokens: req.MaxTokens,
		Messages: []anthropicsdk.Message{{
			Role:    anthropicsdk.RoleUser,
			Content: buildContent(req),
		}},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}
	return resp.GetFirstContentText(), nil
}

// buildContent places the image block ahead of the prompt, which is the
// ordering Anthropic recommends for vision requests.
func buildContent(req models.CompletionRequest) []anthropicsdk.MessageContent {
	content := make([]anthropicsdk.MessageContent, 0, 2)
	if req.Image != nil {
		content = append(content, anthropicsdk.NewImageMessageContent(
			anthropicsdk.NewMessageContentSource(
				anthropicsdk.MessagesContentSourceTypeBase64,
				normaliseMIME(req.Image.MediaType),
				base64.StdEncoding.EncodeToString(req.Image.Data),
			),
		))
	}
	return append(content, anthropicsdk.NewTextMessageContent(req.Prompt))
}

// normaliseMIME coerces unknown media types to jpeg; the API accepts only
// jpeg, png, gif and webp.
func normaliseMIME(mediaType string) string {
	switch mediaType {
	case "image/png", "image/gif", "image/webp":
		return mediaType
	default:
		return "image/jpeg"
	}
}

var _ models.AIProvider = (*Provider)(nil)
