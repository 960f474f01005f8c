package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
)

func TestResponseText_ConcatenatesTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text(`{"footwear":`),
				genai.Blob{MIMEType: "image/png", Data: []byte{1}},
				genai.Text(`"boots"}`),
			}},
		}},
	}
	assert.Equal(t, `{"footwear":"boots"}`, responseText(resp))
}

func TestResponseText_Empty(t *testing.T) {
	assert.Empty(t, responseText(nil))
	assert.Empty(t, responseText(&genai.GenerateContentResponse{}))
	assert.Empty(t, responseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}))
}

func TestImageFormat(t *testing.T) {
	assert.Equal(t, "jpeg", imageFormat("image/jpeg"))
	assert.Equal(t, "png", imageFormat("image/png"))
	assert.Equal(t, "jpeg", imageFormat(""))
	assert.Equal(t, "jpeg", imageFormat("image/"))
}
