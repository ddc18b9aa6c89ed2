package assistant

import (
	"context"

	"google.golang.org/genai"

	"github.com/karen-assistant/karen/pkg/core"
	"github.com/karen-assistant/karen/pkg/core/types"
)

// GeminiGenerator backs the assistant with the Gemini API. The client is
// shared with the live session layer, so it is injected rather than owned.
type GeminiGenerator struct {
	client   *genai.Client
	model    string
	ttsModel string
	voice    string
}

func NewGeminiGenerator(client *genai.Client, model, ttsModel, voice string) *GeminiGenerator {
	return &GeminiGenerator{
		client:   client,
		model:    model,
		ttsModel: ttsModel,
		voice:    voice,
	}
}

func (g *GeminiGenerator) GenerateText(ctx context.Context, system string, history []types.Message, prompt string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		role := genai.RoleUser
		if m.Role == types.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, genai.Role(role)))
	}
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
	})
	if err != nil {
		return "", core.NewUpstreamError("gemini generate", err)
	}
	return resp.Text(), nil
}

// GenerateSpeech returns 24 kHz mono 16-bit PCM for the given text.
func (g *GeminiGenerator) GenerateSpeech(ctx context.Context, text string) ([]byte, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.ttsModel, genai.Text(text), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: g.voice},
			},
		},
	})
	if err != nil {
		return nil, core.NewUpstreamError("gemini synthesize", err)
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}
	return nil, core.NewAPIError("gemini synthesize returned no audio")
}
