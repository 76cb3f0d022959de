package vision

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-3-pro-preview"

// geminiClient implements Client using the Google GenAI SDK.
type geminiClient struct {
	apiKey string
	model  string
}

func newGeminiClient(cfg Config) (*geminiClient, error) {
	if cfg.GeminiKey == "" {
		return nil, eris.Wrap(ErrMissingAPIKey, "vision: gemini")
	}
	model := cfg.GeminiModel
	if model == "" {
		model = defaultGeminiModel
	}
	return &geminiClient{apiKey: cfg.GeminiKey, model: model}, nil
}

func (c *geminiClient) ExtractJSON(ctx context.Context, doc Document, prompt string) (json.RawMessage, error) {
	if len(doc.Data) == 0 {
		return nil, eris.New("vision: empty document")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      c.apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, eris.Wrap(err, "vision: create gemini client")
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{
					InlineData: &genai.Blob{
						MIMEType: doc.MIMEType,
						Data:     doc.Data,
					},
				},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, eris.Wrap(err, "vision: gemini generate content")
	}

	text := resp.Text()
	if text == "" {
		return nil, eris.New("vision: empty response from gemini")
	}
	return json.RawMessage(cleanJSON(text)), nil
}
