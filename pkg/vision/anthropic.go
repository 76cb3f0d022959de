package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

const anthropicSystemText = "You are an expert golf scorecard reader. Respond with a single valid JSON object matching the requested structure. No markdown fences, no commentary."

// anthropicClient implements Client using the official anthropic-sdk-go.
type anthropicClient struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

func newAnthropicClient(cfg Config) (*anthropicClient, error) {
	if cfg.AnthropicKey == "" {
		return nil, eris.Wrap(ErrMissingAPIKey, "vision: anthropic")
	}
	model := cfg.AnthropicModel
	if model == "" {
		model = defaultAnthropicModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 8192
	}
	return &anthropicClient{
		client:    sdk.NewClient(option.WithAPIKey(cfg.AnthropicKey)),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

func (c *anthropicClient) ExtractJSON(ctx context.Context, doc Document, prompt string) (json.RawMessage, error) {
	docBlock, err := documentBlock(doc)
	if err != nil {
		return nil, err
	}

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		System:    []sdk.TextBlockParam{{Text: anthropicSystemText}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(docBlock, sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "vision: anthropic create message")
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return json.RawMessage(cleanJSON(sb.String())), nil
}

// documentBlock converts a Document into the appropriate SDK content block:
// a document block for PDFs, an image block for everything else.
func documentBlock(doc Document) (sdk.ContentBlockParamUnion, error) {
	if len(doc.Data) == 0 {
		return sdk.ContentBlockParamUnion{}, eris.New("vision: empty document")
	}
	encoded := base64.StdEncoding.EncodeToString(doc.Data)

	if doc.MIMEType == "application/pdf" {
		return sdk.ContentBlockParamUnion{
			OfDocument: &sdk.DocumentBlockParam{
				Source: sdk.DocumentBlockParamSourceUnion{
					OfBase64: &sdk.Base64PDFSourceParam{Data: encoded},
				},
			},
		}, nil
	}

	return sdk.ContentBlockParamUnion{
		OfImage: &sdk.ImageBlockParam{
			Source: sdk.ImageBlockParamSourceUnion{
				OfBase64: &sdk.Base64ImageSourceParam{
					Data:      encoded,
					MediaType: sdk.Base64ImageSourceMediaType(doc.MIMEType),
				},
			},
		},
	}, nil
}
