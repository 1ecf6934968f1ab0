package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/Akshith040/EcoScan1/internal/completion"
)

// Client requests a strict JSON-schema response format. baseURL may point at
// any OpenAI-compatible endpoint.
type Client struct {
	client *openai.Client
	model  string
}

func New(apiKey, model, baseURL string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (c *Client) Complete(ctx context.Context, req completion.Request) (json.RawMessage, error) {
	name := req.Name
	if name == "" {
		name = "answer"
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:         openai.ChatMessageRoleUser,
			MultiContent: buildParts(req),
		}},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        name,
				Description: req.Schema.Description,
				Schema:      toDefinition(req.Schema),
				Strict:      true,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call openai: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai %s: %w", req.Name, completion.ErrNoOutput)
	}
	msg := resp.Choices[0].Message
	if msg.Refusal != "" || strings.TrimSpace(msg.Content) == "" {
		return nil, fmt.Errorf("openai %s: %w", req.Name, completion.ErrNoOutput)
	}
	return json.RawMessage(msg.Content), nil
}

func buildParts(req completion.Request) []openai.ChatMessagePart {
	parts := []openai.ChatMessagePart{{
		Type: openai.ChatMessagePartTypeText,
		Text: req.Prompt,
	}}
	if req.Image != nil {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    dataURL(req.Image),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}
	return parts
}

func dataURL(img *completion.Image) string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

func toDefinition(s completion.Schema) *jsonschema.Definition {
	props := make(map[string]jsonschema.Definition, len(s.Fields))
	for _, f := range s.Fields {
		t := jsonschema.String
		if f.Type == completion.Number {
			t = jsonschema.Number
		}
		props[f.Name] = jsonschema.Definition{Type: t, Description: f.Description}
	}
	return &jsonschema.Definition{
		Type:                 jsonschema.Object,
		Description:          s.Description,
		Properties:           props,
		Required:             s.Required(),
		AdditionalProperties: false,
	}
}
