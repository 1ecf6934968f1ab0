package claude

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/Akshith040/EcoScan1/internal/completion"
)

// maxTokens is far above what a single tool call with three short fields
// needs; instruction lists are the longest answers at a few hundred tokens.
const maxTokens = 1024

// Client forces a single tool call whose input schema is the request schema,
// and returns the tool input as the answer.
type Client struct {
	client *anthropic.Client
	model  string
}

func New(apiKey, model, baseURL string) *Client {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &Client{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

func (c *Client) Complete(ctx context.Context, req completion.Request) (json.RawMessage, error) {
	toolName := req.Name
	if toolName == "" {
		toolName = "answer"
	}

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{{
			Role:    anthropic.RoleUser,
			Content: buildContent(req),
		}},
		Tools: []anthropic.ToolDefinition{{
			Name:        toolName,
			Description: req.Schema.Description,
			InputSchema: req.Schema.JSONSchema(),
		}},
		ToolChoice: &anthropic.ToolChoice{Type: "tool", Name: toolName},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call claude: %w", err)
	}

	for _, blk := range resp.Content {
		if blk.Type == anthropic.MessagesContentTypeToolUse && blk.MessageContentToolUse != nil {
			if len(blk.MessageContentToolUse.Input) == 0 {
				break
			}
			return blk.MessageContentToolUse.Input, nil
		}
	}
	return nil, fmt.Errorf("claude %s: %w", req.Name, completion.ErrNoOutput)
}

// buildContent puts the image before the prompt, which is the order the
// Messages API documentation recommends for vision requests.
func buildContent(req completion.Request) []anthropic.MessageContent {
	var content []anthropic.MessageContent
	if req.Image != nil {
		content = append(content, anthropic.NewImageMessageContent(anthropic.MessageContentSource{
			Type:      anthropic.MessagesContentSourceTypeBase64,
			MediaType: normaliseMIME(req.Image.MIMEType),
			Data:      base64.StdEncoding.EncodeToString(req.Image.Data),
		}))
	}
	return append(content, anthropic.NewTextMessageContent(req.Prompt))
}

// normaliseMIME maps browser MIME types to the values the Anthropic API accepts.
// Only jpeg, png, gif, and webp are supported; anything else is sent as jpeg.
func normaliseMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}
