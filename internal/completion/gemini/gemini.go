package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Akshith040/EcoScan1/internal/completion"
)

// Client calls Gemini with a JSON response schema so the answer is always a
// bare JSON object.
type Client struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: api key is empty")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	c, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Client{client: c, model: strings.TrimSpace(model)}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Complete(ctx context.Context, req completion.Request) (json.RawMessage, error) {
	m := c.client.GenerativeModel(c.model)
	m.SetTemperature(0)
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = toSchema(req.Schema)

	resp, err := m.GenerateContent(ctx, parts(req)...)
	if err != nil {
		return nil, fmt.Errorf("gemini %s: %w", req.Name, err)
	}

	txt := firstText(resp)
	if strings.TrimSpace(txt) == "" {
		return nil, fmt.Errorf("gemini %s: %w", req.Name, completion.ErrNoOutput)
	}
	return json.RawMessage(txt), nil
}

func parts(req completion.Request) []genai.Part {
	ps := []genai.Part{genai.Text(req.Prompt)}
	if req.Image != nil {
		ps = append(ps, genai.Blob{MIMEType: req.Image.MIMEType, Data: req.Image.Data})
	}
	return ps
}

func toSchema(s completion.Schema) *genai.Schema {
	props := make(map[string]*genai.Schema, len(s.Fields))
	for _, f := range s.Fields {
		t := genai.TypeString
		if f.Type == completion.Number {
			t = genai.TypeNumber
		}
		props[f.Name] = &genai.Schema{Type: t, Description: f.Description}
	}
	return &genai.Schema{
		Type:        genai.TypeObject,
		Description: s.Description,
		Properties:  props,
		Required:    s.Required(),
	}
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
