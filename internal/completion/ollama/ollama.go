package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Akshith040/EcoScan1/internal/completion"
)

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Images  []string       `json:"images,omitempty"`
	Format  map[string]any `json:"format"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

// Client talks to a local Ollama server's /api/generate endpoint, passing the
// request schema as the structured output format.
type Client struct {
	host   string
	model  string
	client *http.Client
}

func New(host, model string) *Client {
	return &Client{
		host:   strings.TrimRight(host, "/"),
		model:  model,
		client: &http.Client{},
	}
}

func (c *Client) Complete(ctx context.Context, req completion.Request) (json.RawMessage, error) {
	body := generateRequest{
		Model:   c.model,
		Prompt:  req.Prompt,
		Format:  req.Schema.JSONSchema(),
		Stream:  false,
		Options: map[string]any{"temperature": 0},
	}
	if req.Image != nil {
		body.Images = []string{base64.StdEncoding.EncodeToString(req.Image.Data)}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call ollama: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close ollama response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, errBody)
	}

	var respBody struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if strings.TrimSpace(respBody.Response) == "" {
		return nil, fmt.Errorf("ollama %s: %w", req.Name, completion.ErrNoOutput)
	}
	return json.RawMessage(respBody.Response), nil
}
