package claude

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akshith040/EcoScan1/internal/completion"
)

var testRequest = completion.Request{
	Name:   "classification",
	Prompt: "Classify this item.",
	Image:  &completion.Image{Data: []byte{0xFF, 0xD8}, MIMEType: "image/jpeg"},
	Schema: completion.Schema{
		Description: "waste classification",
		Fields: []completion.Field{
			{Name: "wasteType", Type: completion.String},
			{Name: "confidence", Type: completion.Number},
		},
	},
}

func writeMessage(t *testing.T, w http.ResponseWriter, content []map[string]any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-opus-4-6",
		"content":     content,
		"stop_reason": "tool_use",
		"usage":       map[string]int{"input_tokens": 10, "output_tokens": 5},
	})
	require.NoError(t, err)
}

func TestClaudeComplete(t *testing.T) {
	var got struct {
		Model      string `json:"model"`
		ToolChoice struct {
			Type string `json:"type"`
			Name string `json:"name"`
		} `json:"tool_choice"`
		Tools []struct {
			Name        string         `json:"name"`
			InputSchema map[string]any `json:"input_schema"`
		} `json:"tools"`
		Messages []struct {
			Content []struct {
				Type string `json:"type"`
			} `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeMessage(t, w, []map[string]any{{
			"type":  "tool_use",
			"id":    "toolu_1",
			"name":  "classification",
			"input": map[string]any{"wasteType": "Cardboard", "confidence": 0.9},
		}})
	}))
	defer server.Close()

	c := New("sk-test", "claude-opus-4-6", server.URL)
	out, err := c.Complete(context.Background(), testRequest)
	require.NoError(t, err)
	assert.JSONEq(t, `{"wasteType":"Cardboard","confidence":0.9}`, string(out))

	assert.Equal(t, "claude-opus-4-6", got.Model)
	assert.Equal(t, "tool", got.ToolChoice.Type)
	assert.Equal(t, "classification", got.ToolChoice.Name)
	require.Len(t, got.Tools, 1)
	assert.Equal(t, "object", got.Tools[0].InputSchema["type"])
	require.Len(t, got.Messages, 1)
	require.Len(t, got.Messages[0].Content, 2)
	assert.Equal(t, "image", got.Messages[0].Content[0].Type)
	assert.Equal(t, "text", got.Messages[0].Content[1].Type)
}

func TestClaudeCompleteWithoutToolUse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(t, w, []map[string]any{{"type": "text", "text": "I cannot tell."}})
	}))
	defer server.Close()

	c := New("sk-test", "claude-opus-4-6", server.URL)
	_, err := c.Complete(context.Background(), testRequest)
	assert.ErrorIs(t, err, completion.ErrNoOutput)
}

func TestClaudeCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := New("sk-test", "claude-opus-4-6", server.URL)
	_, err := c.Complete(context.Background(), testRequest)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, completion.ErrNoOutput)
}

func TestNormaliseMIME(t *testing.T) {
	assert.Equal(t, "image/png", normaliseMIME("image/png"))
	assert.Equal(t, "image/webp", normaliseMIME("image/webp"))
	assert.Equal(t, "image/jpeg", normaliseMIME("image/heic"))
	assert.Equal(t, "image/jpeg", normaliseMIME(""))
}
