package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akshith040/EcoScan1/internal/completion"
)

var testRequest = completion.Request{
	Name:   "instructions",
	Prompt: "How do I recycle glass?",
	Schema: completion.Schema{
		Fields: []completion.Field{{Name: "recyclingInstructions", Type: completion.String}},
	},
}

func chatResponse(content, refusal string) map[string]any {
	msg := map[string]any{"role": "assistant", "content": content}
	if refusal != "" {
		msg["refusal"] = refusal
	}
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{"index": 0, "message": msg, "finish_reason": "stop"}},
	}
}

func newServer(t *testing.T, resp map[string]any, seen *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestOpenAIComplete(t *testing.T) {
	var seen map[string]any
	server := newServer(t, chatResponse(`{"recyclingInstructions":"1. Rinse\n2. Recycle"}`, ""), &seen)
	defer server.Close()

	c := New("sk-test", "gpt-4o-mini", server.URL)
	out, err := c.Complete(context.Background(), testRequest)
	require.NoError(t, err)
	assert.JSONEq(t, `{"recyclingInstructions":"1. Rinse\n2. Recycle"}`, string(out))

	format, ok := seen["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_schema", format["type"])
	js, ok := format["json_schema"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "instructions", js["name"])
	assert.Equal(t, true, js["strict"])
}

func TestOpenAICompleteRefusal(t *testing.T) {
	server := newServer(t, chatResponse("", "I can't help with that."), nil)
	defer server.Close()

	c := New("sk-test", "gpt-4o-mini", server.URL)
	_, err := c.Complete(context.Background(), testRequest)
	assert.ErrorIs(t, err, completion.ErrNoOutput)
}

func TestOpenAICompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	c := New("sk-test", "gpt-4o-mini", server.URL)
	_, err := c.Complete(context.Background(), testRequest)
	assert.Error(t, err)
}

func TestBuildParts(t *testing.T) {
	parts := buildParts(completion.Request{
		Prompt: "classify",
		Image:  &completion.Image{Data: []byte("abc"), MIMEType: "image/png"},
	})
	require.Len(t, parts, 2)
	assert.Equal(t, "classify", parts[0].Text)
	require.NotNil(t, parts[1].ImageURL)
	assert.Equal(t, "data:image/png;base64,YWJj", parts[1].ImageURL.URL)
}

func TestToDefinition(t *testing.T) {
	d := toDefinition(completion.Schema{Fields: []completion.Field{
		{Name: "wasteType", Type: completion.String},
		{Name: "confidence", Type: completion.Number},
	}})
	assert.Equal(t, jsonschema.Object, d.Type)
	assert.Equal(t, []string{"wasteType", "confidence"}, d.Required)
	assert.Equal(t, jsonschema.Number, d.Properties["confidence"].Type)
	assert.Equal(t, false, d.AdditionalProperties)
}
