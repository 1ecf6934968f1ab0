package ollama

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
	Image:  &completion.Image{Data: []byte{0xFF, 0xD8, 0xFF, 0xE0}, MIMEType: "image/jpeg"},
	Schema: completion.Schema{Fields: []completion.Field{
		{Name: "wasteType", Type: completion.String},
		{Name: "confidence", Type: completion.Number},
	}},
}

func TestOllamaComplete(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":    got.Model,
			"response": `{"wasteType":"Glass Bottle","confidence":0.8}`,
			"done":     true,
		})
	}))
	defer server.Close()

	c := New(server.URL+"/", "llava")
	out, err := c.Complete(context.Background(), testRequest)
	require.NoError(t, err)
	assert.JSONEq(t, `{"wasteType":"Glass Bottle","confidence":0.8}`, string(out))

	assert.Equal(t, "llava", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, []string{"/9j/4A=="}, got.Images)
	assert.Equal(t, "object", got.Format["type"])
}

func TestOllamaCompleteEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":"  ","done":true}`))
	}))
	defer server.Close()

	_, err := New(server.URL, "llava").Complete(context.Background(), testRequest)
	assert.ErrorIs(t, err, completion.ErrNoOutput)
}

func TestOllamaCompleteNetworkError(t *testing.T) {
	_, err := New("http://localhost:99999", "llava").Complete(context.Background(), testRequest)
	assert.Error(t, err)
}

func TestOllamaCompleteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := New(server.URL, "llava").Complete(context.Background(), testRequest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
