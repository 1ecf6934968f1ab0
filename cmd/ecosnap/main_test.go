package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd, ctx := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := execute(cmd, ctx)
	return out.String(), err
}

func TestGuideCommandListsGuides(t *testing.T) {
	out, err := runCLI(t, "guide")
	require.NoError(t, err)
	assert.Contains(t, out, "Cardboard")
	assert.Contains(t, out, "Plastic Bottle")
}

func TestGuideCommandPrintsSteps(t *testing.T) {
	out, err := runCLI(t, "guide", "plastic", "bottle")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Plastic Bottle\n"), out)
	assert.Contains(t, out, "  1. ")
	assert.NotContains(t, out, "no specific guide")

	quoted, err := runCLI(t, "guide", "plastic bottle")
	require.NoError(t, err)
	assert.Equal(t, out, quoted)

	out, err = runCLI(t, "guide", "Styrofoam")
	require.NoError(t, err)
	assert.Contains(t, out, "Styrofoam\n(no specific guide; general steps)")
}

// fakeOllama answers /api/generate: requests with an image get the
// classification, the rest get instructions.
type fakeOllama struct {
	mu      sync.Mutex
	prompts []string
}

func (f *fakeOllama) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string   `json:"prompt"`
		Images []string `json:"images"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.prompts = append(f.prompts, req.Prompt)
	f.mu.Unlock()

	answer := `{"recyclingInstructions":"1. Rinse the bottle\n2. Remove the cork\n3. Place it in the glass bin"}`
	if len(req.Images) > 0 {
		answer = `{"wasteType":"Glass Bottle","confidence":0.9,"details":"Green wine bottle"}`
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"response": answer, "done": true})
}

func setupClassifyEnv(t *testing.T) (*fakeOllama, string) {
	t.Helper()
	fake := &fakeOllama{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	t.Setenv("COMPLETION_BACKEND", "ollama")
	t.Setenv("OLLAMA_HOST", srv.URL)
	t.Setenv("COMPLETION_ATTEMPTS", "1")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FILE", "")
	t.Setenv("PROMPTS_FILE", "")

	img := make([]byte, 512)
	copy(img, []byte{0xFF, 0xD8, 0xFF, 0xE0})
	path := filepath.Join(t.TempDir(), "bottle.jpg")
	require.NoError(t, os.WriteFile(path, img, 0o600))
	return fake, path
}

func TestClassifyCommand(t *testing.T) {
	fake, path := setupClassifyEnv(t)

	out, err := runCLI(t, "classify", path, "--describe", "with a cork")
	require.NoError(t, err)

	assert.Contains(t, out, "Waste type: Glass Bottle")
	assert.Contains(t, out, "Confidence: 95.00%")
	assert.Contains(t, out, "  1. Rinse the bottle\n  2. Remove the cork\n  3. Place it in the glass bin\n")

	require.Len(t, fake.prompts, 2)
	assert.Contains(t, fake.prompts[0], "image/jpeg")
	assert.Contains(t, fake.prompts[1], "Details: Green wine bottle. User Description: with a cork")
}

func TestClassifyCommandJSON(t *testing.T) {
	_, path := setupClassifyEnv(t)

	out, err := runCLI(t, "classify", path, "--json")
	require.NoError(t, err)

	var got classifyOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Glass Bottle", got.WasteType)
	assert.InDelta(t, 0.95, got.Confidence, 1e-9)
	assert.Equal(t, []string{"Rinse the bottle", "Remove the cork", "Place it in the glass bin"}, got.Steps)
	assert.Empty(t, got.UserDescription)
}

func TestClassifyCommandRejectsNonImage(t *testing.T) {
	fake, _ := setupClassifyEnv(t)
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("just some text"), 0o600))

	_, err := runCLI(t, "classify", path)
	assert.ErrorIs(t, err, errNotImage)
	assert.Empty(t, fake.prompts)
}

func TestClassifyCommandPromptOverride(t *testing.T) {
	fake, path := setupClassifyEnv(t)
	prompts := filepath.Join(t.TempDir(), "prompts.toml")
	require.NoError(t, os.WriteFile(prompts, []byte(`[prompts]
classify = "What is in this {{.ContentType}} photo?"
`), 0o600))

	_, err := runCLI(t, "--prompts", prompts, "classify", path)
	require.NoError(t, err)
	require.NotEmpty(t, fake.prompts)
	assert.Equal(t, "What is in this image/jpeg photo?", fake.prompts[0])
}

func TestMigrateCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ecosnap.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", dbPath)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FILE", "")

	_, err := runCLI(t, "migrate")
	require.NoError(t, err)

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestFailedCommandReleasesLogger(t *testing.T) {
	setupClassifyEnv(t)

	cmd, ctx := newRootCommand()
	released := 0
	ctx.openLogger = func(level, logFile string) (*slog.Logger, func(), error) {
		return slog.New(slog.DiscardHandler), func() { released++ }, nil
	}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"classify", filepath.Join(t.TempDir(), "missing.jpg")})

	err := execute(cmd, ctx)
	require.Error(t, err)
	assert.Equal(t, 1, released)
}
