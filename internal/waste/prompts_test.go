package waste

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPromptsParse(t *testing.T) {
	tmpl, err := DefaultPrompts.Parse()
	require.NoError(t, err)

	out, err := tmpl.Instructions.Render(InstructionInput{WasteType: "Glass Bottle", Details: "Brown glass"})
	require.NoError(t, err)
	assert.Contains(t, out, "Waste Type: Glass Bottle\nDetails: Brown glass")
}

func TestPromptsWith(t *testing.T) {
	p := DefaultPrompts.With("", "Recycle {{.WasteType}}")
	assert.Equal(t, DefaultPrompts.Classify, p.Classify)
	assert.Equal(t, "Recycle {{.WasteType}}", p.Instructions)
}

func TestPromptsParseRejectsUnknownFields(t *testing.T) {
	_, err := DefaultPrompts.With("Classify {{.Photo}}", "").Parse()
	assert.Error(t, err)

	_, err = DefaultPrompts.With("", "Recycle {{.Material}}").Parse()
	assert.Error(t, err)

	_, err = DefaultPrompts.With("{{if}}", "").Parse()
	assert.Error(t, err)
}
