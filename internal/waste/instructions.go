package waste

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Akshith040/EcoScan1/internal/completion"
)

const instructionsPromptName = "provideRecyclingInstructions"

var instructionsSchema = completion.Schema{
	Description: "Recycling instructions for a waste item.",
	Fields: []completion.Field{
		{Name: "recyclingInstructions", Type: completion.String, Description: "Instructions on how to recycle the waste material."},
	},
}

// userDescriptionMarker joins the classifier's details and the user's own
// description of the item.
const userDescriptionMarker = ". User Description: "

type Instructions struct {
	RecyclingInstructions string `json:"recyclingInstructions"`
}

type InstructionGenerator struct {
	client completion.Client
	prompt *completion.Template
	logger *slog.Logger
}

func NewInstructionGenerator(client completion.Client, prompt *completion.Template, logger *slog.Logger) *InstructionGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &InstructionGenerator{client: client, prompt: prompt, logger: logger}
}

// Generate asks for recycling instructions for wasteType. The returned text
// is exactly what the service produced.
func (g *InstructionGenerator) Generate(ctx context.Context, wasteType, details string) (*Instructions, error) {
	prompt, err := g.prompt.Render(InstructionInput{WasteType: wasteType, Details: details})
	if err != nil {
		return nil, &InstructionError{Err: err}
	}

	out, err := completion.Generate[Instructions](ctx, g.client, completion.Request{
		Name:   instructionsPromptName,
		Prompt: prompt,
		Schema: instructionsSchema,
	})
	if err != nil {
		g.logger.Error("instruction generation failed", "waste_type", wasteType, "error", err)
		return nil, &InstructionError{Err: err}
	}
	return &out, nil
}

// ComposeDetails appends the user's description to the classifier's details.
func ComposeDetails(details, userDescription string) string {
	if strings.TrimSpace(userDescription) == "" {
		return details
	}
	return details + userDescriptionMarker + userDescription
}
