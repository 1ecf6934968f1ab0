package waste

import (
	"fmt"

	"github.com/Akshith040/EcoScan1/internal/completion"
)

// Prompts holds the template text for both pipeline stages. The classify
// prompt sees ClassifyInput and the instructions prompt sees InstructionInput.
type Prompts struct {
	Classify     string
	Instructions string
}

// DefaultPrompts are used unless overridden by a prompts file.
var DefaultPrompts = Prompts{
	Classify: `You are an AI assistant specializing in waste classification.
Analyze the attached image ({{.ContentType}}) and determine the type of waste material. Provide a basic classification that is easily understandable. Avoid overly specific details.
Return the waste type, your confidence level (0-1), and detailed characteristics of the waste material derived from image analysis.`,

	Instructions: `You are an expert in recycling and waste management.
Provide detailed recycling instructions for the following waste type, taking into account the specific details provided.
Include information such as appropriate recycling bins (color), preparation steps, and any other relevant details for proper disposal.
Be specific and precise, considering the details provided.

Waste Type: {{.WasteType}}
Details: {{.Details}}
`,
}

type ClassifyInput struct {
	ContentType string
}

type InstructionInput struct {
	WasteType string
	Details   string
}

// With returns a copy of p with every non-empty argument replacing the
// corresponding prompt.
func (p Prompts) With(classify, instructions string) Prompts {
	if classify != "" {
		p.Classify = classify
	}
	if instructions != "" {
		p.Instructions = instructions
	}
	return p
}

// Templates are the parsed prompts.
type Templates struct {
	Classify     *completion.Template
	Instructions *completion.Template
}

// Parse parses both prompts and renders each once with sample input so a
// template referring to an unknown field fails here rather than per request.
func (p Prompts) Parse() (*Templates, error) {
	classify, err := completion.ParseTemplate(classifyPromptName, p.Classify)
	if err != nil {
		return nil, err
	}
	if _, err := classify.Render(ClassifyInput{ContentType: "image/jpeg"}); err != nil {
		return nil, err
	}

	instructions, err := completion.ParseTemplate(instructionsPromptName, p.Instructions)
	if err != nil {
		return nil, err
	}
	if _, err := instructions.Render(InstructionInput{WasteType: "Cardboard", Details: "A flattened box"}); err != nil {
		return nil, err
	}

	return &Templates{Classify: classify, Instructions: instructions}, nil
}

// MustParse is Parse for the built-in prompts.
func (p Prompts) MustParse() *Templates {
	t, err := p.Parse()
	if err != nil {
		panic(fmt.Sprintf("waste: invalid prompts: %v", err))
	}
	return t
}
