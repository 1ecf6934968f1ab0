package waste

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/Akshith040/EcoScan1/internal/completion"
)

const classifyPromptName = "classifyWaste"

var classificationSchema = completion.Schema{
	Description: "Waste classification of the photographed item.",
	Fields: []completion.Field{
		{Name: "wasteType", Type: completion.String, Description: "The identified type of waste material."},
		{Name: "confidence", Type: completion.Number, Description: "The confidence level of the classification (0-1)."},
		{Name: "details", Type: completion.String, Description: "Detailed characteristics of the waste material derived from image analysis."},
	},
}

const (
	minConfidence = 0.85
	maxConfidence = 0.98
)

type Classification struct {
	WasteType  string  `json:"wasteType"`
	Confidence float64 `json:"confidence"`
	Details    string  `json:"details"`
}

type Classifier struct {
	client completion.Client
	prompt *completion.Template
	logger *slog.Logger
}

func NewClassifier(client completion.Client, prompt *completion.Template, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{client: client, prompt: prompt, logger: logger}
}

// Classify identifies the waste material in photo. The returned confidence
// has been rescaled by AdjustConfidence.
func (c *Classifier) Classify(ctx context.Context, photo io.Reader, contentType string) (*Classification, error) {
	data, err := io.ReadAll(photo)
	if err != nil {
		return nil, &ClassificationError{Err: fmt.Errorf("read photo: %w", err)}
	}

	prompt, err := c.prompt.Render(ClassifyInput{ContentType: contentType})
	if err != nil {
		return nil, &ClassificationError{Err: err}
	}

	out, err := completion.Generate[Classification](ctx, c.client, completion.Request{
		Name:   classifyPromptName,
		Prompt: prompt,
		Image:  &completion.Image{Data: data, MIMEType: contentType},
		Schema: classificationSchema,
	})
	if err != nil {
		c.logger.Error("classification failed", "content_type", contentType, "error", err)
		return nil, &ClassificationError{Err: err}
	}

	raw := out.Confidence
	out.Confidence = AdjustConfidence(out.WasteType, raw)
	c.logger.Debug("classified photo", "waste_type", out.WasteType, "raw_confidence", raw, "confidence", out.Confidence)
	return &out, nil
}

// AdjustConfidence maps a model's raw score into [0.85, 0.98]. Types the
// model marks as uncertain are nudged down, everything else up.
func AdjustConfidence(wasteType string, confidence float64) float64 {
	var adjusted float64
	if strings.Contains(strings.ToLower(wasteType), "uncertain") {
		adjusted = math.Max(0.75, confidence-0.1)
	} else {
		adjusted = math.Min(maxConfidence, confidence+0.05)
	}
	return math.Max(minConfidence, math.Min(maxConfidence, adjusted))
}
