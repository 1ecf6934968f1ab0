package completion

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testSchema = Schema{
	Fields: []Field{
		{Name: "wasteType", Type: String},
		{Name: "confidence", Type: Number},
	},
}

type testOutput struct {
	WasteType  string  `json:"wasteType"`
	Confidence float64 `json:"confidence"`
}

func staticClient(raw string, err error) Client {
	return ClientFunc(func(context.Context, Request) (json.RawMessage, error) {
		if err != nil {
			return nil, err
		}
		return json.RawMessage(raw), nil
	})
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    testOutput
		wantErr error
	}{
		{
			name: "plain json",
			raw:  `{"wasteType":"Cardboard","confidence":0.9}`,
			want: testOutput{WasteType: "Cardboard", Confidence: 0.9},
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"wasteType\":\"Paper\",\"confidence\":0.5}\n```",
			want: testOutput{WasteType: "Paper", Confidence: 0.5},
		},
		{
			name:    "empty",
			raw:     "   ",
			wantErr: ErrNoOutput,
		},
		{
			name:    "null",
			raw:     "null",
			wantErr: ErrNoOutput,
		},
		{
			name:    "missing field",
			raw:     `{"wasteType":"Paper"}`,
			wantErr: ErrNoOutput,
		},
		{
			name:    "null field",
			raw:     `{"wasteType":"Paper","confidence":null}`,
			wantErr: ErrNoOutput,
		},
		{
			name:    "not json",
			raw:     "It looks like cardboard.",
			wantErr: ErrMalformedOutput,
		},
		{
			name:    "wrong type",
			raw:     `{"wasteType":"Paper","confidence":"high"}`,
			wantErr: ErrMalformedOutput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Generate[testOutput](context.Background(), staticClient(tt.raw, nil), Request{Schema: testSchema})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateClientError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Generate[testOutput](context.Background(), staticClient("", boom), Request{Schema: testSchema})
	assert.ErrorIs(t, err, boom)
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json {\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences(`{"a":1}`))
}

func TestTemplateRender(t *testing.T) {
	tmpl, err := ParseTemplate("instructions", "Waste Type: {{.WasteType}}\nDetails: {{.Details}}")
	require.NoError(t, err)
	assert.Equal(t, "instructions", tmpl.Name())

	out, err := tmpl.Render(struct{ WasteType, Details string }{"Glass", "Green <bottle>"})
	require.NoError(t, err)
	assert.Equal(t, "Waste Type: Glass\nDetails: Green <bottle>", out)
}

func TestTemplateErrors(t *testing.T) {
	_, err := ParseTemplate("bad", "{{.Unclosed")
	assert.Error(t, err)

	tmpl, err := ParseTemplate("missing", "{{.Nope}}")
	require.NoError(t, err)
	_, err = tmpl.Render(struct{ WasteType string }{"Glass"})
	assert.Error(t, err)
}

func TestSchemaJSONSchema(t *testing.T) {
	s := Schema{
		Description: "result",
		Fields: []Field{
			{Name: "wasteType", Type: String, Description: "type"},
			{Name: "confidence", Type: Number},
		},
	}

	js := s.JSONSchema()
	assert.Equal(t, "object", js["type"])
	assert.Equal(t, "result", js["description"])
	assert.Equal(t, []string{"wasteType", "confidence"}, js["required"])
	assert.Equal(t, false, js["additionalProperties"])

	props := js["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "string", "description": "type"}, props["wasteType"])
	assert.Equal(t, map[string]any{"type": "number"}, props["confidence"])
}
