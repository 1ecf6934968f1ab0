package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// Generate calls c and decodes the answer into T. The answer must be a JSON
// object containing every field declared in req.Schema.
func Generate[T any](ctx context.Context, c Client, req Request) (T, error) {
	var out T

	raw, err := c.Complete(ctx, req)
	if err != nil {
		return out, err
	}

	text := StripCodeFences(strings.TrimSpace(string(raw)))
	if text == "" || text == "null" {
		return out, ErrNoOutput
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	for _, name := range req.Schema.Required() {
		v, ok := fields[name]
		if !ok || string(v) == "null" {
			return out, fmt.Errorf("%w: missing field %q", ErrNoOutput, name)
		}
	}

	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return out, nil
}

// StripCodeFences removes a surrounding ```json ... ``` block, which some
// models add even when asked for bare JSON.
func StripCodeFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Template is a prompt with {{.Field}} placeholders filled from typed input.
type Template struct {
	name string
	tmpl *template.Template
}

// ParseTemplate parses text as a prompt template. Missing keys are errors.
func ParseTemplate(name, text string) (*Template, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt %s: %w", name, err)
	}
	return &Template{name: name, tmpl: t}, nil
}

func (t *Template) Name() string { return t.name }

func (t *Template) Render(input any) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, input); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", t.name, err)
	}
	return buf.String(), nil
}
