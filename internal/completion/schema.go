package completion

type FieldType string

const (
	String FieldType = "string"
	Number FieldType = "number"
)

// Field is one required property of a flat object schema.
type Field struct {
	Name        string
	Type        FieldType
	Description string
}

// Schema describes the JSON object a completion must return. Every field is
// required; extra properties are not allowed.
type Schema struct {
	Description string
	Fields      []Field
}

// Required lists the field names in declaration order.
func (s Schema) Required() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// JSONSchema renders the schema as a JSON Schema document.
func (s Schema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		prop := map[string]any{"type": string(f.Type)}
		if f.Description != "" {
			prop["description"] = f.Description
		}
		props[f.Name] = prop
	}
	out := map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             s.Required(),
		"additionalProperties": false,
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	return out
}
