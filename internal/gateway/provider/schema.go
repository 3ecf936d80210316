package provider

import "strings"

type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeInteger SchemaType = "integer"
	TypeBoolean SchemaType = "boolean"
	TypeArray   SchemaType = "array"
)

// Schema is the subset of JSON Schema both backends understand for structured output.
type Schema struct {
	Name        string
	Type        SchemaType
	Description string
	Properties  []Property
	Required    []string
	Items       *Schema
}

// Property keeps declaration order, which Gemini honours via propertyOrdering.
type Property struct {
	Name   string
	Schema Schema
}

// JSONSchema renders a standard JSON Schema document. Objects are closed.
func (s Schema) JSONSchema() map[string]any {
	out := map[string]any{"type": string(s.Type)}
	if s.Description != "" {
		out["description"] = s.Description
	}
	switch s.Type {
	case TypeObject:
		props := make(map[string]any, len(s.Properties))
		for _, p := range s.Properties {
			props[p.Name] = p.Schema.JSONSchema()
		}
		out["properties"] = props
		out["additionalProperties"] = false
		if len(s.Required) > 0 {
			out["required"] = append([]string(nil), s.Required...)
		}
	case TypeArray:
		if s.Items != nil {
			out["items"] = s.Items.JSONSchema()
		}
	}
	return out
}

// geminiSchema renders the OpenAPI flavoured schema of the Gemini REST API.
func (s Schema) geminiSchema() map[string]any {
	out := map[string]any{"type": strings.ToUpper(string(s.Type))}
	if s.Description != "" {
		out["description"] = s.Description
	}
	switch s.Type {
	case TypeObject:
		props := make(map[string]any, len(s.Properties))
		order := make([]string, 0, len(s.Properties))
		for _, p := range s.Properties {
			props[p.Name] = p.Schema.geminiSchema()
			order = append(order, p.Name)
		}
		out["properties"] = props
		out["propertyOrdering"] = order
		if len(s.Required) > 0 {
			out["required"] = append([]string(nil), s.Required...)
		}
	case TypeArray:
		if s.Items != nil {
			out["items"] = s.Items.geminiSchema()
		}
	}
	return out
}
