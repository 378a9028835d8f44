package llm

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/genai"
)

// SchemaFor derives a JSON schema from a Go type's json tags
func SchemaFor[T any]() (*jsonschema.Schema, error) {
	s, err := jsonschema.For[T](&jsonschema.ForOptions{})
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	return s, nil
}

// strictSchema applies OpenAI structured-output rules: every object closes
// additionalProperties and lists all of its properties as required.
func strictSchema(m *jsonschema.Schema) *jsonschema.Schema {
	if m == nil {
		return nil
	}
	switch schemaType(m) {
	case "array":
		m.Items = strictSchema(m.Items)
	case "object":
		m.AdditionalProperties = &jsonschema.Schema{Not: &jsonschema.Schema{}}
		required := map[string]struct{}{}
		for _, r := range m.Required {
			required[r] = struct{}{}
		}
		for k, v := range m.Properties {
			required[k] = struct{}{}
			m.Properties[k] = strictSchema(v)
		}
		m.Required = slices.Sorted(maps.Keys(required))
	}
	return m
}

// openAISchema renders the schema as the map the Responses API expects
func openAISchema(s *jsonschema.Schema) (map[string]any, error) {
	if s == nil {
		return nil, fmt.Errorf("nil schema")
	}
	raw, err := json.Marshal(strictSchema(s.CloneSchemas()))
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// geminiSchema converts a JSON schema into Gemini's response schema type
func geminiSchema(s *jsonschema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	enums := make([]string, 0, len(s.Enum))
	for _, v := range s.Enum {
		enums = append(enums, fmt.Sprintf("%v", v))
	}
	out := &genai.Schema{
		Description: s.Description,
		Enum:        enums,
		Items:       geminiSchema(s.Items),
		Required:    s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for k, prop := range s.Properties {
			out.Properties[k] = geminiSchema(prop)
		}
	}

	switch schemaType(s) {
	case "object":
		out.Type = genai.TypeObject
	case "array":
		out.Type = genai.TypeArray
	case "string":
		out.Type = genai.TypeString
	case "number":
		out.Type = genai.TypeNumber
	case "integer":
		out.Type = genai.TypeInteger
	case "boolean":
		out.Type = genai.TypeBoolean
	}
	return out
}

// schemaType returns the effective type; slices are inferred as ["null", "array"]
func schemaType(s *jsonschema.Schema) string {
	if s.Type != "" {
		return s.Type
	}
	for _, t := range s.Types {
		if t != "null" {
			return t
		}
	}
	return ""
}

// cleanOutput strips markdown code fences around a JSON answer
func cleanOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
