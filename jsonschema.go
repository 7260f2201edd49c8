package opsy

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// JSONSchema exports schema as a JSON Schema object (properties, required list,
// enum members, defaults, descriptions) for tool listings and documentation.
// It is derived from the same descriptors Validate uses.
func JSONSchema(schema *Schema) *jsonschema.Schema {
	root := &jsonschema.Schema{
		Type:       "object",
		Title:      schema.operation,
		Properties: make(map[string]*jsonschema.Schema, len(schema.fields)),
	}
	for _, f := range schema.fields {
		prop := typeSchema(f.Type)
		prop.Description = f.Description
		if f.Default != nil {
			if raw, err := json.Marshal(f.Default); err == nil {
				prop.Default = raw
			}
		}
		root.Properties[f.Name] = prop
		if f.Required {
			root.Required = append(root.Required, f.Name)
		}
	}
	return root
}

// JSONSchemaMap returns JSONSchema(schema) as a generic map, the shape MCP tool
// definitions carry.
func JSONSchemaMap(schema *Schema) (map[string]any, error) {
	return SchemaToMap(JSONSchema(schema))
}

// SchemaToMap converts a JSON Schema into a generic map through its JSON encoding.
func SchemaToMap(s *jsonschema.Schema) (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func typeSchema(t Type) *jsonschema.Schema {
	switch t.kind {
	case KindInt:
		return &jsonschema.Schema{Type: "integer"}
	case KindString:
		return &jsonschema.Schema{Type: "string"}
	case KindBool:
		return &jsonschema.Schema{Type: "boolean"}
	case KindList:
		return &jsonschema.Schema{Type: "array", Items: typeSchema(*t.elem)}
	case KindEnum:
		values := t.enum.Strings()
		enum := make([]any, len(values))
		for i, v := range values {
			enum[i] = v
		}
		return &jsonschema.Schema{Type: "string", Title: t.enum.Name(), Enum: enum}
	}
	return &jsonschema.Schema{}
}
