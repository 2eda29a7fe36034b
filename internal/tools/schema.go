package tools

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// InputSchema renders the descriptor's fields as a JSON Schema object.
func (d Descriptor) InputSchema() *jsonschema.Schema {
	props := make(map[string]*jsonschema.Schema, len(d.Fields))
	for _, f := range d.Fields {
		props[f.Name] = f.schema()
	}
	return &jsonschema.Schema{
		Type:        "object",
		Description: d.Description,
		Properties:  props,
		Required:    d.Required(),
	}
}

func (f Field) schema() *jsonschema.Schema {
	s := &jsonschema.Schema{Description: f.Description}
	switch f.Kind {
	case KindInteger:
		s.Type = "integer"
		zero := 0.0
		s.Minimum = &zero
	case KindBoolean:
		s.Type = "boolean"
	case KindEnum:
		s.Type = "string"
		for _, e := range f.Enum {
			s.Enum = append(s.Enum, e)
		}
	case KindObject:
		s.Types = []string{"object", "array", "string"}
	default:
		s.Type = "string"
	}
	if f.Default != nil {
		if data, err := json.Marshal(f.Default); err == nil {
			s.Default = data
		}
	}
	return s
}
