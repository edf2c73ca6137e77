package gateway

import (
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// SchemaDescriptor names the shape of a structured decomposition response:
// one top-level array field whose elements carry one required string field.
type SchemaDescriptor struct {
	Collection            string // top-level array field name
	CollectionDescription string
	Prompt                string // per-element string field name
	PromptDescription     string
}

// JSONSchema renders the descriptor as a JSON Schema.
func (d SchemaDescriptor) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			d.Collection: {
				Type:        "array",
				Description: d.CollectionDescription,
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						d.Prompt: {
							Type:        "string",
							Description: d.PromptDescription,
						},
					},
					Required: []string{d.Prompt},
				},
			},
		},
		Required: []string{d.Collection},
	}
}

// toGenaiSchema converts a JSON Schema to the genai response schema type.
func toGenaiSchema(schema *jsonschema.Schema) (*genai.Schema, error) {
	if schema == nil {
		return nil, nil
	}

	converted := &genai.Schema{}

	switch schema.Type {
	case "object":
		converted.Type = genai.TypeObject
	case "string":
		converted.Type = genai.TypeString
	case "number", "integer":
		converted.Type = genai.TypeNumber
	case "boolean":
		converted.Type = genai.TypeBoolean
	case "array":
		converted.Type = genai.TypeArray
	default:
		if schema.Type != "" {
			return nil, goerr.New("unsupported schema type", goerr.V("type", schema.Type))
		}
	}

	if schema.Description != "" {
		converted.Description = schema.Description
	}

	if len(schema.Properties) > 0 {
		converted.Properties = make(map[string]*genai.Schema)
		for name, propSchema := range schema.Properties {
			prop, err := toGenaiSchema(propSchema)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to convert property schema", goerr.V("property", name))
			}
			converted.Properties[name] = prop
		}
	}

	if len(schema.Required) > 0 {
		converted.Required = schema.Required
	}

	if schema.Items != nil {
		items, err := toGenaiSchema(schema.Items)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to convert items schema")
		}
		converted.Items = items
	}

	return converted, nil
}
